package matchmaking

import (
	"errors"
	"testing"
	"time"

	"duel21/internal/rating"
)

func TestRankedEnqueuePinsTierBet(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("u1")

	// Zero means "use my tier bet".
	if err := pool.Enqueue("u1", 1500, 0, chk); err != nil {
		t.Fatal(err)
	}
	v, ok := pool.queue.Get("u1")
	if !ok {
		t.Fatal("entry missing")
	}
	entry := v.(RankedEntry)
	want := rating.TierFor(1500).Bet()
	if entry.FixedBet != want {
		t.Fatalf("FixedBet = %d, want %d", entry.FixedBet, want)
	}
	if entry.TierKey != rating.TierFor(1500).Key() {
		t.Fatalf("TierKey = %q, want %q", entry.TierKey, rating.TierFor(1500).Key())
	}
}

func TestRankedEnqueueRejectsWrongBet(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("u1")

	err := pool.Enqueue("u1", 1500, 100, chk)
	if !errors.Is(err, ErrRankedBetMismatch) {
		t.Fatalf("err = %v, want ErrRankedBetMismatch", err)
	}
	if err := pool.Enqueue("u1", 1500, rating.TierFor(1500).Bet(), chk); err != nil {
		t.Fatalf("matching bet err = %v", err)
	}
}

func TestRankedEnqueueRejectsBrokeAndSeated(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("poor", "busy")
	chk.chips["poor"] = 10
	chk.seated["busy"] = true

	if err := pool.Enqueue("poor", 1000, 0, chk); !errors.Is(err, ErrInsufficientChips) {
		t.Fatalf("poor err = %v, want ErrInsufficientChips", err)
	}
	if err := pool.Enqueue("busy", 1000, 0, chk); !errors.Is(err, ErrAlreadyMatched) {
		t.Fatalf("busy err = %v, want ErrAlreadyMatched", err)
	}
	if got := pool.Waiting(); got != 0 {
		t.Fatalf("Waiting = %d, want 0", got)
	}
}

func TestRankedPairWithinGap(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("a", "b")

	pool.Enqueue("a", 1450, 0, chk)
	pool.Enqueue("b", 1450+MaxEloGap, 0, chk)

	pairing, ok := pool.TryPair(chk)
	if !ok {
		t.Fatal("TryPair = false, want pairing at exactly the max gap")
	}
	if pairing.P1 != "a" || pairing.P2 != "b" {
		t.Fatalf("pairing = %s vs %s", pairing.P1, pairing.P2)
	}
	if want := rating.TierFor(1450).Bet(); pairing.Bet != want {
		t.Fatalf("Bet = %d, want %d", pairing.Bet, want)
	}
	if got := pool.Waiting(); got != 0 {
		t.Fatalf("Waiting = %d, want 0 after pairing", got)
	}
}

func TestRankedPairRefusesWideGapAndCrossTier(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("low", "high")

	// 1000 and 1300 sit 300 apart and in different tiers.
	pool.Enqueue("low", 1000, 0, chk)
	pool.Enqueue("high", 1300, 0, chk)

	if pairing, ok := pool.TryPair(chk); ok {
		t.Fatalf("TryPair = %+v, want no pairing", pairing)
	}
	if got := pool.Waiting(); got != 2 {
		t.Fatalf("Waiting = %d, want both still queued", got)
	}
}

func TestRankedPairSkipsIncompatibleHead(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("head", "mid", "tail")

	// head is a bronze player; mid and tail are compatible gold players
	// behind them in line.
	pool.Enqueue("head", 1000, 0, chk)
	pool.Enqueue("mid", 1500, 0, chk)
	pool.Enqueue("tail", 1520, 0, chk)

	pairing, ok := pool.TryPair(chk)
	if !ok {
		t.Fatal("TryPair = false, want mid/tail pairing past the head")
	}
	if pairing.P1 != "mid" || pairing.P2 != "tail" {
		t.Fatalf("pairing = %s vs %s, want mid vs tail", pairing.P1, pairing.P2)
	}
	if got := pool.Waiting(); got != 1 {
		t.Fatalf("Waiting = %d, want head still queued", got)
	}
}

func TestRankedPairSkipsBrokeEntry(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("broke", "a", "b")

	pool.Enqueue("broke", 1500, 0, chk)
	pool.Enqueue("a", 1500, 0, chk)
	pool.Enqueue("b", 1500, 0, chk)
	chk.chips["broke"] = 0

	pairing, ok := pool.TryPair(chk)
	if !ok || pairing.P1 != "a" || pairing.P2 != "b" {
		t.Fatalf("pairing = %+v, want a vs b", pairing)
	}
}

func TestCompactEvictsTimedOutEntries(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("old", "fresh")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pool.now = func() time.Time { return base }
	pool.Enqueue("old", 1500, 0, chk)

	pool.now = func() time.Time { return base.Add(30 * time.Second) }
	pool.Enqueue("fresh", 1500, 0, chk)

	pool.now = func() time.Time { return base.Add(RankedQueueTimeout + time.Second) }
	cancelled := pool.Compact(chk)
	if len(cancelled) != 1 || cancelled[0].UserID != "old" {
		t.Fatalf("cancelled = %+v, want only old", cancelled)
	}
	if cancelled[0].Reason != "queue timeout" {
		t.Fatalf("Reason = %q", cancelled[0].Reason)
	}
	if got := pool.Waiting(); got != 1 {
		t.Fatalf("Waiting = %d, want fresh kept", got)
	}
}

func TestCompactEvictsGoneAndSeated(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("gone", "busy", "ok")

	for _, u := range []string{"gone", "busy", "ok"} {
		pool.Enqueue(u, 1500, 0, chk)
	}
	chk.gone["gone"] = true
	chk.seated["busy"] = true

	cancelled := pool.Compact(chk)
	reasons := map[string]string{}
	for _, c := range cancelled {
		reasons[c.UserID] = c.Reason
	}
	if reasons["gone"] != "player disconnected" {
		t.Fatalf("gone reason = %q", reasons["gone"])
	}
	if reasons["busy"] != "already in a match" {
		t.Fatalf("busy reason = %q", reasons["busy"])
	}
	if _, ok := reasons["ok"]; ok {
		t.Fatal("ok should survive compaction")
	}
	if got := pool.Waiting(); got != 1 {
		t.Fatalf("Waiting = %d, want 1", got)
	}
}

func TestRankedReenqueueRefreshesEntry(t *testing.T) {
	pool := NewRankedPool()
	chk := newStubChecker("u1")

	pool.Enqueue("u1", 1500, 0, chk)
	pool.Enqueue("u1", 1510, 0, chk)
	if got := pool.Waiting(); got != 1 {
		t.Fatalf("Waiting = %d, want 1 after re-enqueue", got)
	}
	v, _ := pool.queue.Get("u1")
	if got := v.(RankedEntry).Elo; got != 1510 {
		t.Fatalf("Elo = %d, want refreshed 1510", got)
	}
}
