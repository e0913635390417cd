package matchmaking

import (
	"errors"
	"testing"
	"time"
)

// stubChecker backs the pools in tests with plain maps. Users absent from
// chips are treated as broke; users absent from gone are present.
type stubChecker struct {
	chips  map[string]int64
	seated map[string]bool
	gone   map[string]bool
}

func (s *stubChecker) Affords(userID string, amount int64) bool {
	return s.chips[userID] >= amount
}

func (s *stubChecker) InActiveMatch(userID string) bool { return s.seated[userID] }

func (s *stubChecker) Present(userID string) bool { return !s.gone[userID] }

func newStubChecker(users ...string) *stubChecker {
	s := &stubChecker{
		chips:  map[string]int64{},
		seated: map[string]bool{},
		gone:   map[string]bool{},
	}
	for _, u := range users {
		s.chips[u] = 1_000_000
	}
	return s
}

func TestEnqueueRejectsInvalidBucket(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("u1")

	if err := pool.Enqueue("u1", 123, chk); !errors.Is(err, ErrInvalidBucket) {
		t.Fatalf("Enqueue(123) err = %v, want ErrInvalidBucket", err)
	}
	if err := pool.Enqueue("u1", 500, chk); err != nil {
		t.Fatalf("Enqueue(500) err = %v", err)
	}
}

func TestEnqueueRejectsBrokeAndSeated(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("rich", "poor", "busy")
	chk.chips["poor"] = 400
	chk.seated["busy"] = true

	if err := pool.Enqueue("poor", 500, chk); !errors.Is(err, ErrInsufficientChips) {
		t.Fatalf("poor err = %v, want ErrInsufficientChips", err)
	}
	if err := pool.Enqueue("busy", 500, chk); !errors.Is(err, ErrAlreadyMatched) {
		t.Fatalf("busy err = %v, want ErrAlreadyMatched", err)
	}
	// 400 chips still covers the smallest bucket.
	if err := pool.Enqueue("poor", 100, chk); err != nil {
		t.Fatalf("poor small bucket err = %v", err)
	}
}

func TestEnqueueMigratesBetweenBuckets(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("u1")

	if err := pool.Enqueue("u1", 100, chk); err != nil {
		t.Fatal(err)
	}
	if err := pool.Enqueue("u1", 1000, chk); err != nil {
		t.Fatal(err)
	}
	if got := pool.Waiting(100); got != 0 {
		t.Fatalf("Waiting(100) = %d, want 0 after migration", got)
	}
	if got := pool.Waiting(1000); got != 1 {
		t.Fatalf("Waiting(1000) = %d, want 1", got)
	}

	// Re-enqueueing the same bucket must not duplicate the entry.
	if err := pool.Enqueue("u1", 1000, chk); err != nil {
		t.Fatal(err)
	}
	if got := pool.Waiting(1000); got != 1 {
		t.Fatalf("Waiting(1000) = %d after re-enqueue, want 1", got)
	}
}

func TestTryPairIsFIFO(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("first", "second", "third")

	for _, u := range []string{"first", "second", "third"} {
		if err := pool.Enqueue(u, 500, chk); err != nil {
			t.Fatal(err)
		}
	}

	pairing, rejections := pool.TryPair(500, chk)
	if len(rejections) != 0 {
		t.Fatalf("rejections = %v, want none", rejections)
	}
	if pairing == nil {
		t.Fatal("pairing = nil, want first/second")
	}
	if pairing.P1 != "first" || pairing.P2 != "second" {
		t.Fatalf("pairing = %s vs %s, want first vs second", pairing.P1, pairing.P2)
	}
	if pairing.Bet != 500 {
		t.Fatalf("Bet = %d, want 500", pairing.Bet)
	}
	if got := pool.Waiting(500); got != 1 {
		t.Fatalf("Waiting = %d, want third left alone", got)
	}
}

func TestTryPairNeedsTwo(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("solo")

	if err := pool.Enqueue("solo", 100, chk); err != nil {
		t.Fatal(err)
	}
	pairing, rejections := pool.TryPair(100, chk)
	if pairing != nil {
		t.Fatalf("pairing = %+v, want nil with one waiter", pairing)
	}
	if len(rejections) != 0 {
		t.Fatalf("rejections = %v, want none", rejections)
	}
	if got := pool.Waiting(100); got != 1 {
		t.Fatalf("Waiting = %d, want solo still queued", got)
	}
}

func TestTryPairDropsStaleEntries(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("vanished", "broke", "busy", "ok1", "ok2")

	for _, u := range []string{"vanished", "broke", "busy", "ok1", "ok2"} {
		if err := pool.Enqueue(u, 1000, chk); err != nil {
			t.Fatal(err)
		}
	}
	// Conditions changed after enqueue.
	chk.gone["vanished"] = true
	chk.chips["broke"] = 0
	chk.seated["busy"] = true

	pairing, rejections := pool.TryPair(1000, chk)
	if pairing == nil || pairing.P1 != "ok1" || pairing.P2 != "ok2" {
		t.Fatalf("pairing = %+v, want ok1 vs ok2", pairing)
	}

	// A disconnected entry is dropped silently; the others carry a reason.
	reasons := map[string]error{}
	for _, r := range rejections {
		reasons[r.UserID] = r.Reason
	}
	if !errors.Is(reasons["broke"], ErrInsufficientChips) {
		t.Fatalf("broke reason = %v, want ErrInsufficientChips", reasons["broke"])
	}
	if !errors.Is(reasons["busy"], ErrAlreadyMatched) {
		t.Fatalf("busy reason = %v, want ErrAlreadyMatched", reasons["busy"])
	}
	if _, ok := reasons["vanished"]; ok {
		t.Fatal("vanished should be dropped without a rejection")
	}
	if got := pool.Waiting(1000); got != 0 {
		t.Fatalf("Waiting = %d, want empty queue", got)
	}
}

func TestTryPairAllSweepsEveryBucket(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("a", "b", "c", "d", "e")

	pool.Enqueue("a", 100, chk)
	pool.Enqueue("b", 100, chk)
	pool.Enqueue("c", 5000, chk)
	pool.Enqueue("d", 5000, chk)
	pool.Enqueue("e", 25000, chk)

	pairings, rejections := pool.TryPairAll(chk)
	if len(rejections) != 0 {
		t.Fatalf("rejections = %v", rejections)
	}
	if len(pairings) != 2 {
		t.Fatalf("pairings = %d, want 2", len(pairings))
	}
	if pairings[0].Bet != 100 || pairings[1].Bet != 5000 {
		t.Fatalf("bets = %d, %d; want 100 then 5000", pairings[0].Bet, pairings[1].Bet)
	}
	if got := pool.Waiting(25000); got != 1 {
		t.Fatalf("Waiting(25000) = %d, want e still queued", got)
	}
}

func TestRemoveClearsWaiter(t *testing.T) {
	pool := NewQuickPool()
	chk := newStubChecker("u1")

	pool.Enqueue("u1", 500, chk)
	if !pool.Remove("u1") {
		t.Fatal("Remove = false, want true for a queued user")
	}
	if pool.Remove("u1") {
		t.Fatal("Remove = true for an absent user")
	}
	if got := pool.Waiting(500); got != 0 {
		t.Fatalf("Waiting = %d, want 0", got)
	}
}

func TestQueuedAtUsesPoolClock(t *testing.T) {
	pool := NewQuickPool()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pool.now = func() time.Time { return at }
	chk := newStubChecker("u1")

	pool.Enqueue("u1", 100, chk)
	v, ok := pool.buckets[100].Get("u1")
	if !ok {
		t.Fatal("entry missing")
	}
	if got := v.(QueueEntry).QueuedAt; !got.Equal(at) {
		t.Fatalf("QueuedAt = %v, want %v", got, at)
	}
}
