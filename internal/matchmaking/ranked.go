package matchmaking

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"duel21/internal/rating"
)

const (
	// RankedQueueTimeout evicts entries that waited too long.
	RankedQueueTimeout = 60 * time.Second
	// MaxEloGap is the widest rating difference a ranked pairing allows.
	MaxEloGap = 220
)

// RankedEntry is one waiting ranked player. The bet is fixed by Elo tier
// before the entry is accepted.
type RankedEntry struct {
	UserID   string
	FixedBet int64
	Elo      int
	TierKey  string
	QueuedAt time.Time
}

// Cancellation signals an evicted ranked entry back to its owner.
type Cancellation struct {
	UserID string
	Reason string
}

// RankedPool is the single ordered ranked queue with a userId index.
type RankedPool struct {
	mu      sync.Mutex
	queue   *linkedhashmap.Map // userID -> RankedEntry
	timeout time.Duration
	now     func() time.Time
}

// NewRankedPool creates an empty ranked queue.
func NewRankedPool() *RankedPool {
	return &RankedPool{
		queue:   linkedhashmap.New(),
		timeout: RankedQueueTimeout,
		now:     time.Now,
	}
}

// Enqueue adds a ranked player. The caller must run series reconciliation
// first. The bet is pinned to the player's tier bet; a non-zero requested
// bet that disagrees is rejected.
func (p *RankedPool) Enqueue(userID string, elo int, requestedBet int64, chk Checker) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tier := rating.TierFor(elo)
	bet := tier.Bet()
	if requestedBet != 0 && requestedBet != bet {
		return ErrRankedBetMismatch
	}
	if chk.InActiveMatch(userID) {
		return ErrAlreadyMatched
	}
	if !chk.Affords(userID, bet) {
		return ErrInsufficientChips
	}

	p.queue.Remove(userID)
	p.queue.Put(userID, RankedEntry{
		UserID:   userID,
		FixedBet: bet,
		Elo:      elo,
		TierKey:  tier.Key(),
		QueuedAt: p.now(),
	})
	return nil
}

// Remove takes the user out of the queue.
func (p *RankedPool) Remove(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.queue.Get(userID); !ok {
		return false
	}
	p.queue.Remove(userID)
	return true
}

// Waiting returns the queue length.
func (p *RankedPool) Waiting() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Size()
}

// Compact evicts entries older than the timeout or whose owner is gone or
// already matched, emitting an explicit cancellation for each.
func (p *RankedPool) Compact(chk Checker) []Cancellation {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var cancelled []Cancellation
	for _, key := range p.queue.Keys() {
		userID := key.(string)
		v, _ := p.queue.Get(userID)
		entry := v.(RankedEntry)
		switch {
		case now.Sub(entry.QueuedAt) > p.timeout:
			p.queue.Remove(userID)
			cancelled = append(cancelled, Cancellation{UserID: userID, Reason: "queue timeout"})
		case !chk.Present(userID):
			p.queue.Remove(userID)
			cancelled = append(cancelled, Cancellation{UserID: userID, Reason: "player disconnected"})
		case chk.InActiveMatch(userID):
			p.queue.Remove(userID)
			cancelled = append(cancelled, Cancellation{UserID: userID, Reason: "already in a match"})
		}
	}
	return cancelled
}

// TryPair scans in queue order and matches the first compatible pair:
// Elo gap within bounds, identical tier key and fixed bet, both still
// affording the stake. Both entries are removed on success.
func (p *RankedPool) TryPair(chk Checker) (*Pairing, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := p.queue.Keys()
	for i := 0; i < len(keys); i++ {
		av, _ := p.queue.Get(keys[i].(string))
		a := av.(RankedEntry)
		if !chk.Affords(a.UserID, a.FixedBet) {
			continue
		}
		for j := i + 1; j < len(keys); j++ {
			bv, _ := p.queue.Get(keys[j].(string))
			b := bv.(RankedEntry)
			if !compatible(a, b) || !chk.Affords(b.UserID, b.FixedBet) {
				continue
			}
			p.queue.Remove(a.UserID)
			p.queue.Remove(b.UserID)
			return &Pairing{P1: a.UserID, P2: b.UserID, Bet: a.FixedBet}, true
		}
	}
	return nil, false
}

func compatible(a, b RankedEntry) bool {
	gap := a.Elo - b.Elo
	if gap < 0 {
		gap = -gap
	}
	return gap <= MaxEloGap && a.TierKey == b.TierKey && a.FixedBet == b.FixedBet
}
