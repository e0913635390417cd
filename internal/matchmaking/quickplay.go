package matchmaking

import (
	"errors"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Buckets are the fixed quick-play chip amounts. One FIFO per bucket.
var Buckets = []int64{100, 500, 1000, 5000, 25000}

var (
	ErrInvalidBucket     = errors.New("invalid quick-play bucket")
	ErrInsufficientChips = errors.New("insufficient chips for this stake")
	ErrAlreadyMatched    = errors.New("user is already in an active match")
	ErrRankedBetMismatch = errors.New("bet does not match ranked tier bet")
)

// Checker supplies the cross-subsystem lookups the queues need. Supplied by
// the transport layer so the pools stay free of Nakama types.
type Checker interface {
	// Affords reports whether the user can cover the stake.
	Affords(userID string, amount int64) bool
	// InActiveMatch reports whether the user is already seated somewhere.
	InActiveMatch(userID string) bool
	// Present reports whether the user is still connected.
	Present(userID string) bool
}

// QueueEntry is one waiting quick-play player.
type QueueEntry struct {
	UserID   string
	Bucket   int64
	QueuedAt time.Time
}

// Pairing is a successful match of two queue entries.
type Pairing struct {
	P1  string
	P2  string
	Bet int64
}

// Rejection reports an entry dropped during a pairing pass, with the reason
// surfaced to the player rather than silently.
type Rejection struct {
	UserID string
	Reason error
}

// QuickPool holds the quick-play bucket queues. Guarded by its own lock;
// contention is low so one lock for all buckets is fine.
type QuickPool struct {
	mu      sync.Mutex
	buckets map[int64]*linkedhashmap.Map // userID -> QueueEntry
	now     func() time.Time
}

// NewQuickPool creates an empty pool with every fixed bucket registered.
func NewQuickPool() *QuickPool {
	p := &QuickPool{
		buckets: make(map[int64]*linkedhashmap.Map, len(Buckets)),
		now:     time.Now,
	}
	for _, b := range Buckets {
		p.buckets[b] = linkedhashmap.New()
	}
	return p
}

// Enqueue adds the user to a bucket queue. A user already waiting in a
// different bucket is migrated; re-enqueueing the same bucket is a no-op.
func (p *QuickPool) Enqueue(userID string, bucket int64, chk Checker) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.buckets[bucket]
	if !ok {
		return ErrInvalidBucket
	}
	if chk.InActiveMatch(userID) {
		return ErrAlreadyMatched
	}
	if !chk.Affords(userID, bucket) {
		return ErrInsufficientChips
	}

	for b, other := range p.buckets {
		if b == bucket {
			continue
		}
		other.Remove(userID)
	}
	if _, exists := q.Get(userID); exists {
		return nil
	}
	q.Put(userID, QueueEntry{UserID: userID, Bucket: bucket, QueuedAt: p.now()})
	return nil
}

// Remove takes the user out of whichever bucket holds them.
func (p *QuickPool) Remove(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := false
	for _, q := range p.buckets {
		if _, ok := q.Get(userID); ok {
			q.Remove(userID)
			removed = true
		}
	}
	return removed
}

// Waiting returns how many players sit in the bucket queue.
func (p *QuickPool) Waiting(bucket int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if q, ok := p.buckets[bucket]; ok {
		return q.Size()
	}
	return 0
}

// TryPair runs one compaction/pairing pass over a bucket. Entries whose
// owner vanished or is already seated are dropped with an explicit
// rejection; an entry that can no longer afford the stake is rejected while
// its would-be opponent stays queued. On success both entries are removed
// and the pairing's bet is pinned to the bucket amount.
func (p *QuickPool) TryPair(bucket int64, chk Checker) (*Pairing, []Rejection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.buckets[bucket]
	if !ok {
		return nil, nil
	}

	var rejections []Rejection
	var eligible []string
	for _, key := range q.Keys() {
		userID := key.(string)
		switch {
		case !chk.Present(userID):
			q.Remove(userID)
		case chk.InActiveMatch(userID):
			q.Remove(userID)
			rejections = append(rejections, Rejection{UserID: userID, Reason: ErrAlreadyMatched})
		case !chk.Affords(userID, bucket):
			q.Remove(userID)
			rejections = append(rejections, Rejection{UserID: userID, Reason: ErrInsufficientChips})
		default:
			eligible = append(eligible, userID)
		}
		if len(eligible) == 2 {
			break
		}
	}

	if len(eligible) < 2 {
		return nil, rejections
	}
	q.Remove(eligible[0])
	q.Remove(eligible[1])
	return &Pairing{P1: eligible[0], P2: eligible[1], Bet: bucket}, rejections
}

// TryPairAll runs TryPair across every bucket.
func (p *QuickPool) TryPairAll(chk Checker) ([]Pairing, []Rejection) {
	var pairings []Pairing
	var rejections []Rejection
	for _, b := range Buckets {
		for {
			pairing, rej := p.TryPair(b, chk)
			rejections = append(rejections, rej...)
			if pairing == nil {
				break
			}
			pairings = append(pairings, *pairing)
		}
	}
	return pairings, rejections
}
