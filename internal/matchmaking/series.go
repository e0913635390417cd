package matchmaking

import (
	"sync"

	"github.com/google/uuid"

	"duel21/internal/domain"
)

// SeriesRegistry tracks ranked series across matches. Created at startup
// and mutated only through these entry points; it carries its own lock
// since it is shared across match loops and the ranked RPCs.
type SeriesRegistry struct {
	mu     sync.Mutex
	byID   map[string]*domain.RankedSeries
	active map[string]string // userID -> in-progress series id
}

// NewSeriesRegistry creates an empty registry.
func NewSeriesRegistry() *SeriesRegistry {
	return &SeriesRegistry{
		byID:   map[string]*domain.RankedSeries{},
		active: map[string]string{},
	}
}

// CreateOrResume returns the in-progress series for the pairing, creating
// one lazily on the first ranked match between the two players.
func (r *SeriesRegistry) CreateOrResume(p1, p2 string, bet int64, eloAtStart map[string]int) *domain.RankedSeries {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.active[p1]; ok {
		if s := r.byID[id]; s != nil && s.Status == domain.SeriesInProgress && s.Has(p2) {
			return s
		}
	}

	s := &domain.RankedSeries{
		ID:          uuid.NewString(),
		P1:          p1,
		P2:          p2,
		BetAmount:   bet,
		RankAtStart: map[string]int{p1: eloAtStart[p1], p2: eloAtStart[p2]},
		Status:      domain.SeriesInProgress,
	}
	r.byID[s.ID] = s
	r.active[p1] = s.ID
	r.active[p2] = s.ID
	return s
}

// Get returns a series by id, or nil.
func (r *SeriesRegistry) Get(id string) *domain.RankedSeries {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

// ActiveFor returns the user's in-progress series, or nil.
func (r *SeriesRegistry) ActiveFor(userID string) *domain.RankedSeries {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.active[userID]; ok {
		if s := r.byID[id]; s != nil && s.Status == domain.SeriesInProgress {
			return s
		}
	}
	return nil
}

// Complete marks a series finished and releases both active pointers.
func (r *SeriesRegistry) Complete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID[id]
	if s == nil {
		return
	}
	if s.Status == domain.SeriesInProgress {
		s.Status = domain.SeriesCompleted
	}
	r.release(s)
}

// Forfeit rewrites a series to FORFEITED and releases both pointers.
func (r *SeriesRegistry) Forfeit(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID[id]
	if s == nil {
		return
	}
	s.Status = domain.SeriesForfeited
	r.release(s)
}

// Reconcile garbage-collects a stale or orphaned active-series pointer for
// the user: when no live match backs the series it is rewritten to
// FORFEITED. Must run before every ranked enqueue. Reports whether a
// series was forfeited.
func (r *SeriesRegistry) Reconcile(userID string, hasLiveMatch func(seriesID string) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.active[userID]
	if !ok {
		return false
	}
	s := r.byID[id]
	if s == nil {
		delete(r.active, userID)
		return false
	}
	if s.Status != domain.SeriesInProgress {
		r.release(s)
		return false
	}
	if hasLiveMatch != nil && hasLiveMatch(id) {
		return false
	}
	s.Status = domain.SeriesForfeited
	r.release(s)
	return true
}

// release drops active pointers; callers hold the lock.
func (r *SeriesRegistry) release(s *domain.RankedSeries) {
	if r.active[s.P1] == s.ID {
		delete(r.active, s.P1)
	}
	if r.active[s.P2] == s.ID {
		delete(r.active, s.P2)
	}
}
