package engine

import (
	"errors"
	"time"

	"duel21/internal/domain"
)

// Service contains the round state machine use-cases operating on match
// state. It never logs and never panics across the boundary; every rejected
// action returns a sentinel error and leaves state untouched.
type Service struct {
	rng domain.RNG
	now func() time.Time
}

// NewService constructs a Service with the provided rng or the CSPRNG
// default.
func NewService(rng domain.RNG) *Service {
	if rng == nil {
		rng = domain.NewCryptoRNG()
	}
	return &Service{rng: rng, now: time.Now}
}

var (
	ErrUnauthorized         = errors.New("player is not seated in this match")
	ErrWrongPhase           = errors.New("action not valid in the current phase")
	ErrNotYourTurn          = errors.New("not your turn")
	ErrPressureBlocks       = errors.New("a pressure decision is pending")
	ErrNotPressureTarget    = errors.New("only the pressured player may decide")
	ErrHandAlreadyResolved  = errors.New("hand is already resolved")
	ErrNotFirstAction       = errors.New("action is only legal as the first action on the hand")
	ErrHitAfterDouble       = errors.New("hit is not allowed after doubling")
	ErrSplitUnavailable     = errors.New("split is not available for this hand")
	ErrInsufficientChips    = errors.New("insufficient chips")
	ErrBetOutOfRange        = errors.New("bet is outside the table range")
	ErrBetFixed             = errors.New("bet is fixed for this table")
	ErrStakeExceedsTableMax = errors.New("stake would exceed the table maximum")
	ErrUnknownAction        = errors.New("unknown action")
	ErrNegotiationClosed    = errors.New("bet negotiation is not open")
	ErrRematchUnavailable   = errors.New("double-or-nothing is not available at this table")
	ErrRoundFinalized       = errors.New("round already settled")
)

// available returns chips the player can still commit: bankroll minus the
// exposure not yet withdrawn.
func available(m *domain.Match, userID string) int64 {
	chips := m.Chips[userID]
	if m.Round == nil {
		return chips
	}
	p := m.Round.Player(userID)
	if p == nil {
		return chips
	}
	return chips - (p.Exposure() - p.StakeWithdrawn)
}

// seated returns an error unless the user holds a seat.
func seated(m *domain.Match, userID string) error {
	if m.SeatOf(userID) < 0 {
		return ErrUnauthorized
	}
	return nil
}

// StartRound creates a fresh round and opens betting. The starting seat
// flips each round.
func (s *Service) StartRound(m *domain.Match) ([]Event, error) {
	if m.Phase != "" && m.Phase != domain.PhaseResult && m.Phase != domain.PhaseRoundInit {
		return nil, ErrWrongPhase
	}
	return s.startRoundWithBet(m, s.defaultBaseBet(m))
}

func (s *Service) defaultBaseBet(m *domain.Match) int64 {
	if m.Bets.Fixed > 0 {
		return m.Bets.Fixed
	}
	if m.Round != nil && m.Round.BaseBet > 0 {
		return m.Round.BaseBet
	}
	return m.Bets.Min
}

func (s *Service) startRoundWithBet(m *domain.Match, baseBet int64) ([]Event, error) {
	if m.RoundNumber > 0 {
		m.StartingIndex = 1 - m.StartingIndex
	}
	m.RoundNumber++

	round := &domain.Round{
		Number:        m.RoundNumber,
		Deck:          domain.NewDeck(s.rng),
		BaseBet:       baseBet,
		Players:       make(map[string]*domain.PlayerRoundState, 2),
		Results:       make(map[string]*domain.RoundResult, 2),
		ResultChoices: make(map[string]string, 2),
	}
	for _, id := range m.PlayerIDs {
		round.Players[id] = &domain.PlayerRoundState{UserID: id}
	}
	m.Round = round
	m.Phase = domain.PhaseRoundInit

	return []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			RoundNumber: round.Number,
			BaseBet:     round.BaseBet,
			FixedBet:    m.Bets.Fixed > 0,
		},
	}}, nil
}
