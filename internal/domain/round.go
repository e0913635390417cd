package domain

// PressureType distinguishes what action opened the pressure window.
type PressureType string

const (
	PressureDouble PressureType = "double"
	PressureSplit  PressureType = "split"
)

// PendingPressure is the open match-or-surrender demand created by a double
// or split. While non-nil, only the opponent's decision is a legal action.
// At most one exists per round at a time.
type PendingPressure struct {
	InitiatorID   string
	InitiatorHand int
	OpponentID    string
	Type          PressureType
	Delta         int64
	TargetHand    int
	AffectedHands []int
}

// BetNegotiation tracks the raise/lower/agree exchange during ROUND_INIT.
type BetNegotiation struct {
	Offer     int64
	OfferedBy string
	Agreed    map[string]bool
}

// NewBetNegotiation starts a negotiation at the given opening offer.
func NewBetNegotiation(offer int64, offeredBy string) *BetNegotiation {
	return &BetNegotiation{
		Offer:     offer,
		OfferedBy: offeredBy,
		Agreed:    map[string]bool{},
	}
}

// PlayerRoundState is one player's side of a round.
type PlayerRoundState struct {
	UserID     string
	Hands      []*Hand
	ActiveHand int

	BetConfirmed bool
	// StakeWithdrawn is chips already taken from the bankroll at round start
	// (bot matches withdraw up front); settlement adds it back in.
	StakeWithdrawn int64
}

// Exposure is the player's total committed stake across all hands.
func (p *PlayerRoundState) Exposure() int64 {
	var total int64
	for _, h := range p.Hands {
		total += h.Bet
	}
	return total
}

// NextPlayableHand returns the index of the first playable hand at or after
// from, or -1 when every hand is terminal. Split hands must all finish
// before the turn can leave this player.
func (p *PlayerRoundState) NextPlayableHand(from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(p.Hands); i++ {
		if p.Hands[i].Playable() {
			return i
		}
	}
	for i := 0; i < from && i < len(p.Hands); i++ {
		if p.Hands[i].Playable() {
			return i
		}
	}
	return -1
}

// HandAt returns hand i, falling back to hand 0 past the end of the list.
// The fallback is load-bearing for settling asymmetric split counts.
func (p *PlayerRoundState) HandAt(i int) *Hand {
	if i >= 0 && i < len(p.Hands) {
		return p.Hands[i]
	}
	return p.Hands[0]
}

// RoundResult is the immutable per-player settlement record.
type RoundResult struct {
	Outcome   Outcome `json:"outcome"`
	Title     string  `json:"title"`
	ChipDelta int64   `json:"chip_delta"`
	XPDelta   int64   `json:"xp_delta"`
	EloDelta  int     `json:"elo_delta,omitempty"`
	Series    *SeriesSummary
}

// Round holds per-hand data for one dealt round. Created fresh every round;
// nothing carries over except a freshly shuffled deck.
type Round struct {
	Number  int
	Deck    *Deck
	BaseBet int64

	Players     map[string]*PlayerRoundState
	TurnUserID  string
	Pressure    *PendingPressure
	Negotiation *BetNegotiation

	Results         map[string]*RoundResult
	ResultFinalized bool

	// ResultChoices records next/betting/double picks in the RESULT phase.
	ResultChoices map[string]string
}

// Player returns the round state for the given user, or nil.
func (r *Round) Player(userID string) *PlayerRoundState {
	return r.Players[userID]
}

// BothConfirmed reports whether both players have confirmed their bet.
func (r *Round) BothConfirmed() bool {
	if len(r.Players) != 2 {
		return false
	}
	for _, p := range r.Players {
		if !p.BetConfirmed {
			return false
		}
	}
	return true
}

// AnyPlayableHand reports whether either player still has a playable hand.
func (r *Round) AnyPlayableHand() bool {
	for _, p := range r.Players {
		if p.NextPlayableHand(0) >= 0 {
			return true
		}
	}
	return false
}
