package engine

import "duel21/internal/domain"

// EventKind identifies emitted engine events for transport dispatch.
type EventKind string

const (
	EventRoundStarted     EventKind = "round_started"
	EventBetUpdated       EventKind = "bet_updated"
	EventBetConfirmed     EventKind = "bet_confirmed"
	EventCardsDealt       EventKind = "cards_dealt"
	EventActionApplied    EventKind = "action_applied"
	EventPressureOpened   EventKind = "pressure_opened"
	EventPressureResolved EventKind = "pressure_resolved"
	EventRoundRevealed    EventKind = "round_revealed"
	EventRoundResult      EventKind = "round_result"
	EventMatchEnded       EventKind = "match_ended"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type RoundStartedPayload struct {
	RoundNumber int   `json:"round_number"`
	BaseBet     int64 `json:"base_bet"`
	FixedBet    bool  `json:"fixed_bet"`
}

type BetUpdatedPayload struct {
	BaseBet     int64  `json:"base_bet"`
	UpdatedBy   string `json:"updated_by"`
	Negotiating bool   `json:"negotiating"`
	Offer       int64  `json:"offer,omitempty"`
	OfferedBy   string `json:"offered_by,omitempty"`
}

type BetConfirmedPayload struct {
	UserID string `json:"user_id"`
}

type CardsDealtPayload struct {
	FirstTurnUserID string `json:"first_turn_user_id"`
	// Naturals lists players dealt a two-card 21; the round short-circuits
	// to settlement when non-empty.
	Naturals []string `json:"naturals,omitempty"`
}

type ActionAppliedPayload struct {
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	HandIndex int    `json:"hand_index"`
	HandTotal int    `json:"hand_total"`
	Busted    bool   `json:"busted"`
	NextTurn  string `json:"next_turn,omitempty"`
}

type PressureOpenedPayload struct {
	InitiatorID string `json:"initiator_id"`
	OpponentID  string `json:"opponent_id"`
	Type        string `json:"type"`
	Delta       int64  `json:"delta"`
	TargetHand  int    `json:"target_hand"`
}

type PressureResolvedPayload struct {
	OpponentID string `json:"opponent_id"`
	Decision   string `json:"decision"`
	Delta      int64  `json:"delta"`
	TargetHand int    `json:"target_hand"`
	NextTurn   string `json:"next_turn,omitempty"`
}

type RoundRevealedPayload struct {
	// BalanceChanges are the net chip deltas to apply to wallets.
	BalanceChanges map[string]int64               `json:"balance_changes"`
	Results        map[string]*domain.RoundResult `json:"results"`
}

type RoundResultPayload struct {
	Results map[string]*domain.RoundResult `json:"results"`
}

type MatchEndedPayload struct {
	Reason         string           `json:"reason"`
	ForfeitedBy    string           `json:"forfeited_by,omitempty"`
	BalanceChanges map[string]int64 `json:"balance_changes,omitempty"`
}
