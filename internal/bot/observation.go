package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	"duel21/internal/domain"
)

// forbiddenKeys must never appear in an observation. The builder copies
// field by field so they cannot leak; CheckObservation re-verifies the
// serialized form in non-production builds.
var forbiddenKeys = []string{"deck", "shoe", "remainingDeck", "fullMatchState", "opponentHiddenCards"}

// ObservedCard is a card as the bot may see it.
type ObservedCard struct {
	Rank int    `json:"rank"`
	Suit string `json:"suit"`
}

// ObservedHand is the bot's own hand in full detail.
type ObservedHand struct {
	Cards       []ObservedCard `json:"cards"`
	Bet         int64          `json:"bet"`
	Total       int            `json:"total"`
	Soft        bool           `json:"soft"`
	Terminal    bool           `json:"terminal"`
	DoubleCount int            `json:"double_count"`
	SplitDepth  int            `json:"split_depth"`
}

// ObservedPressure describes a pending demand aimed at the bot.
type ObservedPressure struct {
	Type       string `json:"type"`
	Delta      int64  `json:"delta"`
	TargetHand int    `json:"target_hand"`
	Affected   []int  `json:"affected"`
	CanAfford  bool   `json:"can_afford"`
}

// Observation is the read-only projection of match state handed to a bot
// brain. It is built fresh per decision as a deep copy: hidden opponent
// cards are stripped entirely (not merely flagged) and the shared deck is
// never referenced.
type Observation struct {
	MatchType  string `json:"match_type"`
	HighRoller bool   `json:"high_roller"`
	BaseBet    int64  `json:"base_bet"`
	MyChips    int64  `json:"my_chips"`

	Hands      []ObservedHand `json:"hands"`
	ActiveHand int            `json:"active_hand"`

	OppUpcards      []ObservedCard `json:"opp_upcards"`
	OppVisibleTotal int            `json:"opp_visible_total"`
	OppHandCount    int            `json:"opp_hand_count"`

	Legal    []string          `json:"legal"`
	Pressure *ObservedPressure `json:"pressure,omitempty"`
}

// Upcard returns the opponent's strongest visible card value (dealer-like
// upcard for basic strategy), or 0 when nothing is visible.
func (o *Observation) Upcard() int {
	best := 0
	for _, c := range o.OppUpcards {
		v := cardValue(c.Rank)
		if v > best {
			best = v
		}
	}
	return best
}

func cardValue(rank int) int {
	switch {
	case rank >= domain.RankJack && rank <= domain.RankKing:
		return 10
	case rank == domain.RankAce:
		return 11
	default:
		return rank
	}
}

// Active returns the bot's active hand.
func (o *Observation) Active() *ObservedHand {
	if o.ActiveHand < 0 || o.ActiveHand >= len(o.Hands) {
		return nil
	}
	return &o.Hands[o.ActiveHand]
}

// Allows reports whether the action is in the legal list.
func (o *Observation) Allows(action string) bool {
	for _, a := range o.Legal {
		if a == action {
			return true
		}
	}
	return false
}

// BuildObservation projects match state for the given bot seat. Only the
// opponent's first card per hand is visible before reveal; hidden indices
// are omitted from the projection entirely.
func BuildObservation(m *domain.Match, botID string, legal []string) (*Observation, error) {
	round := m.Round
	if round == nil {
		return nil, fmt.Errorf("no active round")
	}
	me := round.Player(botID)
	if me == nil {
		return nil, fmt.Errorf("bot %s is not in this round", botID)
	}
	oppID := m.OpponentOf(botID)
	opp := round.Player(oppID)

	obs := &Observation{
		MatchType:  string(m.Type),
		HighRoller: m.IsHighRoller(),
		BaseBet:    round.BaseBet,
		MyChips:    m.Chips[botID],
		ActiveHand: me.ActiveHand,
		Legal:      append([]string(nil), legal...),
	}

	for _, h := range me.Hands {
		oh := ObservedHand{
			Bet:         h.Bet,
			Total:       h.Total(),
			Soft:        h.IsSoft(),
			Terminal:    h.Terminal(),
			DoubleCount: h.DoubleCount,
			SplitDepth:  h.SplitDepth,
		}
		for _, c := range h.Cards {
			oh.Cards = append(oh.Cards, ObservedCard{Rank: c.Rank, Suit: c.Suit})
		}
		obs.Hands = append(obs.Hands, oh)
	}

	if opp != nil {
		obs.OppHandCount = len(opp.Hands)
		revealed := m.Phase == domain.PhaseReveal || m.Phase == domain.PhaseResult
		for _, h := range opp.Hands {
			for i, c := range h.Cards {
				if i > 0 && !revealed {
					continue
				}
				obs.OppUpcards = append(obs.OppUpcards, ObservedCard{Rank: c.Rank, Suit: c.Suit})
				obs.OppVisibleTotal += cardValue(c.Rank)
			}
		}
	}

	if pr := round.Pressure; pr != nil && pr.OpponentID == botID {
		target := me.HandAt(pr.TargetHand)
		obs.Pressure = &ObservedPressure{
			Type:       string(pr.Type),
			Delta:      pr.Delta,
			TargetHand: pr.TargetHand,
			Affected:   append([]int(nil), pr.AffectedHands...),
			CanAfford:  m.Chips[botID] >= pr.Delta && target.Bet+pr.Delta <= m.Bets.TableMax,
		}
	}

	return obs, nil
}

// CheckObservation rejects a serialized observation containing any
// forbidden key. Run by tests and debug builds to hold the
// information-hiding contract.
func CheckObservation(raw []byte) error {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("observation is not a JSON object: %w", err)
	}
	return checkKeys(decoded)
}

func checkKeys(v any) error {
	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			for _, banned := range forbiddenKeys {
				if strings.EqualFold(key, banned) || strings.Contains(strings.ToLower(key), strings.ToLower(banned)) {
					return fmt.Errorf("observation contains forbidden key %q", key)
				}
			}
			if err := checkKeys(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range node {
			if err := checkKeys(child); err != nil {
				return err
			}
		}
	}
	return nil
}
