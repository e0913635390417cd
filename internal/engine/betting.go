package engine

import (
	"strings"

	"duel21/internal/domain"
)

// SetBet proposes a new base bet during ROUND_INIT. Changing the bet resets
// both confirmations.
func (s *Service) SetBet(m *domain.Match, userID string, amount int64) ([]Event, error) {
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	if m.Phase != domain.PhaseRoundInit || m.Round == nil {
		return nil, ErrWrongPhase
	}
	if m.Bets.Fixed > 0 {
		return nil, ErrBetFixed
	}
	if amount < m.Bets.Min || amount > m.Bets.Max {
		return nil, ErrBetOutOfRange
	}
	if available(m, userID) < amount {
		return nil, ErrInsufficientChips
	}

	m.Round.BaseBet = amount
	for _, p := range m.Round.Players {
		p.BetConfirmed = false
	}
	return []Event{{
		Kind:    EventBetUpdated,
		Payload: BetUpdatedPayload{BaseBet: amount, UpdatedBy: userID},
	}}, nil
}

// ConfirmBet locks in the current base bet for one player. Dealing begins
// once both players have confirmed.
func (s *Service) ConfirmBet(m *domain.Match, userID string) ([]Event, error) {
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	if m.Phase != domain.PhaseRoundInit || m.Round == nil {
		return nil, ErrWrongPhase
	}
	if available(m, userID) < m.Round.BaseBet {
		return nil, ErrInsufficientChips
	}

	m.Round.Player(userID).BetConfirmed = true
	events := []Event{{
		Kind:    EventBetConfirmed,
		Payload: BetConfirmedPayload{UserID: userID},
	}}

	if m.Round.BothConfirmed() {
		dealEvents, err := s.deal(m)
		if err != nil {
			return nil, err
		}
		events = append(events, dealEvents...)
	}
	return events, nil
}

// Negotiate handles the raise/lower/agree exchange on non-fixed tables.
// The proposing side implicitly agrees with its own offer; once both sides
// agree the offer becomes the base bet and dealing begins. Verbs are
// case-insensitive.
func (s *Service) Negotiate(m *domain.Match, userID, verb string, amount int64) ([]Event, error) {
	verb = strings.ToLower(verb)
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	if m.Phase != domain.PhaseRoundInit || m.Round == nil {
		return nil, ErrWrongPhase
	}
	if m.Bets.Fixed > 0 {
		return nil, ErrBetFixed
	}

	round := m.Round
	switch verb {
	case "raise", "lower":
		if amount < m.Bets.Min || amount > m.Bets.Max {
			return nil, ErrBetOutOfRange
		}
		current := round.BaseBet
		if round.Negotiation != nil {
			current = round.Negotiation.Offer
		}
		if verb == "raise" && amount <= current {
			return nil, ErrBetOutOfRange
		}
		if verb == "lower" && amount >= current {
			return nil, ErrBetOutOfRange
		}
		if available(m, userID) < amount {
			return nil, ErrInsufficientChips
		}
		round.Negotiation = domain.NewBetNegotiation(amount, userID)
		round.Negotiation.Agreed[userID] = true

	case "agree":
		if round.Negotiation == nil {
			return nil, ErrNegotiationClosed
		}
		if available(m, userID) < round.Negotiation.Offer {
			return nil, ErrInsufficientChips
		}
		round.Negotiation.Agreed[userID] = true

	default:
		return nil, ErrUnknownAction
	}

	events := []Event{{
		Kind: EventBetUpdated,
		Payload: BetUpdatedPayload{
			BaseBet:     round.BaseBet,
			UpdatedBy:   userID,
			Negotiating: true,
			Offer:       round.Negotiation.Offer,
			OfferedBy:   round.Negotiation.OfferedBy,
		},
	}}

	if len(round.Negotiation.Agreed) == 2 {
		round.BaseBet = round.Negotiation.Offer
		round.Negotiation = nil
		for _, p := range round.Players {
			p.BetConfirmed = true
		}
		dealEvents, err := s.deal(m)
		if err != nil {
			return nil, err
		}
		events = append(events, dealEvents...)
	}
	return events, nil
}

// ResetNegotiation abandons the open offer.
func (s *Service) ResetNegotiation(m *domain.Match, userID string) ([]Event, error) {
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	if m.Phase != domain.PhaseRoundInit || m.Round == nil {
		return nil, ErrWrongPhase
	}
	if m.Round.Negotiation == nil {
		return nil, ErrNegotiationClosed
	}
	m.Round.Negotiation = nil
	return []Event{{
		Kind:    EventBetUpdated,
		Payload: BetUpdatedPayload{BaseBet: m.Round.BaseBet, UpdatedBy: userID},
	}}, nil
}

// ResultAction handles the RESULT-phase verbs next, betting and double.
// The round advances once both players have chosen; double-or-nothing only
// takes effect when both chose it. Verbs are case-insensitive.
func (s *Service) ResultAction(m *domain.Match, userID, verb string) ([]Event, error) {
	verb = strings.ToLower(verb)
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	if m.Phase != domain.PhaseResult || m.Round == nil {
		return nil, ErrWrongPhase
	}

	switch verb {
	case "next", "betting":
		// Both mean "ready for the next round".
	case "double":
		if m.Type == domain.MatchTypeRanked || m.Type == domain.MatchTypeBot {
			return nil, ErrRematchUnavailable
		}
		// Double-or-nothing is the sanctioned exception to a pinned
		// quick-play bet; only the table maximum bounds it.
		doubled := m.Round.BaseBet * 2
		if doubled > m.Bets.TableMax {
			return nil, ErrRematchUnavailable
		}
		if m.Chips[userID] < doubled {
			return nil, ErrInsufficientChips
		}
	default:
		return nil, ErrUnknownAction
	}

	m.Round.ResultChoices[userID] = verb
	if len(m.Round.ResultChoices) < 2 {
		return nil, nil
	}

	bothDoubled := true
	for _, choice := range m.Round.ResultChoices {
		if choice != "double" {
			bothDoubled = false
		}
	}
	baseBet := s.defaultBaseBet(m)
	if bothDoubled {
		baseBet = m.Round.BaseBet * 2
	}
	return s.startRoundWithBet(m, baseBet)
}
