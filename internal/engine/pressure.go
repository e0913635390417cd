package engine

import (
	"strings"

	"duel21/internal/domain"
)

// openPressure records the pending stake demand and hands control to the
// opponent. The target is the opponent's currently active hand, or hand 0
// when they are not mid-play.
func (s *Service) openPressure(m *domain.Match, initiatorID string, kind domain.PressureType, delta int64, initiatorHand int, affected []int, action string, hand *domain.Hand) ([]Event, error) {
	round := m.Round
	oppID := m.OpponentOf(initiatorID)
	opp := round.Player(oppID)

	target := 0
	if round.TurnUserID == oppID {
		target = opp.ActiveHand
	} else if opp.ActiveHand < len(opp.Hands) && opp.Hands[opp.ActiveHand].Playable() {
		target = opp.ActiveHand
	}

	round.Pressure = &domain.PendingPressure{
		InitiatorID:   initiatorID,
		InitiatorHand: initiatorHand,
		OpponentID:    oppID,
		Type:          kind,
		Delta:         delta,
		TargetHand:    target,
		AffectedHands: affected,
	}
	m.Phase = domain.PhasePressure

	return []Event{
		{
			Kind: EventActionApplied,
			Payload: ActionAppliedPayload{
				UserID:    initiatorID,
				Action:    action,
				HandIndex: initiatorHand,
				HandTotal: hand.Total(),
			},
		},
		{
			Kind: EventPressureOpened,
			Payload: PressureOpenedPayload{
				InitiatorID: initiatorID,
				OpponentID:  oppID,
				Type:        string(kind),
				Delta:       delta,
				TargetHand:  target,
			},
		},
	}, nil
}

// PressureDecision resolves the pending demand with match or surrender.
// Exactly one decision resolves it; control then returns to the initiator's
// same hand when still playable, otherwise the normal advance rule runs.
// Matching never consumes the opponent's own action budget on that hand.
// Verbs are case-insensitive.
func (s *Service) PressureDecision(m *domain.Match, userID, verb string) ([]Event, error) {
	verb = strings.ToLower(verb)
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	round := m.Round
	if round == nil || round.Pressure == nil {
		return nil, ErrWrongPhase
	}
	pr := round.Pressure
	if pr.OpponentID != userID {
		return nil, ErrNotPressureTarget
	}

	opp := round.Player(userID)
	target := opp.HandAt(pr.TargetHand)

	switch verb {
	case "match":
		if target.Bet+pr.Delta > m.Bets.TableMax {
			return nil, ErrStakeExceedsTableMax
		}
		if available(m, userID) < pr.Delta {
			return nil, ErrInsufficientChips
		}
		target.Bet += pr.Delta
	case "surrender":
		target.Surrendered = true
	default:
		return nil, ErrUnknownAction
	}

	round.Pressure = nil
	m.Phase = domain.PhaseActionTurn

	events := []Event{{
		Kind: EventPressureResolved,
		Payload: PressureResolvedPayload{
			OpponentID: userID,
			Decision:   verb,
			Delta:      pr.Delta,
			TargetHand: pr.TargetHand,
		},
	}}

	initiator := round.Player(pr.InitiatorID)
	if pr.InitiatorHand < len(initiator.Hands) && initiator.Hands[pr.InitiatorHand].Playable() {
		initiator.ActiveHand = pr.InitiatorHand
		round.TurnUserID = pr.InitiatorID
		return events, nil
	}

	advanceEvents, err := s.progressTurn(m, pr.InitiatorID)
	if err != nil {
		return nil, err
	}
	return append(events, advanceEvents...), nil
}
