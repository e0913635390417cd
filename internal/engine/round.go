package engine

import (
	"strings"

	"duel21/internal/domain"
)

// deal draws two cards per player starting with the round's first seat,
// withdraws the base stakes on bot tables, and checks naturals. A natural
// on either side short-circuits the round straight to settlement.
func (s *Service) deal(m *domain.Match) ([]Event, error) {
	round := m.Round
	first := m.PlayerIDs[m.StartingIndex]
	second := m.OpponentOf(first)

	for _, id := range []string{first, second} {
		p := round.Player(id)
		p.Hands = []*domain.Hand{{Bet: round.BaseBet}}
	}
	for i := 0; i < 2; i++ {
		for _, id := range []string{first, second} {
			card, ok := round.Deck.Draw()
			if !ok {
				return nil, ErrRoundFinalized
			}
			hand := round.Player(id).Hands[0]
			hand.Cards = append(hand.Cards, card)
		}
	}

	if m.Type == domain.MatchTypeBot {
		for _, id := range []string{first, second} {
			p := round.Player(id)
			m.Chips[id] -= round.BaseBet
			p.StakeWithdrawn = round.BaseBet
		}
	}

	var naturals []string
	for _, id := range []string{first, second} {
		hand := round.Player(id).Hands[0]
		if hand.IsNatural() {
			hand.Natural = true
			hand.Stood = true
			hand.Locked = true
			naturals = append(naturals, id)
		}
	}

	events := []Event{{
		Kind:    EventCardsDealt,
		Payload: CardsDealtPayload{FirstTurnUserID: first, Naturals: naturals},
	}}

	if len(naturals) > 0 {
		settleEvents, err := s.settleRound(m)
		if err != nil {
			return nil, err
		}
		return append(events, settleEvents...), nil
	}

	round.TurnUserID = first
	m.Phase = domain.PhaseActionTurn
	return events, nil
}

// HandAction dispatches hit/stand/double/split/surrender for the acting
// player's active hand. Verbs are case-insensitive.
func (s *Service) HandAction(m *domain.Match, userID, verb string) ([]Event, error) {
	verb = strings.ToLower(verb)
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	if m.Round != nil && m.Round.Pressure != nil {
		return nil, ErrPressureBlocks
	}
	if m.Phase != domain.PhaseActionTurn || m.Round == nil {
		return nil, ErrWrongPhase
	}
	round := m.Round
	if round.TurnUserID != userID {
		return nil, ErrNotYourTurn
	}

	p := round.Player(userID)
	hand := p.Hands[p.ActiveHand]
	if hand.Terminal() {
		return nil, ErrHandAlreadyResolved
	}

	switch verb {
	case "hit":
		return s.applyHit(m, userID, p, hand)
	case "stand":
		hand.Stood = true
		hand.ActionCount++
		return s.afterAction(m, userID, "stand", p.ActiveHand, hand)
	case "surrender":
		if !hand.CanSurrender() {
			return nil, ErrNotFirstAction
		}
		hand.Surrendered = true
		hand.ActionCount++
		return s.afterAction(m, userID, "surrender", p.ActiveHand, hand)
	case "double":
		return s.applyDouble(m, userID, p, hand)
	case "split":
		return s.applySplit(m, userID, p, hand)
	default:
		return nil, ErrUnknownAction
	}
}

func (s *Service) applyHit(m *domain.Match, userID string, p *domain.PlayerRoundState, hand *domain.Hand) ([]Event, error) {
	if !hand.CanHit() {
		return nil, ErrHitAfterDouble
	}
	card, ok := m.Round.Deck.Draw()
	if !ok {
		return nil, ErrRoundFinalized
	}
	hand.Cards = append(hand.Cards, card)
	hand.HitCount++
	hand.ActionCount++

	if hand.IsBustTotal() {
		// A bust locks the hand as a loss candidate and never reopens.
		hand.Busted = true
	} else if hand.Total() == domain.BlackjackTarget {
		hand.Stood = true
	}
	return s.afterAction(m, userID, "hit", p.ActiveHand, hand)
}

func (s *Service) applyDouble(m *domain.Match, userID string, p *domain.PlayerRoundState, hand *domain.Hand) ([]Event, error) {
	if !hand.CanDouble() {
		return nil, ErrNotFirstAction
	}
	delta := hand.Bet
	if hand.Bet+delta > m.Bets.TableMax {
		return nil, ErrStakeExceedsTableMax
	}
	if available(m, userID) < delta {
		return nil, ErrInsufficientChips
	}
	card, ok := m.Round.Deck.Draw()
	if !ok {
		return nil, ErrRoundFinalized
	}

	hand.Bet += delta
	hand.Cards = append(hand.Cards, card)
	hand.DoubleCount++
	hand.ActionCount++

	if hand.IsBustTotal() {
		hand.Busted = true
		return s.afterAction(m, userID, "double", p.ActiveHand, hand)
	}
	if hand.Total() == domain.BlackjackTarget {
		hand.Stood = true
		return s.afterAction(m, userID, "double", p.ActiveHand, hand)
	}

	return s.openPressure(m, userID, domain.PressureDouble, delta, p.ActiveHand, []int{p.ActiveHand}, "double", hand)
}

func (s *Service) applySplit(m *domain.Match, userID string, p *domain.PlayerRoundState, hand *domain.Hand) ([]Event, error) {
	if !hand.CanSplit(len(p.Hands), m.SplitTensActive) {
		return nil, ErrSplitUnavailable
	}
	delta := hand.Bet
	if available(m, userID) < delta {
		return nil, ErrInsufficientChips
	}

	left := &domain.Hand{
		Cards:      []domain.Card{hand.Cards[0]},
		Bet:        hand.Bet,
		SplitDepth: hand.SplitDepth + 1,
		WasSplit:   true,
	}
	right := &domain.Hand{
		Cards:      []domain.Card{hand.Cards[1]},
		Bet:        hand.Bet,
		SplitDepth: hand.SplitDepth + 1,
		WasSplit:   true,
	}
	for _, h := range []*domain.Hand{left, right} {
		card, ok := m.Round.Deck.Draw()
		if !ok {
			return nil, ErrRoundFinalized
		}
		h.Cards = append(h.Cards, card)
	}

	idx := p.ActiveHand
	hands := make([]*domain.Hand, 0, len(p.Hands)+1)
	hands = append(hands, p.Hands[:idx]...)
	hands = append(hands, left, right)
	hands = append(hands, p.Hands[idx+1:]...)
	p.Hands = hands

	return s.openPressure(m, userID, domain.PressureSplit, delta, idx, []int{idx, idx + 1}, "split", left)
}

// afterAction emits the applied-action event and advances the turn.
func (s *Service) afterAction(m *domain.Match, userID, action string, handIndex int, hand *domain.Hand) ([]Event, error) {
	events := []Event{{
		Kind: EventActionApplied,
		Payload: ActionAppliedPayload{
			UserID:    userID,
			Action:    action,
			HandIndex: handIndex,
			HandTotal: hand.Total(),
			Busted:    hand.Busted,
		},
	}}
	advanceEvents, err := s.progressTurn(m, userID)
	if err != nil {
		return nil, err
	}
	return append(events, advanceEvents...), nil
}

// progressTurn applies the core split rule: the acting player keeps the
// turn while any of their hands is playable; only then does the turn pass
// to the opponent's next playable hand. With no playable hands anywhere and
// no pressure pending, settlement fires immediately.
func (s *Service) progressTurn(m *domain.Match, actorID string) ([]Event, error) {
	round := m.Round
	actor := round.Player(actorID)

	if next := actor.NextPlayableHand(actor.ActiveHand); next >= 0 {
		actor.ActiveHand = next
		round.TurnUserID = actorID
		return nil, nil
	}

	oppID := m.OpponentOf(actorID)
	opp := round.Player(oppID)
	if next := opp.NextPlayableHand(opp.ActiveHand); next >= 0 {
		opp.ActiveHand = next
		round.TurnUserID = oppID
		return nil, nil
	}

	if round.Pressure != nil {
		return nil, nil
	}
	return s.settleRound(m)
}

// TimeoutStand is the turn-timer callback: it re-validates that the player
// still holds the turn with a live hand before auto-standing, since timer
// cancellation is best-effort. A pending pressure aimed at the player times
// out as a surrender decision instead.
func (s *Service) TimeoutStand(m *domain.Match, userID string) ([]Event, error) {
	if m.Round == nil {
		return nil, nil
	}
	if pr := m.Round.Pressure; pr != nil {
		if pr.OpponentID != userID {
			return nil, nil
		}
		return s.PressureDecision(m, userID, "surrender")
	}
	if m.Phase != domain.PhaseActionTurn || m.Round.TurnUserID != userID {
		return nil, nil
	}
	p := m.Round.Player(userID)
	if p == nil || p.Hands[p.ActiveHand].Terminal() {
		return nil, nil
	}
	return s.HandAction(m, userID, "stand")
}

// Forfeit ends the match, charging the forfeiting player
// min(bankroll, max(exposure, baseBet)) and crediting the opponent.
func (s *Service) Forfeit(m *domain.Match, userID string) ([]Event, error) {
	if err := seated(m, userID); err != nil {
		return nil, err
	}
	if m.Phase == domain.PhaseEnded {
		return nil, ErrWrongPhase
	}

	var exposure, baseBet int64
	if m.Round != nil {
		baseBet = m.Round.BaseBet
		if p := m.Round.Player(userID); p != nil {
			exposure = p.Exposure()
		}
	}
	loss := domain.ForfeitLoss(m.Chips[userID], exposure, baseBet)
	oppID := m.OpponentOf(userID)

	changes := map[string]int64{userID: -loss, oppID: loss}
	m.Chips[userID] -= loss
	m.Chips[oppID] += loss
	m.Phase = domain.PhaseEnded

	return []Event{{
		Kind: EventMatchEnded,
		Payload: MatchEndedPayload{
			Reason:         "forfeit",
			ForfeitedBy:    userID,
			BalanceChanges: changes,
		},
	}}, nil
}

// FinishReveal transitions REVEAL to RESULT after the display delay.
func (s *Service) FinishReveal(m *domain.Match) ([]Event, error) {
	if m.Phase != domain.PhaseReveal || m.Round == nil {
		return nil, ErrWrongPhase
	}
	m.Phase = domain.PhaseResult
	return []Event{{
		Kind:    EventRoundResult,
		Payload: RoundResultPayload{Results: m.Round.Results},
	}}, nil
}

// LegalActions lists the hand-action verbs currently legal for the user,
// in a stable order. Used for bot observations and client hints.
func (s *Service) LegalActions(m *domain.Match, userID string) []string {
	if m.Round == nil || m.Round.Pressure != nil || m.Phase != domain.PhaseActionTurn {
		return nil
	}
	if m.Round.TurnUserID != userID {
		return nil
	}
	p := m.Round.Player(userID)
	if p == nil {
		return nil
	}
	hand := p.Hands[p.ActiveHand]
	if hand.Terminal() {
		return nil
	}

	actions := make([]string, 0, 5)
	if hand.CanHit() {
		actions = append(actions, "hit")
	}
	actions = append(actions, "stand")
	if hand.CanDouble() && hand.Bet*2 <= m.Bets.TableMax && available(m, userID) >= hand.Bet {
		actions = append(actions, "double")
	}
	if hand.CanSplit(len(p.Hands), m.SplitTensActive) && available(m, userID) >= hand.Bet {
		actions = append(actions, "split")
	}
	if hand.CanSurrender() {
		actions = append(actions, "surrender")
	}
	return actions
}
