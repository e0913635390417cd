package engine

import (
	"duel21/internal/domain"
	"duel21/internal/rating"
)

// XP settlement tuning.
const (
	xpBaseWin  = 120
	xpBasePush = 45
	xpBaseLoss = 25
)

// settleRound compares every hand slot, applies chip and rating changes,
// and freezes the per-player result records. Idempotent: a round that has
// already finalized settles to no-ops.
func (s *Service) settleRound(m *domain.Match) ([]Event, error) {
	round := m.Round
	if round.ResultFinalized {
		return nil, nil
	}

	aID := m.PlayerIDs[0]
	bID := m.PlayerIDs[1]
	pa := round.Player(aID)
	pb := round.Player(bID)

	slots := len(pa.Hands)
	if len(pb.Hands) > slots {
		slots = len(pb.Hands)
	}

	var netA int64
	facts := rating.GameFacts{
		Splits: (len(pa.Hands) - 1) + (len(pb.Hands) - 1),
	}
	surrenderPaid := map[*domain.Hand]int64{}

	for i := 0; i < slots; i++ {
		ha := pa.HandAt(i)
		hb := pb.HandAt(i)
		delta, oa, ob := s.compareHands(ha, hb, surrenderPaid)
		netA += delta

		if i < len(pa.Hands) && ha.Outcome == domain.OutcomeNone {
			ha.Outcome = oa
		}
		if i < len(pb.Hands) && hb.Outcome == domain.OutcomeNone {
			hb.Outcome = ob
		}

		if ha.IsNatural() {
			facts.Naturals++
		}
		if hb.IsNatural() {
			facts.Naturals++
		}
		if ha.Busted {
			facts.Busts++
		}
		if hb.Busted {
			facts.Busts++
		}
		if oa == domain.OutcomePush {
			facts.Pushes++
		}
	}

	if round.BaseBet > 0 {
		ratio := netA
		if ratio < 0 {
			ratio = -ratio
		}
		facts.MarginRatio = float64(ratio) / float64(round.BaseBet)
	}

	deltas := map[string]int64{aID: netA, bID: -netA}
	changes := make(map[string]int64, 2)
	for _, id := range []string{aID, bID} {
		p := round.Player(id)
		// Bot tables withdrew the base stake from the table balance up
		// front, so restore it here before applying the net. The wallet
		// flush carries only the net delta: the wallet itself was never
		// debited at deal time.
		m.Chips[id] += deltas[id] + p.StakeWithdrawn
		changes[id] = deltas[id]
	}

	results := map[string]*domain.RoundResult{}
	for _, id := range []string{aID, bID} {
		outcome := outcomeForNet(deltas[id], round.Player(id))
		m.WinStreak[id] = domain.NextMatchWinStreak(m.WinStreak[id], outcome)
		_, m.LossStreak[id] = domain.NextStreaks(0, m.LossStreak[id], outcome)
		results[id] = &domain.RoundResult{
			Outcome:   outcome,
			Title:     titleFor(outcome),
			ChipDelta: deltas[id],
			XPDelta:   xpFor(outcome, round.BaseBet, m.WinStreak[id]),
		}
	}

	if m.Type == domain.MatchTypeRanked && m.Series != nil {
		s.applyRankedRating(m, netA, facts, results)
	}

	round.Results = results
	round.ResultFinalized = true
	m.Phase = domain.PhaseReveal

	return []Event{{
		Kind: EventRoundRevealed,
		Payload: RoundRevealedPayload{
			BalanceChanges: changes,
			Results:        results,
		},
	}}, nil
}

// compareHands settles one slot pair, returning the chip delta from hand
// A's perspective plus both hand outcomes. surrenderPaid caps repeated
// fallback comparisons so a surrendered hand never pays more than its
// exposure.
func (s *Service) compareHands(ha, hb *domain.Hand, surrenderPaid map[*domain.Hand]int64) (int64, domain.Outcome, domain.Outcome) {
	pot := ha.Bet
	if hb.Bet < pot {
		pot = hb.Bet
	}

	switch {
	case ha.Surrendered && hb.Surrendered:
		return 0, domain.OutcomePush, domain.OutcomePush
	case ha.Surrendered:
		loss := cappedSurrenderLoss(ha, pot, surrenderPaid)
		return -loss, domain.OutcomeLoss, domain.OutcomeWin
	case hb.Surrendered:
		loss := cappedSurrenderLoss(hb, pot, surrenderPaid)
		return loss, domain.OutcomeWin, domain.OutcomeLoss
	case ha.Busted && hb.Busted:
		// A bust always loses; two busts cancel in chips but neither pushes.
		return 0, domain.OutcomeLoss, domain.OutcomeLoss
	case ha.Busted:
		return -pot, domain.OutcomeLoss, domain.OutcomeWin
	case hb.Busted:
		return pot, domain.OutcomeWin, domain.OutcomeLoss
	}

	aNatural := ha.IsNatural()
	bNatural := hb.IsNatural()
	switch {
	case aNatural && bNatural:
		return 0, domain.OutcomePush, domain.OutcomePush
	case aNatural:
		return domain.NaturalPayout(pot), domain.OutcomeWin, domain.OutcomeLoss
	case bNatural:
		return -domain.NaturalPayout(pot), domain.OutcomeLoss, domain.OutcomeWin
	}

	ta, tb := ha.Total(), hb.Total()
	switch {
	case ta > tb:
		return pot, domain.OutcomeWin, domain.OutcomeLoss
	case tb > ta:
		return -pot, domain.OutcomeLoss, domain.OutcomeWin
	default:
		return 0, domain.OutcomePush, domain.OutcomePush
	}
}

func cappedSurrenderLoss(h *domain.Hand, pot int64, paid map[*domain.Hand]int64) int64 {
	loss := domain.SurrenderLoss(pot)
	if paid[h]+loss > h.Bet {
		loss = h.Bet - paid[h]
	}
	if loss < 0 {
		loss = 0
	}
	paid[h] += loss
	return loss
}

// outcomeForNet maps a player's net delta to a result outcome. A zero net
// over disagreeing split hands reads as mixed, and a zero net where every
// hand lost (both players busted) stays a loss rather than a push.
func outcomeForNet(net int64, p *domain.PlayerRoundState) domain.Outcome {
	switch {
	case net > 0:
		return domain.OutcomeWin
	case net < 0:
		return domain.OutcomeLoss
	}
	first := p.Hands[0].Outcome
	for _, h := range p.Hands[1:] {
		if h.Outcome != first {
			return domain.OutcomeMixed
		}
	}
	if first == domain.OutcomeLoss {
		return domain.OutcomeLoss
	}
	return domain.OutcomePush
}

func titleFor(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeWin:
		return "Victory"
	case domain.OutcomeLoss:
		return "Defeat"
	case domain.OutcomeMixed:
		return "Split Decision"
	default:
		return "Push"
	}
}

// xpFor computes earned XP with a bet-size multiplier and a win-streak
// bonus multiplier.
func xpFor(outcome domain.Outcome, baseBet int64, winStreak int) int64 {
	var base int64
	switch outcome {
	case domain.OutcomeWin:
		base = xpBaseWin
	case domain.OutcomeLoss:
		base = xpBaseLoss
	default:
		base = xpBasePush
	}

	betMult := 1.0 + float64(baseBet)/500.0
	if betMult > 3.0 {
		betMult = 3.0
	}
	streak := winStreak
	if streak > 5 {
		streak = 5
	}
	streakMult := 1.0 + 0.1*float64(streak)

	return int64(float64(base) * betMult * streakMult)
}

// applyRankedRating records the game on the series, applies per-game Elo,
// and finalizes series Elo exactly once when the series resolves.
func (s *Service) applyRankedRating(m *domain.Match, netA int64, facts rating.GameFacts, results map[string]*domain.RoundResult) {
	aID := m.PlayerIDs[0]
	bID := m.PlayerIDs[1]
	series := m.Series

	scoreA := rating.ScorePush
	winnerID := ""
	switch {
	case netA > 0:
		scoreA = rating.ScoreWin
		winnerID = aID
	case netA < 0:
		scoreA = rating.ScoreLoss
		winnerID = bID
	}

	dA := rating.GameDelta(m.Elo[aID], m.Elo[bID], scoreA, facts)
	dB := rating.GameDelta(m.Elo[bID], m.Elo[aID], 1.0-scoreA, facts)
	m.Elo[aID] += dA
	m.Elo[bID] += dB
	results[aID].EloDelta = dA
	results[bID].EloDelta = dB

	game := domain.SeriesGame{WinnerID: winnerID, EloDeltaP1: dA, EloDeltaP2: dB}
	if series.P1 == aID {
		game.P1Delta, game.P2Delta = netA, -netA
	} else {
		game.P1Delta, game.P2Delta = -netA, netA
	}
	series.RecordGame(game)

	seriesWinner, decided := series.Winner()
	if decided && !series.EloFinalized() {
		series.SeriesElo = map[string]int{}
		for _, id := range []string{series.P1, series.P2} {
			opp := series.P2
			if id == opp {
				opp = series.P1
			}
			start := series.RankAtStart[id]
			delta := rating.SeriesDelta(start, series.RankAtStart[opp], id == seriesWinner, rating.TierFor(start))
			series.SeriesElo[id] = delta
			m.Elo[id] += delta
		}
		series.EloFinalizedAt = s.now()
		series.Status = domain.SeriesCompleted
	}

	for _, id := range []string{aID, bID} {
		delta := series.P1ChipDelta
		oppDelta := series.P2ChipDelta
		if id == series.P2 {
			delta, oppDelta = oppDelta, delta
		}
		results[id].Series = &domain.SeriesSummary{
			SeriesID:  series.ID,
			GamesDone: len(series.Games),
			MyDelta:   delta,
			OppDelta:  oppDelta,
			Completed: decided,
			SeriesElo: series.SeriesElo[id],
			WonSeries: decided && id == seriesWinner,
		}
	}
}
