package bot

import (
	"duel21/internal/domain"
)

// Difficulty scales bot accuracy and unlocks aggressive play.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyNormal Difficulty = "normal"
)

// baseAccuracy is the probability of playing the ideal action before the
// aggression nudge.
func baseAccuracy(d Difficulty) float64 {
	switch d {
	case DifficultyEasy:
		return 0.45
	case DifficultyMedium:
		return 0.75
	default:
		return 0.94
	}
}

// accuracyNudge is how far the aggression bias can move the accuracy.
func accuracyNudge(d Difficulty) float64 {
	if d == DifficultyNormal {
		return 0.08
	}
	return 0.12
}

// StandardBrain is the difficulty-scaled basic-strategy brain shared by all
// bot identities.
type StandardBrain struct {
	Difficulty Difficulty
	Aggression *AggressionModel
	rng        domain.RNG
}

// NewStandardBrain builds a brain; rng may be nil for the CSPRNG default.
func NewStandardBrain(d Difficulty, aggression *AggressionModel, rng domain.RNG) *StandardBrain {
	if rng == nil {
		rng = domain.NewCryptoRNG()
	}
	return &StandardBrain{Difficulty: d, Aggression: aggression, rng: rng}
}

func (b *StandardBrain) bias() float64 {
	if b.Aggression == nil {
		return 0.5
	}
	return b.Aggression.Bias()
}

// accuracy combines the difficulty base with the aggression nudge.
func (b *StandardBrain) accuracy() float64 {
	acc := baseAccuracy(b.Difficulty) + (b.bias()-0.5)*2*accuracyNudge(b.Difficulty)
	if acc < 0.05 {
		return 0.05
	}
	if acc > 0.99 {
		return 0.99
	}
	return acc
}

// ChooseAction layers, in order: basic strategy, difficulty gating, the
// opening-hand surrender heuristic, the pressure-seeking override, and the
// final accuracy roll.
func (b *StandardBrain) ChooseAction(obs *Observation) (Decision, error) {
	hand := obs.Active()
	if hand == nil || len(obs.Legal) == 0 {
		return Decision{Action: "stand"}, nil
	}

	ideal := basicStrategy(hand, obs.Upcard())

	// Easy bots never double or split.
	if b.Difficulty == DifficultyEasy && (ideal == "double" || ideal == "split") {
		if hand.Total < 17 {
			ideal = "hit"
		} else {
			ideal = "stand"
		}
	}

	// Opening-hand surrender heuristic for weak totals into scary upcards.
	if obs.Allows("surrender") && !hand.Soft && hand.Total >= 15 && hand.Total <= 16 && obs.Upcard() >= 9 {
		if b.rng.Float64() < 0.30 {
			ideal = "surrender"
		}
	}

	// Pressure-seeking: sometimes double 9-11 or split aggressive pairs off
	// strict basic strategy, scaled by the global aggression bias.
	if b.Difficulty != DifficultyEasy && ideal != "double" && ideal != "split" {
		bias := b.bias()
		if obs.Allows("double") && !hand.Soft && hand.Total >= 9 && hand.Total <= 11 && b.rng.Float64() < bias*0.6 {
			ideal = "double"
		} else if obs.Allows("split") && isAggressivePair(hand) && b.rng.Float64() < bias*0.5 {
			ideal = "split"
		}
	}

	if !obs.Allows(ideal) {
		ideal = fallbackAction(obs)
	}

	// Accuracy roll: off-accuracy picks a uniformly random legal
	// alternative, never surrender.
	if b.rng.Float64() >= b.accuracy() {
		if alt := randomAlternative(obs, ideal, b.rng); alt != "" {
			ideal = alt
		}
	}
	return Decision{Action: ideal}, nil
}

// ChoosePressure decides match-or-surrender with a probability model keyed
// on difficulty, current total, pressure size and the table stakes.
func (b *StandardBrain) ChoosePressure(obs *Observation) (Decision, error) {
	pr := obs.Pressure
	if pr == nil {
		return Decision{Action: "surrender"}, nil
	}
	if !pr.CanAfford {
		return Decision{Action: "surrender"}, nil
	}

	hand := obs.Active()
	total := 0
	if hand != nil {
		total = hand.Total
	}

	p := 0.5
	switch {
	case total >= 17:
		p += 0.20
	case total <= 12:
		p -= 0.20
	}
	if obs.BaseBet > 0 && pr.Delta > obs.BaseBet {
		p -= 0.15
	}
	if obs.HighRoller {
		p += 0.15
	}
	switch b.Difficulty {
	case DifficultyEasy:
		p -= 0.10
	case DifficultyNormal:
		p += 0.10
	}
	p += (b.bias() - 0.5) * 0.3

	if p < 0.05 {
		p = 0.05
	}
	if p > 0.95 {
		p = 0.95
	}
	if b.rng.Float64() < p {
		return Decision{Action: "match"}, nil
	}
	return Decision{Action: "surrender"}, nil
}

// basicStrategy returns the textbook ideal action given the hand and the
// opponent's strongest visible card value.
func basicStrategy(hand *ObservedHand, upcard int) string {
	if isSplittablePair(hand) {
		if pairSplitTable(hand.Cards[0].Rank, upcard) {
			return "split"
		}
	}

	total := hand.Total
	if hand.Soft {
		switch {
		case total >= 19:
			return "stand"
		case total == 18:
			if upcard >= 9 {
				return "hit"
			}
			if upcard >= 4 && upcard <= 6 {
				return "double"
			}
			return "stand"
		case total >= 15 && upcard >= 4 && upcard <= 6:
			return "double"
		default:
			return "hit"
		}
	}

	switch {
	case total >= 17:
		return "stand"
	case total >= 13:
		if upcard >= 2 && upcard <= 6 {
			return "stand"
		}
		return "hit"
	case total == 12:
		if upcard >= 4 && upcard <= 6 {
			return "stand"
		}
		return "hit"
	case total == 11:
		return "double"
	case total == 10:
		if upcard <= 9 {
			return "double"
		}
		return "hit"
	case total == 9:
		if upcard >= 3 && upcard <= 6 {
			return "double"
		}
		return "hit"
	default:
		return "hit"
	}
}

// pairSplitTable is the standard pair-split decision by pair rank.
func pairSplitTable(rank, upcard int) bool {
	switch rank {
	case domain.RankAce, 8:
		return true
	case 2, 3, 7:
		return upcard <= 7
	case 6:
		return upcard <= 6
	case 9:
		return upcard <= 9 && upcard != 7
	default:
		return false
	}
}

func isSplittablePair(hand *ObservedHand) bool {
	return len(hand.Cards) == 2 && hand.Cards[0].Rank == hand.Cards[1].Rank
}

// isAggressivePair marks pairs worth splitting under pressure-seeking even
// off basic strategy.
func isAggressivePair(hand *ObservedHand) bool {
	if !isSplittablePair(hand) {
		return false
	}
	switch hand.Cards[0].Rank {
	case domain.RankAce, 8, 2, 3:
		return true
	default:
		return false
	}
}

// fallbackAction degrades to the first universally safe legal action.
func fallbackAction(obs *Observation) string {
	if obs.Allows("stand") {
		return "stand"
	}
	if len(obs.Legal) > 0 {
		return obs.Legal[0]
	}
	return "stand"
}

// randomAlternative picks a uniformly random legal action other than the
// chosen one, excluding surrender. Returns "" when no alternative exists.
func randomAlternative(obs *Observation, chosen string, rng domain.RNG) string {
	var pool []string
	for _, a := range obs.Legal {
		if a == chosen || a == "surrender" {
			continue
		}
		pool = append(pool, a)
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}
