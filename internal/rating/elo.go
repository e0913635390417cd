package rating

import "math"

// Score values fed to the Elo update.
const (
	ScoreWin  = 1.0
	ScoreLoss = 0.0
	ScorePush = 0.5
)

// Per-game clamps.
const (
	gameDeltaMax     = 35
	gamePushDeltaMax = 3
	gamePushScale    = 0.25
)

// Per-series clamps.
const (
	seriesWinMin  = 1
	seriesWinMax  = 34
	seriesLossMin = -18
	seriesLossMax = -8
)

// GameFacts describes how eventful the settled round was. It feeds the
// variance multiplier so a wild hand moves rating more than a quiet one.
type GameFacts struct {
	Naturals int
	Busts    int
	Pushes   int
	Splits   int
	// MarginRatio is |net chip delta| / base bet for the winner.
	MarginRatio float64
}

// ExpectedScore is the logistic win expectancy on the standard 400-point
// scale.
func ExpectedScore(rating, oppRating int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(oppRating-rating)/400.0))
}

// gameK is the per-game base K-factor by rating band.
func gameK(rating int) float64 {
	switch {
	case rating < 1200:
		return 32
	case rating < 1600:
		return 24
	case rating < 1850:
		return 16
	default:
		return 12
	}
}

// seriesK is the per-series base K-factor by rating band. Higher than the
// per-game K since it fires once per series.
func seriesK(rating int) float64 {
	switch {
	case rating < 1200:
		return 58
	case rating < 1600:
		return 56
	case rating < 1850:
		return 52
	default:
		return 48
	}
}

// varianceMultiplier scales K by hand excitement.
func varianceMultiplier(f GameFacts) float64 {
	m := 1.0
	m += 0.15 * float64(f.Naturals)
	m += 0.10 * float64(f.Busts)
	m += 0.05 * float64(f.Splits)
	m += 0.05 * float64(f.Pushes)
	if f.MarginRatio > 0 && f.MarginRatio < 0.5 {
		m += 0.10 // close finish
	}
	return clamp(m, 0.8, 1.4)
}

// marginMultiplier scales K by win size relative to the base bet.
func marginMultiplier(f GameFacts) float64 {
	return clamp(0.9+0.05*f.MarginRatio, 0.9, 1.1)
}

// GameDelta computes the rating change for one ranked game. score is
// ScoreWin/ScoreLoss/ScorePush from the rated player's perspective.
func GameDelta(rating, oppRating int, score float64, facts GameFacts) int {
	expected := ExpectedScore(rating, oppRating)
	effectiveK := gameK(rating) * varianceMultiplier(facts) * marginMultiplier(facts)
	raw := effectiveK * (score - expected)

	if score == ScorePush {
		raw *= gamePushScale
		return int(clamp(math.Round(raw), -gamePushDeltaMax, gamePushDeltaMax))
	}

	delta := int(clamp(math.Round(raw), -gameDeltaMax, gameDeltaMax))
	if delta == 0 {
		// A decisive outcome always moves rating.
		if score == ScoreWin {
			return 1
		}
		return -1
	}
	return delta
}

// SeriesDelta computes the one-shot rating change when a ranked series
// resolves. tier is the player's band when the series started. Losses are
// clamped to a narrow band and softened for Bronze/Silver players to slow
// new-player decay.
func SeriesDelta(rating, oppRating int, won bool, tier Tier) int {
	expected := ExpectedScore(rating, oppRating)
	score := ScoreLoss
	if won {
		score = ScoreWin
	}
	raw := seriesK(rating) * (score - expected)

	if won {
		return int(clamp(math.Round(raw), seriesWinMin, seriesWinMax))
	}

	loss := clamp(math.Round(raw), seriesLossMin, seriesLossMax)
	loss *= tier.lossSoftening()
	return int(math.Round(loss))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
