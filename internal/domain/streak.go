package domain

// NextStreaks advances per-player win/loss streak counters for a settled
// outcome. A push leaves both unchanged.
func NextStreaks(winStreak, lossStreak int, outcome Outcome) (int, int) {
	switch outcome {
	case OutcomeWin:
		return winStreak + 1, 0
	case OutcomeLoss:
		return 0, lossStreak + 1
	default:
		return winStreak, lossStreak
	}
}

// NextMatchWinStreak advances the match-level win streak: a push is
// neutral, a loss resets to zero.
func NextMatchWinStreak(current int, outcome Outcome) int {
	switch outcome {
	case OutcomeWin:
		return current + 1
	case OutcomeLoss:
		return 0
	default:
		return current
	}
}

// ForfeitLoss computes the chips a forfeiting player loses:
// min(bankroll, max(exposure, baseBet)).
func ForfeitLoss(bankroll, exposure, baseBet int64) int64 {
	loss := exposure
	if baseBet > loss {
		loss = baseBet
	}
	if bankroll < loss {
		loss = bankroll
	}
	if loss < 0 {
		return 0
	}
	return loss
}
