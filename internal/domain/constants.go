package domain

// Fixed table rules. These are not configurable at runtime; timing values
// live in internal/config instead.
const (
	// BlackjackTarget is the winning hand total.
	BlackjackTarget = 21

	// MaxSplitsPerHand bounds how many times a single hand lineage may split.
	MaxSplitsPerHand = 3
	// MaxHandsPerPlayer bounds total hands a player can hold after splits.
	MaxHandsPerPlayer = 4
	// MaxDoublesPerHand bounds chained re-doubles on one hand.
	MaxDoublesPerHand = 3
)

// SurrenderLoss returns the chips a surrendering player forfeits against the
// given exposure: floor(0.75 * exposure), never more than the exposure.
func SurrenderLoss(exposure int64) int64 {
	if exposure <= 0 {
		return 0
	}
	loss := exposure * 3 / 4
	if loss > exposure {
		return exposure
	}
	return loss
}

// NaturalPayout returns the chips a natural blackjack wins from the given
// pot: floor(1.5 * pot).
func NaturalPayout(pot int64) int64 {
	if pot <= 0 {
		return 0
	}
	return pot * 3 / 2
}
