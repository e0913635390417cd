package rating

// Tier is an Elo-derived rank band gating fixed bet size and matchmaking
// eligibility.
type Tier string

const (
	TierBronze    Tier = "bronze"
	TierSilver    Tier = "silver"
	TierGold      Tier = "gold"
	TierPlatinum  Tier = "platinum"
	TierDiamond   Tier = "diamond"
	TierLegendary Tier = "legendary"
)

// StartingElo is the rating assigned to players with no stored rating.
const StartingElo = 1000

// TierFor maps a rating to its band.
func TierFor(elo int) Tier {
	switch {
	case elo < 1200:
		return TierBronze
	case elo < 1400:
		return TierSilver
	case elo < 1600:
		return TierGold
	case elo < 1750:
		return TierPlatinum
	case elo < 1850:
		return TierDiamond
	default:
		return TierLegendary
	}
}

// Key returns the matchmaking compatibility key for the tier. Ranked
// pairing requires identical keys.
func (t Tier) Key() string {
	return string(t)
}

// Bet returns the fixed ranked bet for the tier.
func (t Tier) Bet() int64 {
	switch t {
	case TierBronze:
		return 100
	case TierSilver:
		return 250
	case TierGold:
		return 500
	case TierPlatinum:
		return 1000
	case TierDiamond:
		return 2500
	default:
		return 5000
	}
}

// lossSoftening slows rating decay for low-tier players.
func (t Tier) lossSoftening() float64 {
	switch t {
	case TierBronze:
		return 0.75
	case TierSilver:
		return 0.85
	default:
		return 1.0
	}
}
