package domain

// Outcome is a settled hand or round result.
type Outcome string

const (
	OutcomeNone  Outcome = ""
	OutcomeWin   Outcome = "win"
	OutcomeLoss  Outcome = "loss"
	OutcomePush  Outcome = "push"
	OutcomeMixed Outcome = "mixed" // split hands that settled in different directions
)

// Hand is one playable hand owned by a player within a round.
// Cards are append-only; a terminal hand is never mutated again except to
// record its outcome at settlement.
type Hand struct {
	Cards       []Card
	Bet         int64
	SplitDepth  int
	ActionCount int
	HitCount    int
	DoubleCount int

	Stood       bool
	Busted      bool
	Surrendered bool
	Locked      bool
	Natural     bool
	WasSplit    bool

	Outcome Outcome
}

// Total returns the best blackjack total, reducing soft aces (11 -> 1)
// exactly until the total is <= 21 or no soft aces remain.
func (h *Hand) Total() int {
	total, _ := h.totalAndSoft()
	return total
}

// IsSoft reports whether an ace is still counted as 11 in the best total.
func (h *Hand) IsSoft() bool {
	_, soft := h.totalAndSoft()
	return soft
}

func (h *Hand) totalAndSoft() (int, bool) {
	total := 0
	aces := 0
	for _, c := range h.Cards {
		total += c.Value()
		if c.Rank == RankAce {
			aces++
		}
	}
	for total > BlackjackTarget && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// IsBustTotal reports whether the hand total exceeds 21.
func (h *Hand) IsBustTotal() bool {
	return h.Total() > BlackjackTarget
}

// IsNatural reports whether the hand is a dealt two-card 21.
// Split hands can never be naturals.
func (h *Hand) IsNatural() bool {
	return len(h.Cards) == 2 && !h.WasSplit && h.HitCount == 0 && h.Total() == BlackjackTarget
}

// Terminal reports whether the hand can take no further actions.
func (h *Hand) Terminal() bool {
	return h.Stood || h.Busted || h.Surrendered || h.Locked
}

// Playable is the inverse of Terminal.
func (h *Hand) Playable() bool {
	return !h.Terminal()
}

// IsPair reports whether the hand is exactly two cards of equal rank.
func (h *Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

// isTenPair reports a pair of rank ten exactly; J/Q/K pairs and mixed
// ten-value pairs are not splittable pairs at this table.
func (h *Hand) isTenPair() bool {
	return h.IsPair() && h.Cards[0].Rank == 10
}

// CanSplit reports whether the hand may split given the player's current
// hand count and whether the time-boxed split-tens event is active.
func (h *Hand) CanSplit(handCount int, splitTensActive bool) bool {
	if !h.IsPair() || h.Terminal() {
		return false
	}
	if h.SplitDepth >= MaxSplitsPerHand {
		return false
	}
	if handCount >= MaxHandsPerPlayer {
		return false
	}
	if h.isTenPair() && !splitTensActive {
		return false
	}
	return true
}

// CanDouble reports whether the hand may double: only as its first action,
// or chained directly after an existing double, never after a hit.
func (h *Hand) CanDouble() bool {
	if h.Terminal() || h.HitCount > 0 {
		return false
	}
	if h.DoubleCount >= MaxDoublesPerHand {
		return false
	}
	return h.ActionCount == 0 || h.DoubleCount == h.ActionCount
}

// CanSurrender reports whether surrender is legal: only as the very first
// action on the hand.
func (h *Hand) CanSurrender() bool {
	return !h.Terminal() && h.ActionCount == 0
}

// CanHit reports whether hit is legal; a doubled hand can no longer hit.
func (h *Hand) CanHit() bool {
	return !h.Terminal() && h.DoubleCount == 0
}
