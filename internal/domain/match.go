package domain

// MatchType classifies how a match was created and which rules apply.
type MatchType string

const (
	MatchTypeLobby      MatchType = "lobby"
	MatchTypeBot        MatchType = "bot"
	MatchTypeRanked     MatchType = "ranked"
	MatchTypeHighRoller MatchType = "high_roller"
)

// Phase is the authoritative lifecycle stage of a match. DEAL, HAND_ADVANCE
// and ROUND_RESOLVE are transient: they complete within a single action
// dispatch and never suspend, so only the resting phases are represented.
type Phase string

const (
	// PhaseRoundInit accepts bet selection, negotiation and confirmation.
	PhaseRoundInit Phase = "round_init"
	// PhaseActionTurn accepts hand actions from the turn holder.
	PhaseActionTurn Phase = "action_turn"
	// PhasePressure accepts only the pressured opponent's decision.
	PhasePressure Phase = "pressure_response"
	// PhaseReveal shows all cards for the display delay before results.
	PhaseReveal Phase = "reveal"
	// PhaseResult accepts next/betting/double rematch verbs.
	PhaseResult Phase = "result"
	// PhaseEnded is terminal; the match is being torn down.
	PhaseEnded Phase = "ended"
)

// BetSettings bounds the base bet. Fixed > 0 pins the bet (quick-play
// buckets and ranked tier bets) and disables negotiation.
type BetSettings struct {
	Min   int64
	Max   int64
	Fixed int64
	// TableMax caps any single hand's stake after doubles and pressure.
	TableMax int64
}

// Match is one two-seat table. All of its state is mutated only inside the
// match loop goroutine that owns it.
type Match struct {
	ID        string
	PlayerIDs [2]string
	Type      MatchType
	Phase     Phase

	Round       *Round
	RoundNumber int
	// StartingIndex selects which seat acts first; it flips each round.
	StartingIndex int

	Bets           BetSettings
	RankedSeriesID string
	// Series is the live series object behind RankedSeriesID, attached by
	// the transport layer for ranked matches.
	Series *RankedSeries

	// Chips is the table bankroll snapshot per player, synced with the
	// wallet by the transport layer at join and after settlement.
	Chips map[string]int64
	// Elo is the rating snapshot per player, loaded for ranked matches.
	Elo map[string]int

	WinStreak  map[string]int
	LossStreak map[string]int

	// SplitTensActive gates 10-10 splits on the time-boxed event.
	SplitTensActive bool
}

// SeatOf returns the seat index of the user, or -1.
func (m *Match) SeatOf(userID string) int {
	for i, id := range m.PlayerIDs {
		if id == userID {
			return i
		}
	}
	return -1
}

// OpponentOf returns the other seat's user id, or "".
func (m *Match) OpponentOf(userID string) string {
	switch userID {
	case m.PlayerIDs[0]:
		return m.PlayerIDs[1]
	case m.PlayerIDs[1]:
		return m.PlayerIDs[0]
	default:
		return ""
	}
}

// IsHighRoller reports whether high-roller pressure psychology applies.
func (m *Match) IsHighRoller() bool {
	return m.Type == MatchTypeHighRoller
}
