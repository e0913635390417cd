package domain

import "time"

// SeriesStatus is the lifecycle state of a ranked series.
type SeriesStatus string

const (
	SeriesInProgress SeriesStatus = "IN_PROGRESS"
	SeriesCompleted  SeriesStatus = "COMPLETED"
	SeriesForfeited  SeriesStatus = "FORFEITED"
)

// SeriesGameLength is how many games decide a ranked series before
// sudden death.
const SeriesGameLength = 9

// SeriesGame is one completed game in a ranked series log.
type SeriesGame struct {
	Number     int    `json:"number"`
	WinnerID   string `json:"winner_id"` // "" on a pushed game
	P1Delta    int64  `json:"p1_delta"`
	P2Delta    int64  `json:"p2_delta"`
	EloDeltaP1 int    `json:"elo_delta_p1"`
	EloDeltaP2 int    `json:"elo_delta_p2"`
}

// SeriesSummary is the client-facing digest attached to round results.
type SeriesSummary struct {
	SeriesID  string `json:"series_id"`
	GamesDone int    `json:"games_done"`
	MyDelta   int64  `json:"my_delta"`
	OppDelta  int64  `json:"opp_delta"`
	Completed bool   `json:"completed"`
	SeriesElo int    `json:"series_elo,omitempty"`
	WonSeries bool   `json:"won_series,omitempty"`
}

// RankedSeries spans many matches between one ranked pairing until the
// best-of-9 (plus sudden-death) resolves. Series Elo is finalized exactly
// once, guarded by EloFinalizedAt.
type RankedSeries struct {
	ID          string
	P1          string
	P2          string
	BetAmount   int64
	RankAtStart map[string]int
	Games       []SeriesGame
	P1ChipDelta int64
	P2ChipDelta int64
	Status      SeriesStatus

	SeriesElo      map[string]int
	EloFinalizedAt time.Time
}

// PlayerIDs returns both participants.
func (s *RankedSeries) PlayerIDs() [2]string {
	return [2]string{s.P1, s.P2}
}

// Has reports whether the user participates in the series.
func (s *RankedSeries) Has(userID string) bool {
	return userID == s.P1 || userID == s.P2
}

// RecordGame appends a game to the log and rolls up chip deltas.
func (s *RankedSeries) RecordGame(g SeriesGame) {
	g.Number = len(s.Games) + 1
	s.Games = append(s.Games, g)
	s.P1ChipDelta += g.P1Delta
	s.P2ChipDelta += g.P2Delta
}

// Winner resolves the series outcome. Decided at game 9 by cumulative
// chip-delta sign; beyond game 9 a tied series is decided by the first
// game that is itself not a push (sudden death).
func (s *RankedSeries) Winner() (string, bool) {
	n := len(s.Games)
	if n < SeriesGameLength {
		return "", false
	}
	if s.P1ChipDelta > s.P2ChipDelta {
		return s.P1, true
	}
	if s.P2ChipDelta > s.P1ChipDelta {
		return s.P2, true
	}
	if n > SeriesGameLength {
		last := s.Games[n-1]
		if last.WinnerID != "" {
			return last.WinnerID, true
		}
	}
	return "", false
}

// EloFinalized reports whether series Elo has already been applied.
func (s *RankedSeries) EloFinalized() bool {
	return !s.EloFinalizedAt.IsZero()
}
