package ports

import "context"

// PlayerStats is the persisted profile record for one player.
type PlayerStats struct {
	UserID       string `json:"user_id"`
	Elo          int    `json:"elo"`
	XP           int64  `json:"xp"`
	GamesPlayed  int    `json:"games_played"`
	GamesWon     int    `json:"games_won"`
	GamesLost    int    `json:"games_lost"`
	GamesPushed  int    `json:"games_pushed"`
	WinStreak    int    `json:"win_streak"`
	BestStreak   int    `json:"best_streak"`
	SeriesPlayed int    `json:"series_played"`
	SeriesWon    int    `json:"series_won"`
}

// StatsPort persists per-player progression: rating, XP and record.
type StatsPort interface {
	// GetStats loads the stats record for a user, returning a zero-value
	// record with StartingElo applied when none exists yet.
	GetStats(ctx context.Context, userID string) (PlayerStats, error)

	// PutStats writes the stats record for a user.
	PutStats(ctx context.Context, stats PlayerStats) error
}
