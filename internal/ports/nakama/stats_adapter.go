package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"duel21/internal/ports"
	"duel21/internal/rating"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	statsCollection = "profile"
	statsKey        = "stats_v1"
)

// NakamaStatsAdapter persists player stats in Nakama storage.
type NakamaStatsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{nk: nk}
}

// GetStats loads the stats record for a user. Missing records come back as a
// fresh profile at the starting rating.
func (a *NakamaStatsAdapter) GetStats(ctx context.Context, userID string) (ports.PlayerStats, error) {
	fresh := ports.PlayerStats{UserID: userID, Elo: rating.StartingElo}

	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: statsCollection, Key: statsKey, UserID: userID},
	})
	if err != nil {
		return fresh, fmt.Errorf("failed to read stats for user %s: %w", userID, err)
	}
	if len(objects) == 0 {
		return fresh, nil
	}

	var stats ports.PlayerStats
	if err := json.Unmarshal([]byte(objects[0].Value), &stats); err != nil {
		return fresh, fmt.Errorf("failed to unmarshal stats for user %s: %w", userID, err)
	}
	stats.UserID = userID
	if stats.Elo == 0 {
		stats.Elo = rating.StartingElo
	}
	return stats, nil
}

// PutStats writes the stats record for a user.
func (a *NakamaStatsAdapter) PutStats(ctx context.Context, stats ports.PlayerStats) error {
	value, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          stats.UserID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write stats for user %s: %w", stats.UserID, err)
	}
	return nil
}

var _ ports.StatsPort = (*NakamaStatsAdapter)(nil)
