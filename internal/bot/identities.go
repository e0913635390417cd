package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one entry of the bot profile pool.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "normal"
	AvatarIndex int    `json:"avatar_index"`
}

var (
	botIdentities []BotIdentity
	botIDMap      map[string]bool
	botNameMap    map[string]string
	botConfigMap  map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profile pool from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		if err := json.Unmarshal(data, &botIdentities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		botIDMap = make(map[string]bool)
		botNameMap = make(map[string]string)
		botConfigMap = make(map[string]BotIdentity)
		for _, identity := range botIdentities {
			if identity.UserID != "" {
				mapIdentity(identity)
			}
		}
	})
	return loadErr
}

func mapIdentity(identity BotIdentity) {
	botIDMap[identity.UserID] = true
	botNameMap[identity.UserID] = identity.DisplayName
	botConfigMap[identity.UserID] = identity
}

// ProvisionBots ensures bot accounts exist in Nakama and carry the is_bot
// metadata, resolving real user ids for each pool entry.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	provisionOnce.Do(func() {
		for i := range botIdentities {
			identity := &botIdentities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, authErr := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if authErr != nil {
				logger.Error("ProvisionBots: failed to authenticate bot %s: %v", identity.Username, authErr)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: failed to update bot account %s: %v", userID, err)
			}

			mapIdentity(*identity)
			logger.Info("ProvisionBots: bot %s (%s) ready at difficulty %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
	return nil
}

// GetBotConfig returns the full identity for a bot user id.
func GetBotConfig(userID string) (BotIdentity, bool) {
	config, ok := botConfigMap[userID]
	return config, ok
}

// GetBotDisplayName returns the display name for a bot id, or "".
func GetBotDisplayName(userID string) string {
	if botNameMap == nil {
		return ""
	}
	return botNameMap[userID]
}

// PickIdentity returns a pool identity by index (mod pool size), with a
// synthetic fallback when no pool is loaded.
func PickIdentity(index int) BotIdentity {
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("Dealer Bot %d", index),
			Difficulty:  string(DifficultyMedium),
		}
	}
	return botIdentities[index%len(botIdentities)]
}

// PickIdentityForDifficulty returns a pool identity at the requested
// difficulty, falling back to any identity and then to a synthetic one.
func PickIdentityForDifficulty(difficulty string) BotIdentity {
	if difficulty == "" {
		difficulty = string(DifficultyMedium)
	}
	for _, identity := range botIdentities {
		if identity.Difficulty == difficulty && identity.UserID != "" {
			return identity
		}
	}
	return PickIdentity(0)
}

// IsBot reports whether the user id belongs to the bot pool.
func IsBot(userID string) bool {
	if botIDMap == nil {
		return false
	}
	return botIDMap[userID]
}
