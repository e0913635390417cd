package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// StakeBucket is one quick-play entry stake.
type StakeBucket struct {
	ID      string `json:"id"`
	BaseBet int64  `json:"base_bet"`
}

type Timings struct {
	TurnSeconds       int `json:"turn_seconds"`
	DisconnectSeconds int `json:"disconnect_seconds"`
	RevealMillis      int `json:"reveal_millis"`
	BotThinkMinMillis int `json:"bot_think_min_millis"`
	BotThinkMaxMillis int `json:"bot_think_max_millis"`
	// BotFirstActionMinMillis/Max pad the bot's first decision of a round so it
	// reads like a player surveying the deal.
	BotFirstActionMinMillis int `json:"bot_first_action_min_millis"`
	BotFirstActionMaxMillis int `json:"bot_first_action_max_millis"`
	BotConfirmMinMillis     int `json:"bot_confirm_min_millis"`
	BotConfirmMaxMillis     int `json:"bot_confirm_max_millis"`
}

type GameConfig struct {
	DefaultBucket    string        `json:"default_bucket"`
	Buckets          []StakeBucket `json:"buckets"`
	TableMaxMultiple int64         `json:"table_max_multiple"`
	WelcomeChips     int64         `json:"welcome_chips"`
	Timings          Timings       `json:"timings"`
	// BotAutoFillDelaySeconds is returned to queued quick-play clients as
	// the wait before the client should offer a bot table instead.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	BotIdentitiesPath       string `json:"bot_identities_path"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

func defaults() *GameConfig {
	return &GameConfig{
		DefaultBucket: "casual_100",
		Buckets: []StakeBucket{
			{ID: "casual_100", BaseBet: 100},
			{ID: "casual_500", BaseBet: 500},
			{ID: "casual_1000", BaseBet: 1000},
			{ID: "casual_5000", BaseBet: 5000},
			{ID: "casual_25000", BaseBet: 25000},
		},
		TableMaxMultiple: 16,
		WelcomeChips:     10000,
		Timings: Timings{
			TurnSeconds:             30,
			DisconnectSeconds:       60,
			RevealMillis:            2200,
			BotThinkMinMillis:       700,
			BotThinkMaxMillis:       1200,
			BotFirstActionMinMillis: 2000,
			BotFirstActionMaxMillis: 3000,
			BotConfirmMinMillis:     200,
			BotConfirmMaxMillis:     600,
		},
		BotAutoFillDelaySeconds: 8,
		BotIdentitiesPath:       "data/bot_identities.json",
	}
}

// LoadGameConfig loads the game configuration from the given path. Missing
// file is not an error: baked-in defaults apply.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg = defaults()

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := defaults()
		if err := json.Unmarshal(data, c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = c
	})
	return loadErr
}

// ApplyEnvOverrides overlays selected runtime env values onto the loaded
// config. Called once at module init with Nakama's runtime env map.
func ApplyEnvOverrides(env map[string]string) {
	c := GetGameConfig()
	cfg = c
	setIntFromEnv(env, "duel21_turn_seconds", &c.Timings.TurnSeconds)
	setIntFromEnv(env, "duel21_disconnect_seconds", &c.Timings.DisconnectSeconds)
	setIntFromEnv(env, "duel21_reveal_millis", &c.Timings.RevealMillis)
	setIntFromEnv(env, "duel21_bot_think_min_millis", &c.Timings.BotThinkMinMillis)
	setIntFromEnv(env, "duel21_bot_think_max_millis", &c.Timings.BotThinkMaxMillis)
	setIntFromEnv(env, "duel21_bot_auto_fill_delay_seconds", &c.BotAutoFillDelaySeconds)
}

func setIntFromEnv(env map[string]string, key string, dst *int) {
	raw, ok := env[key]
	if !ok {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return
	}
	*dst = v
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return defaults()
	}
	return cfg
}

// GetBucketBet returns the base bet for a quick-play bucket id, or the
// default bucket's bet when the id is unknown.
func GetBucketBet(bucketID string) int64 {
	c := GetGameConfig()

	target := bucketID
	if target == "" {
		target = c.DefaultBucket
	}

	for _, b := range c.Buckets {
		if b.ID == target {
			return b.BaseBet
		}
	}
	for _, b := range c.Buckets {
		if b.ID == c.DefaultBucket {
			return b.BaseBet
		}
	}
	return 100
}
