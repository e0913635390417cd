package nakama

import (
	"context"
	"database/sql"

	"duel21/internal/bot"
	"duel21/internal/config"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		config.ApplyEnvOverrides(env)
	}
	cfg := config.GetGameConfig()

	if err := bot.LoadIdentities(cfg.BotIdentitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
		logger.Warn("InitModule: Bot provisioning failed: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameDuel21, NewMatch); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	// Presence bookkeeping backs matchmaking eligibility checks.
	if err := initializer.RegisterEventSessionStart(func(ctx context.Context, logger runtime.Logger, evt *api.Event) {
		if userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok {
			markOnline(userID, true)
		}
	}); err != nil {
		return err
	}
	if err := initializer.RegisterEventSessionEnd(func(ctx context.Context, logger runtime.Logger, evt *api.Event) {
		if userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok {
			markOnline(userID, false)
			quickPool.Remove(userID)
			rankedPool.Remove(userID)
		}
	}); err != nil {
		return err
	}

	logger.Info("Duel21 Go module loaded.")
	return nil
}
