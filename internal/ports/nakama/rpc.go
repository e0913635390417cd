package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"duel21/internal/bot"
	"duel21/internal/config"
	"duel21/internal/domain"
	"duel21/internal/matchmaking"
	"duel21/internal/rating"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NotificationCode_MatchFound is sent to both players when a queue pairing
// produces a match.
const NotificationCode_MatchFound = 1001

// NotificationCode_QueueCancelled tells a player the server dropped them
// from a matchmaking queue and why.
const NotificationCode_QueueCancelled = 1002

// Package-level matchmaking state. Nakama runs one runtime per node; the
// pools carry their own locks.
var (
	quickPool      = matchmaking.NewQuickPool()
	rankedPool     = matchmaking.NewRankedPool()
	seriesRegistry = matchmaking.NewSeriesRegistry()

	// One aggression model for the whole node, so every bot table feeds
	// and reads the same learned pressure weights.
	sharedAggression = bot.NewAggressionModel()

	liveMu     sync.Mutex
	liveOnline = map[string]bool{}
	liveSeated = map[string]string{} // userID -> matchID
)

func markOnline(userID string, online bool) {
	liveMu.Lock()
	defer liveMu.Unlock()
	if online {
		liveOnline[userID] = true
		return
	}
	delete(liveOnline, userID)
}

func markSeated(userID, matchID string) {
	liveMu.Lock()
	defer liveMu.Unlock()
	liveSeated[userID] = matchID
}

func markUnseated(userID string) {
	liveMu.Lock()
	defer liveMu.Unlock()
	delete(liveSeated, userID)
}

func seriesLookup(id string) *domain.RankedSeries {
	return seriesRegistry.Get(id)
}

func seriesComplete(id string) {
	seriesRegistry.Complete(id)
}

func seriesForfeit(id string) {
	seriesRegistry.Forfeit(id)
}

// liveChecker implements matchmaking eligibility against the wallet and the
// in-process presence registry.
type liveChecker struct {
	ctx context.Context
	nk  runtime.NakamaModule
}

func (c liveChecker) Affords(userID string, amount int64) bool {
	balance, err := NewNakamaEconomyAdapter(c.nk).GetBalance(c.ctx, userID)
	if err != nil {
		return false
	}
	return balance >= amount
}

func (c liveChecker) InActiveMatch(userID string) bool {
	liveMu.Lock()
	defer liveMu.Unlock()
	_, ok := liveSeated[userID]
	return ok
}

func (c liveChecker) Present(userID string) bool {
	liveMu.Lock()
	defer liveMu.Unlock()
	return liveOnline[userID]
}

var _ matchmaking.Checker = liveChecker{}

// QueueResponse is returned by the queue-join RPCs.
type QueueResponse struct {
	Status  string `json:"status"` // "queued" or "matched"
	MatchID string `json:"match_id,omitempty"`
	Waiting int    `json:"waiting,omitempty"`
	// BotFallbackSeconds tells a queued client how long to wait before
	// offering a bot table instead.
	BotFallbackSeconds int `json:"bot_fallback_seconds,omitempty"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcQuickPlayJoin:   rpcQuickPlayJoin,
		RpcQuickPlayLeave:  rpcQuickPlayLeave,
		RpcRankedJoin:      rpcRankedJoin,
		RpcRankedLeave:     rpcRankedLeave,
		RpcBotMatch:        rpcBotMatch,
		RpcHighRollerMatch: rpcHighRollerMatch,
		RpcGetStats:        rpcGetStats,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func callerID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("rpc requires an authenticated user", 16)
	}
	return userID, nil
}

func marshalResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("failed to marshal response", 13)
	}
	return string(b), nil
}

func matchTypeForBucket(bucket int64) string {
	if bucket >= 25000 {
		return "high_roller"
	}
	return "lobby"
}

func createPairedMatch(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, params map[string]interface{}) (string, error) {
	matchID, err := nk.MatchCreate(ctx, MatchNameDuel21, params)
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", runtime.NewError("failed to create match", 13)
	}

	content := map[string]interface{}{
		"match_id":   matchID,
		"match_type": params["match_type"],
		"base_bet":   params["base_bet"],
	}
	for _, key := range []string{"p1", "p2"} {
		uid, _ := params[key].(string)
		if uid == "" || bot.IsBot(uid) {
			continue
		}
		if err := nk.NotificationSend(ctx, uid, "Opponent found", content, NotificationCode_MatchFound, "", true); err != nil {
			logger.Warn("Failed to notify %s of match %s: %v", uid, matchID, err)
		}
	}
	return matchID, nil
}

// notifyQueueDropped tells a player the queue let them go. Dropped players
// are often mid-reconnect, so delivery is persistent.
func notifyQueueDropped(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID, reason string) {
	content := map[string]interface{}{"reason": reason}
	if err := nk.NotificationSend(ctx, userID, "Matchmaking cancelled", content, NotificationCode_QueueCancelled, "", true); err != nil {
		logger.Warn("Failed to notify %s of queue drop: %v", userID, err)
	}
}

func rpcQuickPlayJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	markOnline(userID, true)

	var req struct {
		Bucket int64 `json:"bucket"`
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3)
		}
	}
	if req.Bucket == 0 {
		req.Bucket = config.GetBucketBet("")
	}

	chk := liveChecker{ctx: ctx, nk: nk}
	if err := quickPool.Enqueue(userID, req.Bucket, chk); err != nil {
		return "", runtime.NewError(err.Error(), 9)
	}

	pairing, rejections := quickPool.TryPair(req.Bucket, chk)
	for _, rej := range rejections {
		notifyQueueDropped(ctx, logger, nk, rej.UserID, rej.Reason.Error())
	}
	if pairing == nil {
		return marshalResponse(QueueResponse{
			Status:             "queued",
			Waiting:            quickPool.Waiting(req.Bucket),
			BotFallbackSeconds: config.GetGameConfig().BotAutoFillDelaySeconds,
		})
	}

	matchID, err := createPairedMatch(ctx, logger, nk, map[string]interface{}{
		"match_type": matchTypeForBucket(pairing.Bet),
		"base_bet":   pairing.Bet,
		"p1":         pairing.P1,
		"p2":         pairing.P2,
	})
	if err != nil {
		return "", err
	}
	return marshalResponse(QueueResponse{Status: "matched", MatchID: matchID})
}

func rpcQuickPlayLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	removed := quickPool.Remove(userID)
	return marshalResponse(map[string]bool{"removed": removed})
}

func rpcRankedJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	markOnline(userID, true)

	// An orphaned series from a crashed match must be settled before the
	// player can queue again.
	seriesRegistry.Reconcile(userID, func(seriesID string) bool {
		query := fmt.Sprintf("+label.%s:%s", MatchLabelKey_Game, "duel21")
		matches, listErr := nk.MatchList(ctx, 10, true, "", nil, nil, query)
		if listErr != nil {
			return false
		}
		for _, m := range matches {
			var label MatchLabel
			if json.Unmarshal([]byte(m.GetLabel().GetValue()), &label) == nil && label.SeriesID == seriesID {
				return true
			}
		}
		return false
	})

	stats, err := NewNakamaStatsAdapter(nk).GetStats(ctx, userID)
	if err != nil {
		logger.Warn("ranked: could not load stats for %s: %v", userID, err)
	}
	tier := rating.TierFor(stats.Elo)

	chk := liveChecker{ctx: ctx, nk: nk}
	if err := rankedPool.Enqueue(userID, stats.Elo, tier.Bet(), chk); err != nil {
		return "", runtime.NewError(err.Error(), 9)
	}

	for _, c := range rankedPool.Compact(chk) {
		notifyQueueDropped(ctx, logger, nk, c.UserID, c.Reason)
	}
	pairing, ok := rankedPool.TryPair(chk)
	if !ok {
		return marshalResponse(QueueResponse{Status: "queued", Waiting: rankedPool.Waiting()})
	}

	adapter := NewNakamaStatsAdapter(nk)
	p1Stats, _ := adapter.GetStats(ctx, pairing.P1)
	p2Stats, _ := adapter.GetStats(ctx, pairing.P2)
	series := seriesRegistry.CreateOrResume(pairing.P1, pairing.P2, pairing.Bet, map[string]int{
		pairing.P1: p1Stats.Elo,
		pairing.P2: p2Stats.Elo,
	})

	matchID, err := createPairedMatch(ctx, logger, nk, map[string]interface{}{
		"match_type": "ranked",
		"base_bet":   pairing.Bet,
		"p1":         pairing.P1,
		"p2":         pairing.P2,
		"series_id":  series.ID,
		"p1_elo":     int64(p1Stats.Elo),
		"p2_elo":     int64(p2Stats.Elo),
	})
	if err != nil {
		return "", err
	}
	return marshalResponse(QueueResponse{Status: "matched", MatchID: matchID})
}

func rpcRankedLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	removed := rankedPool.Remove(userID)
	return marshalResponse(map[string]bool{"removed": removed})
}

func rpcBotMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	markOnline(userID, true)

	var req struct {
		Bucket     int64  `json:"bucket"`
		Difficulty string `json:"difficulty"`
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3)
		}
	}
	if req.Bucket == 0 {
		req.Bucket = config.GetBucketBet("")
	}
	chk := liveChecker{ctx: ctx, nk: nk}
	if !chk.Affords(userID, req.Bucket) {
		return "", runtime.NewError("insufficient chips for this table", 9)
	}
	if chk.InActiveMatch(userID) {
		return "", runtime.NewError("already in a match", 9)
	}

	identity := bot.PickIdentityForDifficulty(req.Difficulty)
	matchID, err := nk.MatchCreate(ctx, MatchNameDuel21, map[string]interface{}{
		"match_type": "bot",
		"base_bet":   req.Bucket,
		"p1":         userID,
		"p2":         identity.UserID,
	})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", runtime.NewError("failed to create match", 13)
	}
	return marshalResponse(QueueResponse{Status: "matched", MatchID: matchID})
}

func rpcHighRollerMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// High roller tables are the top quick-play bucket with a fixed stake.
	return rpcQuickPlayJoin(ctx, logger, db, nk, `{"bucket":25000}`)
}

func rpcGetStats(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	stats, err := NewNakamaStatsAdapter(nk).GetStats(ctx, userID)
	if err != nil {
		return "", runtime.NewError("failed to load stats", 13)
	}
	return marshalResponse(stats)
}
