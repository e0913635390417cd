package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"duel21/internal/bot"
	"duel21/internal/config"
	"duel21/internal/domain"
	"duel21/internal/engine"
	"duel21/internal/ports"
	"duel21/internal/rating"

	"github.com/heroiclabs/nakama-common/runtime"
)

// tickRate gives 250ms resolution for bot pacing and the reveal delay.
const tickRate = 4

const botBankrollMultiple = 1000

// MatchLabel is the JSON label used for match listing queries.
type MatchLabel struct {
	Game      string `json:"game"`
	MatchType string `json:"match_type"`
	BaseBet   int64  `json:"base_bet"`
	Open      int    `json:"open"`
	Phase     string `json:"phase"`
	SeriesID  string `json:"series_id,omitempty"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Match      *domain.Match               `json:"-"`
	Engine     *engine.Service             `json:"-"`
	Presences  map[string]runtime.Presence `json:"-"`
	Bots       map[string]*bot.Agent       `json:"-"`
	Aggression *bot.AggressionModel        `json:"-"`
	Economy    ports.EconomyPort           `json:"-"`
	Stats      ports.StatsPort             `json:"-"`

	Tick int64 `json:"tick"`

	// Turn timer. turnKey identifies the awaited decision so the deadline
	// resets exactly when the decision owner or phase changes.
	turnKey          string
	turnDeadlineTick int64

	revealUntilTick int64
	botActTick      int64
	botRoundFresh   bool

	// disconnectAt maps an absent seated human to the forfeit deadline.
	disconnectAt map[string]int64

	rng       *rand.Rand
	endAtTick int64
}

func (ms *MatchState) millisToTicks(ms_ int) int64 {
	t := int64(ms_) * tickRate / 1000
	if t < 1 {
		t = 1
	}
	return t
}

func (ms *MatchState) secondsToTicks(s int) int64 {
	return int64(s) * tickRate
}

func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// humanPresent reports whether every human seat has a live presence.
func (ms *MatchState) humanPresent() bool {
	for _, uid := range ms.Match.PlayerIDs {
		if uid == "" || isBotUserId(uid) {
			continue
		}
		if _, ok := ms.Presences[uid]; !ok {
			return false
		}
	}
	return true
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

func paramString(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func paramInt64(params map[string]interface{}, key string) int64 {
	switch v := params[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// MatchInit is called when the match is created. Seats, stakes and type come
// from the creation params set by the matchmaking RPCs.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()
	if err := bot.LoadIdentities(cfg.BotIdentitiesPath); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	matchType := domain.MatchType(paramString(params, "match_type"))
	if matchType == "" {
		matchType = domain.MatchTypeLobby
	}
	baseBet := paramInt64(params, "base_bet")
	if baseBet <= 0 {
		baseBet = config.GetBucketBet("")
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	m := &domain.Match{
		ID:             matchID,
		PlayerIDs:      [2]string{paramString(params, "p1"), paramString(params, "p2")},
		Type:           matchType,
		Phase:          domain.PhaseRoundInit,
		RankedSeriesID: paramString(params, "series_id"),
		Chips:          make(map[string]int64, 2),
		Elo:            make(map[string]int, 2),
		WinStreak:      make(map[string]int, 2),
		LossStreak:     make(map[string]int, 2),
	}
	m.Bets = betSettingsFor(baseBet, cfg.TableMaxMultiple)

	state := &MatchState{
		Match:        m,
		Engine:       engine.NewService(nil),
		Presences:    make(map[string]runtime.Presence),
		Bots:         make(map[string]*bot.Agent),
		Aggression:   sharedAggression,
		Economy:      NewNakamaEconomyAdapter(nk),
		Stats:        NewNakamaStatsAdapter(nk),
		disconnectAt: make(map[string]int64),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// Load bankrolls and ratings for both seats. Bots play against a house
	// bankroll large enough to match any pressure.
	for _, uid := range m.PlayerIDs {
		if uid == "" {
			continue
		}
		if isBotUserId(uid) {
			m.Chips[uid] = baseBet * botBankrollMultiple
			agent, err := bot.NewAgent(uid, state.Aggression, nil)
			if err != nil {
				logger.Error("MatchInit: Failed to create bot agent for %s: %v", uid, err)
			} else {
				state.Bots[uid] = agent
			}
			continue
		}
		balance, err := state.Economy.GetBalance(ctx, uid)
		if err != nil {
			logger.Warn("MatchInit: Could not load balance for %s: %v", uid, err)
		}
		m.Chips[uid] = balance

		stats, err := state.Stats.GetStats(ctx, uid)
		if err != nil {
			logger.Warn("MatchInit: Could not load stats for %s: %v", uid, err)
		}
		m.Elo[uid] = stats.Elo
		m.WinStreak[uid] = stats.WinStreak
	}
	applyRankedParams(m, params)
	if m.RankedSeriesID != "" {
		m.Series = seriesLookup(m.RankedSeriesID)
	}

	labelBytes, err := json.Marshal(&MatchLabel{
		Game:      "duel21",
		MatchType: string(matchType),
		BaseBet:   baseBet,
		Open:      0,
		Phase:     string(m.Phase),
		SeriesID:  m.RankedSeriesID,
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, tickRate, string(labelBytes)
}

func betSettingsFor(baseBet, tableMaxMultiple int64) domain.BetSettings {
	if tableMaxMultiple <= 0 {
		tableMaxMultiple = 16
	}
	// Every pairing comes out of a bucket, so the bet is pinned on all
	// table types. Double-or-nothing is the only way it moves.
	return domain.BetSettings{
		Min:      baseBet,
		Max:      baseBet,
		Fixed:    baseBet,
		TableMax: baseBet * tableMaxMultiple,
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Only the two paired players may enter; rejoining after a disconnect
	// is always allowed while the match lives.
	if matchState.Match.SeatOf(presence.GetUserId()) < 0 {
		return state, false, "not seated in this match"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		delete(matchState.disconnectAt, p.GetUserId())
		markSeated(p.GetUserId(), matchState.Match.ID)
	}

	// First round begins once every human seat is connected.
	if matchState.Match.Round == nil && matchState.humanPresent() {
		events, err := matchState.Engine.StartRound(matchState.Match)
		if err != nil {
			logger.Error("MatchJoin: Failed to start round: %v", err)
		} else {
			mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.pushSnapshots(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave starts the disconnect clock instead of forfeiting immediately;
// the player keeps their seat and may rejoin.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	cfg := config.GetGameConfig()
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		markUnseated(p.GetUserId())
		if matchState.Match.Phase != domain.PhaseEnded {
			matchState.disconnectAt[p.GetUserId()] = tick + matchState.secondsToTicks(cfg.Timings.DisconnectSeconds)
			logger.Debug("MatchLeave: User %s left, forfeit at tick %d.", p.GetUserId(), matchState.disconnectAt[p.GetUserId()])
		}
	}

	if matchState.Match.Phase == domain.PhaseEnded && len(matchState.Presences) == 0 {
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	mutated := false
	for _, msg := range messages {
		if mh.handleMessage(ctx, matchState, dispatcher, logger, msg) {
			mutated = true
		}
	}

	if mh.runTimers(ctx, matchState, dispatcher, logger) {
		mutated = true
	}
	if matchState.Match.Type == domain.MatchTypeBot {
		if mh.processBot(ctx, matchState, dispatcher, logger) {
			mutated = true
		}
	}

	if mutated {
		mh.updateLabel(matchState, dispatcher, logger)
		mh.pushSnapshots(matchState, dispatcher, logger)
	}

	if matchState.Match.Phase == domain.PhaseEnded {
		if matchState.endAtTick == 0 {
			// Give the final events one tick to flush.
			matchState.endAtTick = tick + tickRate
		}
		if tick >= matchState.endAtTick {
			for _, uid := range matchState.Match.PlayerIDs {
				markUnseated(uid)
			}
			return nil
		}
	}

	return matchState
}

// handleMessage routes one client message to the engine. Returns true when
// state changed.
func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) bool {
	senderID := msg.GetUserId()
	m := state.Match

	var events []engine.Event
	var err error

	switch msg.GetOpCode() {
	case OpSetBet:
		var req struct {
			Amount int64 `json:"amount"`
		}
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return false
		}
		events, err = state.Engine.SetBet(m, senderID, req.Amount)
	case OpConfirmBet:
		events, err = state.Engine.ConfirmBet(m, senderID)
	case OpNegotiateBet:
		var req struct {
			Verb   string `json:"verb"`
			Amount int64  `json:"amount"`
		}
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return false
		}
		events, err = state.Engine.Negotiate(m, senderID, req.Verb, req.Amount)
	case OpHandAction:
		var req struct {
			Action string `json:"action"`
		}
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return false
		}
		events, err = state.Engine.HandAction(m, senderID, req.Action)
		if err == nil && m.Type == domain.MatchTypeBot && !isBotUserId(senderID) {
			state.Aggression.RecordHumanAction(req.Action)
		}
	case OpPressureDecision:
		var req struct {
			Decision string `json:"decision"`
		}
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return false
		}
		events, err = state.Engine.PressureDecision(m, senderID, req.Decision)
	case OpResultAction:
		var req struct {
			Choice string `json:"choice"`
		}
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return false
		}
		events, err = state.Engine.ResultAction(m, senderID, req.Choice)
	case OpForfeit:
		events, err = state.Engine.Forfeit(m, senderID)
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return false
	}

	if err != nil {
		logger.Debug("MatchLoop: User %s op %d rejected: %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return false
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	return true
}

// runTimers drives turn timeouts, the reveal delay and disconnect forfeits.
func (mh *matchHandler) runTimers(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	m := state.Match
	cfg := config.GetGameConfig()
	mutated := false

	// Reveal delay: hold the open-card table on screen, then move to results.
	if m.Phase == domain.PhaseReveal {
		if state.revealUntilTick == 0 {
			state.revealUntilTick = state.Tick + state.millisToTicks(cfg.Timings.RevealMillis)
		}
		if state.Tick >= state.revealUntilTick {
			state.revealUntilTick = 0
			events, err := state.Engine.FinishReveal(m)
			if err != nil {
				logger.Error("runTimers: FinishReveal failed: %v", err)
			} else {
				mh.dispatchEvents(ctx, state, dispatcher, logger, events)
				mutated = true
			}
		}
	} else {
		state.revealUntilTick = 0
	}

	// Turn timer keyed by the awaited decision owner.
	waitingOn := mh.decisionOwner(m)
	key := string(m.Phase) + "/" + waitingOn
	if waitingOn == "" || isBotUserId(waitingOn) {
		state.turnKey = ""
		state.turnDeadlineTick = 0
	} else {
		if key != state.turnKey {
			state.turnKey = key
			state.turnDeadlineTick = state.Tick + state.secondsToTicks(cfg.Timings.TurnSeconds)
		}
		if state.Tick >= state.turnDeadlineTick {
			state.turnKey = ""
			events, err := state.Engine.TimeoutStand(m, waitingOn)
			if err != nil {
				logger.Warn("runTimers: Timeout for %s failed: %v", waitingOn, err)
			} else {
				mh.dispatchEvents(ctx, state, dispatcher, logger, events)
				mutated = true
			}
		}
	}

	// Disconnect forfeits.
	for uid, deadline := range state.disconnectAt {
		if state.Tick < deadline || m.Phase == domain.PhaseEnded {
			continue
		}
		delete(state.disconnectAt, uid)
		events, err := state.Engine.Forfeit(m, uid)
		if err != nil {
			logger.Warn("runTimers: Disconnect forfeit for %s failed: %v", uid, err)
			continue
		}
		logger.Info("runTimers: User %s forfeited by disconnect.", uid)
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		mutated = true
	}

	return mutated
}

// decisionOwner returns the user id whose decision the match is waiting on,
// or "" when no one is on the clock.
func (mh *matchHandler) decisionOwner(m *domain.Match) string {
	if m.Round == nil {
		return ""
	}
	switch m.Phase {
	case domain.PhaseActionTurn:
		return m.Round.TurnUserID
	case domain.PhasePressure:
		if m.Round.Pressure != nil {
			return m.Round.Pressure.OpponentID
		}
	}
	return ""
}

// processBot drives the bot seat with humanized delays. Returns true when
// the bot acted.
func (mh *matchHandler) processBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	m := state.Match
	cfg := config.GetGameConfig()

	botID := ""
	for _, uid := range m.PlayerIDs {
		if isBotUserId(uid) {
			botID = uid
			break
		}
	}
	if botID == "" {
		return false
	}
	agent, ok := state.Bots[botID]
	if !ok {
		var err error
		agent, err = bot.NewAgent(botID, state.Aggression, nil)
		if err != nil {
			logger.Error("processBot: Failed to create agent: %v", err)
			return false
		}
		state.Bots[botID] = agent
	}

	pending := mh.botPendingVerb(state, botID)
	if pending == "" {
		state.botActTick = 0
		return false
	}

	if state.botActTick == 0 {
		minMs, maxMs := cfg.Timings.BotThinkMinMillis, cfg.Timings.BotThinkMaxMillis
		switch pending {
		case "confirm", "result":
			minMs, maxMs = cfg.Timings.BotConfirmMinMillis, cfg.Timings.BotConfirmMaxMillis
		case "action":
			if state.botRoundFresh {
				minMs, maxMs = cfg.Timings.BotFirstActionMinMillis, cfg.Timings.BotFirstActionMaxMillis
			}
		}
		if maxMs <= minMs {
			maxMs = minMs + 1
		}
		delay := minMs + state.rng.Intn(maxMs-minMs)
		state.botActTick = state.Tick + state.millisToTicks(delay)
		return false
	}
	if state.Tick < state.botActTick {
		return false
	}
	state.botActTick = 0

	var events []engine.Event
	var err error
	switch pending {
	case "confirm":
		events, err = state.Engine.ConfirmBet(m, botID)
	case "negotiate":
		events, err = state.Engine.Negotiate(m, botID, "agree", 0)
	case "action":
		state.botRoundFresh = false
		legal := state.Engine.LegalActions(m, botID)
		obs, obsErr := bot.BuildObservation(m, botID, legal)
		if obsErr != nil {
			logger.Error("processBot: Observation failed: %v", obsErr)
			events, err = state.Engine.HandAction(m, botID, "stand")
			break
		}
		events, err = state.Engine.HandAction(m, botID, agent.Act(obs))
	case "pressure":
		legal := state.Engine.LegalActions(m, botID)
		obs, obsErr := bot.BuildObservation(m, botID, legal)
		if obsErr != nil {
			logger.Error("processBot: Observation failed: %v", obsErr)
			events, err = state.Engine.PressureDecision(m, botID, "surrender")
			break
		}
		events, err = state.Engine.PressureDecision(m, botID, agent.RespondPressure(obs))
	case "result":
		events, err = state.Engine.ResultAction(m, botID, "next")
	}
	if err != nil {
		logger.Warn("processBot: Bot %s verb %s rejected: %v", botID, pending, err)
		return false
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	return true
}

// botPendingVerb reports which decision the bot owes right now.
func (mh *matchHandler) botPendingVerb(state *MatchState, botID string) string {
	m := state.Match
	r := m.Round
	if r == nil {
		return ""
	}
	switch m.Phase {
	case domain.PhaseRoundInit:
		if r.Negotiation != nil && !r.Negotiation.Agreed[botID] {
			return "negotiate"
		}
		if p := r.Player(botID); p != nil && !p.BetConfirmed {
			return "confirm"
		}
	case domain.PhaseActionTurn:
		if r.TurnUserID == botID {
			return "action"
		}
	case domain.PhasePressure:
		if r.Pressure != nil && r.Pressure.OpponentID == botID {
			return "pressure"
		}
	case domain.PhaseResult:
		if _, chosen := r.ResultChoices[botID]; !chosen {
			return "result"
		}
	}
	return ""
}

// dispatchEvents converts engine events to client messages and applies
// settlement side effects.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []engine.Event) {
	for _, ev := range events {
		mh.applySideEffects(ctx, state, logger, ev)
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

func opCodeFor(kind engine.EventKind) (int64, bool) {
	switch kind {
	case engine.EventRoundStarted:
		return OpRoundStarted, true
	case engine.EventBetUpdated:
		return OpBetUpdated, true
	case engine.EventBetConfirmed:
		return OpBetConfirmed, true
	case engine.EventCardsDealt:
		return OpCardsDealt, true
	case engine.EventActionApplied:
		return OpActionApplied, true
	case engine.EventPressureOpened:
		return OpPressureOpened, true
	case engine.EventPressureResolved:
		return OpPressureResolved, true
	case engine.EventRoundRevealed:
		return OpRoundRevealed, true
	case engine.EventRoundResult:
		return OpRoundResult, true
	case engine.EventMatchEnded:
		return OpMatchEnded, true
	}
	return 0, false
}

func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev engine.Event) {
	opCode, ok := opCodeFor(ev.Kind)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	if ev.Kind == engine.EventCardsDealt {
		state.botRoundFresh = true
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events whose recipients are all offline (or bots) must
		// not leak to the rest of the table.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// applySideEffects settles wallets, persists stats and closes the series
// when terminal events come through.
func (mh *matchHandler) applySideEffects(ctx context.Context, state *MatchState, logger runtime.Logger, ev engine.Event) {
	m := state.Match
	switch ev.Kind {
	case engine.EventRoundRevealed:
		p, ok := ev.Payload.(engine.RoundRevealedPayload)
		if !ok {
			return
		}
		mh.settleWallets(ctx, state, logger, p.BalanceChanges, "round_settlement")
		mh.persistStats(ctx, state, logger, p.Results)
		if m.Series != nil && m.Series.EloFinalized() {
			seriesComplete(m.RankedSeriesID)
		}
	case engine.EventMatchEnded:
		p, ok := ev.Payload.(engine.MatchEndedPayload)
		if !ok {
			return
		}
		if len(p.BalanceChanges) > 0 {
			mh.settleWallets(ctx, state, logger, p.BalanceChanges, "match_"+p.Reason)
		}
		if m.RankedSeriesID != "" && (m.Series == nil || !m.Series.EloFinalized()) {
			seriesForfeit(m.RankedSeriesID)
		}
	}
}

func (mh *matchHandler) settleWallets(ctx context.Context, state *MatchState, logger runtime.Logger, changes map[string]int64, reason string) {
	if len(changes) == 0 {
		return
	}
	updates := make([]ports.WalletUpdate, 0, len(changes))
	for userID, amount := range changes {
		if isBotUserId(userID) {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": state.Match.ID,
				"reason":   reason,
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to update balances: %v", err)
	}
}

func (mh *matchHandler) persistStats(ctx context.Context, state *MatchState, logger runtime.Logger, results map[string]*domain.RoundResult) {
	m := state.Match
	for uid, res := range results {
		if isBotUserId(uid) {
			continue
		}
		stats, err := state.Stats.GetStats(ctx, uid)
		if err != nil {
			logger.Warn("persistStats: load failed for %s: %v", uid, err)
		}
		stats.UserID = uid
		stats.XP += res.XPDelta
		stats.GamesPlayed++
		switch res.Outcome {
		case domain.OutcomeWin:
			stats.GamesWon++
		case domain.OutcomeLoss:
			stats.GamesLost++
		case domain.OutcomePush:
			stats.GamesPushed++
		}
		stats.WinStreak = m.WinStreak[uid]
		if stats.WinStreak > stats.BestStreak {
			stats.BestStreak = stats.WinStreak
		}
		if m.Type == domain.MatchTypeRanked {
			stats.Elo = m.Elo[uid]
			if res.Series != nil && res.Series.Completed {
				stats.SeriesPlayed++
				if res.Series.WonSeries {
					stats.SeriesWon++
				}
			}
		}
		if err := state.Stats.PutStats(ctx, stats); err != nil {
			logger.Error("persistStats: write failed for %s: %v", uid, err)
		}
	}
}

// pushSnapshots sends each connected player their redacted view of the table.
func (mh *matchHandler) pushSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for uid, presence := range state.Presences {
		legal := state.Engine.LegalActions(state.Match, uid)
		snap := BuildSnapshot(state.Match, uid, legal, state.turnDeadlineTick/tickRate)
		bytes, err := json.Marshal(snap)
		if err != nil {
			logger.Error("pushSnapshots: marshal failed: %v", err)
			return
		}
		dispatcher.BroadcastMessage(OpSnapshot, bytes, []runtime.Presence{presence}, nil, true)
	}
}

// sendError sends an error payload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	m := state.Match
	baseBet := m.Bets.Min
	if m.Round != nil {
		baseBet = m.Round.BaseBet
	}
	labelBytes, err := json.Marshal(&MatchLabel{
		Game:      "duel21",
		MatchType: string(m.Type),
		BaseBet:   baseBet,
		Open:      0,
		Phase:     string(m.Phase),
		SeriesID:  m.RankedSeriesID,
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		for _, uid := range matchState.Match.PlayerIDs {
			markUnseated(uid)
		}
	}
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

// elo snapshot for ranked matches comes from params so both seats agree on
// the pre-series ratings even if stats change mid-queue.
func applyRankedParams(m *domain.Match, params map[string]interface{}) {
	if m.Type != domain.MatchTypeRanked {
		return
	}
	if v := paramInt64(params, "p1_elo"); v > 0 {
		m.Elo[m.PlayerIDs[0]] = int(v)
	}
	if v := paramInt64(params, "p2_elo"); v > 0 {
		m.Elo[m.PlayerIDs[1]] = int(v)
	}
	if m.Elo[m.PlayerIDs[0]] == 0 {
		m.Elo[m.PlayerIDs[0]] = rating.StartingElo
	}
	if m.Elo[m.PlayerIDs[1]] == 0 {
		m.Elo[m.PlayerIDs[1]] = rating.StartingElo
	}
}
