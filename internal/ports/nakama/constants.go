package nakama

const (
	// RPC ids clients call outside a match.
	RpcQuickPlayJoin   = "quickplay_join"
	RpcQuickPlayLeave  = "quickplay_leave"
	RpcRankedJoin      = "ranked_join"
	RpcRankedLeave     = "ranked_leave"
	RpcBotMatch        = "bot_match"
	RpcHighRollerMatch = "high_roller_match"
	RpcGetStats        = "get_stats"

	// MatchNameDuel21 is the authoritative match handler name registered with Nakama.
	MatchNameDuel21 = "duel21_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpSetBet           int64 = 1
	OpConfirmBet       int64 = 2
	OpNegotiateBet     int64 = 3
	OpHandAction       int64 = 4
	OpPressureDecision int64 = 5
	OpResultAction     int64 = 6
	OpForfeit          int64 = 7

	// Server -> Client events
	OpSnapshot         int64 = 101
	OpRoundStarted     int64 = 102
	OpBetUpdated       int64 = 103
	OpBetConfirmed     int64 = 104
	OpCardsDealt       int64 = 105
	OpActionApplied    int64 = 106
	OpPressureOpened   int64 = 107
	OpPressureResolved int64 = 108
	OpRoundRevealed    int64 = 109
	OpRoundResult      int64 = 110
	OpMatchEnded       int64 = 111
	OpError            int64 = 120
)

// Match label keys used in listing queries.
const (
	MatchLabelKey_Game  = "game"
	MatchLabelKey_Type  = "match_type"
	MatchLabelKey_Bet   = "base_bet"
	MatchLabelKey_Open  = "open"
	MatchLabelKey_Phase = "phase"
)
