package nakama

import (
	"duel21/internal/bot"
	"duel21/internal/domain"
)

// SnapshotCard is a card as seen by one viewer. Hidden cards carry only the
// id so the client can animate a face-down card without learning its value.
type SnapshotCard struct {
	ID     string `json:"id"`
	Rank   int    `json:"rank,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

type SnapshotHand struct {
	Cards []SnapshotCard `json:"cards"`
	Bet   int64          `json:"bet"`
	// Total is only meaningful when TotalKnown is true; an opponent hand
	// before reveal reports TotalKnown false and carries VisibleTotal,
	// the sum of the face-up cards only.
	Total        int    `json:"total"`
	TotalKnown   bool   `json:"total_known"`
	VisibleTotal int    `json:"visible_total,omitempty"`
	Soft         bool   `json:"soft,omitempty"`
	Stood        bool   `json:"stood,omitempty"`
	Busted       bool   `json:"busted,omitempty"`
	Surrendered  bool   `json:"surrendered,omitempty"`
	Locked       bool   `json:"locked,omitempty"`
	Natural      bool   `json:"natural,omitempty"`
	Outcome      string `json:"outcome,omitempty"`
}

type SnapshotPlayer struct {
	UserID       string         `json:"user_id"`
	DisplayName  string         `json:"display_name,omitempty"`
	Chips        int64          `json:"chips"`
	Elo          int            `json:"elo,omitempty"`
	WinStreak    int            `json:"win_streak,omitempty"`
	BetConfirmed bool           `json:"bet_confirmed,omitempty"`
	ActiveHand   int            `json:"active_hand"`
	Hands        []SnapshotHand `json:"hands"`
}

type SnapshotPressure struct {
	InitiatorID string `json:"initiator_id"`
	OpponentID  string `json:"opponent_id"`
	Type        string `json:"type"`
	Delta       int64  `json:"delta"`
	TargetHand  int    `json:"target_hand"`
	DeadlineSec int    `json:"deadline_sec,omitempty"`
}

// MatchSnapshot is the full per-viewer view of the table, pushed after every
// state mutation. Opponent hole cards are stripped before the reveal phase.
type MatchSnapshot struct {
	MatchID      string            `json:"match_id"`
	MatchType    string            `json:"match_type"`
	Phase        string            `json:"phase"`
	RoundNumber  int               `json:"round_number"`
	BaseBet      int64             `json:"base_bet"`
	FixedBet     bool              `json:"fixed_bet"`
	TableMax     int64             `json:"table_max"`
	TurnUserID   string            `json:"turn_user_id,omitempty"`
	You          string            `json:"you"`
	Players      []SnapshotPlayer  `json:"players"`
	Pressure     *SnapshotPressure `json:"pressure,omitempty"`
	LegalActions []string          `json:"legal_actions,omitempty"`
	SeriesID     string            `json:"series_id,omitempty"`
	SeriesGame   int               `json:"series_game,omitempty"`
	TurnDeadline int64             `json:"turn_deadline,omitempty"`
}

// revealed reports whether all cards are public in the current phase.
func revealed(phase domain.Phase) bool {
	return phase == domain.PhaseReveal || phase == domain.PhaseResult || phase == domain.PhaseEnded
}

func snapshotCards(h *domain.Hand, viewerOwns, showAll bool) []SnapshotCard {
	out := make([]SnapshotCard, 0, len(h.Cards))
	for i, c := range h.Cards {
		if viewerOwns || showAll || i == 0 {
			out = append(out, SnapshotCard{ID: c.ID, Rank: c.Rank, Suit: c.Suit})
			continue
		}
		out = append(out, SnapshotCard{ID: c.ID, Hidden: true})
	}
	return out
}

func snapshotHand(h *domain.Hand, viewerOwns, showAll bool) SnapshotHand {
	sh := SnapshotHand{
		Cards:       snapshotCards(h, viewerOwns, showAll),
		Bet:         h.Bet,
		Stood:       h.Stood,
		Busted:      h.Busted,
		Surrendered: h.Surrendered,
		Locked:      h.Locked,
		Natural:     (viewerOwns || showAll) && h.Natural,
	}
	if viewerOwns || showAll {
		sh.Total = h.Total()
		sh.TotalKnown = true
		sh.Soft = h.IsSoft()
		if h.Outcome != "" {
			sh.Outcome = string(h.Outcome)
		}
		return sh
	}
	for _, c := range sh.Cards {
		if !c.Hidden {
			sh.VisibleTotal += (domain.Card{Rank: c.Rank}).Value()
		}
	}
	return sh
}

// BuildSnapshot renders the match for one viewer. The viewer sees their own
// hands in full; the opponent shows the upcard only until reveal.
func BuildSnapshot(m *domain.Match, viewerID string, legal []string, turnDeadline int64) *MatchSnapshot {
	snap := &MatchSnapshot{
		MatchID:      m.ID,
		MatchType:    string(m.Type),
		Phase:        string(m.Phase),
		RoundNumber:  m.RoundNumber,
		BaseBet:      m.Bets.Min,
		FixedBet:     m.Bets.Fixed > 0,
		TableMax:     m.Bets.TableMax,
		You:          viewerID,
		SeriesID:     m.RankedSeriesID,
		LegalActions: legal,
		TurnDeadline: turnDeadline,
	}
	showAll := revealed(m.Phase)

	if m.Round != nil {
		snap.BaseBet = m.Round.BaseBet
		snap.TurnUserID = m.Round.TurnUserID
		if pr := m.Round.Pressure; pr != nil {
			snap.Pressure = &SnapshotPressure{
				InitiatorID: pr.InitiatorID,
				OpponentID:  pr.OpponentID,
				Type:        string(pr.Type),
				Delta:       pr.Delta,
				TargetHand:  pr.TargetHand,
			}
		}
	}
	if m.Series != nil {
		snap.SeriesGame = len(m.Series.Games) + 1
	}

	for _, uid := range m.PlayerIDs {
		if uid == "" {
			continue
		}
		sp := SnapshotPlayer{
			UserID:      uid,
			DisplayName: bot.GetBotDisplayName(uid),
			Chips:       m.Chips[uid],
			Elo:         m.Elo[uid],
			WinStreak:   m.WinStreak[uid],
		}
		if m.Round != nil {
			if p := m.Round.Player(uid); p != nil {
				sp.BetConfirmed = p.BetConfirmed
				sp.ActiveHand = p.ActiveHand
				owns := uid == viewerID
				for _, h := range p.Hands {
					sp.Hands = append(sp.Hands, snapshotHand(h, owns, showAll))
				}
			}
		}
		snap.Players = append(snap.Players, sp)
	}

	return snap
}
