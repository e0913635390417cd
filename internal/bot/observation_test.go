package bot

import (
	"encoding/json"
	"testing"

	"duel21/internal/domain"
)

func obsMatch(phase domain.Phase) *domain.Match {
	botHand := &domain.Hand{
		Bet: 100,
		Cards: []domain.Card{
			{ID: "b1", Rank: 10, Suit: "S"},
			{ID: "b2", Rank: 6, Suit: "H"},
		},
	}
	oppHand := &domain.Hand{
		Bet: 100,
		Cards: []domain.Card{
			{ID: "o1", Rank: 9, Suit: "D"},
			{ID: "o2", Rank: 7, Suit: "C"},
		},
	}
	return &domain.Match{
		ID:        "m1",
		PlayerIDs: [2]string{"bot", "human"},
		Type:      domain.MatchTypeBot,
		Phase:     phase,
		Chips:     map[string]int64{"bot": 5000, "human": 5000},
		Bets:      domain.BetSettings{Min: 100, Max: 1000, TableMax: 1600},
		Round: &domain.Round{
			Number:  1,
			BaseBet: 100,
			Players: map[string]*domain.PlayerRoundState{
				"bot":   {UserID: "bot", Hands: []*domain.Hand{botHand}},
				"human": {UserID: "human", Hands: []*domain.Hand{oppHand}},
			},
			TurnUserID: "bot",
		},
	}
}

func TestBuildObservationHidesOpponentHoleCards(t *testing.T) {
	m := obsMatch(domain.PhaseActionTurn)

	obs, err := BuildObservation(m, "bot", []string{"hit", "stand"})
	if err != nil {
		t.Fatal(err)
	}

	// Own hand in full, opponent reduced to the single upcard.
	if len(obs.Hands) != 1 || len(obs.Hands[0].Cards) != 2 {
		t.Fatalf("own hands = %+v, want one two-card hand", obs.Hands)
	}
	if obs.Hands[0].Total != 16 {
		t.Fatalf("own total = %d, want 16", obs.Hands[0].Total)
	}
	if len(obs.OppUpcards) != 1 || obs.OppUpcards[0].Rank != 9 {
		t.Fatalf("OppUpcards = %+v, want only the rank-9 upcard", obs.OppUpcards)
	}
	if obs.OppVisibleTotal != 9 {
		t.Fatalf("OppVisibleTotal = %d, want 9", obs.OppVisibleTotal)
	}
	if obs.Upcard() != 9 {
		t.Fatalf("Upcard = %d, want 9", obs.Upcard())
	}
	if obs.Pressure != nil {
		t.Fatal("no pressure pending, Pressure must be nil")
	}
}

func TestBuildObservationShowsAllCardsAfterReveal(t *testing.T) {
	m := obsMatch(domain.PhaseReveal)

	obs, err := BuildObservation(m, "bot", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs.OppUpcards) != 2 {
		t.Fatalf("OppUpcards = %d cards, want both after reveal", len(obs.OppUpcards))
	}
	if obs.OppVisibleTotal != 16 {
		t.Fatalf("OppVisibleTotal = %d, want 16", obs.OppVisibleTotal)
	}
}

func TestBuildObservationPressureAffordability(t *testing.T) {
	m := obsMatch(domain.PhasePressure)
	m.Round.Pressure = &domain.PendingPressure{
		InitiatorID:   "human",
		InitiatorHand: 0,
		OpponentID:    "bot",
		Type:          domain.PressureDouble,
		Delta:         100,
		TargetHand:    0,
		AffectedHands: []int{0},
	}

	obs, err := BuildObservation(m, "bot", []string{"match", "surrender"})
	if err != nil {
		t.Fatal(err)
	}
	if obs.Pressure == nil {
		t.Fatal("Pressure missing from observation")
	}
	if !obs.Pressure.CanAfford {
		t.Fatal("CanAfford = false with 5000 chips against a 100 delta")
	}

	// Drained bankroll flips affordability.
	m.Chips["bot"] = 50
	obs, err = BuildObservation(m, "bot", []string{"match", "surrender"})
	if err != nil {
		t.Fatal(err)
	}
	if obs.Pressure.CanAfford {
		t.Fatal("CanAfford = true while unable to cover the delta")
	}
}

func TestBuildObservationIgnoresPressureAimedAtOpponent(t *testing.T) {
	m := obsMatch(domain.PhasePressure)
	m.Round.Pressure = &domain.PendingPressure{
		InitiatorID: "bot",
		OpponentID:  "human",
		Type:        domain.PressureDouble,
		Delta:       100,
	}

	obs, err := BuildObservation(m, "bot", nil)
	if err != nil {
		t.Fatal(err)
	}
	if obs.Pressure != nil {
		t.Fatal("pressure aimed at the opponent leaked into the bot's view")
	}
}

func TestBuildObservationRequiresActiveRound(t *testing.T) {
	m := obsMatch(domain.PhaseActionTurn)
	m.Round = nil
	if _, err := BuildObservation(m, "bot", nil); err == nil {
		t.Fatal("nil round must fail")
	}

	m = obsMatch(domain.PhaseActionTurn)
	if _, err := BuildObservation(m, "stranger", nil); err == nil {
		t.Fatal("seat not in the round must fail")
	}
}

func TestObservationSerializationPassesKeyCheck(t *testing.T) {
	m := obsMatch(domain.PhaseActionTurn)
	obs, err := BuildObservation(m, "bot", []string{"hit", "stand"})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(obs)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckObservation(raw); err != nil {
		t.Fatalf("CheckObservation = %v, want clean", err)
	}
}

func TestCheckObservationFlagsForbiddenKeys(t *testing.T) {
	cases := []string{
		`{"deck":[1,2,3]}`,
		`{"state":{"remainingDeck":[]}}`,
		`{"hands":[{"opponentHiddenCards":[]}]}`,
		`{"FullMatchState":{}}`,
	}
	for _, raw := range cases {
		if err := CheckObservation([]byte(raw)); err == nil {
			t.Errorf("CheckObservation(%s) = nil, want forbidden-key error", raw)
		}
	}
	if err := CheckObservation([]byte(`not json`)); err == nil {
		t.Error("malformed input must fail")
	}
}
