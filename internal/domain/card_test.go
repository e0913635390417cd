package domain

import "testing"

// seqRNG replays a fixed Intn sequence, then zeros.
type seqRNG struct {
	seq []int
	i   int
}

func (r *seqRNG) Intn(n int) int {
	if r.i >= len(r.seq) {
		return 0
	}
	v := r.seq[r.i] % n
	r.i++
	return v
}

func (r *seqRNG) Float64() float64 { return 0 }

func TestNewDeckIsCompleteAndUnique(t *testing.T) {
	d := NewDeck(&seqRNG{})
	if d.Remaining() != 52 {
		t.Fatalf("Remaining() = %d, want 52", d.Remaining())
	}

	seen := map[string]bool{}
	ids := map[string]bool{}
	for {
		c, ok := d.Draw()
		if !ok {
			break
		}
		key := c.Suit + string(rune('0'+c.Rank))
		if seen[key] {
			t.Fatalf("duplicate card %s%d", c.Suit, c.Rank)
		}
		seen[key] = true
		if ids[c.ID] {
			t.Fatalf("duplicate card id %s", c.ID)
		}
		ids[c.ID] = true
	}
	if len(seen) != 52 {
		t.Fatalf("drew %d distinct cards, want 52", len(seen))
	}
}

func TestDrawExhaustion(t *testing.T) {
	d := NewStackedDeck(Card{ID: "a", Rank: 5, Suit: "S"})
	c, ok := d.Draw()
	if !ok || c.Rank != 5 {
		t.Fatalf("Draw() = %+v, %v", c, ok)
	}
	if _, ok := d.Draw(); ok {
		t.Error("expected draw from empty deck to fail")
	}
}

func TestCardValue(t *testing.T) {
	tests := []struct {
		rank int
		want int
	}{
		{2, 2}, {9, 9}, {10, 10},
		{RankJack, 10}, {RankQueen, 10}, {RankKing, 10},
		{RankAce, 11},
	}
	for _, tt := range tests {
		if got := (Card{Rank: tt.rank}).Value(); got != tt.want {
			t.Errorf("Value(rank=%d) = %d, want %d", tt.rank, got, tt.want)
		}
	}
}

func TestForfeitLoss(t *testing.T) {
	tests := []struct {
		name                     string
		bankroll, exposure, base int64
		want                     int64
	}{
		{"exposure dominates", 10000, 400, 100, 400},
		{"base bet floor", 10000, 0, 100, 100},
		{"capped by bankroll", 50, 400, 100, 50},
		{"broke player", 0, 400, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForfeitLoss(tt.bankroll, tt.exposure, tt.base); got != tt.want {
				t.Errorf("ForfeitLoss() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextStreaks(t *testing.T) {
	win, loss := NextStreaks(2, 0, OutcomeWin)
	if win != 3 || loss != 0 {
		t.Errorf("after win: (%d,%d), want (3,0)", win, loss)
	}
	win, loss = NextStreaks(2, 0, OutcomeLoss)
	if win != 0 || loss != 1 {
		t.Errorf("after loss: (%d,%d), want (0,1)", win, loss)
	}
	win, loss = NextStreaks(2, 1, OutcomePush)
	if win != 2 || loss != 1 {
		t.Errorf("after push: (%d,%d), want (2,1)", win, loss)
	}
}
