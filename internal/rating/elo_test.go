package rating

import (
	"math"
	"testing"
)

func TestExpectedScore(t *testing.T) {
	if got := ExpectedScore(1000, 1000); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("equal ratings expectancy = %f, want 0.5", got)
	}
	// 400 points of rating is 10:1 odds.
	if got := ExpectedScore(1400, 1000); math.Abs(got-10.0/11.0) > 1e-9 {
		t.Errorf("+400 expectancy = %f, want %f", got, 10.0/11.0)
	}
	low := ExpectedScore(1000, 1400)
	high := ExpectedScore(1400, 1000)
	if math.Abs(low+high-1.0) > 1e-9 {
		t.Errorf("expectancies must be complementary: %f + %f", low, high)
	}
}

func TestGameDeltaSymmetryAndSigns(t *testing.T) {
	facts := GameFacts{MarginRatio: 1.0}

	win := GameDelta(1000, 1000, ScoreWin, facts)
	loss := GameDelta(1000, 1000, ScoreLoss, facts)
	if win <= 0 {
		t.Errorf("winner delta = %d, want > 0", win)
	}
	if loss >= 0 {
		t.Errorf("loser delta = %d, want < 0", loss)
	}
	if win != -loss {
		t.Errorf("equal-rating game must be symmetric: %d vs %d", win, loss)
	}
}

func TestGameDeltaUnderdogBeatsFavorite(t *testing.T) {
	facts := GameFacts{MarginRatio: 1.0}

	underdog := GameDelta(1000, 1400, ScoreWin, facts)
	favorite := GameDelta(1400, 1000, ScoreWin, facts)
	if underdog <= favorite {
		t.Errorf("underdog win %d must exceed favorite win %d", underdog, favorite)
	}
}

func TestGameDeltaDecisiveAlwaysMoves(t *testing.T) {
	// A heavy favorite winning earns nearly nothing raw, but never zero.
	delta := GameDelta(2200, 1000, ScoreWin, GameFacts{})
	if delta < 1 {
		t.Errorf("favorite win delta = %d, want >= 1", delta)
	}
	delta = GameDelta(1000, 2200, ScoreLoss, GameFacts{})
	if delta > -1 {
		t.Errorf("expected loss delta = %d, want <= -1", delta)
	}
}

func TestGameDeltaPushClamp(t *testing.T) {
	for _, gap := range []int{0, 200, 800} {
		delta := GameDelta(1000, 1000+gap, ScorePush, GameFacts{Pushes: 1})
		if delta < -gamePushDeltaMax || delta > gamePushDeltaMax {
			t.Errorf("push delta at gap %d = %d, outside +-%d", gap, delta, gamePushDeltaMax)
		}
		if gap > 0 && delta < 0 {
			t.Errorf("lower-rated push delta = %d, want >= 0", delta)
		}
	}
}

func TestGameDeltaClampedAtMax(t *testing.T) {
	facts := GameFacts{Naturals: 2, Busts: 2, Splits: 4, MarginRatio: 4.0}
	delta := GameDelta(1000, 1900, ScoreWin, facts)
	if delta > gameDeltaMax {
		t.Errorf("delta = %d, exceeds clamp %d", delta, gameDeltaMax)
	}
}

func TestGameKMonotonicDecreasing(t *testing.T) {
	ratings := []int{1100, 1400, 1700, 1900}
	prev := math.Inf(1)
	for _, r := range ratings {
		k := gameK(r)
		if k > prev {
			t.Errorf("gameK(%d) = %f rose above %f", r, k, prev)
		}
		prev = k
	}
}

func TestOneWinTwoLossesIsNetNegative(t *testing.T) {
	// At equal ratings a 1W-2L stretch must lose rating overall.
	facts := GameFacts{MarginRatio: 1.0}
	rating := 1000
	opp := 1000

	net := GameDelta(rating, opp, ScoreWin, facts) +
		GameDelta(rating, opp, ScoreLoss, facts) +
		GameDelta(rating, opp, ScoreLoss, facts)
	if net >= 0 {
		t.Errorf("1W-2L net = %d, want < 0", net)
	}
}

func TestVarianceMultiplierClamped(t *testing.T) {
	if got := varianceMultiplier(GameFacts{}); got != 1.0 {
		t.Errorf("quiet game multiplier = %f, want 1.0", got)
	}
	wild := varianceMultiplier(GameFacts{Naturals: 2, Busts: 3, Splits: 4, Pushes: 2, MarginRatio: 0.25})
	if wild != 1.4 {
		t.Errorf("wild game multiplier = %f, want clamped to 1.4", wild)
	}
}

func TestSeriesDeltaRanges(t *testing.T) {
	for _, gap := range []int{-600, -200, 0, 200, 600} {
		win := SeriesDelta(1500, 1500+gap, true, TierFor(1500))
		if win < seriesWinMin || win > seriesWinMax {
			t.Errorf("series win at gap %d = %d, outside [%d,%d]", gap, win, seriesWinMin, seriesWinMax)
		}
		loss := SeriesDelta(1500, 1500+gap, false, TierFor(1500))
		if loss >= 0 || loss < seriesLossMin {
			t.Errorf("series loss at gap %d = %d, outside [%d,0)", gap, loss, seriesLossMin)
		}
	}
}

func TestSeriesLossSofterForBronze(t *testing.T) {
	// Same numeric rating, different starting band: Bronze bleeds less.
	bronzeLoss := SeriesDelta(1500, 1500, false, TierBronze)
	goldLoss := SeriesDelta(1500, 1500, false, TierGold)
	if bronzeLoss <= goldLoss {
		t.Errorf("bronze loss %d must be milder than gold loss %d", bronzeLoss, goldLoss)
	}
}

func TestTierForBounds(t *testing.T) {
	tests := []struct {
		elo  int
		want Tier
	}{
		{900, TierBronze},
		{1199, TierBronze},
		{1200, TierSilver},
		{1399, TierSilver},
		{1400, TierGold},
		{1600, TierPlatinum},
		{1750, TierDiamond},
		{1850, TierLegendary},
	}
	for _, tt := range tests {
		if got := TierFor(tt.elo); got != tt.want {
			t.Errorf("TierFor(%d) = %v, want %v", tt.elo, got, tt.want)
		}
	}
}

func TestTierBetsAscend(t *testing.T) {
	tiers := []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierLegendary}
	var prev int64
	for _, tier := range tiers {
		bet := tier.Bet()
		if bet <= prev {
			t.Errorf("tier %v bet %d does not ascend past %d", tier, bet, prev)
		}
		prev = bet
	}
}
