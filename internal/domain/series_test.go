package domain

import (
	"testing"
	"time"
)

func seriesWithGames(games ...SeriesGame) *RankedSeries {
	s := &RankedSeries{ID: "s1", P1: "alice", P2: "bob", Status: SeriesInProgress}
	for _, g := range games {
		s.RecordGame(g)
	}
	return s
}

func TestSeriesWinnerUndecidedBeforeNineGames(t *testing.T) {
	s := seriesWithGames()
	for i := 0; i < SeriesGameLength-1; i++ {
		s.RecordGame(SeriesGame{WinnerID: "alice", P1Delta: 100, P2Delta: -100})
	}
	if _, done := s.Winner(); done {
		t.Fatal("series must not resolve before nine games")
	}
}

func TestSeriesWinnerByChipDelta(t *testing.T) {
	s := seriesWithGames()
	for i := 0; i < SeriesGameLength; i++ {
		delta := int64(100)
		winner := "alice"
		if i < 4 {
			delta = -50
			winner = "bob"
		}
		s.RecordGame(SeriesGame{WinnerID: winner, P1Delta: delta, P2Delta: -delta})
	}
	winner, done := s.Winner()
	if !done || winner != "alice" {
		t.Fatalf("Winner() = %q, %v; want alice decided", winner, done)
	}
}

func TestSeriesTieExtendsToSuddenDeath(t *testing.T) {
	s := seriesWithGames()
	for i := 0; i < SeriesGameLength; i++ {
		s.RecordGame(SeriesGame{WinnerID: "", P1Delta: 0, P2Delta: 0})
	}
	if _, done := s.Winner(); done {
		t.Fatal("tied series at nine games must continue")
	}

	// A pushed sudden-death game keeps the series open.
	s.RecordGame(SeriesGame{WinnerID: "", P1Delta: 0, P2Delta: 0})
	if _, done := s.Winner(); done {
		t.Fatal("pushed sudden-death game must not resolve the series")
	}

	// Sudden death resolves on the first decisive game even when chip
	// deltas remain level.
	s.RecordGame(SeriesGame{WinnerID: "bob", P1Delta: 0, P2Delta: 0})
	winner, done := s.Winner()
	if !done || winner != "bob" {
		t.Fatalf("Winner() = %q, %v; want bob decided", winner, done)
	}
}

func TestRecordGameNumbersAndRollsUp(t *testing.T) {
	s := seriesWithGames(
		SeriesGame{WinnerID: "alice", P1Delta: 150, P2Delta: -150},
		SeriesGame{WinnerID: "bob", P1Delta: -50, P2Delta: 50},
	)
	if s.Games[0].Number != 1 || s.Games[1].Number != 2 {
		t.Errorf("game numbers = %d,%d; want 1,2", s.Games[0].Number, s.Games[1].Number)
	}
	if s.P1ChipDelta != 100 || s.P2ChipDelta != -100 {
		t.Errorf("chip deltas = %d,%d; want 100,-100", s.P1ChipDelta, s.P2ChipDelta)
	}
}

func TestEloFinalizedGuard(t *testing.T) {
	s := seriesWithGames()
	if s.EloFinalized() {
		t.Fatal("fresh series must not report finalized Elo")
	}
	s.EloFinalizedAt = time.Now()
	if !s.EloFinalized() {
		t.Fatal("series with EloFinalizedAt set must report finalized")
	}
}
