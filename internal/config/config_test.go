package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetForTest() {
	cfg = nil
	loadOnce = sync.Once{}
	loadErr = nil
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	resetForTest()
	defer resetForTest()

	if err := LoadGameConfig(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("missing file err = %v, want defaults without error", err)
	}
	c := GetGameConfig()
	if c.WelcomeChips != 10000 {
		t.Fatalf("WelcomeChips = %d, want 10000", c.WelcomeChips)
	}
	if c.Timings.TurnSeconds != 30 || c.Timings.DisconnectSeconds != 60 {
		t.Fatalf("timings = %+v", c.Timings)
	}
	if len(c.Buckets) != 5 {
		t.Fatalf("buckets = %d, want the five fixed stakes", len(c.Buckets))
	}
}

func TestFileOverridesMergeOntoDefaults(t *testing.T) {
	resetForTest()
	defer resetForTest()

	path := filepath.Join(t.TempDir(), "game_config.json")
	raw := `{"welcome_chips": 25000, "timings": {"turn_seconds": 15}}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadGameConfig(path); err != nil {
		t.Fatal(err)
	}
	c := GetGameConfig()
	if c.WelcomeChips != 25000 {
		t.Fatalf("WelcomeChips = %d, want the override", c.WelcomeChips)
	}
	if c.Timings.TurnSeconds != 15 {
		t.Fatalf("TurnSeconds = %d, want the override", c.Timings.TurnSeconds)
	}
	// Untouched fields keep their defaults.
	if c.Timings.RevealMillis != 2200 {
		t.Fatalf("RevealMillis = %d, want default kept", c.Timings.RevealMillis)
	}
	if c.DefaultBucket != "casual_100" {
		t.Fatalf("DefaultBucket = %q", c.DefaultBucket)
	}
}

func TestMalformedFileFailsLoudly(t *testing.T) {
	resetForTest()
	defer resetForTest()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadGameConfig(path); err == nil {
		t.Fatal("malformed config loaded without error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	resetForTest()
	defer resetForTest()

	ApplyEnvOverrides(map[string]string{
		"duel21_turn_seconds":         "12",
		"duel21_reveal_millis":        "not-a-number",
		"duel21_bot_think_min_millis": "-5",
	})
	c := GetGameConfig()
	if c.Timings.TurnSeconds != 12 {
		t.Fatalf("TurnSeconds = %d, want env override", c.Timings.TurnSeconds)
	}
	// Unparsable and non-positive values are ignored.
	if c.Timings.RevealMillis != 2200 || c.Timings.BotThinkMinMillis != 700 {
		t.Fatalf("timings = %+v, want defaults kept", c.Timings)
	}
}

func TestGetBucketBet(t *testing.T) {
	resetForTest()
	defer resetForTest()

	if got := GetBucketBet("casual_5000"); got != 5000 {
		t.Fatalf("casual_5000 = %d", got)
	}
	if got := GetBucketBet(""); got != 100 {
		t.Fatalf("empty bucket = %d, want the default bucket bet", got)
	}
	if got := GetBucketBet("no_such_bucket"); got != 100 {
		t.Fatalf("unknown bucket = %d, want the default bucket bet", got)
	}
}
