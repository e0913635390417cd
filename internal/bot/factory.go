package bot

import (
	"fmt"

	"duel21/internal/domain"
)

// NewBrain creates a bot brain at the requested difficulty, sharing the
// process-wide aggression model.
func NewBrain(d Difficulty, aggression *AggressionModel, rng domain.RNG) (Brain, error) {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyNormal:
		return NewStandardBrain(d, aggression, rng), nil
	default:
		return nil, fmt.Errorf("unknown bot difficulty: %q", d)
	}
}

// NewAgent builds an agent from a provisioned bot identity, defaulting to
// medium difficulty when the identity carries none.
func NewAgent(botID string, aggression *AggressionModel, rng domain.RNG) (*Agent, error) {
	difficulty := DifficultyMedium
	name := botID
	if identity, ok := GetBotConfig(botID); ok {
		if identity.Difficulty != "" {
			difficulty = Difficulty(identity.Difficulty)
		}
		name = identity.DisplayName
	}

	brain, err := NewBrain(difficulty, aggression, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: botID, Name: name, Strategy: brain}, nil
}
