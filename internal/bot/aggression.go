package bot

import "sync"

// AggressionModel tracks human action frequencies across all bot matches
// and derives a global aggression bias the brains read on every decision.
// It is updated only from verified human actions in bot-opponent matches;
// bots never reinforce themselves.
type AggressionModel struct {
	mu         sync.Mutex
	hits       int
	stands     int
	doubles    int
	splits     int
	surrenders int
}

// NewAggressionModel creates an empty model.
func NewAggressionModel() *AggressionModel {
	return &AggressionModel{}
}

// RecordHumanAction feeds one human action verb into the counters.
// Unknown verbs are ignored.
func (a *AggressionModel) RecordHumanAction(verb string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch verb {
	case "hit":
		a.hits++
	case "stand":
		a.stands++
	case "double":
		a.doubles++
	case "split":
		a.splits++
	case "surrender":
		a.surrenders++
	}
}

// Bias returns the current aggression in [0.2, 0.8]:
// (double+split) / max(1, (double+split)+(hit+stand)).
func (a *AggressionModel) Bias() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	aggressive := a.doubles + a.splits
	denom := aggressive + a.hits + a.stands
	if denom < 1 {
		denom = 1
	}
	bias := float64(aggressive) / float64(denom)
	if bias < 0.2 {
		return 0.2
	}
	if bias > 0.8 {
		return 0.8
	}
	return bias
}
