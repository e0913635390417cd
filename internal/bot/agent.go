package bot

// Agent represents an autonomous bot player bound to one seat identity.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Act asks the agent for a hand action. It always returns a usable verb:
// any brain failure degrades to stand, a universally legal terminal action,
// so a broken brain can never stall the match.
func (a *Agent) Act(obs *Observation) string {
	d, err := a.Strategy.ChooseAction(obs)
	if err != nil || d.Action == "" {
		return "stand"
	}
	return d.Action
}

// RespondPressure asks the agent for a pressure decision, degrading to
// surrender when the brain fails.
func (a *Agent) RespondPressure(obs *Observation) string {
	d, err := a.Strategy.ChoosePressure(obs)
	if err != nil || d.Action == "" {
		return "surrender"
	}
	return d.Action
}
