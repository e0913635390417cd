package bot

// Decision is a single chosen verb: a hand action or a pressure response.
type Decision struct {
	Action string
}

// Brain is the interface all bot strategies implement. Brains see only the
// restricted Observation, never live match state.
type Brain interface {
	// ChooseAction picks a hand action from the observation's legal list.
	ChooseAction(obs *Observation) (Decision, error)
	// ChoosePressure decides a pending match-or-surrender demand.
	ChoosePressure(obs *Observation) (Decision, error)
}
