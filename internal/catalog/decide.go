package catalog

import "github.com/desertthunder/spotbak/internal/models"

// action is what an upsert does to the stored record.
type action int

const (
	actionCreate action = iota
	actionUpgrade
	actionKeep
)

func (a action) String() string {
	switch a {
	case actionCreate:
		return "create"
	case actionUpgrade:
		return "upgrade"
	default:
		return "keep"
	}
}

// decide maps (stored state, payload shape) to an action.
//
//	Absent     + any        → create (simplified or full from the payload shape)
//	Simplified + full       → upgrade
//	Simplified + simplified → keep
//	Full       + any        → keep
func decide(state models.State, simplifiedPayload bool) action {
	switch state {
	case models.Absent:
		return actionCreate
	case models.Simplified:
		if simplifiedPayload {
			return actionKeep
		}
		return actionUpgrade
	default:
		return actionKeep
	}
}

// stateOf returns the state of a record that may not exist.
func stateOf(exists, isSimplified bool) models.State {
	if !exists {
		return models.Absent
	}
	return models.StateOf(isSimplified)
}
