package catalog

import (
	"testing"

	"github.com/desertthunder/spotbak/internal/models"
)

func TestDecide(t *testing.T) {
	tc := []struct {
		state      models.State
		simplified bool
		want       action
	}{
		{models.Absent, true, actionCreate},
		{models.Absent, false, actionCreate},
		{models.Simplified, true, actionKeep},
		{models.Simplified, false, actionUpgrade},
		{models.Full, true, actionKeep},
		{models.Full, false, actionKeep},
	}

	for _, tt := range tc {
		t.Run(tt.state.String()+"/"+tt.want.String(), func(t *testing.T) {
			if got := decide(tt.state, tt.simplified); got != tt.want {
				t.Errorf("decide(%s, simplified=%v) = %s, want %s", tt.state, tt.simplified, got, tt.want)
			}
		})
	}
}

func TestStateOf(t *testing.T) {
	if stateOf(false, true) != models.Absent {
		t.Error("missing record should be absent")
	}
	if stateOf(true, true) != models.Simplified {
		t.Error("simplified record should be simplified")
	}
	if stateOf(true, false) != models.Full {
		t.Error("complete record should be full")
	}
}
