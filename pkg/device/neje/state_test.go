package neje

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Disconnected, "disconnected"},
		{Idle, "idle"},
		{Erasing, "erasing"},
		{Uploading, "uploading"},
		{Ready, "ready"},
		{Engraving, "engraving"},
		{Paused, "paused"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
