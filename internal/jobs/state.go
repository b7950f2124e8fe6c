package jobs

// State is the run state of a tracked process.
type State int

const (
	// Running indicates the process is running, or at least has not been
	// reported as stopped since it last ran.
	Running State = iota

	// Stopped indicates the process was stopped by a signal and has not been
	// continued since.
	Stopped
)

var states = []string{
	"Running",
	"Stopped",
}

func (s State) String() string {
	if int(s) < 0 || int(s) >= len(states) {
		return "Unknown"
	}

	return states[s]
}
