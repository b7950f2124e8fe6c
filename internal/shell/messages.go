package shell

import "os"

// Message is an event delivered to a Worker.
type Message interface {
	message()
}

// LineMsg is a command line submitted by the user.
type LineMsg string

// SignalMsg is a signal received by the shell process.
type SignalMsg struct {
	Signal os.Signal
}

func (LineMsg) message()   {}
func (SignalMsg) message() {}

// Verdict tells the Shell loop what to do after a line was handled.
type Verdict int

const (
	// Continue permits the Shell loop to read the next line.
	Continue Verdict = iota

	// Quit asks the Shell loop to terminate.
	Quit
)

func (v Verdict) String() string {
	if v == Quit {
		return "Quit"
	}

	return "Continue"
}

// Reply is the Worker's answer to a submitted line.
type Reply struct {
	Verdict Verdict
	Code    int
}
