package sys

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrNoChildren is returned by Wait when the calling process has no children
// left to report on.
var ErrNoChildren = errors.New("no child processes")

// Kind is the kind of status change reported for a child process.
type Kind int

const (
	// NoChange means children exist but none has a pending status change.
	NoChange Kind = iota
	Exited
	Signaled
	Stopped
	Continued
)

var kinds = []string{
	"NoChange",
	"Exited",
	"Signaled",
	"Stopped",
	"Continued",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kinds) {
		return "Unknown"
	}

	return kinds[k]
}

// Status is a decoded child status change.
type Status struct {
	Pid  int
	Kind Kind

	// Code is the exit code for Exited.
	Code int

	// Signal is the terminating signal for Signaled and the stop signal for
	// Stopped.
	Signal unix.Signal

	CoreDump bool
}

// ChildWaiter polls the kernel for status changes of any child of the
// calling process.
type ChildWaiter struct{}

// Wait reports one pending status change without blocking. It returns a
// Status of kind NoChange when nothing is pending and ErrNoChildren when there
// are no children at all.
func (ChildWaiter) Wait() (Status, error) {
	var ws unix.WaitStatus

	pid, err := Retry(func() (int, error) {
		return unix.Wait4(
			-1,
			&ws,
			unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED,
			nil,
		)
	})
	if errors.Is(err, unix.ECHILD) {
		return Status{}, ErrNoChildren
	}

	if err != nil {
		return Status{}, err
	}

	if pid == 0 {
		return Status{Kind: NoChange}, nil
	}

	return Decode(pid, ws), nil
}

// Decode converts a raw wait status for pid into a Status.
func Decode(pid int, ws unix.WaitStatus) Status {
	s := Status{Pid: pid}

	switch {
	case ws.Exited():
		s.Kind = Exited
		s.Code = ws.ExitStatus()
	case ws.Signaled():
		s.Kind = Signaled
		s.Signal = ws.Signal()
		s.CoreDump = ws.CoreDump()
	case ws.Stopped():
		s.Kind = Stopped
		s.Signal = ws.StopSignal()
	case ws.Continued():
		s.Kind = Continued
	default:
		s.Kind = NoChange
	}

	return s
}
