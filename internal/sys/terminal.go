package sys

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal hands foreground ownership of a controlling terminal between
// process groups.
type Terminal struct {
	fd int
}

// NewTerminal returns a Terminal operating on f, normally os.Stdin.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{fd: int(f.Fd())}
}

// IsTerminal reports whether f refers to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Foreground returns the id of the terminal's foreground process group.
func (t *Terminal) Foreground() (int, error) {
	return Retry(func() (int, error) {
		return unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
	})
}

// SetForeground makes pgid the terminal's foreground process group.
func (t *Terminal) SetForeground(pgid int) error {
	// A caller outside the foreground group gets SIGTTOU from tcsetpgrp unless
	// the signal is ignored. It is only ignored for the duration of the call so
	// children forked later start with the default disposition.
	signal.Ignore(syscall.SIGTTOU)
	defer signal.Reset(syscall.SIGTTOU)

	return RetryErr(func() error {
		return unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid)
	})
}

// NopTerminal is used when the shell has no controlling terminal.
type NopTerminal struct{}

func (NopTerminal) SetForeground(int) error { return nil }
