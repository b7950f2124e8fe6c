// Package spawn starts processes into Unix process groups for a job-control
// shell.
package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/sdfpt05/jobsh/internal/sys"
	"golang.org/x/sys/unix"
)

// NewGroup asks Launch to make the new process the leader of a new process
// group.
const NewGroup = 0

// Error is returned when a process could not be started.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Spawner starts processes attached to the shell's standard streams unless
// told otherwise. Only the three standard descriptors are passed to a child,
// inherited ones included;
// a nil stream is connected to the null device.
type Spawner struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	logger *slog.Logger
}

// New returns a Spawner wired to the calling process' standard streams.
func New(logger *slog.Logger) *Spawner {
	return &Spawner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger,
	}
}

// Launch starts name with args and returns its pid. With pgid NewGroup the
// process leads a new process group, otherwise it joins pgid. A non-nil stdin
// or stdout replaces the corresponding default stream.
//
// The process is not waited for; its status must be collected with wait4.
func (s *Spawner) Launch(
	pgid int,
	name string,
	args []string,
	stdin, stdout *os.File,
) (int, error) {
	cmd := exec.Command(name, args...)

	// A nil *os.File must not reach exec.Cmd as a non-nil interface.
	if f := choose(stdin, s.Stdin); f != nil {
		cmd.Stdin = f
	}

	if f := choose(stdout, s.Stdout); f != nil {
		cmd.Stdout = f
	}

	if s.Stderr != nil {
		cmd.Stderr = s.Stderr
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    pgid,
	}

	if err := sys.CloseOnExec(3); err != nil {
		s.logger.Warn("mark descriptors close-on-exec", "err", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, &Error{Name: name, Err: err}
	}

	pid := cmd.Process.Pid

	target := pgid
	if target == NewGroup {
		target = pid
	}

	// The child sets its own group before exec, this closes the window in
	// which the parent could signal or foreground a group that does not exist
	// yet. EACCES means the child has already exec'd and ESRCH that it is
	// already gone; both leave the child's own setpgid in effect.
	if err := sys.RetryErr(func() error {
		return unix.Setpgid(pid, target)
	}); err != nil && !errors.Is(err, unix.EACCES) && !errors.Is(err, unix.ESRCH) {
		s.logger.Warn("set process group", "pid", pid, "pgid", target, "err", err)
	}

	// The status is reaped by wait4 on any child, never by cmd.Wait.
	if err := cmd.Process.Release(); err != nil {
		s.logger.Debug("release process", "pid", pid, "err", err)
	}

	s.logger.Debug("launched", "pid", pid, "pgid", target, "program", cmd.Path)

	return pid, nil
}

func choose(override, def *os.File) *os.File {
	if override != nil {
		return override
	}

	return def
}

// Resume sends SIGCONT to every process in the group pgid.
func (s *Spawner) Resume(pgid int) error {
	if pgid <= 0 {
		return fmt.Errorf("invalid process group id: %d", pgid)
	}

	return sys.RetryErr(func() error {
		return unix.Kill(-pgid, unix.SIGCONT)
	})
}
