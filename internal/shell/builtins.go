package shell

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sdfpt05/jobsh/internal/jobs"
	"github.com/sdfpt05/jobsh/internal/parser"
)

func isBuiltin(name string) bool {
	switch name {
	case "exit", "fg":
		return true
	default:
		return false
	}
}

func (w *Worker) executeBuiltin(ctx context.Context, stage parser.Stage) (bool, error) {
	switch stage.Name {
	case "exit":
		return true, w.exit(ctx, stage.Args)
	case "fg":
		return true, w.fg(stage.Args)
	default:
		return false, nil
	}
}

// exit asks the Shell loop to quit with the given code, or the last exit
// value when none is given.
func (w *Worker) exit(ctx context.Context, args []string) error {
	if n := w.table.Len(); n > 0 {
		return fmt.Errorf("exit: %w (%d)", ErrJobsRemain, n)
	}

	code := w.lastExit

	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return &ArgumentError{
				Builtin: "exit",
				Msg:     fmt.Sprintf("invalid exit code %q", args[0]),
			}
		}
		code = n
	default:
		return &ArgumentError{Builtin: "exit", Msg: "too many arguments"}
	}

	w.reply(ctx, Reply{Verdict: Quit, Code: code})

	return nil
}

// fg resumes a job in the foreground. The Shell loop stays blocked until the
// job exits or stops again.
func (w *Worker) fg(args []string) error {
	if len(args) != 1 {
		return &ArgumentError{Builtin: "fg", Msg: "usage: fg <job-id>"}
	}

	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 {
		return &ArgumentError{
			Builtin: "fg",
			Msg:     fmt.Sprintf("invalid job id %q", args[0]),
		}
	}

	job, ok := w.table.Job(id)
	if !ok {
		return fmt.Errorf("fg: %w: %d", ErrJobNotFound, id)
	}

	w.foreground(job.PGID)

	for _, pid := range w.table.Members(job.PGID) {
		w.table.SetState(pid, jobs.Running)
	}

	if err := w.launcher.Resume(job.PGID); err != nil {
		w.logger.Warn("resume job", "job", job.ID, "pgid", job.PGID, "err", err)
	}

	w.logger.Debug("job resumed", "job", job.ID, "pgid", job.PGID)

	return nil
}
