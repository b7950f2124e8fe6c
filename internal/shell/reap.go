package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdfpt05/jobsh/internal/jobs"
	"github.com/sdfpt05/jobsh/internal/sys"
	"golang.org/x/sys/unix"
)

// reap collects every pending child status change.
func (w *Worker) reap(ctx context.Context) error {
	for {
		s, err := w.waiter.Wait()
		if errors.Is(err, sys.ErrNoChildren) {
			return nil
		}

		if err != nil {
			return &WaitError{Err: err}
		}

		w.logger.Debug("child status", "pid", s.Pid, "kind", s.Kind)

		switch s.Kind {
		case sys.NoChange:
			return nil
		case sys.Exited:
			w.processExited(ctx, s.Pid, s.Code)
		case sys.Signaled:
			w.processSignaled(ctx, s)
		case sys.Stopped:
			w.processStopped(ctx, s.Pid)
		case sys.Continued:
			w.table.SetState(s.Pid, jobs.Running)
		}
	}
}

func (w *Worker) processExited(ctx context.Context, pid, code int) {
	r, ok := w.table.RemoveProcess(pid)
	if !ok {
		w.logger.Debug("untracked child exited", "pid", pid, "code", code)
		return
	}

	w.lastExit = code

	fg, isFG := w.table.Foreground()
	isFG = isFG && fg == r.PGID

	if !r.JobRemoved {
		// The remaining members may all be stopped already.
		if isFG && w.table.GroupStopped(r.PGID) {
			w.groupStopped(ctx, r.Job)
		}
		return
	}

	fmt.Fprintf(w.stderr, "[%d] done\t%s\n", r.Job.ID, r.Job.Line)

	if isFG {
		w.returnToShell()
		w.reply(ctx, Reply{Verdict: Continue, Code: w.lastExit})
	}
}

func (w *Worker) processSignaled(ctx context.Context, s sys.Status) {
	if _, ok := w.table.Process(s.Pid); !ok {
		w.logger.Debug("untracked child killed", "pid", s.Pid, "signal", s.Signal)
		return
	}

	core := ""
	if s.CoreDump {
		core = " (core dumped)"
	}

	fmt.Fprintf(
		w.stderr,
		"jobsh: process %d terminated by %s%s\n",
		s.Pid,
		unix.SignalName(s.Signal),
		core,
	)

	if w.retainSignaled {
		return
	}

	w.processExited(ctx, s.Pid, 128+int(s.Signal))
}

func (w *Worker) processStopped(ctx context.Context, pid int) {
	if !w.table.SetState(pid, jobs.Stopped) {
		w.logger.Debug("untracked child stopped", "pid", pid)
		return
	}

	p, _ := w.table.Process(pid)

	fg, ok := w.table.Foreground()
	if !ok || fg != p.PGID || !w.table.GroupStopped(p.PGID) {
		return
	}

	job, _ := w.table.GroupJob(p.PGID)
	w.groupStopped(ctx, job)
}

// groupStopped returns the terminal to the shell once a foreground job is
// fully stopped. The job stays tracked.
func (w *Worker) groupStopped(ctx context.Context, job jobs.Job) {
	fmt.Fprintf(w.stderr, "[%d] stopped\t%s\n", job.ID, job.Line)

	w.returnToShell()
	w.reply(ctx, Reply{Verdict: Continue, Code: w.lastExit})
}
