package shell

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sdfpt05/jobsh/internal/jobs"
	"github.com/sdfpt05/jobsh/internal/parser"
	"github.com/sdfpt05/jobsh/internal/sys"
	"golang.org/x/sys/unix"
)

// maxStages is the longest pipeline a Worker launches.
const maxStages = 2

// inboxSize bounds the number of undelivered messages. Senders block when
// the Worker falls behind.
const inboxSize = 32

// Launcher starts and resumes processes.
type Launcher interface {
	Launch(pgid int, name string, args []string, stdin, stdout *os.File) (int, error)
	Resume(pgid int) error
}

// Terminal assigns foreground ownership of the controlling terminal.
type Terminal interface {
	SetForeground(pgid int) error
}

// Waiter reports pending child status changes without blocking.
type Waiter interface {
	Wait() (sys.Status, error)
}

// WorkerConfig holds the collaborators of a Worker.
type WorkerConfig struct {
	Launcher Launcher
	Terminal Terminal
	Waiter   Waiter

	// ShellPGID is the shell's own process group. The terminal is handed
	// back to it whenever no job is in the foreground.
	ShellPGID int

	// MaxJobs bounds the job id space. Zero means unbounded.
	MaxJobs int

	// RetainSignaled keeps processes killed by a signal in the job table
	// instead of treating them as exited.
	RetainSignaled bool

	// Stderr receives diagnostics and job notices.
	Stderr io.Writer

	Logger *slog.Logger
}

// Worker is the job-control engine. All of its state is owned by the
// goroutine executing Run.
type Worker struct {
	table *jobs.Table

	launcher Launcher
	terminal Terminal
	waiter   Waiter

	shellPGID      int
	lastExit       int
	retainSignaled bool

	inbox   chan Message
	replies chan Reply

	stderr io.Writer
	logger *slog.Logger
}

// NewWorker creates a Worker ready to Run.
func NewWorker(cfg WorkerConfig) *Worker {
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Worker{
		table:          jobs.NewTable(cfg.MaxJobs),
		launcher:       cfg.Launcher,
		terminal:       cfg.Terminal,
		waiter:         cfg.Waiter,
		shellPGID:      cfg.ShellPGID,
		retainSignaled: cfg.RetainSignaled,
		inbox:          make(chan Message, inboxSize),
		replies:        make(chan Reply),
		stderr:         stderr,
		logger:         logger,
	}
}

// Inbox returns the channel the Worker consumes messages from.
func (w *Worker) Inbox() chan<- Message {
	return w.inbox
}

// Replies returns the channel on which the Worker authorizes the Shell loop
// to continue or quit. It is unbuffered.
func (w *Worker) Replies() <-chan Reply {
	return w.replies
}

// Run handles messages until ctx is cancelled. It only returns an error,
// a *WaitError, when child status can no longer be queried.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-w.inbox:
			switch msg := msg.(type) {
			case LineMsg:
				w.submit(ctx, string(msg))
			case SignalMsg:
				if msg.Signal != unix.SIGCHLD {
					w.logger.Debug("ignoring signal", "signal", msg.Signal)
					continue
				}

				if err := w.reap(ctx); err != nil {
					return err
				}
			}
		}
	}
}

func (w *Worker) submit(ctx context.Context, line string) {
	stages, err := parser.Parse(line)
	if err != nil {
		w.fail(ctx, err)
		return
	}

	if len(stages) == 0 {
		w.fail(ctx, ErrEmptyPipeline)
		return
	}

	if len(stages) == 1 {
		if ok, err := w.executeBuiltin(ctx, stages[0]); ok {
			if err != nil {
				w.fail(ctx, err)
			}
			return
		}
	}

	if len(stages) > maxStages {
		w.fail(ctx, fmt.Errorf("%w: got %d", ErrTooManyStages, len(stages)))
		return
	}

	for _, stage := range stages {
		if isBuiltin(stage.Name) {
			w.fail(ctx, fmt.Errorf("%s: %w", stage.Name, ErrBuiltinInPipeline))
			return
		}
	}

	if err := w.spawnPipeline(line, stages); err != nil {
		w.fail(ctx, err)
	}
}

// fail reports err and lets the Shell loop continue with a failure status.
func (w *Worker) fail(ctx context.Context, err error) {
	fmt.Fprintf(w.stderr, "jobsh: %v\n", err)

	w.lastExit = 1
	w.reply(ctx, Reply{Verdict: Continue, Code: w.lastExit})
}

func (w *Worker) reply(ctx context.Context, r Reply) {
	select {
	case w.replies <- r:
	case <-ctx.Done():
	}
}

// foreground gives pgid the terminal.
func (w *Worker) foreground(pgid int) {
	if err := w.table.SetForeground(pgid); err != nil {
		w.logger.Error("mark foreground", "pgid", pgid, "err", err)
		return
	}

	if err := w.terminal.SetForeground(pgid); err != nil {
		w.logger.Warn("hand terminal to job", "pgid", pgid, "err", err)
	}
}

// returnToShell gives the terminal back to the shell's own process group.
func (w *Worker) returnToShell() {
	w.table.ClearForeground()

	if err := w.terminal.SetForeground(w.shellPGID); err != nil {
		w.logger.Warn("return terminal to shell", "pgid", w.shellPGID, "err", err)
	}
}
