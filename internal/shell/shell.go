package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/oklog/run"
	"github.com/sdfpt05/jobsh/internal/config"
	"github.com/sdfpt05/jobsh/internal/history"
	"github.com/sdfpt05/jobsh/internal/spawn"
	"github.com/sdfpt05/jobsh/internal/sys"
	"golang.org/x/sys/unix"
)

// LineReader reads command lines from the user.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	SaveHistory(line string) error
	Close() error
}

type Shell struct {
	config  *config.Config
	history *history.History
	reader  LineReader
	worker  *Worker
	relay   *Relay
	stderr  io.Writer
	logger  *slog.Logger

	closeOnce sync.Once
}

// New sets up the terminal, history and line editor for an interactive
// session.
func New(cfg *config.Config, logger *slog.Logger) (*Shell, error) {
	hist := history.New(cfg.HistoryFile, cfg.MaxHistory)
	if err := hist.Load(); err != nil {
		logger.Warn("load history", "file", cfg.HistoryFile, "err", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 prompt(cfg.Prompt, 0),
		HistoryLimit:           cfg.MaxHistory,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing readline: %w", err)
	}

	for _, line := range hist.GetAll() {
		if err := rl.SaveHistory(line); err != nil {
			logger.Debug("seed line editor history", "err", err)
		}
	}

	shellPGID := unix.Getpgrp()

	var terminal Terminal = sys.NopTerminal{}
	if sys.IsTerminal(os.Stdin) {
		t := sys.NewTerminal(os.Stdin)
		claimTerminal(t, shellPGID, logger)
		terminal = t
	} else {
		logger.Debug("standard input is not a terminal")
	}

	worker := NewWorker(WorkerConfig{
		Launcher:       spawn.New(logger),
		Terminal:       terminal,
		Waiter:         sys.ChildWaiter{},
		ShellPGID:      shellPGID,
		MaxJobs:        cfg.MaxJobs,
		RetainSignaled: cfg.RetainSignaled,
		Stderr:         os.Stderr,
		Logger:         logger,
	})

	return newShell(cfg, hist, rl, worker, NewRelay(logger), os.Stderr, logger), nil
}

// foregroundTerminal is a terminal whose foreground group can be queried.
type foregroundTerminal interface {
	Terminal
	Foreground() (int, error)
}

// claimTerminal makes pgid the terminal's foreground group unless it already
// is.
func claimTerminal(t foregroundTerminal, pgid int, logger *slog.Logger) {
	fg, err := t.Foreground()
	if err != nil {
		logger.Warn("query terminal foreground", "err", err)
	} else if fg == pgid {
		return
	}

	logger.Debug("claim terminal", "pgid", pgid, "foreground", fg)

	if err := t.SetForeground(pgid); err != nil {
		logger.Warn("claim terminal", "pgid", pgid, "err", err)
	}
}

func newShell(
	cfg *config.Config,
	hist *history.History,
	reader LineReader,
	worker *Worker,
	relay *Relay,
	stderr io.Writer,
	logger *slog.Logger,
) *Shell {
	return &Shell{
		config:  cfg,
		history: hist,
		reader:  reader,
		worker:  worker,
		relay:   relay,
		stderr:  stderr,
		logger:  logger,
	}
}

// Run runs the reader, the signal relay and the worker until the user quits
// or the worker fails. It returns the shell's exit code.
func (s *Shell) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		g    run.Group
		code int
	)

	g.Add(func() error {
		return s.worker.Run(ctx)
	}, func(error) {
		cancel()
	})

	g.Add(func() error {
		return s.relay.Run(ctx, s.worker.Inbox())
	}, func(error) {
		cancel()
	})

	g.Add(func() error {
		code = s.loop(ctx)
		return nil
	}, func(error) {
		cancel()
		s.close()
	})

	err := g.Run()

	if err := s.history.Save(); err != nil {
		s.logger.Warn("save history", "file", s.config.HistoryFile, "err", err)
	}

	if err != nil {
		return 1, err
	}

	return code, nil
}

func (s *Shell) close() {
	s.closeOnce.Do(func() {
		if err := s.reader.Close(); err != nil {
			s.logger.Debug("close line editor", "err", err)
		}
	})
}

// loop reads lines and submits them one at a time.
func (s *Shell) loop(ctx context.Context) int {
	prev := 0
	eof := false

	for {
		s.reader.SetPrompt(prompt(s.config.Prompt, prev))

		line, err := s.reader.Readline()
		if ctx.Err() != nil {
			return prev
		}

		switch {
		case errors.Is(err, readline.ErrInterrupt):
			fmt.Fprintln(s.stderr, "jobsh: use Ctrl+D to exit")
			continue
		case errors.Is(err, io.EOF):
			// A second end of input in a row quits even with jobs left.
			if eof {
				return prev
			}
			eof = true
			line = "exit"
		case err != nil:
			fmt.Fprintf(s.stderr, "jobsh: read error: %v\n", err)
			return 1
		default:
			eof = false

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			s.history.Add(line)
			if err := s.reader.SaveHistory(line); err != nil {
				s.logger.Debug("save line editor history", "err", err)
			}
		}

		reply, err := s.submit(ctx, line)
		if err != nil {
			return prev
		}

		if reply.Verdict == Quit {
			return reply.Code
		}

		prev = reply.Code
	}
}

// submit hands line to the worker and blocks until it authorizes the next
// read.
func (s *Shell) submit(ctx context.Context, line string) (Reply, error) {
	select {
	case s.worker.Inbox() <- LineMsg(line):
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case r := <-s.worker.Replies():
		return r, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

func prompt(name string, last int) string {
	if last == 0 {
		return name + " %> "
	}

	return fmt.Sprintf("%s [%d] %%> ", name, last)
}
