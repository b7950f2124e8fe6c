package shell

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// sigsChanBufferSize bounds undelivered signals. SIGCHLD coalesces anyway and
// every reap drains all pending children.
const sigsChanBufferSize = 16

// caughtSignals are delivered to the Relay. SIGINT, SIGQUIT and SIGTSTP reach
// the shell only while it holds the terminal outside the line editor's raw
// mode. exec restores the default action in children.
var caughtSignals = []os.Signal{
	unix.SIGCHLD,
	unix.SIGINT,
	unix.SIGQUIT,
	unix.SIGTSTP,
}

// Relay forwards signal deliveries to a Worker.
type Relay struct {
	sigs   chan os.Signal
	logger *slog.Logger
}

// NewRelay subscribes immediately, so that no child exiting before Run
// starts goes unnoticed.
func NewRelay(logger *slog.Logger) *Relay {
	sigs := make(chan os.Signal, sigsChanBufferSize)
	signal.Notify(sigs, caughtSignals...)

	return &Relay{sigs: sigs, logger: logger}
}

// Run forwards signals to inbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context, inbox chan<- Message) error {
	defer signal.Stop(r.sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-r.sigs:
			r.logger.Debug("signal received", "signal", sig)

			select {
			case inbox <- SignalMsg{Signal: sig}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
