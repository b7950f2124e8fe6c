// Command jobsh is an interactive shell with job control.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0"

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobsh: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

func run() (int, error) {
	// SIGINT, SIGQUIT and SIGTSTP are caught by the shell's signal relay.
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	var code int
	if err := rootCmd(&code).ExecuteContext(ctx); err != nil {
		return 1, err
	}

	return code, nil
}
