package main

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sdfpt05/jobsh/internal/config"
	"github.com/sdfpt05/jobsh/internal/shell"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	configPath  string
	historyFile string
	debug       bool
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "Path to configuration file")
	flags.StringVar(&opts.historyFile, "history-file", "", "Path to history file (overrides config)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logs")
}

func rootCmd(code *int) *cobra.Command {
	opts := &options{}

	c := &cobra.Command{
		Use:           "jobsh",
		Short:         "Interactive shell with job control",
		Example:       "jobsh --debug",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			level, err := cfg.Level()
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), level)

			s, err := shell.New(cfg, logger)
			if err != nil {
				return err
			}

			*code, err = s.Run(cmd.Context())

			return err
		},
	}

	bindFlags(c.Flags(), opts)

	return c
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.historyFile != "" {
		cfg.HistoryFile = opts.historyFile
	}

	if opts.debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	).With("session", uuid.NewString())
}
