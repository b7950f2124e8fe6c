// Package config loads shell settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultFileName    = ".jobsh.yml"
	defaultHistoryName = ".jobsh_history"
	defaultPrompt      = "jobsh"
	defaultMaxHistory  = 1000
	defaultMaxJobs     = 1024
)

type Config struct {
	HistoryFile string `yaml:"history_file"`
	HomeDir     string `yaml:"home_dir"`
	Prompt      string `yaml:"prompt"`
	MaxHistory  int    `yaml:"max_history"`

	// MaxJobs bounds the job id space.
	MaxJobs int `yaml:"max_jobs"`

	LogLevel string `yaml:"log_level"`

	// RetainSignaled keeps processes killed by a signal in the job table.
	RetainSignaled bool `yaml:"retain_signaled"`
}

// DefaultPath returns the location of the config file in the user's home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultFileName
	}

	return filepath.Join(home, defaultFileName)
}

// Load reads file and fills in defaults for anything it leaves unset. A
// missing file yields the defaults.
func Load(file string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(file)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() error {
	if c.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.HomeDir = home
	}

	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(c.HomeDir, defaultHistoryName)
	}

	if c.Prompt == "" {
		c.Prompt = defaultPrompt
	}

	if c.MaxHistory == 0 {
		c.MaxHistory = defaultMaxHistory
	}

	if c.MaxJobs == 0 {
		c.MaxJobs = defaultMaxJobs
	}

	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}

	return nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.MaxHistory < 0 {
		return errors.New("max_history cannot be negative")
	}

	if c.MaxJobs < 0 {
		return errors.New("max_jobs cannot be negative")
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}

	return level, nil
}
