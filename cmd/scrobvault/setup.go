package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scrobvault/internal/config"
	"scrobvault/internal/trace"
)

const defaultConfigHint = config.DefaultPath

// loadConfig reads the configuration selected by --config, falling back to
// the default location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// setupTracing builds the tracer from the logging configuration and
// attaches it to the command context. --quiet silences the console sink;
// the log file sink is unaffected. It returns the tracer and a cleanup
// function.
func setupTracing(cmd *cobra.Command, cfg *config.Config) (trace.Tracer, func(), error) {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	consoleLevel := cfg.Logging.ConsoleLogLevel()
	if quiet {
		consoleLevel = trace.LevelOff
	}

	tracer, cleanup, err := trace.Setup(cmd.ErrOrStderr(), consoleLevel, cfg.Logging.FileLogLevel(), cfg.Logging.FileDir)
	if err != nil {
		return nil, nil, err
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	return tracer, cleanup, nil
}
