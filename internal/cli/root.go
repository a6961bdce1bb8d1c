// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Root command, global flags and shared setup for picomenu.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/picomenu/internal/config"
	"github.com/jeranaias/picomenu/internal/logging"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotationSkipConfig marks commands that must work with a missing or
// broken configuration file.
const annotationSkipConfig = "picomenu/skip-config"

// app holds global flags and the state built by the root command's
// PersistentPreRunE.
type app struct {
	// Global flags
	configPath string
	logLevel   string
	jsonMode   bool

	cfg    *config.Config
	logger *zap.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// newRoot builds the command tree around a fresh app.
func newRoot(stdin io.Reader, stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{
		logger: zap.NewNop(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "picomenu",
		Short: "Line-oriented command menu for serial and network consoles",
		Long: `picomenu serves a small command menu over a byte stream.

Each input line is "<command>[ <arguments>]". "help" lists the commands.
The menu can run on stdin/stdout, on a TCP port, or on a UART device.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ValidationError{Field: "flag", Reason: err.Error(), Example: cmd.UseLine()}
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (default $PICOMENU_CONFIG or ~/.picomenu/config.toml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	flags.BoolVar(&a.jsonMode, "json", false, "Output in JSON format")

	root.AddCommand(
		a.newRunCommand(),
		a.newStdioCommand(),
		a.newServeCommand(),
		a.newSerialCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root, a
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return NewValidationErrorWithExample("log-level", a.logLevel, "unknown level", "--log-level debug")
		}
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return &ConfigError{Err: err}
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// loadConfig returns the effective configuration for cmd.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Annotations[annotationSkipConfig] == "true" {
		cfg := config.Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}

	if a.configPath != "" {
		cfg, err := config.LoadFromPath(a.configPath)
		if err != nil {
			return nil, &ConfigError{Path: a.configPath, Err: err}
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return cfg, nil
}

// configFile returns the file config commands read and write.
func (a *app) configFile() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	if path := os.Getenv("PICOMENU_CONFIG"); path != "" {
		return path, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Execute runs the CLI with the process arguments and returns the exit code.
// SIGINT and SIGTERM cancel the running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes the command line args and returns the exit code. Errors are
// written to stderr.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, a := newRoot(stdin, stdout, stderr)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		path := root.Name()
		if cmd != nil {
			path = cmd.CommandPath()
		}
		DisplayError(stderr, err, path, a.jsonMode)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// ARGUMENT VALIDATORS
// =============================================================================

// exactArgs is cobra.ExactArgs with a ValidationError, so usage mistakes
// map to ExitUsageError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return ErrMissingArgument("arguments", cmd.UseLine())
		}
		if len(args) > n {
			return NewValidationErrorWithExample("arguments", args[n], "unexpected argument", cmd.UseLine())
		}
		return nil
	}
}

var noArgs = exactArgs(0)
