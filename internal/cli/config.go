// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for picomenu.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration as TOML
//   path                Show configuration file path
//   init [--force]      Write a default configuration file
//   get <key>           Show one value
//   set <key> <value>   Set a value in the configuration file
//   keys                List all keys
//
// Examples:
//   picomenu config show --json
//   picomenu config set menu.input_buffer 256
//   picomenu config set transport.mode serial
//   picomenu config get transport.baud
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/picomenu/internal/config"
)

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.configShow()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Display the effective configuration",
			Args:  noArgs,
			RunE:  func(*cobra.Command, []string) error { return a.configShow() },
		},
		&cobra.Command{
			Use:         "path",
			Short:       "Show configuration file path",
			Args:        noArgs,
			Annotations: map[string]string{annotationSkipConfig: "true"},
			RunE:        func(*cobra.Command, []string) error { return a.configPathCmd() },
		},
		a.newConfigInitCommand(),
		&cobra.Command{
			Use:   "get <key>",
			Short: "Show one configuration value",
			Args:  exactArgs(1),
			RunE:  func(_ *cobra.Command, args []string) error { return a.configGet(args[0]) },
		},
		&cobra.Command{
			Use:         "set <key> <value>",
			Short:       "Set a value in the configuration file",
			Args:        exactArgs(2),
			Annotations: map[string]string{annotationSkipConfig: "true"},
			RunE:        func(_ *cobra.Command, args []string) error { return a.configSet(args[0], args[1]) },
		},
		&cobra.Command{
			Use:         "keys",
			Short:       "List all configuration keys",
			Args:        noArgs,
			Annotations: map[string]string{annotationSkipConfig: "true"},
			RunE:        func(*cobra.Command, []string) error { return a.configKeys() },
		},
	)
	return cmd
}

func (a *app) newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Args:        noArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE:        func(*cobra.Command, []string) error { return a.configInit(force) },
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

// =============================================================================
// HANDLERS
// =============================================================================

// configShow prints the effective configuration (file, defaults and
// environment overrides combined).
func (a *app) configShow() error {
	return OutputJSON(a.stdout, a.jsonMode, "config show", func() (interface{}, error) {
		if a.jsonMode {
			return a.cfg, nil
		}
		data, err := a.cfg.MarshalTOML()
		if err != nil {
			return nil, err
		}
		_, err = a.stdout.Write(data)
		return nil, err
	})
}

func (a *app) configPathCmd() error {
	path, err := a.configFile()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	return OutputJSON(a.stdout, a.jsonMode, "config path", func() (interface{}, error) {
		if !a.jsonMode {
			suffix := ""
			if !exists {
				suffix = " (not created)"
			}
			fmt.Fprintf(a.stdout, "%s%s\n", path, suffix)
		}
		return map[string]interface{}{"path": path, "exists": exists}, nil
	})
}

func (a *app) configInit(force bool) error {
	path, err := a.configFile()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return NewCommandError("config", "init", "file already exists (use --force)", errors.New(path))
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return OutputJSON(a.stdout, a.jsonMode, "config init", func() (interface{}, error) {
		if !a.jsonMode {
			fmt.Fprintf(a.stdout, "Wrote %s\n", path)
		}
		return map[string]string{"path": path}, nil
	})
}

func (a *app) configGet(key string) error {
	value, err := a.cfg.Get(key)
	if err != nil {
		return NewValidationErrorWithExample("key", key, err.Error(), "picomenu config keys")
	}
	return OutputJSON(a.stdout, a.jsonMode, "config get", func() (interface{}, error) {
		if !a.jsonMode {
			fmt.Fprintln(a.stdout, value)
		}
		return map[string]interface{}{"key": key, "value": value}, nil
	})
}

// configSet edits the configuration file only, without environment
// overrides, so they are never persisted.
func (a *app) configSet(key, value string) error {
	path, err := a.configFile()
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".json") {
		return NewValidationErrorWithExample("config", path, "config set only writes TOML files", "--config ~/.picomenu/config.toml")
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return NewValidationErrorWithExample("key", key, err.Error(), "picomenu config set menu.input_buffer 256")
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	return OutputJSON(a.stdout, a.jsonMode, "config set", func() (interface{}, error) {
		if !a.jsonMode {
			fmt.Fprintf(a.stdout, "Set %s = %s\n", key, value)
		}
		return map[string]string{"key": key, "value": value, "path": path}, nil
	})
}

func (a *app) configKeys() error {
	keys := config.GetAllKeys()
	return OutputJSON(a.stdout, a.jsonMode, "config keys", func() (interface{}, error) {
		if !a.jsonMode {
			fmt.Fprintln(a.stdout, strings.Join(keys, "\n"))
		}
		return keys, nil
	})
}
