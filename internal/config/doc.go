// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for picomenu.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - MenuConfig: Buffer sizes, banner and line handling
//   - TransportConfig: stdio, tcp or serial selection and parameters
//   - LogConfig: zap level, format and destination
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PICOMENU_*)
//   - $PICOMENU_CONFIG, or ~/.picomenu/config.toml, or ~/.picomenu/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	in := make([]byte, cfg.Menu.InputBuffer)
//	baud := cfg.Transport.Baud
package config
