// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the picomenu command-line interface.
//
// The root command loads configuration, builds the zap logger and hands a
// menu session to one of three transports.
//
// # Commands Overview
//
//   - stdio: Serve one session on stdin/stdout
//   - serve: Serve sessions over TCP, one at a time
//   - serial: Serve a UART device, reconnecting when it reappears
//   - config: show, init, get, set, path, keys
//   - version: Print version information
//
// Global flags: --config, --log-level, --json.
//
// # Usage
//
//	os.Exit(cli.Execute())
package cli
