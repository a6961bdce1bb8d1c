// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
//
// The menu reads newline-terminated lines that may arrive in fragments or in
// batches, splits each line into a command name and an optional argument
// string, and dispatches it to a registered command. Command output goes
// through a fixed-capacity Output buffer that is flushed after every
// formatted write. Both buffers are supplied by the caller and never grow.
//
// # Key Types
//
//   - Menu: owns the buffers, the router and the caller's state; Run drives it
//   - Router: ordered name -> Command bindings plus the help listing
//   - Command: a handler with help text (see Func for the adapter)
//   - Output: bounded, flush-on-write output sink
//   - Line / Args: one parsed input line
//
// # Wire Protocol
//
// Each inbound line is "<command>[ <arguments>]\n". The name "help" is
// reserved and lists all commands, newest registration first:
//
//	AVAILABLE COMMANDS:
//
//	version: Shows version
//	test: Tests stuff
//
// Recoverable errors are reported in-band with fixed messages:
//
//	Unknown command
//	Input UTF8 error
//	Input buffer overflowed & dumped
//	IO buffer overflow
//
// # Usage
//
//	type State struct{ Version int }
//
//	in := make([]byte, 128)
//	out := make([]byte, 128)
//	m := menu.New(t, in, out, State{Version: 2}).
//	    Handle("version", "Shows version", func(ctx context.Context, _ menu.Args, o *menu.Output, s *State) {
//	        _ = o.Printf(ctx, "Version: %d\n", s.Version)
//	    })
//	err := m.Run(ctx) // nil once the transport disconnects
package menu
