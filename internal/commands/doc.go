// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the built-in device commands of the picomenu
// simulator.
//
// Commands are declared once in a Registry with their argument definitions
// and installed into a menu.Menu[State]. Arguments are tokenised with
// menu.Args.Fields and checked by ValidateArgs before the handler runs, so
// handlers only see well-formed input.
//
// # Key Types
//
//   - Registry: declared commands in registration order
//   - Command: name, usage, argument definitions and handler
//   - State: the simulated device (version, variables, LED, counters)
//   - ValidationError: argument problems reported back to the peer
//
// # Built-in Commands
//
//   - version: Show firmware version
//   - uptime: Show time since start
//   - echo: Print the arguments back
//   - set / get / unset / vars: Manage device variables
//   - led: Show or switch the LED
//   - stats: Show menu counters
//
// # Usage
//
//	m := menu.New(t, in, out, commands.NewState("1.0.0"))
//	commands.Register(m)
//	err := m.Run(ctx)
package commands
