// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the built-in device commands of the picomenu simulator.
package commands

import (
	"context"

	"github.com/jeranaias/picomenu/internal/menu"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a device command that can be installed into a menu.
type Command struct {
	// Name is the command name (e.g., "led")
	Name string

	// Description is shown in the help listing
	Description string

	// Usage shows argument syntax (e.g., "led [on|off|toggle]")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Variadic commands accept more arguments than Args declares
	Variadic bool

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) error
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines validation
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates how an argument is validated.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeEnum                  // One of predefined values
	ArgTypeKey                   // Variable name
)

// Context is passed to command handlers.
type Context struct {
	context.Context

	// Out is the menu output; writes are flushed per call
	Out *menu.Output

	// State is the device state
	State *State

	// Raw is the unsplit argument string
	Raw menu.Args
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds declared commands in registration order.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry. A later command with the same
// name replaces the earlier one.
func (r *Registry) Register(cmd *Command) {
	if old, ok := r.byName[cmd.Name]; ok {
		for i, c := range r.commands {
			if c == old {
				r.commands = append(r.commands[:i], r.commands[i+1:]...)
				break
			}
		}
	}
	r.commands = append(r.commands, cmd)
	r.byName[cmd.Name] = cmd
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) *Command {
	return r.byName[name]
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, len(r.commands))
	copy(cmds, r.commands)
	return cmds
}

// Install adds every command to m in registration order and points the
// state's stats source at m.
func (r *Registry) Install(m *menu.Menu[State]) {
	m.State().Stats = m.Stats
	for _, cmd := range r.commands {
		m.AddCommand(cmd.Name, menuCommand{cmd: cmd})
	}
}

// Register installs the built-in commands into m.
func Register(m *menu.Menu[State]) {
	NewRegistry().Install(m)
}

// registerBuiltins adds the device command set. The help listing shows
// them newest first.
func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "stats",
		Description: "Show menu counters",
		Usage:       "stats",
		Handler:     handleStats,
	})

	r.Register(&Command{
		Name:        "led",
		Description: "Show or switch the LED",
		Usage:       "led [on|off|toggle]",
		Args: []ArgDef{
			{Name: "state", Required: false, Type: ArgTypeEnum, Values: []string{"on", "off", "toggle"}, Description: "New LED state"},
		},
		Handler: handleLED,
	})

	r.Register(&Command{
		Name:        "vars",
		Description: "List variables",
		Usage:       "vars",
		Handler:     handleVars,
	})

	r.Register(&Command{
		Name:        "unset",
		Description: "Remove a variable",
		Usage:       "unset <key>",
		Args: []ArgDef{
			{Name: "key", Required: true, Type: ArgTypeKey, Description: "Variable name"},
		},
		Handler: handleUnset,
	})

	r.Register(&Command{
		Name:        "get",
		Description: "Show a variable",
		Usage:       "get <key>",
		Args: []ArgDef{
			{Name: "key", Required: true, Type: ArgTypeKey, Description: "Variable name"},
		},
		Handler: handleGet,
	})

	r.Register(&Command{
		Name:        "set",
		Description: "Set a variable",
		Usage:       "set <key> <value>",
		Args: []ArgDef{
			{Name: "key", Required: true, Type: ArgTypeKey, Description: "Variable name"},
			{Name: "value", Required: true, Type: ArgTypeString, Description: "Value, quoted if it has spaces"},
		},
		Handler: handleSet,
	})

	r.Register(&Command{
		Name:        "echo",
		Description: "Print the arguments back",
		Usage:       "echo <text>",
		Args: []ArgDef{
			{Name: "text", Required: true, Type: ArgTypeString, Description: "Text to print"},
		},
		Variadic: true,
		Handler:  handleEcho,
	})

	r.Register(&Command{
		Name:        "uptime",
		Description: "Show time since start",
		Usage:       "uptime",
		Handler:     handleUptime,
	})

	r.Register(&Command{
		Name:        "version",
		Description: "Show firmware version",
		Usage:       "version",
		Handler:     handleVersion,
	})
}

// =============================================================================
// MENU ADAPTER
// =============================================================================

// menuCommand runs a Command as a menu.Command[State].
type menuCommand struct {
	cmd *Command
}

func (c menuCommand) Help() string {
	return c.cmd.Description
}

// Execute validates the arguments, runs the handler and reports failures on
// the output. Write errors are tracked by the Output itself.
func (c menuCommand) Execute(ctx context.Context, args menu.Args, out *menu.Output, state *State) {
	fields := args.Fields()
	if err := ValidateArgs(c.cmd, fields); err != nil {
		if out.Printf(ctx, "%s\n", err) == nil {
			_ = out.Printf(ctx, "usage: %s\n", c.cmd.Usage)
		}
		return
	}

	hc := &Context{Context: ctx, Out: out, State: state, Raw: args}
	if err := c.cmd.Handler(hc, fields); err != nil && out.Err() == nil {
		_ = out.Printf(ctx, "error: %v\n", err)
	}
}
