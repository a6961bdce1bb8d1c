// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// HelpCommand is the reserved command name that lists all commands.
const HelpCommand = "help"

// helpHeader precedes the command listing.
const helpHeader = "AVAILABLE COMMANDS:\n\n"

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is a handler bound to a name in a Router.
//
// Execute runs with exclusive access to the output and the menu state for
// the duration of the call. It reports failures by writing to out; write
// errors are also picked up by the menu after Execute returns.
type Command[S any] interface {
	Execute(ctx context.Context, args Args, out *Output, state *S)
	Help() string
}

// HandlerFunc is the function form of Command.Execute.
type HandlerFunc[S any] func(ctx context.Context, args Args, out *Output, state *S)

// Func adapts a function and a help string to a Command.
func Func[S any](help string, fn HandlerFunc[S]) Command[S] {
	return funcCommand[S]{help: help, fn: fn}
}

type funcCommand[S any] struct {
	help string
	fn   HandlerFunc[S]
}

func (c funcCommand[S]) Execute(ctx context.Context, args Args, out *Output, state *S) {
	c.fn(ctx, args, out, state)
}

func (c funcCommand[S]) Help() string { return c.help }

// =============================================================================
// ROUTER
// =============================================================================

var (
	errReservedName = errors.New("name is reserved")
	errNameSpace    = errors.New("name contains a space")
	errEmptyName    = errors.New("name is empty")
)

// ValidateName reports whether name can be registered.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errEmptyName
	case name == HelpCommand:
		return errReservedName
	case strings.Contains(name, " "):
		return errNameSpace
	}
	return nil
}

type binding[S any] struct {
	name string
	cmd  Command[S]
}

// Router resolves command names to commands.
//
// Bindings are searched newest first and the help listing walks them in the
// same order, so the last registered command is listed first. A name that
// is registered twice resolves to the newer binding; both appear in help.
// The zero value is an empty router.
type Router[S any] struct {
	bindings []binding[S]
}

// Add registers cmd under name. It panics if the name is empty, is "help",
// or contains a space: those are configuration errors.
func (r *Router[S]) Add(name string, cmd Command[S]) {
	if err := ValidateName(name); err != nil {
		panic(fmt.Sprintf("menu: cannot register command %q: %v", name, err))
	}
	if cmd == nil {
		panic(fmt.Sprintf("menu: cannot register command %q: nil command", name))
	}
	r.bindings = append(r.bindings, binding[S]{name: name, cmd: cmd})
}

// Len returns the number of bindings.
func (r *Router[S]) Len() int {
	return len(r.bindings)
}

// Names returns the registered names in lookup order.
func (r *Router[S]) Names() []string {
	names := make([]string, 0, len(r.bindings))
	for i := len(r.bindings) - 1; i >= 0; i-- {
		names = append(names, r.bindings[i].name)
	}
	return names
}

// Lookup returns the command bound to name. Matching is exact.
func (r *Router[S]) Lookup(name string) (Command[S], bool) {
	for i := len(r.bindings) - 1; i >= 0; i-- {
		if r.bindings[i].name == name {
			return r.bindings[i].cmd, true
		}
	}
	return nil, false
}

// Resolve executes the command named by line, or returns ErrUnknownCommand.
func (r *Router[S]) Resolve(ctx context.Context, line Line, out *Output, state *S) error {
	cmd, ok := r.Lookup(line.Command)
	if !ok {
		return ErrUnknownCommand
	}
	cmd.Execute(ctx, line.Args, out, state)
	return nil
}

// ListHelp writes the header and one "<name>: <help>" line per binding,
// flushing after each.
func (r *Router[S]) ListHelp(ctx context.Context, out *Output) error {
	if err := out.Printf(ctx, "%s", helpHeader); err != nil {
		return err
	}
	for i := len(r.bindings) - 1; i >= 0; i-- {
		b := r.bindings[i]
		if err := out.Printf(ctx, "%s: %s\n", b.name, b.cmd.Help()); err != nil {
			return err
		}
	}
	return nil
}
