// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the built-in device commands of the picomenu simulator.
package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/picomenu/internal/menu"
	"github.com/jeranaias/picomenu/internal/util"
)

// =============================================================================
// DEVICE STATE
// =============================================================================

// MaxVars bounds the number of stored variables.
const MaxVars = 32

// varLineWidth bounds one line of the vars listing so it fits the default
// output buffer.
const varLineWidth = 60

var (
	// ErrNotSet is returned by get and unset for a missing variable.
	ErrNotSet = errors.New("not set")

	// ErrTooManyVars is returned by set when MaxVars is reached.
	ErrTooManyVars = errors.New("too many variables")
)

// State is the simulated device behind the menu.
type State struct {
	// Version is reported by the version command
	Version string

	// Started is the reference for uptime
	Started time.Time

	// Vars holds set/get variables
	Vars map[string]string

	// LED is the simulated indicator
	LED bool

	// Stats reports menu counters; set by Install
	Stats func() menu.Stats

	// Clock returns the current time; nil means time.Now
	Clock func() time.Time
}

// NewState returns a State started now.
func NewState(version string) State {
	return State{
		Version: version,
		Started: time.Now(),
		Vars:    make(map[string]string),
	}
}

func (s *State) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Uptime returns the time since Started, rounded down to the second.
func (s *State) Uptime() time.Duration {
	return s.now().Sub(s.Started).Truncate(time.Second)
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleVersion(ctx *Context, _ []string) error {
	return ctx.Out.Printf(ctx, "Version: %s\n", ctx.State.Version)
}

func handleUptime(ctx *Context, _ []string) error {
	return ctx.Out.Printf(ctx, "Uptime: %s\n", ctx.State.Uptime())
}

// handleEcho prints the raw argument string, not the tokens, so quoting and
// spacing survive.
func handleEcho(ctx *Context, _ []string) error {
	return ctx.Out.Printf(ctx, "%s\n", ctx.Raw.String())
}

func handleSet(ctx *Context, args []string) error {
	key, value := args[0], args[1]
	if ctx.State.Vars == nil {
		ctx.State.Vars = make(map[string]string)
	}
	if _, exists := ctx.State.Vars[key]; !exists && len(ctx.State.Vars) >= MaxVars {
		return fmt.Errorf("%s: %w (max %d)", key, ErrTooManyVars, MaxVars)
	}
	ctx.State.Vars[key] = value
	return printVar(ctx, key, value)
}

func handleGet(ctx *Context, args []string) error {
	key := args[0]
	value, ok := ctx.State.Vars[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrNotSet)
	}
	return printVar(ctx, key, value)
}

func handleUnset(ctx *Context, args []string) error {
	key := args[0]
	if _, ok := ctx.State.Vars[key]; !ok {
		return fmt.Errorf("%s: %w", key, ErrNotSet)
	}
	delete(ctx.State.Vars, key)
	return ctx.Out.Printf(ctx, "unset %s\n", key)
}

func handleVars(ctx *Context, _ []string) error {
	if len(ctx.State.Vars) == 0 {
		return ctx.Out.Printf(ctx, "(no variables)\n")
	}

	keys := make([]string, 0, len(ctx.State.Vars))
	for k := range ctx.State.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := printVar(ctx, k, ctx.State.Vars[k]); err != nil {
			return err
		}
	}
	return nil
}

// printVar writes one "key=value" line, truncated to fit the output.
func printVar(ctx *Context, key, value string) error {
	return ctx.Out.Printf(ctx, "%s\n", util.TruncateWidth(key+"="+value, varLineWidth))
}

func handleLED(ctx *Context, args []string) error {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on":
			ctx.State.LED = true
		case "off":
			ctx.State.LED = false
		case "toggle":
			ctx.State.LED = !ctx.State.LED
		}
	}
	return ctx.Out.Printf(ctx, "LED: %s\n", onOff(ctx.State.LED))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func handleStats(ctx *Context, _ []string) error {
	if ctx.State.Stats == nil {
		return errors.New("stats unavailable")
	}
	st := ctx.State.Stats()

	lines := []struct {
		name  string
		value int
	}{
		{"lines", st.Lines},
		{"commands", st.Commands},
		{"help", st.HelpRequests},
		{"unknown", st.UnknownCommands},
		{"utf8_errors", st.UTF8Errors},
		{"input_overflows", st.InputOverflows},
	}
	for _, l := range lines {
		if err := ctx.Out.Printf(ctx, "%s: %d\n", l.name, l.value); err != nil {
			return err
		}
	}
	return nil
}
