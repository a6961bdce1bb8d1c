// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/picomenu/internal/menu"
	"github.com/jeranaias/picomenu/internal/transport/transporttest"
)

// runSession feeds lines to a fresh device menu and returns what it wrote.
func runSession(t *testing.T, state State, lines ...string) (string, *menu.Menu[State]) {
	t.Helper()
	script := transporttest.New(lines...)
	m := menu.New(script, make([]byte, 128), make([]byte, 128), state)
	Register(m)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return script.Output(), m
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"version", "uptime", "echo", "set", "get", "unset", "vars", "led", "stats"} {
		cmd := r.Get(name)
		if cmd == nil {
			t.Errorf("builtin %q not registered", name)
			continue
		}
		if cmd.Description == "" || cmd.Usage == "" || cmd.Handler == nil {
			t.Errorf("builtin %q incomplete: %+v", name, cmd)
		}
		if err := menu.ValidateName(name); err != nil {
			t.Errorf("builtin %q has invalid menu name: %v", name, err)
		}
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	before := len(r.All())

	r.Register(&Command{Name: "echo", Description: "Replaced", Usage: "echo", Handler: handleEcho})

	all := r.All()
	if len(all) != before {
		t.Fatalf("len(All()) = %d, want %d", len(all), before)
	}
	if all[len(all)-1].Description != "Replaced" {
		t.Errorf("replacement should move to the end, got %q", all[len(all)-1].Name)
	}
}

func TestRegister_HelpOrder(t *testing.T) {
	out, m := runSession(t, NewState("1.0.0"), "help\n")

	want := "AVAILABLE COMMANDS:\n\n" +
		"version: Show firmware version\n" +
		"uptime: Show time since start\n" +
		"echo: Print the arguments back\n" +
		"set: Set a variable\n" +
		"get: Show a variable\n" +
		"unset: Remove a variable\n" +
		"vars: List variables\n" +
		"led: Show or switch the LED\n" +
		"stats: Show menu counters\n"
	if out != want {
		t.Errorf("help output =\n%q\nwant\n%q", out, want)
	}
	if got := m.Commands()[0]; got != "version" {
		t.Errorf("first listed command = %q, want version", got)
	}
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestHandlers(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"version", []string{"version\n"}, "Version: 1.0.0\n"},
		{"echo verbatim", []string{"echo  two  spaces \"kept\"\n"}, " two  spaces \"kept\"\n"},
		{"echo missing", []string{"echo\n"}, "echo: required argument missing for argument 'text' - expected: Text to print\nusage: echo <text>\n"},
		{"set get", []string{"set mode fast\n", "get mode\n"}, "mode=fast\nmode=fast\n"},
		{"set quoted", []string{"set name \"bench rig\"\n"}, "name=bench rig\n"},
		{"get missing", []string{"get nope\n"}, "error: nope: not set\n"},
		{"unset", []string{"set a 1\n", "unset a\n", "get a\n"}, "a=1\nunset a\nerror: a: not set\n"},
		{"vars sorted", []string{"set b 2\n", "set a 1\n", "vars\n"}, "b=2\na=1\na=1\nb=2\n"},
		{"vars empty", []string{"vars\n"}, "(no variables)\n"},
		{"bad key", []string{"set a/b 1\n"}, "set: invalid character in key for argument 'key' (got: a/b)\nusage: set <key> <value>\n"},
		{"too many", []string{"get a b\n"}, "get: too many arguments (got: 2) - expected: at most 1\nusage: get <key>\n"},
		{"led", []string{"led\n", "led on\n", "led TOGGLE\n"}, "LED: off\nLED: on\nLED: off\n"},
		{"led invalid", []string{"led blink\n"}, "led: invalid value for argument 'state' (got: blink) - expected: on, off, toggle\nusage: led [on|off|toggle]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := runSession(t, NewState("1.0.0"), tt.input...)
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestHandleUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	state := NewState("1.0.0")
	state.Started = start
	state.Clock = func() time.Time { return start.Add(90*time.Second + 400*time.Millisecond) }

	out, _ := runSession(t, state, "uptime\n")
	if out != "Uptime: 1m30s\n" {
		t.Errorf("output = %q", out)
	}
}

func TestHandleSet_Limit(t *testing.T) {
	state := NewState("1.0.0")
	for i := 0; i < MaxVars; i++ {
		state.Vars["k"+string(rune('A'+i))] = "v"
	}

	out, m := runSession(t, state, "set extra 1\n", "set kA 2\n")
	if out != "error: extra: too many variables (max 32)\nkA=2\n" {
		t.Errorf("output = %q", out)
	}
	if got := m.State().Vars["kA"]; got != "2" {
		t.Errorf("existing key should still update, got %q", got)
	}
}

func TestHandleSet_LongValueTruncated(t *testing.T) {
	out, m := runSession(t, NewState("1.0.0"), "set k "+strings.Repeat("x", 100)+"\n")
	line := strings.TrimSuffix(out, "\n")
	if len(line) != varLineWidth || !strings.HasSuffix(line, "...") {
		t.Errorf("line = %q (len %d), want %d bytes ending in ...", line, len(line), varLineWidth)
	}
	if len(m.State().Vars["k"]) != 100 {
		t.Error("stored value must not be truncated")
	}
}

func TestHandleStats(t *testing.T) {
	out, _ := runSession(t, NewState("1.0.0"), "nope\n", "version\n", "stats\n")
	want := "Unknown command\nVersion: 1.0.0\n" +
		"lines: 3\ncommands: 1\nhelp: 0\nunknown: 1\nutf8_errors: 0\ninput_overflows: 0\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestHandleStats_Unavailable(t *testing.T) {
	script := transporttest.New()
	state := NewState("1.0.0")
	hc := &Context{Context: context.Background(), Out: menu.NewOutput(script, make([]byte, 64)), State: &state}

	if err := handleStats(hc, nil); err == nil {
		t.Fatal("expected error without a stats source")
	}
	if got := script.Output(); got != "" {
		t.Errorf("nothing should be written, got %q", got)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidateArgs(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		cmd     string
		args    []string
		wantErr bool
	}{
		{"version", nil, false},
		{"version", []string{"x"}, true},
		{"echo", []string{"a", "b", "c"}, false},
		{"echo", nil, true},
		{"set", []string{"k"}, true},
		{"set", []string{"k", "v"}, false},
		{"set", []string{strings.Repeat("k", MaxKeyLength+1), "v"}, true},
		{"get", []string{""}, true},
		{"led", []string{"On"}, false},
		{"led", []string{"dim"}, true},
	}

	for _, tc := range tests {
		err := ValidateArgs(r.Get(tc.cmd), tc.args)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateArgs(%s, %q) error = %v, wantErr %v", tc.cmd, tc.args, err, tc.wantErr)
		}
		var verr *ValidationError
		if err != nil && !errors.As(err, &verr) {
			t.Errorf("error type = %T, want *ValidationError", err)
		}
	}

	if err := ValidateArgs(nil, []string{"x"}); err != nil {
		t.Errorf("nil command should validate, got %v", err)
	}
}

func TestValidationError_TruncatesGot(t *testing.T) {
	err := &ValidationError{Command: "led", Message: "invalid value", Got: strings.Repeat("z", 50) + "\r"}
	msg := err.Error()
	if strings.Contains(msg, "\r") || len(msg) > 60 {
		t.Errorf("Error() = %q", msg)
	}
}
