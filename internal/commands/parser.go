// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the built-in device commands of the picomenu simulator.
package commands

import (
	"strconv"
	"strings"

	"github.com/jeranaias/picomenu/internal/util"
)

const (
	// MaxKeyLength bounds variable names.
	MaxKeyLength = 16

	// maxGotWidth bounds how much of a rejected value is echoed back.
	maxGotWidth = 20
)

// ValidateArgs validates arguments against a command's argument definitions.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}

	if !cmd.Variadic && len(args) > len(cmd.Args) {
		return &ValidationError{
			Command:  cmd.Name,
			Message:  "too many arguments",
			Got:      strconv.Itoa(len(args)),
			Expected: "at most " + strconv.Itoa(len(cmd.Args)),
		}
	}

	for i, argDef := range cmd.Args {
		if argDef.Required && i >= len(args) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      argDef.Name,
				Message:  "required argument missing",
				Expected: argDef.Description,
			}
		}
		if i >= len(args) {
			continue
		}

		switch argDef.Type {
		case ArgTypeEnum:
			if len(argDef.Values) > 0 && !containsFold(argDef.Values, args[i]) {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "invalid value",
					Got:      args[i],
					Expected: strings.Join(argDef.Values, ", "),
				}
			}
		case ArgTypeKey:
			if msg := checkKey(args[i]); msg != "" {
				return &ValidationError{
					Command: cmd.Name,
					Arg:     argDef.Name,
					Message: msg,
					Got:     args[i],
				}
			}
		}
	}

	return nil
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// checkKey returns a problem description, or "" for a valid key. Keys are
// ASCII letters, digits, '_', '-' and '.'.
func checkKey(key string) string {
	if key == "" {
		return "empty key"
	}
	if len(key) > MaxKeyLength {
		return "key too long"
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '-', c == '.':
		default:
			return "invalid character in key"
		}
	}
	return ""
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError represents an argument validation error.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + util.TruncateWidth(e.Got, maxGotWidth) + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
