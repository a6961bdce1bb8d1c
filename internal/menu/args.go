// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
package menu

import (
	"strings"
	"unicode"
)

// =============================================================================
// ARGUMENTS
// =============================================================================

// Args is the optional argument string of a line. The zero value means the
// line carried no arguments.
type Args struct {
	value   string
	present bool
}

// SomeArgs returns Args holding s.
func SomeArgs(s string) Args {
	return Args{value: s, present: true}
}

// NoArgs returns the empty Args.
func NoArgs() Args {
	return Args{}
}

// Value returns the raw argument string and whether one was given.
func (a Args) Value() (string, bool) {
	return a.value, a.present
}

// Present reports whether the line carried arguments.
func (a Args) Present() bool {
	return a.present
}

// String returns the raw argument string, or "" if none was given.
func (a Args) String() string {
	return a.value
}

// Fields splits the arguments into tokens. Single and double quotes group
// words containing spaces; a backslash inside quotes escapes a quote or a
// backslash. Routing never calls this: it is offered to commands that want
// more than one argument.
func (a Args) Fields() []string {
	if !a.present {
		return nil
	}
	return splitCommandLine(a.value)
}

// splitCommandLine splits a command line into tokens, respecting quotes.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote, quoted bool

	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		quoted = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			quoted = true

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			quoted = true

		case char == '\\' && i+1 < len(runes) && (inDoubleQuote || inSingleQuote):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			flush()

		default:
			current.WriteRune(char)
		}
	}
	flush()

	return tokens
}
