// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
package menu

import (
	"bytes"
	"unicode/utf8"
)

// =============================================================================
// LINE PARSER
// =============================================================================

// Line is one parsed input line.
type Line struct {
	// Command is the command name. It never contains the line terminator.
	Command string

	// Args is everything after the first space, verbatim.
	Args Args
}

// ParseLine splits one line (without its '\n') into command and arguments.
//
// The line splits at its first space only if that space is neither the
// first nor the last byte. Otherwise the whole line is the command: " cmd"
// is the command " cmd", and "cmd " is the command "cmd ". Each half must be
// valid UTF-8.
func ParseLine(line []byte) (Line, error) {
	i := bytes.IndexByte(line, ' ')
	if i > 0 && i+1 < len(line) {
		cmd, rest := line[:i], line[i+1:]
		if !utf8.Valid(cmd) || !utf8.Valid(rest) {
			return Line{}, ErrUTF8
		}
		return Line{Command: string(cmd), Args: SomeArgs(string(rest))}, nil
	}

	if !utf8.Valid(line) {
		return Line{}, ErrUTF8
	}
	return Line{Command: string(line)}, nil
}
