// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
package menu

import (
	"errors"

	"github.com/jeranaias/picomenu/internal/transport"
)

// =============================================================================
// MENU ERRORS
// =============================================================================

var (
	// ErrDisconnected stops Run cleanly. It is the transport's sentinel.
	ErrDisconnected = transport.ErrDisconnected

	// ErrUnknownCommand is returned when no binding matches a line.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUTF8 is returned when a line is not valid UTF-8.
	ErrUTF8 = errors.New("input is not valid UTF-8")

	// ErrInputOverflow is returned when the input buffer filled up without a
	// complete line. The buffered bytes are discarded.
	ErrInputOverflow = errors.New("input buffer overflow")

	// ErrTransportOverflow is returned when the transport itself dropped
	// inbound data. It matches ErrInputOverflow under errors.Is.
	ErrTransportOverflow error = transportOverflowError{}

	// ErrOutputOverflow is returned when a write would not fit in the output
	// buffer. It is fatal to Run.
	ErrOutputOverflow = errors.New("output buffer overflow")
)

type transportOverflowError struct{}

func (transportOverflowError) Error() string { return "transport input overflow" }

func (transportOverflowError) Is(target error) bool { return target == ErrInputOverflow }

// =============================================================================
// IN-BAND REPORTS
// =============================================================================

// Messages written to the transport for recoverable errors. The trailing
// newline is added by the writer.
const (
	MsgUnknownCommand    = "Unknown command"
	MsgUTF8Error         = "Input UTF8 error"
	MsgInputOverflow     = "Input buffer overflowed & dumped"
	MsgTransportOverflow = "IO buffer overflow"
)

// reportMessage returns the in-band message for a recoverable error.
func reportMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return MsgUnknownCommand, true
	case errors.Is(err, ErrUTF8):
		return MsgUTF8Error, true
	case errors.Is(err, ErrTransportOverflow):
		return MsgTransportOverflow, true
	case errors.Is(err, ErrInputOverflow):
		return MsgInputOverflow, true
	}
	return "", false
}
