// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !linux

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import (
	"errors"
	"fmt"
)

// ErrSerialUnsupported is returned by OpenSerial on platforms without
// termios speed programming.
var ErrSerialUnsupported = errors.New("serial devices are only supported on linux")

// OpenSerial is not available on this platform.
func OpenSerial(path string, baud int) (*Stream, error) {
	return nil, fmt.Errorf("open %s: %w", path, ErrSerialUnsupported)
}
