// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import (
	"context"
	"errors"
)

// =============================================================================
// TRANSPORT INTERFACE
// =============================================================================

// Transport is a fallible byte endpoint.
//
// ReadSome blocks until at least one byte is available, the peer goes away,
// or ctx is done, and copies at most len(p) bytes into p. WriteSome writes all
// of p or returns an error.
type Transport interface {
	ReadSome(ctx context.Context, p []byte) (int, error)
	WriteSome(ctx context.Context, p []byte) error
}

var (
	// ErrDisconnected is returned once the peer has gone away.
	ErrDisconnected = errors.New("transport disconnected")

	// ErrBufferOverflow is returned when the transport dropped inbound data
	// because its own buffer filled up.
	ErrBufferOverflow = errors.New("transport buffer overflow")
)
