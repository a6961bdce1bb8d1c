// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// =============================================================================
// IDLE TIMEOUT
// =============================================================================

// ErrIdleTimeout reports that no input arrived within the idle limit. It
// matches ErrDisconnected, so a menu ends the session cleanly.
var ErrIdleTimeout = fmt.Errorf("%w: idle timeout", ErrDisconnected)

// Idle ends a session whose peer stays silent for longer than timeout.
// Each ReadSome gets its own deadline; output does not count as activity.
type Idle struct {
	Transport
	timeout time.Duration
}

// NewIdle wraps t. A timeout of zero or less disables the limit.
func NewIdle(t Transport, timeout time.Duration) *Idle {
	return &Idle{Transport: t, timeout: timeout}
}

// Timeout returns the idle limit.
func (i *Idle) Timeout() time.Duration {
	return i.timeout
}

// ReadSome implements Transport.
func (i *Idle) ReadSome(ctx context.Context, p []byte) (int, error) {
	if i.timeout <= 0 {
		return i.Transport.ReadSome(ctx, p)
	}

	rctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	n, err := i.Transport.ReadSome(rctx, p)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return n, ErrIdleTimeout
	}
	return n, err
}

// Close closes the wrapped transport if it is closable.
func (i *Idle) Close() error {
	if c, ok := i.Transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
