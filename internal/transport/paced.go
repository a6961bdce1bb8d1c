// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import (
	"context"

	"golang.org/x/time/rate"
)

// =============================================================================
// PACED WRITER
// =============================================================================

// Paced wraps a Transport and limits its write throughput.
//
// Small devices behind a USB-UART bridge drop bytes if the host writes
// faster than the line rate. Paced splits each write into chunks of at most
// Burst bytes and waits on a token bucket before each chunk. Reads pass
// through unchanged.
type Paced struct {
	Transport
	limiter *rate.Limiter
}

// NewPaced limits writes on t to bytesPerSecond. The burst is a tenth of a
// second's worth of bytes, and at least one.
func NewPaced(t Transport, bytesPerSecond int) *Paced {
	if bytesPerSecond <= 0 {
		bytesPerSecond = 1
	}
	burst := bytesPerSecond / 10
	if burst < 1 {
		burst = 1
	}
	return &Paced{
		Transport: t,
		limiter:   rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
	}
}

// Burst returns the largest chunk written in one call to the wrapped
// transport.
func (p *Paced) Burst() int {
	return p.limiter.Burst()
}

// WriteSome implements Transport.
func (p *Paced) WriteSome(ctx context.Context, b []byte) error {
	if len(b) == 0 {
		return p.Transport.WriteSome(ctx, b)
	}
	burst := p.limiter.Burst()
	for len(b) > 0 {
		n := len(b)
		if n > burst {
			n = burst
		}
		if err := p.limiter.WaitN(ctx, n); err != nil {
			return err
		}
		if err := p.Transport.WriteSome(ctx, b[:n]); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// Close closes the wrapped transport if it is closable.
func (p *Paced) Close() error {
	if c, ok := p.Transport.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
