// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
package menu

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/picomenu/internal/transport"
)

// =============================================================================
// OUTPUT SINK
// =============================================================================

// Output is a bounded output buffer in front of a Transport.
//
// Writes append to the buffer only while it keeps at least one byte free:
// a write of n bytes succeeds iff Len()+n < Cap(). Printf and Println format
// into the buffer and flush it immediately, so each command's output reaches
// the transport before the next line is processed.
//
// A failed write or flush is also recorded as the Output's fault. The menu
// checks the fault after every command, so a handler that ignores an error
// still stops the run loop.
type Output struct {
	t      transport.Transport
	buf    []byte
	cursor int
	fault  error
}

var _ io.Writer = (*Output)(nil)

// NewOutput returns an Output that buffers into buf and flushes to t.
func NewOutput(t transport.Transport, buf []byte) *Output {
	return &Output{t: t, buf: buf}
}

// Len returns the number of buffered bytes.
func (o *Output) Len() int { return o.cursor }

// Cap returns the buffer capacity.
func (o *Output) Cap() int { return len(o.buf) }

// Available returns the largest write that currently fits.
func (o *Output) Available() int {
	if n := len(o.buf) - o.cursor - 1; n > 0 {
		return n
	}
	return 0
}

// Write appends p to the buffer. It implements io.Writer so fmt.Fprintf can
// format straight into the buffer.
func (o *Output) Write(p []byte) (int, error) {
	if o.cursor+len(p) >= len(o.buf) {
		o.recordFault(ErrOutputOverflow)
		return 0, ErrOutputOverflow
	}
	copy(o.buf[o.cursor:], p)
	o.cursor += len(p)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (o *Output) WriteString(s string) (int, error) {
	if o.cursor+len(s) >= len(o.buf) {
		o.recordFault(ErrOutputOverflow)
		return 0, ErrOutputOverflow
	}
	copy(o.buf[o.cursor:], s)
	o.cursor += len(s)
	return len(s), nil
}

// Flush writes the buffered bytes to the transport, even if there are none,
// and empties the buffer.
func (o *Output) Flush(ctx context.Context) error {
	err := o.t.WriteSome(ctx, o.buf[:o.cursor])
	o.cursor = 0
	if err != nil {
		err = fmt.Errorf("flush output: %w", err)
		o.recordFault(err)
		return err
	}
	return nil
}

// Printf formats into the buffer and flushes it. If formatting does not fit,
// nothing is flushed and ErrOutputOverflow is returned.
func (o *Output) Printf(ctx context.Context, format string, args ...any) error {
	if _, err := fmt.Fprintf(o, format, args...); err != nil {
		return err
	}
	return o.Flush(ctx)
}

// Println formats its operands like fmt.Println into the buffer and flushes.
func (o *Output) Println(ctx context.Context, args ...any) error {
	if _, err := fmt.Fprintln(o, args...); err != nil {
		return err
	}
	return o.Flush(ctx)
}

// Send writes s to the transport directly, bypassing the buffer. Use it for
// static text larger than the buffer. Buffered bytes are not flushed first.
func (o *Output) Send(ctx context.Context, s string) error {
	if err := o.t.WriteSome(ctx, []byte(s)); err != nil {
		err = fmt.Errorf("send output: %w", err)
		o.recordFault(err)
		return err
	}
	return nil
}

// Err returns the pending fault, if any, without clearing it.
func (o *Output) Err() error {
	return o.fault
}

// recordFault keeps the first failure until it is taken.
func (o *Output) recordFault(err error) {
	if o.fault == nil {
		o.fault = err
	}
}

// takeFault returns and clears the pending fault.
func (o *Output) takeFault() error {
	err := o.fault
	o.fault = nil
	return err
}
