// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"time"
)

// =============================================================================
// STREAM ADAPTER
// =============================================================================

// deadliner is implemented by net.Conn and pollable *os.File values.
type deadliner interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// aLongTimeAgo is used to interrupt a blocked read or write.
var aLongTimeAgo = time.Unix(1, 0)

// Stream adapts an io.ReadWriter to the Transport interface.
//
// End of stream, closed connections, resets and broken pipes are reported as
// ErrDisconnected. If the underlying value supports deadlines, a cancelled
// context interrupts a blocked read or write; otherwise the context is only
// checked before each call.
type Stream struct {
	rw     io.ReadWriter
	closer io.Closer
}

// NewStream wraps rw. If rw is also an io.Closer, Close closes it.
func NewStream(rw io.ReadWriter) *Stream {
	s := &Stream{rw: rw}
	if c, ok := rw.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// NewStreamPair builds a Stream from a separate reader and writer, e.g.
// os.Stdin and os.Stdout. Neither side is closed by Close.
func NewStreamPair(r io.Reader, w io.Writer) *Stream {
	return &Stream{rw: struct {
		io.Reader
		io.Writer
	}{r, w}}
}

// ReadSome implements Transport.
func (s *Stream) ReadSome(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	release := s.interruptOnDone(ctx, func(d deadliner) error {
		return d.SetReadDeadline(aLongTimeAgo)
	}, func(d deadliner) error {
		return d.SetReadDeadline(time.Time{})
	})
	n, err := s.rw.Read(p)
	release()

	// Deliver what arrived; a terminal error repeats on the next call.
	if n > 0 {
		return n, nil
	}
	if err == nil {
		return 0, nil
	}
	return 0, s.classify(ctx, err)
}

// WriteSome implements Transport.
func (s *Stream) WriteSome(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	release := s.interruptOnDone(ctx, func(d deadliner) error {
		return d.SetWriteDeadline(aLongTimeAgo)
	}, func(d deadliner) error {
		return d.SetWriteDeadline(time.Time{})
	})
	_, err := s.rw.Write(p)
	release()

	if err != nil {
		return s.classify(ctx, err)
	}
	return nil
}

// Close closes the underlying stream if it is closable.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// interruptOnDone arms a deadline interrupt for the duration of one call.
// The returned func disarms it. If the interrupt fired, it waits for it to
// finish and then clears the deadline.
func (s *Stream) interruptOnDone(ctx context.Context, interrupt, clear func(deadliner) error) func() {
	d, ok := s.rw.(deadliner)
	if !ok || ctx.Done() == nil {
		return func() {}
	}

	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		_ = interrupt(d)
	})
	return func() {
		if !stop() {
			// The interrupt may still be setting its deadline.
			<-fired
			_ = clear(d)
		}
	}
}

// classify maps low-level stream errors onto the transport error set.
func (s *Stream) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, os.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.EIO):
		return fmt.Errorf("%w: %w", ErrDisconnected, err)
	}
	return err
}
