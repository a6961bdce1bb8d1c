// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
package menu

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/picomenu/internal/transport"
)

// =============================================================================
// OPTIONS
// =============================================================================

type settings struct {
	logger *zap.Logger
	trimCR bool
	banner string
}

// Option configures a Menu.
type Option func(*settings)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrimCR strips one trailing '\r' from each line, for terminals that
// send CRLF. Off by default: the bare protocol treats '\r' as part of the
// command.
func WithTrimCR() Option {
	return func(s *settings) { s.trimCR = true }
}

// WithBanner writes text and a newline once when Run starts. The banner is
// sent unbuffered, so it may be longer than the output buffer.
func WithBanner(text string) Option {
	return func(s *settings) { s.banner = text }
}

// =============================================================================
// MENU
// =============================================================================

// Stats counts what a Menu has processed.
type Stats struct {
	Lines           int
	Commands        int
	HelpRequests    int
	UnknownCommands int
	UTF8Errors      int
	InputOverflows  int
}

// Menu couples a transport, the caller's buffers, a router and state S.
//
// A Menu is driven by a single goroutine. Handlers receive *S and may keep
// it only for the duration of the call.
type Menu[S any] struct {
	transport transport.Transport
	router    Router[S]
	out       *Output
	state     S

	in     []byte
	cursor int

	// pending: complete lines are still buffered after a failed pass.
	pending bool
	// resync: discarding input up to the next newline after an overflow.
	resync bool

	trimCR bool
	banner string
	logger *zap.Logger
	stats  Stats
}

// New builds a Menu with no commands. in and out are used as the input and
// output buffers and are never grown. New panics if in is empty.
func New[S any](t transport.Transport, in, out []byte, state S, opts ...Option) *Menu[S] {
	if len(in) == 0 {
		panic("menu: input buffer must not be empty")
	}

	cfg := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Menu[S]{
		transport: t,
		out:       NewOutput(t, out),
		state:     state,
		in:        in,
		trimCR:    cfg.trimCR,
		banner:    cfg.banner,
		logger:    cfg.logger,
	}
}

// AddCommand registers cmd under name and returns m for chaining. It panics
// on an invalid name (see ValidateName).
func (m *Menu[S]) AddCommand(name string, cmd Command[S]) *Menu[S] {
	m.router.Add(name, cmd)
	return m
}

// Handle registers fn under name with the given help text.
func (m *Menu[S]) Handle(name, help string, fn HandlerFunc[S]) *Menu[S] {
	return m.AddCommand(name, Func(help, fn))
}

// State returns the menu state.
func (m *Menu[S]) State() *S {
	return &m.state
}

// Stats returns a snapshot of the counters.
func (m *Menu[S]) Stats() Stats {
	return m.stats
}

// Commands returns the registered command names in help order.
func (m *Menu[S]) Commands() []string {
	return m.router.Names()
}

// Buffered returns the number of unconsumed input bytes.
func (m *Menu[S]) Buffered() int {
	return m.cursor
}

// =============================================================================
// RUN LOOP
// =============================================================================

// Run processes input until the transport disconnects, which returns nil.
//
// Unknown commands, malformed UTF-8 and input overflows are reported to the
// peer and processing continues. An output overflow, a failed report, a
// hard transport error or a cancelled context stops the loop and is
// returned.
func (m *Menu[S]) Run(ctx context.Context) error {
	m.logger.Debug("menu started",
		zap.Int("commands", m.router.Len()),
		zap.Int("input_buffer", len(m.in)),
		zap.Int("output_buffer", m.out.Cap()))

	if m.banner != "" {
		if err := m.out.Send(ctx, m.banner+"\n"); err != nil {
			m.out.takeFault()
			return m.stop(err)
		}
	}

	for {
		if err := m.Step(ctx); err != nil {
			return m.stop(err)
		}
	}
}

// stop turns a terminal Step error into Run's result.
func (m *Menu[S]) stop(err error) error {
	if errors.Is(err, ErrDisconnected) {
		m.logger.Info("transport disconnected", zap.Int("lines", m.stats.Lines))
		return nil
	}
	m.logger.Error("menu stopped", zap.Error(err))
	return err
}

// Step runs one iteration of the loop. Recoverable errors are reported to
// the peer and Step returns nil; any other error is returned, including
// ErrDisconnected.
func (m *Menu[S]) Step(ctx context.Context) error {
	err := m.process(ctx)
	if err == nil {
		return nil
	}

	msg, ok := reportMessage(err)
	if !ok {
		return err
	}

	m.logger.Warn("recoverable input error", zap.Error(err))
	if rerr := m.out.Println(ctx, msg); rerr != nil {
		m.out.takeFault()
		return fmt.Errorf("report %q: %w", msg, rerr)
	}
	return nil
}
