// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a menu over TCP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/picomenu/internal/transport"
)

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats tracks session counters.
type Stats struct {
	Sessions  int64     `json:"sessions"`
	Failed    int64     `json:"failed"`
	Panics    int64     `json:"panics"`
	StartTime time.Time `json:"start_time"`
}

type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func (r *statsRecorder) record(err error, panicked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Sessions++
	if err != nil {
		r.stats.Failed++
	}
	if panicked {
		r.stats.Panics++
	}
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// ============================================================================
// SERVER
// ============================================================================

// SessionFunc runs one menu session on t and returns when it ends. A nil
// return means the peer disconnected.
type SessionFunc func(ctx context.Context, t transport.Transport, logger *zap.Logger) error

// errSessionPanic is recorded for a session whose handler panicked.
var errSessionPanic = errors.New("session panicked")

// Option configures a Server.
type Option func(*Server)

// WithIdleTimeout ends a session whose peer sends nothing for d. Zero
// disables the limit.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

// Server accepts TCP connections and runs one session at a time.
type Server struct {
	session     SessionFunc
	logger      *zap.Logger
	stats       statsRecorder
	idleTimeout time.Duration

	mu   sync.Mutex
	addr net.Addr
}

// New creates a Server running session for every connection. A nil logger
// discards output.
func New(session SessionFunc, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: session,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stats.stats.StartTime = time.Now()
	return s
}

// Stats returns a copy of the current counters.
func (s *Server) Stats() Stats {
	return s.stats.snapshot()
}

// Addr returns the listening address, or nil before Serve starts.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or the listener
// fails, and closes ln before returning. Cancellation also ends the running
// session. It returns nil on cancellation.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	// Closing the listener unblocks Accept.
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		defer cancel()
		return s.acceptLoop(gctx, ln)
	})

	s.logger.Info("server started", zap.Stringer("addr", ln.Addr()))
	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	s.logger.Info("server stopped", zap.Int64("sessions", s.Stats().Sessions))
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.handle(ctx, conn)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// handle runs one session to completion and closes conn.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	logger := s.logger.With(
		zap.String("session", id),
		zap.Stringer("remote", conn.RemoteAddr()),
	)

	var t transport.Transport = transport.NewStream(conn)
	if s.idleTimeout > 0 {
		t = transport.NewIdle(t, s.idleTimeout)
	}
	defer conn.Close()

	start := time.Now()
	logger.Info("session started", zap.Duration("idle_timeout", s.idleTimeout))

	panicked, err := s.run(ctx, t, logger)
	s.stats.record(err, panicked)

	fields := []zap.Field{zap.Duration("duration", time.Since(start))}
	switch {
	case err == nil || ctx.Err() != nil:
		logger.Info("session ended", fields...)
	default:
		logger.Warn("session failed", append(fields, zap.Error(err))...)
	}
}

// run calls the session function. A panic is logged and reported as
// errSessionPanic.
func (s *Server) run(ctx context.Context, t transport.Transport, logger *zap.Logger) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session panic recovered",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			panicked, err = true, errSessionPanic
		}
	}()
	return false, s.session(ctx, t, logger)
}
