// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transporttest provides a scripted Transport for tests.
//
// A Script plays back a fixed sequence of inbound reads and records every
// outbound write. Once the script runs dry, ReadSome reports
// transport.ErrDisconnected, which makes a menu's run loop stop cleanly.
package transporttest

import (
	"context"
	"strings"
	"sync"

	"github.com/jeranaias/picomenu/internal/transport"
)

// Read is one scripted inbound event: either data or an error.
type Read struct {
	Data string
	Err  error
}

// Script is an in-memory Transport.
type Script struct {
	mu     sync.Mutex
	reads  []Read
	writes []string

	// WriteErr, when set, is returned by every WriteSome call.
	WriteErr error
}

var _ transport.Transport = (*Script)(nil)

// New returns a Script that delivers each chunk as a separate read.
func New(chunks ...string) *Script {
	s := &Script{}
	for _, c := range chunks {
		s.reads = append(s.reads, Read{Data: c})
	}
	return s
}

// Push appends a scripted read.
func (s *Script) Push(r Read) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, r)
	return s
}

// PushOverflow appends a read that fails with transport.ErrBufferOverflow.
func (s *Script) PushOverflow() *Script {
	return s.Push(Read{Err: transport.ErrBufferOverflow})
}

// ReadSome implements transport.Transport. A chunk longer than p is split
// like a real stream: the remainder is delivered by the next call.
func (s *Script) ReadSome(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reads) == 0 {
		return 0, transport.ErrDisconnected
	}
	r := s.reads[0]
	if r.Err != nil {
		s.reads = s.reads[1:]
		return 0, r.Err
	}

	n := copy(p, r.Data)
	if n < len(r.Data) {
		s.reads[0].Data = r.Data[n:]
	} else {
		s.reads = s.reads[1:]
	}
	return n, nil
}

// WriteSome implements transport.Transport.
func (s *Script) WriteSome(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.writes = append(s.writes, string(p))
	return nil
}

// Output returns everything written so far, concatenated.
func (s *Script) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.writes, "")
}

// Writes returns each WriteSome payload in order, including empty flushes.
func (s *Script) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.writes))
	copy(out, s.writes)
	return out
}

// Remaining reports how many scripted reads have not been consumed.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reads)
}
