// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu implements a line-oriented command menu over a byte transport.
package menu

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/picomenu/internal/transport"
	"github.com/jeranaias/picomenu/internal/util"
)

// =============================================================================
// INPUT ASSEMBLY
// =============================================================================

// logCommandWidth bounds how much of a command name reaches the log.
const logCommandWidth = 32

// process runs one assembler pass: buffered complete lines left over from a
// failed pass are handled before any new read.
func (m *Menu[S]) process(ctx context.Context) error {
	if m.pending {
		m.pending = false
		return m.processLines(ctx)
	}
	return m.readAndProcess(ctx)
}

// readAndProcess reads once from the transport into the free tail of the
// input buffer and dispatches every complete line.
func (m *Menu[S]) readAndProcess(ctx context.Context) error {
	if m.cursor >= len(m.in) {
		m.dump(true)
		return ErrInputOverflow
	}

	n, err := m.transport.ReadSome(ctx, m.in[m.cursor:])
	if err != nil {
		switch {
		case errors.Is(err, transport.ErrDisconnected):
			return err
		case errors.Is(err, transport.ErrBufferOverflow):
			// The transport dropped the whole packet, newline included.
			m.dump(false)
			return fmt.Errorf("%w: %w", ErrTransportOverflow, err)
		default:
			return fmt.Errorf("read input: %w", err)
		}
	}
	m.cursor += n

	if m.resync && !m.skipToNewline() {
		return nil
	}
	return m.processLines(ctx)
}

// processLines dispatches each complete line in the buffer, in order, then
// moves the unterminated tail to the front.
//
// A failing line is consumed before its error is returned. If complete lines
// remain behind it, pending is set so the next pass handles them without
// reading.
func (m *Menu[S]) processLines(ctx context.Context) error {
	start := 0
	for {
		i := bytes.IndexByte(m.in[start:m.cursor], '\n')
		if i < 0 {
			break
		}
		end := start + i
		err := m.dispatchLine(ctx, m.in[start:end])
		start = end + 1

		if err != nil {
			m.compact(start)
			m.pending = bytes.IndexByte(m.in[:m.cursor], '\n') >= 0
			return err
		}
	}
	m.compact(start)
	return nil
}

// dispatchLine parses one line and routes it.
func (m *Menu[S]) dispatchLine(ctx context.Context, raw []byte) error {
	m.stats.Lines++
	if m.trimCR {
		raw = bytes.TrimSuffix(raw, []byte{'\r'})
	}

	line, err := ParseLine(raw)
	if err != nil {
		m.stats.UTF8Errors++
		return err
	}

	logger := m.logger.With(zap.String("command", util.TruncateWidth(line.Command, logCommandWidth)))

	if line.Command == HelpCommand {
		m.stats.HelpRequests++
		logger.Debug("listing help", zap.Int("commands", m.router.Len()))
		err = m.router.ListHelp(ctx, m.out)
	} else {
		logger.Debug("dispatching command", zap.Bool("has_args", line.Args.Present()))
		err = m.router.Resolve(ctx, line, m.out, &m.state)
		switch {
		case errors.Is(err, ErrUnknownCommand):
			m.stats.UnknownCommands++
		case err == nil:
			m.stats.Commands++
		}
	}

	// A handler's ignored write failure still counts.
	if fault := m.out.takeFault(); fault != nil && err == nil {
		err = fault
	}
	return err
}

// compact drops the first start bytes of the buffer.
func (m *Menu[S]) compact(start int) {
	if start == 0 {
		return
	}
	tail := m.cursor - start
	if tail > 0 {
		copy(m.in, m.in[start:m.cursor])
	}
	m.cursor = tail
}

// dump discards all buffered input. With resync set, input up to the next
// newline is discarded as well, since the rest of the lost line is still
// to arrive.
func (m *Menu[S]) dump(resync bool) {
	m.logger.Warn("discarding buffered input", zap.Int("bytes", m.cursor), zap.Bool("resync", resync))
	m.stats.InputOverflows++
	m.cursor = 0
	m.pending = false
	m.resync = resync
}

// skipToNewline drops bytes up to and including the first newline. It
// returns false if there was none; the buffer is then empty.
func (m *Menu[S]) skipToNewline() bool {
	i := bytes.IndexByte(m.in[:m.cursor], '\n')
	if i < 0 {
		m.logger.Debug("dropping input while resyncing", zap.Int("bytes", m.cursor))
		m.cursor = 0
		return false
	}
	m.logger.Debug("resynced on newline", zap.Int("bytes", i+1))
	m.resync = false
	m.compact(i + 1)
	return true
}
