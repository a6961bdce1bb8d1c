// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session.go - Builds the device menu shared by every transport.
package cli

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jeranaias/picomenu/internal/commands"
	"github.com/jeranaias/picomenu/internal/config"
	"github.com/jeranaias/picomenu/internal/menu"
	"github.com/jeranaias/picomenu/internal/server"
	"github.com/jeranaias/picomenu/internal/transport"
)

// newMenu returns a device menu on t with buffers sized from cfg.
func newMenu(t transport.Transport, cfg config.MenuConfig, logger *zap.Logger) *menu.Menu[commands.State] {
	opts := []menu.Option{menu.WithLogger(logger)}
	if cfg.TrimCR {
		opts = append(opts, menu.WithTrimCR())
	}
	if cfg.Banner != "" {
		opts = append(opts, menu.WithBanner(cfg.Banner))
	}

	m := menu.New(t,
		make([]byte, cfg.InputBuffer),
		make([]byte, cfg.OutputBuffer),
		commands.NewState(Version),
		opts...)
	commands.Register(m)
	return m
}

// newSession adapts newMenu to the TCP server.
func newSession(cfg config.MenuConfig) server.SessionFunc {
	return func(ctx context.Context, t transport.Transport, logger *zap.Logger) error {
		return newMenu(t, cfg, logger).Run(ctx)
	}
}

// sessionError classifies a menu.Run failure. Cancellation is not an error.
func sessionError(mode string, err error) error {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, menu.ErrOutputOverflow):
		return NewCommandError(mode, "session", "response did not fit the output buffer", err)
	}
	return &TransportError{Mode: mode, Err: err}
}
