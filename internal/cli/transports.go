// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transports.go - stdio, serve, serial and run commands.
//
// Examples:
//   picomenu stdio                         One session on the terminal
//   picomenu serve --listen 0.0.0.0:2323   TCP, one client at a time
//   picomenu serial --device /dev/ttyACM0 --baud 9600 --pace
//   picomenu run                           Use transport.mode from config
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/picomenu/internal/server"
	"github.com/jeranaias/picomenu/internal/transport"
)

// reconnectInterval is the minimum time between serial open attempts.
const reconnectInterval = time.Second

// =============================================================================
// RUN
// =============================================================================

func (a *app) newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve the menu on the transport named by transport.mode",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch mode := strings.ToLower(a.cfg.Transport.Mode); mode {
			case "stdio":
				return a.runStdio(cmd.Context())
			case "tcp":
				return a.runServe(cmd.Context())
			case "serial":
				return a.runSerial(cmd.Context())
			default:
				return &ConfigError{Err: fmt.Errorf("unknown transport mode %q", mode)}
			}
		},
	}
}

// =============================================================================
// STDIO
// =============================================================================

func (a *app) newStdioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve one menu session on stdin and stdout",
		Long: `Serve one menu session on stdin and stdout. The session ends at end of
input. Logs go to stderr or the configured log file.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStdio(cmd.Context())
		},
	}
}

func (a *app) runStdio(ctx context.Context) error {
	t := transport.NewStreamPair(a.stdin, a.stdout)
	m := newMenu(t, a.cfg.Menu, a.logger.With(zap.String("mode", "stdio")))

	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx) }()

	select {
	case err := <-errc:
		return sessionError("stdio", err)
	case <-ctx.Done():
		// A blocked terminal read cannot be interrupted; the process exits
		// with the reader still parked.
		a.logger.Info("stdio session interrupted")
		return nil
	}
}

// =============================================================================
// SERVE (TCP)
// =============================================================================

func (a *app) newServeCommand() *cobra.Command {
	var (
		listen string
		idle   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve menu sessions over TCP, one client at a time",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.Transport.Listen = listen
			}
			if cmd.Flags().Changed("idle-timeout") {
				if idle < 0 {
					return NewValidationErrorWithExample("idle-timeout", idle.String(),
						"must not be negative", "picomenu serve --idle-timeout 5m")
				}
				a.cfg.Transport.IdleTimeout = int(idle / time.Second)
			}
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "TCP address (default transport.listen)")
	cmd.Flags().DurationVar(&idle, "idle-timeout", 0, "End silent sessions after this long (default transport.idle_timeout)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	idle := time.Duration(a.cfg.Transport.IdleTimeout) * time.Second
	srv := server.New(newSession(a.cfg.Menu), a.logger.With(zap.String("mode", "tcp")),
		server.WithIdleTimeout(idle))
	if err := srv.ListenAndServe(ctx, a.cfg.Transport.Listen); err != nil {
		return &TransportError{Mode: "tcp", Err: err}
	}
	return nil
}

// =============================================================================
// SERIAL
// =============================================================================

func (a *app) newSerialCommand() *cobra.Command {
	var (
		device      string
		baud        int
		pace        bool
		noReconnect bool
	)
	cmd := &cobra.Command{
		Use:   "serial",
		Short: "Serve the menu on a UART device",
		Long: `Serve the menu on a UART device in raw mode. When the device goes away
and reconnect is enabled, picomenu waits for it to reappear and starts a
fresh session.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tc := &a.cfg.Transport
			if cmd.Flags().Changed("device") {
				tc.Device = device
			}
			if cmd.Flags().Changed("baud") {
				if !transport.IsSupportedBaud(baud) {
					return NewValidationErrorWithExample("baud", fmt.Sprint(baud), "unsupported rate",
						fmt.Sprintf("one of %v", transport.SupportedBauds()))
				}
				tc.Baud = baud
			}
			if cmd.Flags().Changed("pace") {
				tc.Pace = pace
			}
			if noReconnect {
				tc.Reconnect = false
			}
			return a.runSerial(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", "", "Character device (default transport.device)")
	cmd.Flags().IntVarP(&baud, "baud", "b", 0, "Line rate (default transport.baud)")
	cmd.Flags().BoolVar(&pace, "pace", false, "Limit output to the line rate")
	cmd.Flags().BoolVar(&noReconnect, "no-reconnect", false, "Exit when the device disconnects")
	return cmd
}

// runSerial serves sessions on the device until ctx is done, or until the
// first disconnect when reconnect is off.
func (a *app) runSerial(ctx context.Context) error {
	tc := a.cfg.Transport
	logger := a.logger.With(zap.String("mode", "serial"), zap.String("device", tc.Device))
	retry := rate.NewLimiter(rate.Every(reconnectInterval), 1)

	for {
		if err := retry.Wait(ctx); err != nil {
			return nil
		}

		ran, err := a.serialSession(ctx, logger)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if ran && !tc.Reconnect {
			return nil
		}
		if ran {
			logger.Info("device disconnected, waiting to reconnect")
		}
	}
}

// serialSession opens the device and runs one session. ran is false if the
// device was missing and the call only waited for it to appear.
func (a *app) serialSession(ctx context.Context, logger *zap.Logger) (ran bool, err error) {
	tc := a.cfg.Transport

	s, err := transport.OpenSerial(tc.Device, tc.Baud)
	if err != nil {
		if tc.Reconnect && errors.Is(err, fs.ErrNotExist) {
			logger.Info("waiting for device")
			if err := transport.WaitForDevice(ctx, tc.Device); err != nil && ctx.Err() == nil {
				return false, &TransportError{Mode: "serial", Err: err}
			}
			return false, nil
		}
		return false, &TransportError{Mode: "serial", Err: err}
	}
	defer s.Close()

	var t transport.Transport = s
	if tc.Pace {
		t = transport.NewPaced(s, transport.BytesPerSecond(tc.Baud))
	}

	logger.Info("device opened", zap.Int("baud", tc.Baud), zap.Bool("paced", tc.Pace))
	return true, sessionError("serial", newMenu(t, a.cfg.Menu, logger).Run(ctx))
}
