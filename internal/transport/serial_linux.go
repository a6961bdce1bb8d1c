// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build linux

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// termiosSpeeds maps line rates to termios speed codes.
var termiosSpeeds = map[int]uint32{
	1200:   unix.B1200,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
	460800: unix.B460800,
	921600: unix.B921600,
}

// OpenSerial opens a UART character device in raw mode at the given baud
// rate. The device is opened non-blocking so reads can be interrupted by a
// context through the runtime poller.
func OpenSerial(path string, baud int) (*Stream, error) {
	speed, ok := termiosSpeeds[baud]
	if !ok {
		return nil, fmt.Errorf("unsupported baud rate %d", baud)
	}

	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial device: %w", err)
	}

	// SyscallConn keeps the descriptor in non-blocking mode; f.Fd() would not.
	rc, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to access serial descriptor: %w", err)
	}

	var cfgErr error
	if err := rc.Control(func(fd uintptr) {
		if _, cfgErr = term.MakeRaw(int(fd)); cfgErr != nil {
			cfgErr = fmt.Errorf("failed to enter raw mode: %w", cfgErr)
			return
		}
		cfgErr = setSpeed(int(fd), speed)
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to configure serial device: %w", err)
	}
	if cfgErr != nil {
		f.Close()
		return nil, cfgErr
	}

	return NewStream(f), nil
}

// setSpeed programs input and output speed and enables the receiver.
func setSpeed(fd int, speed uint32) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to read termios: %w", err)
	}

	t.Cflag &^= unix.CBAUD
	t.Cflag |= speed | unix.CLOCAL | unix.CREAD
	t.Ispeed = speed
	t.Ospeed = speed

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("failed to write termios: %w", err)
	}
	return nil
}
