// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport provides the byte-oriented endpoints a menu talks to.
//
// A Transport is anything that can deliver "some bytes" into a caller
// buffer and accept "some bytes" for output: a TCP connection, a UART
// character device, a pipe, or a scripted fake in tests.
//
// # Key Types
//
//   - Transport: the two-operation interface consumed by the menu engine
//   - Stream: adapter over io.ReadWriter (net.Conn, *os.File, pipes)
//   - Paced: write limiter that keeps output within a UART's line rate
//   - Idle: read deadline that ends sessions whose peer went quiet
//
// # Errors
//
// Implementations report ErrDisconnected when the peer is gone and
// ErrBufferOverflow when they had to drop inbound data. Any other error is
// treated by the menu as a fatal I/O failure.
//
// # Usage
//
//	conn, _ := ln.Accept()
//	t := transport.NewStream(conn)
//	defer t.Close()
//
//	// Serial device at 115200 baud, paced to the line rate
//	s, _ := transport.OpenSerial("/dev/ttyUSB0", 115200)
//	paced := transport.NewPaced(s, transport.BytesPerSecond(115200))
package transport
