// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import "sort"

// supportedBauds lists the line rates OpenSerial can program.
var supportedBauds = []int{
	1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600,
}

// IsSupportedBaud reports whether baud is a standard line rate.
func IsSupportedBaud(baud int) bool {
	i := sort.SearchInts(supportedBauds, baud)
	return i < len(supportedBauds) && supportedBauds[i] == baud
}

// SupportedBauds returns a copy of the standard line rates, ascending.
func SupportedBauds() []int {
	out := make([]int, len(supportedBauds))
	copy(out, supportedBauds)
	return out
}

// BytesPerSecond converts a baud rate to payload bytes per second for 8N1
// framing (ten bit times per byte).
func BytesPerSecond(baud int) int {
	if baud <= 0 {
		return 0
	}
	bps := baud / 10
	if bps == 0 {
		return 1
	}
	return bps
}
