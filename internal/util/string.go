// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the picomenu packages.
package util

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// ellipsis is appended by TruncateWidth when it shortens a string.
const ellipsis = "..."

// TruncateWidth shortens s to at most maxWidth display columns, ending it
// with "..." when there is room. Control characters are escaped first, so
// peer input cannot break a log line.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	s = Printable(s)
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// StringWidth returns the display width of s. Wide characters (CJK,
// fullwidth forms) count as two columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Printable replaces control characters with Go-style escapes: "\r" becomes
// `\r`, other controls become `\x1b` and the like. Printable text is left as is.
func Printable(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch {
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsControl(r):
			// IsControl only matches C0 and C1, both below 0x100.
			const hex = "0123456789abcdef"
			b.WriteString(`\x`)
			b.WriteByte(hex[r>>4])
			b.WriteByte(hex[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
