// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the picomenu packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width truncation for log fields
//   - StringWidth: display width of a string (CJK counts as 2 columns)
//   - Printable: escape control bytes before logging peer input
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	logger.Debug("line", zap.String("command", util.TruncateWidth(cmd, 32)))
//
//	err := util.AtomicWriteFile(path, data, 0600)
package util
