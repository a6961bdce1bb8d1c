// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a menu over TCP.
//
// Connections are served one at a time: while a session runs, further
// clients wait in the listen backlog. Each session gets its own transport,
// buffers and state from the SessionFunc, and a uuid that tags its log
// entries. WithIdleTimeout drops a session whose client stops sending.
//
// # Key Types
//
//   - Server: accept loop and session lifecycle
//   - SessionFunc: builds and runs one menu on a connection
//   - Stats: session counters
//
// # Usage
//
//	srv := server.New(func(ctx context.Context, t transport.Transport, log *zap.Logger) error {
//	    m := menu.New(t, make([]byte, 128), make([]byte, 128), commands.NewState("1.0.0"),
//	        menu.WithLogger(log))
//	    commands.Register(m)
//	    return m.Run(ctx)
//	}, logger, server.WithIdleTimeout(15*time.Minute))
//	err := srv.ListenAndServe(ctx, "127.0.0.1:2323")
package server
