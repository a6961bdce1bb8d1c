// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package menu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/picomenu/internal/transport"
	"github.com/jeranaias/picomenu/internal/transport/transporttest"
)

const testResponse = "Testing 123!\n"

type testState struct {
	Version    int
	Overflowed bool
	LastEcho   string
}

// buildMenu registers the fixture commands: test, version, overflow, echo.
func buildMenu(script *transporttest.Script, inSize, outSize int, opts ...Option) *Menu[testState] {
	m := New(script, make([]byte, inSize), make([]byte, outSize), testState{Version: 2}, opts...)
	m.Handle("test", "Tests stuff", func(ctx context.Context, _ Args, out *Output, _ *testState) {
		_ = out.Printf(ctx, "%s", testResponse)
	})
	m.Handle("version", "Shows version", func(ctx context.Context, _ Args, out *Output, s *testState) {
		_ = out.Printf(ctx, "Version: %d\n", s.Version)
	})
	m.Handle("overflow", "Crashes", func(ctx context.Context, _ Args, out *Output, s *testState) {
		err := out.Println(ctx, "Very long text that will overflow")
		s.Overflowed = err != nil
	})
	m.Handle("echo", "Echoes arguments", func(ctx context.Context, args Args, out *Output, s *testState) {
		s.LastEcho = args.String()
		_ = out.Println(ctx, args.String())
	})
	return m
}

func run(t *testing.T, m *Menu[testState]) {
	t.Helper()
	require.NoError(t, m.Run(context.Background()))
}

func TestMenu_PrintsHelp(t *testing.T) {
	script := transporttest.New("help\n")
	m := buildMenu(script, 128, 128)
	run(t, m)

	assert.Equal(t,
		"AVAILABLE COMMANDS:\n\necho: Echoes arguments\noverflow: Crashes\nversion: Shows version\ntest: Tests stuff\n",
		script.Output())
}

func TestMenu_Commands(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{name: "test", input: []string{"test\n"}, want: testResponse},
		{name: "version", input: []string{"version\n"}, want: "Version: 2\n"},
		{name: "unknown", input: []string{"unknown\n"}, want: "Unknown command\n"},
		{name: "args", input: []string{"echo hello world\n"}, want: "hello world\n"},
		{name: "leading space is unknown", input: []string{" test\n"}, want: "Unknown command\n"},
		{name: "trailing space is unknown", input: []string{"test \n"}, want: "Unknown command\n"},
		{name: "empty line is unknown", input: []string{"\n"}, want: "Unknown command\n"},
		{name: "fragmented", input: []string{"tes", "t\n"}, want: testResponse},
		{name: "byte at a time", input: strings.Split("version\n", ""), want: "Version: 2\n"},
		{name: "batched", input: []string{"test\nversion\n"}, want: testResponse + "Version: 2\n"},
		{name: "unterminated tail ignored", input: []string{"test\nvers"}, want: testResponse},
		{name: "utf8 error", input: []string{"\xff\xfe\n"}, want: "Input UTF8 error\n"},
		{name: "no input", input: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := transporttest.New(tt.input...)
			m := buildMenu(script, 128, 128)
			run(t, m)
			assert.Equal(t, tt.want, script.Output())
		})
	}
}

func TestMenu_FlushPerCommand(t *testing.T) {
	script := transporttest.New("test\nversion\n")
	run(t, buildMenu(script, 128, 128))

	assert.Equal(t, []string{testResponse, "Version: 2\n"}, script.Writes())
}

func TestMenu_LinesAfterFailureAreNotLost(t *testing.T) {
	script := transporttest.New("nope\n\xff\ntest\n")
	m := buildMenu(script, 128, 128)
	run(t, m)

	assert.Equal(t, "Unknown command\nInput UTF8 error\n"+testResponse, script.Output())
	assert.Equal(t, 0, m.Buffered())
}

func TestMenu_InputOverflow(t *testing.T) {
	script := transporttest.New("very long string that will overflow\n", "test\n")
	m := buildMenu(script, 5, 128)
	run(t, m)

	assert.Equal(t, "Input buffer overflowed & dumped\n"+testResponse, script.Output())
	assert.Equal(t, 1, m.Stats().InputOverflows)
}

func TestMenu_ResyncDropsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	script := transporttest.New("abcde", "xyz", "\n", "test\n")
	m := buildMenu(script, 5, 128, WithLogger(zap.New(core)))
	run(t, m)

	assert.Equal(t, "Input buffer overflowed & dumped\n"+testResponse, script.Output())

	dropped := logs.FilterMessage("dropping input while resyncing").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, int64(3), dropped[0].ContextMap()["bytes"])

	resynced := logs.FilterMessage("resynced on newline").All()
	require.Len(t, resynced, 1)
	assert.Equal(t, int64(1), resynced[0].ContextMap()["bytes"])
}

func TestMenu_InputOverflowSameRead(t *testing.T) {
	// The remainder of the long line and the next command share a read.
	script := transporttest.New("abcdefgh", "ij\ntest\n")
	m := buildMenu(script, 5, 128)
	run(t, m)

	assert.Equal(t, "Input buffer overflowed & dumped\n"+testResponse, script.Output())
}

func TestMenu_LongestLineFits(t *testing.T) {
	// Four bytes plus the newline fill a five byte buffer exactly.
	script := transporttest.New("test\n")
	run(t, buildMenu(script, 5, 128))
	assert.Equal(t, testResponse, script.Output())
}

func TestMenu_TransportOverflow(t *testing.T) {
	tests := []struct {
		name  string
		reads []transporttest.Read
		want  string
	}{
		{
			name:  "next read is a full line",
			reads: []transporttest.Read{{Data: "test\n"}},
			want:  "IO buffer overflow\n" + testResponse,
		},
		{
			name:  "next read holds several lines",
			reads: []transporttest.Read{{Data: "nope\ntest\n"}},
			want:  "IO buffer overflow\nUnknown command\n" + testResponse,
		},
		{
			name:  "next line arrives fragmented",
			reads: []transporttest.Read{{Data: "te"}, {Data: "st\n"}},
			want:  "IO buffer overflow\n" + testResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := transporttest.New().PushOverflow()
			for _, r := range tt.reads {
				script.Push(r)
			}
			m := buildMenu(script, 128, 128)
			run(t, m)

			assert.Equal(t, tt.want, script.Output())
			assert.Equal(t, 1, m.Stats().InputOverflows)
		})
	}
}

func TestMenu_TransportOverflowDropsPartialLine(t *testing.T) {
	script := transporttest.New("tes").PushOverflow().
		Push(transporttest.Read{Data: "test\n"})
	m := buildMenu(script, 128, 128)
	run(t, m)

	assert.Equal(t, "IO buffer overflow\n"+testResponse, script.Output())
	assert.Zero(t, m.Buffered())
}

func TestMenu_OutputOverflowStops(t *testing.T) {
	script := transporttest.New("overflow\ntest\n")
	m := buildMenu(script, 128, 5)

	assert.False(t, m.State().Overflowed)
	err := m.Run(context.Background())
	assert.ErrorIs(t, err, ErrOutputOverflow)
	assert.True(t, m.State().Overflowed)
	assert.Empty(t, script.Writes(), "an overflowing response is never flushed")
}

func TestMenu_OutputThreshold(t *testing.T) {
	// "Version: 2\n" is 11 bytes: it needs a 12 byte buffer.
	script := transporttest.New("version\n")
	run(t, buildMenu(script, 128, 12))
	assert.Equal(t, "Version: 2\n", script.Output())

	script = transporttest.New("version\n")
	err := buildMenu(script, 128, 11).Run(context.Background())
	assert.ErrorIs(t, err, ErrOutputOverflow)
}

func TestMenu_ReportOverflowStops(t *testing.T) {
	// "Unknown command\n" does not fit in 8 bytes.
	script := transporttest.New("nope\n")
	err := buildMenu(script, 128, 8).Run(context.Background())
	assert.ErrorIs(t, err, ErrOutputOverflow)
	assert.Contains(t, err.Error(), "Unknown command")
}

func TestMenu_HelpOverflowStops(t *testing.T) {
	script := transporttest.New("help\n")
	err := buildMenu(script, 128, 16).Run(context.Background())
	assert.ErrorIs(t, err, ErrOutputOverflow)
}

func TestMenu_DisconnectOnWrite(t *testing.T) {
	script := transporttest.New("test\n")
	script.WriteErr = transport.ErrDisconnected
	assert.NoError(t, buildMenu(script, 128, 128).Run(context.Background()))
}

func TestMenu_HardReadError(t *testing.T) {
	boom := errors.New("line noise")
	script := transporttest.New().Push(transporttest.Read{Err: boom})
	err := buildMenu(script, 128, 128).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestMenu_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := buildMenu(transporttest.New("test\n"), 128, 128).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMenu_Step(t *testing.T) {
	ctx := context.Background()
	script := transporttest.New("tes", "t\n")
	m := buildMenu(script, 128, 128)

	require.NoError(t, m.Step(ctx))
	assert.Equal(t, 3, m.Buffered())
	assert.Empty(t, script.Output())

	require.NoError(t, m.Step(ctx))
	assert.Equal(t, 0, m.Buffered())
	assert.Equal(t, testResponse, script.Output())

	assert.ErrorIs(t, m.Step(ctx), ErrDisconnected)
}

func TestMenu_ArgumentsOutliveBuffer(t *testing.T) {
	script := transporttest.New("echo abc\n", "xyzw\n")
	m := buildMenu(script, 16, 128)
	run(t, m)
	assert.Equal(t, "abc", m.State().LastEcho)
}

func TestMenu_TrimCR(t *testing.T) {
	script := transporttest.New("test\r\n")
	run(t, buildMenu(script, 128, 128))
	assert.Equal(t, "Unknown command\n", script.Output())

	script = transporttest.New("test\r\n", "help\r\n")
	run(t, buildMenu(script, 128, 128, WithTrimCR()))
	assert.True(t, strings.HasPrefix(script.Output(), testResponse+"AVAILABLE COMMANDS:\n\n"))
}

func TestMenu_Banner(t *testing.T) {
	script := transporttest.New("test\n")
	// The banner is longer than the output buffer on purpose.
	run(t, buildMenu(script, 128, 16, WithBanner("picomenu bench controller")))
	assert.Equal(t, []string{"picomenu bench controller\n", testResponse}, script.Writes())
}

func TestMenu_Stats(t *testing.T) {
	script := transporttest.New("help\ntest\nnope\n\xff\n")
	m := buildMenu(script, 128, 128)
	run(t, m)

	assert.Equal(t, Stats{
		Lines:           4,
		Commands:        1,
		HelpRequests:    1,
		UnknownCommands: 1,
		UTF8Errors:      1,
	}, m.Stats())
}

func TestMenu_DuplicateNameShadows(t *testing.T) {
	script := transporttest.New("ping\n", "help\n")
	m := New(script, make([]byte, 64), make([]byte, 64), struct{}{})
	m.Handle("ping", "old", func(ctx context.Context, _ Args, out *Output, _ *struct{}) {
		_ = out.Println(ctx, "old")
	})
	m.Handle("ping", "new", func(ctx context.Context, _ Args, out *Output, _ *struct{}) {
		_ = out.Println(ctx, "new")
	})
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, "new\nAVAILABLE COMMANDS:\n\nping: new\nping: old\n", script.Output())
	assert.Equal(t, []string{"ping", "ping"}, m.Commands())
}

func TestNew_EmptyInputPanics(t *testing.T) {
	assert.Panics(t, func() {
		New(transporttest.New(), nil, make([]byte, 8), 0)
	})
}
