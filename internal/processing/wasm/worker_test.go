// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package wasm

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	ferrors "footprint/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyStart is a module exporting a _start that returns at once.
var emptyStart = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type: () -> ()
	0x03, 0x02, 0x01, 0x00, // func 0 has type 0
	0x07, 0x0a, 0x01, 0x06, '_', 's', 't', 'a', 'r', 't', 0x00, 0x00, // export "_start"
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b, // body: end
}

// echoModule builds a WASI module that writes command to stdout, reads one
// frame from stdin, writes it back to stdout and calls proc_exit(code).
//
// Memory layout: iovec{1024, len(command)} at 0, scratch at 8, read iovec
// {4096, 4096} at 16, echo iovec {4096, nread} at 24, nread at 32, command
// bytes at 1024.
func echoModule(command string, code int32) []byte {
	const (
		i32      = 0x7f
		opConst  = 0x41
		opCall   = 0x10
		opDrop   = 0x1a
		opLoad   = 0x28
		opStore  = 0x36
		opEnd    = 0x0b
		fdWrite  = 0
		fdRead   = 1
		procExit = 2
	)
	section := func(id byte, body []byte) []byte {
		return append(append([]byte{id}, uleb(uint32(len(body)))...), body...)
	}
	name := func(s string) []byte { return append(uleb(uint32(len(s))), s...) }
	i32Const := func(v int32) []byte { return append([]byte{opConst}, sleb(v)...) }
	call := func(fn byte, args ...int32) []byte {
		var b []byte
		for _, a := range args {
			b = append(b, i32Const(a)...)
		}
		return append(b, opCall, fn)
	}
	le := func(vs ...uint32) []byte {
		var b []byte
		for _, v := range vs {
			b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
		return b
	}
	data := func(offset int32, bytes []byte) []byte {
		b := append([]byte{0x00}, i32Const(offset)...)
		b = append(b, opEnd)
		return append(append(b, uleb(uint32(len(bytes)))...), bytes...)
	}

	types := []byte{0x03,
		0x60, 0x04, i32, i32, i32, i32, 0x01, i32, // (i32 i32 i32 i32) -> i32
		0x60, 0x01, i32, 0x00, // (i32) -> ()
		0x60, 0x00, 0x00, // () -> ()
	}
	var imports []byte
	imports = append(imports, 0x03)
	for _, imp := range []struct {
		field string
		typ   byte
	}{{"fd_write", 0}, {"fd_read", 0}, {"proc_exit", 1}} {
		imports = append(imports, name("wasi_snapshot_preview1")...)
		imports = append(imports, name(imp.field)...)
		imports = append(imports, 0x00, imp.typ)
	}
	exports := []byte{0x02}
	exports = append(append(exports, name("_start")...), 0x00, 0x03)
	exports = append(append(exports, name("memory")...), 0x02, 0x00)

	var body []byte
	body = append(body, 0x00) // no locals
	body = append(append(body, call(fdWrite, 1, 0, 1, 8)...), opDrop)
	body = append(append(body, call(fdRead, 0, 16, 1, 32)...), opDrop)
	body = append(body, i32Const(28)...)
	body = append(body, i32Const(32)...)
	body = append(body, opLoad, 0x02, 0x00, opStore, 0x02, 0x00)
	body = append(append(body, call(fdWrite, 1, 24, 1, 8)...), opDrop)
	body = append(body, call(procExit, code)...)
	body = append(body, opEnd)
	codeSec := append([]byte{0x01}, uleb(uint32(len(body)))...)
	codeSec = append(codeSec, body...)

	dataSec := []byte{0x02}
	dataSec = append(dataSec, data(0, le(1024, uint32(len(command)), 0, 0, 4096, 4096, 4096, 0))...)
	dataSec = append(dataSec, data(1024, []byte(command))...)

	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, section(1, types)...)
	mod = append(mod, section(2, imports)...)
	mod = append(mod, section(3, []byte{0x01, 0x02})...)
	mod = append(mod, section(5, []byte{0x01, 0x00, 0x01})...)
	mod = append(mod, section(7, exports)...)
	mod = append(mod, section(10, codeSec)...)
	mod = append(mod, section(11, dataSec)...)
	return mod
}

func uleb(v uint32) []byte {
	var b []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}

func sleb(v int32) []byte {
	var b []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

const (
	exitFrame  = `{"__type__":"CommandSystemExit","code":0,"info":"Success"}`
	voidAnswer = `{"__type__":"Response","command":{"__type__":"CommandSystemExit","code":0,"info":"Success"},"payload":{"__type__":"PayloadVoid"}}`
)

func TestModuleExchangesFrames(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int32
		check    func(t *testing.T, err error)
	}{
		{
			name:     "clean exit ends the stream",
			exitCode: 0,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, io.EOF) },
		},
		{
			name:     "non-zero exit is a worker failure",
			exitCode: 3,
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.True(t, ferrors.IsKind(err, ferrors.WorkerFailed))
				assert.Contains(t, err.Error(), "code 3")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(echoModule(exitFrame+"\n", tt.exitCode), Config{MemoryLimitBytes: 1 << 20})
			require.NoError(t, w.Start(context.Background()))
			t.Cleanup(func() { _ = w.Close() })

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			frame, err := w.Receive(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, exitFrame, string(frame))

			require.NoError(t, w.Reply(ctx, []byte(voidAnswer)))

			echoed, err := w.Receive(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, voidAnswer, string(echoed))

			_, err = w.Receive(ctx)
			tt.check(t, err)
		})
	}
}

func TestInvalidModuleFailsToStart(t *testing.T) {
	w := New([]byte("not wasm"), DefaultConfig())
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.IsKind(err, ferrors.WorkerFailed))
	assert.Contains(t, err.Error(), "compile module")

	_, err = w.Receive(context.Background())
	assert.True(t, ferrors.IsKind(err, ferrors.WorkerFailed))
	assert.NoError(t, w.Close())
}

func TestModuleThatReturnsEndsTheStream(t *testing.T) {
	w := New(emptyStart, Config{MemoryLimitBytes: 1 << 20})
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := w.Receive(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCloseWithoutStart(t *testing.T) {
	w := New(emptyStart, DefaultConfig())
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestReplyBeforeStart(t *testing.T) {
	w := New(emptyStart, DefaultConfig())
	err := w.Reply(context.Background(), []byte(`{}`))
	assert.True(t, ferrors.IsKind(err, ferrors.WorkerFailed))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.wasm"), DefaultConfig())
	require.Error(t, err)
	assert.True(t, ferrors.IsKind(err, ferrors.WorkerFailed))
}

func TestExitError(t *testing.T) {
	assert.NoError(t, exitError(nil))
	assert.True(t, ferrors.IsKind(exitError(io.ErrUnexpectedEOF), ferrors.WorkerFailed))
}
