// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package wasm runs a WASI module as the processing engine. The module reads
// response frames on stdin and writes command frames on stdout, one JSON
// document per line. It gets no filesystem, network or environment.
package wasm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/logging"
	"footprint/cli/internal/processing"

	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// Config bounds the module.
type Config struct {
	MemoryLimitBytes uint64
	Args             []string
}

// DefaultConfig allows 256 MB, enough for a data package held in memory.
func DefaultConfig() Config {
	return Config{MemoryLimitBytes: 256 << 20}
}

// Worker is a processing.Worker backed by wazero.
type Worker struct {
	code []byte
	cfg  Config

	runtime wazero.Runtime
	cancel  context.CancelFunc
	stdin   *io.PipeWriter
	frames  chan []byte
	done    chan struct{}
	closing chan struct{}

	once      sync.Once
	closeOnce sync.Once
	err       error
	readErr   error
}

// Load reads a module from path.
func Load(path string, cfg Config) (*Worker, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.WorkerFailed, "read module", err)
	}
	return New(code, cfg), nil
}

func New(code []byte, cfg Config) *Worker {
	return &Worker{
		code:    code,
		cfg:     cfg,
		frames:  make(chan []byte),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

// Start compiles the module and runs its _start function in the background.
func (w *Worker) Start(ctx context.Context) error {
	var err error
	w.once.Do(func() { err = w.start(ctx) })
	return err
}

func (w *Worker) start(ctx context.Context) error {
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if w.cfg.MemoryLimitBytes > 0 {
		// wazero counts memory in 64 KiB pages
		pages := uint32(w.cfg.MemoryLimitBytes / (64 * 1024))
		if pages == 0 {
			pages = 1
		}
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(pages)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.runtime = wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	wasi_snapshot_preview1.MustInstantiate(ctx, w.runtime)

	compiled, err := w.runtime.CompileModule(ctx, w.code)
	if err != nil {
		w.shutdown()
		close(w.done)
		close(w.frames)
		w.err = ferrors.Wrap(ferrors.WorkerFailed, "compile module", err)
		return w.err
	}

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	w.stdin = inW
	stderr := logging.With("worker").WriterLevel(logrus.DebugLevel)

	modCfg := wazero.NewModuleConfig().
		WithName("footprint-worker").
		WithArgs(append([]string{"worker"}, w.cfg.Args...)...).
		WithStdin(inR).
		WithStdout(outW).
		WithStderr(stderr).
		WithStartFunctions("_start")

	go func() {
		defer close(w.done)
		defer func() { _ = stderr.Close() }()
		_, err := w.runtime.InstantiateModule(ctx, compiled, modCfg)
		w.err = exitError(err)
		_ = outW.Close()
		_ = inR.Close()
	}()
	go w.readLoop(outR)
	return nil
}

// exitError maps the module's termination to an error; exit code 0 is success.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exit *sys.ExitError
	if errors.As(err, &exit) {
		if exit.ExitCode() == 0 {
			return nil
		}
		return ferrors.New(ferrors.WorkerFailed, fmt.Sprintf("module exited with code %d", exit.ExitCode()))
	}
	return ferrors.Wrap(ferrors.WorkerFailed, "run module", err)
}

func (w *Worker) readLoop(r io.Reader) {
	defer close(w.frames)
	fr := processing.NewFrameReader(r)
	for {
		frame, err := fr.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				w.readErr = err
			}
			return
		}
		select {
		case w.frames <- frame:
		case <-w.closing:
			return
		}
	}
}

func (w *Worker) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-w.frames:
		if ok {
			return frame, nil
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-w.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if w.err != nil {
		return nil, w.err
	}
	if w.readErr != nil {
		return nil, ferrors.Wrap(ferrors.WorkerFailed, "read frame", w.readErr)
	}
	return nil, io.EOF
}

func (w *Worker) Reply(ctx context.Context, frame []byte) error {
	if w.stdin == nil {
		return ferrors.New(ferrors.WorkerFailed, "module is not running")
	}
	errc := make(chan error, 1)
	go func() { errc <- processing.WriteFrame(w.stdin, frame) }()
	select {
	case err := <-errc:
		if err != nil {
			return ferrors.Wrap(ferrors.WorkerFailed, "write frame", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends stdin, stops the module and frees the runtime.
func (w *Worker) Close() error {
	w.once.Do(func() { close(w.done); close(w.frames) })
	w.closeOnce.Do(func() { close(w.closing) })
	if w.stdin != nil {
		_ = w.stdin.Close()
	}
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
	return w.shutdown()
}

func (w *Worker) shutdown() error {
	if w.runtime == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := w.runtime.Close(ctx)
	w.runtime = nil
	return err
}
