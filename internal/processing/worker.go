// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package processing hosts the donation logic off the caller's goroutine. A
// Worker emits encoded commands and consumes encoded responses; nothing but
// JSON frames crosses the boundary.
package processing

import (
	"context"
	"fmt"
	"io"
	"sync"

	"footprint/cli/internal/bridge/model"
	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/logging"
)

// Worker is a processing engine speaking command and response frames.
//
// Receive returns io.EOF once the worker has finished normally. Every command
// frame returned by Receive must be answered with exactly one Reply.
type Worker interface {
	Start(ctx context.Context) error
	Receive(ctx context.Context) ([]byte, error)
	Reply(ctx context.Context, frame []byte) error
	Close() error
}

// Script is donation logic written in Go. It talks to the host through port
// and returns when the flow is over.
type Script func(ctx context.Context, port *Port) error

// ScriptWorker runs a Script on its own goroutine.
type ScriptWorker struct {
	script Script

	commands chan []byte
	replies  chan []byte
	done     chan struct{}

	once   sync.Once
	cancel context.CancelFunc
	err    error
}

func NewScriptWorker(s Script) *ScriptWorker {
	return &ScriptWorker{
		script:   s,
		commands: make(chan []byte),
		replies:  make(chan []byte),
		done:     make(chan struct{}),
	}
}

// Start launches the script. Calling it again has no effect.
func (w *ScriptWorker) Start(ctx context.Context) error {
	w.once.Do(func() {
		ctx, w.cancel = context.WithCancel(ctx)
		go w.run(ctx)
	})
	return nil
}

func (w *ScriptWorker) run(ctx context.Context) {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.err = ferrors.New(ferrors.WorkerFailed, fmt.Sprintf("script panicked: %v", r))
		}
	}()
	if err := w.script(ctx, &Port{w: w}); err != nil {
		w.err = err
	}
}

func (w *ScriptWorker) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-w.commands:
		return frame, nil
	case <-w.done:
		if w.err != nil {
			return nil, ferrors.Wrap(ferrors.WorkerFailed, "script", w.err)
		}
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *ScriptWorker) Reply(ctx context.Context, frame []byte) error {
	select {
	case w.replies <- frame:
		return nil
	case <-w.done:
		return ferrors.New(ferrors.WorkerFailed, "script has finished")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the script and waits for it to return.
func (w *ScriptWorker) Close() error {
	w.once.Do(func() {})
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	return nil
}

// Port is the script's side of the boundary. Each call encodes one command,
// hands it to the host and blocks for the decoded response.
type Port struct {
	w *ScriptWorker
}

func (p *Port) call(ctx context.Context, cmd model.Command) (model.Response, error) {
	frame, err := model.EncodeCommand(cmd)
	if err != nil {
		return model.Response{}, err
	}
	select {
	case p.w.commands <- frame:
	case <-ctx.Done():
		return model.Response{}, ctx.Err()
	}

	select {
	case reply := <-p.w.replies:
		resp, err := model.DecodeResponse(reply)
		if err != nil {
			return model.Response{}, ferrors.Wrap(ferrors.WorkerFailed, "decode response", err)
		}
		if err := resp.Err(); err != nil {
			return resp, err
		}
		return resp, nil
	case <-ctx.Done():
		return model.Response{}, ctx.Err()
	}
}

// Render shows page and returns the user's answer.
func (p *Port) Render(ctx context.Context, page model.Page) (model.Payload, error) {
	resp, err := p.call(ctx, model.NewRender(page))
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// Donate hands jsonString to the host under key.
func (p *Port) Donate(ctx context.Context, key, jsonString string) error {
	logging.With("processing").WithField("key", key).Debug("donating")
	_, err := p.call(ctx, model.NewDonate(key, jsonString))
	return err
}

// Exit tells the host the flow is over.
func (p *Port) Exit(ctx context.Context, code int, info string) error {
	_, err := p.call(ctx, model.NewExit(code, info))
	return err
}
