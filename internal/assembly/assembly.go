// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package assembly connects a processing worker to the visualisation engine
// and the bridge. It reads command frames from the worker, routes each one and
// writes exactly one response frame back.
package assembly

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"footprint/cli/internal/bridge"
	"footprint/cli/internal/bridge/model"
	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/logging"
	"footprint/cli/internal/processing"
	"footprint/cli/internal/visualisation"

	"github.com/sirupsen/logrus"
)

// Assembly is one port session.
type Assembly struct {
	worker  processing.Worker
	engine  *visualisation.Engine
	surface visualisation.Surface
	bridge  bridge.Bridge
	router  *CommandRouter
	locale  string

	progress *Progress
	once     sync.Once
}

// New assembles a session. Nothing runs until Run.
func New(worker processing.Worker, engine *visualisation.Engine, surface visualisation.Surface, b bridge.Bridge, locale string) *Assembly {
	return &Assembly{
		worker:   worker,
		engine:   engine,
		surface:  surface,
		bridge:   b,
		router:   NewCommandRouter(engine, b),
		locale:   locale,
		progress: NewProgress(),
	}
}

// Progress exposes the session's progress.
func (a *Assembly) Progress() *Progress { return a.progress }

// Run starts the surface and the worker and serves commands until the worker
// finishes, fails or ctx is done.
func (a *Assembly) Run(ctx context.Context) error {
	if err := a.engine.Start(a.surface, a.locale); err != nil {
		return err
	}
	if err := a.worker.Start(ctx); err != nil {
		return err
	}

	log := logging.With("assembly")
	for {
		frame, err := a.worker.Receive(ctx)
		if errors.Is(err, io.EOF) {
			log.Debug("worker finished")
			return nil
		}
		if err != nil {
			return err
		}

		resp := a.handle(ctx, frame)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reply, err := model.EncodeResponse(resp)
		if err != nil {
			return ferrors.Wrap(ferrors.WorkerFailed, "encode response", err)
		}
		if err := a.worker.Reply(ctx, reply); err != nil {
			return err
		}
	}
}

// handle decodes and routes one frame. Failures become error responses so the
// worker can decide what to do next.
func (a *Assembly) handle(ctx context.Context, frame []byte) model.Response {
	log := logging.With("assembly")
	cmd, err := model.DecodeCommand(frame)
	if err != nil {
		log.Warnf("rejected frame: %v", err)
		a.progress.Record(nil, err)
		return model.ErrorResponse(nil, err)
	}

	entry := log.WithFields(logrus.Fields{"type": cmd.CommandType(), "id": cmd.CommandID()})
	entry.Debug("command received")
	resp, err := a.router.OnCommand(ctx, cmd)
	a.progress.Record(cmd, err)
	if err != nil {
		entry.Warnf("command failed: %v", err)
		return model.ErrorResponse(cmd, err)
	}
	return resp
}

// Terminate tears the session down: pending renders are rejected, the surface
// is unmounted, the worker is stopped and the bridge is closed. It is safe to
// call more than once.
func (a *Assembly) Terminate() error {
	var errs []error
	a.once.Do(func() {
		errs = append(errs, a.engine.Terminate(), a.worker.Close())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errs = append(errs, a.bridge.Close(ctx))
	})
	return errors.Join(errs...)
}
