// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package visualisation renders page descriptions on a surface and turns the
// user's action into exactly one Response per render command.
//
// The conversation is serial: at most one render is pending at a time, and a
// render requested while another is unresolved is rejected with AlreadyPending.
// A pending render waits for a human without timeout. Terminate rejects it with
// Terminated and a cancelled caller context frees the slot.
package visualisation

import (
	"context"
	"sync"

	"footprint/cli/internal/bridge/model"
	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/logging"
)

// Surface displays trees. Render must not block on user input; answers arrive
// through the actions of the rendered view.
type Surface interface {
	Render(tree Tree) error
	Unmount() error
}

type state int

const (
	stateIdle state = iota
	stateStarted
	stateTerminated
)

type outcome struct {
	payload model.Payload
	err     error
}

// pending is the single render slot. The first settle wins, later ones report false.
type pending struct {
	once sync.Once
	done chan outcome
}

func newPending() *pending { return &pending{done: make(chan outcome, 1)} }

func (p *pending) settle(o outcome) bool {
	settled := false
	p.once.Do(func() {
		p.done <- o
		settled = true
	})
	return settled
}

// Engine is the visualisation engine.
type Engine struct {
	factory *Factory

	mu      sync.Mutex
	state   state
	surface Surface
	locale  string
	current *pending
}

// NewEngine returns an idle engine.
func NewEngine(factory *Factory) *Engine {
	if factory == nil {
		factory = NewFactory()
	}
	return &Engine{factory: factory}
}

// Start binds the engine to surface and locale and shows the loading view.
// Calling Start again while started is a no-op. A terminated engine cannot be
// restarted.
func (e *Engine) Start(surface Surface, locale string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case stateStarted:
		return nil
	case stateTerminated:
		return ferrors.New(ferrors.NoActiveSurface, "engine was terminated")
	}
	if surface == nil {
		return ferrors.New(ferrors.NoActiveSurface, "no surface given")
	}
	if err := surface.Render(e.factory.Loading(locale)); err != nil {
		return ferrors.Wrap(ferrors.RenderFailed, "show loading view", err)
	}
	e.surface = surface
	e.locale = locale
	e.state = stateStarted
	logging.With("visualisation").Debugf("started (locale %s)", locale)
	return nil
}

// Render shows cmd.Page and blocks until the user answers, the engine is
// terminated or ctx is done. The returned response carries cmd unchanged.
func (e *Engine) Render(ctx context.Context, cmd model.CommandUIRender) (model.Response, error) {
	e.mu.Lock()
	if e.state != stateStarted {
		e.mu.Unlock()
		return model.Response{}, ferrors.New(ferrors.NoActiveSurface, "render before start or after terminate")
	}
	if e.current != nil {
		e.mu.Unlock()
		return model.Response{}, ferrors.New(ferrors.AlreadyPending, "a previous page is still waiting for an answer")
	}

	p := newPending()
	tree, err := e.factory.Build(cmd.Page, e.locale, func(payload model.Payload) bool {
		return p.settle(outcome{payload: payload})
	})
	if err != nil {
		e.mu.Unlock()
		return model.Response{}, err
	}
	if err := e.surface.Render(tree); err != nil {
		e.mu.Unlock()
		return model.Response{}, ferrors.Wrap(ferrors.RenderFailed, "render page", err)
	}
	e.current = p
	e.mu.Unlock()

	var o outcome
	select {
	case o = <-p.done:
	case <-ctx.Done():
		// an answer that raced the cancellation still wins
		p.settle(outcome{err: ctx.Err()})
		o = <-p.done
	}

	e.mu.Lock()
	if e.current == p {
		e.current = nil
	}
	e.mu.Unlock()

	if o.err != nil {
		return model.Response{}, o.err
	}
	return model.NewResponse(cmd, o.payload), nil
}

// Pending reports whether a render is waiting for an answer.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Terminate rejects the pending render, if any, and unmounts the surface. The
// engine is inert afterwards. Terminating twice is a no-op.
func (e *Engine) Terminate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateTerminated {
		return nil
	}
	wasStarted := e.state == stateStarted
	e.state = stateTerminated

	if e.current != nil {
		e.current.settle(outcome{err: ferrors.New(ferrors.Terminated, "engine terminated while waiting for an answer")})
		e.current = nil
	}
	if !wasStarted {
		return nil
	}
	logging.With("visualisation").Debugf("terminated")
	if err := e.surface.Unmount(); err != nil {
		return ferrors.Wrap(ferrors.RenderFailed, "unmount surface", err)
	}
	return nil
}
