// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package fake provides a bridge that only logs what it is given.
package fake

import (
	"context"
	"sync"

	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/logging"

	"github.com/sirupsen/logrus"
)

// Bridge logs system commands and keeps them for inspection.
type Bridge struct {
	mu     sync.Mutex
	sent   []model.CommandSystem
	closed bool
}

// New returns an empty fake bridge.
func New() *Bridge { return &Bridge{} }

func (b *Bridge) Send(ctx context.Context, cmd model.CommandSystem) error {
	b.mu.Lock()
	b.sent = append(b.sent, cmd)
	b.mu.Unlock()

	entry := logging.With("bridge").WithFields(logrus.Fields{"type": cmd.CommandType(), "id": cmd.CommandID()})
	switch c := cmd.(type) {
	case model.CommandSystemDonate:
		entry.WithFields(logrus.Fields{"key": c.Key, "bytes": len(c.JSONString)}).Info("donation received")
	case model.CommandSystemExit:
		entry.WithFields(logrus.Fields{"code": c.Code, "info": c.Info}).Info("port exited")
	}
	return nil
}

// Sent returns the commands received so far.
func (b *Bridge) Sent() []model.CommandSystem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.CommandSystem(nil), b.sent...)
}

// Closed reports whether Close was called.
func (b *Bridge) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}
