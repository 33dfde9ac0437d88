// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assembly

import (
	"context"

	"footprint/cli/internal/bridge"
	"footprint/cli/internal/bridge/model"
	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/logging"
)

// Renderer shows a page and blocks until the user answers it.
type Renderer interface {
	Render(ctx context.Context, cmd model.CommandUIRender) (model.Response, error)
}

// CommandRouter sends UI commands to the visualisation engine and system
// commands to the bridge. It handles one command at a time.
type CommandRouter struct {
	vis    Renderer
	bridge bridge.Bridge
}

func NewCommandRouter(vis Renderer, b bridge.Bridge) *CommandRouter {
	return &CommandRouter{vis: vis, bridge: b}
}

// OnCommand handles cmd and returns its response. System commands are answered
// with PayloadVoid once the bridge accepted them.
func (r *CommandRouter) OnCommand(ctx context.Context, cmd model.Command) (model.Response, error) {
	switch c := cmd.(type) {
	case model.CommandUIRender:
		return r.vis.Render(ctx, c)
	case model.CommandSystem:
		if err := r.bridge.Send(ctx, c); err != nil {
			logging.With("router").WithField("type", c.CommandType()).Warnf("bridge send failed: %v", err)
			if ferrors.KindOf(err) == "" {
				err = ferrors.Wrap(ferrors.BridgeFailed, "send "+c.CommandType(), err)
			}
			return model.Response{}, err
		}
		return model.NewResponse(cmd, model.PayloadVoid{}), nil
	case nil:
		return model.Response{}, ferrors.New(ferrors.MalformedCommand, "nil command")
	}
	return model.Response{}, ferrors.New(ferrors.MalformedCommand, "unsupported command "+cmd.CommandType())
}
