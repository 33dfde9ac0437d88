// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge defines the one-way channel from the port to the host that
// receives donations. Transports are pluggable: a logging fake, a gRPC client
// stream, a Redis channel and a Postgres table.
package bridge

import (
	"context"
	"fmt"

	"footprint/cli/internal/bridge/fake"
	"footprint/cli/internal/bridge/grpcclient"
	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/bridge/pgstore"
	"footprint/cli/internal/bridge/redisbus"
	ferrors "footprint/cli/internal/errors"
)

// Bridge delivers system commands to the host. Send is fire-and-forget from the
// caller's point of view: the command router answers PayloadVoid once Send returns.
type Bridge interface {
	Send(ctx context.Context, cmd model.CommandSystem) error
	Close(ctx context.Context) error
}

// Options selects and configures a transport.
type Options struct {
	Kind         string
	GRPCTarget   string
	GRPCInsecure bool
	Token        string
	RedisURL     string
	RedisChannel string
	DonationDSN  string
}

// New opens the bridge named by opts.Kind.
func New(ctx context.Context, opts Options) (Bridge, error) {
	switch opts.Kind {
	case "", "fake":
		return fake.New(), nil
	case "grpc":
		c := &grpcclient.Client{Insecure: opts.GRPCInsecure}
		if err := c.Connect(ctx, opts.GRPCTarget, opts.Token); err != nil {
			return nil, ferrors.Wrap(ferrors.BridgeFailed, "connect to "+opts.GRPCTarget, err)
		}
		return c, nil
	case "redis":
		b, err := redisbus.Open(ctx, opts.RedisURL, opts.RedisChannel)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.BridgeFailed, "open redis bus", err)
		}
		return b, nil
	case "postgres":
		if opts.DonationDSN == "" {
			return nil, ferrors.New(ferrors.ConfigInvalid, "postgres bridge needs a donation DSN; run 'footprint connect'")
		}
		s, err := pgstore.Open(ctx, opts.DonationDSN)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.BridgeFailed, "open donation store", err)
		}
		return s, nil
	}
	return nil, ferrors.New(ferrors.ConfigInvalid, fmt.Sprintf("unknown bridge %q", opts.Kind))
}
