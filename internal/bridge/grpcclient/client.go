// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient provides a gRPC-backed implementation of the Bridge interface.
// System commands travel to the donation host over a single client stream as
// google.protobuf.Struct messages, so the host needs no generated code of ours.
// The host answers once, when the stream is closed, with a summary Struct.
package grpcclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/logging"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// SendMethod is the full name of the host's client-streaming method.
const SendMethod = "/footprint.bridge.Host/Send"

// StreamDesc describes SendMethod for both client and server.
var StreamDesc = grpc.StreamDesc{StreamName: "Send", ClientStreams: true}

// Client implements bridge.Bridge over the Host.Send client stream.
type Client struct {
	// Insecure disables TLS, for hosts on localhost.
	Insecure bool
	// DialOptions are appended to the defaults (tests pass a bufconn dialer).
	DialOptions []grpc.DialOption

	mu     sync.Mutex
	conn   *grpc.ClientConn
	stream *grpc.GenericClientStream[structpb.Struct, structpb.Struct]
	cancel context.CancelFunc
	sent   int

	accessToken string
}

// Connect creates the connection and opens the Send stream. The access token is
// kept in memory only and sent as bearer metadata.
func (c *Client) Connect(ctx context.Context, addr string, accessToken string) error {
	if addr == "" {
		return errors.New("grpc target is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.accessToken = accessToken

	target := addr
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	} else if !c.Insecure {
		target = net.JoinHostPort(addr, "443")
	}

	var creds credentials.TransportCredentials
	if c.Insecure {
		creds = insecure.NewCredentials()
	} else {
		creds = credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	}
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, c.DialOptions...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return err
	}

	// The stream outlives ctx; it is torn down by Close.
	sctx, cancel := context.WithCancel(context.Background())
	if accessToken != "" {
		sctx = metadata.AppendToOutgoingContext(sctx, "authorization", "Bearer "+accessToken)
	}
	cs, err := conn.NewStream(sctx, &StreamDesc, SendMethod)
	if err != nil {
		cancel()
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.stream = &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: cs}
	c.mu.Unlock()
	return nil
}

// Send converts cmd into a Struct and writes it to the stream.
func (c *Client) Send(ctx context.Context, cmd model.CommandSystem) error {
	msg, err := toStruct(cmd)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return errors.New("stream not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.stream.Send(msg); err != nil {
		if st, ok := status.FromError(err); ok {
			return errors.New(st.Code().String() + ": " + st.Message())
		}
		return err
	}
	c.sent++
	return nil
}

// Close half-closes the stream, waits for the host summary and releases the connection.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accessToken = ""
	var err error
	if c.stream != nil {
		var summary *structpb.Struct
		summary, err = c.stream.CloseAndRecv()
		if err == nil {
			logging.With("grpcclient").Debugf("host acknowledged %v of %d commands", summary.GetFields()["received"].GetNumberValue(), c.sent)
		}
		c.stream = nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		if cerr := c.conn.Close(); err == nil {
			err = cerr
		}
		c.conn = nil
	}
	return err
}

func toStruct(cmd model.CommandSystem) (*structpb.Struct, error) {
	data, err := model.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
