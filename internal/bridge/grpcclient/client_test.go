// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grpcclient

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"footprint/cli/internal/bridge/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type host struct {
	mu       sync.Mutex
	received []*structpb.Struct
	auth     []string
}

func (h *host) handle(_ any, stream grpc.ServerStream) error {
	if md, ok := metadata.FromIncomingContext(stream.Context()); ok {
		h.mu.Lock()
		h.auth = md.Get("authorization")
		h.mu.Unlock()
	}
	n := 0
	for {
		msg := &structpb.Struct{}
		err := stream.RecvMsg(msg)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		h.mu.Lock()
		h.received = append(h.received, msg)
		h.mu.Unlock()
		n++
	}
	summary, _ := structpb.NewStruct(map[string]any{"received": n})
	return stream.SendMsg(summary)
}

func startHost(t *testing.T) (*host, *bufconn.Listener) {
	t.Helper()
	h := &host{}
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	desc := StreamDesc
	desc.Handler = h.handle
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "footprint.bridge.Host",
		HandlerType: (*any)(nil),
		Streams:     []grpc.StreamDesc{desc},
	}, struct{}{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return h, lis
}

func dialer(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func TestSendDeliversCommandsAsStructs(t *testing.T) {
	h, lis := startHost(t)
	ctx := context.Background()

	c := &Client{Insecure: true, DialOptions: []grpc.DialOption{dialer(lis)}}
	require.NoError(t, c.Connect(ctx, "passthrough:///bufnet", "tok-1"))

	donate := model.NewDonate("chatgpt_conversations", `[{"role":"user"}]`)
	exit := model.NewExit(0, "Success")
	require.NoError(t, c.Send(ctx, donate))
	require.NoError(t, c.Send(ctx, exit))
	require.NoError(t, c.Close(ctx))

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.received, 2)
	first := h.received[0].AsMap()
	assert.Equal(t, model.TypeCommandSystemDonate, first["__type__"])
	assert.Equal(t, donate.ID, first["id"])
	assert.Equal(t, "chatgpt_conversations", first["key"])
	second := h.received[1].AsMap()
	assert.Equal(t, model.TypeCommandSystemExit, second["__type__"])
	assert.Equal(t, float64(0), second["code"])
	assert.Equal(t, []string{"Bearer tok-1"}, h.auth)
}

func TestSendBeforeConnect(t *testing.T) {
	c := &Client{}
	err := c.Send(context.Background(), model.NewExit(0, "Success"))
	assert.Error(t, err)
	assert.NoError(t, c.Close(context.Background()))
}

func TestConnectNeedsTarget(t *testing.T) {
	c := &Client{Insecure: true}
	assert.Error(t, c.Connect(context.Background(), "", ""))
}
