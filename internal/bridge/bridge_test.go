// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package bridge

import (
	"context"
	"testing"

	"footprint/cli/internal/bridge/fake"
	"footprint/cli/internal/bridge/model"
	ferrors "footprint/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToFake(t *testing.T) {
	b, err := New(context.Background(), Options{})
	require.NoError(t, err)
	f, ok := b.(*fake.Bridge)
	require.True(t, ok)

	require.NoError(t, b.Send(context.Background(), model.NewExit(0, "Success")))
	assert.Len(t, f.Sent(), 1)
	require.NoError(t, b.Close(context.Background()))
	assert.True(t, f.Closed())
}

func TestNewRejectsUnusableOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		kind ferrors.Kind
	}{
		{name: "unknown kind", opts: Options{Kind: "carrier-pigeon"}, kind: ferrors.ConfigInvalid},
		{name: "postgres without dsn", opts: Options{Kind: "postgres"}, kind: ferrors.ConfigInvalid},
		{name: "grpc without target", opts: Options{Kind: "grpc"}, kind: ferrors.BridgeFailed},
		{name: "redis with bad url", opts: Options{Kind: "redis", RedisURL: "http://nope"}, kind: ferrors.BridgeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, ferrors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}
