// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package fake

import (
	"bytes"
	"context"
	"os"
	"testing"

	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLogsAndRecords(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	b := New()
	require.NoError(t, b.Send(context.Background(), model.NewDonate("all", `{"a":1}`)))
	require.NoError(t, b.Send(context.Background(), model.NewExit(0, "Success")))

	assert.Len(t, b.Sent(), 2)
	assert.Contains(t, buf.String(), "donation received")
	assert.Contains(t, buf.String(), "port exited")
}
