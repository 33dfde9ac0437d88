// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package visualisation

import (
	"context"
	"errors"
	"testing"
	"time"

	"footprint/cli/internal/bridge/model"
	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instructionsPage() model.PageDonation {
	return model.PageDonation{
		Platform: "ChatGPT",
		Header:   model.Header{Title: text.T("Download your data", "Download uw gegevens")},
		Body:     model.PromptInstructions{Description: text.T("Open settings", "Open instellingen")},
	}
}

// renderAsync runs Render in a goroutine and returns a channel with its result.
func renderAsync(e *Engine, ctx context.Context, cmd model.CommandUIRender) <-chan struct {
	resp model.Response
	err  error
} {
	out := make(chan struct {
		resp model.Response
		err  error
	}, 1)
	go func() {
		resp, err := e.Render(ctx, cmd)
		out <- struct {
			resp model.Response
			err  error
		}{resp, err}
	}()
	return out
}

func waitRendered(t *testing.T, s *recordingSurface) Tree {
	t.Helper()
	select {
	case tree := <-s.rendered:
		return tree
	case <-time.After(2 * time.Second):
		t.Fatal("surface was never rendered")
	}
	return Tree{}
}

func TestStartShowsLoadingAndIsIdempotent(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)

	require.NoError(t, e.Start(s, "nl"))
	require.NoError(t, e.Start(s, "nl"))

	tree := waitRendered(t, s)
	loading, ok := tree.Body.(*LoadingView)
	require.True(t, ok)
	assert.Equal(t, "Laden...", loading.Text)
	assert.Len(t, s.trees, 1)
}

func TestInstructionsContinueResolvesString(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)
	require.NoError(t, e.Start(s, "en"))
	waitRendered(t, s)

	cmd := model.NewRender(instructionsPage())
	result := renderAsync(e, context.Background(), cmd)

	tree := waitRendered(t, s)
	assert.Equal(t, "Download your data", tree.Title)
	view, ok := tree.Body.(*InstructionsView)
	require.True(t, ok)
	assert.Equal(t, "Continue", view.ContinueLabel)
	require.NoError(t, view.Continue())

	r := <-result
	require.NoError(t, r.err)
	assert.Equal(t, cmd, r.resp.Command)
	assert.Equal(t, model.PayloadString{Value: "continue"}, r.resp.Payload)
	assert.ErrorIs(t, view.Continue(), ErrResolved)
	assert.False(t, e.Pending())
}

func TestStartThenTerminateWithoutRender(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)
	require.NoError(t, e.Start(s, "en"))
	require.NoError(t, e.Terminate())
	require.NoError(t, e.Terminate())
	assert.Equal(t, 1, s.unmounted)

	_, err := e.Render(context.Background(), model.NewRender(model.PageEnd{}))
	assert.True(t, ferrors.IsKind(err, ferrors.NoActiveSurface), "got %v", err)
	assert.True(t, ferrors.IsKind(e.Start(s, "en"), ferrors.NoActiveSurface))
}

func TestRenderBeforeStart(t *testing.T) {
	_, err := NewEngine(nil).Render(context.Background(), model.NewRender(model.PageEnd{}))
	assert.True(t, ferrors.IsKind(err, ferrors.NoActiveSurface), "got %v", err)
}

func TestOverlappingRenderIsRejected(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)
	require.NoError(t, e.Start(s, "en"))
	waitRendered(t, s)

	first := model.NewRender(instructionsPage())
	firstResult := renderAsync(e, context.Background(), first)
	tree := waitRendered(t, s)

	_, err := e.Render(context.Background(), model.NewRender(model.PageEnd{}))
	assert.True(t, ferrors.IsKind(err, ferrors.AlreadyPending), "got %v", err)
	select {
	case <-firstResult:
		t.Fatal("first render resolved without an answer")
	default:
	}

	require.NoError(t, tree.Body.(*InstructionsView).Continue())
	r := <-firstResult
	require.NoError(t, r.err)
	assert.Equal(t, first, r.resp.Command)

	second := model.NewRender(model.PageEnd{})
	secondResult := renderAsync(e, context.Background(), second)
	end := waitRendered(t, s).Body.(*EndView)
	require.NoError(t, end.Finish())
	r = <-secondResult
	require.NoError(t, r.err)
	assert.Equal(t, model.PayloadVoid{}, r.resp.Payload)
}

func TestTerminateRejectsPendingRender(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)
	require.NoError(t, e.Start(s, "en"))
	waitRendered(t, s)

	result := renderAsync(e, context.Background(), model.NewRender(instructionsPage()))
	tree := waitRendered(t, s)
	require.NoError(t, e.Terminate())

	r := <-result
	assert.True(t, ferrors.IsKind(r.err, ferrors.Terminated), "got %v", r.err)
	assert.ErrorIs(t, tree.Body.(*InstructionsView).Continue(), ErrResolved)
	assert.Equal(t, 1, s.unmounted)
}

func TestMalformedPageRendersNothing(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)
	require.NoError(t, e.Start(s, "en"))
	waitRendered(t, s)

	bad := []model.Page{
		nil,
		model.PageDonation{},
		model.PageDonation{Body: model.PromptRadioInput{}},
		model.PageDonation{Body: model.PromptConsentForm{Tables: []model.ConsentTable{{ID: "t", Data: model.Table{Columns: []string{"a"}, Rows: [][]string{{"1", "2"}}}}}}},
	}
	for _, page := range bad {
		assert.NotPanics(t, func() {
			_, err := e.Render(context.Background(), model.CommandUIRender{ID: "x", Page: page})
			assert.True(t, ferrors.IsKind(err, ferrors.MalformedCommand), "got %v", err)
		})
	}
	assert.Len(t, s.trees, 1, "surface must keep the loading view")
	assert.False(t, e.Pending())
}

func TestCancelledContextFreesSlot(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)
	require.NoError(t, e.Start(s, "en"))
	waitRendered(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	result := renderAsync(e, ctx, model.NewRender(instructionsPage()))
	tree := waitRendered(t, s)
	cancel()

	r := <-result
	assert.True(t, errors.Is(r.err, context.Canceled), "got %v", r.err)
	assert.False(t, e.Pending())
	assert.ErrorIs(t, tree.Body.(*InstructionsView).Continue(), ErrResolved)

	s.auto = true
	resp, err := e.Render(context.Background(), model.NewRender(model.PageEnd{}))
	require.NoError(t, err)
	assert.Equal(t, model.PayloadVoid{}, resp.Payload)
}

func TestSurfaceFailureIsReported(t *testing.T) {
	s := newSurface(false)
	e := NewEngine(nil)
	require.NoError(t, e.Start(s, "en"))
	waitRendered(t, s)

	s.failNext = true
	_, err := e.Render(context.Background(), model.NewRender(model.PageEnd{}))
	assert.True(t, ferrors.IsKind(err, ferrors.RenderFailed), "got %v", err)
	assert.False(t, e.Pending())
}
