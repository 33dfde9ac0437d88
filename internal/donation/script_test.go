// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package donation

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"footprint/cli/internal/bridge/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conversationsJSON = `[
  {
    "title": "Trip planning",
    "mapping": {
      "root": {"id": "root", "message": null, "children": ["m1"]},
      "m1": {
        "id": "m1",
        "message": {
          "author": {"role": "system"},
          "content": {"parts": ["hidden prompt"]},
          "metadata": {"is_visually_hidden_from_conversation": true}
        }
      },
      "m2": {
        "id": "m2",
        "message": {
          "author": {"role": "user"},
          "create_time": 1700000000.5,
          "content": {"parts": ["Where to ", "go?"]}
        }
      },
      "m3": {
        "id": "m3",
        "message": {
          "author": {"role": "assistant"},
          "create_time": 1700000060,
          "content": {"parts": ["Lisbon."]},
          "metadata": {"model_slug": "gpt-4o"}
        }
      }
    }
  }
]`

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func chatGPTZip(t *testing.T) string {
	return writeZip(t, map[string]string{
		"export/conversations.json": conversationsJSON,
		"export/user.json":          `{"email":"someone@example.com","plus":false}`,
		"export/chat.html":          "<html></html>",
	})
}

func TestValidateZip(t *testing.T) {
	v := ValidateZip(chatGPTZip(t))
	assert.Equal(t, StatusValid, v.Status.ID)
	require.NotNil(t, v.Category)
	assert.Equal(t, "json", v.Category.ID)

	other := ValidateZip(writeZip(t, map[string]string{"posts.json": "[]"}))
	assert.Equal(t, StatusBadZip, other.Status.ID)

	notZip := filepath.Join(t.TempDir(), "x.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0o600))
	assert.Equal(t, StatusBadZip, ValidateZip(notZip).Status.ID)
}

func TestConversations(t *testing.T) {
	table, err := Conversations(chatGPTZip(t))
	require.NoError(t, err)

	assert.Equal(t, conversationColumns, table.Columns)
	assert.Equal(t, [][]string{
		{"Trip planning", "user", "Where to go?", "", "2023-11-14 22:13:20"},
		{"Trip planning", "assistant", "Lisbon.", "gpt-4o", "2023-11-14 22:14:20"},
	}, table.Rows)
}

func TestConversationsMissingFile(t *testing.T) {
	_, err := Conversations(writeZip(t, map[string]string{"user.json": "{}"}))
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	table, err := Dump(writeZip(t, map[string]string{
		"user.json":   `{"email":"someone@example.com","plus":false}`,
		"broken.json": `{`,
		"chat.html":   "<html></html>",
	}))
	require.NoError(t, err)
	assert.Equal(t, dumpColumns, table.Columns)
	assert.Equal(t, [][]string{
		{"user.json", "email", "someone@example.com"},
		{"user.json", "plus", "false"},
	}, table.Rows)
}

// scriptedPort answers each render with the next queued answer for that page's body.
type scriptedPort struct {
	t       *testing.T
	answers []func(model.Page) model.Payload
	pages   []model.Page
	donated map[string]string
	exits   []model.CommandSystemExit
}

func (p *scriptedPort) Render(_ context.Context, page model.Page) (model.Payload, error) {
	require.NoError(p.t, model.ValidatePage(page))
	p.pages = append(p.pages, page)
	if len(p.answers) == 0 {
		return model.PayloadVoid{}, nil
	}
	next := p.answers[0]
	p.answers = p.answers[1:]
	return next(page), nil
}

func (p *scriptedPort) Donate(_ context.Context, key, jsonString string) error {
	if p.donated == nil {
		p.donated = map[string]string{}
	}
	p.donated[key] = jsonString
	return nil
}

func (p *scriptedPort) Exit(_ context.Context, code int, info string) error {
	p.exits = append(p.exits, model.NewExit(code, info))
	return nil
}

func answer(pl model.Payload) func(model.Page) model.Payload {
	return func(model.Page) model.Payload { return pl }
}

func body(t *testing.T, p model.Page) model.Prompt {
	t.Helper()
	d, ok := p.(model.PageDonation)
	require.True(t, ok, "expected a donation page, got %T", p)
	return d.Body
}

func TestRunOtherPlatformGoesStraightToEnd(t *testing.T) {
	port := &scriptedPort{t: t, answers: []func(model.Page) model.Payload{answer(model.PayloadString{Value: "YouTube"})}}
	require.NoError(t, Run(context.Background(), port))

	require.Len(t, port.pages, 2)
	menu, ok := body(t, port.pages[0]).(model.PromptRadioInput)
	require.True(t, ok)
	assert.Len(t, menu.Items, len(Platforms))
	assert.Equal(t, model.PageEnd{}, port.pages[1])
	assert.Equal(t, []model.CommandSystemExit{{ID: port.exits[0].ID, Code: 0, Info: "Success"}}, port.exits)
	assert.Empty(t, port.donated)
}

func TestRunChatGPTDonatesBothTables(t *testing.T) {
	zipPath := chatGPTZip(t)
	port := &scriptedPort{t: t, answers: []func(model.Page) model.Payload{
		answer(model.PayloadString{Value: "ChatGPT"}),
		answer(model.PayloadString{Value: "continue"}),
		answer(model.PayloadString{Value: zipPath}),
		answer(model.PayloadJSON{Value: `[{"id":"all","data":[]}]`}),
		answer(model.PayloadJSON{Value: `[{"id":"chatgpt_conversations","data":[]}]`}),
	}}
	require.NoError(t, Run(context.Background(), port))

	require.Len(t, port.pages, 6)
	assert.IsType(t, model.PromptInstructions{}, body(t, port.pages[1]))
	file, ok := body(t, port.pages[2]).(model.PromptFileInput)
	require.True(t, ok)
	assert.Equal(t, "application/zip", file.Extensions)

	dump := body(t, port.pages[3]).(model.PromptConsentForm)
	require.Len(t, dump.Tables, 1)
	assert.Equal(t, "all", dump.Tables[0].ID)
	convs := body(t, port.pages[4]).(model.PromptConsentForm)
	assert.Equal(t, "chatgpt_conversations", convs.Tables[0].ID)
	assert.Len(t, convs.Tables[0].Data.Rows, 2)

	assert.Equal(t, map[string]string{
		KeyChatGPTAll:           `[{"id":"all","data":[]}]`,
		KeyChatGPTConversations: `[{"id":"chatgpt_conversations","data":[]}]`,
	}, port.donated)
	assert.Len(t, port.exits, 1)
}

func TestRunChatGPTRetryThenGiveUp(t *testing.T) {
	bad := writeZip(t, map[string]string{"posts.json": "[]"})
	port := &scriptedPort{t: t, answers: []func(model.Page) model.Payload{
		answer(model.PayloadString{Value: "ChatGPT"}),
		answer(model.PayloadString{Value: "continue"}),
		answer(model.PayloadString{Value: bad}),
		answer(model.PayloadTrue{}),
		answer(model.PayloadString{Value: bad}),
		answer(model.PayloadFalse{}),
	}}
	require.NoError(t, Run(context.Background(), port))

	require.Len(t, port.pages, 7)
	assert.IsType(t, model.PromptConfirm{}, body(t, port.pages[3]))
	assert.IsType(t, model.PromptFileInput{}, body(t, port.pages[4]))
	assert.IsType(t, model.PromptConfirm{}, body(t, port.pages[5]))
	assert.Equal(t, model.PageEnd{}, port.pages[6])
	assert.Empty(t, port.donated)
}

func TestRunChatGPTSkipAndDecline(t *testing.T) {
	port := &scriptedPort{t: t, answers: []func(model.Page) model.Payload{
		answer(model.PayloadString{Value: "ChatGPT"}),
		answer(model.PayloadString{Value: "continue"}),
		answer(model.PayloadFalse{}),
	}}
	require.NoError(t, Run(context.Background(), port))
	assert.Len(t, port.pages, 4)

	port = &scriptedPort{t: t, answers: []func(model.Page) model.Payload{
		answer(model.PayloadString{Value: "ChatGPT"}),
		answer(model.PayloadString{Value: "continue"}),
		answer(model.PayloadString{Value: chatGPTZip(t)}),
		answer(model.PayloadFalse{}),
		answer(model.PayloadFalse{}),
	}}
	require.NoError(t, Run(context.Background(), port))
	assert.Empty(t, port.donated)
	assert.Len(t, port.exits, 1)
}
