// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package visualisation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"footprint/cli/internal/bridge/model"
)

// ErrResolved is returned by view actions once the page has been answered.
var ErrResolved = errors.New("page already answered")

// View kinds as they appear in a serialized tree.
const (
	KindLoading      = "loading"
	KindRadio        = "radio"
	KindFile         = "file"
	KindConfirm      = "confirm"
	KindConsent      = "consent"
	KindInstructions = "instructions"
	KindEnd          = "end"
)

type resolver func(model.Payload) bool

func (r resolver) send(p model.Payload) error {
	if r == nil || !r(p) {
		return ErrResolved
	}
	return nil
}

// View is the translated, displayable form of a page body. Its action methods
// are the only way to answer the render that produced it.
type View interface {
	Kind() string
	isView()
}

// LoadingView is shown between Start and the first render.
type LoadingView struct {
	Text string `json:"text"`
}

// RadioView offers a single choice.
type RadioView struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Items       []model.RadioItem `json:"items"`

	resolve resolver
}

// Choose answers with the item whose value is value.
func (v *RadioView) Choose(value string) error {
	for _, it := range v.Items {
		if it.Value == value {
			return v.resolve.send(model.PayloadString{Value: value})
		}
	}
	return fmt.Errorf("%q is not one of the choices", value)
}

// FileView asks for a file path.
type FileView struct {
	Description string `json:"description"`
	Extensions  string `json:"extensions"`
	SubmitLabel string `json:"submit_label"`
	SkipLabel   string `json:"skip_label"`

	resolve resolver
}

// Submit answers with path.
func (v *FileView) Submit(path string) error {
	if path == "" {
		return errors.New("no file selected")
	}
	return v.resolve.send(model.PayloadString{Value: path})
}

// Skip answers that no file was chosen.
func (v *FileView) Skip() error { return v.resolve.send(model.PayloadFalse{}) }

// ConfirmView asks a yes/no question.
type ConfirmView struct {
	Text   string `json:"text"`
	Ok     string `json:"ok"`
	Cancel string `json:"cancel"`

	resolve resolver
}

// Accept answers PayloadTrue.
func (v *ConfirmView) Accept() error { return v.resolve.send(model.PayloadTrue{}) }

// Decline answers PayloadFalse.
func (v *ConfirmView) Decline() error { return v.resolve.send(model.PayloadFalse{}) }

// TableView is one translated consent table.
type TableView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
}

// ConsentView shows extracted data and asks whether to donate it.
type ConsentView struct {
	Description    string      `json:"description"`
	DonateQuestion string      `json:"donate_question"`
	DonateButton   string      `json:"donate_button"`
	DeclineButton  string      `json:"decline_button"`
	Tables         []TableView `json:"tables"`
	MetaTables     []TableView `json:"meta_tables"`

	resolve resolver
}

// DonatedTable is the donated form of one consent table.
type DonatedTable struct {
	ID   string              `json:"id"`
	Data []map[string]string `json:"data"`
}

// Donate answers with the tables as JSON, leaving out the row indices listed
// per table id in excluded.
func (v *ConsentView) Donate(excluded map[string][]int) error {
	out := make([]DonatedTable, 0, len(v.Tables))
	for _, t := range v.Tables {
		skip := map[int]bool{}
		for _, i := range excluded[t.ID] {
			if i < 0 || i >= len(t.Rows) {
				return fmt.Errorf("table %s has no row %d", t.ID, i)
			}
			skip[i] = true
		}
		rows := make([]map[string]string, 0, len(t.Rows)-len(skip))
		for i, r := range t.Rows {
			if skip[i] {
				continue
			}
			row := make(map[string]string, len(t.Columns))
			for j, col := range t.Columns {
				row[col] = r[j]
			}
			rows = append(rows, row)
		}
		out = append(out, DonatedTable{ID: t.ID, Data: rows})
	}
	for id := range excluded {
		if !v.hasTable(id) {
			return fmt.Errorf("unknown table %s", id)
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return v.resolve.send(model.PayloadJSON{Value: string(b)})
}

// Decline answers PayloadFalse.
func (v *ConsentView) Decline() error { return v.resolve.send(model.PayloadFalse{}) }

func (v *ConsentView) hasTable(id string) bool {
	for _, t := range v.Tables {
		if t.ID == id {
			return true
		}
	}
	return false
}

// InstructionsView explains how to request a data package.
type InstructionsView struct {
	Description   string `json:"description"`
	ImageURL      string `json:"image_url,omitempty"`
	ContinueLabel string `json:"continue_label"`

	resolve resolver
}

// Continue answers PayloadString("continue").
func (v *InstructionsView) Continue() error {
	return v.resolve.send(model.PayloadString{Value: "continue"})
}

// EndView closes the flow.
type EndView struct {
	Title string `json:"title"`
	Text  string `json:"text"`

	resolve resolver
}

// Finish answers PayloadVoid.
func (v *EndView) Finish() error { return v.resolve.send(model.PayloadVoid{}) }

func (*LoadingView) Kind() string      { return KindLoading }
func (*RadioView) Kind() string        { return KindRadio }
func (*FileView) Kind() string         { return KindFile }
func (*ConfirmView) Kind() string      { return KindConfirm }
func (*ConsentView) Kind() string      { return KindConsent }
func (*InstructionsView) Kind() string { return KindInstructions }
func (*EndView) Kind() string          { return KindEnd }

func (*LoadingView) isView()      {}
func (*RadioView) isView()        {}
func (*FileView) isView()         {}
func (*ConfirmView) isView()      {}
func (*ConsentView) isView()      {}
func (*InstructionsView) isView() {}
func (*EndView) isView()          {}

// Tree is everything a surface needs to draw one page.
type Tree struct {
	Locale   string
	Platform string
	Title    string
	Body     View
}

func (t Tree) MarshalJSON() ([]byte, error) {
	kind := ""
	if t.Body != nil {
		kind = t.Body.Kind()
	}
	return json.Marshal(struct {
		Locale   string `json:"locale"`
		Platform string `json:"platform,omitempty"`
		Title    string `json:"title,omitempty"`
		Kind     string `json:"kind"`
		View     View   `json:"view"`
	}{t.Locale, t.Platform, t.Title, kind, t.Body})
}

// Action is a user action addressed to the current view, as sent by a remote surface.
type Action struct {
	Name     string           `json:"action"`
	Value    string           `json:"value,omitempty"`
	Excluded map[string][]int `json:"excluded,omitempty"`
}

// Actions lists the action names each view kind accepts.
var Actions = map[string][]string{
	KindRadio:        {"choose"},
	KindFile:         {"submit", "skip"},
	KindConfirm:      {"accept", "decline"},
	KindConsent:      {"donate", "decline"},
	KindInstructions: {"continue"},
	KindEnd:          {"finish"},
}

// Dispatch applies a to v.
func Dispatch(v View, a Action) error {
	switch view := v.(type) {
	case *RadioView:
		if a.Name == "choose" {
			return view.Choose(a.Value)
		}
	case *FileView:
		switch a.Name {
		case "submit":
			return view.Submit(a.Value)
		case "skip":
			return view.Skip()
		}
	case *ConfirmView:
		switch a.Name {
		case "accept":
			return view.Accept()
		case "decline":
			return view.Decline()
		}
	case *ConsentView:
		switch a.Name {
		case "donate":
			return view.Donate(a.Excluded)
		case "decline":
			return view.Decline()
		}
	case *InstructionsView:
		if a.Name == "continue" {
			return view.Continue()
		}
	case *EndView:
		if a.Name == "finish" {
			return view.Finish()
		}
	case *LoadingView, nil:
		return errors.New("nothing to answer")
	}
	allowed := append([]string(nil), Actions[v.Kind()]...)
	sort.Strings(allowed)
	return fmt.Errorf("action %q not accepted by %s view (want %v)", a.Name, v.Kind(), allowed)
}
