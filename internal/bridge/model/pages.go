// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Page is a declarative description of one screen.
type Page interface {
	PageType() string
	isPage()
}

// Header is the title bar of a donation page.
type Header struct {
	Title Translatable `json:"title"`
}

// Footer is the bottom bar of a donation page. It carries no data.
type Footer struct{}

// PageDonation is a step of the donation flow: a header and one prompt.
type PageDonation struct {
	Platform string `json:"platform"`
	Header   Header `json:"header"`
	Body     Prompt `json:"body"`
	Footer   Footer `json:"footer"`
}

// PageEnd is the closing page of the flow.
type PageEnd struct{}

func (PageDonation) PageType() string { return TypePageDonation }
func (PageEnd) PageType() string      { return TypePageEnd }

func (PageDonation) isPage() {}
func (PageEnd) isPage()      {}

func (h Header) MarshalJSON() ([]byte, error) {
	type plain Header
	return marshalTagged(TypeHeader, plain(h))
}

func (f Footer) MarshalJSON() ([]byte, error) { return marshalTagged(TypeFooter, struct{}{}) }

func (p PageDonation) MarshalJSON() ([]byte, error) {
	type plain PageDonation
	return marshalTagged(TypePageDonation, plain(p))
}

func (p PageEnd) MarshalJSON() ([]byte, error) { return marshalTagged(TypePageEnd, struct{}{}) }

func decodePage(data []byte) (Page, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case TypePageDonation:
		var w struct {
			Platform string          `json:"platform"`
			Header   Header          `json:"header"`
			Body     json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		body, err := decodePrompt(w.Body)
		if err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		return PageDonation{Platform: w.Platform, Header: w.Header, Body: body}, nil
	case TypePageEnd:
		return PageEnd{}, nil
	}
	return nil, fmt.Errorf("unknown page type %q", env.Type)
}

func decodePrompt(data []byte) (Prompt, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing prompt")
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case TypePromptRadioInput:
		var p PromptRadioInput
		err := json.Unmarshal(data, &p)
		return p, err
	case TypePromptFileInput:
		var p PromptFileInput
		err := json.Unmarshal(data, &p)
		return p, err
	case TypePromptConfirm:
		var p PromptConfirm
		err := json.Unmarshal(data, &p)
		return p, err
	case TypePromptConsentForm:
		var p PromptConsentForm
		err := json.Unmarshal(data, &p)
		return p, err
	case TypePromptInstructions:
		var p PromptInstructions
		err := json.Unmarshal(data, &p)
		return p, err
	}
	return nil, fmt.Errorf("unknown prompt type %q", env.Type)
}

// ValidatePage checks the constraints a JSON schema cannot express, such as
// table rows matching their columns. It is applied to every page before it is
// rendered, whether it arrived as JSON or was built in Go.
func ValidatePage(p Page) error {
	switch page := p.(type) {
	case PageEnd:
		return nil
	case PageDonation:
		return validatePrompt(page.Body)
	case nil:
		return fmt.Errorf("page is missing")
	}
	return fmt.Errorf("unsupported page %T", p)
}

func validatePrompt(p Prompt) error {
	switch prompt := p.(type) {
	case nil:
		return fmt.Errorf("page body is missing")
	case PromptRadioInput:
		if len(prompt.Items) == 0 {
			return fmt.Errorf("radio input has no items")
		}
		seen := map[int]bool{}
		for _, it := range prompt.Items {
			if strings.TrimSpace(it.Value) == "" {
				return fmt.Errorf("radio item %d has no value", it.ID)
			}
			if seen[it.ID] {
				return fmt.Errorf("radio item id %d is not unique", it.ID)
			}
			seen[it.ID] = true
		}
	case PromptConsentForm:
		seen := map[string]bool{}
		for _, group := range [][]ConsentTable{prompt.Tables, prompt.MetaTables} {
			for _, t := range group {
				if t.ID == "" {
					return fmt.Errorf("consent table without id")
				}
				if seen[t.ID] {
					return fmt.Errorf("consent table id %q is not unique", t.ID)
				}
				seen[t.ID] = true
				if len(t.Data.Columns) == 0 {
					return fmt.Errorf("consent table %q has no columns", t.ID)
				}
				for i, row := range t.Data.Rows {
					if len(row) != len(t.Data.Columns) {
						return fmt.Errorf("consent table %q row %d has %d cells, want %d", t.ID, i, len(row), len(t.Data.Columns))
					}
				}
			}
		}
	case PromptFileInput, PromptConfirm, PromptInstructions:
	default:
		return fmt.Errorf("unsupported prompt %T", p)
	}
	return nil
}
