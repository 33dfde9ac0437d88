// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

// Prompt is the body of a donation page.
type Prompt interface {
	PromptType() string
	isPrompt()
}

// RadioItem is one choice of a radio input.
type RadioItem struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// PromptRadioInput asks the user to pick one item. Resolves PayloadString(item value).
type PromptRadioInput struct {
	Title       Translatable `json:"title"`
	Description Translatable `json:"description"`
	Items       []RadioItem  `json:"items"`
}

// PromptFileInput asks for a file on the user's device. Resolves PayloadString(path)
// or PayloadFalse when skipped.
type PromptFileInput struct {
	Description Translatable `json:"description"`
	Extensions  string       `json:"extensions"`
}

// PromptConfirm asks a yes/no question. Ok resolves PayloadTrue, Cancel PayloadFalse.
type PromptConfirm struct {
	Text   Translatable `json:"text"`
	Ok     Translatable `json:"ok"`
	Cancel Translatable `json:"cancel"`
}

// Table is a rectangular block of string cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ConsentTable is one table the user reviews before donating.
type ConsentTable struct {
	ID          string       `json:"id"`
	Title       Translatable `json:"title"`
	Description Translatable `json:"description"`
	Data        Table        `json:"data_frame"`
}

// PromptConsentForm shows extracted data for review. Donating resolves PayloadJSON
// with the kept rows, declining resolves PayloadFalse.
type PromptConsentForm struct {
	Tables         []ConsentTable `json:"tables"`
	MetaTables     []ConsentTable `json:"meta_tables"`
	Description    Translatable   `json:"description"`
	DonateQuestion Translatable   `json:"donate_question"`
	DonateButton   Translatable   `json:"donate_button"`
}

// PromptInstructions shows how to obtain a data package. Resolves PayloadString("continue").
type PromptInstructions struct {
	Description Translatable `json:"description"`
	ImageURL    string       `json:"imageUrl,omitempty"`
}

func (PromptRadioInput) PromptType() string   { return TypePromptRadioInput }
func (PromptFileInput) PromptType() string    { return TypePromptFileInput }
func (PromptConfirm) PromptType() string      { return TypePromptConfirm }
func (PromptConsentForm) PromptType() string  { return TypePromptConsentForm }
func (PromptInstructions) PromptType() string { return TypePromptInstructions }

func (PromptRadioInput) isPrompt()   {}
func (PromptFileInput) isPrompt()    {}
func (PromptConfirm) isPrompt()      {}
func (PromptConsentForm) isPrompt()  {}
func (PromptInstructions) isPrompt() {}

func (p PromptRadioInput) MarshalJSON() ([]byte, error) {
	type plain PromptRadioInput
	return marshalTagged(TypePromptRadioInput, plain(p))
}

func (p PromptFileInput) MarshalJSON() ([]byte, error) {
	type plain PromptFileInput
	return marshalTagged(TypePromptFileInput, plain(p))
}

func (p PromptConfirm) MarshalJSON() ([]byte, error) {
	type plain PromptConfirm
	return marshalTagged(TypePromptConfirm, plain(p))
}

func (p PromptConsentForm) MarshalJSON() ([]byte, error) {
	type plain PromptConsentForm
	if p.MetaTables == nil {
		p.MetaTables = []ConsentTable{}
	}
	return marshalTagged(TypePromptConsentForm, plain(p))
}

func (p PromptInstructions) MarshalJSON() ([]byte, error) {
	type plain PromptInstructions
	return marshalTagged(TypePromptInstructions, plain(p))
}
