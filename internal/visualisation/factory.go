// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package visualisation

import (
	"fmt"

	"footprint/cli/internal/bridge/model"
	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/text"
)

// Copy owned by the surfaces rather than by the processing script.
var (
	loadingText   = text.T("Loading...", "Laden...")
	continueLabel = text.T("Continue", "Doorgaan")
	submitLabel   = text.T("Choose file", "Kies bestand")
	skipLabel     = text.T("Skip", "Overslaan")
	donateLabel   = text.T("Yes, share for research", "Ja, deel voor onderzoek")
	declineLabel  = text.T("No", "Nee")
	endTitle      = text.T("Thank you", "Bedankt")
	endText       = text.T(
		"We hoped you enjoyed inspecting your data, start the port again to inspect another package",
		"We hopen dat u het leuk vond om uw gegevens te bekijken, start de port opnieuw om een ander pakket te bekijken",
	)
)

// Factory turns page descriptions into translated view trees.
type Factory struct{}

// NewFactory returns a factory.
func NewFactory() *Factory { return &Factory{} }

// Loading returns the tree shown while no page has been requested yet.
func (f *Factory) Loading(locale string) Tree {
	return Tree{Locale: locale, Body: &LoadingView{Text: text.Translate(loadingText, locale)}}
}

// Build maps page to a tree whose view answers through resolve. Pages that fail
// validation or have no view produce a MalformedCommand error.
func (f *Factory) Build(page model.Page, locale string, resolve func(model.Payload) bool) (Tree, error) {
	if err := model.ValidatePage(page); err != nil {
		return Tree{}, ferrors.Wrap(ferrors.MalformedCommand, "invalid page", err)
	}
	tr := text.Translator{Locale: locale}

	switch p := page.(type) {
	case model.PageEnd:
		return Tree{Locale: locale, Body: &EndView{Title: tr.T(endTitle), Text: tr.T(endText), resolve: resolve}}, nil
	case model.PageDonation:
		body, err := f.prompt(p.Body, tr, resolve)
		if err != nil {
			return Tree{}, err
		}
		return Tree{Locale: locale, Platform: p.Platform, Title: tr.T(p.Header.Title), Body: body}, nil
	}
	return Tree{}, ferrors.New(ferrors.MalformedCommand, fmt.Sprintf("no view for page %T", page))
}

func (f *Factory) prompt(p model.Prompt, tr text.Translator, resolve resolver) (View, error) {
	switch prompt := p.(type) {
	case model.PromptRadioInput:
		return &RadioView{
			Title:       tr.T(prompt.Title),
			Description: tr.T(prompt.Description),
			Items:       append([]model.RadioItem(nil), prompt.Items...),
			resolve:     resolve,
		}, nil
	case model.PromptFileInput:
		return &FileView{
			Description: tr.T(prompt.Description),
			Extensions:  prompt.Extensions,
			SubmitLabel: tr.T(submitLabel),
			SkipLabel:   tr.T(skipLabel),
			resolve:     resolve,
		}, nil
	case model.PromptConfirm:
		return &ConfirmView{Text: tr.T(prompt.Text), Ok: tr.T(prompt.Ok), Cancel: tr.T(prompt.Cancel), resolve: resolve}, nil
	case model.PromptConsentForm:
		donate := tr.T(prompt.DonateButton)
		if donate == "" {
			donate = tr.T(donateLabel)
		}
		return &ConsentView{
			Description:    tr.T(prompt.Description),
			DonateQuestion: tr.T(prompt.DonateQuestion),
			DonateButton:   donate,
			DeclineButton:  tr.T(declineLabel),
			Tables:         tables(prompt.Tables, tr),
			MetaTables:     tables(prompt.MetaTables, tr),
			resolve:        resolve,
		}, nil
	case model.PromptInstructions:
		return &InstructionsView{
			Description:   tr.T(prompt.Description),
			ImageURL:      prompt.ImageURL,
			ContinueLabel: tr.T(continueLabel),
			resolve:       resolve,
		}, nil
	}
	return nil, ferrors.New(ferrors.MalformedCommand, fmt.Sprintf("no view for prompt %T", p))
}

func tables(in []model.ConsentTable, tr text.Translator) []TableView {
	out := make([]TableView, 0, len(in))
	for _, t := range in {
		rows := make([][]string, len(t.Data.Rows))
		for i, r := range t.Data.Rows {
			rows[i] = append([]string(nil), r...)
		}
		out = append(out, TableView{
			ID:          t.ID,
			Title:       tr.T(t.Title),
			Description: tr.T(t.Description),
			Columns:     append([]string(nil), t.Data.Columns...),
			Rows:        rows,
		})
	}
	return out
}
