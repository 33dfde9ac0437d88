// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package donation is the built-in donation flow: the user picks a platform,
// supplies its data package, reviews what was extracted and decides what to
// share. All of it runs inside a processing worker and reaches the user only
// through render commands.
package donation

import (
	"context"
	"fmt"

	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/logging"
	"footprint/cli/internal/processing"
	"footprint/cli/internal/text"
)

// Port is what the flow needs from its host.
type Port interface {
	Render(ctx context.Context, page model.Page) (model.Payload, error)
	Donate(ctx context.Context, key, jsonString string) error
	Exit(ctx context.Context, code int, info string) error
}

// Platforms offered on the selection menu, in order.
var Platforms = []string{"Facebook", "YouTube", chatGPT, "Whatever"}

var (
	headerText = text.T("Data donation for educational purposes", "Datadonatie voor educatieve doeleinden")

	menuTitle       = text.T("Select your platform", "Selecteer uw platform")
	menuDescription = text.T(
		"Welcome to the data donation task, a tool dedicated to visualizing individuals' data packages obtained from major platforms for educational purposes.\nIt offers concise and straightforward visual representations of the data collected, allowing you to gain insight into your digital footprint. Explore your online activities with the data donation task and enhance your understanding of data privacy and digital literacy.\nNote: At no point in the process does your data leave your own device unless you choose to share it.",
		"Welkom bij de datadonatietaak, een hulpmiddel om datapakketten van grote platformen voor educatieve doeleinden zichtbaar te maken.\nHet biedt beknopte en eenvoudige weergaven van de verzamelde gegevens, zodat u inzicht krijgt in uw digitale voetafdruk. Verken uw online activiteiten en vergroot uw begrip van privacy en digitale geletterdheid.\nLet op: uw gegevens verlaten op geen enkel moment uw eigen apparaat, tenzij u ervoor kiest ze te delen.",
	)
)

// Script adapts Run to a processing worker.
func Script() processing.Script {
	return func(ctx context.Context, port *processing.Port) error { return Run(ctx, port) }
}

// Run executes the whole flow: platform menu, the chosen platform's flow,
// exit notification and the end page.
func Run(ctx context.Context, port Port) error {
	result, err := port.Render(ctx, page("", headerText, platformMenu()))
	if err != nil {
		return err
	}

	if chosen, ok := result.(model.PayloadString); ok {
		logging.With("donation").WithField("platform", chosen.Value).Info("platform selected")
		if chosen.Value == chatGPT {
			if err := chatGPTFlow(ctx, port); err != nil {
				return fmt.Errorf("%s flow: %w", chatGPT, err)
			}
		}
	}

	if err := port.Exit(ctx, 0, "Success"); err != nil {
		return err
	}
	_, err = port.Render(ctx, model.PageEnd{})
	return err
}

func platformMenu() model.PromptRadioInput {
	items := make([]model.RadioItem, len(Platforms))
	for i, p := range Platforms {
		items[i] = model.RadioItem{ID: i + 1, Value: p}
	}
	return model.PromptRadioInput{Title: menuTitle, Description: menuDescription, Items: items}
}

func page(platform string, header model.Translatable, body model.Prompt) model.PageDonation {
	return model.PageDonation{
		Platform: platform,
		Header:   model.Header{Title: header},
		Body:     body,
		Footer:   model.Footer{},
	}
}

func filePrompt(extensions string) model.PromptFileInput {
	return model.PromptFileInput{
		Description: text.T(
			"Please follow the download instructions from the previous page and choose the file that you stored on your device.",
			"Volg de download instructies van de vorige pagina en kies het bestand dat u opgeslagen heeft op uw apparaat.",
		),
		Extensions: extensions,
	}
}

func retryConfirmation(platform string) model.PromptConfirm {
	return model.PromptConfirm{
		Text: text.T(
			fmt.Sprintf("Unfortunately, we could not process your %s file. If you are sure that you selected the correct file, press Continue. To select a different file, press Try again.", platform),
			fmt.Sprintf("Helaas, kunnen we uw %s bestand niet verwerken. Weet u zeker dat u het juiste bestand heeft gekozen? Ga dan verder. Probeer opnieuw als u een ander bestand wilt kiezen.", platform),
		),
		Ok:     text.T("Try again", "Probeer opnieuw"),
		Cancel: text.T("Continue", "Verder"),
	}
}

func consentPrompt(tables []model.ConsentTable, description model.Translatable) model.PromptConsentForm {
	return model.PromptConsentForm{
		Tables:         tables,
		MetaTables:     []model.ConsentTable{},
		Description:    description,
		DonateQuestion: text.T("Do you want to share this data for research?", "Wilt u deze gegevens delen voor onderzoek?"),
		DonateButton:   text.T("Yes, share for research", "Ja, deel voor onderzoek"),
	}
}

func instructionsPrompt(description model.Translatable, imageURL string) model.PromptInstructions {
	return model.PromptInstructions{Description: description, ImageURL: imageURL}
}
