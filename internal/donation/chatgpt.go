// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package donation

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/logging"
	"footprint/cli/internal/text"
)

const chatGPT = "ChatGPT"

// Status codes of a validated data package.
const (
	StatusValid  = 0
	StatusBadZip = 1
)

// StatusCode describes the outcome of validating a data package.
type StatusCode struct {
	ID      int
	Message string
}

var statusCodes = map[int]StatusCode{
	StatusValid:  {ID: StatusValid, Message: "Valid zip"},
	StatusBadZip: {ID: StatusBadZip, Message: "Bad zipfile"},
}

// Category is a known layout of a platform's data package.
type Category struct {
	ID         string
	KnownFiles []string
}

// ChatGPTCategories lists the ChatGPT export layouts we recognise.
var ChatGPTCategories = []Category{{
	ID:         "json",
	KnownFiles: []string{"chat.html", "conversations.json", "message_feedback.json", "model_comparisons.json", "user.json"},
}}

// Validation is the result of ValidateZip.
type Validation struct {
	Status   StatusCode
	Category *Category
	Files    []string
}

// ValidateZip checks that the zip at file looks like a ChatGPT export: it has to
// open as a zip and contain at least one known file.
func ValidateZip(file string) Validation {
	v := Validation{Status: statusCodes[StatusBadZip]}
	zr, err := zip.OpenReader(file)
	if err != nil {
		logging.With("chatgpt").Debugf("open %s: %v", file, err)
		return v
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := path.Base(f.Name)
		if ext := path.Ext(name); ext == ".html" || ext == ".json" {
			v.Files = append(v.Files, name)
		}
	}
	if c := inferCategory(v.Files, ChatGPTCategories); c != nil {
		v.Category = c
		v.Status = statusCodes[StatusValid]
	}
	return v
}

// inferCategory picks the category sharing the most files with files.
func inferCategory(files []string, categories []Category) *Category {
	present := map[string]bool{}
	for _, f := range files {
		present[f] = true
	}
	var best *Category
	bestHits := 0
	for i := range categories {
		hits := 0
		for _, k := range categories[i].KnownFiles {
			if present[k] {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = &categories[i], hits
		}
	}
	return best
}

var conversationColumns = []string{"conversation title", "role", "message", "model", "time"}

// Conversations extracts one row per visible turn of conversations.json. Turns
// without a role are left out.
func Conversations(file string) (model.Table, error) {
	data, err := readZipFile(file, "conversations.json")
	if err != nil {
		return model.Table{}, err
	}
	var conversations []struct {
		Title   *string         `json:"title"`
		Mapping json.RawMessage `json:"mapping"`
	}
	if err := json.Unmarshal(data, &conversations); err != nil {
		return model.Table{}, fmt.Errorf("conversations.json: %w", err)
	}

	t := model.Table{Columns: conversationColumns, Rows: [][]string{}}
	for _, c := range conversations {
		title := ""
		if c.Title != nil {
			title = *c.Title
		}
		if len(c.Mapping) == 0 || string(c.Mapping) == "null" {
			continue
		}
		turns, err := objectEntries(c.Mapping)
		if err != nil {
			return model.Table{}, fmt.Errorf("conversation %q: %w", title, err)
		}
		for _, turn := range turns {
			flat, err := Flatten(turn)
			if err != nil {
				return model.Table{}, fmt.Errorf("conversation %q: %w", title, err)
			}
			if flat.FindItem("is_visually_hidden_from_conversation") == "true" {
				continue
			}
			role := flat.FindItem("role")
			if role == "" {
				continue
			}
			t.Rows = append(t.Rows, []string{
				title,
				role,
				strings.Join(flat.FindItems("part"), ""),
				flat.FindItem("-model_slug"),
				ConvertUnixTimestamp(flat.FindItem("create_time")),
			})
		}
	}
	return t, nil
}

var dumpColumns = []string{"file name", "key", "value"}

// Dump flattens every JSON file in the zip into file name, key and value rows.
func Dump(file string) (model.Table, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return model.Table{}, err
	}
	defer zr.Close()

	t := model.Table{Columns: dumpColumns, Rows: [][]string{}}
	for _, f := range zr.File {
		if path.Ext(f.Name) != ".json" {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return model.Table{}, err
		}
		flat, err := Flatten(data)
		if err != nil {
			logging.With("chatgpt").Warnf("skipping %s: %v", f.Name, err)
			continue
		}
		name := path.Base(f.Name)
		for _, e := range flat {
			t.Rows = append(t.Rows, []string{name, e.Key, e.Value})
		}
	}
	return t, nil
}

func readZipFile(file, name string) ([]byte, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if path.Base(f.Name) == name {
			return readEntry(f)
		}
	}
	return nil, fmt.Errorf("%s not found in zip", name)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

var (
	chatGPTInstructions = text.T(
		"In ChatGPT, open Settings, then Data controls, and choose Export data. You will receive an email with a link to a zip file. Download that file to this device and continue.",
		"Open in ChatGPT de Instellingen, ga naar Gegevensbeheer en kies Gegevens exporteren. U ontvangt een e-mail met een link naar een zip-bestand. Download dat bestand naar dit apparaat en ga verder.",
	)
	instructionsHeader = text.T("Download your ChatGPT data", "Download uw ChatGPT gegevens")
	submitFileHeader   = text.T("Select your ChatGPT file", "Selecteer uw ChatGPT bestand")
	reviewDataHeader   = text.T("Your ChatGPT data", "Uw ChatGPT gegevens")
	retryHeader        = text.T("Try again", "Probeer opnieuw")

	conversationsTitle = text.T("Your conversations with ChatGPT", "Uw gesprekken met ChatGPT")
	dumpTitle          = text.T("Everything in your ChatGPT files", "Alles in uw ChatGPT bestanden")

	consentDescription = text.T(
		"Below you will find meta data about the contents of the zip file you submitted. Please review the data carefully and remove any information you do not wish to share. If you would like to share this data, click on the 'Yes, share for research' button at the bottom of this page. By sharing this data, you contribute to research <insert short explanation about your research here>.",
		"Hieronder ziet u gegevens over de zip die u heeft ingediend. Bekijk de gegevens zorgvuldig, en verwijder de gegevens die u niet wilt delen. Als u deze gegevens wilt delen, klik dan op de knop 'Ja, deel voor onderzoek' onderaan deze pagina. Door deze gegevens te delen draagt u bij aan onderzoek over <korte zin over het onderzoek>.",
	)
)

// Donation keys of the two ChatGPT consent forms.
const (
	KeyChatGPTAll           = "chatgpt_all"
	KeyChatGPTConversations = "chatgpt_conversations"
)

// chatGPTFlow asks for the export, validates it and offers both extractions
// for donation.
func chatGPTFlow(ctx context.Context, port Port) error {
	log := logging.With("chatgpt")

	if _, err := port.Render(ctx, page(chatGPT, instructionsHeader, instructionsPrompt(chatGPTInstructions, ""))); err != nil {
		return err
	}

	var file string
	for {
		log.Infof("prompt for file for %s", chatGPT)
		result, err := port.Render(ctx, page(chatGPT, submitFileHeader, filePrompt("application/zip")))
		if err != nil {
			return err
		}
		chosen, ok := result.(model.PayloadString)
		if !ok {
			log.Info("skipped at file selection")
			return nil
		}
		if v := ValidateZip(chosen.Value); v.Status.ID == StatusValid {
			file = chosen.Value
			break
		}

		log.Infof("not a valid %s zip, asking to retry", chatGPT)
		retry, err := port.Render(ctx, page(chatGPT, retryHeader, retryConfirmation(chatGPT)))
		if err != nil {
			return err
		}
		if _, again := retry.(model.PayloadTrue); !again {
			log.Info("skipped during retry")
			return nil
		}
	}

	var dump, conversations []model.ConsentTable
	if t, err := Dump(file); err != nil {
		log.Errorf("dump extraction: %v", err)
	} else if len(t.Rows) > 0 {
		dump = []model.ConsentTable{{ID: "all", Title: dumpTitle, Description: text.T("", ""), Data: t}}
	}
	if t, err := Conversations(file); err != nil {
		log.Errorf("conversation extraction: %v", err)
	} else if len(t.Rows) > 0 {
		conversations = []model.ConsentTable{{ID: "chatgpt_conversations", Title: conversationsTitle, Description: text.T("", ""), Data: t}}
	}

	if dump != nil {
		if err := consent(ctx, port, KeyChatGPTAll, dump); err != nil {
			return err
		}
	}
	if conversations != nil {
		log.Infof("prompt consent for %s", chatGPT)
		if err := consent(ctx, port, KeyChatGPTConversations, conversations); err != nil {
			return err
		}
	}
	return nil
}

// consent shows tables for review and donates what the user kept under key.
func consent(ctx context.Context, port Port, key string, tables []model.ConsentTable) error {
	result, err := port.Render(ctx, page(chatGPT, reviewDataHeader, consentPrompt(tables, consentDescription)))
	if err != nil {
		return err
	}
	if kept, ok := result.(model.PayloadJSON); ok {
		return port.Donate(ctx, key, kept.Value)
	}
	logging.With("chatgpt").WithField("key", key).Info("donation declined")
	return nil
}
