// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package text

import (
	"testing"

	"footprint/cli/internal/bridge/model"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	greeting := T("Thank you", "Bedankt")

	tests := []struct {
		name   string
		t      model.Translatable
		locale string
		want   string
	}{
		{name: "exact", t: greeting, locale: "nl", want: "Bedankt"},
		{name: "regional variant", t: greeting, locale: "nl-BE", want: "Bedankt"},
		{name: "unknown falls back to english", t: greeting, locale: "ja", want: "Thank you"},
		{name: "garbage locale", t: greeting, locale: "!!", want: "Thank you"},
		{name: "no english uses first sorted", t: model.Translatable{Translations: map[string]string{"nl": "Hallo", "fr": "Bonjour"}}, locale: "ja", want: "Bonjour"},
		{name: "empty", t: model.Translatable{}, locale: "en", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.t, tt.locale))
		})
	}
}

func TestBundleCopies(t *testing.T) {
	b := NewBundle().Add("en", "Continue")
	first := b.Translatable()
	b.Add("en", "Next")

	assert.Equal(t, "Continue", first.Translations["en"])
	assert.Equal(t, "Next", Translator{Locale: "en"}.T(b.Translatable()))
}
