// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package text builds and resolves translatable copy.
package text

import (
	"sort"

	"footprint/cli/internal/bridge/model"

	"golang.org/x/text/language"
)

// FallbackLocale is preferred whenever the requested locale has no match.
const FallbackLocale = "en"

// Bundle builds a Translatable one locale at a time.
type Bundle struct {
	translations map[string]string
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{translations: map[string]string{}}
}

// Add sets the text for locale, replacing any earlier value.
func (b *Bundle) Add(locale, text string) *Bundle {
	b.translations[locale] = text
	return b
}

// Translatable returns a copy of the collected translations.
func (b *Bundle) Translatable() model.Translatable {
	out := make(map[string]string, len(b.translations))
	for k, v := range b.translations {
		out[k] = v
	}
	return model.Translatable{Translations: out}
}

// T is shorthand for the English/Dutch pair every piece of copy carries.
func T(en, nl string) model.Translatable {
	return NewBundle().Add("en", en).Add("nl", nl).Translatable()
}

// Translate picks the translation that best matches locale. Regional variants
// resolve to their base language ("nl-BE" reads "nl"). Without a match the
// English text is used, and without English the first locale in sorted order.
func Translate(t model.Translatable, locale string) string {
	if len(t.Translations) == 0 {
		return ""
	}
	if s, ok := t.Translations[locale]; ok {
		return s
	}

	keys := make([]string, 0, len(t.Translations))
	for k := range t.Translations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == FallbackLocale || keys[j] == FallbackLocale {
			return keys[i] == FallbackLocale
		}
		return keys[i] < keys[j]
	})

	tags := make([]language.Tag, 0, len(keys))
	usable := make([]string, 0, len(keys))
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		usable = append(usable, k)
	}
	if len(tags) == 0 {
		return t.Translations[keys[0]]
	}

	want, err := language.Parse(locale)
	if err != nil {
		return t.Translations[usable[0]]
	}
	_, idx, _ := language.NewMatcher(tags).Match(want)
	return t.Translations[usable[idx]]
}

// Translator resolves copy for one fixed locale.
type Translator struct {
	Locale string
}

// T resolves t for the translator's locale.
func (tr Translator) T(t model.Translatable) string { return Translate(t, tr.Locale) }
