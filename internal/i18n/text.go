// Package i18n holds the storefront's bilingual content model and the
// helpers that collapse it into a single language per request.
package i18n

import "strings"

// Lang is a base language code such as "en" or "ar". Values outside the
// supported set are legal and simply fall through the resolution chain.
type Lang string

const (
	English Lang = "en"
	Arabic  Lang = "ar"

	Default = English
)

// Supported lists the languages content is authored in.
var Supported = []Lang{English, Arabic}

func (l Lang) String() string { return string(l) }

// Text is a bilingual field as persisted: both keys are always present.
type Text struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// Get returns the value stored for lang, if lang is one of the stored keys.
func (t Text) Get(lang Lang) (string, bool) {
	switch lang {
	case English:
		return t.En, true
	case Arabic:
		return t.Ar, true
	}
	return "", false
}

// Resolve picks the first non-empty value along requested -> en -> ar.
// A field with both values empty resolves to "".
func (t Text) Resolve(lang Lang) string {
	if v, ok := t.Get(lang); ok && v != "" {
		return v
	}
	if t.En != "" {
		return t.En
	}
	return t.Ar
}

// IsZero reports whether neither language has content.
func (t Text) IsZero() bool {
	return t.En == "" && t.Ar == ""
}

// Trimmed returns t with surrounding whitespace removed from both values.
func (t Text) Trimmed() Text {
	return Text{En: strings.TrimSpace(t.En), Ar: strings.TrimSpace(t.Ar)}
}

// resolveMap applies the same chain as Text.Resolve to a decoded JSON
// object. Non-string values count as empty.
func resolveMap(m map[string]any, lang Lang) string {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	if v := str(string(lang)); v != "" {
		return v
	}
	if v := str(string(English)); v != "" {
		return v
	}
	return str(string(Arabic))
}

// isBilingual reports whether a decoded JSON object looks like a Text.
func isBilingual(m map[string]any) bool {
	_, en := m[string(English)]
	_, ar := m[string(Arabic)]
	return en || ar
}
