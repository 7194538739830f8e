package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var localeFiles = []string{
	"locales/active.en.json",
	"locales/active.ar.json",
}

// Messages translates fixed API messages (errors, confirmations) by ID.
type Messages struct {
	bundle *goi18n.Bundle
}

// NewMessages loads the embedded locale files into a bundle whose default
// language is English.
func NewMessages() (*Messages, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, file := range localeFiles {
		data, err := localeFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", file, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, file); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", file, err)
		}
	}

	return &Messages{bundle: bundle}, nil
}

// T returns the message for id in lang, falling back to English and finally
// to the id itself.
func (m *Messages) T(lang Lang, id string) string {
	return m.TData(lang, id, nil)
}

// TData is T with template data.
func (m *Messages) TData(lang Lang, id string, data map[string]any) string {
	if m == nil {
		return id
	}
	localizer := goi18n.NewLocalizer(m.bundle, string(lang), string(Default))
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
