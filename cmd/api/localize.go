package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"souq/internal/i18n"
)

// localizedResponse writes data with every bilingual name, description and
// title collapsed to the request language. paths names further bilingual
// fields by dotted path, e.g. "discount.label".
//
// An encoding error is returned before anything is written, so the caller
// can still send a 500. If the encoded payload cannot be localized it is
// logged and sent as encoded.
func (app *application) localizedResponse(w http.ResponseWriter, r *http.Request, status int, data any, paths ...string) error {
	lang := i18n.FromContext(r.Context())

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	tree, err := i18n.ResolveJSON(raw, lang)
	if err != nil {
		app.logger.Errorw("localize response", "method", r.Method, "path", r.URL.Path, "lang", lang, "error", err)
		return app.jsonResponse(w, status, json.RawMessage(raw))
	}

	if len(paths) > 0 {
		if doc, ok := tree.(map[string]any); ok {
			tree = i18n.TranslatePaths(doc, lang, paths...)
		}
	}

	return app.jsonResponse(w, status, tree)
}

// message writes {"data": {"message": ...}} with a localized message.
func (app *application) message(w http.ResponseWriter, r *http.Request, status int, id string) error {
	return app.jsonResponse(w, status, map[string]string{
		"message": app.messages.T(i18n.FromContext(r.Context()), id),
	})
}
