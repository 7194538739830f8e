package i18n

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

type ctxKey struct{}

// ParseAcceptLanguage maps an Accept-Language header to a request language.
// An empty or malformed header yields Default. When the caller prefers only
// unsupported languages, the base of the top preference is returned so the
// resolution chain falls back per field.
func ParseAcceptLanguage(header string) Lang {
	header = strings.TrimSpace(header)
	if header == "" {
		return Default
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}

	_, idx, conf := matcher.Match(tags...)
	if conf != language.No {
		return Supported[idx]
	}

	base, _ := tags[0].Base()
	return Lang(base.String())
}

// NewContext stores the request language on ctx.
func NewContext(ctx context.Context, lang Lang) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the request language, or Default when none is set.
func FromContext(ctx context.Context) Lang {
	if lang, ok := ctx.Value(ctxKey{}).(Lang); ok && lang != "" {
		return lang
	}
	return Default
}
