// Package i18n translates UI and report strings with go-i18n, using the
// locale files embedded under locales/.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Auto selects the language per request from the Accept-Language header.
const Auto = "auto"

// ErrUnsupportedLanguage is returned for languages without a locale file.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Languages lists the shipped locales; the first one is the fallback.
var Languages = []language.Tag{language.English, language.Spanish}

var jsonUnmarshal = json.Unmarshal

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	bundle  *i18n.Bundle
	matcher = language.NewMatcher(Languages)
)

// Resolve maps a language tag such as "es-MX" to the shipped locale it
// should use. Auto is returned unchanged.
func Resolve(lang string) (string, error) {
	if lang == Auto {
		return Auto, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", lang, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return Languages[idx].String(), nil
}

// Init loads the translation bundle. lang becomes the bundle's default
// language; with Auto the fallback locale is used.
func Init(lang string) error {
	resolved, err := Resolve(lang)
	if err != nil {
		return err
	}
	def := Languages[0]
	if resolved != Auto {
		def = language.MustParse(resolved)
	}

	b := i18n.NewBundle(def)
	b.RegisterUnmarshalFunc("json", jsonUnmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}

	bundle = b
	return nil
}

// NewLocalizer creates a localizer preferring the given languages in order.
func NewLocalizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, langs...)
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

func localizerFromCtx(ctx context.Context) *i18n.Localizer {
	if loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer); ok {
		return loc
	}
	return i18n.NewLocalizer(bundle, Languages[0].String())
}

// localize falls back to the message ID so a missing key shows up on the page
// instead of breaking it.
func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	s, err := localizerFromCtx(ctx).Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}

// T translates a message by ID.
func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID, TemplateData: data})
}

// Tp translates a pluralized message by ID. The count is available to the
// template as .Count.
func Tp(ctx context.Context, msgID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}
