package activation

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/axiskey/mapper/internal/mapping"
)

//go:embed locales/*.toml
var locales embed.FS

// NewBundle loads the activation log messages for every supported language.
// Brazilian Portuguese is the source language.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.BrazilianPortuguese)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to list message files: %w", err)
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return bundle, nil
}

// printer renders message ids in one language, falling back to the source
// language and finally to the id itself.
type printer struct {
	loc *i18n.Localizer
	r   *Runner
}

func (r *Runner) printer(lang mapping.Language) printer {
	return printer{
		loc: i18n.NewLocalizer(r.bundle, string(lang), string(mapping.LanguagePortuguese)),
		r:   r,
	}
}

func (p printer) sprint(id string, data map[string]any) string {
	s, err := p.loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		p.r.log.Warn().Err(err).Str("message", id).Msg("missing activation message")
		return id
	}
	return s
}
