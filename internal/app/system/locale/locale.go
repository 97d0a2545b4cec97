// Package locale translates user-facing messages. Indonesian is the default
// language; English is available through the lang cookie or Accept-Language.
package locale

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

// CookieName is the cookie a browser uses to pick a language.
const CookieName = "lang"

// Translator resolves message IDs for a requested language.
type Translator struct {
	bundle *i18n.Bundle
	log    *zap.Logger
}

// New loads the embedded translation files. defaultLang is the language used
// when a request names none we know; an unparsable value falls back to
// Indonesian.
func New(defaultLang string, logger *zap.Logger) (*Translator, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		tag = language.Indonesian
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	err = fs.WalkDir(translationFS, "translations", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		_, err = bundle.LoadMessageFileFS(translationFS, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Translator{bundle: bundle, log: logger}, nil
}

// Message renders id in the first of langs the bundle supports. Missing
// messages are logged and the id itself is returned.
func (t *Translator) Message(id string, data map[string]any, langs ...string) string {
	loc := i18n.NewLocalizer(t.bundle, langs...)
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		t.log.Warn("missing translation", zap.String("id", id), zap.Strings("langs", langs), zap.Error(err))
		return id
	}
	return msg
}

// Languages returns the language preferences of r: the lang cookie first,
// then the Accept-Language header.
func Languages(r *http.Request) []string {
	var langs []string
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		langs = append(langs, c.Value)
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		langs = append(langs, al)
	}
	return langs
}
