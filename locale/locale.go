// Package locale localises the strings the notification queue shows.
package locale

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const DefaultLang = "en"

//go:embed locales/*.toml
var files embed.FS

var (
	msgSummaryTitle = &i18n.Message{
		ID:    "achievements.summary.title",
		Other: "More achievements unlocked",
	}
	msgSummaryContent = &i18n.Message{
		ID:    "achievements.summary.content",
		One:   "{{.Count}} left. See the achievements log for the rest.",
		Other: "{{.Count}} left. See the achievements log for the rest.",
	}
	msgRank = map[string]*i18n.Message{
		"None":     {ID: "rank.none", Other: "None"},
		"Bronze":   {ID: "rank.bronze", Other: "Bronze"},
		"Silver":   {ID: "rank.silver", Other: "Silver"},
		"Gold":     {ID: "rank.gold", Other: "Gold"},
		"Platinum": {ID: "rank.platinum", Other: "Platinum"},
	}
)

// Translator resolves messages for one language, falling back to English.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
	logger    *zap.Logger
}

// New loads the embedded translation files. An unknown lang falls back to
// English with a warning.
func New(lang string, logger *zap.Logger) (*Translator, error) {
	if lang == "" {
		lang = DefaultLang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		logger.Warn("invalid locale, using default", zap.String("lang", lang), zap.Error(err))
		tag, lang = language.English, DefaultLang
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	entries, err := files.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	found := lang == DefaultLang
	for _, e := range entries {
		data, err := files.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		mf, err := bundle.ParseMessageFileBytes(data, e.Name())
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		base, _ := tag.Base()
		if mfBase, _ := mf.Tag.Base(); mfBase == base {
			found = true
		}
	}
	if !found {
		logger.Warn("no translations for locale, using default", zap.String("lang", lang))
		lang = DefaultLang
	}

	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, DefaultLang),
		logger:    logger,
	}, nil
}

// Lang is the effective language.
func (t *Translator) Lang() string { return t.lang }

func (t *Translator) localize(cfg *i18n.LocalizeConfig) string {
	s, err := t.localizer.Localize(cfg)
	if err != nil {
		t.logger.Warn("localize failed", zap.String("id", cfg.DefaultMessage.ID), zap.Error(err))
	}
	return s
}

// SummaryTitle is the title of the overflow notification.
func (t *Translator) SummaryTitle() string {
	return t.localize(&i18n.LocalizeConfig{DefaultMessage: msgSummaryTitle})
}

// SummaryContent tells the user how many unlocks were not shown.
func (t *Translator) SummaryContent(left int) string {
	return t.localize(&i18n.LocalizeConfig{
		DefaultMessage: msgSummaryContent,
		TemplateData:   map[string]interface{}{"Count": left},
		PluralCount:    left,
	})
}

// RankName localises a rank name such as "Gold". Unknown names are returned
// unchanged.
func (t *Translator) RankName(rank string) string {
	m, ok := msgRank[rank]
	if !ok {
		return rank
	}
	return t.localize(&i18n.LocalizeConfig{DefaultMessage: m})
}
