// Package i18n localizes interface strings and advice.
//
// Translations come from embedded tables keyed by message ID and language.
// A miss falls through to an optional remote translator and then to English.
// Localization never fails; the worst case is English text.
package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/metrics"
)

//go:embed locales/*.json
var localeFS embed.FS

// Source is the language every template is written in
const Source = "en"

// ErrTranslationUnavailable is returned by translators that could not
// produce a translation. Localizer absorbs it.
var ErrTranslationUnavailable = errors.New("translation unavailable")

// Language is a supported display language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var languages = []Language{
	{"en", "English"},
	{"hi", "Hindi"},
	{"or", "Odia"},
	{"bn", "Bengali"},
	{"ta", "Tamil"},
	{"te", "Telugu"},
	{"mr", "Marathi"},
	{"gu", "Gujarati"},
	{"kn", "Kannada"},
	{"pa", "Punjabi"},
}

// Languages returns the supported languages in display order
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Supported reports whether code is a supported language
func Supported(code string) bool {
	for _, l := range languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Translator translates English text into target
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Localizer renders messages in a requested language
type Localizer struct {
	tables map[string]map[string]string
	remote Translator
}

// NewLocalizer loads the embedded locale tables. remote may be nil.
func NewLocalizer(remote Translator) (*Localizer, error) {
	tables, err := loadTables()
	if err != nil {
		return nil, err
	}
	return &Localizer{tables: tables, remote: remote}, nil
}

func loadTables() (map[string]map[string]string, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	tables := make(map[string]map[string]string)
	for _, e := range entries {
		lang := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if !Supported(lang) {
			return nil, fmt.Errorf("locale file for unsupported language %q", lang)
		}

		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
		}

		var table map[string]string
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}
		tables[lang] = table
	}
	return tables, nil
}

// Coverage returns how many message IDs each language has a table entry for
func (l *Localizer) Coverage() map[string]int {
	out := make(map[string]int, len(l.tables))
	for lang, t := range l.tables {
		out[lang] = len(t)
	}
	return out
}

// Localize renders m in lang. Unsupported languages and every failure
// render English.
func (l *Localizer) Localize(ctx context.Context, lang string, m Message) string {
	english := m.Text()
	if lang == Source || !Supported(lang) {
		return english
	}

	if tmpl, ok := l.tables[lang][m.ID]; ok {
		metrics.RecordTranslation(metrics.TranslationTable)
		return fmt.Sprintf(tmpl, m.Args...)
	}

	if l.remote == nil {
		metrics.RecordTranslation(metrics.TranslationFallback)
		return english
	}

	translated, err := l.remote.Translate(ctx, english, lang)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("lang", lang).Str("id", m.ID).Msg("Translation unavailable, using English")
		metrics.RecordTranslation(metrics.TranslationFallback)
		return english
	}
	metrics.RecordTranslation(metrics.TranslationRemote)
	return translated
}

// LocalizeAll renders every message in lang, preserving order
func (l *Localizer) LocalizeAll(ctx context.Context, lang string, msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = l.Localize(ctx, lang, m)
	}
	return out
}

// ResolveLanguage picks the request language: an explicit query value wins,
// then the first supported tag of an Accept-Language header, then English.
func ResolveLanguage(query, acceptLanguage string) string {
	if q := normalizeTag(query); Supported(q) {
		return q
	}

	type tag struct {
		code string
		q    float64
	}
	var tags []tag
	for _, part := range strings.Split(acceptLanguage, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		code := normalizeTag(fields[0])
		if !Supported(code) {
			continue
		}
		weight := 1.0
		for _, f := range fields[1:] {
			f = strings.TrimSpace(f)
			if strings.HasPrefix(f, "q=") {
				w, err := strconv.ParseFloat(strings.TrimPrefix(f, "q="), 64)
				if err != nil {
					w = 0
				}
				weight = w
			}
		}
		if weight > 0 {
			tags = append(tags, tag{code, weight})
		}
	}
	if len(tags) == 0 {
		return Source
	}

	sort.SliceStable(tags, func(i, j int) bool { return tags[i].q > tags[j].q })
	return tags[0].code
}

// normalizeTag reduces "hi-IN" or "HI_in" to "hi"
func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
