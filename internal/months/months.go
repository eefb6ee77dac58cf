// Package months provides localized Jalali month and weekday labels.
package months

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is used when no language is requested.
const DefaultLanguage = "en"

var (
	// ErrOutOfRange is returned for month numbers outside 1..12.
	ErrOutOfRange = errors.New("months: month must be between 1 and 12")
	// ErrUnknownLanguage is returned for languages without a locale file.
	ErrUnknownLanguage = errors.New("months: unsupported language")
)

var (
	bundle    *i18n.Bundle
	languages []string
	loadErr   error
)

func init() {
	bundle, languages, loadErr = loadBundle()
}

func loadBundle() (*i18n.Bundle, []string, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, nil, fmt.Errorf("read locales: %w", err)
	}
	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		code := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if _, err := b.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", name, err)
		}
		langs = append(langs, code)
	}
	sort.Strings(langs)
	return b, langs, nil
}

// Languages lists the language codes with an embedded locale.
func Languages() []string {
	return append([]string(nil), languages...)
}

// Namer translates month and weekday labels for one language.
type Namer struct {
	lang      string
	localizer *i18n.Localizer
}

// New returns a Namer for lang, e.g. "en" or "fa". An empty lang selects
// DefaultLanguage.
func New(lang string) (*Namer, error) {
	if loadErr != nil {
		return nil, loadErr
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	base, _ := tag.Base()
	code := base.String()
	if !supported(code) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return &Namer{lang: code, localizer: i18n.NewLocalizer(bundle, code)}, nil
}

func supported(code string) bool {
	for _, l := range languages {
		if l == code {
			return true
		}
	}
	return false
}

// Language returns the language code of the Namer.
func (n *Namer) Language() string {
	return n.lang
}

// Name returns the label of a 1-based Jalali month.
func (n *Namer) Name(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: got %d", ErrOutOfRange, month)
	}
	return n.localize("month."+strconv.Itoa(month), nil)
}

// Names returns all twelve month labels in order.
func (n *Namer) Names() []string {
	out := make([]string, 12)
	for i := range out {
		out[i], _ = n.Name(i + 1)
	}
	return out
}

// Weekday returns the short label of a weekday.
func (n *Namer) Weekday(d time.Weekday) string {
	s, _ := n.localize("weekday."+strconv.Itoa(int(d)%7), nil)
	return s
}

// MonthTitle formats a heading such as "Mordad 1403".
func (n *Namer) MonthTitle(year, month int) (string, error) {
	name, err := n.Name(month)
	if err != nil {
		return "", err
	}
	return n.localize("title.month", map[string]any{"Month": name, "Year": year})
}

// YearTitle formats a heading for a whole year.
func (n *Namer) YearTitle(year int) string {
	s, _ := n.localize("title.year", map[string]any{"Year": year})
	return s
}

func (n *Namer) localize(id string, data map[string]any) (string, error) {
	msg, err := n.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return id, fmt.Errorf("localize %s: %w", id, err)
	}
	return msg, nil
}
