// Package i18n holds the user-facing string bundles.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Supported lists the bundled languages; the first is the fallback.
var Supported = []language.Tag{language.English, language.Portuguese, language.Spanish}

var matcher = language.NewMatcher(Supported)

var (
	loadOnce sync.Once
	bundles  map[language.Tag]map[string]string
	loadErr  error
)

func load() {
	bundles = make(map[language.Tag]map[string]string, len(Supported))
	for _, tag := range Supported {
		data, err := locales.ReadFile("locales/" + tag.String() + ".yaml")
		if err != nil {
			loadErr = err
			return
		}
		var m map[string]string
		if err := yaml.Unmarshal(data, &m); err != nil {
			loadErr = fmt.Errorf("parse %s bundle: %w", tag, err)
			return
		}
		bundles[tag] = m
	}
}

// Detect picks the best supported language for the given preferences, in
// order. Preferences may be BCP 47 tags ("pt-BR") or POSIX locale names
// ("pt_BR.UTF-8"). Anything unrecognised yields English.
func Detect(preferences ...string) language.Tag {
	var tags []language.Tag
	for _, p := range preferences {
		p = normalizeLocale(p)
		if p == "" {
			continue
		}
		if tag, err := language.Parse(p); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// DetectEnv detects the language from the usual locale variables.
func DetectEnv() language.Tag {
	return Detect(os.Getenv("LC_ALL"), os.Getenv("LC_MESSAGES"), os.Getenv("LANG"))
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}

// Bundle is the string table of one language.
type Bundle struct {
	lang    language.Tag
	strings map[string]string
	base    map[string]string
}

// New returns the bundle for the best match of lang ("" detects from the
// environment).
func New(lang string) (*Bundle, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	tag := DetectEnv()
	if lang != "" {
		tag = Detect(lang)
	}
	return &Bundle{
		lang:    tag,
		strings: bundles[tag],
		base:    bundles[Supported[0]],
	}, nil
}

// MustNew is New for the embedded bundles, which always parse.
func MustNew(lang string) *Bundle {
	b, err := New(lang)
	if err != nil {
		panic(err)
	}
	return b
}

// Language returns the selected language.
func (b *Bundle) Language() language.Tag {
	return b.lang
}

// T returns the string for key, formatted with args when given. Missing keys
// fall back to English and then to the key itself.
func (b *Bundle) T(key string, args ...any) string {
	if b == nil {
		return key
	}
	s, ok := b.strings[key]
	if !ok {
		s, ok = b.base[key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

// ColumnTitle turns an internal column name into a heading. Underscores
// become spaces and the first letter of each word is upper-cased.
func (b *Bundle) ColumnTitle(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if b == nil {
		return name
	}
	return cases.Title(b.lang, cases.NoLower).String(name)
}

// Keys returns every key of the English bundle.
func Keys() []string {
	loadOnce.Do(load)
	keys := make([]string, 0, len(bundles[Supported[0]]))
	for k := range bundles[Supported[0]] {
		keys = append(keys, k)
	}
	return keys
}
