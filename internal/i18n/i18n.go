// Package i18n loads per-language message catalogues from TOML files and
// resolves opaque string keys into user-visible text. The rest of the code
// never hardcodes user-facing language.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultLang is used for users who have not chosen a language yet and as
// the fallback for keys missing from a translation.
const DefaultLang = "en"

// Catalog holds the loaded message tables for every available language.
type Catalog struct {
	messages map[string]map[string]string
}

// Load reads every <lang>.toml file in dir. The default language must be
// present.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	c := &Catalog{messages: make(map[string]map[string]string)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".toml") {
			continue
		}
		lang := strings.TrimSuffix(name, ".toml")

		var table map[string]string
		if _, err := toml.DecodeFile(filepath.Join(dir, name), &table); err != nil {
			return nil, fmt.Errorf("decode locale %s: %w", name, err)
		}
		c.messages[lang] = table
	}

	if _, ok := c.messages[DefaultLang]; !ok {
		return nil, fmt.Errorf("default locale %q missing in %s", DefaultLang, dir)
	}
	return c, nil
}

// Languages returns the available language codes, sorted.
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Has reports whether the language is available.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.messages[lang]
	return ok
}

// T resolves a message key for a language and formats it with args. Missing
// keys fall back to the default language and finally to the key itself, so
// a gap in a translation never drops a turn.
func (c *Catalog) T(lang, key string, args ...any) string {
	if lang == "" {
		lang = DefaultLang
	}

	msg, ok := c.messages[lang][key]
	if !ok {
		msg, ok = c.messages[DefaultLang][key]
	}
	if !ok {
		return key
	}

	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Func returns a translation function bound to one language, mirroring the
// shape handlers pass around.
func (c *Catalog) Func(lang string) func(key string, args ...any) string {
	return func(key string, args ...any) string {
		return c.T(lang, key, args...)
	}
}
