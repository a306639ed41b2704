package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.toml", "greeting = \"Hello, %s!\"\nonly_en = \"fallback text\"\n")
	writeLocale(t, dir, "uk.toml", "greeting = \"Привіт, %s!\"\n")
	writeLocale(t, dir, "notes.txt", "ignored")

	c, err := Load(dir)
	assert.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "uk"}, c.Languages())
	assert.True(t, c.Has("uk"))
	assert.False(t, c.Has("de"))

	assert.Equal(t, "Hello, Ann!", c.T("en", "greeting", "Ann"))
	assert.Equal(t, "Привіт, Ann!", c.T("uk", "greeting", "Ann"))

	// Missing key in a translation falls back to the default language,
	// then to the key itself.
	assert.Equal(t, "fallback text", c.T("uk", "only_en"))
	assert.Equal(t, "no_such_key", c.T("uk", "no_such_key"))

	// Empty language means the default.
	assert.Equal(t, "Hello, Bo!", c.T("", "greeting", "Bo"))

	T := c.Func("uk")
	assert.Equal(t, "Привіт, Іра!", T("greeting", "Іра"))
}

func TestLoad_RequiresDefaultLocale(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "uk.toml", "greeting = \"Привіт\"\n")

	_, err := Load(dir)
	assert.Error(t, err)
}
