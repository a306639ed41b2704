package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoad_FuzzyThreshold(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("DB_PASSWORD", "secret")

	tests := []struct {
		name          string
		value         string
		expected      int
		expectedError bool
	}{
		{name: "default", value: "", expected: 75},
		{name: "custom", value: "80", expected: 80},
		{name: "lower bound", value: "1", expected: 1},
		{name: "upper bound", value: "100", expected: 100},
		{name: "zero rejected", value: "0", expectedError: true},
		{name: "too high rejected", value: "101", expectedError: true},
		{name: "not a number", value: "many", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("FUZZY_THRESHOLD", tt.value)
			}

			cfg, err := Load()
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.FuzzyThreshold)
		})
	}
}

func TestLoad_RequiredFields(t *testing.T) {
	t.Run("missing bot token", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("DB_PASSWORD", "secret")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("missing db password", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "token")
		t.Setenv("DB_PASSWORD", "")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "db",
			Port:     "5432",
			Name:     "finbot",
			User:     "finbot",
			Password: "secret",
		},
	}

	assert.Equal(t,
		"host=db port=5432 user=finbot password=secret dbname=finbot sslmode=disable",
		cfg.DSN())
}
