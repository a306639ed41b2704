package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finbot/internal/domain"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "menu_wallets",
			expected: "menu_wallets",
		},
		{
			name:     "string with whitespace",
			input:    "  menu_wallets  ",
			expected: "menu_wallets",
		},
		{
			name:     "telegram control prefix",
			input:    "\fcategory_approve",
			expected: "category_approve",
		},
		{
			name:     "string with newline",
			input:    "lang\n_en",
			expected: "lang_en",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "unprintable characters",
			input:    "export\x00_wallets\x01",
			expected: "export_wallets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCleanCallbackData_FeedsParser(t *testing.T) {
	// Raw callback payloads arrive with telegram's control prefix; after
	// cleaning they must parse as commands.
	cmd, err := domain.ParseCommand(cleanCallbackData("\fmenu_transactions"))
	assert.NoError(t, err)
	assert.Equal(t, domain.CmdMenu, cmd.Kind)
	assert.Equal(t, "transactions", cmd.Menu)
}

func TestParseWalletLine(t *testing.T) {
	tests := []struct {
		name             string
		input            string
		fallback         string
		expectedCurrency string
		expectedName     string
		expectedError    error
	}{
		{
			name:             "full line",
			input:            "USD 100 main wallet",
			expectedCurrency: "USD",
			expectedName:     "main wallet",
		},
		{
			name:             "name from fallback",
			input:            "eur 0",
			fallback:         "cash",
			expectedCurrency: "eur",
			expectedName:     "cash",
		},
		{
			name:          "too few tokens",
			input:         "USD",
			expectedError: domain.ErrMissingInfo,
		},
		{
			name:          "bad init sum",
			input:         "USD abc cash",
			expectedError: domain.ErrNonNumericSum,
		},
		{
			name:          "no name anywhere",
			input:         "USD 100",
			expectedError: domain.ErrEmptyMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			currency, _, name, err := parseWalletLine(tt.input, tt.fallback)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCurrency, currency)
			assert.Equal(t, tt.expectedName, name)
		})
	}
}

func TestParseRescheduleDate(t *testing.T) {
	d, err := parseRescheduleDate("2026-09-01")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-01 00:00", d.UTC().Format("2006-01-02 15:04"))

	d, err = parseRescheduleDate("2026-09-01 14:30")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-01 14:30", d.UTC().Format("2006-01-02 15:04"))

	_, err = parseRescheduleDate("yesterday")
	assert.Error(t, err)
}
