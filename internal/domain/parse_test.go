package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseTransactionLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedError error
		expected      PendingTransaction
	}{
		{
			name:  "expense with comment",
			input: "-12.50 groceries cash lunch at work",
			expected: PendingTransaction{
				Amount:   decimal.RequireFromString("-12.50"),
				Category: "groceries",
				Wallet:   "cash",
				Comment:  "lunch at work",
			},
		},
		{
			name:  "income without comment",
			input: "+1500 salary bank",
			expected: PendingTransaction{
				Amount:   decimal.RequireFromString("1500"),
				Category: "salary",
				Wallet:   "bank",
			},
		},
		{
			name:  "comma decimal separator",
			input: "-3,99 coffee cash",
			expected: PendingTransaction{
				Amount:   decimal.RequireFromString("-3.99"),
				Category: "coffee",
				Wallet:   "cash",
			},
		},
		{
			name:  "names are lowercased",
			input: "-5 Groceries CASH",
			expected: PendingTransaction{
				Amount:   decimal.RequireFromString("-5"),
				Category: "groceries",
				Wallet:   "cash",
			},
		},
		{
			name:          "empty message",
			input:         "   ",
			expectedError: ErrEmptyMessage,
		},
		{
			name:          "too few tokens",
			input:         "-12.50 groceries",
			expectedError: ErrMissingInfo,
		},
		{
			name:          "non-numeric amount",
			input:         "abc groceries cash",
			expectedError: ErrNonNumericSum,
		},
		{
			name:          "missing sign",
			input:         "12.50 groceries cash",
			expectedError: ErrSignRequired,
		},
		{
			name: "numeric check runs before sign check",
			// a signless garbage amount must report the numeric error,
			// not the sign error
			input:         "12x50 groceries cash",
			expectedError: ErrNonNumericSum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseTransactionLine(tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.True(t, tt.expected.Amount.Equal(p.Amount),
				"amount: want %s, got %s", tt.expected.Amount, p.Amount)
			assert.Equal(t, tt.expected.Category, p.Category)
			assert.Equal(t, tt.expected.Wallet, p.Wallet)
			assert.Equal(t, tt.expected.Comment, p.Comment)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "+12.5", FormatAmount(decimal.RequireFromString("12.5")))
	assert.Equal(t, "-12.5", FormatAmount(decimal.RequireFromString("-12.5")))
	assert.Equal(t, "0", FormatAmount(decimal.Zero))
}
