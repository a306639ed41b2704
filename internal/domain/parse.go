package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseTransactionLine parses a free-text transaction message of the shape
//
//	signedAmount categoryText walletText [comment...]
//
// The checks short-circuit in a fixed order so the user always gets the
// most specific error: empty message, token count, numeric amount, explicit
// sign. A comma is accepted as the decimal separator. The sign is mandatory
// and decides income vs. expense.
func ParseTransactionLine(text string) (PendingTransaction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return PendingTransaction{}, ErrEmptyMessage
	}

	tokens := strings.Fields(text)
	if len(tokens) < 3 {
		return PendingTransaction{}, ErrMissingInfo
	}

	rawAmount := tokens[0]
	amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", "."))
	if err != nil {
		return PendingTransaction{}, ErrNonNumericSum
	}

	if rawAmount[0] != '+' && rawAmount[0] != '-' {
		return PendingTransaction{}, ErrSignRequired
	}

	p := PendingTransaction{
		Amount:   amount,
		Category: strings.ToLower(tokens[1]),
		Wallet:   strings.ToLower(tokens[2]),
	}
	if len(tokens) > 3 {
		p.Comment = strings.Join(tokens[3:], " ")
	}
	return p, nil
}

// FormatAmount renders an amount with an explicit plus sign for positive
// values.
func FormatAmount(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + amount.String()
	}
	return amount.String()
}
