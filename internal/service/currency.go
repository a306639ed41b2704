package service

import "strings"

// allowedCurrencies is the set of ISO-like codes accepted on wallet
// creation and edit.
var allowedCurrencies = map[string]struct{}{}

func init() {
	codes := []string{
		"USD", "EUR", "GBP", "CHF", "UAH", "PLN", "CZK", "RON", "BGN",
		"HUF", "SEK", "NOK", "DKK", "ISK", "RSD", "MDL", "GEL", "AMD",
		"AZN", "TRY", "KZT", "UZS", "KGS", "TJS", "BYN", "RUB", "CAD",
		"AUD", "NZD", "JPY", "CNY", "HKD", "TWD", "KRW", "SGD", "MYR",
		"THB", "VND", "PHP", "IDR", "INR", "PKR", "BDT", "LKR", "NPR",
		"AED", "SAR", "QAR", "KWD", "BHD", "OMR", "ILS", "JOD", "EGP",
		"MAD", "TND", "DZD", "NGN", "GHS", "KES", "TZS", "UGX", "ZAR",
		"BRL", "ARS", "CLP", "COP", "PEN", "UYU", "MXN", "BOB", "PYG",
	}
	for _, c := range codes {
		allowedCurrencies[c] = struct{}{}
	}
}

// ValidCurrency reports whether the code (any case) is accepted.
func ValidCurrency(code string) bool {
	_, ok := allowedCurrencies[strings.ToUpper(code)]
	return ok
}
