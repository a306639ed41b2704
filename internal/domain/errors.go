package domain

import "errors"

// Validation errors for the transaction input grammar. Order of checks is
// fixed: empty, token count, numeric amount, explicit sign.
var (
	ErrEmptyMessage  = errors.New("empty message")
	ErrMissingInfo   = errors.New("missing info")
	ErrNonNumericSum = errors.New("non-numeric sum")
	ErrSignRequired  = errors.New("sign required")
)

// Entity and input errors reported back to the user.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrDeleted             = errors.New("entity is deleted")
	ErrNameTaken           = errors.New("name already in use")
	ErrMultiWordName       = errors.New("category name must be a single word")
	ErrUnsupportedCurrency = errors.New("unsupported currency code")
	ErrBadCommand          = errors.New("malformed callback command")
)
