package postal

import (
	"context"
	"errors"
	"strings"
)

// CodeLength is the number of digits in a complete postal code (CEP).
const CodeLength = 8

var (
	// ErrNotFound signals the lookup service answered but flagged the code as
	// unknown.
	ErrNotFound = errors.New("postal: postal code not found")
	// ErrInvalidCode is returned when a lookup is attempted with anything other
	// than exactly CodeLength digits.
	ErrInvalidCode = errors.New("postal: postal code must have 8 digits")
)

// Address is the structured result of a postal-code lookup.
type Address struct {
	PostalCode   string `json:"postalCode"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Lookup resolves an 8-digit postal code into an Address.
type Lookup interface {
	Lookup(ctx context.Context, code string) (Address, error)
}

// LookupFunc adapts a function into a Lookup.
type LookupFunc func(ctx context.Context, code string) (Address, error)

// Lookup delegates to the underlying function.
func (fn LookupFunc) Lookup(ctx context.Context, code string) (Address, error) {
	return fn(ctx, code)
}

// Sanitize strips every non-digit character from raw.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether code is exactly CodeLength ASCII digits.
func Valid(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
