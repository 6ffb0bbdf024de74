package quote

import "errors"

var (
	// ErrUnknownField is returned when setting a field the form does not
	// declare.
	ErrUnknownField = errors.New("quote: unknown field")
	// ErrReadOnlyField is returned when user input targets the referral code,
	// which is only seeded at session start.
	ErrReadOnlyField = errors.New("quote: field is read-only")
	// ErrSubmitBlocked is returned by Submit when the terminal step is not
	// reached or its required fields are blank.
	ErrSubmitBlocked = errors.New("quote: submission blocked")
)
