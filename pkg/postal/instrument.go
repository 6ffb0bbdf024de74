package postal

import (
	"context"
	"errors"
	"time"
)

// Lookup outcomes reported to an Observer.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

// Observer receives one call per completed lookup.
type Observer interface {
	ObserveLookup(outcome string, elapsed time.Duration)
}

// Instrument wraps lookup so every call reports its outcome and latency to
// observer. A nil observer returns lookup unchanged.
func Instrument(lookup Lookup, observer Observer) Lookup {
	if lookup == nil || observer == nil {
		return lookup
	}
	return LookupFunc(func(ctx context.Context, code string) (Address, error) {
		start := time.Now()
		addr, err := lookup.Lookup(ctx, code)
		observer.ObserveLookup(Outcome(err), time.Since(start))
		return addr, err
	})
}

// Outcome classifies a lookup error into one of the Outcome* labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeFound
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
