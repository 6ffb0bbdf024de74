package quote

import "context"

// Navigator is the outbound redirect port. Browsers navigate to the URL;
// tests capture it.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate delegates to the underlying function.
func (fn NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return fn(ctx, target)
}

// Observer receives controller events for metrics. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveTransition(action string, moved bool)
	ObserveDispatch(kind string)
}

// Transition and dispatch labels reported to an Observer.
const (
	ActionAdvance = "advance"
	ActionRetreat = "retreat"
	ActionSubmit  = "submit"

	DispatchSummary = "summary"
	DispatchContact = "contact"
)
