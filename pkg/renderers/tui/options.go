package tui

// Theme captures optional message prefixes applied by the runner.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithConfirmSubmit asks for confirmation before dispatching the summary.
func WithConfirmSubmit(enabled bool) Option {
	return func(r *Runner) {
		r.confirmSubmit = enabled
	}
}
