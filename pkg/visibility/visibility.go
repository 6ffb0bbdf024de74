package visibility

// Evaluator determines whether a field or option is available based on a rule
// string and the current form values.
type Evaluator interface {
	Eval(target, rule string, ctx Context) (bool, error)
}

// Inspector is implemented by evaluators that can report which values a rule
// reads. Callers use it to find the fields whose option sets depend on a
// sibling field.
type Inspector interface {
	References(rule string) ([]string, error)
}

// Context provides inputs to an Evaluator. Values holds the current form
// values keyed by field name; missing keys read as blank.
type Context struct {
	Values map[string]string
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(target, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(target, rule string, ctx Context) (bool, error) {
	return fn(target, rule, ctx)
}
