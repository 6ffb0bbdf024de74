package quote

// State is the flat record of form values. Every known field reads as "" until
// set; Set merges a single key and leaves the rest untouched.
type State struct {
	values map[Field]string
}

// NewState returns a State seeded with prefill. Unknown keys are dropped.
func NewState(prefill map[Field]string) State {
	s := State{values: make(map[Field]string, len(Fields))}
	for _, f := range Fields {
		s.values[f] = ""
	}
	for f, v := range prefill {
		if Known(f) {
			s.values[f] = v
		}
	}
	return s
}

// Get returns the current value of f.
func (s State) Get(f Field) string {
	return s.values[f]
}

// Set overwrites f with value. It reports false for unknown fields.
func (s State) Set(f Field, value string) bool {
	if !Known(f) || s.values == nil {
		return false
	}
	s.values[f] = value
	return true
}

// Clone returns an independent copy.
func (s State) Clone() State {
	return NewState(s.values)
}

// Values returns a snapshot keyed by field.
func (s State) Values() map[Field]string {
	out := make(map[Field]string, len(s.values))
	for f, v := range s.values {
		out[f] = v
	}
	return out
}

// Strings returns a snapshot keyed by the field's string name, the shape rule
// evaluators and serializers consume.
func (s State) Strings() map[string]string {
	out := make(map[string]string, len(s.values))
	for f, v := range s.values {
		out[string(f)] = v
	}
	return out
}
