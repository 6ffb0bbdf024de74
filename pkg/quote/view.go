package quote

// View is the renderer-facing snapshot of the current step. All flags are
// computed from state when the view is built.
type View struct {
	Title      string      `json:"title"`
	Step       int         `json:"step"`
	Total      int         `json:"total"`
	StepID     string      `json:"stepId"`
	StepTitle  string      `json:"stepTitle"`
	Fields     []FieldView `json:"fields"`
	Guidance   []string    `json:"guidance,omitempty"`
	CanAdvance bool        `json:"canAdvance"`
	CanSubmit  bool        `json:"canSubmit"`
	IsFirst    bool        `json:"isFirst"`
	IsLast     bool        `json:"isLast"`
}

// FieldView is one input of the current step.
type FieldView struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        string   `json:"kind"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required"`
	Visible     bool     `json:"visible"`
	Value       string   `json:"value"`
	Options     []Choice `json:"options,omitempty"`
	Missing     bool     `json:"missing,omitempty"`
	Guidance    string   `json:"guidance,omitempty"`
}

// Snapshot is the serialisable session state stored between requests.
type Snapshot struct {
	Step   int               `json:"step"`
	Seeded bool              `json:"seeded"`
	Values map[string]string `json:"values"`
}
