package quote

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-quoteform/pkg/visibility"
	"github.com/goliatone/go-quoteform/pkg/visibility/expr"
)

// Field kinds understood by the renderers.
const (
	KindText   = "text"
	KindSelect = "select"
	KindHidden = "hidden"
)

//go:embed definition.yaml
var embeddedDefinition []byte

// Step is one screen of the form, holding a disjoint subset of fields.
type Step struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title" yaml:"title"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// OptionSpec declares a selectable value. VisibleWhen gates the option on
// sibling values; blank means always offered.
type OptionSpec struct {
	Value       string `json:"value" yaml:"value"`
	Label       string `json:"label" yaml:"label"`
	VisibleWhen string `json:"visibleWhen,omitempty" yaml:"visibleWhen"`
}

// Choice is a select option resolved against the current state.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldSpec describes how a field is labelled, gated and validated.
type FieldSpec struct {
	Name        Field        `json:"name" yaml:"-"`
	Label       string       `json:"label" yaml:"label"`
	Kind        string       `json:"kind" yaml:"kind"`
	Required    bool         `json:"required" yaml:"required"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder"`
	Guidance    string       `json:"guidance,omitempty" yaml:"guidance"`
	VisibleWhen string       `json:"visibleWhen,omitempty" yaml:"visibleWhen"`
	Options     []OptionSpec `json:"options,omitempty" yaml:"options"`
}

type definitionFile struct {
	Title  string               `yaml:"title"`
	Steps  []Step               `yaml:"steps"`
	Hidden []Field              `yaml:"hidden"`
	Fields map[string]FieldSpec `yaml:"fields"`
}

// Definition is the validated form layout. It is immutable after loading and
// safe to share between controllers.
type Definition struct {
	title      string
	steps      []Step
	hidden     []Field
	fields     map[Field]FieldSpec
	evaluator  visibility.Evaluator
	dependents map[Field][]Field
}

// DefinitionOption configures LoadDefinition.
type DefinitionOption func(*Definition)

// WithEvaluator swaps the rule evaluator used for visibleWhen expressions.
func WithEvaluator(evaluator visibility.Evaluator) DefinitionOption {
	return func(d *Definition) {
		if evaluator != nil {
			d.evaluator = evaluator
		}
	}
}

// DefaultDefinition returns the embedded quote form definition.
func DefaultDefinition() *Definition {
	def, err := LoadDefinition(embeddedDefinition)
	if err != nil {
		panic(fmt.Sprintf("quote: embedded definition: %v", err))
	}
	return def
}

// LoadDefinition parses a YAML (or JSON) form definition and validates that
// every known field is placed exactly once and every rule compiles.
func LoadDefinition(data []byte, options ...DefinitionOption) (*Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("quote: definition is empty")
	}

	var raw definitionFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("quote: parse definition: %w", err)
	}

	def := &Definition{
		title:     strings.TrimSpace(raw.Title),
		evaluator: expr.New(),
		fields:    make(map[Field]FieldSpec, len(raw.Fields)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(def)
	}

	for name, spec := range raw.Fields {
		field := Field(strings.TrimSpace(name))
		if !Known(field) {
			return nil, fmt.Errorf("quote: definition declares unknown field %q", name)
		}
		spec.Name = field
		if spec.Kind == "" {
			spec.Kind = KindText
		}
		switch spec.Kind {
		case KindText, KindSelect, KindHidden:
		default:
			return nil, fmt.Errorf("quote: field %q has unsupported kind %q", name, spec.Kind)
		}
		if spec.Label == "" {
			spec.Label = name
		}
		def.fields[field] = spec
	}

	if len(raw.Steps) == 0 {
		return nil, fmt.Errorf("quote: definition has no steps")
	}

	placed := make(map[Field]string, len(Fields))
	place := func(f Field, where string) error {
		if _, ok := def.fields[f]; !ok {
			return fmt.Errorf("quote: %s references undeclared field %q", where, f)
		}
		if prev, dup := placed[f]; dup {
			return fmt.Errorf("quote: field %q placed in both %s and %s", f, prev, where)
		}
		placed[f] = where
		return nil
	}
	for i, step := range raw.Steps {
		if len(step.Fields) == 0 {
			return nil, fmt.Errorf("quote: step %d (%s) has no fields", i, step.ID)
		}
		for _, f := range step.Fields {
			if err := place(f, fmt.Sprintf("step %q", step.ID)); err != nil {
				return nil, err
			}
		}
	}
	for _, f := range raw.Hidden {
		if err := place(f, "hidden"); err != nil {
			return nil, err
		}
	}
	for _, f := range Fields {
		if _, ok := placed[f]; !ok {
			return nil, fmt.Errorf("quote: field %q is not placed in any step", f)
		}
	}

	def.steps = raw.Steps
	def.hidden = raw.Hidden

	if err := def.compileRules(); err != nil {
		return nil, err
	}
	return def, nil
}

// compileRules validates every rule and records, for each field, the select
// fields whose option sets read it.
func (d *Definition) compileRules() error {
	inspector, _ := d.evaluator.(visibility.Inspector)
	empty := visibility.Context{}
	d.dependents = make(map[Field][]Field)

	for _, f := range Fields {
		spec := d.fields[f]
		if _, err := d.evaluator.Eval(string(f), spec.VisibleWhen, empty); err != nil {
			return fmt.Errorf("quote: field %q visibleWhen: %w", f, err)
		}
		if spec.Kind != KindSelect {
			continue
		}

		sources := make(map[Field]struct{})
		for _, opt := range spec.Options {
			if _, err := d.evaluator.Eval(string(f), opt.VisibleWhen, empty); err != nil {
				return fmt.Errorf("quote: field %q option %q visibleWhen: %w", f, opt.Value, err)
			}
			if strings.TrimSpace(opt.VisibleWhen) == "" {
				continue
			}
			if inspector == nil {
				// Without an inspector every other field may affect the options.
				for _, other := range Fields {
					if other != f {
						sources[other] = struct{}{}
					}
				}
				continue
			}
			refs, err := inspector.References(opt.VisibleWhen)
			if err != nil {
				return fmt.Errorf("quote: field %q option %q visibleWhen: %w", f, opt.Value, err)
			}
			for _, ref := range refs {
				if src := Field(ref); src != f {
					sources[src] = struct{}{}
				}
			}
		}
		for _, src := range Fields {
			if _, ok := sources[src]; ok {
				d.dependents[src] = append(d.dependents[src], f)
			}
		}
	}
	return nil
}

// Title returns the form title.
func (d *Definition) Title() string { return d.title }

// StepCount returns N, the fixed number of steps.
func (d *Definition) StepCount() int { return len(d.steps) }

// Step returns the step at index i.
func (d *Definition) Step(i int) (Step, bool) {
	if i < 0 || i >= len(d.steps) {
		return Step{}, false
	}
	return d.steps[i], true
}

// Steps returns a copy of all steps.
func (d *Definition) Steps() []Step {
	return append([]Step(nil), d.steps...)
}

// Hidden lists the fields carried as hidden values.
func (d *Definition) Hidden() []Field {
	return append([]Field(nil), d.hidden...)
}

// Field returns the spec for f.
func (d *Definition) Field(f Field) (FieldSpec, bool) {
	spec, ok := d.fields[f]
	return spec, ok
}

// Label returns the display label for f.
func (d *Definition) Label(f Field) string {
	if spec, ok := d.fields[f]; ok {
		return spec.Label
	}
	return string(f)
}

// StepOf returns the index of the step containing f, or -1 for hidden fields.
func (d *Definition) StepOf(f Field) int {
	for i, step := range d.steps {
		for _, candidate := range step.Fields {
			if candidate == f {
				return i
			}
		}
	}
	return -1
}

// Options resolves the ordered option list for f against state. Non-select
// fields return nil; a select whose rules all fail returns an empty slice.
func (d *Definition) Options(f Field, state State) []Choice {
	spec, ok := d.fields[f]
	if !ok || spec.Kind != KindSelect {
		return nil
	}
	ctx := visibility.Context{Values: state.Strings()}
	out := make([]Choice, 0, len(spec.Options))
	for _, opt := range spec.Options {
		if !d.eval(f, opt.VisibleWhen, ctx) {
			continue
		}
		out = append(out, Choice{Value: opt.Value, Label: opt.Label})
	}
	return out
}

// Visible reports whether f is rendered/editable given state. Hidden fields
// are never visible.
func (d *Definition) Visible(f Field, state State) bool {
	spec, ok := d.fields[f]
	if !ok || spec.Kind == KindHidden {
		return false
	}
	return d.eval(f, spec.VisibleWhen, visibility.Context{Values: state.Strings()})
}

// Missing lists the required, visible fields of step that are blank.
func (d *Definition) Missing(step int, state State) []Field {
	s, ok := d.Step(step)
	if !ok {
		return nil
	}
	var missing []Field
	for _, f := range s.Fields {
		spec := d.fields[f]
		if !spec.Required || !d.Visible(f, state) {
			continue
		}
		if strings.TrimSpace(state.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete is the per-step advancement predicate.
func (d *Definition) Complete(step int, state State) bool {
	if _, ok := d.Step(step); !ok {
		return false
	}
	return len(d.Missing(step, state)) == 0
}

func (d *Definition) eval(f Field, rule string, ctx visibility.Context) bool {
	ok, err := d.evaluator.Eval(string(f), rule, ctx)
	if err != nil {
		return false
	}
	return ok
}

func (d *Definition) dependentsOf(f Field) []Field {
	return d.dependents[f]
}
