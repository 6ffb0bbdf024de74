package quote

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-quoteform/pkg/visibility"
)

func TestDefaultDefinitionLayout(t *testing.T) {
	t.Parallel()

	def := DefaultDefinition()
	if def.StepCount() != 3 {
		t.Fatalf("expected 3 steps, got %d", def.StepCount())
	}
	var ids []string
	for _, step := range def.Steps() {
		ids = append(ids, step.ID)
	}
	if diff := cmp.Diff([]string{"personal", "vehicle", "address"}, ids); diff != "" {
		t.Fatalf("step ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Field{FieldReferralCode}, def.Hidden()); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if got := def.StepOf(FieldPostalCode); got != 2 {
		t.Fatalf("expected postal code on step 2, got %d", got)
	}
	if got := def.StepOf(FieldReferralCode); got != -1 {
		t.Fatalf("expected referral off-step, got %d", got)
	}
}

func TestDefinitionDependents(t *testing.T) {
	t.Parallel()

	def := DefaultDefinition()
	if diff := cmp.Diff([]Field{FieldVehicleCategory, FieldVehicleUsage}, def.dependentsOf(FieldVehicleType)); diff != "" {
		t.Fatalf("dependents mismatch (-want +got):\n%s", diff)
	}
	if deps := def.dependentsOf(FieldName); len(deps) != 0 {
		t.Fatalf("expected no dependents for name, got %v", deps)
	}
}

func TestLoadDefinitionValidation(t *testing.T) {
	t.Parallel()

	base := string(embeddedDefinition)
	cases := map[string]struct {
		data string
		want string
	}{
		"empty": {
			data: "  ",
			want: "definition is empty",
		},
		"unknown field": {
			data: base + "\n  favouriteColour:\n    label: Cor\n",
			want: "unknown field",
		},
		"bad rule": {
			data: strings.Replace(base, `visibleWhen: 'postalCode != ""'`, `visibleWhen: 'postalCode ==='`, 1),
			want: "visibleWhen",
		},
		"duplicate placement": {
			data: strings.Replace(base, "hidden: [referralCode]", "hidden: [referralCode, name]", 1),
			want: "placed in both",
		},
		"unplaced field": {
			data: strings.Replace(base, "hidden: [referralCode]", "hidden: []", 1),
			want: "not placed",
		},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadDefinition([]byte(tc.data))
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWithEvaluatorWithoutInspector(t *testing.T) {
	t.Parallel()

	always := visibility.EvaluatorFunc(func(string, string, visibility.Context) (bool, error) {
		return true, nil
	})
	def, err := LoadDefinition(embeddedDefinition, WithEvaluator(always))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	state := NewState(nil)
	if got := len(def.Options(FieldVehicleCategory, state)); got != 6 {
		t.Fatalf("expected every category offered, got %d", got)
	}
	if deps := def.dependentsOf(FieldName); len(deps) != 2 {
		t.Fatalf("expected conservative dependents without an inspector, got %v", deps)
	}
}
