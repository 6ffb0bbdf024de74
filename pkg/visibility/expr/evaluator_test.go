package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-quoteform/pkg/visibility"
)

func TestEvaluatorComparison(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("vehicleUsage", `vehicleType == "carro"`, visibility.Context{
		Values: map[string]string{"vehicleType": "carro"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for matching value")
	}

	ok, err = eval.Eval("vehicleUsage", `vehicleType == "carro"`, visibility.Context{
		Values: map[string]string{"vehicleType": "moto"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for different value")
	}
}

func TestEvaluatorTruthyAndNot(t *testing.T) {
	t.Parallel()

	eval := New()
	cases := []struct {
		rule   string
		values map[string]string
		want   bool
	}{
		{rule: "postalCode", values: map[string]string{"postalCode": "01310000"}, want: true},
		{rule: "postalCode", values: map[string]string{"postalCode": "  "}, want: false},
		{rule: "postalCode", values: nil, want: false},
		{rule: "!postalCode", values: nil, want: true},
		{rule: `postalCode != ""`, values: map[string]string{"postalCode": "0131"}, want: true},
		{rule: `postalCode != ""`, values: map[string]string{}, want: false},
	}

	for _, tc := range cases {
		got, err := eval.Eval("street", tc.rule, visibility.Context{Values: tc.values})
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) with %v = %v, want %v", tc.rule, tc.values, got, tc.want)
		}
	}
}

func TestEvaluatorComposition(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `vehicleType == "carro" && (vehicleUsage == 'aplicativo' || !vehicleValue)`

	ok, err := eval.Eval("x", rule, visibility.Context{Values: map[string]string{
		"vehicleType":  "carro",
		"vehicleUsage": "aplicativo",
		"vehicleValue": "acima de 100 mil",
	}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true via || branch")
	}

	ok, err = eval.Eval("x", rule, visibility.Context{Values: map[string]string{
		"vehicleType":  "moto",
		"vehicleUsage": "aplicativo",
	}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected false when && left side fails")
	}
}

func TestEvaluatorBlankRule(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("x", "   ", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("blank rule should be visible")
	}
}

func TestEvaluatorSyntaxErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		`vehicleType = "carro"`,
		`a & b`,
		`a | b`,
		`(a == "b"`,
		`a == `,
		`"open`,
		`a == "b" c`,
		`a # b`,
	} {
		if err := eval.Compile(rule); err == nil {
			t.Fatalf("expected error compiling %q", rule)
		}
	}
}

func TestEvaluatorReferences(t *testing.T) {
	t.Parallel()

	refs, err := New().References(`vehicleType == "carro" || (postalCode && vehicleType != other)`)
	if err != nil {
		t.Fatalf("References returned error: %v", err)
	}
	want := []string{"other", "postalCode", "vehicleType"}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}

	refs, err = New().References("")
	if err != nil {
		t.Fatalf("References returned error: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected no references for blank rule, got %v", refs)
	}
}

func TestEvaluatorEscapedString(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("x", `name == "Maria \"Mary\" Silva"`, visibility.Context{
		Values: map[string]string{"name": `Maria "Mary" Silva`},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected escaped quotes to match")
	}
}
