package quote

import (
	"strings"
	"testing"
)

func TestEncodeComponent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a b":         "a%20b",
		"1+1=2":       "1%2B1%3D2",
		"linha\nnova": "linha%0Anova",
		"São Paulo":   "S%C3%A3o%20Paulo",
		"":            "",

		"Olá, gostaria! (sim) 'a' *b*": "Ol%C3%A1%2C%20gostaria!%20(sim)%20'a'%20*b*",
		"a-b_c.d~e":                    "a-b_c.d~e",
		"50% & #1":                     "50%25%20%26%20%231",
	}
	for in, want := range cases {
		if got := EncodeComponent(in); got != want {
			t.Fatalf("EncodeComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummaryOmitsBlankReferralOnly(t *testing.T) {
	t.Parallel()

	def := DefaultDefinition()
	text := DefaultMessenger().Summary(def, NewState(nil))
	lines := strings.Split(text, "\n")

	if lines[0] != DefaultGreeting {
		t.Fatalf("expected greeting first, got %q", lines[0])
	}
	if len(lines) != len(messageOrder)+1 {
		t.Fatalf("expected %d lines, got %d", len(messageOrder)+1, len(lines))
	}
	if strings.Contains(text, def.Label(FieldReferralCode)) {
		t.Fatalf("blank referral must be omitted:\n%s", text)
	}
	for i, f := range messageOrder {
		if want := def.Label(f) + ": "; lines[i+1] != want {
			t.Fatalf("line %d = %q, want %q", i+1, lines[i+1], want)
		}
	}
}

func TestMessengerOverrides(t *testing.T) {
	t.Parallel()

	m := Messenger{BaseURL: "https://chat.example.com", Destination: "5521900000000"}
	link := m.Link("oi")
	if want := "https://chat.example.com/5521900000000?text=oi"; link != want {
		t.Fatalf("Link = %q, want %q", link, want)
	}
	if got := m.ContactLink(); !strings.HasSuffix(got, EncodeComponent(DefaultContactText)) {
		t.Fatalf("expected default contact text, got %q", got)
	}
}
