package quote

import (
	"net/url"
	"strings"
)

const (
	// DefaultMessagingBaseURL is the WhatsApp click-to-chat endpoint.
	DefaultMessagingBaseURL = "https://wa.me/"
	// DefaultDestination is the phone number receiving quote requests.
	DefaultDestination = "5511976447001"
	// DefaultGreeting opens every summary message.
	DefaultGreeting = "Olá, gostaria de uma cotação para seguro auto!"
	// DefaultContactText is sent by the always-available contact action.
	DefaultContactText = "Olá, gostaria de falar com um consultor sobre seguro auto."
)

// Messenger assembles the summary text and the outbound deep link.
type Messenger struct {
	BaseURL     string
	Destination string
	Greeting    string
	ContactText string
}

// DefaultMessenger returns a Messenger using the package defaults.
func DefaultMessenger() Messenger {
	return Messenger{
		BaseURL:     DefaultMessagingBaseURL,
		Destination: DefaultDestination,
		Greeting:    DefaultGreeting,
		ContactText: DefaultContactText,
	}
}

func (m Messenger) withDefaults() Messenger {
	def := DefaultMessenger()
	if strings.TrimSpace(m.BaseURL) == "" {
		m.BaseURL = def.BaseURL
	}
	if strings.TrimSpace(m.Destination) == "" {
		m.Destination = def.Destination
	}
	if m.Greeting == "" {
		m.Greeting = def.Greeting
	}
	if m.ContactText == "" {
		m.ContactText = def.ContactText
	}
	return m
}

// Summary builds the newline-delimited message: greeting, optional referral
// line, then one "Label: value" line per field in the fixed order. Blank
// values keep their line.
func (m Messenger) Summary(def *Definition, state State) string {
	m = m.withDefaults()

	lines := make([]string, 0, len(messageOrder)+2)
	lines = append(lines, m.Greeting)
	if ref := strings.TrimSpace(state.Get(FieldReferralCode)); ref != "" {
		lines = append(lines, def.Label(FieldReferralCode)+": "+ref)
	}
	for _, f := range messageOrder {
		lines = append(lines, def.Label(f)+": "+state.Get(f))
	}
	return strings.Join(lines, "\n")
}

// Link returns <base><destination>?text=<encoded text>.
func (m Messenger) Link(text string) string {
	m = m.withDefaults()
	base := m.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + m.Destination + "?text=" + EncodeComponent(text)
}

// SummaryLink is Link(Summary(def, state)).
func (m Messenger) SummaryLink(def *Definition, state State) string {
	return m.Link(m.Summary(def, state))
}

// ContactLink returns the link for the fixed contact message.
func (m Messenger) ContactLink() string {
	m = m.withDefaults()
	return m.Link(m.ContactText)
}

// componentUnescaper undoes the QueryEscape output that encodeURIComponent
// leaves literal: spaces become %20 and ! ' ( ) * stay as they are.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way encodeURIComponent does.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
