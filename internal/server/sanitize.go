package server

import (
	"html"
	"strings"

	"github.com/goliatone/go-quoteform/pkg/postal"
	"github.com/goliatone/go-quoteform/pkg/quote"
)

// clean strips markup from user input. The policy escapes what it keeps, so
// entities are decoded again; templates escape on output.
func (s *Server) clean(f quote.Field, raw string) string {
	value := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
	if f == quote.FieldPostalCode {
		value = postal.Sanitize(value)
	}
	return value
}
