package render

import (
	"context"

	"github.com/goliatone/go-quoteform/pkg/quote"
)

// Renderer turns the current step view into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view quote.View, options RenderOptions) ([]byte, error)
}
