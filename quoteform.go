// Package quoteform is the top-level entry point for embedding the auto
// insurance quote form: controller construction, the renderer registry and the
// embedded templates and assets.
package quoteform

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/render"
	"github.com/goliatone/go-quoteform/pkg/renderers/vanilla"
)

// View aliases quote.View for callers that only render.
type View = quote.View

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewController builds a controller over the embedded form definition.
func NewController(options ...quote.Option) *quote.Controller {
	return quote.NewController(quote.DefaultDefinition(), options...)
}

// NewRegistry returns a renderer registry holding the built-in HTML renderer,
// which is also the default.
func NewRegistry(options ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, fmt.Errorf("quoteform: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, fmt.Errorf("quoteform: %w", err)
	}
	return registry, nil
}

// RenderHTML renders the controller's current step with the built-in HTML
// renderer.
func RenderHTML(ctx context.Context, ctrl *quote.Controller, options RenderOptions) ([]byte, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Get("")
	if err != nil {
		return nil, err
	}
	view := ctrl.View()
	if options.Hidden == nil {
		options.Hidden = render.HiddenFields(render.StepField(view.Step))
	}
	return renderer.Render(ctx, view, options)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can extend
// them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the built-in stylesheet for static serving.
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}
