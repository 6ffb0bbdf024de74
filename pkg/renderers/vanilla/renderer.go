package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/render"
	rendertemplate "github.com/goliatone/go-quoteform/pkg/render/template"
	"github.com/goliatone/go-quoteform/pkg/render/template/engine"
)

const formPartial = "quote.form"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	selector         theme.ThemeSelector
	themeName        string
	themeVariant     string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithThemeSelector resolves themes through selector instead of the bundled
// manifest.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		if selector != nil {
			cfg.selector = selector
		}
	}
}

// WithTheme sets the default theme name and variant.
func WithTheme(name, variant string) Option {
	return func(cfg *config) {
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}

// Renderer renders the current step as a complete HTML page.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.selector == nil {
		cfg.selector = NewManifestSelector(cfg.themeVariant, DefaultManifest())
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		e, err := engine.New(engine.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = e
	}

	return &Renderer{
		templates:    renderer,
		selector:     cfg.selector,
		themeName:    cfg.themeName,
		themeVariant: cfg.themeVariant,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, view quote.View, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	variant := r.themeVariant
	if options.ThemeVariant != "" {
		variant = options.ThemeVariant
	}
	selection, err := r.selector.Select(r.themeName, variant)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: select theme: %w", err)
	}
	themeCfg := RendererConfig(selection)

	name := "form.tpl"
	themeData := map[string]any{"variant": "light"}
	if themeCfg != nil {
		if partial := themeCfg.Partials[formPartial]; partial != "" {
			name = partial
		}
		if themeCfg.Variant != "" {
			themeData["variant"] = themeCfg.Variant
		}
		themeData["name"] = themeCfg.Theme
		themeData["cssVars"] = cssVarsStyle(themeCfg.CSSVars)
		themeData["stylesheet"] = themeCfg.AssetURL("stylesheet")
	}

	result, err := r.templates.RenderTemplate(name, map[string]any{
		"view":       view,
		"progress":   fmt.Sprintf("Etapa %d de %d", view.Step+1, view.Total),
		"action":     options.Action,
		"contactUrl": options.ContactURL,
		"hidden":     options.Hidden,
		"notices":    options.Notices,
		"theme":      themeData,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
