// Package server exposes the quote form over HTTP: server-rendered pages
// using a post/redirect/get flow and a JSON API validated against an embedded
// OpenAPI document.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-quoteform/internal/logging"
	"github.com/goliatone/go-quoteform/internal/metrics"
	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/postal"
	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/render"
)

// CookieName carries the session id.
const CookieName = "qf_session"

const defaultLookupWait = 3 * time.Second

// Config wires the server's collaborators. Store and Renderer are required.
type Config struct {
	Logger     *logging.Logger
	Store      session.Store
	Renderer   render.Renderer
	Definition *quote.Definition
	Lookup     postal.Lookup
	Messenger  quote.Messenger
	Metrics    *metrics.QuoteMetrics
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
	// Assets is served under /assets/ when set.
	Assets fs.FS

	LookupTimeout time.Duration
	// LookupWait bounds how long a request waits for a postal lookup to
	// merge before the session is saved.
	LookupWait   time.Duration
	SessionTTL   time.Duration
	ThemeVariant string
	SecureCookie bool
}

// Server holds the HTTP handlers. It keeps no per-visit state in memory; each
// request restores a controller from the session store.
type Server struct {
	logger       *logging.Logger
	store        session.Store
	renderer     render.Renderer
	def          *quote.Definition
	lookup       postal.Lookup
	messenger    quote.Messenger
	metrics      *metrics.QuoteMetrics
	metricsH     http.Handler
	assets       fs.FS
	policy       *bluemonday.Policy
	api          *apiValidator
	locks        stripedLocks
	lookupTTL    time.Duration
	lookupWait   time.Duration
	sessionTTL   time.Duration
	themeVariant string
	secureCookie bool
}

// New validates cfg and builds a Server. Missing optional collaborators fall
// back to defaults: the embedded definition and a default logger.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: session store is required")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	validator, err := newAPIValidator()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		logger:       cfg.Logger,
		store:        cfg.Store,
		renderer:     cfg.Renderer,
		def:          cfg.Definition,
		messenger:    cfg.Messenger,
		metrics:      cfg.Metrics,
		metricsH:     cfg.MetricsHandler,
		assets:       cfg.Assets,
		policy:       bluemonday.StrictPolicy(),
		api:          validator,
		lookupTTL:    cfg.LookupTimeout,
		lookupWait:   cfg.LookupWait,
		sessionTTL:   cfg.SessionTTL,
		themeVariant: cfg.ThemeVariant,
		secureCookie: cfg.SecureCookie,
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.def == nil {
		s.def = quote.DefaultDefinition()
	}
	if s.lookupWait <= 0 {
		s.lookupWait = defaultLookupWait
	}
	s.lookup = cfg.Lookup
	if s.lookup != nil && s.metrics != nil {
		s.lookup = postal.Instrument(s.lookup, s.metrics)
	}
	return s, nil
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(instrumentRequests(s.metrics))

	r.Get("/healthz", s.handleHealth)
	if s.metricsH != nil {
		r.Handle("/metrics", s.metricsH)
	}
	if s.assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(s.assets))))
	}

	r.Get("/", s.handleIndex)
	r.Post("/step", s.handleStep)
	r.Get("/contact", s.handleContact)

	r.Route("/api/quote", func(api chi.Router) {
		api.Use(s.api.middleware)
		api.Get("/", s.apiGetQuote)
		api.Put("/fields", s.apiSetFields)
		api.Post("/advance", s.apiAdvance)
		api.Post("/retreat", s.apiRetreat)
		api.Post("/submit", s.apiSubmit)
		api.Post("/contact", s.apiContact)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// controller builds an unseeded controller carrying the server's ports.
func (s *Server) controller() *quote.Controller {
	options := []quote.Option{
		quote.WithMessenger(s.messenger),
		quote.WithLogger(s.logger.Logger),
		quote.WithLookupTimeout(s.lookupTTL),
	}
	if s.lookup != nil {
		options = append(options, quote.WithLookup(s.lookup))
	}
	if s.metrics != nil {
		options = append(options, quote.WithObserver(s.metrics))
	}
	return quote.NewController(s.def, options...)
}
