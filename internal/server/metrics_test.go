package server

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-quoteform/internal/logging"
	"github.com/goliatone/go-quoteform/internal/metrics"
	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/renderers/vanilla"
)

func TestMetricsEndpointReportsFlow(t *testing.T) {
	reg := prometheus.NewRegistry()
	renderer, err := vanilla.New()
	require.NoError(t, err)

	srv, err := New(Config{
		Logger:         logging.Discard(),
		Store:          session.NewMemoryStore(0),
		Renderer:       renderer,
		Metrics:        metrics.NewQuoteMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	require.NoError(t, err)
	h := &harness{t: t, handler: srv.Handler()}

	h.get("/")
	h.post(0, "next", nil)
	h.get("/contact")

	rec := h.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `quoteform_form_transitions_total{action="advance",result="blocked"} 1`)
	assert.Contains(t, body, `quoteform_form_dispatch_total{kind="contact"} 1`)
	assert.Contains(t, body, `quoteform_http_requests_total{route="/step",status="3xx"} 1`)
}
