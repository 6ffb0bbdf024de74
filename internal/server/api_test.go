package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-quoteform/internal/logging"
	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/renderers/vanilla"
)

type apiQuote struct {
	Session string     `json:"session"`
	Moved   *bool      `json:"moved"`
	View    quote.View `json:"view"`
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func (h *harness) api(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return h.do(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func fieldValue(view quote.View, name string) string {
	for _, f := range view.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestAPIGetQuoteCreatesSession(t *testing.T) {
	h := newHarness(t)

	rec := h.api(http.MethodGet, "/api/quote?ref=IND123", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[apiQuote](t, rec)
	assert.NotEmpty(t, got.Session)
	assert.Equal(t, h.cookie.Value, got.Session)
	assert.Equal(t, 0, got.View.Step)
	assert.Equal(t, 3, got.View.Total)
	assert.False(t, got.View.CanAdvance)
	assert.Nil(t, got.Moved)
}

func TestAPISetFieldsAndAdvance(t *testing.T) {
	h := newHarness(t)
	h.api(http.MethodGet, "/api/quote", "")

	rec := h.api(http.MethodPost, "/api/quote/advance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	blocked := decode[apiQuote](t, rec)
	require.NotNil(t, blocked.Moved)
	assert.False(t, *blocked.Moved)
	assert.NotEmpty(t, blocked.View.Guidance)

	rec = h.api(http.MethodPut, "/api/quote/fields",
		`{"fields":{"quoteType":"seguro","name":"Ana","phone":"11988887777","birthDate":"02/02/1992"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	set := decode[apiQuote](t, rec)
	assert.Equal(t, "Ana", fieldValue(set.View, "name"))
	assert.True(t, set.View.CanAdvance)

	rec = h.api(http.MethodPost, "/api/quote/advance", "")
	moved := decode[apiQuote](t, rec)
	require.NotNil(t, moved.Moved)
	assert.True(t, *moved.Moved)
	assert.Equal(t, "vehicle", moved.View.StepID)

	rec = h.api(http.MethodPost, "/api/quote/retreat", "")
	back := decode[apiQuote](t, rec)
	assert.Equal(t, 0, back.View.Step)
}

func TestAPISetFieldsRejections(t *testing.T) {
	h := newHarness(t)
	h.api(http.MethodGet, "/api/quote?ref=IND123", "")

	cases := map[string]struct {
		body   string
		status int
		field  string
	}{
		"read-only referral": {`{"fields":{"referralCode":"X"}}`, http.StatusUnprocessableEntity, "referralCode"},
		"unknown field":      {`{"fields":{"favouriteColour":"azul"}}`, http.StatusUnprocessableEntity, "favouriteColour"},
		"non-string value":   {`{"fields":{"name":5}}`, http.StatusBadRequest, ""},
		"empty fields":       {`{"fields":{}}`, http.StatusBadRequest, ""},
		"extra property":     {`{"fields":{"name":"Ana"},"step":2}`, http.StatusBadRequest, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := h.api(http.MethodPut, "/api/quote/fields", tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			got := decode[apiError](t, rec)
			assert.NotEmpty(t, got.Error)
			assert.Equal(t, tc.field, got.Field)
		})
	}
}

func TestAPIUnknownActionRejected(t *testing.T) {
	h := newHarness(t)
	h.api(http.MethodGet, "/api/quote", "")

	rec := h.api(http.MethodPost, "/api/quote/launch", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIRequiresSession(t *testing.T) {
	h := newHarness(t)
	rec := h.api(http.MethodPut, "/api/quote/fields", `{"fields":{"name":"Ana"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session not found", decode[apiError](t, rec).Error)
}

func TestAPISubmit(t *testing.T) {
	h := newHarness(t)
	h.api(http.MethodGet, "/api/quote", "")

	rec := h.api(http.MethodPost, "/api/quote/submit", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	body := `{"fields":{"quoteType":"seguro","name":"Ana","phone":"11988887777","birthDate":"02/02/1992",` +
		`"vehicleType":"moto","vehiclePlate":"ABC1D23","vehicleUsage":"trabalho","postalCode":"01310000"}}`
	require.Equal(t, http.StatusOK, h.api(http.MethodPut, "/api/quote/fields", body).Code)
	h.api(http.MethodPost, "/api/quote/advance", "")
	h.api(http.MethodPost, "/api/quote/advance", "")

	rec = h.api(http.MethodPost, "/api/quote/submit", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var link struct {
		Link string `json:"link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.Contains(t, link.Link, quote.EncodeComponent("Tipo de veículo: moto"))
	assert.Contains(t, link.Link, quote.EncodeComponent("Cidade: São Paulo"))
	assert.Nil(t, h.cookie)
}

func TestAPIContact(t *testing.T) {
	h := newHarness(t)
	rec := h.api(http.MethodPost, "/api/quote/contact", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var link struct {
		Link string `json:"link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.Equal(t, quote.DefaultMessenger().ContactLink(), link.Link)
}

func TestAPIVehicleTypeSwitchClearsStaleSelections(t *testing.T) {
	h := newHarness(t)
	h.api(http.MethodGet, "/api/quote", "")

	rec := h.api(http.MethodPut, "/api/quote/fields",
		`{"fields":{"vehicleType":"carro","vehicleCategory":"hatch","vehicleUsage":"transporte escolar"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	car := decode[apiQuote](t, rec)
	assert.Equal(t, "hatch", fieldValue(car.View, "vehicleCategory"))
	assert.Equal(t, "transporte escolar", fieldValue(car.View, "vehicleUsage"))

	rec = h.api(http.MethodPut, "/api/quote/fields",
		`{"fields":{"vehicleType":"moto","vehicleCategory":"hatch","vehicleUsage":"transporte escolar"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moto := decode[apiQuote](t, rec)
	assert.Empty(t, fieldValue(moto.View, "vehicleCategory"))
	assert.Empty(t, fieldValue(moto.View, "vehicleUsage"))

	snap := h.snapshot()
	assert.Equal(t, "moto", snap.Values["vehicleType"])
	assert.Empty(t, snap.Values["vehicleCategory"])
	assert.Empty(t, snap.Values["vehicleUsage"])
}

func TestFormOrderPutsSourcesFirst(t *testing.T) {
	renderer, err := vanilla.New()
	require.NoError(t, err)
	srv, err := New(Config{Logger: logging.Discard(), Store: session.NewMemoryStore(0), Renderer: renderer})
	require.NoError(t, err)

	got := srv.formOrder(map[string]string{
		"vehicleUsage":    "",
		"vehicleCategory": "",
		"vehicleType":     "",
		"zeta":            "",
		"name":            "",
		"alpha":           "",
	})
	assert.Equal(t, []string{"name", "vehicleType", "vehicleCategory", "vehicleUsage", "alpha", "zeta"}, got)
}
