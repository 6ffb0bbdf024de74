package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-quoteform/internal/logging"
	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/postal"
	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/renderers/vanilla"
)

var paulista = postal.Address{
	PostalCode:   "01310000",
	Street:       "Avenida Paulista",
	Neighborhood: "Bela Vista",
	City:         "São Paulo",
	State:        "SP",
}

type harness struct {
	t       *testing.T
	handler http.Handler
	store   *session.MemoryStore
	cookie  *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	renderer, err := vanilla.New()
	require.NoError(t, err)

	store := session.NewMemoryStore(0)
	lookup := postal.LookupFunc(func(_ context.Context, code string) (postal.Address, error) {
		if code == paulista.PostalCode {
			return paulista, nil
		}
		return postal.Address{}, postal.ErrNotFound
	})
	srv, err := New(Config{
		Logger:   logging.Discard(),
		Store:    store,
		Renderer: renderer,
		Lookup:   lookup,
		Assets:   vanilla.AssetsFS(),
	})
	require.NoError(t, err)
	return &harness{t: t, handler: srv.Handler(), store: store}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name != CookieName {
			continue
		}
		if c.MaxAge < 0 {
			h.cookie = nil
		} else {
			h.cookie = c
		}
	}
	return rec
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *harness) post(step int, action string, fields map[string]string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("_step", strconv.Itoa(step))
	form.Set("action", action)
	for k, v := range fields {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/step", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) snapshot() quote.Snapshot {
	h.t.Helper()
	require.NotNil(h.t, h.cookie, "expected a session cookie")
	snap, err := h.store.Get(context.Background(), h.cookie.Value)
	require.NoError(h.t, err)
	return snap
}

var personal = map[string]string{
	"quoteType": "seguro",
	"name":      "Maria Silva",
	"phone":     "11999998888",
	"birthDate": "01/01/1990",
}

var vehicle = map[string]string{
	"vehicleType":  "carro",
	"vehiclePlate": "ABC1D23",
	"vehicleUsage": "particular",
}

func TestIndexStartsSeededSession(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/?ref=IND123")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Etapa 1 de 3")
	assert.Contains(t, rec.Body.String(), `name="_step" value="0"`)

	snap := h.snapshot()
	assert.True(t, snap.Seeded)
	assert.Equal(t, "IND123", snap.Values["referralCode"])
	assert.Equal(t, 0, snap.Step)
}

func TestIndexResumesSession(t *testing.T) {
	h := newHarness(t)
	h.get("/")
	first := h.cookie.Value

	h.post(0, "next", personal)
	rec := h.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, h.cookie.Value)
	assert.Contains(t, rec.Body.String(), "Etapa 2 de 3")
}

func TestBlockedAdvanceShowsGuidance(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	rec := h.post(0, "next", map[string]string{"name": "Maria"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0, h.snapshot().Step)

	body := h.get("/").Body.String()
	assert.Contains(t, body, "Informe um telefone para contato.")
	assert.Contains(t, body, `value="next" class="qf-button" disabled aria-disabled="true"`)
	assert.NotContains(t, body, "Informe seu nome completo.")
}

func TestFullFlowRedirectsToWhatsApp(t *testing.T) {
	h := newHarness(t)
	h.get("/?ref=IND123")

	require.Equal(t, http.StatusSeeOther, h.post(0, "next", personal).Code)
	require.Equal(t, http.StatusSeeOther, h.post(1, "next", vehicle).Code)
	require.Equal(t, 2, h.snapshot().Step)
	id := h.cookie.Value

	rec := h.post(2, "submit", map[string]string{"postalCode": "01310-000"})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://wa.me/5511976447001?text="), location)
	assert.Contains(t, location, quote.EncodeComponent("Código de indicação: IND123"))
	assert.Contains(t, location, quote.EncodeComponent("Rua: Avenida Paulista"))
	assert.Contains(t, location, quote.EncodeComponent("CEP: 01310000"))

	assert.Nil(t, h.cookie, "session cookie should be cleared")
	_, err := h.store.Get(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestBackKeepsValues(t *testing.T) {
	h := newHarness(t)
	h.get("/")
	h.post(0, "next", personal)
	h.post(1, "back", map[string]string{"vehiclePlate": "XYZ9A87"})

	snap := h.snapshot()
	assert.Equal(t, 0, snap.Step)
	assert.Equal(t, "XYZ9A87", snap.Values["vehiclePlate"])
	assert.Equal(t, "Maria Silva", snap.Values["name"])
}

func TestStaleStepIsNotApplied(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	rec := h.post(2, "next", map[string]string{"name": "Outra Aba"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?notice=stale", rec.Header().Get("Location"))
	assert.Empty(t, h.snapshot().Values["name"])

	body := h.get("/?notice=stale").Body.String()
	assert.Contains(t, body, noticeText[noticeStale])
}

func TestPostWithoutSessionRestarts(t *testing.T) {
	h := newHarness(t)
	rec := h.post(0, "next", personal)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?notice=expired", rec.Header().Get("Location"))
}

func TestPostedMarkupIsStripped(t *testing.T) {
	h := newHarness(t)
	h.get("/")
	h.post(0, "update", map[string]string{"name": "<b>Maria</b> & Filhos<script>alert(1)</script>"})
	assert.Equal(t, "Maria & Filhos", h.snapshot().Values["name"])
}

func TestReferralCannotBePosted(t *testing.T) {
	h := newHarness(t)
	h.get("/?ref=IND123")
	h.post(0, "update", map[string]string{"referralCode": "HACK"})
	assert.Equal(t, "IND123", h.snapshot().Values["referralCode"])
}

func TestContactRedirect(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/contact")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, quote.DefaultMessenger().ContactLink(), rec.Header().Get("Location"))
}

func TestHealthAndAssets(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	rec = h.get("/assets/" + vanilla.StylesheetName)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Store: session.NewMemoryStore(0)})
	assert.Error(t, err)
}

func TestVehicleTypeSwitchClearsStaleSelections(t *testing.T) {
	cases := map[string]struct {
		posted       map[string]string
		wantCategory string
		wantUsage    string
	}{
		"stale usage and category": {
			posted:       map[string]string{"vehicleType": "moto", "vehiclePlate": "ABC1D23", "vehicleCategory": "hatch", "vehicleUsage": "transporte escolar"},
			wantCategory: "",
			wantUsage:    "",
		},
		"shared usage survives": {
			posted:       map[string]string{"vehicleType": "moto", "vehiclePlate": "ABC1D23", "vehicleCategory": "trail", "vehicleUsage": "trabalho"},
			wantCategory: "trail",
			wantUsage:    "trabalho",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.get("/")
			h.post(0, "next", personal)
			h.post(1, "update", map[string]string{
				"vehicleType":     "carro",
				"vehiclePlate":    "ABC1D23",
				"vehicleCategory": "hatch",
				"vehicleUsage":    "transporte escolar",
			})

			rec := h.post(1, "next", tc.posted)
			require.Equal(t, http.StatusSeeOther, rec.Code)

			snap := h.snapshot()
			assert.Equal(t, "moto", snap.Values["vehicleType"])
			assert.Equal(t, tc.wantCategory, snap.Values["vehicleCategory"])
			assert.Equal(t, tc.wantUsage, snap.Values["vehicleUsage"])
			if tc.wantUsage == "" {
				assert.Equal(t, 1, snap.Step, "blank usage must block the vehicle step")
			} else {
				assert.Equal(t, 2, snap.Step)
			}
		})
	}
}
