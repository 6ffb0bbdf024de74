package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL points at the public ViaCEP service.
const DefaultBaseURL = "https://viacep.com.br/ws"

const maxResponseBytes = 64 << 10

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for lookups.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithBaseURL overrides the service base URL. The code and format suffix
// ("/<code>/json/") are appended to it.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout bounds each lookup request. Zero disables the per-request
// timeout and leaves cancellation to the caller's context.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// Client resolves postal codes through a ViaCEP-compatible HTTP endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
}

var _ Lookup = (*Client)(nil)

// NewClient constructs a Client with defaults (http.DefaultClient, ViaCEP).
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		http:    http.DefaultClient,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

// Lookup issues GET <base>/<code>/json/ and maps the response into an
// Address. A response flagged with "erro" maps to ErrNotFound.
func (c *Client) Lookup(ctx context.Context, code string) (Address, error) {
	if ctx == nil {
		return Address{}, errors.New("postal: context is required")
	}
	if !Valid(code) {
		return Address{}, ErrInvalidCode
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/%s/json/", c.baseURL, code)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Address{}, fmt.Errorf("postal: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("postal: lookup %s: %w", code, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Address{}, fmt.Errorf("postal: lookup %s: unexpected status %s", code, resp.Status)
	}

	var payload viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return Address{}, fmt.Errorf("postal: decode response: %w", err)
	}
	if flagged(payload.Erro) {
		return Address{}, ErrNotFound
	}

	return Address{
		PostalCode:   code,
		Street:       strings.TrimSpace(payload.Logradouro),
		Neighborhood: strings.TrimSpace(payload.Bairro),
		City:         strings.TrimSpace(payload.Localidade),
		State:        strings.TrimSpace(payload.UF),
	}, nil
}

// flagged interprets the service's error marker, which has been served both as
// a JSON boolean and as the string "true".
func flagged(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}
