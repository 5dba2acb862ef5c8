package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
)

const (
	defaultBaseURL        = "https://api.sakuquotes.dev/v1"
	responseBodyReadLimit = 1 << 20
	defaultTimeout        = 10 * time.Second
)

var errBaseURLRequired = errors.New("quote base url is required")

// Quote is a point-in-time price for a symbol. Prices are never persisted.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	AsOf   time.Time
}

// Source fetches the current price for a symbol.
type Source interface {
	Fetch(ctx context.Context, symbol string) (Quote, error)
}

// Client calls the hosted quote-price service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a quote client for the given base URL and API key.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.baseURL == "" {
		return nil, errBaseURLRequired
	}

	return client, nil
}

type quoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"as_of"`
}

// Fetch returns the latest price for the symbol.
func (c *Client) Fetch(ctx context.Context, symbol string) (Quote, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "symbol is required")
	}

	endpoint := fmt.Sprintf("%s/quote?%s", c.baseURL, url.Values{"symbol": {normalized}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build quote request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call quote service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read quote response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Quote{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no quote for symbol %s", normalized))
	case resp.StatusCode != http.StatusOK:
		return Quote{}, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("quote service returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"symbol": normalized})
	}

	var payload quoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode quote response")
	}

	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	return Quote{Symbol: normalized, Price: payload.Price, AsOf: asOf}, nil
}
