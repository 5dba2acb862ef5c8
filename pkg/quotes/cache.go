package quotes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	QuoteKey(symbol string) string
}

// CachedSource wraps a Source with a redis read-through cache so repeated
// portfolio views within the TTL do not hammer the quote service.
type CachedSource struct {
	source Source
	store  cacheStore
	ttl    time.Duration
}

// NewCachedSource builds a caching layer over the provided source. A nil store
// disables caching entirely.
func NewCachedSource(source Source, store cacheStore, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, store: store, ttl: ttl}
}

type cachedQuote struct {
	Symbol string    `json:"symbol"`
	Price  string    `json:"price"`
	AsOf   time.Time `json:"as_of"`
}

// Fetch returns a cached quote when fresh, falling back to the source. Cache
// write failures are ignored: a quote is better than an error.
func (c *CachedSource) Fetch(ctx context.Context, symbol string) (Quote, error) {
	if c.store == nil || c.ttl <= 0 {
		return c.source.Fetch(ctx, symbol)
	}

	// Any miss, decode failure, or cache outage falls through to the source.
	key := c.store.QuoteKey(symbol)
	if raw, err := c.store.Get(ctx, key); err == nil {
		if quote, ok := decodeCached(raw); ok {
			return quote, nil
		}
	}

	quote, err := c.source.Fetch(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}

	if encoded, err := json.Marshal(cachedQuote{
		Symbol: quote.Symbol,
		Price:  quote.Price.String(),
		AsOf:   quote.AsOf,
	}); err == nil {
		_ = c.store.Set(ctx, key, string(encoded), c.ttl)
	}

	return quote, nil
}

func decodeCached(raw string) (Quote, bool) {
	var payload cachedQuote
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Quote{}, false
	}
	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return Quote{}, false
	}
	return Quote{Symbol: payload.Symbol, Price: price, AsOf: payload.AsOf}, true
}
