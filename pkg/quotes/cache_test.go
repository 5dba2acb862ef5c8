package quotes

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/pkg/redis"
)

type fakeSource struct {
	calls int
	quote Quote
	err   error
}

func (f *fakeSource) Fetch(ctx context.Context, symbol string) (Quote, error) {
	f.calls++
	if f.err != nil {
		return Quote{}, f.err
	}
	return f.quote, nil
}

type fakeCache struct {
	values map[string]string
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCache) QuoteKey(symbol string) string {
	return "saku:quote:" + strings.ToUpper(symbol)
}

func TestCachedSourceHitsSourceOnceWithinTTL(t *testing.T) {
	source := &fakeSource{quote: Quote{
		Symbol: "BBCA",
		Price:  decimal.RequireFromString("10250.50"),
		AsOf:   time.Now().UTC(),
	}}
	cache := newFakeCache()
	cached := NewCachedSource(source, cache, time.Minute)

	for i := 0; i < 3; i++ {
		quote, err := cached.Fetch(context.Background(), "BBCA")
		if err != nil {
			t.Fatalf("unexpected fetch error: %v", err)
		}
		if !quote.Price.Equal(source.quote.Price) {
			t.Fatalf("unexpected price %s", quote.Price)
		}
	}

	if source.calls != 1 {
		t.Fatalf("expected a single source call, got %d", source.calls)
	}
	if cache.sets != 1 {
		t.Fatalf("expected a single cache write, got %d", cache.sets)
	}
}

func TestCachedSourceBypassesWithoutStore(t *testing.T) {
	source := &fakeSource{quote: Quote{Symbol: "BBCA", Price: decimal.NewFromInt(100)}}
	cached := NewCachedSource(source, nil, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cached.Fetch(context.Background(), "BBCA"); err != nil {
			t.Fatalf("unexpected fetch error: %v", err)
		}
	}
	if source.calls != 2 {
		t.Fatalf("expected passthrough to call source twice, got %d", source.calls)
	}
}

func TestCachedSourceIgnoresCorruptEntries(t *testing.T) {
	source := &fakeSource{quote: Quote{Symbol: "BBCA", Price: decimal.NewFromInt(100)}}
	cache := newFakeCache()
	cache.values[cache.QuoteKey("BBCA")] = "{not json"

	cached := NewCachedSource(source, cache, time.Minute)
	if _, err := cached.Fetch(context.Background(), "BBCA"); err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("corrupt cache entry should fall through to the source, got %d calls", source.calls)
	}
}
