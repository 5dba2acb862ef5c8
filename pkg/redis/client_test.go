package redis

import (
	"testing"

	"github.com/sakuapp/saku-backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when url and address are both empty")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pass@localhost:6380/2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	if got := c.RateLimitKey("key:abc"); got != "saku:rate_limit:key:abc" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := c.QuoteKey("bbca"); got != "saku:quote:BBCA" {
		t.Fatalf("unexpected quote key %q", got)
	}
	if got := c.APIKeyOwnerKey("deadbeef"); got != "saku:api_key_owner:deadbeef" {
		t.Fatalf("unexpected api key owner key %q", got)
	}
}
