package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
)

func TestClientFetchParsesQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BBCA" {
			t.Fatalf("unexpected symbol query %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BBCA","price":"10250.50"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token-123")
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}

	quote, err := client.Fetch(context.Background(), "bbca")
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if quote.Symbol != "BBCA" {
		t.Fatalf("unexpected symbol %q", quote.Symbol)
	}
	if !quote.Price.Equal(decimal.RequireFromString("10250.50")) {
		t.Fatalf("unexpected price %s", quote.Price)
	}
	if quote.AsOf.IsZero() {
		t.Fatal("expected as-of timestamp to be filled")
	}
}

func TestClientFetchUnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}

	_, err = client.Fetch(context.Background(), "NOPE")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestClientFetchUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}

	_, err = client.Fetch(context.Background(), "BBCA")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestClientFetchRequiresSymbol(t *testing.T) {
	client, err := NewClient("http://localhost:0", "")
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}
	if _, err := client.Fetch(context.Background(), "  "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
