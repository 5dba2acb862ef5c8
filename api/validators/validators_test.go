package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
)

func TestDecodeJSONBodyValidates(t *testing.T) {
	type payload struct {
		Name   string `json:"name" validate:"required"`
		Amount string `json:"amount" validate:"required"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`))
	var dest payload
	err := DecodeJSONBody(r, &dest)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", pkgerrors.As(err).Details())
	}
	if details["amount"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x","bogus":true}`))
	var dest payload
	if err := DecodeJSONBody(r, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=15", nil)
	got, err := ParseQueryInt(r, "limit", 20, 1, 100)
	if err != nil || got != 15 {
		t.Fatalf("got %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 20, 1, 100)
	if err != nil || got != 20 {
		t.Fatalf("default: got %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?limit=999", nil)
	if _, err := ParseQueryInt(r, "limit", 20, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for out of range, got %v", err)
	}

	r = httptest.NewRequest("GET", "/?limit=abc", nil)
	if _, err := ParseQueryInt(r, "limit", 20, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for non-numeric, got %v", err)
	}
}

func TestParseQueryDate(t *testing.T) {
	r := httptest.NewRequest("GET", "/?from=2025-06-15", nil)
	got, err := ParseQueryDate(r, "from")
	if err != nil || got == nil {
		t.Fatalf("got %v, %v", got, err)
	}
	if got.Year() != 2025 || got.Month() != 6 || got.Day() != 15 {
		t.Fatalf("unexpected date %v", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got, err := ParseQueryDate(r, "from"); err != nil || got != nil {
		t.Fatalf("absent param: got %v, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?from=15-06-2025", nil)
	if _, err := ParseQueryDate(r, "from"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for bad format, got %v", err)
	}
}
