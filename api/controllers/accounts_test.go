package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/internal/accounts"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/types"
)

type stubAccountsService struct {
	updatedID    uuid.UUID
	updatedInput accounts.UpdateAccountInput
	err          error
}

func (s *stubAccountsService) CreateAccount(ctx context.Context, ownerID uuid.UUID, input accounts.CreateAccountInput) (*models.Account, error) {
	panic("unimplemented")
}

func (s *stubAccountsService) GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*models.Account, error) {
	panic("unimplemented")
}

func (s *stubAccountsService) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error) {
	panic("unimplemented")
}

func (s *stubAccountsService) UpdateAccount(ctx context.Context, ownerID, accountID uuid.UUID, input accounts.UpdateAccountInput) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updatedID = accountID
	s.updatedInput = input
	return &models.Account{
		ID:      accountID,
		OwnerID: ownerID,
		Name:    input.Name,
		Balance: decimal.RequireFromString("1000"),
		Color:   input.Color,
	}, nil
}

func (s *stubAccountsService) DeleteAccount(ctx context.Context, ownerID, accountID uuid.UUID) error {
	panic("unimplemented")
}

func TestUpdateAccountController(t *testing.T) {
	svc := &stubAccountsService{}
	r := chi.NewRouter()
	r.Patch("/accounts/{accountId}", UpdateAccount(svc, nil))

	id := uuid.New()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest("PATCH", "/accounts/"+id.String(), `{"name":"savings","color":"#00ff00"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.updatedID != id {
		t.Fatalf("updated %s, want %s", svc.updatedID, id)
	}
	if svc.updatedInput.Name != "savings" || svc.updatedInput.Color != "#00ff00" {
		t.Fatalf("unexpected input %+v", svc.updatedInput)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	payload := body.Data.(map[string]any)
	if payload["name"] != "savings" {
		t.Fatalf("name = %v, want savings", payload["name"])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest("PATCH", "/accounts/not-a-uuid", `{"name":"x"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}
