package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/api/middleware"
	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/api/validators"
	"github.com/sakuapp/saku-backend/internal/accounts"
	"github.com/sakuapp/saku-backend/internal/ledger"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

type createAccountRequest struct {
	Name string `json:"name" validate:"required"`
	// Opening balance; accepts a JSON number or decimal string.
	Balance decimal.Decimal `json:"balance"`
	Color   string          `json:"color,omitempty"`
	Icon    string          `json:"icon,omitempty"`
}

type accountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
	Color   string `json:"color,omitempty"`
	Icon    string `json:"icon,omitempty"`
}

func toAccountResponse(account models.Account) accountResponse {
	return accountResponse{
		ID:      account.ID.String(),
		Name:    account.Name,
		Balance: account.Balance.StringFixed(2),
		Color:   account.Color,
		Icon:    account.Icon,
	}
}

func ListAccounts(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		rows, err := svc.ListAccounts(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]accountResponse, 0, len(rows))
		for _, account := range rows {
			out = append(out, toAccountResponse(account))
		}
		responses.WriteSuccess(w, out)
	}
}

func GetAccount(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		accountID, err := validators.ParseUUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		account, err := svc.GetAccount(ctx, ownerID, accountID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAccountResponse(*account))
	}
}

func CreateAccount(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		var req createAccountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.CreateAccount(ctx, ownerID, accounts.CreateAccountInput{
			Name:    req.Name,
			Balance: req.Balance,
			Color:   req.Color,
			Icon:    req.Icon,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toAccountResponse(*account))
	}
}

type updateAccountRequest struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

func UpdateAccount(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		accountID, err := validators.ParseUUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req updateAccountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.UpdateAccount(ctx, ownerID, accountID, accounts.UpdateAccountInput{
			Name:  req.Name,
			Color: req.Color,
			Icon:  req.Icon,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAccountResponse(*account))
	}
}

func DeleteAccount(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		accountID, err := validators.ParseUUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteAccount(ctx, ownerID, accountID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// VerifyAccount exposes the balance-vs-ledger comparison for an account.
func VerifyAccount(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		accountID, err := validators.ParseUUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.VerifyAccount(ctx, ownerID, accountID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"account_id": result.AccountID.String(),
			"balance":    result.Balance.StringFixed(2),
			"ledger_sum": result.LedgerSum.StringFixed(2),
			"consistent": result.Consistent,
		})
	}
}
