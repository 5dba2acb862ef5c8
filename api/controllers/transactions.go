package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/api/middleware"
	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/api/validators"
	"github.com/sakuapp/saku-backend/internal/ledger"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/enums"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
	"github.com/sakuapp/saku-backend/pkg/pagination"
)

type createTransactionRequest struct {
	// Accepts a JSON number or decimal string.
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type" validate:"required,oneof=income expense"`
	CategoryID string          `json:"category_id" validate:"required,uuid"`
	AccountID  string          `json:"account_id" validate:"required,uuid"`
	Title      string          `json:"title,omitempty"`
	// Description is the legacy alias for title.
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
}

type transactionResponse struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id,omitempty"`
	AccountName  string `json:"account_name,omitempty"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	Title        string `json:"title"`
	Date         string `json:"date"`
}

type rangeTotalsResponse struct {
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	NetChange    string `json:"net_change"`
	Count        int64  `json:"transaction_count"`
}

func toTransactionResponse(row models.Transaction) transactionResponse {
	out := transactionResponse{
		ID:         row.ID.String(),
		CategoryID: row.CategoryID.String(),
		Type:       string(row.Type),
		Amount:     row.Amount.StringFixed(2),
		Title:      row.Title,
		Date:       row.Date.Format("2006-01-02"),
	}
	if row.AccountID != nil {
		out.AccountID = row.AccountID.String()
	}
	if row.Account != nil {
		out.AccountName = row.Account.Name
	}
	if row.Category != nil {
		out.CategoryName = row.Category.Name
	}
	return out
}

func toRangeTotalsResponse(totals ledger.RangeTotals) rangeTotalsResponse {
	return rangeTotalsResponse{
		TotalIncome:  totals.TotalIncome.StringFixed(2),
		TotalExpense: totals.TotalExpense.StringFixed(2),
		NetChange:    totals.TotalIncome.Sub(totals.TotalExpense).StringFixed(2),
		Count:        totals.Count,
	}
}

func CreateTransaction(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		var req createTransactionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		title := req.Title
		if title == "" {
			title = req.Description
		}

		date := time.Now().UTC().Truncate(24 * time.Hour)
		if req.Date != "" {
			parsed, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be a YYYY-MM-DD date"))
				return
			}
			date = parsed
		}

		// uuid tags on the request guarantee these parse.
		accountID := uuid.MustParse(req.AccountID)
		categoryID := uuid.MustParse(req.CategoryID)

		row, err := svc.CreateTransaction(ctx, ownerID, ledger.CreateTransactionInput{
			AccountID:  accountID,
			CategoryID: categoryID,
			Type:       enums.TransactionType(req.Type),
			Amount:     req.Amount,
			Title:      title,
			Date:       date,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toTransactionResponse(*row))
	}
}

func GetTransaction(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		transactionID, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		row, err := svc.GetTransaction(ctx, ownerID, transactionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(*row))
	}
}

func DeleteTransaction(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		transactionID, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteTransaction(ctx, ownerID, transactionID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ListTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ListTransactions(ctx, ownerID, ledger.ListParams{
			Pagination: pagination.Params{Limit: limit, Offset: offset},
			From:       from,
			To:         to,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]transactionResponse, 0, len(result.Transactions))
		for _, row := range result.Transactions {
			items = append(items, toTransactionResponse(row))
		}
		payload := map[string]any{"items": items}
		if result.Totals != nil {
			payload["summary"] = toRangeTotalsResponse(*result.Totals)
		}
		responses.WriteSuccess(w, payload)
	}
}

func Summary(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		summary, err := svc.Summary(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		recent := make([]transactionResponse, 0, len(summary.Recent))
		for _, row := range summary.Recent {
			recent = append(recent, toTransactionResponse(row))
		}
		responses.WriteSuccess(w, map[string]any{
			"total_balance":       summary.TotalBalance.StringFixed(2),
			"account_count":       summary.AccountCount,
			"recent_transactions": recent,
		})
	}
}
