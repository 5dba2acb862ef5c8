package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/api/middleware"
	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/api/validators"
	"github.com/sakuapp/saku-backend/internal/freedom"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

type freedomRequest struct {
	// Decimal fields accept JSON numbers or decimal strings.
	InitialSavings  decimal.Decimal `json:"initial_savings"`
	MonthlySavings  decimal.Decimal `json:"monthly_savings"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	ReturnRate      decimal.Decimal `json:"return_rate"`
	Dependents      int             `json:"dependents"`
}

func (r freedomRequest) inputs() freedom.Inputs {
	return freedom.Inputs{
		InitialSavings:  r.InitialSavings,
		MonthlySavings:  r.MonthlySavings,
		MonthlyExpenses: r.MonthlyExpenses,
		MonthlyIncome:   r.MonthlyIncome,
		ReturnRate:      r.ReturnRate,
		Dependents:      r.Dependents,
	}
}

type yearPointResponse struct {
	Year    int    `json:"year"`
	Balance string `json:"balance"`
}

type projectionResponse struct {
	TargetAmount   string              `json:"target_amount"`
	AnnualSavings  string              `json:"annual_savings"`
	AnnualExpenses string              `json:"annual_expenses"`
	YearsToTarget  int                 `json:"years_to_target"`
	Reachable      bool                `json:"reachable"`
	Curve          []yearPointResponse `json:"curve"`
	Recommendation map[string]string   `json:"recommendation,omitempty"`
}

func toProjectionResponse(p freedom.Projection) projectionResponse {
	out := projectionResponse{
		TargetAmount:   p.TargetAmount.StringFixed(2),
		AnnualSavings:  p.AnnualSavings.StringFixed(2),
		AnnualExpenses: p.AnnualExpenses.StringFixed(2),
		YearsToTarget:  p.YearsToTarget,
		Reachable:      p.Reachable,
	}
	for _, point := range p.Curve {
		out.Curve = append(out.Curve, yearPointResponse{Year: point.Year, Balance: point.Balance.StringFixed(2)})
	}
	if p.Recommendation != nil {
		out.Recommendation = map[string]string{
			"needs":   p.Recommendation.Needs.StringFixed(2),
			"wants":   p.Recommendation.Wants.StringFixed(2),
			"savings": p.Recommendation.Savings.StringFixed(2),
		}
	}
	return out
}

func FreedomPreview(svc freedom.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req freedomRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		projection, err := svc.Preview(ctx, req.inputs())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProjectionResponse(*projection))
	}
}

func FreedomSave(svc freedom.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		var req freedomRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Save(ctx, ownerID, req.inputs())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"entry_id":   result.Entry.ID.String(),
			"projection": toProjectionResponse(result.Projection),
		})
	}
}

func FreedomLatest(svc freedom.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		result, err := svc.Latest(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"entry_id": result.Entry.ID.String(),
			"inputs": map[string]any{
				"initial_savings":  result.Entry.InitialSavings.StringFixed(2),
				"monthly_savings":  result.Entry.MonthlySavings.StringFixed(2),
				"monthly_expenses": result.Entry.MonthlyExpenses.StringFixed(2),
				"monthly_income":   result.Entry.MonthlyIncome.StringFixed(2),
				"return_rate":      result.Entry.ReturnRate.String(),
				"dependents":       result.Entry.Dependents,
			},
			"projection": toProjectionResponse(result.Projection),
		})
	}
}
