package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/api/middleware"
	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/api/validators"
	"github.com/sakuapp/saku-backend/internal/stocks"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

type createStockRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	Lots   int    `json:"lots" validate:"required,min=1"`
	// Accepts a JSON number or decimal string.
	BuyPrice decimal.Decimal `json:"buy_price"`
}

type holdingResponse struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Lots         int     `json:"lots"`
	BuyPrice     string  `json:"buy_price"`
	CurrentPrice *string `json:"current_price,omitempty"`
	MarketValue  *string `json:"market_value,omitempty"`
	GainLoss     *string `json:"gain_loss,omitempty"`
}

func toHoldingResponse(holding stocks.Holding) holdingResponse {
	out := holdingResponse{
		ID:       holding.Stock.ID.String(),
		Symbol:   holding.Stock.Symbol,
		Lots:     holding.Stock.Lots,
		BuyPrice: holding.Stock.BuyPrice.StringFixed(2),
	}
	if holding.CurrentPrice != nil {
		price := holding.CurrentPrice.StringFixed(2)
		out.CurrentPrice = &price
	}
	if holding.MarketValue != nil {
		value := holding.MarketValue.StringFixed(2)
		out.MarketValue = &value
	}
	if holding.GainLoss != nil {
		gain := holding.GainLoss.StringFixed(2)
		out.GainLoss = &gain
	}
	return out
}

func ListStocks(svc stocks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		holdings, err := svc.ListWithQuotes(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]holdingResponse, 0, len(holdings))
		for _, holding := range holdings {
			out = append(out, toHoldingResponse(holding))
		}
		responses.WriteSuccess(w, out)
	}
}

func CreateStock(svc stocks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		var req createStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		stock, err := svc.CreateStock(ctx, ownerID, stocks.CreateStockInput{
			Symbol:   req.Symbol,
			Lots:     req.Lots,
			BuyPrice: req.BuyPrice,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toHoldingResponse(stocks.Holding{Stock: *stock}))
	}
}

func DeleteStock(svc stocks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		stockID, err := validators.ParseUUIDParam(r, "stockId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteStock(ctx, ownerID, stockID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
