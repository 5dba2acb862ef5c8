package stocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/pkg/db"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
	"github.com/sakuapp/saku-backend/pkg/quotes"
)

// CreateStockInput carries a new holding. BuyPrice is per lot.
type CreateStockInput struct {
	Symbol   string
	Lots     int
	BuyPrice decimal.Decimal
}

// Holding decorates a stored stock with live market data. Quote fields stay
// nil when the quote source is unavailable; the holding itself always renders.
type Holding struct {
	Stock        models.Stock
	CurrentPrice *decimal.Decimal
	MarketValue  *decimal.Decimal
	GainLoss     *decimal.Decimal
}

// Service manages portfolio holdings.
type Service interface {
	CreateStock(ctx context.Context, ownerID uuid.UUID, input CreateStockInput) (*models.Stock, error)
	ListStocks(ctx context.Context, ownerID uuid.UUID) ([]models.Stock, error)
	ListWithQuotes(ctx context.Context, ownerID uuid.UUID) ([]Holding, error)
	DeleteStock(ctx context.Context, ownerID, stockID uuid.UUID) error
}

type service struct {
	repo   Repository
	quotes quotes.Source
	logg   *logger.Logger
}

// NewService builds the stocks service. The quote source may be nil, in which
// case ListWithQuotes returns bare holdings.
func NewService(repo Repository, source quotes.Source, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stocks repository required")
	}
	return &service{repo: repo, quotes: source, logg: logg}, nil
}

func (s *service) CreateStock(ctx context.Context, ownerID uuid.UUID, input CreateStockInput) (*models.Stock, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock symbol is required")
	}
	if input.Lots <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lots must be greater than zero")
	}
	if !input.BuyPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buy price must be greater than zero")
	}

	stock := &models.Stock{
		OwnerID:  ownerID,
		Symbol:   symbol,
		Lots:     input.Lots,
		BuyPrice: input.BuyPrice,
	}
	if err := s.repo.Create(ctx, stock); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "symbol already in portfolio")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating stock")
	}
	return stock, nil
}

func (s *service) ListStocks(ctx context.Context, ownerID uuid.UUID) ([]models.Stock, error) {
	stocks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stocks")
	}
	return stocks, nil
}

// ListWithQuotes loads holdings and decorates each with a live quote. A quote
// failure for one symbol never fails the listing; the holding comes back
// without market values.
func (s *service) ListWithQuotes(ctx context.Context, ownerID uuid.UUID) ([]Holding, error) {
	stocks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stocks")
	}

	holdings := make([]Holding, 0, len(stocks))
	for _, stock := range stocks {
		holding := Holding{Stock: stock}
		if s.quotes != nil {
			quote, err := s.quotes.Fetch(ctx, stock.Symbol)
			if err != nil {
				if s.logg != nil {
					s.logg.Warn(s.logg.WithField(ctx, "symbol", stock.Symbol), "quote fetch failed")
				}
			} else {
				price := quote.Price
				lots := decimal.NewFromInt(int64(stock.Lots))
				market := price.Mul(lots)
				gain := market.Sub(stock.BuyPrice.Mul(lots))
				holding.CurrentPrice = &price
				holding.MarketValue = &market
				holding.GainLoss = &gain
			}
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

func (s *service) DeleteStock(ctx context.Context, ownerID, stockID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, ownerID, stockID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting stock")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
	}
	return nil
}
