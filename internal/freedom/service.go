package freedom

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sakuapp/saku-backend/pkg/db"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

// Result pairs the stored input snapshot with the computed projection.
type Result struct {
	Entry      *models.FreedomEntry
	Projection Projection
}

// Service runs and persists financial-freedom projections.
type Service interface {
	// Preview computes a projection without persisting anything.
	Preview(ctx context.Context, inputs Inputs) (*Projection, error)
	// Save snapshots the inputs and returns the projection.
	Save(ctx context.Context, ownerID uuid.UUID, inputs Inputs) (*Result, error)
	// Latest reloads the most recent snapshot and recomputes its projection.
	Latest(ctx context.Context, ownerID uuid.UUID) (*Result, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the freedom service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("freedom repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Preview(ctx context.Context, inputs Inputs) (*Projection, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}
	projection := Project(inputs)
	return &projection, nil
}

func (s *service) Save(ctx context.Context, ownerID uuid.UUID, inputs Inputs) (*Result, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}
	projection := Project(inputs)

	entry := &models.FreedomEntry{
		OwnerID:         ownerID,
		InitialSavings:  inputs.InitialSavings,
		MonthlySavings:  inputs.MonthlySavings,
		AnnualSavings:   projection.AnnualSavings,
		ReturnRate:      inputs.ReturnRate,
		MonthlyExpenses: inputs.MonthlyExpenses,
		AnnualExpenses:  projection.AnnualExpenses,
		MonthlyIncome:   inputs.MonthlyIncome,
		Dependents:      inputs.Dependents,
		TargetAmount:    projection.TargetAmount,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving freedom entry")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "entry_id", entry.ID.String()), "freedom entry saved")
	}
	return &Result{Entry: entry, Projection: projection}, nil
}

func (s *service) Latest(ctx context.Context, ownerID uuid.UUID) (*Result, error) {
	entry, err := s.repo.FindLatest(ctx, ownerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no freedom entry saved yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading freedom entry")
	}

	projection := Project(Inputs{
		InitialSavings:  entry.InitialSavings,
		MonthlySavings:  entry.MonthlySavings,
		MonthlyExpenses: entry.MonthlyExpenses,
		MonthlyIncome:   entry.MonthlyIncome,
		ReturnRate:      entry.ReturnRate,
		Dependents:      entry.Dependents,
	})
	return &Result{Entry: entry, Projection: projection}, nil
}

func validateInputs(inputs Inputs) error {
	if !inputs.MonthlyExpenses.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "monthly expenses must be greater than zero")
	}
	if inputs.MonthlySavings.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "monthly savings cannot be negative")
	}
	if inputs.InitialSavings.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "initial savings cannot be negative")
	}
	if inputs.MonthlyIncome.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "monthly income cannot be negative")
	}
	if inputs.ReturnRate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "return rate cannot be negative")
	}
	if inputs.Dependents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "dependents cannot be negative")
	}
	return nil
}
