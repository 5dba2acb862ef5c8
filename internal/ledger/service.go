package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
	"github.com/sakuapp/saku-backend/pkg/metrics"
	"github.com/sakuapp/saku-backend/pkg/pagination"
)

const (
	opCreate = "create"
	opDelete = "delete"
)

// txRunner runs fn inside a single database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns every mutation of the ledger. A mutation is the transaction row
// write plus the matching account-balance increment, committed as one database
// transaction so the balance can never drift from the log.
type Service interface {
	CreateTransaction(ctx context.Context, ownerID uuid.UUID, input CreateTransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, transactionID uuid.UUID) error
	GetTransaction(ctx context.Context, ownerID, transactionID uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, ownerID uuid.UUID, params ListParams) (*ListResult, error)
	Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error)
	VerifyAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*VerificationResult, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.LedgerMetrics
	logg    *logger.Logger
}

// NewService builds the ledger service.
func NewService(repo Repository, tx txRunner, ledgerMetrics *metrics.LedgerMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: ledgerMetrics, logg: logg}, nil
}

func (s *service) CreateTransaction(ctx context.Context, ownerID uuid.UUID, input CreateTransactionInput) (*models.Transaction, error) {
	start := time.Now()

	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	owned, err := s.repo.CategoryOwned(ctx, ownerID, input.CategoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking category")
	}
	if !owned {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	accountID := input.AccountID
	row := &models.Transaction{
		OwnerID:    ownerID,
		AccountID:  &accountID,
		CategoryID: input.CategoryID,
		Type:       input.Type,
		Amount:     input.Amount,
		Title:      strings.TrimSpace(input.Title),
		Date:       input.Date,
	}
	delta := Delta(input.Type, input.Amount)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		// Checked inside the transaction so the insert never races ahead of
		// the account foreign key and turns a missing account into a 500.
		owned, err := txRepo.AccountOwned(ctx, ownerID, input.AccountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking account")
		}
		if !owned {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}

		if err := txRepo.CreateTransaction(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting transaction").
				WithDetails(map[string]string{"step": "transaction"})
		}

		applied, err := txRepo.ApplyBalanceDelta(ctx, ownerID, input.AccountID, delta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating account balance").
				WithDetails(map[string]string{"step": "balance"})
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil
	})
	s.metrics.ObserveDuration(opCreate, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(opCreate)
		return nil, err
	}
	s.metrics.IncSuccess(opCreate)

	if full, err := s.repo.FindTransactionWithRefs(ctx, ownerID, row.ID); err == nil {
		row = full
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"transaction_id": row.ID.String(),
			"account_id":     input.AccountID.String(),
			"type":           string(input.Type),
		}), "ledger transaction created")
	}
	return row, nil
}

func (s *service) DeleteTransaction(ctx context.Context, ownerID, transactionID uuid.UUID) error {
	start := time.Now()

	row, err := s.repo.FindTransaction(ctx, ownerID, transactionID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading transaction")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		deleted, err := txRepo.DeleteTransaction(ctx, ownerID, transactionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting transaction").
				WithDetails(map[string]string{"step": "transaction"})
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}

		// Orphaned rows have no account to adjust; the balance died with it.
		if row.AccountID == nil {
			return nil
		}

		_, err = txRepo.ApplyBalanceDelta(ctx, ownerID, *row.AccountID, InverseDelta(row.Type, row.Amount))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reversing account balance").
				WithDetails(map[string]string{"step": "balance"})
		}
		// A missing account here means it was deleted between the load and
		// this point; the delete still completes cleanly.
		return nil
	})
	s.metrics.ObserveDuration(opDelete, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(opDelete)
		return err
	}
	s.metrics.IncSuccess(opDelete)

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "transaction_id", transactionID.String()), "ledger transaction deleted")
	}
	return nil
}

func (s *service) GetTransaction(ctx context.Context, ownerID, transactionID uuid.UUID) (*models.Transaction, error) {
	row, err := s.repo.FindTransactionWithRefs(ctx, ownerID, transactionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading transaction")
	}
	return row, nil
}

func (s *service) ListTransactions(ctx context.Context, ownerID uuid.UUID, params ListParams) (*ListResult, error) {
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}

	page := pagination.Normalize(params.Pagination)
	rows, err := s.repo.ListTransactions(ctx, ownerID, ListFilter{
		Limit:  page.Limit,
		Offset: page.Offset,
		From:   params.From,
		To:     params.To,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}

	result := &ListResult{Transactions: rows}
	if params.From != nil || params.To != nil {
		totals, err := s.repo.AggregateRange(ctx, ownerID, params.From, params.To)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating transactions")
		}
		result.Totals = &totals
	}
	return result, nil
}

func (s *service) Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error) {
	totals, err := s.repo.AccountTotals(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing accounts")
	}
	recent, err := s.repo.RecentTransactions(ctx, ownerID, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading recent transactions")
	}
	return &Summary{
		TotalBalance: totals.TotalBalance,
		AccountCount: totals.AccountCount,
		Recent:       recent,
	}, nil
}

// VerifyAccount recomputes the signed transaction sum for an account and
// compares it against the stored balance. A divergence means a past mutation
// escaped its transaction boundary and is reported as ledger corruption.
func (s *service) VerifyAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*VerificationResult, error) {
	balance, err := s.repo.AccountBalance(ctx, ownerID, accountID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account balance")
	}

	sum, err := s.repo.SumAccountDeltas(ctx, ownerID, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing account transactions")
	}

	result := &VerificationResult{
		AccountID:  accountID,
		Balance:    balance,
		LedgerSum:  sum,
		Consistent: balance.Equal(sum),
	}
	if !result.Consistent {
		s.metrics.IncCorruptionDetected()
		corruptionErr := pkgerrors.New(pkgerrors.CodeLedgerCorruption, "account balance diverged from transaction log").
			WithDetails(map[string]string{
				"account_id": accountID.String(),
				"balance":    balance.String(),
				"ledger_sum": sum.String(),
			})
		if s.logg != nil {
			s.logg.Error(ctx, "ledger corruption detected", corruptionErr)
		}
		return result, corruptionErr
	}
	return result, nil
}

func validateCreateInput(input CreateTransactionInput) error {
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction type must be income or expense")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.AccountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if input.Date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	return nil
}
