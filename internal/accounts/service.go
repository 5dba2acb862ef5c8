package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateAccountInput carries a new account. Balance is the opening balance and
// is the only moment the balance is written outside the ledger service.
type CreateAccountInput struct {
	Name    string
	Balance decimal.Decimal
	Color   string
	Icon    string
}

// UpdateAccountInput carries the mutable display fields of an account.
type UpdateAccountInput struct {
	Name  string
	Color string
	Icon  string
}

// Service manages money-source accounts.
type Service interface {
	CreateAccount(ctx context.Context, ownerID uuid.UUID, input CreateAccountInput) (*models.Account, error)
	GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error)
	UpdateAccount(ctx context.Context, ownerID, accountID uuid.UUID, input UpdateAccountInput) (*models.Account, error)
	DeleteAccount(ctx context.Context, ownerID, accountID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the accounts service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) CreateAccount(ctx context.Context, ownerID uuid.UUID, input CreateAccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account name is required")
	}
	if input.Balance.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening balance cannot be negative")
	}

	account := &models.Account{
		OwnerID: ownerID,
		Name:    name,
		Balance: input.Balance,
		Color:   input.Color,
		Icon:    input.Icon,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating account")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "account_id", account.ID.String()), "account created")
	}
	return account, nil
}

func (s *service) GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, ownerID, accountID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	return account, nil
}

func (s *service) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error) {
	accounts, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing accounts")
	}
	return accounts, nil
}

func (s *service) UpdateAccount(ctx context.Context, ownerID, accountID uuid.UUID, input UpdateAccountInput) (*models.Account, error) {
	account, err := s.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		account.Name = name
	}
	if input.Color != "" {
		account.Color = input.Color
	}
	if input.Icon != "" {
		account.Icon = input.Icon
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating account")
	}
	return account, nil
}

// DeleteAccount removes the account and orphans its transactions in one
// database transaction. The log keeps the rows; only the account reference
// goes away.
func (s *service) DeleteAccount(ctx context.Context, ownerID, accountID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.ClearTransactionRefs(ctx, ownerID, accountID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "orphaning account transactions")
		}

		deleted, err := txRepo.Delete(ctx, ownerID, accountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting account")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "account_id", accountID.String()), "account deleted")
	}
	return nil
}
