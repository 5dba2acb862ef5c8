package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/enums"
	"github.com/sakuapp/saku-backend/pkg/pagination"
)

// CreateTransactionInput carries a new ledger entry. Amount must be positive;
// the sign is derived from Type.
type CreateTransactionInput struct {
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	Type       enums.TransactionType
	Amount     decimal.Decimal
	Title      string
	Date       time.Time
}

// ListParams filters and pages a transaction listing.
type ListParams struct {
	Pagination pagination.Params
	From       *time.Time
	To         *time.Time
}

// ListResult bundles a page of transactions with range totals. Totals is only
// populated when the listing was date-filtered.
type ListResult struct {
	Transactions []models.Transaction
	Totals       *RangeTotals
}

// Summary is the owner-level financial overview.
type Summary struct {
	TotalBalance decimal.Decimal
	AccountCount int64
	Recent       []models.Transaction
}

// VerificationResult compares an account's stored balance against the signed
// sum recomputed from its transactions.
type VerificationResult struct {
	AccountID  uuid.UUID
	Balance    decimal.Decimal
	LedgerSum  decimal.Decimal
	Consistent bool
}
