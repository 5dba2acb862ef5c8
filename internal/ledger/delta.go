package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/pkg/enums"
)

// Delta maps a transaction's type and amount to the signed contribution it
// makes to its account's balance: income adds, expense subtracts. Pure and
// total; callers must reject non-positive amounts before calling.
func Delta(t enums.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == enums.TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// InverseDelta is the delta applied when a transaction is removed.
func InverseDelta(t enums.TransactionType, amount decimal.Decimal) decimal.Decimal {
	return Delta(t, amount).Neg()
}
