package ledger

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/enums"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/pagination"
)

type fakeAccount struct {
	ownerID uuid.UUID
	balance decimal.Decimal
}

// fakeStore keeps accounts, categories, and transactions in memory and honors
// the same atomicity contract as the real store: runner-level snapshots roll
// every write inside a failed transaction back.
type fakeStore struct {
	mu         sync.Mutex
	accounts   map[uuid.UUID]*fakeAccount
	categories map[uuid.UUID]uuid.UUID
	rows       map[uuid.UUID]models.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:   map[uuid.UUID]*fakeAccount{},
		categories: map[uuid.UUID]uuid.UUID{},
		rows:       map[uuid.UUID]models.Transaction{},
	}
}

func (f *fakeStore) addAccount(ownerID uuid.UUID, balance string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.accounts[id] = &fakeAccount{ownerID: ownerID, balance: decimal.RequireFromString(balance)}
	return id
}

func (f *fakeStore) addCategory(ownerID uuid.UUID) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.categories[id] = ownerID
	return id
}

func (f *fakeStore) removeAccount(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, id)
}

func (f *fakeStore) setBalance(id uuid.UUID, balance string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id].balance = decimal.RequireFromString(balance)
}

func (f *fakeStore) balance(id uuid.UUID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id].balance
}

func (f *fakeStore) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeStore) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeStore) CreateTransaction(ctx context.Context, row *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	f.rows[row.ID] = *row
	return nil
}

func (f *fakeStore) FindTransaction(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := row
	return &copied, nil
}

func (f *fakeStore) FindTransactionWithRefs(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error) {
	return f.FindTransaction(ctx, ownerID, id)
}

func (f *fakeStore) DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.OwnerID != ownerID {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeStore) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []models.Transaction
	for _, row := range f.rows {
		if row.OwnerID != ownerID || !inRange(row.Date, filter.From, filter.To) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	if filter.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[filter.Offset:]
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (f *fakeStore) AggregateRange(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) (RangeTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := RangeTotals{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, row := range f.rows {
		if row.OwnerID != ownerID || !inRange(row.Date, from, to) {
			continue
		}
		totals.Count++
		if row.Type == enums.TransactionTypeIncome {
			totals.TotalIncome = totals.TotalIncome.Add(row.Amount)
		} else {
			totals.TotalExpense = totals.TotalExpense.Add(row.Amount)
		}
	}
	return totals, nil
}

func (f *fakeStore) RecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.Transaction, error) {
	return f.ListTransactions(ctx, ownerID, ListFilter{Limit: limit})
}

func (f *fakeStore) ApplyBalanceDelta(ctx context.Context, ownerID, accountID uuid.UUID, delta decimal.Decimal) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok || account.ownerID != ownerID {
		return false, nil
	}
	account.balance = account.balance.Add(delta)
	return true, nil
}

func (f *fakeStore) AccountBalance(ctx context.Context, ownerID, accountID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok || account.ownerID != ownerID {
		return decimal.Zero, gorm.ErrRecordNotFound
	}
	return account.balance, nil
}

func (f *fakeStore) AccountOwned(ctx context.Context, ownerID, accountID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	return ok && account.ownerID == ownerID, nil
}

func (f *fakeStore) SumAccountDeltas(ctx context.Context, ownerID, accountID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, row := range f.rows {
		if row.OwnerID != ownerID || row.AccountID == nil || *row.AccountID != accountID {
			continue
		}
		sum = sum.Add(Delta(row.Type, row.Amount))
	}
	return sum, nil
}

func (f *fakeStore) AccountTotals(ctx context.Context, ownerID uuid.UUID) (AccountTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := AccountTotals{TotalBalance: decimal.Zero}
	for _, account := range f.accounts {
		if account.ownerID != ownerID {
			continue
		}
		totals.AccountCount++
		totals.TotalBalance = totals.TotalBalance.Add(account.balance)
	}
	return totals, nil
}

func (f *fakeStore) CategoryOwned(ctx context.Context, ownerID, categoryID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.categories[categoryID]
	return ok && owner == ownerID, nil
}

func inRange(date time.Time, from, to *time.Time) bool {
	if from != nil && date.Before(*from) {
		return false
	}
	if to != nil && date.After(*to) {
		return false
	}
	return true
}

// fakeRunner serializes transactions and restores a snapshot on failure,
// mirroring begin/commit/rollback semantics.
type fakeRunner struct {
	store *fakeStore
	txMu  sync.Mutex
}

func (r *fakeRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snapshot := r.snapshot()
	if err := fn(nil); err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	accounts map[uuid.UUID]fakeAccount
	rows     map[uuid.UUID]models.Transaction
}

func (r *fakeRunner) snapshot() storeSnapshot {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := storeSnapshot{
		accounts: map[uuid.UUID]fakeAccount{},
		rows:     map[uuid.UUID]models.Transaction{},
	}
	for id, account := range r.store.accounts {
		snap.accounts[id] = *account
	}
	for id, row := range r.store.rows {
		snap.rows[id] = row
	}
	return snap
}

func (r *fakeRunner) restore(snap storeSnapshot) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.accounts = map[uuid.UUID]*fakeAccount{}
	for id, account := range snap.accounts {
		copied := account
		r.store.accounts[id] = &copied
	}
	r.store.rows = snap.rows
}

func newTestService(t *testing.T, store *fakeStore) Service {
	t.Helper()
	svc, err := NewService(store, &fakeRunner{store: store}, nil, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func createInput(accountID, categoryID uuid.UUID, typ enums.TransactionType, amount string) CreateTransactionInput {
	return CreateTransactionInput{
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		Title:      "groceries",
		Date:       time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateTransactionAppliesSignedDelta(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, enums.TransactionTypeIncome, "500000")); err != nil {
		t.Fatalf("income create failed: %v", err)
	}
	if got := store.balance(accountID); !got.Equal(decimal.RequireFromString("500000")) {
		t.Fatalf("balance after income = %s, want 500000", got)
	}

	if _, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, enums.TransactionTypeExpense, "125000.50")); err != nil {
		t.Fatalf("expense create failed: %v", err)
	}
	if got := store.balance(accountID); !got.Equal(decimal.RequireFromString("374999.50")) {
		t.Fatalf("balance after expense = %s, want 374999.50", got)
	}
}

func TestCreateTransactionScenario(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "1000000")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	steps := []struct {
		typ    enums.TransactionType
		amount string
		want   string
	}{
		{enums.TransactionTypeExpense, "200000", "800000"},
		{enums.TransactionTypeIncome, "500000", "1300000"},
		{enums.TransactionTypeIncome, "200000", "1500000"},
	}
	for _, step := range steps {
		if _, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, step.typ, step.amount)); err != nil {
			t.Fatalf("create %s %s failed: %v", step.typ, step.amount, err)
		}
		if got := store.balance(accountID); !got.Equal(decimal.RequireFromString(step.want)) {
			t.Fatalf("balance = %s, want %s", got, step.want)
		}
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	cases := map[string]CreateTransactionInput{
		"zero amount": func() CreateTransactionInput {
			in := createInput(accountID, categoryID, enums.TransactionTypeIncome, "100")
			in.Amount = decimal.Zero
			return in
		}(),
		"negative amount": func() CreateTransactionInput {
			in := createInput(accountID, categoryID, enums.TransactionTypeIncome, "100")
			in.Amount = decimal.RequireFromString("-5")
			return in
		}(),
		"unknown type": func() CreateTransactionInput {
			in := createInput(accountID, categoryID, enums.TransactionTypeIncome, "100")
			in.Type = enums.TransactionType("transfer")
			return in
		}(),
		"blank title": func() CreateTransactionInput {
			in := createInput(accountID, categoryID, enums.TransactionTypeIncome, "100")
			in.Title = "   "
			return in
		}(),
		"zero date": func() CreateTransactionInput {
			in := createInput(accountID, categoryID, enums.TransactionTypeIncome, "100")
			in.Date = time.Time{}
			return in
		}(),
	}

	for name, input := range cases {
		if _, err := svc.CreateTransaction(ctx, ownerID, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected VALIDATION_ERROR, got %v", name, err)
		}
	}
	if store.rowCount() != 0 {
		t.Fatalf("no rows should persist after rejected input, got %d", store.rowCount())
	}
	if got := store.balance(accountID); !got.IsZero() {
		t.Fatalf("balance must stay zero, got %s", got)
	}
}

func TestCreateTransactionUnknownCategory(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	svc := newTestService(t, store)

	_, err := svc.CreateTransaction(context.Background(), ownerID, createInput(accountID, uuid.New(), enums.TransactionTypeIncome, "100"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateTransactionUnknownAccountRollsBack(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)

	_, err := svc.CreateTransaction(context.Background(), ownerID, createInput(uuid.New(), categoryID, enums.TransactionTypeIncome, "100"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if store.rowCount() != 0 {
		t.Fatalf("transaction row must roll back with the failed balance update, got %d rows", store.rowCount())
	}
}

func TestDeleteTransactionReversesDelta(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "1000000")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, enums.TransactionTypeExpense, "200000"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, ownerID, row.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := store.balance(accountID); !got.Equal(decimal.RequireFromString("1000000")) {
		t.Fatalf("balance after round trip = %s, want 1000000", got)
	}
	if store.rowCount() != 0 {
		t.Fatalf("expected empty ledger, got %d rows", store.rowCount())
	}
}

func TestDeleteTransactionTwice(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, enums.TransactionTypeIncome, "100"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, ownerID, row.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, ownerID, row.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("second delete: expected NOT_FOUND, got %v", err)
	}
	if got := store.balance(accountID); !got.IsZero() {
		t.Fatalf("repeat delete must not touch the balance, got %s", got)
	}
}

func TestDeleteTransactionWithDeletedAccount(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, enums.TransactionTypeIncome, "100"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	store.removeAccount(accountID)
	if err := svc.DeleteTransaction(ctx, ownerID, row.ID); err != nil {
		t.Fatalf("delete with removed account must succeed, got %v", err)
	}
	if store.rowCount() != 0 {
		t.Fatalf("expected row removed, got %d", store.rowCount())
	}
}

func TestDeleteTransactionWrongOwner(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, enums.TransactionTypeIncome, "100"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, uuid.New(), row.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for foreign owner, got %v", err)
	}
}

func TestConcurrentCreatesLoseNoUpdates(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransaction(context.Background(), ownerID, createInput(accountID, categoryID, enums.TransactionTypeIncome, "1000"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent create failed: %v", err)
		}
	}

	want := decimal.NewFromInt(1000 * workers)
	if got := store.balance(accountID); !got.Equal(want) {
		t.Fatalf("balance = %s, want %s", got, want)
	}
	sum, err := store.SumAccountDeltas(context.Background(), ownerID, accountID)
	if err != nil {
		t.Fatalf("summing deltas: %v", err)
	}
	if !sum.Equal(want) {
		t.Fatalf("ledger sum = %s, want %s", sum, want)
	}
}

func TestListTransactionsRangeTotals(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, date := range dates {
		input := createInput(accountID, categoryID, enums.TransactionTypeIncome, "100")
		if i == 2 {
			input.Type = enums.TransactionTypeExpense
		}
		input.Date = date
		if _, err := svc.CreateTransaction(ctx, ownerID, input); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.ListTransactions(ctx, ownerID, ListParams{From: &from})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("expected 2 rows in range, got %d", len(result.Transactions))
	}
	if result.Totals == nil {
		t.Fatal("expected range totals for a date-filtered listing")
	}
	if !result.Totals.TotalIncome.Equal(decimal.NewFromInt(100)) || !result.Totals.TotalExpense.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected totals %+v", result.Totals)
	}

	to := from.AddDate(0, -2, 0)
	if _, err := svc.ListTransactions(ctx, ownerID, ListParams{From: &from, To: &to}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for inverted range, got %v", err)
	}

	unfiltered, err := svc.ListTransactions(ctx, ownerID, ListParams{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("unfiltered list failed: %v", err)
	}
	if unfiltered.Totals != nil {
		t.Fatal("totals must stay empty without a date filter")
	}
	if len(unfiltered.Transactions) != 2 {
		t.Fatalf("expected limit to cap rows at 2, got %d", len(unfiltered.Transactions))
	}
}

func TestSummary(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	first := store.addAccount(ownerID, "250000")
	store.addAccount(ownerID, "750000")
	store.addAccount(uuid.New(), "999999")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		input := createInput(first, categoryID, enums.TransactionTypeIncome, "10")
		input.Date = input.Date.AddDate(0, 0, i)
		if _, err := svc.CreateTransaction(ctx, ownerID, input); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	summary, err := svc.Summary(ctx, ownerID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.AccountCount != 2 {
		t.Fatalf("account count = %d, want 2", summary.AccountCount)
	}
	if !summary.TotalBalance.Equal(decimal.RequireFromString("1000070")) {
		t.Fatalf("total balance = %s, want 1000070", summary.TotalBalance)
	}
	if len(summary.Recent) != 5 {
		t.Fatalf("recent = %d rows, want 5", len(summary.Recent))
	}
}

func TestVerifyAccount(t *testing.T) {
	store := newFakeStore()
	ownerID := uuid.New()
	accountID := store.addAccount(ownerID, "0")
	categoryID := store.addCategory(ownerID)
	svc := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, ownerID, createInput(accountID, categoryID, enums.TransactionTypeIncome, "300")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := svc.VerifyAccount(ctx, ownerID, accountID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !result.Consistent {
		t.Fatalf("expected consistent account, got %+v", result)
	}

	store.setBalance(accountID, "5000")
	result, err = svc.VerifyAccount(ctx, ownerID, accountID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeLedgerCorruption) {
		t.Fatalf("expected LEDGER_CORRUPTION, got %v", err)
	}
	if result == nil || result.Consistent {
		t.Fatalf("expected inconsistent result, got %+v", result)
	}
	if !result.LedgerSum.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("ledger sum = %s, want 300", result.LedgerSum)
	}

	if _, err := svc.VerifyAccount(ctx, ownerID, uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown account, got %v", err)
	}
}
