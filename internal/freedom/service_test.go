package freedom

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
)

type fakeRepo struct {
	entries []models.FreedomEntry
}

func (f *fakeRepo) Create(ctx context.Context, entry *models.FreedomEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		// Spread timestamps so "latest" is unambiguous in fast test runs.
		entry.CreatedAt = time.Now().UTC().Add(time.Duration(len(f.entries)) * time.Millisecond)
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeRepo) FindLatest(ctx context.Context, ownerID uuid.UUID) (*models.FreedomEntry, error) {
	var latest *models.FreedomEntry
	for i := range f.entries {
		entry := f.entries[i]
		if entry.OwnerID != ownerID {
			continue
		}
		if latest == nil || entry.CreatedAt.After(latest.CreatedAt) {
			latest = &entry
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func validInputs() Inputs {
	return Inputs{
		InitialSavings:  dec("100000000"),
		MonthlySavings:  dec("10000000"),
		MonthlyExpenses: dec("5000000"),
		MonthlyIncome:   dec("20000000"),
		ReturnRate:      dec("7"),
	}
}

func TestSaveDerivesStoredFields(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)
	ownerID := uuid.New()

	result, err := svc.Save(context.Background(), ownerID, validInputs())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	entry := result.Entry
	if !entry.AnnualSavings.Equal(dec("120000000")) {
		t.Fatalf("annual savings = %s, want 120000000", entry.AnnualSavings)
	}
	if !entry.AnnualExpenses.Equal(dec("60000000")) {
		t.Fatalf("annual expenses = %s, want 60000000", entry.AnnualExpenses)
	}
	if !entry.TargetAmount.Equal(dec("2000000000")) {
		t.Fatalf("target = %s, want 2000000000", entry.TargetAmount)
	}
	if !result.Projection.Reachable {
		t.Fatalf("expected reachable projection, got %+v", result.Projection)
	}
}

func TestLatestRecomputesProjection(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)
	ownerID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Save(ctx, ownerID, validInputs()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second := validInputs()
	second.MonthlyExpenses = dec("6000000")
	saved, err := svc.Save(ctx, ownerID, second)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	latest, err := svc.Latest(ctx, ownerID)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest.Entry.ID != saved.Entry.ID {
		t.Fatalf("latest returned entry %s, want %s", latest.Entry.ID, saved.Entry.ID)
	}
	if !latest.Projection.TargetAmount.Equal(dec("2400000000")) {
		t.Fatalf("recomputed target = %s, want 2400000000", latest.Projection.TargetAmount)
	}
}

func TestLatestWithoutEntries(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})
	if _, err := svc.Latest(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)

	if _, err := svc.Preview(context.Background(), validInputs()); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Fatalf("preview must not persist, found %d entries", len(repo.entries))
	}
}

func TestInputValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})
	ctx := context.Background()

	bad := validInputs()
	bad.MonthlyExpenses = dec("0")
	if _, err := svc.Preview(ctx, bad); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for zero expenses, got %v", err)
	}

	bad = validInputs()
	bad.MonthlySavings = dec("-1")
	if _, err := svc.Preview(ctx, bad); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for negative savings, got %v", err)
	}

	bad = validInputs()
	bad.ReturnRate = dec("-5")
	if _, err := svc.Save(ctx, uuid.New(), bad); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for negative rate, got %v", err)
	}
}
