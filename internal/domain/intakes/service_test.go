package intakes

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-scheduler/internal/domain/medications"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]IntakeLog
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]IntakeLog{}}
}

func (r *testRepo) Create(ctx context.Context, l IntakeLog) error {
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (IntakeLog, error) {
	l, ok := r.byID[id]
	if !ok {
		return IntakeLog{}, errRepoNotFound
	}
	return l, nil
}

func (r *testRepo) ListByMedication(ctx context.Context, medicationID string, filter ListFilter) ([]IntakeLog, error) {
	out := make([]IntakeLog, 0)
	for _, l := range r.byID {
		if l.MedicationID != medicationID {
			continue
		}
		if filter.From != nil && l.TakenAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.TakenAt.After(*filter.To) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *testRepo) Void(ctx context.Context, id string) error {
	l, ok := r.byID[id]
	if !ok {
		return errRepoNotFound
	}
	l.Status = StatusVoided
	r.byID[id] = l
	return nil
}

type testInventory struct {
	byID map[string]medications.Medication
}

func newTestInventory() *testInventory {
	return &testInventory{byID: map[string]medications.Medication{}}
}

func (r *testInventory) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, errRepoNotFound
	}
	return m, nil
}

func (r *testInventory) Update(ctx context.Context, m medications.Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func newTestService(tablets float64) (*Service, *testInventory) {
	inv := newTestInventory()
	inv.byID["med-1"] = medications.Medication{
		ID:               "med-1",
		OwnerUserID:      "user-1",
		Name:             "Amoxicilina",
		TabletsRemaining: tablets,
	}

	svc := NewService(newTestRepo(), inv)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }
	return svc, inv
}

// -------------------------
// Tests
// -------------------------

func TestRecord_DecrementsInventory(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(10)

	l, err := svc.Record(ctx, "med-1", RecordInput{Amount: 1.5})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if l.Status != StatusRecorded {
		t.Fatalf("expected recorded status, got %s", l.Status)
	}
	if got := inv.byID["med-1"].TabletsRemaining; got != 8.5 {
		t.Fatalf("expected 8.5 remaining, got %v", got)
	}
}

func TestRecord_FloorsAtZero(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(1)

	if _, err := svc.Record(ctx, "med-1", RecordInput{Amount: 3}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := inv.byID["med-1"].TabletsRemaining; got != 0 {
		t.Fatalf("inventory must not go negative, got %v", got)
	}
}

func TestRecord_Validations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(10)

	if _, err := svc.Record(ctx, "med-1", RecordInput{Amount: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for amount 0, got %v", err)
	}
	if _, err := svc.Record(ctx, "nope", RecordInput{Amount: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown medication, got %v", err)
	}
}

func TestVoid_RestoresInventoryOnce(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(10)

	l, err := svc.Record(ctx, "med-1", RecordInput{Amount: 2})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := inv.byID["med-1"].TabletsRemaining; got != 8 {
		t.Fatalf("expected 8 after record, got %v", got)
	}

	voided, err := svc.Void(ctx, l.ID)
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != StatusVoided {
		t.Fatalf("expected voided status, got %s", voided.Status)
	}
	if got := inv.byID["med-1"].TabletsRemaining; got != 10 {
		t.Fatalf("expected restored 10, got %v", got)
	}

	// segundo void: idempotente, no vuelve a sumar
	again, err := svc.Void(ctx, l.ID)
	if err != nil {
		t.Fatalf("void again: %v", err)
	}
	if again.Status != StatusVoided {
		t.Fatalf("expected voided status, got %s", again.Status)
	}
	if got := inv.byID["med-1"].TabletsRemaining; got != 10 {
		t.Fatalf("double void must not duplicate restore, got %v", got)
	}
}

func TestRecord_ExplicitTakenAt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(10)

	taken := time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC)
	l, err := svc.Record(ctx, "med-1", RecordInput{Amount: 1, TakenAt: &taken})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !l.TakenAt.Equal(taken) {
		t.Fatalf("expected taken_at %v, got %v", taken, l.TakenAt)
	}

	items, err := svc.ListByMedication(ctx, "med-1", ListFilter{From: &taken})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 intake, got %d", len(items))
	}
}
