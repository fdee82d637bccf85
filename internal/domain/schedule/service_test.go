package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/platform/dates"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testMedRepo struct {
	byID map[string]medications.Medication
}

func newTestMedRepo() *testMedRepo {
	return &testMedRepo{byID: map[string]medications.Medication{}}
}

func (r *testMedRepo) Create(ctx context.Context, m medications.Medication) error {
	r.byID[m.ID] = m
	return nil
}

func (r *testMedRepo) Update(ctx context.Context, m medications.Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testMedRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, errRepoNotFound
	}
	return m, nil
}

func (r *testMedRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]medications.Medication, error) {
	out := make([]medications.Medication, 0)
	for _, m := range r.byID {
		if m.OwnerUserID == ownerUserID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testMedRepo) ListActiveOn(ctx context.Context, ownerUserID string, date time.Time) ([]medications.Medication, error) {
	out := make([]medications.Medication, 0)
	for _, m := range r.byID {
		if m.OwnerUserID == ownerUserID && m.ActiveOn(date) {
			out = append(out, m)
		}
	}
	return out, nil
}

type testDoseRepo struct {
	byID map[string]medications.Dose
}

func newTestDoseRepo() *testDoseRepo {
	return &testDoseRepo{byID: map[string]medications.Dose{}}
}

func (r *testDoseRepo) Create(ctx context.Context, d medications.Dose) error {
	r.byID[d.ID] = d
	return nil
}

func (r *testDoseRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testDoseRepo) GetByID(ctx context.Context, id string) (medications.Dose, error) {
	d, ok := r.byID[id]
	if !ok {
		return medications.Dose{}, errRepoNotFound
	}
	return d, nil
}

func (r *testDoseRepo) ListByMedication(ctx context.Context, medicationID string) ([]medications.Dose, error) {
	out := make([]medications.Dose, 0)
	for _, d := range r.byID {
		if d.MedicationID == medicationID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *testDoseRepo) ListByMedications(ctx context.Context, medicationIDs []string) ([]medications.Dose, error) {
	out := make([]medications.Dose, 0)
	for _, id := range medicationIDs {
		ds, _ := r.ListByMedication(ctx, id)
		out = append(out, ds...)
	}
	return out, nil
}

type testSkipRepo struct {
	byID map[string]medications.SkipDate
}

func newTestSkipRepo() *testSkipRepo {
	return &testSkipRepo{byID: map[string]medications.SkipDate{}}
}

func (r *testSkipRepo) Create(ctx context.Context, s medications.SkipDate) error {
	r.byID[s.ID] = s
	return nil
}

func (r *testSkipRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testSkipRepo) GetByID(ctx context.Context, id string) (medications.SkipDate, error) {
	s, ok := r.byID[id]
	if !ok {
		return medications.SkipDate{}, errRepoNotFound
	}
	return s, nil
}

func (r *testSkipRepo) ListByMedication(ctx context.Context, medicationID string) ([]medications.SkipDate, error) {
	out := make([]medications.SkipDate, 0)
	for _, s := range r.byID {
		if s.MedicationID == medicationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *testSkipRepo) ListByMedications(ctx context.Context, medicationIDs []string) ([]medications.SkipDate, error) {
	out := make([]medications.SkipDate, 0)
	for _, id := range medicationIDs {
		ss, _ := r.ListByMedication(ctx, id)
		out = append(out, ss...)
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestRangeSchedule_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestMedRepo(), newTestDoseRepo(), newTestSkipRepo())

	start := mustDate(t, "2024-01-10")

	// end antes de start
	_, err := svc.RangeSchedule(ctx, "user-1", start, mustDate(t, "2024-01-09"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	// 31 días inclusivos: too large
	_, err = svc.RangeSchedule(ctx, "user-1", start, dates.AddDays(start, MaxRangeDays))
	if !errors.Is(err, ErrRangeTooLarge) {
		t.Fatalf("expected ErrRangeTooLarge, got %v", err)
	}

	// exactamente 30 días inclusivos: OK
	result, err := svc.RangeSchedule(ctx, "user-1", start, dates.AddDays(start, MaxRangeDays-1))
	if err != nil {
		t.Fatalf("range at max: %v", err)
	}
	if result.TotalDays != MaxRangeDays || len(result.Days) != MaxRangeDays {
		t.Fatalf("expected %d days, got total=%d len=%d", MaxRangeDays, result.TotalDays, len(result.Days))
	}

	// un solo día
	result, err = svc.RangeSchedule(ctx, "user-1", start, start)
	if err != nil {
		t.Fatalf("single-day range: %v", err)
	}
	if result.TotalDays != 1 {
		t.Fatalf("expected 1 day, got %d", result.TotalDays)
	}
}

func TestRangeSchedule_ResolvesEachDay(t *testing.T) {
	ctx := context.Background()
	meds := newTestMedRepo()
	doses := newTestDoseRepo()
	skips := newTestSkipRepo()
	svc := NewService(meds, doses, skips)

	m := activeMed(t, "med-1", "Amoxicilina", "2024-01-01", "2024-01-10", 20)
	_ = meds.Create(ctx, m)
	_ = doses.Create(ctx, dose("d-1", "med-1", 8*60, 1))
	_ = skips.Create(ctx, medications.SkipDate{ID: "s-1", MedicationID: "med-1", Date: mustDate(t, "2024-01-06")})

	result, err := svc.RangeSchedule(ctx, "user-1", mustDate(t, "2024-01-05"), mustDate(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(result.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(result.Days))
	}
	if result.Days[0].TotalDoses != 1 {
		t.Fatalf("day 05 should have 1 dose, got %d", result.Days[0].TotalDoses)
	}
	if result.Days[1].TotalDoses != 0 || len(result.Days[1].Skipped) != 1 {
		t.Fatalf("day 06 should be fully skipped: doses=%d skipped=%d", result.Days[1].TotalDoses, len(result.Days[1].Skipped))
	}
	if result.Days[2].TotalDoses != 1 {
		t.Fatalf("day 07 should have 1 dose, got %d", result.Days[2].TotalDoses)
	}
}

func TestNextDose_UnknownMedication(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestMedRepo(), newTestDoseRepo(), newTestSkipRepo())

	_, _, err := svc.NextDose(ctx, "nope", mustDate(t, "2024-01-05"))
	if !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("expected ErrMedicationNotFound, got %v", err)
	}
}

func TestActiveDaySummary(t *testing.T) {
	ctx := context.Background()
	meds := newTestMedRepo()
	skips := newTestSkipRepo()
	svc := NewService(meds, newTestDoseRepo(), skips)

	// ventana de 10 días con 2 saltos dentro y 1 fuera
	m := activeMed(t, "med-1", "Amoxicilina", "2024-01-01", "2024-01-10", 20)
	_ = meds.Create(ctx, m)
	_ = skips.Create(ctx, medications.SkipDate{ID: "s-1", MedicationID: "med-1", Date: mustDate(t, "2024-01-03")})
	_ = skips.Create(ctx, medications.SkipDate{ID: "s-2", MedicationID: "med-1", Date: mustDate(t, "2024-01-07")})
	_ = skips.Create(ctx, medications.SkipDate{ID: "s-3", MedicationID: "med-1", Date: mustDate(t, "2024-02-01")})

	summary, err := svc.ActiveDaySummary(ctx, "med-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalDays != 10 || summary.SkipDays != 2 || summary.ActiveDays != 8 {
		t.Fatalf("expected 10/2/8, got %d/%d/%d", summary.TotalDays, summary.SkipDays, summary.ActiveDays)
	}
	if len(summary.SkipDates) != 2 || !summary.SkipDates[0].Before(summary.SkipDates[1]) {
		t.Fatalf("skip dates not sorted: %v", summary.SkipDates)
	}
}

func TestActiveDaySummary_OpenEnded(t *testing.T) {
	ctx := context.Background()
	meds := newTestMedRepo()
	svc := NewService(meds, newTestDoseRepo(), newTestSkipRepo())

	m := activeMed(t, "med-1", "Amoxicilina", "2024-01-01", "", 20)
	_ = meds.Create(ctx, m)

	_, err := svc.ActiveDaySummary(ctx, "med-1")
	if !errors.Is(err, ErrOpenEndedWindow) {
		t.Fatalf("expected ErrOpenEndedWindow, got %v", err)
	}
}

func TestActiveDays_DuplicateSkipDatesCountOnce(t *testing.T) {
	m := activeMed(t, "med-1", "Amoxicilina", "2024-01-01", "2024-01-05", 20)
	skips := []medications.SkipDate{
		{ID: "s-1", MedicationID: "med-1", Date: mustDate(t, "2024-01-02")},
		{ID: "s-2", MedicationID: "med-1", Date: mustDate(t, "2024-01-02")},
	}

	summary, err := ActiveDays(m, skips)
	if err != nil {
		t.Fatalf("active days: %v", err)
	}
	if summary.TotalDays != 5 || summary.SkipDays != 1 || summary.ActiveDays != 4 {
		t.Fatalf("expected 5/1/4, got %d/%d/%d", summary.TotalDays, summary.SkipDays, summary.ActiveDays)
	}
}

func TestDailyConsumption(t *testing.T) {
	if got := DailyConsumption(nil); got != 0 {
		t.Fatalf("empty doses should be 0, got %v", got)
	}
	doses := []medications.Dose{
		dose("d-1", "med-1", 8*60, 1.5),
		dose("d-2", "med-1", 20*60, 0.5),
	}
	if got := DailyConsumption(doses); got != 2.0 {
		t.Fatalf("expected 2.0, got %v", got)
	}
}
