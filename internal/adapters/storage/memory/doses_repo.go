package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"med-scheduler/internal/domain/medications"
)

type doseRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.Dose
}

func NewDoseRepo() medications.DoseRepository {
	return &doseRepo{
		byID: make(map[string]medications.Dose),
	}
}

func (r *doseRepo) Create(ctx context.Context, d medications.Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return errors.New("dose id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("dose already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *doseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *doseRepo) GetByID(ctx context.Context, id string) (medications.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return medications.Dose{}, ErrNotFound
	}
	return d, nil
}

func (r *doseRepo) ListByMedication(ctx context.Context, medicationID string) ([]medications.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Dose, 0)
	for _, d := range r.byID {
		if d.MedicationID == medicationID {
			out = append(out, d)
		}
	}

	sortDoses(out)
	return out, nil
}

func (r *doseRepo) ListByMedications(ctx context.Context, medicationIDs []string) ([]medications.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(medicationIDs))
	for _, id := range medicationIDs {
		wanted[id] = struct{}{}
	}

	out := make([]medications.Dose, 0)
	for _, d := range r.byID {
		if _, ok := wanted[d.MedicationID]; ok {
			out = append(out, d)
		}
	}

	sortDoses(out)
	return out, nil
}

// Orden por horario asc; empates por created_at para salida estable.
func sortDoses(out []medications.Dose) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeOfDay != out[j].TimeOfDay {
			return out[i].TimeOfDay < out[j].TimeOfDay
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
