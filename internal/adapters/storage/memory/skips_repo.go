package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"med-scheduler/internal/domain/medications"
)

type skipRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.SkipDate
}

func NewSkipRepo() medications.SkipRepository {
	return &skipRepo{
		byID: make(map[string]medications.SkipDate),
	}
}

func (r *skipRepo) Create(ctx context.Context, s medications.SkipDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return errors.New("skip id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("skip already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *skipRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *skipRepo) GetByID(ctx context.Context, id string) (medications.SkipDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return medications.SkipDate{}, ErrNotFound
	}
	return s, nil
}

func (r *skipRepo) ListByMedication(ctx context.Context, medicationID string) ([]medications.SkipDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.SkipDate, 0)
	for _, s := range r.byID {
		if s.MedicationID == medicationID {
			out = append(out, s)
		}
	}

	sortSkips(out)
	return out, nil
}

func (r *skipRepo) ListByMedications(ctx context.Context, medicationIDs []string) ([]medications.SkipDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(medicationIDs))
	for _, id := range medicationIDs {
		wanted[id] = struct{}{}
	}

	out := make([]medications.SkipDate, 0)
	for _, s := range r.byID {
		if _, ok := wanted[s.MedicationID]; ok {
			out = append(out, s)
		}
	}

	sortSkips(out)
	return out, nil
}

func sortSkips(out []medications.SkipDate) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
}
