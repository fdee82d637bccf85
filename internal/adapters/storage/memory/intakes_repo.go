package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"med-scheduler/internal/domain/intakes"
)

type intakeRepo struct {
	mu   sync.RWMutex
	byID map[string]intakes.IntakeLog
}

func NewIntakeRepo() intakes.Repository {
	return &intakeRepo{
		byID: make(map[string]intakes.IntakeLog),
	}
}

func (r *intakeRepo) Create(ctx context.Context, l intakes.IntakeLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID == "" {
		return errors.New("intake id required")
	}
	if _, exists := r.byID[l.ID]; exists {
		return errors.New("intake already exists")
	}
	r.byID[l.ID] = l
	return nil
}

func (r *intakeRepo) GetByID(ctx context.Context, id string) (intakes.IntakeLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return intakes.IntakeLog{}, ErrNotFound
	}
	return l, nil
}

func (r *intakeRepo) ListByMedication(ctx context.Context, medicationID string, filter intakes.ListFilter) ([]intakes.IntakeLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]intakes.IntakeLog, 0)
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

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].TakenAt.After(out[j].TakenAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *intakeRepo) Void(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	l.Status = intakes.StatusVoided
	r.byID[id] = l
	return nil
}
