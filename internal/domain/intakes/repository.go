package intakes

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l IntakeLog) error
	GetByID(ctx context.Context, id string) (IntakeLog, error)
	ListByMedication(ctx context.Context, medicationID string, filter ListFilter) ([]IntakeLog, error)
	Void(ctx context.Context, id string) error
}

type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}
