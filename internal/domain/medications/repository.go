package medications

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Medication, error)
	ListActiveOn(ctx context.Context, ownerUserID string, date time.Time) ([]Medication, error)
}

type DoseRepository interface {
	Create(ctx context.Context, d Dose) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Dose, error)
	ListByMedication(ctx context.Context, medicationID string) ([]Dose, error)
	ListByMedications(ctx context.Context, medicationIDs []string) ([]Dose, error)
}

type SkipRepository interface {
	Create(ctx context.Context, s SkipDate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (SkipDate, error)
	ListByMedication(ctx context.Context, medicationID string) ([]SkipDate, error)
	ListByMedications(ctx context.Context, medicationIDs []string) ([]SkipDate, error)
}
