package intakes

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-scheduler/internal/domain/medications"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Inventory es lo mínimo que el módulo necesita del repo de medicamentos
// para descontar/restaurar tablets. medications.Repository lo satisface.
type Inventory interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
	Update(ctx context.Context, m medications.Medication) error
}

type Service struct {
	repo Repository
	meds Inventory
	now  func() time.Time
}

func NewService(repo Repository, meds Inventory) *Service {
	return &Service{
		repo: repo,
		meds: meds,
		now:  time.Now,
	}
}

type RecordInput struct {
	DoseID  string
	Amount  float64
	TakenAt *time.Time // nil = ahora
	Notes   string
}

// Record registra la toma y descuenta el inventario del medicamento
// (con piso en cero: nunca queda negativo).
func (s *Service) Record(ctx context.Context, medicationID string, in RecordInput) (IntakeLog, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return IntakeLog{}, ErrInvalidInput
	}
	if in.Amount <= 0 {
		return IntakeLog{}, ErrInvalidInput
	}

	m, err := s.meds.GetByID(ctx, medicationID)
	if err != nil {
		return IntakeLog{}, ErrNotFound
	}

	now := s.now()
	takenAt := now
	if in.TakenAt != nil {
		takenAt = *in.TakenAt
	}

	l := IntakeLog{
		ID:           uuid.NewString(),
		MedicationID: medicationID,
		DoseID:       strings.TrimSpace(in.DoseID),
		Amount:       in.Amount,
		TakenAt:      takenAt,
		Notes:        strings.TrimSpace(in.Notes),
		Status:       StatusRecorded,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return IntakeLog{}, err
	}

	m.TabletsRemaining -= in.Amount
	if m.TabletsRemaining < 0 {
		m.TabletsRemaining = 0
	}
	m.UpdatedAt = now
	if err := s.meds.Update(ctx, m); err != nil {
		return IntakeLog{}, err
	}

	return l, nil
}

// Void anula el registro (no se borra) y restaura el inventario. Idempotente.
func (s *Service) Void(ctx context.Context, id string) (IntakeLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return IntakeLog{}, ErrInvalidInput
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return IntakeLog{}, ErrNotFound
	}
	if l.Status == StatusVoided {
		return l, nil
	}

	if err := s.repo.Void(ctx, id); err != nil {
		return IntakeLog{}, err
	}

	m, err := s.meds.GetByID(ctx, l.MedicationID)
	if err == nil {
		m.TabletsRemaining += l.Amount
		m.UpdatedAt = s.now()
		_ = s.meds.Update(ctx, m) // best-effort: el log ya quedó anulado
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (IntakeLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return IntakeLog{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByMedication(ctx context.Context, medicationID string, filter ListFilter) ([]IntakeLog, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByMedication(ctx, medicationID, filter)
}
