package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-scheduler/internal/platform/dates"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo  Repository
	doses DoseRepository
	skips SkipRepository
	now   func() time.Time
}

func NewService(repo Repository, doses DoseRepository, skips SkipRepository) *Service {
	return &Service{
		repo:  repo,
		doses: doses,
		skips: skips,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name         string
	Strength     string
	Route        string
	Instructions string

	ActiveFrom       string // YYYY-MM-DD, requerido
	ActiveUntil      string // YYYY-MM-DD, opcional
	TabletsRemaining float64
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Medication, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	if in.TabletsRemaining < 0 {
		return Medication{}, ErrInvalidInput
	}

	from, err := dates.ParseDate(strings.TrimSpace(in.ActiveFrom))
	if err != nil {
		return Medication{}, err
	}

	var until *time.Time
	if strings.TrimSpace(in.ActiveUntil) != "" {
		u, err := dates.ParseDate(strings.TrimSpace(in.ActiveUntil))
		if err != nil {
			return Medication{}, err
		}
		// ActiveUntil debe ser estrictamente posterior a ActiveFrom.
		if !u.After(from) {
			return Medication{}, ErrInvalidInput
		}
		until = &u
	}

	now := s.now()
	m := Medication{
		ID:               uuid.NewString(),
		OwnerUserID:      ownerUserID,
		Name:             strings.TrimSpace(in.Name),
		Strength:         strings.TrimSpace(in.Strength),
		Route:            strings.TrimSpace(in.Route),
		Instructions:     strings.TrimSpace(in.Instructions),
		ActiveFrom:       from,
		ActiveUntil:      until,
		TabletsRemaining: in.TabletsRemaining,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// PatchString distingue "campo no enviado" de "campo enviado con null".
type PatchString struct {
	Present bool
	Value   *string
}

type UpdateInput struct {
	Name         *string
	Strength     *string
	Route        *string
	Instructions *string

	ActiveFrom       *string
	ActiveUntil      PatchString // null = volver a sin fecha de fin
	TabletsRemaining *float64
}

func (s *Service) Update(ctx context.Context, id, ownerUserID string, in UpdateInput) (Medication, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if m.OwnerUserID != ownerUserID {
		return Medication{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = name
	}
	if in.Strength != nil {
		m.Strength = strings.TrimSpace(*in.Strength)
	}
	if in.Route != nil {
		m.Route = strings.TrimSpace(*in.Route)
	}
	if in.Instructions != nil {
		m.Instructions = strings.TrimSpace(*in.Instructions)
	}
	if in.ActiveFrom != nil {
		from, err := dates.ParseDate(strings.TrimSpace(*in.ActiveFrom))
		if err != nil {
			return Medication{}, err
		}
		m.ActiveFrom = from
	}
	if in.ActiveUntil.Present {
		if in.ActiveUntil.Value == nil {
			m.ActiveUntil = nil
		} else {
			u, err := dates.ParseDate(strings.TrimSpace(*in.ActiveUntil.Value))
			if err != nil {
				return Medication{}, err
			}
			m.ActiveUntil = &u
		}
	}
	if in.TabletsRemaining != nil {
		if *in.TabletsRemaining < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.TabletsRemaining = *in.TabletsRemaining
	}

	// Revalidar la ventana después de aplicar el patch.
	if m.ActiveUntil != nil && !m.ActiveUntil.After(m.ActiveFrom) {
		return Medication{}, ErrInvalidInput
	}

	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

type DoseInput struct {
	Time          string // H:MM o HH:MM
	Amount        float64
	RouteOverride string
	Instructions  string
}

func (s *Service) AddDose(ctx context.Context, medicationID string, in DoseInput) (Dose, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return Dose{}, ErrInvalidInput
	}
	if in.Amount <= 0 {
		return Dose{}, ErrInvalidInput
	}

	minutes, err := dates.ParseTimeOfDay(strings.TrimSpace(in.Time))
	if err != nil {
		return Dose{}, err
	}

	if _, err := s.repo.GetByID(ctx, medicationID); err != nil {
		return Dose{}, err
	}

	d := Dose{
		ID:            uuid.NewString(),
		MedicationID:  medicationID,
		TimeOfDay:     minutes,
		Amount:        in.Amount,
		RouteOverride: strings.TrimSpace(in.RouteOverride),
		Instructions:  strings.TrimSpace(in.Instructions),
		CreatedAt:     s.now(),
	}

	if err := s.doses.Create(ctx, d); err != nil {
		return Dose{}, err
	}
	return d, nil
}

func (s *Service) ListDoses(ctx context.Context, medicationID string) ([]Dose, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return nil, ErrInvalidInput
	}
	return s.doses.ListByMedication(ctx, medicationID)
}

func (s *Service) RemoveDose(ctx context.Context, medicationID, doseID string) error {
	d, err := s.doses.GetByID(ctx, strings.TrimSpace(doseID))
	if err != nil {
		return err
	}
	if d.MedicationID != strings.TrimSpace(medicationID) {
		return ErrNotFound
	}
	return s.doses.Delete(ctx, d.ID)
}

type SkipInput struct {
	Date   string // YYYY-MM-DD
	Reason string
}

// AddSkip es idempotente por (medicamento, fecha): si ya existe un skip para
// esa fecha devuelve el existente en vez de duplicarlo.
func (s *Service) AddSkip(ctx context.Context, medicationID string, in SkipInput) (SkipDate, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return SkipDate{}, ErrInvalidInput
	}

	date, err := dates.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		return SkipDate{}, err
	}

	if _, err := s.repo.GetByID(ctx, medicationID); err != nil {
		return SkipDate{}, err
	}

	existing, err := s.skips.ListByMedication(ctx, medicationID)
	if err != nil {
		return SkipDate{}, err
	}
	for _, sk := range existing {
		if sk.Date.Equal(date) {
			return sk, nil
		}
	}

	sk := SkipDate{
		ID:           uuid.NewString(),
		MedicationID: medicationID,
		Date:         date,
		Reason:       strings.TrimSpace(in.Reason),
		CreatedAt:    s.now(),
	}

	if err := s.skips.Create(ctx, sk); err != nil {
		return SkipDate{}, err
	}
	return sk, nil
}

func (s *Service) ListSkips(ctx context.Context, medicationID string) ([]SkipDate, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return nil, ErrInvalidInput
	}
	return s.skips.ListByMedication(ctx, medicationID)
}

func (s *Service) RemoveSkip(ctx context.Context, medicationID, skipID string) error {
	sk, err := s.skips.GetByID(ctx, strings.TrimSpace(skipID))
	if err != nil {
		return err
	}
	if sk.MedicationID != strings.TrimSpace(medicationID) {
		return ErrNotFound
	}
	return s.skips.Delete(ctx, sk.ID)
}
