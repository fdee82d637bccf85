package schedule

import (
	"context"
	"errors"
	"time"

	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/platform/dates"
)

var (
	ErrInvalidRange       = errors.New("range end precedes start")
	ErrRangeTooLarge      = errors.New("range exceeds maximum days")
	ErrOpenEndedWindow    = errors.New("medication has no end date")
	ErrMedicationNotFound = errors.New("medication not found")
)

// MaxRangeDays acota el tamaño de un rango resuelto (inclusivo).
const MaxRangeDays = 30

// Service arma snapshots desde los repositorios y delega en las funciones
// puras (ResolveDay, NextOccurrence, ActiveDays). No escribe nada.
type Service struct {
	meds  medications.Repository
	doses medications.DoseRepository
	skips medications.SkipRepository
}

func NewService(meds medications.Repository, doses medications.DoseRepository, skips medications.SkipRepository) *Service {
	return &Service{
		meds:  meds,
		doses: doses,
		skips: skips,
	}
}

func (s *Service) DaySchedule(ctx context.Context, ownerUserID string, date time.Time) (DaySchedule, error) {
	in, err := s.snapshot(ctx, ownerUserID, date)
	if err != nil {
		return DaySchedule{}, err
	}
	return ResolveDay(in), nil
}

func (s *Service) RangeSchedule(ctx context.Context, ownerUserID string, start, end time.Time) (RangeResult, error) {
	if end.Before(start) {
		return RangeResult{}, ErrInvalidRange
	}
	totalDays := dates.DaysBetweenInclusive(start, end)
	if totalDays > MaxRangeDays {
		return RangeResult{}, ErrRangeTooLarge
	}

	days := make([]DaySchedule, 0, totalDays)
	for d := start; !d.After(end); d = dates.AddDays(d, 1) {
		in, err := s.snapshot(ctx, ownerUserID, d)
		if err != nil {
			return RangeResult{}, err
		}
		days = append(days, ResolveDay(in))
	}

	return RangeResult{
		Start:     start,
		End:       end,
		TotalDays: totalDays,
		Days:      days,
	}, nil
}

func (s *Service) NextDose(ctx context.Context, medicationID string, from time.Time) (Occurrence, bool, error) {
	m, err := s.meds.GetByID(ctx, medicationID)
	if err != nil {
		return Occurrence{}, false, ErrMedicationNotFound
	}

	doses, err := s.doses.ListByMedication(ctx, medicationID)
	if err != nil {
		return Occurrence{}, false, err
	}
	skips, err := s.skips.ListByMedication(ctx, medicationID)
	if err != nil {
		return Occurrence{}, false, err
	}

	occ, ok := NextOccurrence(m, doses, skips, from)
	return occ, ok, nil
}

func (s *Service) ActiveDaySummary(ctx context.Context, medicationID string) (ActiveDaySummary, error) {
	m, err := s.meds.GetByID(ctx, medicationID)
	if err != nil {
		return ActiveDaySummary{}, ErrMedicationNotFound
	}

	skips, err := s.skips.ListByMedication(ctx, medicationID)
	if err != nil {
		return ActiveDaySummary{}, err
	}

	return ActiveDays(m, skips)
}

// snapshot trae los medicamentos activos en la fecha con sus dosis y skips,
// ya agrupados por medicamento, listo para ResolveDay.
func (s *Service) snapshot(ctx context.Context, ownerUserID string, date time.Time) (DayInput, error) {
	meds, err := s.meds.ListActiveOn(ctx, ownerUserID, date)
	if err != nil {
		return DayInput{}, err
	}

	ids := make([]string, 0, len(meds))
	for _, m := range meds {
		ids = append(ids, m.ID)
	}

	doses, err := s.doses.ListByMedications(ctx, ids)
	if err != nil {
		return DayInput{}, err
	}
	skips, err := s.skips.ListByMedications(ctx, ids)
	if err != nil {
		return DayInput{}, err
	}

	dosesByMed := make(map[string][]medications.Dose, len(meds))
	for _, d := range doses {
		dosesByMed[d.MedicationID] = append(dosesByMed[d.MedicationID], d)
	}
	skipsByMed := make(map[string][]medications.SkipDate, len(meds))
	for _, sk := range skips {
		skipsByMed[sk.MedicationID] = append(skipsByMed[sk.MedicationID], sk)
	}

	return DayInput{
		Date:        date,
		Medications: meds,
		Doses:       dosesByMed,
		Skips:       skipsByMed,
	}, nil
}
