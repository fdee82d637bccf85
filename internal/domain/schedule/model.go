package schedule

import (
	"time"

	"med-scheduler/internal/domain/medications"
)

// Period agrupa las dosis del día en cuatro franjas fijas para la vista.
type Period string

const (
	PeriodMorning   Period = "morning"   // [6, 12)
	PeriodAfternoon Period = "afternoon" // [12, 18)
	PeriodEvening   Period = "evening"   // [18, 22)
	PeriodNight     Period = "night"     // [22, 24) U [0, 6)
)

// AllPeriods en orden de presentación. El grouper siempre devuelve las cuatro claves.
func AllPeriods() []Period {
	return []Period{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}
}

// PeriodOf clasifica un horario (minutos desde medianoche) en su franja.
func PeriodOf(minutes int) Period {
	hour := minutes / 60
	switch {
	case hour >= 6 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 18:
		return PeriodAfternoon
	case hour >= 18 && hour < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// Entry es una dosis resuelta para una fecha concreta. Derivada, nunca se persiste.
type Entry struct {
	MedicationID   string
	MedicationName string
	Strength       string

	DoseID    string
	Amount    float64
	TimeOfDay int // minutos desde medianoche

	Route        string // override de la dosis o vía del medicamento
	Instructions string

	TabletsRemaining float64
	LowInventory     bool
}

// SkippedMedication registra un medicamento suprimido el día completo.
type SkippedMedication struct {
	MedicationID string
	Name         string
	Reason       string
}

// DaySchedule es la vista resuelta de un día.
type DaySchedule struct {
	Date    time.Time
	Periods map[Period][]Entry
	Skipped []SkippedMedication

	TotalMedications int
	TotalDoses       int
}

// RangeResult es la vista resuelta de un rango inclusivo de fechas.
type RangeResult struct {
	Start     time.Time
	End       time.Time
	TotalDays int
	Days      []DaySchedule
}

// Occurrence es la próxima toma encontrada: (fecha, horario, dosis).
type Occurrence struct {
	Date      time.Time
	TimeOfDay int
	Dose      medications.Dose
}

// ActiveDaySummary resume la ventana activa de un medicamento con fin explícito.
type ActiveDaySummary struct {
	TotalDays  int
	SkipDays   int
	ActiveDays int
	SkipDates  []time.Time
}
