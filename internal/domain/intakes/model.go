package intakes

import "time"

// Status del registro de toma. Los registros nunca se borran: se anulan.
type Status string

const (
	StatusRecorded Status = "recorded"
	StatusVoided   Status = "voided"
)

// IntakeLog es el registro inmutable de una toma: quién descuenta el
// inventario del medicamento.
type IntakeLog struct {
	ID           string
	MedicationID string
	DoseID       string // opcional: toma fuera de cronograma

	Amount  float64
	TakenAt time.Time
	Notes   string

	Status Status

	CreatedAt time.Time
}
