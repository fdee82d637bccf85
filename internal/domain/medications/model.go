package medications

import "time"

// Medication representa un medicamento recetado a un usuario, con su ventana
// activa y el inventario restante.
type Medication struct {
	ID          string
	OwnerUserID string

	Name         string
	Strength     string // "500mg", "10ml", etc.
	Route        string // vía por defecto: "oral", "subcutaneous", ...
	Instructions string

	ActiveFrom  time.Time
	ActiveUntil *time.Time // nil = sin fecha de fin

	TabletsRemaining float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveOn indica si la fecha cae dentro de la ventana [ActiveFrom, ActiveUntil].
// Ambos extremos inclusivos; ActiveUntil nil significa sin tope superior.
func (m Medication) ActiveOn(date time.Time) bool {
	if date.Before(m.ActiveFrom) {
		return false
	}
	if m.ActiveUntil != nil && date.After(*m.ActiveUntil) {
		return false
	}
	return true
}

// Dose es una toma diaria fija del medicamento: horario + cantidad.
type Dose struct {
	ID           string
	MedicationID string

	TimeOfDay int // minutos desde medianoche (0-1439)
	Amount    float64

	RouteOverride string // vacío = usar la vía del medicamento
	Instructions  string

	CreatedAt time.Time
}

// SkipDate suprime todas las dosis del medicamento en una fecha puntual.
type SkipDate struct {
	ID           string
	MedicationID string

	Date   time.Time
	Reason string

	CreatedAt time.Time
}
