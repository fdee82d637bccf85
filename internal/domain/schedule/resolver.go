package schedule

import (
	"sort"
	"time"

	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/platform/dates"
)

// DayInput es el snapshot inmutable con el que se resuelve un día.
// El resolver no muta nada de esto ni consulta el reloj: misma entrada,
// misma salida, siempre.
type DayInput struct {
	Date        time.Time
	Medications []medications.Medication
	Doses       map[string][]medications.Dose     // por medication ID
	Skips       map[string][]medications.SkipDate // por medication ID
}

// ResolveDay decide qué medicamentos quedan suprimidos ese día y qué dosis
// se emiten, agrupadas por franja.
//
// Reglas:
//   - Solo medicamentos cuya ventana activa contiene la fecha.
//   - Un medicamento sin dosis no aporta nada: ni totales ni lista de skips.
//   - Un skip en la fecha suprime el día completo del medicamento.
//   - LowInventory: restante <= consumo total de un día de ese medicamento.
//   - TotalMedications cuenta solo medicamentos no-suprimidos que emitieron dosis.
func ResolveDay(in DayInput) DaySchedule {
	entries := make([]Entry, 0)
	skipped := make([]SkippedMedication, 0)
	totalMedications := 0

	for _, m := range in.Medications {
		if !m.ActiveOn(in.Date) {
			continue
		}

		doses := in.Doses[m.ID]
		if len(doses) == 0 {
			continue
		}

		if reason, ok := skipReason(in.Skips[m.ID], in.Date); ok {
			skipped = append(skipped, SkippedMedication{
				MedicationID: m.ID,
				Name:         m.Name,
				Reason:       reason,
			})
			continue
		}

		low := m.TabletsRemaining <= DailyConsumption(doses)
		for _, d := range doses {
			entries = append(entries, newEntry(m, d, low))
		}
		totalMedications++
	}

	// Orden estable de la lista de skips, independiente del orden de entrada.
	sort.SliceStable(skipped, func(i, j int) bool {
		if skipped[i].Name != skipped[j].Name {
			return skipped[i].Name < skipped[j].Name
		}
		return skipped[i].MedicationID < skipped[j].MedicationID
	})

	return DaySchedule{
		Date:             in.Date,
		Periods:          GroupByPeriod(entries),
		Skipped:          skipped,
		TotalMedications: totalMedications,
		TotalDoses:       len(entries),
	}
}

// GroupByPeriod reparte las entradas en las cuatro franjas y ordena cada una
// ascendente por horario. El sort es estable: empates de horario conservan el
// orden de descubrimiento. Siempre devuelve las cuatro claves.
func GroupByPeriod(entries []Entry) map[Period][]Entry {
	out := make(map[Period][]Entry, 4)
	for _, p := range AllPeriods() {
		out[p] = make([]Entry, 0)
	}

	for _, e := range entries {
		p := PeriodOf(e.TimeOfDay)
		out[p] = append(out[p], e)
	}

	for _, p := range AllPeriods() {
		bucket := out[p]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].TimeOfDay < bucket[j].TimeOfDay
		})
	}

	return out
}

func newEntry(m medications.Medication, d medications.Dose, low bool) Entry {
	route := d.RouteOverride
	if route == "" {
		route = m.Route
	}
	instructions := d.Instructions
	if instructions == "" {
		instructions = m.Instructions
	}

	return Entry{
		MedicationID:     m.ID,
		MedicationName:   m.Name,
		Strength:         m.Strength,
		DoseID:           d.ID,
		Amount:           d.Amount,
		TimeOfDay:        d.TimeOfDay,
		Route:            route,
		Instructions:     instructions,
		TabletsRemaining: m.TabletsRemaining,
		LowInventory:     low,
	}
}

func skipReason(skips []medications.SkipDate, date time.Time) (string, bool) {
	key := dates.FormatDate(date)
	for _, s := range skips {
		if dates.FormatDate(s.Date) == key {
			return s.Reason, true
		}
	}
	return "", false
}
