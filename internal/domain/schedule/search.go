package schedule

import (
	"time"

	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/platform/dates"
)

// SearchWindowDays acota la búsqueda hacia adelante de la próxima toma.
// Garantiza terminación aunque el medicamento tenga todos los días suprimidos.
const SearchWindowDays = 30

// NextOccurrence encuentra la próxima dosis no suprimida estrictamente
// posterior a from.
//
// Semántica (compartida con ResolveDay para que "hoy" y "próxima" no diverjan):
//   - Si la fecha de from cae fuera de la ventana activa, no hay búsqueda: none.
//   - Un skip suprime el día completo; se avanza al día siguiente.
//   - En el día inicial solo cuentan dosis con horario estrictamente posterior
//     al horario de from; en días posteriores cuentan todas.
//   - Gana la dosis con menor horario del primer día que califique.
//   - Tope de SearchWindowDays días hacia adelante; pasado eso, none.
func NextOccurrence(m medications.Medication, doses []medications.Dose, skips []medications.SkipDate, from time.Time) (Occurrence, bool) {
	startDate := dates.DateOf(from)
	startMinute := dates.MinuteOfDay(from)

	if !m.ActiveOn(startDate) {
		return Occurrence{}, false
	}

	skipSet := make(map[string]struct{}, len(skips))
	for _, s := range skips {
		skipSet[dates.FormatDate(s.Date)] = struct{}{}
	}

	for offset := 0; offset <= SearchWindowDays; offset++ {
		date := dates.AddDays(startDate, offset)

		// La ventana activa terminó: no habrá más ocurrencias.
		if !m.ActiveOn(date) {
			return Occurrence{}, false
		}

		if _, skippedDay := skipSet[dates.FormatDate(date)]; skippedDay {
			continue
		}

		best, found := earliestDose(doses, offset == 0, startMinute)
		if found {
			return Occurrence{
				Date:      date,
				TimeOfDay: best.TimeOfDay,
				Dose:      best,
			}, true
		}
	}

	return Occurrence{}, false
}

// earliestDose elige la dosis de menor horario. En el día inicial solo
// califican horarios estrictamente posteriores a afterMinute; los empates
// los gana la primera en el orden de entrada.
func earliestDose(doses []medications.Dose, initialDay bool, afterMinute int) (medications.Dose, bool) {
	var best medications.Dose
	found := false

	for _, d := range doses {
		if initialDay && d.TimeOfDay <= afterMinute {
			continue
		}
		if !found || d.TimeOfDay < best.TimeOfDay {
			best = d
			found = true
		}
	}

	return best, found
}
