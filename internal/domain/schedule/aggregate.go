package schedule

import (
	"sort"
	"time"

	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/platform/dates"
)

// DailyConsumption suma las cantidades de todas las dosis diarias.
// Lista vacía = 0, no es error.
func DailyConsumption(doses []medications.Dose) float64 {
	var total float64
	for _, d := range doses {
		total += d.Amount
	}
	return total
}

// ActiveDays calcula días totales / suprimidos / activos de la ventana
// [ActiveFrom, ActiveUntil] inclusive. Para un medicamento sin fecha de fin
// el total no es computable: ErrOpenEndedWindow.
//
// Solo cuentan los skips que caen dentro de la ventana, sin duplicar fechas.
// Nunca devuelve días activos negativos.
func ActiveDays(m medications.Medication, skips []medications.SkipDate) (ActiveDaySummary, error) {
	if m.ActiveUntil == nil {
		return ActiveDaySummary{}, ErrOpenEndedWindow
	}

	total := dates.DaysBetweenInclusive(m.ActiveFrom, *m.ActiveUntil)

	seen := make(map[string]struct{}, len(skips))
	skipDates := make([]time.Time, 0, len(skips))
	for _, s := range skips {
		if !m.ActiveOn(s.Date) {
			continue
		}
		key := dates.FormatDate(s.Date)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		skipDates = append(skipDates, s.Date)
	}

	sort.Slice(skipDates, func(i, j int) bool {
		return skipDates[i].Before(skipDates[j])
	})

	active := total - len(skipDates)
	if active < 0 {
		active = 0
	}

	return ActiveDaySummary{
		TotalDays:  total,
		SkipDays:   len(skipDates),
		ActiveDays: active,
		SkipDates:  skipDates,
	}, nil
}
