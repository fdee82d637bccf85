package dates

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

// Layout es el único formato de fecha aceptado en el API (YYYY-MM-DD).
const Layout = "2006-01-02"

// MinutesPerDay: los horarios de dosis se guardan como minutos desde medianoche.
const MinutesPerDay = 24 * 60

// ParseDate valida estrictamente YYYY-MM-DD y devuelve la fecha a medianoche UTC.
// time.Parse acepta componentes sin cero inicial ("2024-1-2"), así que
// chequeamos la forma antes de parsear.
func ParseDate(s string) (time.Time, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, ErrInvalidDate
	}
	for i := 0; i < 10; i++ {
		if i == 4 || i == 7 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, ErrInvalidDate
		}
	}

	// time.Parse ya valida rangos de mes/día, incluyendo bisiestos.
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate es la inversa de ParseDate.
func FormatDate(t time.Time) string {
	return t.Format(Layout)
}

// ParseTimeOfDay acepta H:MM o HH:MM (hora 0-23, minuto 0-59) y devuelve
// minutos desde medianoche (0-1439). Cualquier otra forma es ErrInvalidTime.
func ParseTimeOfDay(s string) (int, error) {
	sep := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			sep = i
			break
		}
	}
	if sep < 1 || sep > 2 || len(s)-sep-1 != 2 {
		return 0, ErrInvalidTime
	}

	hour, ok := parseDigits(s[:sep])
	if !ok || hour > 23 {
		return 0, ErrInvalidTime
	}
	minute, ok := parseDigits(s[sep+1:])
	if !ok || minute > 59 {
		return 0, ErrInvalidTime
	}

	return hour*60 + minute, nil
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// ClockStyle define cómo renderizar un horario de dosis.
type ClockStyle string

const (
	Clock24h ClockStyle = "24h"
	Clock12h ClockStyle = "12h"
)

// FormatTimeOfDay renderiza minutos desde medianoche.
// 24h: "HH:MM" con cero inicial. 12h: "h:MM AM/PM" (0 -> 12 AM, 12 -> 12 PM).
func FormatTimeOfDay(minutes int, style ClockStyle) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	hour := minutes / 60
	minute := minutes % 60

	if style != Clock12h {
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, minute, suffix)
}

// AddDays suma n días calendario.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween devuelve b - a en días (exclusivo).
// Asume fechas normalizadas a medianoche UTC (lo que produce ParseDate).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// DaysBetweenInclusive cuenta ambos extremos: [a, b].
func DaysBetweenInclusive(a, b time.Time) int {
	return DaysBetween(a, b) + 1
}

// MinuteOfDay extrae la hora del reloj de un instante como minutos desde medianoche.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DateOf trunca un instante a su fecha calendario (medianoche UTC).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
