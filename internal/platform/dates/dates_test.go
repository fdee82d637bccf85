package dates

import (
	"testing"
	"time"
)

func TestParseDate_RoundTrip(t *testing.T) {
	cases := []string{"2024-01-15", "2024-02-29", "2000-12-31", "1999-06-01"}
	for _, s := range cases {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatalf("ParseDate(%q) error: %v", s, err)
		}
		if got := FormatDate(d); got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
		if d.Hour() != 0 || d.Minute() != 0 || d.Location() != time.UTC {
			t.Fatalf("expected midnight UTC for %q, got %v", s, d)
		}
	}
}

func TestParseDate_RejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"2024-1-02",   // mes sin cero inicial
		"2024-01-2",   // día sin cero inicial
		"2024/01/02",  // separador incorrecto
		"02-01-2024",  // orden incorrecto
		"2024-13-01",  // mes fuera de rango
		"2024-00-10",  // mes cero
		"2024-02-30",  // día inválido para el mes
		"2023-02-29",  // no bisiesto
		"2024-01-15 ", // espacio extra
		"20240115",
	}
	for _, s := range bad {
		if _, err := ParseDate(s); err != ErrInvalidDate {
			t.Fatalf("ParseDate(%q): expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"0:00", 0},
		{"08:30", 510},
		{"8:30", 510},
		{"12:00", 720},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseTimeOfDay(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseTimeOfDay_RejectsMalformed(t *testing.T) {
	bad := []string{"", "24:00", "12:60", "8:3", "8:305", ":30", "08-30", "ab:cd", "08:3a", "108:30"}
	for _, s := range bad {
		if _, err := ParseTimeOfDay(s); err != ErrInvalidTime {
			t.Fatalf("ParseTimeOfDay(%q): expected ErrInvalidTime, got %v", s, err)
		}
	}
}

func TestFormatTimeOfDay(t *testing.T) {
	cases := []struct {
		minutes int
		style   ClockStyle
		want    string
	}{
		{510, Clock24h, "08:30"},
		{510, Clock12h, "8:30 AM"},
		{0, Clock24h, "00:00"},
		{0, Clock12h, "12:00 AM"},
		{720, Clock24h, "12:00"},
		{720, Clock12h, "12:00 PM"},
		{1200, Clock12h, "8:00 PM"},
		{1439, Clock24h, "23:59"},
		{1439, Clock12h, "11:59 PM"},
	}
	for _, c := range cases {
		if got := FormatTimeOfDay(c.minutes, c.style); got != c.want {
			t.Fatalf("FormatTimeOfDay(%d, %s) = %q, want %q", c.minutes, c.style, got, c.want)
		}
	}
}

func TestDayArithmetic(t *testing.T) {
	a, _ := ParseDate("2024-01-15")
	b, _ := ParseDate("2024-01-17")

	if got := DaysBetween(a, b); got != 2 {
		t.Fatalf("DaysBetween = %d, want 2", got)
	}
	if got := DaysBetweenInclusive(a, b); got != 3 {
		t.Fatalf("DaysBetweenInclusive = %d, want 3", got)
	}
	if got := AddDays(a, 17); FormatDate(got) != "2024-02-01" {
		t.Fatalf("AddDays cruzando mes = %s", FormatDate(got))
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Fatalf("DaysBetween invertido = %d, want -2", got)
	}
}

func TestMinuteOfDayAndDateOf(t *testing.T) {
	instant := time.Date(2024, 1, 15, 10, 45, 30, 0, time.UTC)
	if got := MinuteOfDay(instant); got != 645 {
		t.Fatalf("MinuteOfDay = %d, want 645", got)
	}
	if got := DateOf(instant); FormatDate(got) != "2024-01-15" || got.Hour() != 0 {
		t.Fatalf("DateOf = %v", got)
	}
}
