package schedule

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/middleware"
	"med-scheduler/internal/platform/dates"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, medsSvc *medications.Service) {
	r.Route("/schedule", func(sr chi.Router) {
		sr.Get("/", dayScheduleHandler(svc))
		sr.Get("/range", rangeScheduleHandler(svc))
	})

	r.Get("/medications/{medicationID}/next-dose", nextDoseHandler(svc, medsSvc))
	r.Get("/medications/{medicationID}/active-days", activeDaysHandler(svc, medsSvc))
}

type entryResponse struct {
	MedicationID   string `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	Strength       string `json:"strength,omitempty"`

	DoseID  string  `json:"dose_id"`
	Amount  float64 `json:"amount"`
	Time    string  `json:"time"`     // HH:MM
	Time12h string  `json:"time_12h"` // h:MM AM/PM

	Route        string `json:"route,omitempty"`
	Instructions string `json:"instructions,omitempty"`

	TabletsRemaining float64 `json:"tablets_remaining"`
	LowInventory     bool    `json:"low_inventory"`
}

type skippedResponse struct {
	MedicationID string `json:"medication_id"`
	Name         string `json:"name"`
	Reason       string `json:"reason,omitempty"`
}

type dayScheduleResponse struct {
	Date             string                     `json:"date"`
	Periods          map[string][]entryResponse `json:"periods"`
	Skipped          []skippedResponse          `json:"skipped_medications"`
	TotalMedications int                        `json:"total_medications"`
	TotalDoses       int                        `json:"total_doses"`
}

type rangeScheduleResponse struct {
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	TotalDays int                   `json:"total_days"`
	Schedules []dayScheduleResponse `json:"schedules"`
}

type nextDoseResponse struct {
	Found bool `json:"found"`

	Date    string  `json:"date,omitempty"`
	Time    string  `json:"time,omitempty"`
	Time12h string  `json:"time_12h,omitempty"`
	DoseID  string  `json:"dose_id,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
}

type activeDaysResponse struct {
	TotalDays  int      `json:"total_days"`
	SkipDays   int      `json:"skip_days"`
	ActiveDays int      `json:"active_days"`
	SkipDates  []string `json:"skip_dates"`
}

// @Summary Cronograma de un día
// @Param date query string true "YYYY-MM-DD"
func dayScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date, err := dates.ParseDate(strings.TrimSpace(r.URL.Query().Get("date")))
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		day, err := svc.DaySchedule(r.Context(), claims.UserID, date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toDayScheduleResponse(day))
	}
}

// @Summary Cronograma de un rango de fechas (máximo 30 días)
// @Param start query string true "YYYY-MM-DD"
// @Param end query string true "YYYY-MM-DD"
func rangeScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		start, err := dates.ParseDate(strings.TrimSpace(r.URL.Query().Get("start")))
		if err != nil {
			http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := dates.ParseDate(strings.TrimSpace(r.URL.Query().Get("end")))
		if err != nil {
			http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		result, err := svc.RangeSchedule(r.Context(), claims.UserID, start, end)
		if err != nil {
			switch err {
			case ErrInvalidRange:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrRangeTooLarge:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		schedules := make([]dayScheduleResponse, 0, len(result.Days))
		for _, day := range result.Days {
			schedules = append(schedules, toDayScheduleResponse(day))
		}

		writeJSON(w, http.StatusOK, rangeScheduleResponse{
			StartDate: dates.FormatDate(result.Start),
			EndDate:   dates.FormatDate(result.End),
			TotalDays: result.TotalDays,
			Schedules: schedules,
		})
	}
}

// @Summary Próxima toma de un medicamento a partir de un instante
// @Param from query string true "YYYY-MM-DDTHH:MM"
func nextDoseHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medicationID := chi.URLParam(r, "medicationID")
		if !authorizeMedication(w, r, medsSvc, medicationID, claims.UserID) {
			return
		}

		from, err := parseInstant(strings.TrimSpace(r.URL.Query().Get("from")))
		if err != nil {
			http.Error(w, "from must be YYYY-MM-DDTHH:MM", http.StatusBadRequest)
			return
		}

		occ, found, err := svc.NextDose(r.Context(), medicationID, from)
		if err != nil {
			switch err {
			case ErrMedicationNotFound:
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if !found {
			writeJSON(w, http.StatusOK, nextDoseResponse{Found: false})
			return
		}

		writeJSON(w, http.StatusOK, nextDoseResponse{
			Found:   true,
			Date:    dates.FormatDate(occ.Date),
			Time:    dates.FormatTimeOfDay(occ.TimeOfDay, dates.Clock24h),
			Time12h: dates.FormatTimeOfDay(occ.TimeOfDay, dates.Clock12h),
			DoseID:  occ.Dose.ID,
			Amount:  occ.Dose.Amount,
		})
	}
}

// @Summary Resumen de días activos de un medicamento con fin explícito
func activeDaysHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medicationID := chi.URLParam(r, "medicationID")
		if !authorizeMedication(w, r, medsSvc, medicationID, claims.UserID) {
			return
		}

		summary, err := svc.ActiveDaySummary(r.Context(), medicationID)
		if err != nil {
			switch err {
			case ErrMedicationNotFound:
				http.Error(w, err.Error(), http.StatusNotFound)
			case ErrOpenEndedWindow:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		skipDates := make([]string, 0, len(summary.SkipDates))
		for _, d := range summary.SkipDates {
			skipDates = append(skipDates, dates.FormatDate(d))
		}

		writeJSON(w, http.StatusOK, activeDaysResponse{
			TotalDays:  summary.TotalDays,
			SkipDays:   summary.SkipDays,
			ActiveDays: summary.ActiveDays,
			SkipDates:  skipDates,
		})
	}
}

// authorizeMedication corta con 404/403 si el medicamento no existe o no es
// del usuario. Owner-only: el scheduler no tiene delegados.
func authorizeMedication(w http.ResponseWriter, r *http.Request, medsSvc *medications.Service, medicationID, userID string) bool {
	m, err := medsSvc.GetByID(r.Context(), medicationID)
	if err != nil {
		http.Error(w, "medication not found", http.StatusNotFound)
		return false
	}
	if m.OwnerUserID != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// parseInstant arma un instante a partir de "YYYY-MM-DDTHH:MM".
// Fecha y minuto del día son lo único que usa la búsqueda.
func parseInstant(s string) (time.Time, error) {
	idx := strings.IndexByte(s, 'T')
	if idx < 0 {
		return time.Time{}, dates.ErrInvalidTime
	}

	date, err := dates.ParseDate(s[:idx])
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := dates.ParseTimeOfDay(s[idx+1:])
	if err != nil {
		return time.Time{}, err
	}

	return date.Add(time.Duration(minutes) * time.Minute), nil
}

func toDayScheduleResponse(day DaySchedule) dayScheduleResponse {
	periods := make(map[string][]entryResponse, 4)
	for _, p := range AllPeriods() {
		bucket := day.Periods[p]
		out := make([]entryResponse, 0, len(bucket))
		for _, e := range bucket {
			out = append(out, entryResponse{
				MedicationID:     e.MedicationID,
				MedicationName:   e.MedicationName,
				Strength:         e.Strength,
				DoseID:           e.DoseID,
				Amount:           e.Amount,
				Time:             dates.FormatTimeOfDay(e.TimeOfDay, dates.Clock24h),
				Time12h:          dates.FormatTimeOfDay(e.TimeOfDay, dates.Clock12h),
				Route:            e.Route,
				Instructions:     e.Instructions,
				TabletsRemaining: e.TabletsRemaining,
				LowInventory:     e.LowInventory,
			})
		}
		periods[string(p)] = out
	}

	skipped := make([]skippedResponse, 0, len(day.Skipped))
	for _, s := range day.Skipped {
		skipped = append(skipped, skippedResponse{
			MedicationID: s.MedicationID,
			Name:         s.Name,
			Reason:       s.Reason,
		})
	}

	return dayScheduleResponse{
		Date:             dates.FormatDate(day.Date),
		Periods:          periods,
		Skipped:          skipped,
		TotalMedications: day.TotalMedications,
		TotalDoses:       day.TotalDoses,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (medications/schedule/intakes) para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
