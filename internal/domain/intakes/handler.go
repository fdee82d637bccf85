package intakes

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/middleware"
	"med-scheduler/internal/platform/dates"
	"med-scheduler/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

// CapabilityExtendedHistory habilita consultar tomas de más de 90 días atrás.
const CapabilityExtendedHistory = "history:extended"

const historyWindowDays = 90

func RegisterRoutes(r chi.Router, svc *Service, medsSvc *medications.Service, caps capabilities.Resolver) {
	r.Route("/medications/{medicationID}/intakes", func(ir chi.Router) {
		ir.Post("/", recordIntakeHandler(svc, medsSvc))
		ir.Get("/", listIntakesHandler(svc, medsSvc, caps))
		ir.Post("/{intakeID}/void", voidIntakeHandler(svc, medsSvc))
	})
}

type recordIntakeRequest struct {
	DoseID  string  `json:"dose_id"`
	Amount  float64 `json:"amount"`
	TakenAt string  `json:"taken_at"` // RFC3339 opcional; vacío = ahora
	Notes   string  `json:"notes"`
}

type intakeResponse struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medication_id"`
	DoseID       string    `json:"dose_id,omitempty"`
	Amount       float64   `json:"amount"`
	TakenAt      time.Time `json:"taken_at"`
	Notes        string    `json:"notes,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// @Summary Registrar una toma (descuenta inventario)
func recordIntakeHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, medsSvc)
		if !ok {
			return
		}

		var req recordIntakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var takenAt *time.Time
		if strings.TrimSpace(req.TakenAt) != "" {
			t, err := time.Parse(time.RFC3339, req.TakenAt)
			if err != nil {
				http.Error(w, "taken_at must be RFC3339", http.StatusBadRequest)
				return
			}
			takenAt = &t
		}

		l, err := svc.Record(r.Context(), m.ID, RecordInput{
			DoseID:  req.DoseID,
			Amount:  req.Amount,
			TakenAt: takenAt,
			Notes:   req.Notes,
		})
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toIntakeResponse(l))
	}
}

// @Summary Listar tomas de un medicamento
// @Param from query string false "YYYY-MM-DD (más de 90 días atrás requiere history:extended)"
// @Param to query string false "YYYY-MM-DD"
func listIntakesHandler(svc *Service, medsSvc *medications.Service, caps capabilities.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, medsSvc)
		if !ok {
			return
		}
		claims, _ := middleware.GetClaims(r.Context())

		filter := ListFilter{}

		if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
			d, err := dates.ParseDate(v)
			if err != nil {
				http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			filter.From = &d
		}
		if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
			d, err := dates.ParseDate(v)
			if err != nil {
				http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			// inclusivo: hasta el final del día
			end := d.Add(24*time.Hour - time.Nanosecond)
			filter.To = &end
		}

		// Historial extendido es capability de plan.
		// Sin resolver configurado (dev) no se gatea.
		if caps != nil && filter.From != nil {
			cutoff := time.Now().UTC().AddDate(0, 0, -historyWindowDays)
			if filter.From.Before(cutoff) {
				allowed, err := caps.Has(r.Context(), claims.UserID, CapabilityExtendedHistory)
				if err != nil || !allowed {
					http.Error(w, "extended history requires plan upgrade", http.StatusForbidden)
					return
				}
			}
		}

		items, err := svc.ListByMedication(r.Context(), m.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]intakeResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toIntakeResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Anular una toma (restaura inventario)
func voidIntakeHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, medsSvc)
		if !ok {
			return
		}

		intakeID := chi.URLParam(r, "intakeID")

		// Verificar que la toma pertenece al medicamento antes de anularla.
		existing, err := svc.GetByID(r.Context(), intakeID)
		if err != nil || existing.MedicationID != m.ID {
			http.Error(w, "intake not found", http.StatusNotFound)
			return
		}

		l, err := svc.Void(r.Context(), intakeID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toIntakeResponse(l))
	}
}

func ownedMedication(w http.ResponseWriter, r *http.Request, medsSvc *medications.Service) (medications.Medication, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return medications.Medication{}, false
	}

	m, err := medsSvc.GetByID(r.Context(), chi.URLParam(r, "medicationID"))
	if err != nil {
		http.Error(w, "medication not found", http.StatusNotFound)
		return medications.Medication{}, false
	}
	if m.OwnerUserID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return medications.Medication{}, false
	}
	return m, true
}

func toIntakeResponse(l IntakeLog) intakeResponse {
	return intakeResponse{
		ID:           l.ID,
		MedicationID: l.MedicationID,
		DoseID:       l.DoseID,
		Amount:       l.Amount,
		TakenAt:      l.TakenAt,
		Notes:        l.Notes,
		Status:       l.Status,
		CreatedAt:    l.CreatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (medications/schedule/intakes) para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
