package medications

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"med-scheduler/internal/middleware"
	"med-scheduler/internal/platform/dates"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))

		mr.Route("/{medicationID}", func(ir chi.Router) {
			ir.Get("/", getMedicationHandler(svc))
			ir.Patch("/", updateMedicationHandler(svc))

			ir.Post("/doses", addDoseHandler(svc))
			ir.Get("/doses", listDosesHandler(svc))
			ir.Delete("/doses/{doseID}", removeDoseHandler(svc))

			ir.Post("/skips", addSkipHandler(svc))
			ir.Get("/skips", listSkipsHandler(svc))
			ir.Delete("/skips/{skipID}", removeSkipHandler(svc))
		})
	})
}

type createMedicationRequest struct {
	Name         string `json:"name"`
	Strength     string `json:"strength"`
	Route        string `json:"route"`
	Instructions string `json:"instructions"`

	ActiveFrom       string  `json:"active_from"`            // YYYY-MM-DD
	ActiveUntil      string  `json:"active_until,omitempty"` // YYYY-MM-DD opcional
	TabletsRemaining float64 `json:"tablets_remaining"`
}

type medicationResponse struct {
	ID           string `json:"id"`
	OwnerUserID  string `json:"owner_user_id"`
	Name         string `json:"name"`
	Strength     string `json:"strength,omitempty"`
	Route        string `json:"route,omitempty"`
	Instructions string `json:"instructions,omitempty"`

	ActiveFrom       string  `json:"active_from"`
	ActiveUntil      *string `json:"active_until,omitempty"`
	TabletsRemaining float64 `json:"tablets_remaining"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updateMedicationRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name         *string `json:"name"`
	Strength     *string `json:"strength"`
	Route        *string `json:"route"`
	Instructions *string `json:"instructions"`

	ActiveFrom       *string  `json:"active_from"`
	TabletsRemaining *float64 `json:"tablets_remaining"`
	// active_until se maneja aparte: null significa "volver a sin fecha de fin".
}

type doseRequest struct {
	Time          string  `json:"time"` // H:MM o HH:MM
	Amount        float64 `json:"amount"`
	RouteOverride string  `json:"route_override"`
	Instructions  string  `json:"instructions"`
}

type doseResponse struct {
	ID           string `json:"id"`
	MedicationID string `json:"medication_id"`

	Time    string  `json:"time"`
	Time12h string  `json:"time_12h"`
	Amount  float64 `json:"amount"`

	RouteOverride string `json:"route_override,omitempty"`
	Instructions  string `json:"instructions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type skipRequest struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Reason string `json:"reason"`
}

type skipResponse struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medication_id"`
	Date         string    `json:"date"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// @Summary Crear medicamento
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:             req.Name,
			Strength:         req.Strength,
			Route:            req.Route,
			Instructions:     req.Instructions,
			ActiveFrom:       req.ActiveFrom,
			ActiveUntil:      req.ActiveUntil,
			TabletsRemaining: req.TabletsRemaining,
		})
		if err != nil {
			switch err {
			case dates.ErrInvalidDate:
				http.Error(w, "active_from/active_until must be YYYY-MM-DD", http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// @Summary Listar medicamentos del usuario
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Perfil de un medicamento
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// @Summary Actualizar medicamento (PATCH; active_until: null limpia la fecha de fin)
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medicationID := chi.URLParam(r, "medicationID")

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		// Para soportar active_until: null hay que detectar presencia del campo.
		// Decodificamos a map primero y re-unmarshal al struct para reutilizar tags.
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateMedicationRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		until := PatchString{}
		if v, exists := raw["active_until"]; exists {
			until.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "active_until must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				until.Value = &s
			}
		}

		updated, err := svc.Update(r.Context(), medicationID, claims.UserID, UpdateInput{
			Name:             req.Name,
			Strength:         req.Strength,
			Route:            req.Route,
			Instructions:     req.Instructions,
			ActiveFrom:       req.ActiveFrom,
			ActiveUntil:      until,
			TabletsRemaining: req.TabletsRemaining,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput, dates.ErrInvalidDate:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toMedicationResponse(updated))
	}
}

// @Summary Agregar dosis diaria a un medicamento
func addDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, svc)
		if !ok {
			return
		}

		var req doseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.AddDose(r.Context(), m.ID, DoseInput{
			Time:          req.Time,
			Amount:        req.Amount,
			RouteOverride: req.RouteOverride,
			Instructions:  req.Instructions,
		})
		if err != nil {
			switch err {
			case dates.ErrInvalidTime:
				http.Error(w, "time must be H:MM or HH:MM", http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toDoseResponse(d))
	}
}

// @Summary Listar dosis de un medicamento
func listDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, svc)
		if !ok {
			return
		}

		items, err := svc.ListDoses(r.Context(), m.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doseResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDoseResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Eliminar una dosis
func removeDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, svc)
		if !ok {
			return
		}

		if err := svc.RemoveDose(r.Context(), m.ID, chi.URLParam(r, "doseID")); err != nil {
			http.Error(w, "dose not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary Suprimir un día completo del medicamento
func addSkipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, svc)
		if !ok {
			return
		}

		var req skipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sk, err := svc.AddSkip(r.Context(), m.ID, SkipInput{
			Date:   req.Date,
			Reason: req.Reason,
		})
		if err != nil {
			switch err {
			case dates.ErrInvalidDate:
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toSkipResponse(sk))
	}
}

// @Summary Listar fechas suprimidas de un medicamento
func listSkipsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, svc)
		if !ok {
			return
		}

		items, err := svc.ListSkips(r.Context(), m.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]skipResponse, 0, len(items))
		for _, sk := range items {
			out = append(out, toSkipResponse(sk))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Quitar una fecha suprimida
func removeSkipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := ownedMedication(w, r, svc)
		if !ok {
			return
		}

		if err := svc.RemoveSkip(r.Context(), m.ID, chi.URLParam(r, "skipID")); err != nil {
			http.Error(w, "skip not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ownedMedication resuelve auth + existencia + ownership en un solo lugar.
// Owner-only: este servicio no tiene delegados.
func ownedMedication(w http.ResponseWriter, r *http.Request, svc *Service) (Medication, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Medication{}, false
	}

	m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medicationID"))
	if err != nil {
		http.Error(w, "medication not found", http.StatusNotFound)
		return Medication{}, false
	}
	if m.OwnerUserID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Medication{}, false
	}
	return m, true
}

func toMedicationResponse(m Medication) medicationResponse {
	var until *string
	if m.ActiveUntil != nil {
		s := dates.FormatDate(*m.ActiveUntil)
		until = &s
	}
	return medicationResponse{
		ID:               m.ID,
		OwnerUserID:      m.OwnerUserID,
		Name:             m.Name,
		Strength:         m.Strength,
		Route:            m.Route,
		Instructions:     m.Instructions,
		ActiveFrom:       dates.FormatDate(m.ActiveFrom),
		ActiveUntil:      until,
		TabletsRemaining: m.TabletsRemaining,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toDoseResponse(d Dose) doseResponse {
	return doseResponse{
		ID:            d.ID,
		MedicationID:  d.MedicationID,
		Time:          dates.FormatTimeOfDay(d.TimeOfDay, dates.Clock24h),
		Time12h:       dates.FormatTimeOfDay(d.TimeOfDay, dates.Clock12h),
		Amount:        d.Amount,
		RouteOverride: d.RouteOverride,
		Instructions:  d.Instructions,
		CreatedAt:     d.CreatedAt,
	}
}

func toSkipResponse(sk SkipDate) skipResponse {
	return skipResponse{
		ID:           sk.ID,
		MedicationID: sk.MedicationID,
		Date:         dates.FormatDate(sk.Date),
		Reason:       sk.Reason,
		CreatedAt:    sk.CreatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (medications/schedule/intakes) para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
