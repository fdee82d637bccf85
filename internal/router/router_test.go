package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"med-scheduler/internal/router"
)

func TestHTTP_EndToEnd_Schedule(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	otherID := "other-1"

	// 1) Owner crea medicamento con ventana de 10 días
	medID := createMedication(t, ts.URL, ownerID, map[string]any{
		"name":              "Amoxicilina",
		"strength":          "500mg",
		"route":             "oral",
		"active_from":       "2024-01-01",
		"active_until":      "2024-01-10",
		"tablets_remaining": 20,
	})

	// 2) Dos dosis diarias y un día saltado
	addDose(t, ts.URL, ownerID, medID, "08:00", 1)
	addDose(t, ts.URL, ownerID, medID, "20:00", 1)
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/skips", ownerID, map[string]any{
			"date":   "2024-01-06",
			"reason": "ayuno",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add skip, got %d body=%s", st, string(body))
		}
	}

	// 3) Agenda de un día normal: 1 medicamento, 2 dosis
	{
		st, body := doReq(t, ts.URL, "GET", "/schedule?date=2024-01-05", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 day schedule, got %d body=%s", st, string(body))
		}
		var resp struct {
			TotalMedications int                         `json:"total_medications"`
			TotalDoses       int                         `json:"total_doses"`
			Periods          map[string][]map[string]any `json:"periods"`
		}
		mustUnmarshal(t, body, &resp)
		if resp.TotalMedications != 1 || resp.TotalDoses != 2 {
			t.Fatalf("expected 1 med / 2 doses, got %d/%d", resp.TotalMedications, resp.TotalDoses)
		}
		if len(resp.Periods["morning"]) != 1 || len(resp.Periods["evening"]) != 1 {
			t.Fatalf("unexpected periods: %s", string(body))
		}
		if resp.Periods["morning"][0]["time"] != "08:00" || resp.Periods["morning"][0]["time_12h"] != "8:00 AM" {
			t.Fatalf("unexpected time formatting: %v", resp.Periods["morning"][0])
		}
	}

	// 4) Agenda del día saltado: cero dosis, medicamento listado como saltado
	{
		st, body := doReq(t, ts.URL, "GET", "/schedule?date=2024-01-06", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 skipped day, got %d body=%s", st, string(body))
		}
		var resp struct {
			TotalDoses int              `json:"total_doses"`
			Skipped    []map[string]any `json:"skipped_medications"`
		}
		mustUnmarshal(t, body, &resp)
		if resp.TotalDoses != 0 || len(resp.Skipped) != 1 {
			t.Fatalf("expected fully skipped day, got body=%s", string(body))
		}
		if resp.Skipped[0]["reason"] != "ayuno" {
			t.Fatalf("expected skip reason, got %v", resp.Skipped[0])
		}
	}

	// 5) Rango inválido y rango demasiado grande => 400
	{
		st, _ := doReq(t, ts.URL, "GET", "/schedule/range?start=2024-01-10&end=2024-01-05", ownerID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 inverted range, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/schedule/range?start=2024-01-01&end=2024-01-31", ownerID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for 31-day range, got %d", st)
		}
	}

	// 6) Rango válido de 3 días
	{
		st, body := doReq(t, ts.URL, "GET", "/schedule/range?start=2024-01-05&end=2024-01-07", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 range, got %d body=%s", st, string(body))
		}
		var resp struct {
			TotalDays int `json:"total_days"`
			Schedules []struct {
				Date       string `json:"date"`
				TotalDoses int    `json:"total_doses"`
			} `json:"schedules"`
		}
		mustUnmarshal(t, body, &resp)
		if resp.TotalDays != 3 || len(resp.Schedules) != 3 {
			t.Fatalf("expected 3 days, got %s", string(body))
		}
		if resp.Schedules[1].Date != "2024-01-06" || resp.Schedules[1].TotalDoses != 0 {
			t.Fatalf("middle day should be the skipped one: %s", string(body))
		}
	}

	// 7) Próxima toma: desde el 05 a las 10:00 es hoy 20:00
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/"+medID+"/next-dose?from=2024-01-05T10:00", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 next-dose, got %d body=%s", st, string(body))
		}
		var resp struct {
			Found bool   `json:"found"`
			Date  string `json:"date"`
			Time  string `json:"time"`
		}
		mustUnmarshal(t, body, &resp)
		if !resp.Found || resp.Date != "2024-01-05" || resp.Time != "20:00" {
			t.Fatalf("unexpected next dose: %s", string(body))
		}
	}

	// 8) Próxima toma desde la noche del 05: el 06 está saltado => 07 08:00
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/"+medID+"/next-dose?from=2024-01-05T21:00", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 next-dose, got %d body=%s", st, string(body))
		}
		var resp struct {
			Found bool   `json:"found"`
			Date  string `json:"date"`
			Time  string `json:"time"`
		}
		mustUnmarshal(t, body, &resp)
		if !resp.Found || resp.Date != "2024-01-07" || resp.Time != "08:00" {
			t.Fatalf("unexpected next dose after skip: %s", string(body))
		}
	}

	// 9) Fuera de la ventana activa: found=false
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/"+medID+"/next-dose?from=2024-02-01T10:00", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 next-dose outside window, got %d body=%s", st, string(body))
		}
		var resp struct {
			Found bool `json:"found"`
		}
		mustUnmarshal(t, body, &resp)
		if resp.Found {
			t.Fatalf("expected found=false outside window: %s", string(body))
		}
	}

	// 10) Resumen de días activos: 10 totales, 1 salto, 9 activos
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/"+medID+"/active-days", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 active-days, got %d body=%s", st, string(body))
		}
		var resp struct {
			TotalDays  int `json:"total_days"`
			SkipDays   int `json:"skip_days"`
			ActiveDays int `json:"active_days"`
		}
		mustUnmarshal(t, body, &resp)
		if resp.TotalDays != 10 || resp.SkipDays != 1 || resp.ActiveDays != 9 {
			t.Fatalf("expected 10/1/9, got %s", string(body))
		}
	}

	// 11) Otro usuario no ve el medicamento
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications/"+medID+"/next-dose?from=2024-01-05T10:00", otherID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for other user, got %d", st)
		}
	}

	// 12) Sin auth => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/schedule?date=2024-01-05", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without auth, got %d", st)
		}
	}
}

func TestHTTP_Intakes_LowerInventory(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"

	// inventario justo: 3 tablets, consumo diario 2
	medID := createMedication(t, ts.URL, ownerID, map[string]any{
		"name":              "Ibuprofeno",
		"active_from":       "2024-01-01",
		"tablets_remaining": 3,
	})
	addDose(t, ts.URL, ownerID, medID, "08:00", 1)
	addDose(t, ts.URL, ownerID, medID, "20:00", 1)

	// hoy no está low (3 > 2)
	if low := scheduleLowFlag(t, ts.URL, ownerID); low {
		t.Fatal("expected low_inventory=false with 3 tablets")
	}

	// registrar una toma de 1.5: quedan 1.5 <= 2 => low
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/intakes", ownerID, map[string]any{
			"amount": 1.5,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record intake, got %d body=%s", st, string(body))
		}
	}
	if low := scheduleLowFlag(t, ts.URL, ownerID); !low {
		t.Fatal("expected low_inventory=true after intake")
	}

	// listar tomas
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/"+medID+"/intakes", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list intakes, got %d body=%s", st, string(body))
		}
		var items []struct {
			ID     string  `json:"id"`
			Amount float64 `json:"amount"`
			Status string  `json:"status"`
		}
		mustUnmarshal(t, body, &items)
		if len(items) != 1 || items[0].Status != "recorded" {
			t.Fatalf("unexpected intakes: %s", string(body))
		}

		// anular restaura el inventario
		st, body = doReq(t, ts.URL, "POST", "/medications/"+medID+"/intakes/"+items[0].ID+"/void", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 void, got %d body=%s", st, string(body))
		}
	}
	if low := scheduleLowFlag(t, ts.URL, ownerID); low {
		t.Fatal("expected low_inventory=false after void")
	}
}

func TestHTTP_Medication_PatchActiveUntilNull(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	medID := createMedication(t, ts.URL, ownerID, map[string]any{
		"name":         "Amoxicilina",
		"active_from":  "2024-01-01",
		"active_until": "2024-01-10",
	})

	// active_days requiere fecha de fin: funciona
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications/"+medID+"/active-days", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 active-days, got %d", st)
		}
	}

	// null explícito limpia la fecha de fin
	{
		st, body := doReq(t, ts.URL, "PATCH", "/medications/"+medID, ownerID, map[string]any{
			"active_until": nil,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
		var resp struct {
			ActiveUntil *string `json:"active_until"`
		}
		mustUnmarshal(t, body, &resp)
		if resp.ActiveUntil != nil {
			t.Fatalf("expected null active_until, got %v", *resp.ActiveUntil)
		}
	}

	// ahora active-days es 400: ventana sin fin
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications/"+medID+"/active-days", ownerID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 open-ended window, got %d", st)
		}
	}
}

func TestHTTP_BadDateInputs(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"

	cases := []struct {
		name string
		path string
	}{
		{"missing date", "/schedule"},
		{"bad format", "/schedule?date=05-01-2024"},
		{"unpadded", "/schedule?date=2024-1-05"},
		{"not a date", "/schedule?date=2023-02-29"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, _ := doReq(t, ts.URL, "GET", tc.path, ownerID, nil)
			if st != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", st)
			}
		})
	}

	// from sin componente de hora => 400
	medID := createMedication(t, ts.URL, ownerID, map[string]any{
		"name":        "Amoxicilina",
		"active_from": "2024-01-01",
	})
	st, _ := doReq(t, ts.URL, "GET", "/medications/"+medID+"/next-dose?from=2024-01-05", ownerID, nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for from without time, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

func scheduleLowFlag(t *testing.T, baseURL, userID string) bool {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/schedule?date=2024-01-05", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 schedule, got %d body=%s", st, string(body))
	}
	var resp struct {
		Periods map[string][]struct {
			LowInventory bool `json:"low_inventory"`
		} `json:"periods"`
	}
	mustUnmarshal(t, body, &resp)
	morning := resp.Periods["morning"]
	if len(morning) == 0 {
		t.Fatalf("expected morning entry, body=%s", string(body))
	}
	return morning[0].LowInventory
}

func createMedication(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func addDose(t *testing.T, baseURL, userID, medID, timeOfDay string, amount float64) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications/"+medID+"/doses", userID, map[string]any{
		"time":   timeOfDay,
		"amount": amount,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 add dose, got %d body=%s", st, string(body))
	}
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("unmarshal %s: %v", string(body), err)
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, b
}
