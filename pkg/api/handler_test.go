package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/sijill/pkg/notify"
	"github.com/hazyhaar/sijill/pkg/records"
	"github.com/hazyhaar/sijill/pkg/source"
)

type stubSource struct {
	tab *source.Table
}

func (s *stubSource) Fingerprint() (string, error) { return "fp", nil }
func (s *stubSource) Load(context.Context) (*source.Table, error) {
	return s.tab, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	var medical *records.Category
	for _, c := range records.DefaultCategories() {
		if c.ID == "medical" {
			medical = c
		}
	}
	tab := &source.Table{
		Columns: []string{"Name", "Patient Name", "Treatment Date", "ICD10CODE", "EMER_IND"},
		Rows: []map[string]any{
			{"Name": "Dr. Ahmed Ali", "Patient Name": "محمد عبدالله", "Treatment Date": "04/09/2025", "ICD10CODE": "E11.9", "EMER_IND": "N"},
			{"Name": "Prof. Lina Saad", "Patient Name": "Huda", "Treatment Date": "01/09/2025", "ICD10CODE": "J45.0", "EMER_IND": "Y"},
		},
	}
	reg := records.NewRegistry(nil)
	reg.Add(records.NewCache(&stubSource{tab: tab}, medical))

	store, err := notify.Open(filepath.Join(t.TempDir(), "notify.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	now := func() time.Time { return time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC) }
	return NewRouter(reg, store, now)
}

func getJSON(t *testing.T, h http.Handler, path string, want int, out any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != want {
		t.Fatalf("GET %s = %d, want %d: %s", path, rec.Code, want, rec.Body)
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("GET %s: bad JSON: %v", path, err)
		}
	}
}

func TestSearchRoute(t *testing.T) {
	h := testRouter(t)

	var resp searchResponse
	getJSON(t, h, "/v1/medical/records?doctor=ahmed", http.StatusOK, &resp)
	if resp.Total != 1 || len(resp.Records) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	rec := resp.Records[0]
	if rec.Fields["doctor_name"] != "Dr. Ahmed Ali" {
		t.Errorf("fields = %v", rec.Fields)
	}
	if rec.Tier != "prefix" {
		t.Errorf("tier = %q, want prefix", rec.Tier)
	}
	if rec.Fields["treatment_date"] != "2025-09-04" {
		t.Errorf("date = %q", rec.Fields["treatment_date"])
	}
}

func TestSearchRouteAlertsAndRecent(t *testing.T) {
	h := testRouter(t)

	var resp searchResponse
	getJSON(t, h, "/v1/medical/records", http.StatusOK, &resp)
	if resp.AlertsCount != 1 {
		t.Errorf("AlertsCount = %d, want 1", resp.AlertsCount)
	}

	// Injected clock is 2025-09-05; a 2-day window keeps only the 09-04 visit.
	getJSON(t, h, "/v1/medical/records?recent_days=2", http.StatusOK, &resp)
	if resp.Total != 1 {
		t.Errorf("recent Total = %d, want 1", resp.Total)
	}
}

func TestSearchRouteDateHandling(t *testing.T) {
	h := testRouter(t)

	var resp searchResponse
	getJSON(t, h, "/v1/medical/records?date=2025-09-04", http.StatusOK, &resp)
	if resp.Total != 1 {
		t.Errorf("Total = %d, want 1", resp.Total)
	}

	// A malformed date is dropped, not an error.
	getJSON(t, h, "/v1/medical/records?date=garbage", http.StatusOK, &resp)
	if resp.Total != 2 {
		t.Errorf("Total = %d, want 2 with filter dropped", resp.Total)
	}

	// Explicit date and recent window together is a client error.
	getJSON(t, h, "/v1/medical/records?date=2025-09-04&recent_days=7", http.StatusBadRequest, nil)
}

func TestSearchRouteUnknownCategory(t *testing.T) {
	getJSON(t, testRouter(t), "/v1/nope/records", http.StatusNotFound, nil)
}

func TestCategoriesRoute(t *testing.T) {
	var resp categoriesResponse
	getJSON(t, testRouter(t), "/v1/categories", http.StatusOK, &resp)
	if len(resp.Categories) != 1 || resp.Categories[0].ID != "medical" {
		t.Fatalf("resp = %+v", resp)
	}
	params := strings.Join(resp.Categories[0].FilterParams, ",")
	if params != "doctor,patient,icd" {
		t.Errorf("filter params = %s", params)
	}
}

func TestNotificationRoutes(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"High discount","kind":"drug","severity":"warning"}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/notifications", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST = %d: %s", rec.Code, rec.Body)
	}
	var added notify.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &added); err != nil {
		t.Fatal(err)
	}

	var listed notificationsResponse
	getJSON(t, h, "/v1/notifications?kind=drug", http.StatusOK, &listed)
	if len(listed.Notifications) != 1 || listed.Notifications[0].ID != added.ID {
		t.Fatalf("listed = %+v", listed)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/notifications/"+added.ID+"/read", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read = %d: %s", rec.Code, rec.Body)
	}
	getJSON(t, h, "/v1/notifications?unread=true", http.StatusOK, &listed)
	if len(listed.Notifications) != 0 {
		t.Errorf("unread after mark = %+v", listed.Notifications)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/notifications/"+added.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d: %s", rec.Code, rec.Body)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/notifications/"+added.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete = %d", rec.Code)
	}
}

func TestNotificationValidation(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/notifications", strings.NewReader(`{"body":"no title"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST without title = %d", rec.Code)
	}
}

func TestHealthRoute(t *testing.T) {
	var resp healthResponse
	getJSON(t, testRouter(t), "/v1/health", http.StatusOK, &resp)
	if resp.Status != "ok" || resp.Categories != 1 {
		t.Errorf("health = %+v", resp)
	}
}
