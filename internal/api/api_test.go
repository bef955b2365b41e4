package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salonsked/internal/events"
	"salonsked/internal/model"
	"salonsked/internal/prefs"
	"salonsked/internal/schedule"
	"salonsked/internal/store"
)

const testOwner = "owner@salon.test"

type ErrorResponse struct {
	Error string `json:"error"`
}

type fixture struct {
	handler http.Handler
	techA   model.Technician
	techB   model.Technician
	service model.Service
}

func setupTestServer(t *testing.T, limit RateLimit) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "salon.db"), store.TableNames{}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	f := &fixture{}
	f.techA, err = db.CreateTechnician(ctx, testOwner, model.Technician{Name: "Ava"})
	require.NoError(t, err)
	f.techB, err = db.CreateTechnician(ctx, testOwner, model.Technician{Name: "Bea"})
	require.NoError(t, err)
	f.service, err = db.CreateService(ctx, testOwner, model.Service{Name: "Haircut", DurationMinutes: 30})
	require.NoError(t, err)

	svc := schedule.NewService(db, db, prefs.NewMemoryStore(), events.NewEventBus(logger), schedule.DefaultSettings(), logger)
	f.handler = NewHTTPServer(":0", svc, limit, logger).Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(OwnerHeader, testOwner)

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestBookingFlow(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	// A is busy 10:00-10:30, B is free.
	w := f.do(t, http.MethodPost, "/api/entries", CreateEntryRequest{
		TechnicianID: f.techA.ID, ServiceID: f.service.ID, Date: "2026-03-02", Time: "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode[model.DayEntry](t, w)
	assert.Equal(t, "10:30", booked.EndTime)
	assert.Equal(t, "Haircut", booked.Title)

	w = f.do(t, http.MethodGet, "/api/schedule?date=2026-03-02&interval=15&tech="+f.techA.ID+","+f.techB.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[schedule.DayView](t, w)
	assert.Contains(t, view.Slots, "10:00")
	assert.Len(t, view.Slots, 60)
	require.Len(t, view.Entries, 1)

	w = f.do(t, http.MethodGet, "/api/schedule?date=2026-03-02&interval=15&tech="+f.techA.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[schedule.DayView](t, w)
	assert.NotContains(t, view.Slots, "10:00")
	assert.NotContains(t, view.Slots, "10:30")
	assert.Contains(t, view.Slots, "10:45")

	w = f.do(t, http.MethodPost, "/api/entries", CreateEntryRequest{
		TechnicianID: f.techB.ID, ServiceID: f.service.ID, Date: "2026-03-02", Time: "10:00",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/entries", CreateEntryRequest{
		TechnicianID: f.techA.ID, ServiceID: f.service.ID, Date: "2026-03-02", Time: "10:15",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEditAndDelete(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	w := f.do(t, http.MethodPost, "/api/entries", CreateEntryRequest{
		TechnicianID: f.techA.ID, Date: "2026-03-02", Time: "13:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	block := decode[model.DayEntry](t, w)
	assert.Equal(t, schedule.DefaultBlockTitle, block.Title)
	assert.Equal(t, model.StatusBlocked, block.Status)
	assert.Equal(t, "13:30", block.EndTime)

	w = f.do(t, http.MethodPatch, "/api/entries/"+block.ID, map[string]any{"title": "Lunch", "block_type": "lunch", "duration_minutes": 60})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edited := decode[model.DayEntry](t, w)
	assert.Equal(t, "Lunch", edited.Title)
	assert.Equal(t, model.KindLunch, edited.Kind)
	assert.Equal(t, "14:00", edited.EndTime)

	w = f.do(t, http.MethodDelete, "/api/entries/"+block.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/schedule?date=2026-03-02&tech="+f.techA.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[schedule.DayView](t, w).Entries)

	w = f.do(t, http.MethodPatch, "/api/entries/"+block.ID, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditBlockIntoAppointment(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	w := f.do(t, http.MethodPost, "/api/entries", CreateEntryRequest{
		TechnicianID: f.techA.ID, Date: "2026-03-02", Time: "13:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	block := decode[model.DayEntry](t, w)

	w = f.do(t, http.MethodPatch, "/api/entries/"+block.ID, map[string]any{"block_type": "appointment"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid service_id: is required for appointments", decode[ErrorResponse](t, w).Error)

	w = f.do(t, http.MethodPatch, "/api/entries/"+block.ID, map[string]any{"block_type": "appointment", "service_id": f.service.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edited := decode[model.DayEntry](t, w)
	assert.Equal(t, model.KindAppointment, edited.Kind)
	assert.Equal(t, model.StatusScheduled, edited.Status)
	assert.Equal(t, f.service.ID, edited.ServiceID)
	assert.Equal(t, "Haircut", edited.Title)
	assert.Equal(t, "13:30", edited.EndTime)

	w = f.do(t, http.MethodPatch, "/api/entries/"+block.ID, map[string]any{"block_type": "break"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	back := decode[model.DayEntry](t, w)
	assert.Equal(t, model.StatusBlocked, back.Status)
	assert.Empty(t, back.ServiceID)
}

func TestValidation(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantError  string
	}{
		{"missing date", http.MethodGet, "/api/schedule", nil, http.StatusBadRequest, "date is required"},
		{"bad date", http.MethodGet, "/api/schedule?date=02-03-2026", nil, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD"},
		{"bad interval", http.MethodGet, "/api/schedule?date=2026-03-02&interval=20", nil, http.StatusBadRequest, "invalid interval: must be one of [5 15 30]"},
		{"non-numeric interval", http.MethodGet, "/api/schedule?date=2026-03-02&interval=abc", nil, http.StatusBadRequest, "invalid interval; expected minutes"},
		{"invalid JSON", http.MethodPost, "/api/entries", "not json", http.StatusBadRequest, "invalid JSON body"},
		{"unknown field", http.MethodPost, "/api/entries", map[string]any{"date": "2026-03-02", "room": 1}, http.StatusBadRequest, "invalid JSON body"},
		{"bad time", http.MethodPost, "/api/entries", map[string]any{"technician_id": "t", "date": "2026-03-02", "time": "25:00"}, http.StatusBadRequest, `invalid time: "25:00" is not a HH:MM time`},
		{"outside the day", http.MethodPost, "/api/entries", map[string]any{"technician_id": "t", "date": "2026-03-02", "time": "07:45"}, http.StatusBadRequest, "invalid time: 07:45 is outside 08:00-23:00"},
		{"empty patch", http.MethodPatch, "/api/entries/abc", map[string]any{}, http.StatusBadRequest, "invalid body: nothing to update"},
		{"durations without tech", http.MethodGet, "/api/schedule/durations?date=2026-03-02&time=09:00", nil, http.StatusBadRequest, "invalid technician_id: is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decode[ErrorResponse](t, w).Error)
		})
	}
}

func TestMissingOwner(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	req := httptest.NewRequest(http.MethodGet, "/api/technicians", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	f := setupTestServer(t, RateLimit{PerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/services", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/services", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodGet, "/api/services", nil).Code)
}

func TestCatalogAndPreferences(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	w := f.do(t, http.MethodGet, "/api/technicians", nil)
	require.Equal(t, http.StatusOK, w.Code)
	techs := decode[map[string][]model.Technician](t, w)["technicians"]
	require.Len(t, techs, 2)
	assert.Equal(t, "Ava", techs[0].Name)

	w = f.do(t, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.Service](t, w)["services"], 1)

	w = f.do(t, http.MethodGet, "/api/preferences/technicians", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[SelectionRequest](t, w).TechnicianIDs)

	w = f.do(t, http.MethodPut, "/api/preferences/technicians", SelectionRequest{TechnicianIDs: []string{f.techB.ID}})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPut, "/api/preferences/technicians", SelectionRequest{TechnicianIDs: []string{"nobody"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The saved selection drives the day view when no tech is given.
	w = f.do(t, http.MethodGet, "/api/schedule?date=2026-03-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[schedule.DayView](t, w)
	require.Len(t, view.Columns, 1)
	assert.Equal(t, "Bea", view.Columns[0].Technician.Name)
	assert.Equal(t, 15, view.Interval)
}

func TestDurationsEndpoint(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	w := f.do(t, http.MethodPost, "/api/entries", CreateEntryRequest{
		TechnicianID: f.techA.ID, ServiceID: f.service.ID, Date: "2026-03-02", Time: "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/schedule/durations?date=2026-03-02&time=09:00&interval=30&tech="+f.techA.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{30}, decode[DurationsResponse](t, w).Durations)
}

func TestExportEndpoint(t *testing.T) {
	f := setupTestServer(t, RateLimit{})

	w := f.do(t, http.MethodPost, "/api/entries", CreateEntryRequest{
		TechnicianID: f.techA.ID, ServiceID: f.service.ID, Date: "2026-03-02", Time: "09:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/schedule/export?date=2026-03-02&interval=30&tech="+f.techA.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule_2026-03-02.xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	val, err := book.GetCellValue("Grid", "B4")
	require.NoError(t, err)
	assert.Equal(t, "Haircut", val)
}
