package api

import (
	"net/http"

	"salonsked/internal/metrics"
	"salonsked/internal/model"
	"salonsked/internal/schedule"
)

// CreateEntryRequest is the body of POST /api/entries. Appointments carry a
// service_id; anything else is a block.
type CreateEntryRequest struct {
	TechnicianID    string     `json:"technician_id"`
	ServiceID       string     `json:"service_id,omitempty"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	Date            string     `json:"date"` // Format: YYYY-MM-DD
	Time            string     `json:"time"` // Format: HH:MM
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Kind            model.Kind `json:"block_type,omitempty"`
	Title           string     `json:"title,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// UpdateEntryRequest is the body of PATCH /api/entries/{id}. A service_id
// turns the entry into an appointment of that service.
type UpdateEntryRequest struct {
	ServiceID       *string       `json:"service_id,omitempty"`
	Title           *string       `json:"title,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
	Kind            *model.Kind   `json:"block_type,omitempty"`
	Status          *model.Status `json:"status,omitempty"`
}

// handleCreateEntry books an appointment or a block.
// POST /api/entries
func (s *HTTPServer) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("entries_create")

	var req CreateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.service.Book(r.Context(), ownerFrom(r), schedule.BookingRequest{
		TechnicianID:    req.TechnicianID,
		ServiceID:       req.ServiceID,
		CustomerEmail:   req.CustomerEmail,
		Day:             day,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Title:           req.Title,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleUpdateEntry edits an entry.
// PATCH /api/entries/{id}
func (s *HTTPServer) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("entries_update")

	var req UpdateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entry, err := s.service.Update(r.Context(), ownerFrom(r), r.PathValue("id"), schedule.EditRequest{
		ServiceID:       req.ServiceID,
		Title:           req.Title,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Status:          req.Status,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleDeleteEntry removes an entry.
// DELETE /api/entries/{id}
func (s *HTTPServer) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("entries_delete")

	if err := s.service.Delete(r.Context(), ownerFrom(r), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
