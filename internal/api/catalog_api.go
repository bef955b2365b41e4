package api

import (
	"fmt"
	"net/http"
	"time"

	"salonsked/internal/metrics"
	"salonsked/internal/model"
)

// SelectionRequest is the body of PUT /api/preferences/technicians.
type SelectionRequest struct {
	TechnicianIDs []string `json:"technician_ids"`
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format; expected YYYY-MM-DD")
	}
	return day, nil
}

// GET /api/technicians
func (s *HTTPServer) handleTechnicians(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("technicians")

	techs, err := s.service.Technicians(r.Context(), ownerFrom(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if techs == nil {
		techs = []model.Technician{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"technicians": techs})
}

// GET /api/services
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services")

	services, err := s.service.Services(r.Context(), ownerFrom(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if services == nil {
		services = []model.Service{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// GET /api/preferences/technicians
func (s *HTTPServer) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("preferences_get")

	ids, err := s.service.SelectedTechnicians(r.Context(), ownerFrom(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectionRequest{TechnicianIDs: ids})
}

// PUT /api/preferences/technicians
func (s *HTTPServer) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("preferences_put")

	var req SelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.service.SaveSelectedTechnicians(r.Context(), ownerFrom(r), req.TechnicianIDs); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.TechnicianIDs == nil {
		req.TechnicianIDs = []string{}
	}
	writeJSON(w, http.StatusOK, req)
}
