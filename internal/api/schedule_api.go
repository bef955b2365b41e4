package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salonsked/internal/export"
	"salonsked/internal/metrics"
	"salonsked/internal/schedule"
)

// parseDay reads the required date query parameter.
func parseDay(r *http.Request) (time.Time, error) {
	return parseDate(r.URL.Query().Get("date"))
}

// parseInterval reads the optional interval query parameter; 0 means default.
func parseInterval(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("interval")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid interval; expected minutes")
	}
	return n, nil
}

// parseTechnicians accepts repeated tech parameters and comma-separated lists.
func parseTechnicians(r *http.Request) []string {
	var ids []string
	for _, raw := range r.URL.Query()["tech"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func parseDayQuery(r *http.Request) (schedule.DayQuery, error) {
	day, err := parseDay(r)
	if err != nil {
		return schedule.DayQuery{}, err
	}
	interval, err := parseInterval(r)
	if err != nil {
		return schedule.DayQuery{}, err
	}
	return schedule.DayQuery{Day: day, Interval: interval, TechnicianIDs: parseTechnicians(r)}, nil
}

// handleDayView returns offered slots and the grid for a day.
// GET /api/schedule?date=YYYY-MM-DD&interval=15&tech=ID
func (s *HTTPServer) handleDayView(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("schedule")

	q, err := parseDayQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.service.DayView(r.Context(), ownerFrom(r), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DurationsResponse lists booking lengths available at one label.
type DurationsResponse struct {
	Time         string `json:"time"`
	TechnicianID string `json:"technician_id"`
	Durations    []int  `json:"durations"`
}

// handleDurations returns the booking lengths that fit at a label.
// GET /api/schedule/durations?date=YYYY-MM-DD&time=HH:MM&tech=ID&interval=15
func (s *HTTPServer) handleDurations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("durations")

	day, err := parseDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	interval, err := parseInterval(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	label := r.URL.Query().Get("time")
	tech := r.URL.Query().Get("tech")

	durations, err := s.service.Durations(r.Context(), ownerFrom(r), day, label, tech, interval)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DurationsResponse{Time: label, TechnicianID: tech, Durations: durations})
}

// handleExport returns the day view as an xlsx workbook.
// GET /api/schedule/export?date=YYYY-MM-DD&interval=30&tech=ID
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")

	q, err := parseDayQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.service.DayView(r.Context(), ownerFrom(r), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDay(&buf, view); err != nil {
		s.writeServiceError(w, r, fmt.Errorf("write workbook: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(view.Date)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
