// Package reconcile merges persisted schedule records into the entries held
// for a day view. Functions never mutate their input slices.
package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"salonsked/internal/clock"
	"salonsked/internal/metrics"
	"salonsked/internal/model"
)

// ErrMalformedRecord is returned for a record without a start or with a
// non-positive duration.
var ErrMalformedRecord = errors.New("malformed schedule record")

// Default titles shown when a record carries none.
const (
	DefaultAppointmentTitle = "Appointment"
	DefaultBlockTitle       = "Blocked"
)

// FromRecord derives the display form of record. Clock labels are rendered in loc.
func FromRecord(record model.ScheduleEntry, loc *time.Location) (model.DayEntry, error) {
	if record.StartAt == nil {
		return model.DayEntry{}, fmt.Errorf("%w: entry %s has no start", ErrMalformedRecord, record.ID)
	}
	if record.DurationMinutes <= 0 {
		return model.DayEntry{}, fmt.Errorf("%w: entry %s has duration %d", ErrMalformedRecord, record.ID, record.DurationMinutes)
	}
	if loc == nil {
		loc = time.UTC
	}

	startAt := record.StartAt.In(loc)
	startTime := startAt.Format("15:04")
	endTime, err := clock.AddMinutes(startTime, record.DurationMinutes)
	if err != nil {
		return model.DayEntry{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	kind := record.Kind
	if kind == "" {
		kind = model.KindCustom
		if record.ServiceID != "" {
			kind = model.KindAppointment
		}
	}

	title := record.Title
	if title == "" {
		title = DefaultBlockTitle
		if record.ServiceID != "" {
			title = DefaultAppointmentTitle
		}
	}

	status := record.Status
	if kind.IsBlock() {
		status = model.StatusBlocked
	} else if status == "" {
		status = model.StatusScheduled
	}

	return model.DayEntry{
		ID:              record.ID,
		TechnicianID:    record.TechnicianID,
		ServiceID:       record.ServiceID,
		Title:           title,
		Kind:            kind,
		Status:          status,
		Notes:           record.Notes,
		DurationMinutes: record.DurationMinutes,
		StartAt:         startAt,
		StartTime:       startTime,
		EndTime:         endTime,
	}, nil
}

// FromRecords converts a batch of records, skipping malformed ones. The
// result is sorted by start.
func FromRecords(records []model.ScheduleEntry, loc *time.Location, logger zerolog.Logger) []model.DayEntry {
	out := make([]model.DayEntry, 0, len(records))
	for _, r := range records {
		e, err := FromRecord(r, loc)
		if err != nil {
			metrics.IncMalformedEntry("reconcile")
			logger.Warn().Err(err).Str("entry_id", r.ID).Msg("skipping malformed schedule record")
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, compareStart)
	return out
}

// ApplyUpsert returns a new slice where saved replaces the entry with the
// same id, or is appended when there is none.
func ApplyUpsert(entries []model.DayEntry, saved model.DayEntry) []model.DayEntry {
	out := make([]model.DayEntry, 0, len(entries)+1)
	replaced := false
	for _, e := range entries {
		if e.ID == saved.ID {
			out = append(out, saved)
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, saved)
	}
	slices.SortStableFunc(out, compareStart)
	return out
}

// ApplyDelete returns a new slice without the entry id. Deleting an unknown
// id returns an unchanged copy.
func ApplyDelete(entries []model.DayEntry, id string) []model.DayEntry {
	out := make([]model.DayEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// compareStart orders by calendar date, then by the zero-padded start label.
func compareStart(a, b model.DayEntry) int {
	if c := strings.Compare(a.Date(), b.Date()); c != 0 {
		return c
	}
	return strings.Compare(a.StartTime, b.StartTime)
}
