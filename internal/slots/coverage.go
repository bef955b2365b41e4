package slots

import (
	"github.com/rs/zerolog"

	"salonsked/internal/clock"
	"salonsked/internal/metrics"
	"salonsked/internal/model"
)

// Coverage decides whether a technician's entries cover a time label.
type Coverage struct {
	logger zerolog.Logger
}

// NewCoverage creates a coverage engine. Skipped entries are reported to logger.
func NewCoverage(logger zerolog.Logger) *Coverage {
	return &Coverage{logger: logger.With().Str("component", "coverage").Logger()}
}

// FindCoveringEntry returns the first entry of technicianID whose span
// [start, end] contains label. Both boundaries are inclusive, so a label equal
// to an entry's end is still covered.
func (c *Coverage) FindCoveringEntry(technicianID, label string, entries []model.DayEntry) (*model.DayEntry, bool) {
	at, err := clock.Parse(label)
	if err != nil {
		return nil, false
	}

	for i := range entries {
		e := &entries[i]
		if e.TechnicianID != technicianID {
			continue
		}
		start, end, ok := c.span(e)
		if !ok {
			continue
		}
		if at >= start && at <= end {
			return e, true
		}
	}
	return nil, false
}

// IsAvailable reports whether no entry of technicianID covers label.
func (c *Coverage) IsAvailable(technicianID, label string, entries []model.DayEntry) bool {
	_, covered := c.FindCoveringEntry(technicianID, label, entries)
	return !covered
}

// nextStart returns the earliest start after from among technicianID's
// entries, or the end of the day when there is none.
func (c *Coverage) nextStart(technicianID string, from int, entries []model.DayEntry) int {
	next := clock.MinutesPerDay
	for i := range entries {
		e := &entries[i]
		if e.TechnicianID != technicianID {
			continue
		}
		start, _, ok := c.span(e)
		if ok && start > from && start < next {
			next = start
		}
	}
	return next
}

// span returns the entry's start and end in minutes. An end that wrapped past
// midnight is treated as the end of the day.
func (c *Coverage) span(e *model.DayEntry) (start, end int, ok bool) {
	start, err := clock.Parse(e.StartTime)
	if err != nil {
		c.skip(e, err)
		return 0, 0, false
	}
	end, err = clock.Parse(e.EndTime)
	if err != nil {
		c.skip(e, err)
		return 0, 0, false
	}
	if end <= start && e.DurationMinutes > 0 {
		end = clock.MinutesPerDay
	}
	if end < start {
		c.skip(e, nil)
		return 0, 0, false
	}
	return start, end, true
}

func (c *Coverage) skip(e *model.DayEntry, err error) {
	metrics.IncMalformedEntry("coverage")
	c.logger.Warn().Err(err).
		Str("entry_id", e.ID).
		Str("start_time", e.StartTime).
		Str("end_time", e.EndTime).
		Msg("skipping entry with unusable time span")
}
