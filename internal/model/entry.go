package model

import "time"

// Kind classifies a schedule entry.
type Kind string

const (
	KindAppointment Kind = "appointment"
	KindCustom      Kind = "custom"
	KindBreak       Kind = "break"
	KindLunch       Kind = "lunch"
	KindMeeting     Kind = "meeting"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindAppointment, KindCustom, KindBreak, KindLunch, KindMeeting:
		return true
	}
	return false
}

// IsBlock reports whether the kind is a non-bookable block.
func (k Kind) IsBlock() bool {
	return k != KindAppointment
}

// Status of a schedule entry. Purely informational for appointments.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusBlocked   Status = "blocked"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusBlocked:
		return true
	}
	return false
}

// ScheduleEntry is an appointment or block as persisted in the record store.
// StartAt is nil only for malformed rows.
type ScheduleEntry struct {
	ID              string     `json:"id"`
	OwnerEmail      string     `json:"user_email"`
	TechnicianID    string     `json:"technician_id"`
	ServiceID       string     `json:"service_id,omitempty"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	StartAt         *time.Time `json:"appointment_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Kind            Kind       `json:"block_type"`
	Title           string     `json:"title,omitempty"`
	Status          Status     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// End returns StartAt + duration. ok is false when the entry has no start.
func (e *ScheduleEntry) End() (end time.Time, ok bool) {
	if e.StartAt == nil {
		return time.Time{}, false
	}
	return e.StartAt.Add(time.Duration(e.DurationMinutes) * time.Minute), true
}

// EntryPatch is a partial update. Nil fields are left untouched.
type EntryPatch struct {
	TechnicianID    *string    `json:"technician_id,omitempty"`
	ServiceID       *string    `json:"service_id,omitempty"`
	StartAt         *time.Time `json:"appointment_date,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Kind            *Kind      `json:"block_type,omitempty"`
	Title           *string    `json:"title,omitempty"`
	Status          *Status    `json:"status,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p *EntryPatch) Empty() bool {
	return p.TechnicianID == nil && p.ServiceID == nil && p.StartAt == nil &&
		p.DurationMinutes == nil && p.Kind == nil && p.Title == nil &&
		p.Status == nil && p.Notes == nil
}

// DayEntry is the display form of a ScheduleEntry held in day state.
// StartTime and EndTime are derived from StartAt and DurationMinutes.
type DayEntry struct {
	ID              string    `json:"id"`
	TechnicianID    string    `json:"technician_id"`
	ServiceID       string    `json:"service_id,omitempty"`
	Title           string    `json:"title"`
	Kind            Kind      `json:"block_type"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	StartAt         time.Time `json:"appointment_date"`
	StartTime       string    `json:"start_time"` // "09:00"
	EndTime         string    `json:"end_time"`   // "09:45"
}

// Date returns the calendar date of the entry in its own location.
func (e *DayEntry) Date() string {
	return e.StartAt.Format("2006-01-02")
}

// OnDate reports whether the entry starts on the same calendar day as day.
func (e *DayEntry) OnDate(day time.Time) bool {
	return e.StartAt.In(day.Location()).Format("2006-01-02") == day.Format("2006-01-02")
}
