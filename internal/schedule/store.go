package schedule

import (
	"context"
	"time"

	"salonsked/internal/model"
)

// RecordStore persists schedule entries. Every call is scoped to owner and
// errors are returned unchanged to the caller.
type RecordStore interface {
	ListEntries(ctx context.Context, owner string, from, to time.Time) ([]model.ScheduleEntry, error)
	CreateEntry(ctx context.Context, owner string, draft model.ScheduleEntry) (model.ScheduleEntry, error)
	UpdateEntry(ctx context.Context, owner, id string, patch model.EntryPatch) (model.ScheduleEntry, error)
	DeleteEntry(ctx context.Context, owner, id string) error
}

// Catalog reads the technicians and services an owner can schedule.
type Catalog interface {
	ListTechnicians(ctx context.Context, owner string) ([]model.Technician, error)
	ListServices(ctx context.Context, owner string) ([]model.Service, error)
	GetService(ctx context.Context, owner, id string) (model.Service, error)
}
