package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"salonsked/internal/model"
)

const entryColumns = `id, user_email, technician_id, service_id, customer_email, appointment_date,
	duration_minutes, block_type, title, status, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListEntries returns the owner's entries starting within [from, to],
// ordered by start. Rows without a start, or with an unreadable one, are
// returned too with a nil StartAt so the caller can report them.
func (db *DB) ListEntries(ctx context.Context, owner string, from, to time.Time) ([]model.ScheduleEntry, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_email = ?
			AND (appointment_date IS NULL OR (appointment_date >= ? AND appointment_date <= ?))
		ORDER BY appointment_date, id`, entryColumns, db.tables.Schedule),
		owner, formatInstant(from), formatInstant(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var result []model.ScheduleEntry
	for rows.Next() {
		e, err := db.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetEntry returns one entry of the owner.
func (db *DB) GetEntry(ctx context.Context, owner, id string) (model.ScheduleEntry, error) {
	row := db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = ? AND user_email = ?`, entryColumns, db.tables.Schedule),
		id, owner,
	)
	e, err := db.scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScheduleEntry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// CreateEntry inserts draft for owner. The store assigns the id and
// timestamps and returns the canonical record.
func (db *DB) CreateEntry(ctx context.Context, owner string, draft model.ScheduleEntry) (model.ScheduleEntry, error) {
	if draft.StartAt == nil {
		return model.ScheduleEntry{}, fmt.Errorf("create entry: missing appointment date")
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, db.tables.Schedule),
		id, owner, draft.TechnicianID, nullString(draft.ServiceID), nullString(draft.CustomerEmail),
		formatInstant(*draft.StartAt), draft.DurationMinutes, string(draft.Kind), nullString(draft.Title),
		string(draft.Status), nullString(draft.Notes), now, now,
	)
	if err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("create entry: %w", err)
	}
	return db.GetEntry(ctx, owner, id)
}

// UpdateEntry applies patch to the owner's entry id and returns the
// canonical record.
func (db *DB) UpdateEntry(ctx context.Context, owner, id string, patch model.EntryPatch) (model.ScheduleEntry, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.TechnicianID != nil {
		set("technician_id", *patch.TechnicianID)
	}
	if patch.ServiceID != nil {
		set("service_id", nullString(*patch.ServiceID))
	}
	if patch.StartAt != nil {
		set("appointment_date", formatInstant(*patch.StartAt))
	}
	if patch.DurationMinutes != nil {
		set("duration_minutes", *patch.DurationMinutes)
	}
	if patch.Kind != nil {
		set("block_type", string(*patch.Kind))
	}
	if patch.Title != nil {
		set("title", nullString(*patch.Title))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Notes != nil {
		set("notes", nullString(*patch.Notes))
	}
	if len(sets) == 0 {
		return db.GetEntry(ctx, owner, id)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id, owner)

	res, err := db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = ? AND user_email = ?`, db.tables.Schedule, strings.Join(sets, ", ")),
		args...,
	)
	if err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("update entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ScheduleEntry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return db.GetEntry(ctx, owner, id)
}

// DeleteEntry removes the owner's entry id.
func (db *DB) DeleteEntry(ctx context.Context, owner, id string) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE id = ? AND user_email = ?`, db.tables.Schedule), id, owner)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) scanEntry(row rowScanner) (model.ScheduleEntry, error) {
	var (
		e                                      model.ScheduleEntry
		serviceID, customer, start, title, nts sql.NullString
		kind, status                           string
	)
	err := row.Scan(
		&e.ID, &e.OwnerEmail, &e.TechnicianID, &serviceID, &customer, &start,
		&e.DurationMinutes, &kind, &title, &status, &nts, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return model.ScheduleEntry{}, err
	}

	e.ServiceID = serviceID.String
	e.CustomerEmail = customer.String
	e.Title = title.String
	e.Notes = nts.String
	e.Kind = model.Kind(kind)
	e.Status = model.Status(status)

	if start.Valid {
		if t, err := time.Parse(instantLayout, start.String); err == nil {
			e.StartAt = &t
		} else {
			db.logger.Warn().Err(err).Str("entry_id", e.ID).Msg("unreadable appointment_date")
		}
	}
	return e, nil
}
