package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salonsked/internal/model"
)

// ListTechnicians returns the owner's active technicians ordered by name.
func (db *DB) ListTechnicians(ctx context.Context, owner string) ([]model.Technician, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_email, name, email, specialty, is_active, created_at, updated_at
		FROM %s WHERE user_email = ? AND is_active = 1
		ORDER BY name, id`, db.tables.Technicians), owner)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	defer rows.Close()

	var result []model.Technician
	for rows.Next() {
		var (
			t              model.Technician
			email, special sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.OwnerEmail, &t.Name, &email, &special, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		t.Email = email.String
		t.Specialty = special.String
		result = append(result, t)
	}
	return result, rows.Err()
}

// CreateTechnician inserts a technician for owner and returns it with its id.
func (db *DB) CreateTechnician(ctx context.Context, owner string, t model.Technician) (model.Technician, error) {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.OwnerEmail = owner
	t.IsActive = true
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, user_email, name, email, specialty, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, db.tables.Technicians),
		t.ID, owner, t.Name, nullString(t.Email), nullString(t.Specialty), t.IsActive, now, now,
	)
	if err != nil {
		return model.Technician{}, fmt.Errorf("create technician: %w", err)
	}
	return t, nil
}

// ListServices returns the owner's active services ordered by name.
func (db *DB) ListServices(ctx context.Context, owner string) ([]model.Service, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_email, name, description, duration_minutes, price_cents, is_active, created_at, updated_at
		FROM %s WHERE user_email = ? AND is_active = 1
		ORDER BY name, id`, db.tables.Services), owner)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var result []model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetService returns one service of the owner.
func (db *DB) GetService(ctx context.Context, owner, id string) (model.Service, error) {
	row := db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, user_email, name, description, duration_minutes, price_cents, is_active, created_at, updated_at
		FROM %s WHERE id = ? AND user_email = ?`, db.tables.Services), id, owner)
	s, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Service{}, fmt.Errorf("service %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Service{}, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

// CreateService inserts a service for owner and returns it with its id.
func (db *DB) CreateService(ctx context.Context, owner string, s model.Service) (model.Service, error) {
	now := time.Now().UTC()
	s.ID = uuid.NewString()
	s.OwnerEmail = owner
	s.IsActive = true
	s.CreatedAt, s.UpdatedAt = now, now

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, user_email, name, description, duration_minutes, price_cents, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, db.tables.Services),
		s.ID, owner, s.Name, nullString(s.Description), s.DurationMinutes, s.PriceCents, s.IsActive, now, now,
	)
	if err != nil {
		return model.Service{}, fmt.Errorf("create service: %w", err)
	}
	return s, nil
}

func scanService(row rowScanner) (model.Service, error) {
	var (
		s    model.Service
		desc sql.NullString
	)
	if err := row.Scan(&s.ID, &s.OwnerEmail, &s.Name, &desc, &s.DurationMinutes, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return model.Service{}, err
	}
	s.Description = desc.String
	return s, nil
}
