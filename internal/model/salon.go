package model

import "time"

// Technician works on the salon floor and owns a calendar.
type Technician struct {
	ID         string    `json:"id"`
	OwnerEmail string    `json:"user_email"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Specialty  string    `json:"specialty,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service is a bookable salon service.
type Service struct {
	ID              string    `json:"id"`
	OwnerEmail      string    `json:"user_email"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
