package store

import (
	"fmt"
	"regexp"
)

// TableNames maps the logical tables of the store to physical table names.
type TableNames struct {
	Schedule    string `yaml:"schedule"`
	Technicians string `yaml:"technicians"`
	Services    string `yaml:"services"`
}

// DefaultTableNames returns the physical names used by the salon database.
func DefaultTableNames() TableNames {
	return TableNames{
		Schedule:    "appointment_schedule",
		Technicians: "technicians",
		Services:    "services",
	}
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that every name is a plain SQL identifier. Names are
// interpolated into queries, so nothing else is accepted.
func (t TableNames) Validate() error {
	for logical, name := range map[string]string{
		"schedule":    t.Schedule,
		"technicians": t.Technicians,
		"services":    t.Services,
	} {
		if !identifier.MatchString(name) {
			return fmt.Errorf("table name for %s is not a valid identifier: %q", logical, name)
		}
	}
	return nil
}

// WithDefaults fills empty names from DefaultTableNames.
func (t TableNames) WithDefaults() TableNames {
	def := DefaultTableNames()
	if t.Schedule == "" {
		t.Schedule = def.Schedule
	}
	if t.Technicians == "" {
		t.Technicians = def.Technicians
	}
	if t.Services == "" {
		t.Services = def.Services
	}
	return t
}
