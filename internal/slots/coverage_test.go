package slots

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonsked/internal/model"
)

func TestFindCoveringEntry(t *testing.T) {
	c := NewCoverage(zerolog.Nop())
	entries := []model.DayEntry{
		entry("a", "T1", "09:00", "09:45", 45),
		entry("b", "T1", "09:45", "10:15", 30),
		entry("c", "T2", "11:00", "11:30", 30),
	}

	tests := []struct {
		name   string
		techID string
		label  string
		wantID string
	}{
		{"start boundary is covered", "T1", "09:00", "a"},
		{"inside", "T1", "09:30", "a"},
		{"end boundary is covered, first match wins", "T1", "09:45", "a"},
		{"second entry", "T1", "10:15", "b"},
		{"before any entry", "T1", "08:45", ""},
		{"after entries", "T1", "10:30", ""},
		{"other technician's entry does not count", "T1", "11:00", ""},
		{"other technician", "T2", "11:15", "c"},
		{"unparseable label", "T1", "9:30", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.FindCoveringEntry(tt.techID, tt.label, entries)
			if tt.wantID == "" {
				assert.False(t, ok)
				assert.Nil(t, got)
				assert.True(t, c.IsAvailable(tt.techID, tt.label, entries))
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantID, got.ID)
			assert.False(t, c.IsAvailable(tt.techID, tt.label, entries))
		})
	}
}

func TestFindCoveringEntry_ReturnsHeldEntry(t *testing.T) {
	c := NewCoverage(zerolog.Nop())
	entries := []model.DayEntry{entry("a", "T1", "09:00", "09:45", 45)}

	got, ok := c.FindCoveringEntry("T1", "09:15", entries)
	require.True(t, ok)
	assert.Same(t, &entries[0], got)
}

func TestFindCoveringEntry_MalformedSkipped(t *testing.T) {
	c := NewCoverage(zerolog.Nop())
	entries := []model.DayEntry{
		entry("bad-start", "T1", "", "10:00", 60),
		entry("bad-end", "T1", "09:00", "ten", 60),
		entry("reversed", "T1", "10:00", "09:00", 0),
		entry("good", "T1", "09:30", "10:00", 30),
	}

	got, ok := c.FindCoveringEntry("T1", "09:45", entries)
	require.True(t, ok)
	assert.Equal(t, "good", got.ID)

	assert.True(t, c.IsAvailable("T1", "09:15", entries))
}

func TestFindCoveringEntry_WrapsToEndOfDay(t *testing.T) {
	c := NewCoverage(zerolog.Nop())
	entries := []model.DayEntry{entry("late", "T1", "22:30", "00:30", 120)}

	assert.False(t, c.IsAvailable("T1", "22:45", entries))
	assert.False(t, c.IsAvailable("T1", "23:59", entries))
	assert.True(t, c.IsAvailable("T1", "00:15", entries))
}

func TestNextStart(t *testing.T) {
	c := NewCoverage(zerolog.Nop())
	entries := []model.DayEntry{
		entry("a", "T1", "12:00", "12:30", 30),
		entry("b", "T1", "10:00", "10:30", 30),
		entry("c", "T2", "09:00", "09:30", 30),
	}

	assert.Equal(t, 600, c.nextStart("T1", 480, entries))
	assert.Equal(t, 720, c.nextStart("T1", 600, entries))
	assert.Equal(t, 1440, c.nextStart("T1", 720, entries))
}
