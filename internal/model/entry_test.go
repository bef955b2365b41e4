package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestScheduleEntry_End(t *testing.T) {
	start := datetime(2026, 1, 15, 9, 0)
	e := ScheduleEntry{StartAt: &start, DurationMinutes: 45}

	end, ok := e.End()
	assert.True(t, ok)
	assert.Equal(t, datetime(2026, 1, 15, 9, 45), end)

	missing := ScheduleEntry{DurationMinutes: 45}
	_, ok = missing.End()
	assert.False(t, ok)
}

func TestKind(t *testing.T) {
	assert.True(t, KindAppointment.Valid())
	assert.True(t, KindLunch.Valid())
	assert.False(t, Kind("day_off").Valid())

	assert.False(t, KindAppointment.IsBlock())
	assert.True(t, KindCustom.IsBlock())
	assert.True(t, KindMeeting.IsBlock())
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusBlocked.Valid())
	assert.False(t, Status("pending").Valid())
}

func TestEntryPatch_Empty(t *testing.T) {
	var p EntryPatch
	assert.True(t, p.Empty())

	title := "Lunch"
	p.Title = &title
	assert.False(t, p.Empty())
}

func TestDayEntry_OnDate(t *testing.T) {
	e := DayEntry{StartAt: datetime(2026, 1, 15, 23, 30)}

	assert.True(t, e.OnDate(datetime(2026, 1, 15, 0, 0)))
	assert.False(t, e.OnDate(datetime(2026, 1, 16, 0, 0)))

	// 23:30 UTC is already the next day three hours east.
	east := time.FixedZone("UTC+3", 3*60*60)
	assert.True(t, e.OnDate(time.Date(2026, 1, 16, 0, 0, 0, 0, east)))
	assert.Equal(t, "2026-01-15", e.Date())
}
