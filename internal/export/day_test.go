package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salonsked/internal/model"
	"salonsked/internal/palette"
	"salonsked/internal/schedule"
)

func TestWriteDay(t *testing.T) {
	entry := model.DayEntry{
		ID: "e1", TechnicianID: "A", Title: "Haircut", Kind: model.KindAppointment,
		Status: model.StatusScheduled, DurationMinutes: 90,
		StartAt:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		StartTime: "09:00", EndTime: "10:30",
	}
	view := &schedule.DayView{
		Date:     "2026-03-02",
		Interval: 30,
		Columns: []schedule.Column{
			{Technician: model.Technician{ID: "A", Name: "Ava"}, Color: palette.Colors[0]},
		},
		Rows: []schedule.Row{
			{Time: "08:30", Cells: []schedule.Cell{{TechnicianID: "A"}}},
			{Time: "09:00", Cells: []schedule.Cell{{TechnicianID: "A", EntryID: "e1", Title: "Haircut", Starts: true, Color: "#6366F1"}}},
			{Time: "09:30", Cells: []schedule.Cell{{TechnicianID: "A", EntryID: "e1", Title: "Haircut", Color: "#6366F1"}}},
		},
		Entries: []model.DayEntry{entry},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDay(&buf, view))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{GridSheet, EntriesSheet}, f.GetSheetList())

	val, err := f.GetCellValue(GridSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Ava", val)

	val, err = f.GetCellValue(GridSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Haircut", val)

	val, err = f.GetCellValue(GridSheet, "B4")
	require.NoError(t, err)
	assert.Empty(t, val)

	rows, err := f.GetRows(EntriesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2026-03-02", "09:00", "10:30", "1h 30m", "Ava", "appointment", "Haircut", "scheduled"}, rows[1])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "schedule_2026-03-02.xlsx", Filename("2026-03-02"))
}
