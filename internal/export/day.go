package export

import (
	"fmt"
	"io"

	"salonsked/internal/clock"
	"salonsked/internal/schedule"
)

// Sheet names of a day workbook.
const (
	GridSheet    = "Grid"
	EntriesSheet = "Entries"
)

// Filename returns the download name of a day workbook.
func Filename(date string) string {
	return fmt.Sprintf("schedule_%s.xlsx", date)
}

// WriteDay writes view as a workbook with the colored grid and the list of
// entries of the day.
func WriteDay(out io.Writer, view *schedule.DayView) error {
	w := newSheetWriter()
	defer w.close()

	if err := w.addSheet(GridSheet); err != nil {
		return err
	}
	header := []string{"Time"}
	for _, col := range view.Columns {
		header = append(header, col.Technician.Name)
	}
	if err := w.writeHeader(header); err != nil {
		return err
	}
	for _, row := range view.Rows {
		values := []any{row.Time}
		for _, cell := range row.Cells {
			if cell.Starts {
				values = append(values, cell.Title)
			} else {
				values = append(values, "")
			}
		}
		if err := w.writeRow(values); err != nil {
			return err
		}
		for i, cell := range row.Cells {
			if cell.EntryID == "" || cell.Color == "" {
				continue
			}
			if err := w.fill(i+2, cell.Color); err != nil {
				return err
			}
		}
	}

	if err := w.addSheet(EntriesSheet); err != nil {
		return err
	}
	if err := w.writeHeader([]string{"Date", "Start", "End", "Duration", "Technician", "Type", "Title", "Status", "Notes"}); err != nil {
		return err
	}
	names := make(map[string]string, len(view.Columns))
	for _, col := range view.Columns {
		names[col.Technician.ID] = col.Technician.Name
	}
	for _, e := range view.Entries {
		tech := names[e.TechnicianID]
		if tech == "" {
			tech = e.TechnicianID
		}
		row := []any{
			e.Date(), e.StartTime, e.EndTime, clock.FormatDuration(e.DurationMinutes),
			tech, string(e.Kind), e.Title, string(e.Status), e.Notes,
		}
		if err := w.writeRow(row); err != nil {
			return err
		}
	}

	return w.save(out)
}
