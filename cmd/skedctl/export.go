package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"salonsked/internal/export"
	"salonsked/internal/schedule"
)

var (
	exportDate        string
	exportInterval    int
	exportTechnicians []string
	exportOut         string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a day of the schedule to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Day to export, YYYY-MM-DD (defaults to today)")
	exportCmd.Flags().IntVar(&exportInterval, "interval", 0, "Slot interval in minutes: 5, 15 or 30")
	exportCmd.Flags().StringSliceVar(&exportTechnicians, "tech", nil, "Technician ids to include (defaults to all)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (defaults to schedule_<date>.xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	day, err := parseDay(exportDate, b.svc.Settings().Location, time.Now())
	if err != nil {
		return err
	}
	techIDs, err := technicianIDs(cmd.Context(), b, exportTechnicians)
	if err != nil {
		return err
	}
	view, err := b.svc.DayView(cmd.Context(), ownerEmail, schedule.DayQuery{
		Day:           day,
		Interval:      exportInterval,
		TechnicianIDs: techIDs,
	})
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = export.Filename(view.Date)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteDay(f, view); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d entries)\n", path, len(view.Entries))
	return nil
}
