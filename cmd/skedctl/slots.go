package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"salonsked/internal/schedule"
)

var (
	slotsDate        string
	slotsInterval    int
	slotsTechnicians []string
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Print the labels offered for booking on a day",
	Args:  cobra.NoArgs,
	RunE:  runSlots,
}

func init() {
	slotsCmd.Flags().StringVar(&slotsDate, "date", "", "Day to show, YYYY-MM-DD (defaults to today)")
	slotsCmd.Flags().IntVar(&slotsInterval, "interval", 0, "Slot interval in minutes: 5, 15 or 30")
	slotsCmd.Flags().StringSliceVar(&slotsTechnicians, "tech", nil, "Technician ids to consider (defaults to all)")
}

func runSlots(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	day, err := parseDay(slotsDate, b.svc.Settings().Location, time.Now())
	if err != nil {
		return err
	}
	techIDs, err := technicianIDs(cmd.Context(), b, slotsTechnicians)
	if err != nil {
		return err
	}
	view, err := b.svc.DayView(cmd.Context(), ownerEmail, schedule.DayQuery{
		Day:           day,
		Interval:      slotsInterval,
		TechnicianIDs: techIDs,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, every %d minutes, %d of %d labels free\n", view.Date, view.Interval, len(view.Slots), len(view.Rows))
	for _, line := range wrapLabels(view.Slots, 12) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// wrapLabels joins labels into lines of at most perLine labels.
func wrapLabels(labels []string, perLine int) []string {
	var lines []string
	for len(labels) > 0 {
		n := min(perLine, len(labels))
		lines = append(lines, strings.Join(labels[:n], " "))
		labels = labels[n:]
	}
	return lines
}
