package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"salonsked/internal/config"
	"salonsked/internal/prefs"
	"salonsked/internal/schedule"
	"salonsked/internal/store"
)

var (
	configPath string
	ownerEmail string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "skedctl",
	Short: "Maintenance commands for the salonsked schedule database",
	Long: `skedctl works directly on the salonsked SQLite database.
It seeds sample data, prints the offered slots of a day and exports
a day to a spreadsheet.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (defaults to $"+config.EnvPath+")")
	rootCmd.PersistentFlags().StringVar(&ownerEmail, "owner", "", "Owner email the schedule belongs to")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("owner")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(exportCmd)
}

// backend bundles what every command needs.
type backend struct {
	cfg    *config.Config
	db     *store.DB
	svc    *schedule.Service
	logger zerolog.Logger
}

func (b *backend) Close() error {
	return b.db.Close()
}

func openBackend() (*backend, error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	db, err := store.NewDB(cfg.Database.Path, cfg.Database.Tables, &logger)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	settings := schedule.Settings{
		Location:            loc,
		DefaultInterval:     cfg.Schedule.DefaultInterval,
		LoadWindowDays:      cfg.Schedule.LoadWindowDays,
		BlockDefaultMinutes: cfg.Schedule.BlockDefaultMinutes,
	}
	svc := schedule.NewService(db, db, prefs.NewMemoryStore(), nil, settings, logger)
	return &backend{cfg: cfg, db: db, svc: svc, logger: logger}, nil
}

// parseDay reads a YYYY-MM-DD flag value in loc. An empty value means today.
func parseDay(value string, loc *time.Location, now time.Time) (time.Time, error) {
	if value == "" {
		now = now.In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return day, nil
}

// technicianIDs returns given, or the ids of all the owner's technicians
// when given is empty.
func technicianIDs(ctx context.Context, b *backend, given []string) ([]string, error) {
	if len(given) > 0 {
		return given, nil
	}
	technicians, err := b.svc.Technicians(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(technicians))
	for _, t := range technicians {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
