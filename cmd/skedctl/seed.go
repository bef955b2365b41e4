package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"salonsked/internal/clock"
	"salonsked/internal/model"
	"salonsked/internal/schedule"
)

var (
	seedDays   int
	seedPerDay int
	seedStart  string
	seedRandom uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the schedule with sample technicians, services and entries",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedDays, "days", 7, "Number of days to fill")
	seedCmd.Flags().IntVar(&seedPerDay, "per-day", 4, "Entries per technician per day")
	seedCmd.Flags().StringVar(&seedStart, "start", "", "First day to fill, YYYY-MM-DD (defaults to today)")
	seedCmd.Flags().Uint64Var(&seedRandom, "seed", 1, "Random seed")
}

var sampleServices = []model.Service{
	{Name: "Basic Manicure", DurationMinutes: 30, PriceCents: 2500},
	{Name: "Gel Manicure", DurationMinutes: 45, PriceCents: 3500},
	{Name: "Basic Pedicure", DurationMinutes: 45, PriceCents: 3500},
	{Name: "Deluxe Pedicure", DurationMinutes: 60, PriceCents: 5000},
	{Name: "Acrylic Full Set", DurationMinutes: 75, PriceCents: 6000},
	{Name: "Acrylic Fill", DurationMinutes: 60, PriceCents: 4000},
	{Name: "Nail Art", DurationMinutes: 15, PriceCents: 500},
	{Name: "Polish Change - Hands", DurationMinutes: 15, PriceCents: 1500},
	{Name: "Polish Change - Feet", DurationMinutes: 15, PriceCents: 1500},
	{Name: "Nail Repair", DurationMinutes: 15, PriceCents: 1000},
}

var sampleTechnicians = []model.Technician{
	{Name: "Emma Johnson", Specialty: "Nail Art, Gel Manicures"},
	{Name: "Michael Chen", Specialty: "Acrylic Nails, Pedicures"},
	{Name: "Sophia Rodriguez", Specialty: "Gel Extensions, Nail Repair"},
	{Name: "David Kim", Specialty: "Luxury Pedicures, Hand Treatments"},
	{Name: "Olivia Williams", Specialty: "Nail Art, Dip Powder"},
}

var seedBlockKinds = []model.Kind{model.KindCustom, model.KindBreak, model.KindLunch, model.KindMeeting}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedDays <= 0 || seedPerDay <= 0 {
		return errors.New("--days and --per-day must be positive")
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()
	settings := b.svc.Settings()
	start, err := parseDay(seedStart, settings.Location, time.Now())
	if err != nil {
		return err
	}

	technicians, services, err := ensureCatalog(ctx, b)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(seedRandom, seedRandom))
	var booked, skipped int
	for d := range seedDays {
		day := start.AddDate(0, 0, d)
		for _, req := range planDay(rng, day, technicians, services, seedPerDay) {
			_, err := b.svc.Book(ctx, ownerEmail, req)
			var verr *schedule.ValidationError
			switch {
			case err == nil:
				booked++
			case errors.Is(err, schedule.ErrSlotCovered), errors.As(err, &verr):
				skipped++
				b.logger.Debug().Err(err).Str("technician_id", req.TechnicianID).Str("time", req.Time).Msg("skipped sample entry")
			default:
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d entries over %d days (%d skipped)\n", booked, seedDays, skipped)
	return nil
}

// ensureCatalog returns the owner's technicians and services, creating the
// sample ones when the owner has none.
func ensureCatalog(ctx context.Context, b *backend) ([]model.Technician, []model.Service, error) {
	technicians, err := b.db.ListTechnicians(ctx, ownerEmail)
	if err != nil {
		return nil, nil, err
	}
	if len(technicians) == 0 {
		for _, t := range sampleTechnicians {
			t.Email = strings.ToLower(strings.ReplaceAll(t.Name, " ", ".")) + "@example.com"
			created, err := b.db.CreateTechnician(ctx, ownerEmail, t)
			if err != nil {
				return nil, nil, fmt.Errorf("create technician %s: %w", t.Name, err)
			}
			technicians = append(technicians, created)
		}
		b.logger.Info().Int("count", len(technicians)).Msg("created sample technicians")
	}

	services, err := b.db.ListServices(ctx, ownerEmail)
	if err != nil {
		return nil, nil, err
	}
	if len(services) == 0 {
		for _, s := range sampleServices {
			s.IsActive = true
			created, err := b.db.CreateService(ctx, ownerEmail, s)
			if err != nil {
				return nil, nil, fmt.Errorf("create service %s: %w", s.Name, err)
			}
			services = append(services, created)
		}
		b.logger.Info().Int("count", len(services)).Msg("created sample services")
	}
	return technicians, services, nil
}

// planDay draws perTech random entries for every technician on day. About
// seven in ten are service appointments, the rest are blocks of 15 to 60
// minutes. Start labels fall on a quarter hour between 08:00 and 19:45.
func planDay(rng *rand.Rand, day time.Time, technicians []model.Technician, services []model.Service, perTech int) []schedule.BookingRequest {
	var plan []schedule.BookingRequest
	for _, tech := range technicians {
		for range perTech {
			req := schedule.BookingRequest{
				TechnicianID: tech.ID,
				Day:          day,
				Time:         randomLabel(rng),
			}
			if len(services) > 0 && rng.Float64() < 0.7 {
				svc := services[rng.IntN(len(services))]
				req.Kind = model.KindAppointment
				req.ServiceID = svc.ID
				req.Notes = "Service appointment with " + tech.Name
			} else {
				kind := seedBlockKinds[rng.IntN(len(seedBlockKinds))]
				req.Kind = kind
				req.DurationMinutes = 15 * (rng.IntN(4) + 1)
				req.Title = strings.ToUpper(string(kind[:1])) + string(kind[1:])
				req.Notes = string(kind) + " time block"
			}
			plan = append(plan, req)
		}
	}
	return plan
}

func randomLabel(rng *rand.Rand) string {
	return clock.Format(8*60 + rng.IntN(12)*60 + 15*rng.IntN(4))
}
