package slots

import (
	"fmt"
	"iter"
	"slices"

	"github.com/rs/zerolog"

	"salonsked/internal/clock"
	"salonsked/internal/model"
)

// Day window shown on the schedule grid, in minutes since midnight.
const (
	DayStart = 8 * 60  // 08:00
	DayEnd   = 23 * 60 // 23:00
)

// Granularities lists the supported slot steps in minutes.
var Granularities = []int{5, 15, 30}

// DefaultGranularity is used when the caller does not pick one.
const DefaultGranularity = 15

// ValidGranularity reports whether minutes is a supported slot step.
func ValidGranularity(minutes int) bool {
	return slices.Contains(Granularities, minutes)
}

// Generator produces the bookable time labels of a day.
type Generator struct {
	coverage *Coverage
}

// NewGenerator creates a slot generator.
func NewGenerator(logger zerolog.Logger) *Generator {
	return &Generator{coverage: NewCoverage(logger)}
}

// Coverage returns the coverage engine used by the generator.
func (g *Generator) Coverage() *Coverage {
	return g.coverage
}

// Labels yields every candidate label of the day window at the given step,
// without any availability filtering.
func Labels(granularity int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if granularity <= 0 {
			return
		}
		for offset := 0; offset <= DayEnd-DayStart-granularity; offset += granularity {
			if !yield(clock.Format(DayStart + offset)) {
				return
			}
		}
	}
}

// Seq yields the labels offered for booking: a label is kept when at least
// one selected technician has no covering entry at it. With no technicians
// selected every label is kept. The sequence can be ranged over repeatedly.
func (g *Generator) Seq(granularity int, selected []string, entries []model.DayEntry) iter.Seq[string] {
	return func(yield func(string) bool) {
		for label := range Labels(granularity) {
			if !g.anyAvailable(label, selected, entries) {
				continue
			}
			if !yield(label) {
				return
			}
		}
	}
}

// Generate returns the offered labels for a day.
func (g *Generator) Generate(granularity int, selected []string, entries []model.DayEntry) ([]string, error) {
	if !ValidGranularity(granularity) {
		return nil, fmt.Errorf("unsupported granularity %d, expected one of %v", granularity, Granularities)
	}
	return slices.Collect(g.Seq(granularity, selected, entries)), nil
}

func (g *Generator) anyAvailable(label string, selected []string, entries []model.DayEntry) bool {
	if len(selected) == 0 {
		return true
	}
	for _, techID := range selected {
		if g.coverage.IsAvailable(techID, label, entries) {
			return true
		}
	}
	return false
}

// DurationOptions returns the booking lengths, in multiples of granularity,
// that fit for technicianID starting at label before the next entry of that
// technician or the end of the day window. The new entry may not end exactly
// where the next one starts. It returns nil when label itself is covered.
func (g *Generator) DurationOptions(technicianID, label string, granularity int, entries []model.DayEntry) []int {
	start, err := clock.Parse(label)
	if err != nil || granularity <= 0 {
		return nil
	}
	if !g.coverage.IsAvailable(technicianID, label, entries) {
		return nil
	}

	limit := g.coverage.nextStart(technicianID, start, entries)
	var options []int
	for length := granularity; start+length <= DayEnd && start+length < limit; length += granularity {
		options = append(options, length)
	}
	return options
}
