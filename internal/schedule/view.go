package schedule

import (
	"context"
	"fmt"
	"slices"
	"time"

	"salonsked/internal/clock"
	"salonsked/internal/metrics"
	"salonsked/internal/model"
	"salonsked/internal/palette"
	"salonsked/internal/slots"
)

// DayQuery selects the day view to build. With no TechnicianIDs the owner's
// saved selection is used. A zero Interval uses the configured default.
type DayQuery struct {
	Day           time.Time
	Interval      int
	TechnicianIDs []string
}

// Column is one selected technician of the grid.
type Column struct {
	Technician model.Technician `json:"technician"`
	Color      palette.Color    `json:"color"`
}

// Cell is one technician at one label. EntryID is empty for a free cell.
type Cell struct {
	TechnicianID string       `json:"technician_id"`
	EntryID      string       `json:"entry_id,omitempty"`
	Title        string       `json:"title,omitempty"`
	Kind         model.Kind   `json:"block_type,omitempty"`
	Status       model.Status `json:"status,omitempty"`
	Starts       bool         `json:"starts,omitempty"`
	Color        string       `json:"color,omitempty"`
}

// Row is one label of the grid.
type Row struct {
	Time  string `json:"time"`
	Cells []Cell `json:"cells"`
}

// DayView is everything the schedule screen shows for one day.
type DayView struct {
	Date     string           `json:"date"`
	Interval int              `json:"interval"`
	Columns  []Column         `json:"columns"`
	Slots    []string         `json:"slots"`
	Rows     []Row            `json:"rows"`
	Entries  []model.DayEntry `json:"entries"`
}

func (s *Service) interval(requested int) (int, error) {
	if requested == 0 {
		return s.Settings().DefaultInterval, nil
	}
	if !slots.ValidGranularity(requested) {
		return 0, invalid("interval", "must be one of %v", slots.Granularities)
	}
	return requested, nil
}

// DayView builds the offered slots and the grid for q. Colors are assigned
// afresh for every view in selection order.
func (s *Service) DayView(ctx context.Context, owner string, q DayQuery) (*DayView, error) {
	interval, err := s.interval(q.Interval)
	if err != nil {
		return nil, err
	}
	entries, err := s.Entries(ctx, owner, q.Day)
	if err != nil {
		return nil, err
	}

	selected := q.TechnicianIDs
	if len(selected) == 0 {
		if selected, err = s.SelectedTechnicians(ctx, owner); err != nil {
			return nil, err
		}
	}
	technicians, err := s.Technicians(ctx, owner)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	defer func() { metrics.ObserveSlotGeneration(time.Since(began).Seconds()) }()

	offered, err := s.gen.Generate(interval, selected, entries)
	if err != nil {
		return nil, invalid("interval", "%v", err)
	}

	colors := palette.Assign(selected)
	view := &DayView{
		Date:     startOfDay(q.Day, s.Settings().Location).Format("2006-01-02"),
		Interval: interval,
		Columns:  columns(selected, technicians, colors),
		Slots:    offered,
		Entries:  entries,
	}
	if view.Entries == nil {
		view.Entries = []model.DayEntry{}
	}

	coverage := s.gen.Coverage()
	for label := range slots.Labels(interval) {
		row := Row{Time: label, Cells: make([]Cell, 0, len(view.Columns))}
		for _, col := range view.Columns {
			cell := Cell{TechnicianID: col.Technician.ID}
			if e, ok := coverage.FindCoveringEntry(col.Technician.ID, label, entries); ok {
				cell.EntryID = e.ID
				cell.Title = e.Title
				cell.Kind = e.Kind
				cell.Status = e.Status
				cell.Starts = e.StartTime == label
				cell.Color = col.Color.Hex
			}
			row.Cells = append(row.Cells, cell)
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// columns keeps the selection order. Ids the catalog does not know still get
// a column so their entries stay visible.
func columns(selected []string, technicians []model.Technician, colors map[string]palette.Color) []Column {
	out := make([]Column, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true
		tech := model.Technician{ID: id, Name: id}
		if i := slices.IndexFunc(technicians, func(t model.Technician) bool { return t.ID == id }); i >= 0 {
			tech = technicians[i]
		}
		out = append(out, Column{Technician: tech, Color: colors[id]})
	}
	return out
}

// Durations lists the booking lengths available for technicianID at label.
func (s *Service) Durations(ctx context.Context, owner string, day time.Time, label, technicianID string, interval int) ([]int, error) {
	interval, err := s.interval(interval)
	if err != nil {
		return nil, err
	}
	if technicianID == "" {
		return nil, invalid("technician_id", "is required")
	}
	if _, err := clock.Parse(label); err != nil {
		return nil, invalid("time", "%q is not a HH:MM time", label)
	}
	entries, err := s.Entries(ctx, owner, day)
	if err != nil {
		return nil, err
	}
	options := s.gen.DurationOptions(technicianID, label, interval, entries)
	if options == nil {
		options = []int{}
	}
	return options, nil
}

// Technicians lists the owner's active technicians.
func (s *Service) Technicians(ctx context.Context, owner string) ([]model.Technician, error) {
	techs, err := s.catalog.ListTechnicians(ctx, owner)
	if err != nil {
		metrics.IncStoreError("list_technicians")
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	return techs, nil
}

// Services lists the owner's active services.
func (s *Service) Services(ctx context.Context, owner string) ([]model.Service, error) {
	services, err := s.catalog.ListServices(ctx, owner)
	if err != nil {
		metrics.IncStoreError("list_services")
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// SelectedTechnicians returns the owner's saved technician selection.
func (s *Service) SelectedTechnicians(ctx context.Context, owner string) ([]string, error) {
	ids, err := s.prefs.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load technician selection: %w", err)
	}
	return ids, nil
}

// SaveSelectedTechnicians stores the owner's technician selection. Unknown
// ids are rejected.
func (s *Service) SaveSelectedTechnicians(ctx context.Context, owner string, ids []string) error {
	if owner == "" {
		return invalid("owner", "is required")
	}
	techs, err := s.Technicians(ctx, owner)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !slices.ContainsFunc(techs, func(t model.Technician) bool { return t.ID == id }) {
			return invalid("technician_ids", "unknown technician %q", id)
		}
	}
	if err := s.prefs.Save(ctx, owner, ids); err != nil {
		return fmt.Errorf("save technician selection: %w", err)
	}
	return nil
}
