// Package schedule serves an owner's day schedule: it loads entries from the
// record store, offers bookable slots and applies confirmed changes to the
// held state.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salonsked/internal/clock"
	"salonsked/internal/events"
	"salonsked/internal/metrics"
	"salonsked/internal/model"
	"salonsked/internal/prefs"
	"salonsked/internal/reconcile"
	"salonsked/internal/slots"
	"salonsked/internal/store"
)

// Settings are the runtime knobs of the service. They can be swapped while
// running.
type Settings struct {
	Location            *time.Location
	DefaultInterval     int
	LoadWindowDays      int
	BlockDefaultMinutes int
}

// DefaultSettings returns UTC, 15-minute slots, a 90-day load window and
// 30-minute blocks.
func DefaultSettings() Settings {
	return Settings{
		Location:            time.UTC,
		DefaultInterval:     slots.DefaultGranularity,
		LoadWindowDays:      90,
		BlockDefaultMinutes: 30,
	}
}

// Default title of a block created without one.
const DefaultBlockTitle = "Blocked Time"

// Service coordinates the record store, the slot generator and the held
// per-owner state.
type Service struct {
	store   RecordStore
	catalog Catalog
	prefs   prefs.Store
	bus     *events.EventBus
	gen     *slots.Generator
	logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	settingsMu sync.RWMutex
	settings   Settings
}

func NewService(records RecordStore, catalog Catalog, selection prefs.Store, bus *events.EventBus, settings Settings, logger zerolog.Logger) *Service {
	logger = logger.With().Str("component", "schedule").Logger()
	return &Service{
		store:    records,
		catalog:  catalog,
		prefs:    selection,
		bus:      bus,
		gen:      slots.NewGenerator(logger),
		logger:   logger,
		sessions: make(map[string]*Session),
		settings: settings.withDefaults(),
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.Location == nil {
		s.Location = def.Location
	}
	if !slots.ValidGranularity(s.DefaultInterval) {
		s.DefaultInterval = def.DefaultInterval
	}
	if s.LoadWindowDays <= 0 {
		s.LoadWindowDays = def.LoadWindowDays
	}
	if s.BlockDefaultMinutes <= 0 {
		s.BlockDefaultMinutes = def.BlockDefaultMinutes
	}
	return s
}

// UpdateSettings replaces the runtime settings. Held sessions are kept.
func (s *Service) UpdateSettings(settings Settings) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.settings = settings.withDefaults()
	s.logger.Info().
		Str("timezone", s.settings.Location.String()).
		Int("default_interval", s.settings.DefaultInterval).
		Int("load_window_days", s.settings.LoadWindowDays).
		Msg("schedule settings updated")
}

// Settings returns the current runtime settings.
func (s *Service) Settings() Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

// Generator returns the slot generator used by the service.
func (s *Service) Generator() *slots.Generator {
	return s.gen
}

func (s *Service) session(owner string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		sess = newSession()
		s.sessions[owner] = sess
	}
	return sess
}

// startOfDay returns midnight of day's calendar date in loc.
func startOfDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Entries returns the owner's entries on day, loading the window that
// contains it when needed.
func (s *Service) Entries(ctx context.Context, owner string, day time.Time) ([]model.DayEntry, error) {
	if owner == "" {
		return nil, invalid("owner", "is required")
	}
	settings := s.Settings()
	day = startOfDay(day, settings.Location)

	sess := s.session(owner)
	if held, ok := sess.window(day); ok {
		return onDay(held, day), nil
	}

	sess.storeMu.Lock()
	defer sess.storeMu.Unlock()
	if held, ok := sess.window(day); ok {
		return onDay(held, day), nil
	}
	if err := s.load(ctx, owner, sess, day, settings); err != nil {
		return nil, err
	}
	return onDay(sess.Snapshot(), day), nil
}

// Reload drops the held window and loads it again starting at day.
func (s *Service) Reload(ctx context.Context, owner string, day time.Time) error {
	settings := s.Settings()
	sess := s.session(owner)

	sess.storeMu.Lock()
	defer sess.storeMu.Unlock()
	return s.load(ctx, owner, sess, startOfDay(day, settings.Location), settings)
}

// load lists the window starting at from and replaces the held entries.
// Callers hold sess.storeMu.
func (s *Service) load(ctx context.Context, owner string, sess *Session, from time.Time, settings Settings) error {
	to := from.AddDate(0, 0, settings.LoadWindowDays)
	records, err := s.store.ListEntries(ctx, owner, from, to.Add(-time.Second))
	if err != nil {
		metrics.IncStoreError("list")
		return fmt.Errorf("list entries: %w", err)
	}
	entries := reconcile.FromRecords(records, settings.Location, s.logger)
	sess.reset(entries, from, to)

	s.logger.Debug().
		Str("owner", owner).
		Time("from", from).
		Int("records", len(records)).
		Int("entries", len(entries)).
		Msg("schedule window loaded")
	return nil
}

// BookingRequest describes a new appointment or block. Appointments need a
// service; their duration defaults to the service duration. Blocks default
// to the configured block length and DefaultBlockTitle.
type BookingRequest struct {
	TechnicianID    string
	ServiceID       string
	CustomerEmail   string
	Day             time.Time
	Time            string
	DurationMinutes int
	Kind            model.Kind
	Title           string
	Notes           string
}

// Book validates req, rejects labels already covered for the technician and
// persists the new entry. The held state is updated only after the store
// confirms.
func (s *Service) Book(ctx context.Context, owner string, req BookingRequest) (model.DayEntry, error) {
	settings := s.Settings()
	day := startOfDay(req.Day, settings.Location)

	draft, err := s.draft(ctx, owner, req, day, settings)
	if err != nil {
		return model.DayEntry{}, err
	}

	held, err := s.Entries(ctx, owner, day)
	if err != nil {
		return model.DayEntry{}, err
	}
	if covering, covered := s.gen.Coverage().FindCoveringEntry(req.TechnicianID, req.Time, held); covered {
		metrics.IncCoverageRejection()
		return model.DayEntry{}, fmt.Errorf("%s at %s is covered by %q: %w", req.TechnicianID, req.Time, covering.Title, ErrSlotCovered)
	}

	sess := s.session(owner)
	key := fmt.Sprintf("create:%s:%s", req.TechnicianID, draft.StartAt.UTC().Format(time.RFC3339))
	if !sess.begin(key) {
		return model.DayEntry{}, ErrBusy
	}
	defer sess.end(key)

	sess.storeMu.Lock()
	defer sess.storeMu.Unlock()
	saved, err := s.store.CreateEntry(ctx, owner, draft)
	if err != nil {
		metrics.IncStoreError("create")
		return model.DayEntry{}, fmt.Errorf("create entry: %w", err)
	}
	return s.applySaved(owner, sess, saved, true, settings)
}

func (s *Service) draft(ctx context.Context, owner string, req BookingRequest, day time.Time, settings Settings) (model.ScheduleEntry, error) {
	if owner == "" {
		return model.ScheduleEntry{}, invalid("owner", "is required")
	}
	if req.TechnicianID == "" {
		return model.ScheduleEntry{}, invalid("technician_id", "is required")
	}
	minutes, err := clock.Parse(req.Time)
	if err != nil {
		return model.ScheduleEntry{}, invalid("time", "%q is not a HH:MM time", req.Time)
	}
	if minutes < slots.DayStart || minutes >= slots.DayEnd {
		return model.ScheduleEntry{}, invalid("time", "%s is outside %s-%s", req.Time, clock.Format(slots.DayStart), clock.Format(slots.DayEnd))
	}
	if req.DurationMinutes < 0 {
		return model.ScheduleEntry{}, invalid("duration_minutes", "must be positive")
	}

	kind := req.Kind
	if kind == "" {
		kind = model.KindCustom
		if req.ServiceID != "" {
			kind = model.KindAppointment
		}
	}
	if !kind.Valid() {
		return model.ScheduleEntry{}, invalid("block_type", "unknown kind %q", kind)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
	entry := model.ScheduleEntry{
		OwnerEmail:      owner,
		TechnicianID:    req.TechnicianID,
		CustomerEmail:   req.CustomerEmail,
		StartAt:         &start,
		DurationMinutes: req.DurationMinutes,
		Kind:            kind,
		Title:           req.Title,
		Notes:           req.Notes,
	}

	if kind.IsBlock() {
		entry.Status = model.StatusBlocked
		if entry.DurationMinutes == 0 {
			entry.DurationMinutes = settings.BlockDefaultMinutes
		}
		if entry.Title == "" {
			entry.Title = DefaultBlockTitle
		}
		return entry, nil
	}

	if req.ServiceID == "" {
		return model.ScheduleEntry{}, invalid("service_id", "is required for appointments")
	}
	svc, err := s.lookupService(ctx, owner, req.ServiceID)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	if entry.DurationMinutes == 0 {
		entry.DurationMinutes = svc.DurationMinutes
	}
	if entry.DurationMinutes <= 0 {
		return model.ScheduleEntry{}, invalid("duration_minutes", "service %q has no duration", svc.Name)
	}
	if entry.Title == "" {
		entry.Title = svc.Name
	}
	entry.ServiceID = req.ServiceID
	entry.Status = model.StatusScheduled
	return entry, nil
}

func (s *Service) lookupService(ctx context.Context, owner, id string) (model.Service, error) {
	svc, err := s.catalog.GetService(ctx, owner, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Service{}, invalid("service_id", "unknown service %q", id)
	}
	if err != nil {
		metrics.IncStoreError("get_service")
		return model.Service{}, fmt.Errorf("get service: %w", err)
	}
	return svc, nil
}

// EditRequest changes an existing entry. Nil fields are left untouched.
// Setting ServiceID turns the entry into an appointment of that service;
// turning an entry into a block clears its service.
type EditRequest struct {
	ServiceID       *string
	Title           *string
	Notes           *string
	DurationMinutes *int
	Kind            *model.Kind
	Status          *model.Status
}

// Update applies req to entry id and merges the store's canonical record
// into the held state.
func (s *Service) Update(ctx context.Context, owner, id string, req EditRequest) (model.DayEntry, error) {
	if owner == "" {
		return model.DayEntry{}, invalid("owner", "is required")
	}
	if id == "" {
		return model.DayEntry{}, invalid("id", "is required")
	}

	patch := model.EntryPatch{Title: req.Title, Notes: req.Notes, DurationMinutes: req.DurationMinutes, Status: req.Status}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return model.DayEntry{}, invalid("duration_minutes", "must be positive")
	}
	if req.Status != nil && !req.Status.Valid() {
		return model.DayEntry{}, invalid("status", "unknown status %q", *req.Status)
	}
	kind := req.Kind
	if kind == nil && req.ServiceID != nil {
		appointment := model.KindAppointment
		kind = &appointment
	}
	if kind != nil {
		if !kind.Valid() {
			return model.DayEntry{}, invalid("block_type", "unknown kind %q", *kind)
		}
		patch.Kind = kind
		if kind.IsBlock() {
			if req.ServiceID != nil && *req.ServiceID != "" {
				return model.DayEntry{}, invalid("service_id", "blocks do not take a service")
			}
			none := ""
			blocked := model.StatusBlocked
			patch.ServiceID, patch.Status = &none, &blocked
		} else if err := s.appointmentPatch(ctx, owner, req, &patch); err != nil {
			return model.DayEntry{}, err
		}
	}
	if patch.Empty() {
		return model.DayEntry{}, invalid("body", "nothing to update")
	}

	sess := s.session(owner)
	key := "update:" + id
	if !sess.begin(key) {
		return model.DayEntry{}, ErrBusy
	}
	defer sess.end(key)

	sess.storeMu.Lock()
	defer sess.storeMu.Unlock()

	saved, err := s.store.UpdateEntry(ctx, owner, id, patch)
	if err != nil {
		metrics.IncStoreError("update")
		return model.DayEntry{}, fmt.Errorf("update entry %s: %w", id, err)
	}
	return s.applySaved(owner, sess, saved, false, s.Settings())
}

// appointmentPatch fills patch for an entry that is, or becomes, an
// appointment. The service must exist; duration and title default to the
// service's and the status may not be blocked.
func (s *Service) appointmentPatch(ctx context.Context, owner string, req EditRequest, patch *model.EntryPatch) error {
	if req.ServiceID == nil || *req.ServiceID == "" {
		return invalid("service_id", "is required for appointments")
	}
	if req.Status != nil && *req.Status == model.StatusBlocked {
		return invalid("status", "appointments cannot be blocked")
	}
	svc, err := s.lookupService(ctx, owner, *req.ServiceID)
	if err != nil {
		return err
	}

	patch.ServiceID = req.ServiceID
	if patch.Status == nil {
		scheduled := model.StatusScheduled
		patch.Status = &scheduled
	}
	if patch.DurationMinutes == nil {
		if svc.DurationMinutes <= 0 {
			return invalid("duration_minutes", "service %q has no duration", svc.Name)
		}
		duration := svc.DurationMinutes
		patch.DurationMinutes = &duration
	}
	if patch.Title == nil {
		title := svc.Name
		patch.Title = &title
	}
	return nil
}

func (s *Service) applySaved(owner string, sess *Session, saved model.ScheduleEntry, created bool, settings Settings) (model.DayEntry, error) {
	entry, err := reconcile.FromRecord(saved, settings.Location)
	if err != nil {
		metrics.IncMalformedEntry("saved")
		s.logger.Error().Err(err).Str("entry_id", saved.ID).Msg("store returned a malformed record")
		return model.DayEntry{}, err
	}
	sess.apply(func(current []model.DayEntry) []model.DayEntry {
		return reconcile.ApplyUpsert(current, entry)
	})

	op := "update"
	if created {
		op = "create"
	}
	metrics.IncEntryChange(op, string(entry.Kind))
	s.publish(events.Event{Type: events.EntrySaved, OwnerEmail: owner, EntryID: entry.ID, Created: created, Entry: &entry})

	s.logger.Info().
		Str("owner", owner).
		Str("entry_id", entry.ID).
		Str("technician_id", entry.TechnicianID).
		Str("start", entry.Date()+" "+entry.StartTime).
		Int("duration", entry.DurationMinutes).
		Str("op", op).
		Msg("schedule entry saved")
	return entry, nil
}

// Delete removes entry id. An entry the store no longer has is dropped from
// the held state and reported as deleted.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return invalid("owner", "is required")
	}
	if id == "" {
		return invalid("id", "is required")
	}

	sess := s.session(owner)
	key := "delete:" + id
	if !sess.begin(key) {
		return ErrBusy
	}
	defer sess.end(key)

	sess.storeMu.Lock()
	defer sess.storeMu.Unlock()

	err := s.store.DeleteEntry(ctx, owner, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Warn().Str("owner", owner).Str("entry_id", id).Msg("entry already gone from store")
	case err != nil:
		metrics.IncStoreError("delete")
		return fmt.Errorf("delete entry %s: %w", id, err)
	}

	sess.apply(func(current []model.DayEntry) []model.DayEntry {
		return reconcile.ApplyDelete(current, id)
	})
	metrics.IncEntryChange("delete", "")
	s.publish(events.Event{Type: events.EntryDeleted, OwnerEmail: owner, EntryID: id})
	return nil
}

func (s *Service) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
