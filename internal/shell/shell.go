// Package shell owns the canonical application list and view controls shared by
// the terminal UI and the local web view. It forwards board intents and edits
// to the API and keeps the offline snapshot current.
package shell

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Joseda-hg/lazyjobs/internal/board"
	"github.com/Joseda-hg/lazyjobs/internal/model"
	"github.com/Joseda-hg/lazyjobs/internal/view"
)

// API is the subset of the collaborator client the shell drives.
type API interface {
	ListApplications(ctx context.Context) ([]model.Application, error)
	CreateApplication(ctx context.Context, input model.ApplicationInput) (model.Application, error)
	UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (model.Application, error)
	DeleteApplication(ctx context.Context, id int64) error
	ToggleFavorite(ctx context.Context, id int64) (model.Application, error)
	Stats(ctx context.Context) (model.Stats, error)
}

// Cache is the local snapshot and history log.
type Cache interface {
	ReplaceApplications(ctx context.Context, apps []model.Application) error
	ListApplications(ctx context.Context) ([]model.Application, error)
	ListHistory(ctx context.Context, applicationID int64) ([]model.HistoryEntry, error)
	RecordCreated(ctx context.Context, app model.Application) error
	RecordUpdated(ctx context.Context, before, after model.Application) error
	RecordDeleted(ctx context.Context, app model.Application) error
}

type Shell struct {
	mu       sync.Mutex
	api      API
	cache    Cache
	records  []model.Application
	controls model.ViewControls
	board    *board.Controller
	offline  bool
}

// New builds a shell. cache may be nil, in which case nothing is persisted.
func New(api API, cache Cache) *Shell {
	s := &Shell{
		api:      api,
		cache:    cache,
		records:  []model.Application{},
		controls: model.DefaultControls(),
	}
	s.board = board.NewController(s.findLocked)
	return s
}

// LoadCached replaces the records with the offline snapshot.
func (s *Shell) LoadCached(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	records, err := s.cache.ListApplications(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.offline = true
	return nil
}

// Refresh fetches the list from the API. On failure the current records are
// kept and the shell reports itself offline.
func (s *Shell) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Shell) refreshLocked(ctx context.Context) error {
	records, err := s.api.ListApplications(ctx)
	if err != nil {
		s.offline = true
		log.Printf("refresh applications: %v", err)
		return fmt.Errorf("refresh applications: %w", err)
	}

	s.records = records
	s.offline = false

	for _, record := range unrecognized(records) {
		log.Printf("application %d has unrecognized status %q; it is hidden from the board", record.ID, record.Status)
	}

	if s.cache != nil {
		if err := s.cache.ReplaceApplications(ctx, records); err != nil {
			log.Printf("save snapshot: %v", err)
		}
	}
	return nil
}

func (s *Shell) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

func (s *Shell) Records() []model.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

func (s *Shell) Find(id int64) (model.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

func (s *Shell) findLocked(id int64) (model.Application, bool) {
	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return model.Application{}, false
}

// Projection recomputes the view-model from the current records and controls.
func (s *Shell) Projection() view.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.Project(s.records, s.controls)
}

func (s *Shell) Controls() model.ViewControls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

func (s *Shell) SetControls(controls model.ViewControls) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls = controls
}

func (s *Shell) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls.SearchTerm = term
}

// SetStatusFilter accepts "All", "" or a board status.
func (s *Shell) SetStatusFilter(filter string) error {
	if filter == "" {
		filter = model.FilterAll
	}
	if filter != model.FilterAll {
		if _, ok := model.ParseStatus(filter); !ok {
			return fmt.Errorf("unknown status filter %q", filter)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls.StatusFilter = filter
	return nil
}

// CycleStatusFilter steps All, Applied, ..., Rejected, All.
func (s *Shell) CycleStatusFilter() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	options := make([]string, 0, len(model.Statuses)+1)
	options = append(options, model.FilterAll)
	for _, status := range model.Statuses {
		options = append(options, string(status))
	}

	next := options[0]
	for i, option := range options {
		if option == s.controls.StatusFilter {
			next = options[(i+1)%len(options)]
			break
		}
	}
	s.controls.StatusFilter = next
	return next
}

func (s *Shell) SortBy(field model.SortField) model.ViewControls {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls = view.ToggleSort(s.controls, field)
	return s.controls
}

// ClearFilters resets the search term and status filter, keeping the sort.
func (s *Shell) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls.SearchTerm = ""
	s.controls.StatusFilter = model.FilterAll
}

func (s *Shell) DragStart(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.DragStart(id)
}

func (s *Shell) DragEnd(id int64, target string) board.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.DragEnd(id, target)
}

func (s *Shell) DragCancel() board.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.DragCancel()
}

func (s *Shell) Dragging() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Active()
}

// Drop runs a complete gesture on a throwaway controller and applies the
// result. The session held for the terminal UI is left untouched.
func (s *Shell) Drop(ctx context.Context, id int64, target string) (board.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	controller := board.NewController(s.findLocked)
	controller.DragStart(id)
	intent := controller.DragEnd(id, target)
	return intent, s.applyLocked(ctx, intent)
}

// Apply forwards a status change to the API, logs it locally and refreshes.
// No-op intents do nothing.
func (s *Shell) Apply(ctx context.Context, intent board.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, intent)
}

func (s *Shell) applyLocked(ctx context.Context, intent board.Intent) error {
	if intent.IsNoOp() {
		return nil
	}

	status := intent.To
	_, err := s.updateLocked(ctx, intent.RecordID, model.ApplicationPatch{Status: &status})
	if err != nil {
		return fmt.Errorf("apply %s: %w", intent, err)
	}
	return nil
}

func (s *Shell) Create(ctx context.Context, input model.ApplicationInput) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.api.CreateApplication(ctx, input)
	if err != nil {
		return model.Application{}, err
	}
	s.record(func(cache Cache) error { return cache.RecordCreated(ctx, created) })
	s.refreshAfterWrite(ctx)
	return created, nil
}

func (s *Shell) Update(ctx context.Context, id int64, patch model.ApplicationPatch) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, id, patch)
}

func (s *Shell) updateLocked(ctx context.Context, id int64, patch model.ApplicationPatch) (model.Application, error) {
	before, known := s.findLocked(id)

	updated, err := s.api.UpdateApplication(ctx, id, patch)
	if err != nil {
		return model.Application{}, err
	}
	if known {
		s.record(func(cache Cache) error { return cache.RecordUpdated(ctx, before, updated) })
	}
	s.refreshAfterWrite(ctx)
	return updated, nil
}

func (s *Shell) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, known := s.findLocked(id)
	if err := s.api.DeleteApplication(ctx, id); err != nil {
		return err
	}
	if known {
		s.record(func(cache Cache) error { return cache.RecordDeleted(ctx, before) })
	}
	s.refreshAfterWrite(ctx)
	return nil
}

func (s *Shell) ToggleFavorite(ctx context.Context, id int64) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, known := s.findLocked(id)
	updated, err := s.api.ToggleFavorite(ctx, id)
	if err != nil {
		return model.Application{}, err
	}
	if known {
		s.record(func(cache Cache) error { return cache.RecordUpdated(ctx, before, updated) })
	}
	s.refreshAfterWrite(ctx)
	return updated, nil
}

// Stats asks the API and falls back to counting the local records.
func (s *Shell) Stats(ctx context.Context) model.Stats {
	stats, err := s.api.Stats(ctx)
	if err == nil {
		return stats
	}
	log.Printf("stats: %v", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	return view.Summarize(s.records)
}

func (s *Shell) History(ctx context.Context, id int64) ([]model.HistoryEntry, error) {
	if s.cache == nil {
		return []model.HistoryEntry{}, nil
	}
	return s.cache.ListHistory(ctx, id)
}

func (s *Shell) record(write func(Cache) error) {
	if s.cache == nil {
		return
	}
	if err := write(s.cache); err != nil {
		log.Printf("record history: %v", err)
	}
}

// refreshAfterWrite reloads the list once a write succeeded. A failed reload
// does not undo the write, so it is only logged.
func (s *Shell) refreshAfterWrite(ctx context.Context) {
	_ = s.refreshLocked(ctx)
}

func unrecognized(records []model.Application) []model.Application {
	result := []model.Application{}
	for _, record := range records {
		if !record.Status.Known() {
			result = append(result, record)
		}
	}
	return result
}
