package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/config"
	"github.com/Joseda-hg/lazyjobs/internal/db"
	"github.com/Joseda-hg/lazyjobs/internal/model"
	"github.com/Joseda-hg/lazyjobs/internal/shell"
)

type memoryAPI struct {
	apps    []model.Application
	patches []model.ApplicationPatch
	deletes []int64
}

func (m *memoryAPI) ListApplications(context.Context) ([]model.Application, error) {
	return append([]model.Application(nil), m.apps...), nil
}

func (m *memoryAPI) CreateApplication(_ context.Context, input model.ApplicationInput) (model.Application, error) {
	app := model.Application{
		ID:          int64(len(m.apps) + 1),
		Company:     input.Company,
		Position:    input.Position,
		Status:      input.Status,
		DateApplied: input.DateApplied,
		Location:    input.Location,
	}
	m.apps = append(m.apps, app)
	return app, nil
}

func (m *memoryAPI) UpdateApplication(_ context.Context, id int64, patch model.ApplicationPatch) (model.Application, error) {
	m.patches = append(m.patches, patch)
	for i := range m.apps {
		if m.apps[i].ID != id {
			continue
		}
		if patch.Status != nil {
			m.apps[i].Status = *patch.Status
		}
		if patch.Position != nil {
			m.apps[i].Position = *patch.Position
		}
		return m.apps[i], nil
	}
	return model.Application{}, fmt.Errorf("application %d not found", id)
}

func (m *memoryAPI) DeleteApplication(_ context.Context, id int64) error {
	m.deletes = append(m.deletes, id)
	for i := range m.apps {
		if m.apps[i].ID == id {
			m.apps = append(m.apps[:i], m.apps[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("application %d not found", id)
}

func (m *memoryAPI) ToggleFavorite(_ context.Context, id int64) (model.Application, error) {
	for i := range m.apps {
		if m.apps[i].ID == id {
			m.apps[i].IsFavorite = !m.apps[i].IsFavorite
			return m.apps[i], nil
		}
	}
	return model.Application{}, fmt.Errorf("application %d not found", id)
}

func (m *memoryAPI) Stats(context.Context) (model.Stats, error) {
	return model.Stats{}, fmt.Errorf("stats unavailable")
}

type memoryPrefs struct {
	prefs config.Preferences
	saves int
}

func (p *memoryPrefs) Get() config.Preferences {
	return p.prefs
}

func (p *memoryPrefs) Set(prefs config.Preferences) error {
	p.prefs = prefs
	p.saves++
	return nil
}

func TestBoardDragMovesCardToTargetColumn(t *testing.T) {
	api := seedAPI()
	ui := newTestUI(t, api, &memoryPrefs{prefs: config.Preferences{ViewMode: model.ViewBoard}})

	if ui.mode != model.ViewBoard {
		t.Fatalf("expected board mode from preferences")
	}
	if err := ui.pickUp(nil, nil); err != nil {
		t.Fatalf("pick up: %v", err)
	}
	if _, dragging := ui.shell.Dragging(); !dragging {
		t.Fatalf("expected a drag session")
	}
	for i := 0; i < 2; i++ {
		if err := ui.moveRight(nil, nil); err != nil {
			t.Fatalf("move right: %v", err)
		}
	}
	if ui.column != 0 {
		t.Fatalf("moving the drop target should not move column focus, got %d", ui.column)
	}
	if err := ui.drop(nil, nil); err != nil {
		t.Fatalf("drop: %v", err)
	}

	if len(api.patches) != 1 {
		t.Fatalf("expected 1 update, got %d", len(api.patches))
	}
	if got := *api.patches[0].Status; got != model.StatusInterview {
		t.Fatalf("expected Interview, got %q", got)
	}
	if ui.column != 2 {
		t.Fatalf("expected focus to follow the card to column 2, got %d", ui.column)
	}
	selected := ui.selectedApplication()
	if selected == nil || selected.ID != 1 {
		t.Fatalf("expected moved card to stay selected, got %+v", selected)
	}
	if len(ui.history) != 1 || ui.history[0].EventType != db.EventStatus {
		t.Fatalf("expected a status history entry, got %+v", ui.history)
	}
}

func TestBoardDropOnSameColumnOrCancelIsNoOp(t *testing.T) {
	api := seedAPI()
	ui := newTestUI(t, api, &memoryPrefs{prefs: config.Preferences{ViewMode: model.ViewBoard}})

	if err := ui.pickUp(nil, nil); err != nil {
		t.Fatalf("pick up: %v", err)
	}
	if err := ui.drop(nil, nil); err != nil {
		t.Fatalf("drop: %v", err)
	}

	if err := ui.pickUp(nil, nil); err != nil {
		t.Fatalf("pick up: %v", err)
	}
	if err := ui.moveRight(nil, nil); err != nil {
		t.Fatalf("move right: %v", err)
	}
	if err := ui.cancelDrag(nil, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := ui.drop(nil, nil); err != nil {
		t.Fatalf("drop after cancel: %v", err)
	}

	if len(api.patches) != 0 {
		t.Fatalf("expected no updates, got %d", len(api.patches))
	}
	if _, dragging := ui.shell.Dragging(); dragging {
		t.Fatalf("expected drag session to be cleared")
	}
}

func TestPickUpIgnoredInTableMode(t *testing.T) {
	ui := newTestUI(t, seedAPI(), nil)

	if err := ui.pickUp(nil, nil); err != nil {
		t.Fatalf("pick up: %v", err)
	}
	if _, dragging := ui.shell.Dragging(); dragging {
		t.Fatalf("table mode should not start a drag")
	}
}

func TestSortAndFilterKeys(t *testing.T) {
	ui := newTestUI(t, seedAPI(), nil)

	if got := ui.result.Rows[0].ID; got != 3 {
		t.Fatalf("expected newest application first by default, got %d", got)
	}

	if err := ui.sortBy(model.SortCompany)(nil, nil); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if got := ui.result.Rows[0].Company; got != "Acme" {
		t.Fatalf("expected Acme first, got %q", got)
	}
	if err := ui.sortBy(model.SortCompany)(nil, nil); err != nil {
		t.Fatalf("sort again: %v", err)
	}
	if got := ui.result.Rows[0].Company; got != "Gamma" {
		t.Fatalf("expected Gamma first after toggling, got %q", got)
	}

	if err := ui.cycleFilter(nil, nil); err != nil {
		t.Fatalf("cycle filter: %v", err)
	}
	if ui.result.FilteredCount != 1 {
		t.Fatalf("expected 1 Applied row, got %d", ui.result.FilteredCount)
	}
	if err := ui.clearFilters(nil, nil); err != nil {
		t.Fatalf("clear filters: %v", err)
	}
	if ui.result.FilteredCount != 3 {
		t.Fatalf("expected all rows after clearing, got %d", ui.result.FilteredCount)
	}
}

func TestDeleteNeedsSecondPress(t *testing.T) {
	api := seedAPI()
	ui := newTestUI(t, api, nil)

	if err := ui.deleteApplication(nil, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.deletes) != 0 {
		t.Fatalf("first press should only ask for confirmation")
	}
	if err := ui.deleteApplication(nil, nil); err != nil {
		t.Fatalf("delete again: %v", err)
	}
	if len(api.deletes) != 1 || api.deletes[0] != 3 {
		t.Fatalf("expected application 3 to be deleted, got %v", api.deletes)
	}
	if ui.result.TotalCount != 2 {
		t.Fatalf("expected 2 applications left, got %d", ui.result.TotalCount)
	}
}

func TestFormCreatesAndEditsApplications(t *testing.T) {
	api := seedAPI()
	ui := newTestUI(t, api, nil)

	if err := ui.addApplication(nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	ui.form.fields[fieldCompany].Value = "Delta"
	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.form == nil || ui.status == "" {
		t.Fatalf("expected validation error to keep the form open")
	}
	ui.form.fields[fieldPosition].Value = "Product Manager"
	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected form to close")
	}
	if ui.result.TotalCount != 4 {
		t.Fatalf("expected 4 applications, got %d", ui.result.TotalCount)
	}

	ui.selectedRow = 0
	if err := ui.editApplication(nil, nil); err != nil {
		t.Fatalf("edit: %v", err)
	}
	editing := ui.form.applicationID
	ui.form.fields[fieldPosition].Value = "Staff Engineer"
	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if len(api.patches) != 1 {
		t.Fatalf("expected 1 update, got %d", len(api.patches))
	}
	patch := api.patches[0]
	if patch.Position == nil || *patch.Position != "Staff Engineer" {
		t.Fatalf("expected position change, got %+v", patch)
	}
	if patch.Company != nil || patch.Status != nil || patch.Notes != nil {
		t.Fatalf("expected only changed fields in the patch, got %+v", patch)
	}
	if record, ok := ui.shell.Find(editing); !ok || record.Position != "Staff Engineer" {
		t.Fatalf("expected edited record to be reloaded, got %+v", record)
	}
}

func TestViewAndThemePreferencesAreSaved(t *testing.T) {
	prefs := &memoryPrefs{}
	ui := newTestUI(t, seedAPI(), prefs)

	if err := ui.toggleViewMode(nil, nil); err != nil {
		t.Fatalf("toggle view: %v", err)
	}
	if err := ui.toggleDarkMode(nil, nil); err != nil {
		t.Fatalf("toggle dark: %v", err)
	}
	if prefs.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", prefs.saves)
	}
	if prefs.prefs.ViewMode != model.ViewBoard || !prefs.prefs.DarkMode {
		t.Fatalf("unexpected preferences %+v", prefs.prefs)
	}
	if ui.focus != columnView(0) {
		t.Fatalf("expected board focus, got %q", ui.focus)
	}
}

func TestParseFormFields(t *testing.T) {
	fields := buildFormFields(nil)
	fields[fieldCompany].Value = " Acme "
	fields[fieldPosition].Value = "Engineer"
	fields[fieldDateApplied].Value = "2024-02-30"
	if _, err := parseFormFields(fields); err == nil {
		t.Fatalf("expected invalid date error")
	}

	fields[fieldDateApplied].Value = ""
	fields[fieldStatus].Value = "Ghosted"
	if _, err := parseFormFields(fields); err == nil {
		t.Fatalf("expected invalid status error")
	}

	fields[fieldStatus].Value = cycleStatus(string(model.StatusRejected), 1)
	input, err := parseFormFields(fields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if input.Company != "Acme" || input.Status != model.StatusApplied {
		t.Fatalf("unexpected input %+v", input)
	}
}

func seedAPI() *memoryAPI {
	return &memoryAPI{apps: []model.Application{
		{ID: 1, Company: "Acme", Position: "Engineer", Status: model.StatusApplied, DateApplied: date(1)},
		{ID: 2, Company: "Beta", Position: "Designer", Status: model.StatusPhoneScreen, DateApplied: date(2)},
		{ID: 3, Company: "Gamma", Position: "Analyst", Status: model.StatusOffer, DateApplied: date(3)},
	}}
}

func newTestUI(t *testing.T, api *memoryAPI, prefs Preferences) *UI {
	t.Helper()
	dbConn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbConn.Close() })

	ui := New(shell.New(api, db.NewStore(dbConn)), prefs)
	if err := ui.reload(nil, nil); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return ui
}

func date(day int) time.Time {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
}
