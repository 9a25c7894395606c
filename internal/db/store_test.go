package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
)

func TestReplaceApplicationsKeepsLoadOrder(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	applied := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first := []model.Application{
		{ID: 9, Company: "Zeta", Position: "Engineer", Status: model.StatusOffer, DateApplied: applied, IsFavorite: true},
		{ID: 2, Company: "Acme", Position: "Designer", Status: model.Status("Ghosted"), Location: "Remote"},
		{ID: 5, Company: "Beta", Position: "Analyst", Status: model.StatusApplied},
	}
	if err := store.ReplaceApplications(ctx, first); err != nil {
		t.Fatalf("replace applications: %v", err)
	}

	loaded, err := store.ListApplications(ctx)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(loaded))
	}
	for i, want := range []int64{9, 2, 5} {
		if loaded[i].ID != want {
			t.Fatalf("expected id %d at %d, got %d", want, i, loaded[i].ID)
		}
	}
	if !loaded[0].DateApplied.Equal(applied) {
		t.Fatalf("expected date %v, got %v", applied, loaded[0].DateApplied)
	}
	if !loaded[0].IsFavorite {
		t.Fatalf("expected favorite to survive the snapshot")
	}
	if loaded[1].Status != "Ghosted" {
		t.Fatalf("expected unknown status to be kept verbatim, got %q", loaded[1].Status)
	}
	if !loaded[2].DateApplied.IsZero() {
		t.Fatalf("expected missing date to stay zero")
	}

	if err := store.ReplaceApplications(ctx, first[2:]); err != nil {
		t.Fatalf("replace applications again: %v", err)
	}
	loaded, err = store.ListApplications(ctx)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != 5 {
		t.Fatalf("expected snapshot to be replaced, got %+v", loaded)
	}
}

func TestListApplicationsEmpty(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	loaded, err := store.ListApplications(context.Background())
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", loaded)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	before := model.Application{ID: 1, Company: "Acme", Position: "Engineer", Status: model.StatusApplied}
	after := before
	after.Status = model.StatusInterview

	if err := store.RecordCreated(ctx, before); err != nil {
		t.Fatalf("record created: %v", err)
	}
	if err := store.RecordUpdated(ctx, before, after); err != nil {
		t.Fatalf("record updated: %v", err)
	}
	if err := store.AddHistory(ctx, 2, EventDeleted, "other application"); err != nil {
		t.Fatalf("add history: %v", err)
	}

	history, err := store.ListHistory(ctx, 1)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].EventType != EventStatus {
		t.Fatalf("expected newest entry to be %q, got %q", EventStatus, history[0].EventType)
	}
	if history[0].Details != "updated: status: 'Applied' -> 'Interview'" {
		t.Fatalf("unexpected details %q", history[0].Details)
	}
	if history[1].EventType != EventCreated {
		t.Fatalf("expected oldest entry to be %q, got %q", EventCreated, history[1].EventType)
	}
}

func TestFormatDiff(t *testing.T) {
	before := model.Application{Company: "Acme", Position: "Engineer", Notes: "call"}
	after := before
	after.Notes = ""
	after.IsFavorite = true

	got := FormatDiff(before, after)
	if !strings.Contains(got, "notes: 'call' -> 'none'") {
		t.Fatalf("expected notes change, got %q", got)
	}
	if !strings.Contains(got, "favorite: 'false' -> 'true'") {
		t.Fatalf("expected favorite change, got %q", got)
	}
	if FormatDiff(before, before) != "updated: no changes" {
		t.Fatalf("expected no changes")
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}
