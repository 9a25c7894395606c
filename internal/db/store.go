package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
)

const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventStatus   = "status"
	EventFavorite = "favorite"
	EventDeleted  = "deleted"
)

// Store keeps the last fetched application list for offline starts and a
// local log of the changes this client forwarded to the API.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// ReplaceApplications swaps the snapshot for apps, preserving their order.
func (s *Store) ReplaceApplications(ctx context.Context, apps []model.Application) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM applications"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO applications (
		id, load_order, company, position, status, date_applied, location,
		salary_range, job_url, notes, is_favorite, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, app := range apps {
		if _, err := stmt.ExecContext(ctx,
			app.ID,
			i,
			app.Company,
			app.Position,
			string(app.Status),
			nullTime(app.DateApplied),
			app.Location,
			app.SalaryRange,
			app.JobURL,
			app.Notes,
			app.IsFavorite,
			nullTime(app.CreatedAt),
			nullTime(app.UpdatedAt),
		); err != nil {
			return fmt.Errorf("save application %d: %w", app.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) ListApplications(ctx context.Context) ([]model.Application, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT
		id, company, position, status, date_applied, location, salary_range,
		job_url, notes, is_favorite, created_at, updated_at
	FROM applications ORDER BY load_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Application{}
	for rows.Next() {
		var (
			app                               model.Application
			status                            string
			dateApplied, createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(
			&app.ID,
			&app.Company,
			&app.Position,
			&status,
			&dateApplied,
			&app.Location,
			&app.SalaryRange,
			&app.JobURL,
			&app.Notes,
			&app.IsFavorite,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, err
		}
		app.Status = model.Status(status)
		app.DateApplied = dateApplied.Time
		app.CreatedAt = createdAt.Time
		app.UpdatedAt = updatedAt.Time
		result = append(result, app)
	}
	return result, rows.Err()
}

func (s *Store) AddHistory(ctx context.Context, applicationID int64, eventType, details string) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO history (application_id, event_type, details, created_at) VALUES (?, ?, ?, ?)",
		applicationID, eventType, details, time.Now().UTC(),
	)
	return err
}

// ListHistory returns the entries for one application, newest first.
func (s *Store) ListHistory(ctx context.Context, applicationID int64) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, application_id, event_type, details, created_at
	FROM history WHERE application_id = ? ORDER BY created_at DESC, id DESC`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []model.HistoryEntry{}
	for rows.Next() {
		var entry model.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.ApplicationID, &entry.EventType, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (s *Store) RecordCreated(ctx context.Context, app model.Application) error {
	return s.AddHistory(ctx, app.ID, EventCreated, FormatCreated(app))
}

func (s *Store) RecordDeleted(ctx context.Context, app model.Application) error {
	return s.AddHistory(ctx, app.ID, EventDeleted, FormatDeleted(app))
}

func (s *Store) RecordUpdated(ctx context.Context, before, after model.Application) error {
	eventType := EventUpdated
	switch {
	case before.Status != after.Status && onlyStatusChanged(before, after):
		eventType = EventStatus
	case before.IsFavorite != after.IsFavorite:
		eventType = EventFavorite
	}
	return s.AddHistory(ctx, after.ID, eventType, FormatDiff(before, after))
}

func FormatCreated(app model.Application) string {
	return fmt.Sprintf("created: company='%s' position='%s' status=%s applied=%s", app.Company, app.Position, app.Status, formatDate(app.DateApplied))
}

func FormatDeleted(app model.Application) string {
	return fmt.Sprintf("deleted: company='%s' position='%s' status=%s applied=%s", app.Company, app.Position, app.Status, formatDate(app.DateApplied))
}

func FormatDiff(before, after model.Application) string {
	changes := []string{}
	if before.Company != after.Company {
		changes = append(changes, formatChange("company", before.Company, after.Company))
	}
	if before.Position != after.Position {
		changes = append(changes, formatChange("position", before.Position, after.Position))
	}
	if before.Status != after.Status {
		changes = append(changes, formatChange("status", string(before.Status), string(after.Status)))
	}
	if formatDate(before.DateApplied) != formatDate(after.DateApplied) {
		changes = append(changes, formatChange("applied", formatDate(before.DateApplied), formatDate(after.DateApplied)))
	}
	if before.Location != after.Location {
		changes = append(changes, formatChange("location", before.Location, after.Location))
	}
	if before.SalaryRange != after.SalaryRange {
		changes = append(changes, formatChange("salary", before.SalaryRange, after.SalaryRange))
	}
	if before.JobURL != after.JobURL {
		changes = append(changes, formatChange("url", before.JobURL, after.JobURL))
	}
	if before.Notes != after.Notes {
		changes = append(changes, formatChange("notes", before.Notes, after.Notes))
	}
	if before.IsFavorite != after.IsFavorite {
		changes = append(changes, formatChange("favorite", fmt.Sprintf("%t", before.IsFavorite), fmt.Sprintf("%t", after.IsFavorite)))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}

	return "updated: " + strings.Join(changes, "; ")
}

func onlyStatusChanged(before, after model.Application) bool {
	before.Status = after.Status
	before.UpdatedAt = after.UpdatedAt
	return before == after
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "none"
	}
	return value.Format("2006-01-02")
}

func nullTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value.UTC(), Valid: true}
}
