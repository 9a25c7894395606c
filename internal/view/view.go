// Package view derives the table rows and board columns painted for a list of
// applications. Everything here is a pure function of its inputs.
package view

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result is the view-model for one render.
type Result struct {
	TotalCount    int                 `json:"total_count"`
	FilteredCount int                 `json:"filtered_count"`
	Rows          []model.Application `json:"rows"`
	Columns       []Column            `json:"columns"`
	// Unrecognized holds filtered records whose status has no board column.
	Unrecognized []model.Application `json:"unrecognized"`
}

type Column struct {
	Status  model.Status        `json:"status"`
	Records []model.Application `json:"records"`
}

// Column returns the board column for status, or nil for an unknown status.
func (r Result) Column(status model.Status) []model.Application {
	for _, column := range r.Columns {
		if column.Status == status {
			return column.Records
		}
	}
	return nil
}

// Project filters records by controls, sorts the table rows and partitions the
// board columns. Board columns keep the incoming record order.
func Project(records []model.Application, controls model.ViewControls) Result {
	p := newProjector()

	search := p.fold(controls.SearchTerm)
	filtered := make([]model.Application, 0, len(records))
	for _, record := range records {
		if p.matches(record, search, controls.StatusFilter) {
			filtered = append(filtered, record)
		}
	}

	columns, unrecognized := group(filtered)

	return Result{
		TotalCount:    len(records),
		FilteredCount: len(filtered),
		Rows:          p.sort(filtered, controls.SortField, controls.SortDirection),
		Columns:       columns,
		Unrecognized:  unrecognized,
	}
}

// ToggleSort applies a header click: the active field flips direction, any
// other field becomes active in ascending order.
func ToggleSort(controls model.ViewControls, field model.SortField) model.ViewControls {
	if controls.SortField == field {
		if controls.SortDirection == model.SortAsc {
			controls.SortDirection = model.SortDesc
		} else {
			controls.SortDirection = model.SortAsc
		}
		return controls
	}
	controls.SortField = field
	controls.SortDirection = model.SortAsc
	return controls
}

// Summarize computes dashboard statistics locally. Any status other than
// Applied counts as a response.
func Summarize(records []model.Application) model.Stats {
	byStatus := make(map[string]int)
	responses := 0
	for _, record := range records {
		byStatus[string(record.Status)]++
		if record.Status != model.StatusApplied {
			responses++
		}
	}

	rate := 0.0
	if len(records) > 0 {
		rate = math.Round(float64(responses)/float64(len(records))*1000) / 10
	}

	return model.Stats{
		TotalApplications: len(records),
		ResponseRate:      rate,
		ByStatus:          byStatus,
	}
}

// projector owns a Caser, which is stateful, so one is built per Project call.
type projector struct {
	lower cases.Caser
}

func newProjector() *projector {
	return &projector{lower: cases.Lower(language.Und)}
}

func (p *projector) fold(value string) string {
	if value == "" {
		return ""
	}
	return p.lower.String(value)
}

func (p *projector) matches(record model.Application, search string, statusFilter string) bool {
	if !statusMatches(record.Status, statusFilter) {
		return false
	}
	if search == "" {
		return true
	}
	if strings.Contains(p.fold(record.Company), search) {
		return true
	}
	if strings.Contains(p.fold(record.Position), search) {
		return true
	}
	return record.Location != "" && strings.Contains(p.fold(record.Location), search)
}

func statusMatches(status model.Status, filter string) bool {
	if filter == "" || filter == model.FilterAll {
		return true
	}
	return status == model.Status(filter)
}

type sortEntry struct {
	record model.Application
	text   string
	date   time.Time
}

func (p *projector) sort(records []model.Application, field model.SortField, direction model.SortDirection) []model.Application {
	entries := make([]sortEntry, 0, len(records))
	for _, record := range records {
		entry := sortEntry{record: record}
		switch field {
		case model.SortCompany:
			entry.text = p.fold(record.Company)
		case model.SortPosition:
			entry.text = p.fold(record.Position)
		case model.SortLocation:
			entry.text = p.fold(record.Location)
		case model.SortStatus:
			entry.text = p.fold(string(record.Status))
		case model.SortDateApplied:
			entry.date = dateOnly(record.DateApplied)
		}
		entries = append(entries, entry)
	}

	sign := 1
	if direction == model.SortDesc {
		sign = -1
	}
	slices.SortStableFunc(entries, func(a, b sortEntry) int {
		if field == model.SortDateApplied {
			return sign * a.date.Compare(b.date)
		}
		return sign * strings.Compare(a.text, b.text)
	})

	rows := make([]model.Application, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, entry.record)
	}
	return rows
}

func dateOnly(value time.Time) time.Time {
	if value.IsZero() {
		return time.Time{}
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

func group(records []model.Application) ([]Column, []model.Application) {
	indexByStatus := make(map[model.Status]int, len(model.Statuses))
	columns := make([]Column, 0, len(model.Statuses))
	for i, status := range model.Statuses {
		indexByStatus[status] = i
		columns = append(columns, Column{Status: status, Records: []model.Application{}})
	}

	unrecognized := []model.Application{}
	for _, record := range records {
		index, ok := indexByStatus[record.Status]
		if !ok {
			unrecognized = append(unrecognized, record)
			continue
		}
		columns[index].Records = append(columns[index].Records, record)
	}
	return columns, unrecognized
}
