package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
)

const dateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type applicationJSON struct {
	ID          int64   `json:"id"`
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Status      string  `json:"status"`
	DateApplied *string `json:"date_applied"`
	JobURL      *string `json:"job_url"`
	Location    *string `json:"location"`
	SalaryRange *string `json:"salary_range"`
	Notes       *string `json:"notes"`
	IsFavorite  bool    `json:"is_favorite"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

type createRequest struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Status      string `json:"status"`
	DateApplied string `json:"date_applied"`
	JobURL      string `json:"job_url,omitempty"`
	Location    string `json:"location,omitempty"`
	SalaryRange string `json:"salary_range,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type patchRequest struct {
	Company     *string `json:"company,omitempty"`
	Position    *string `json:"position,omitempty"`
	Status      *string `json:"status,omitempty"`
	DateApplied *string `json:"date_applied,omitempty"`
	JobURL      *string `json:"job_url,omitempty"`
	Location    *string `json:"location,omitempty"`
	SalaryRange *string `json:"salary_range,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (c *Client) ListApplications(ctx context.Context) ([]model.Application, error) {
	env, err := c.do(ctx, http.MethodGet, "/applications", nil)
	if err != nil {
		return nil, err
	}

	result := make([]model.Application, 0, len(env.Applications))
	for _, row := range env.Applications {
		result = append(result, mapApplication(row))
	}
	return result, nil
}

func (c *Client) GetApplication(ctx context.Context, id int64) (model.Application, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/applications/%d", id), nil)
	if err != nil {
		return model.Application{}, err
	}
	return applicationFrom(env)
}

func (c *Client) CreateApplication(ctx context.Context, input model.ApplicationInput) (model.Application, error) {
	if strings.TrimSpace(input.Company) == "" || strings.TrimSpace(input.Position) == "" {
		return model.Application{}, fmt.Errorf("company and position are required")
	}
	status := input.Status
	if status == "" {
		status = model.StatusApplied
	}
	dateApplied := input.DateApplied
	if dateApplied.IsZero() {
		dateApplied = time.Now()
	}

	env, err := c.do(ctx, http.MethodPost, "/applications", createRequest{
		Company:     input.Company,
		Position:    input.Position,
		Status:      string(status),
		DateApplied: dateApplied.Format(dateLayout),
		JobURL:      input.JobURL,
		Location:    input.Location,
		SalaryRange: input.SalaryRange,
		Notes:       input.Notes,
	})
	if err != nil {
		return model.Application{}, err
	}
	return applicationFrom(env)
}

// UpdateApplication sends only the fields set on patch.
func (c *Client) UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (model.Application, error) {
	env, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%d", id), buildPatch(patch))
	if err != nil {
		return model.Application{}, err
	}
	return applicationFrom(env)
}

func (c *Client) DeleteApplication(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/applications/%d", id), nil)
	return err
}

func (c *Client) ToggleFavorite(ctx context.Context, id int64) (model.Application, error) {
	env, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%d/favorite", id), nil)
	if err != nil {
		return model.Application{}, err
	}
	return applicationFrom(env)
}

func applicationFrom(env envelope) (model.Application, error) {
	if env.Application == nil {
		return model.Application{}, fmt.Errorf("response has no application")
	}
	return mapApplication(*env.Application), nil
}

func buildPatch(patch model.ApplicationPatch) patchRequest {
	req := patchRequest{
		Company:     patch.Company,
		Position:    patch.Position,
		JobURL:      patch.JobURL,
		Location:    patch.Location,
		SalaryRange: patch.SalaryRange,
		Notes:       patch.Notes,
	}
	if patch.Status != nil {
		status := string(*patch.Status)
		req.Status = &status
	}
	if patch.DateApplied != nil {
		date := patch.DateApplied.Format(dateLayout)
		req.DateApplied = &date
	}
	return req
}

func mapApplication(row applicationJSON) model.Application {
	return model.Application{
		ID:          row.ID,
		Company:     row.Company,
		Position:    row.Position,
		Status:      model.Status(row.Status),
		DateApplied: parseDate(row.DateApplied),
		JobURL:      valueOf(row.JobURL),
		Location:    valueOf(row.Location),
		SalaryRange: valueOf(row.SalaryRange),
		Notes:       valueOf(row.Notes),
		IsFavorite:  row.IsFavorite,
		CreatedAt:   parseTimestamp(row.CreatedAt),
		UpdatedAt:   parseTimestamp(row.UpdatedAt),
	}
}

func valueOf(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func parseDate(value *string) time.Time {
	raw := valueOf(value)
	if len(raw) > len(dateLayout) {
		raw = raw[:len(dateLayout)]
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func parseTimestamp(value *string) time.Time {
	raw := valueOf(value)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
