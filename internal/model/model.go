package model

import "time"

type Status string

const (
	StatusApplied     Status = "Applied"
	StatusPhoneScreen Status = "Phone Screen"
	StatusInterview   Status = "Interview"
	StatusOffer       Status = "Offer"
	StatusRejected    Status = "Rejected"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{
	StatusApplied,
	StatusPhoneScreen,
	StatusInterview,
	StatusOffer,
	StatusRejected,
}

func (s Status) Known() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseStatus resolves a drop target or filter value to a board status.
func ParseStatus(value string) (Status, bool) {
	status := Status(value)
	if !status.Known() {
		return "", false
	}
	return status, true
}

type Application struct {
	ID          int64     `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Status      Status    `json:"status"`
	DateApplied time.Time `json:"date_applied"`
	Location    string    `json:"location,omitempty"`
	SalaryRange string    `json:"salary_range,omitempty"`
	JobURL      string    `json:"job_url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ApplicationInput struct {
	Company     string
	Position    string
	Status      Status
	DateApplied time.Time
	Location    string
	SalaryRange string
	JobURL      string
	Notes       string
}

// ApplicationPatch carries only the fields an update should touch.
type ApplicationPatch struct {
	Company     *string
	Position    *string
	Status      *Status
	DateApplied *time.Time
	Location    *string
	SalaryRange *string
	JobURL      *string
	Notes       *string
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Stats struct {
	TotalApplications int            `json:"total_applications"`
	ResponseRate      float64        `json:"response_rate"`
	ByStatus          map[string]int `json:"by_status"`
}

type HistoryEntry struct {
	ID            int64
	ApplicationID int64
	EventType     string
	Details       string
	CreatedAt     time.Time
}

type SortField string

const (
	SortCompany     SortField = "company"
	SortPosition    SortField = "position"
	SortLocation    SortField = "location"
	SortStatus      SortField = "status"
	SortDateApplied SortField = "date_applied"
)

var SortFields = []SortField{SortCompany, SortPosition, SortLocation, SortStatus, SortDateApplied}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FilterAll disables the status filter.
const FilterAll = "All"

type ViewControls struct {
	SearchTerm    string        `json:"search_term"`
	StatusFilter  string        `json:"status_filter"`
	SortField     SortField     `json:"sort_field"`
	SortDirection SortDirection `json:"sort_direction"`
}

func DefaultControls() ViewControls {
	return ViewControls{
		StatusFilter:  FilterAll,
		SortField:     SortDateApplied,
		SortDirection: SortDesc,
	}
}

type ViewMode string

const (
	ViewTable ViewMode = "table"
	ViewBoard ViewMode = "board"
)
