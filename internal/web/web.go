// Package web serves a read-mostly browser view of the same applications the
// terminal UI shows, plus a drop endpoint for moving cards on the board.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
	"github.com/Joseda-hg/lazyjobs/internal/shell"
	"github.com/Joseda-hg/lazyjobs/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": func(value time.Time) string {
		if value.IsZero() {
			return "n/a"
		}
		return value.Format("2006-01-02")
	},
	"timestamp": func(value time.Time) string {
		return value.Local().Format("2006-01-02 15:04")
	},
}

var (
	indexTemplate       = template.Must(template.New("index.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl", "templates/index.tmpl"))
	boardTemplate       = template.Must(template.New("board.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl", "templates/board.tmpl"))
	applicationTemplate = template.Must(template.New("application.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl", "templates/application.tmpl"))
)

type Server struct {
	shell *shell.Shell
}

type pageData struct {
	Controls model.ViewControls
	Mode     model.ViewMode
	Result   view.Result
	Statuses []model.Status
	Sorts    []model.SortField
}

// SortLink is the URL a column header points at: the same field flips
// direction, a new field starts ascending.
func (p pageData) SortLink(field model.SortField) string {
	return p.link(view.ToggleSort(p.Controls, field), p.Mode)
}

// ModeLink switches between table and board, keeping the controls.
func (p pageData) ModeLink(mode model.ViewMode) string {
	return p.link(p.Controls, mode)
}

func (p pageData) Arrow(field model.SortField) string {
	if p.Controls.SortField != field {
		return ""
	}
	if p.Controls.SortDirection == model.SortAsc {
		return "↑"
	}
	return "↓"
}

func (p pageData) link(controls model.ViewControls, mode model.ViewMode) string {
	values := url.Values{}
	if controls.SearchTerm != "" {
		values.Set("q", controls.SearchTerm)
	}
	if controls.StatusFilter != "" && controls.StatusFilter != model.FilterAll {
		values.Set("status", controls.StatusFilter)
	}
	values.Set("sort", string(controls.SortField))
	values.Set("dir", string(controls.SortDirection))
	if mode == model.ViewBoard {
		values.Set("view", string(model.ViewBoard))
	}
	return "/?" + values.Encode()
}

type dropRequest struct {
	ID     int64  `json:"id"`
	Target string `json:"target"`
}

type dropResponse struct {
	Moved bool         `json:"moved"`
	From  model.Status `json:"from,omitempty"`
	To    model.Status `json:"to,omitempty"`
}

type applicationPayload struct {
	Application model.Application    `json:"application"`
	History     []model.HistoryEntry `json:"history"`
}

func NewServer(sh *shell.Shell) *Server {
	return &Server{shell: sh}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/applications/", s.applicationHandler)
	mux.HandleFunc("/api/projection", s.apiProjectionHandler)
	mux.HandleFunc("/api/applications/", s.apiApplicationHandler)
	mux.HandleFunc("/api/board/drop", s.apiDropHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}

	controls := controlsFromRequest(r)
	data := pageData{
		Controls: controls,
		Mode:     modeFromRequest(r),
		Result:   view.Project(s.shell.Records(), controls),
		Statuses: model.Statuses,
		Sorts:    model.SortFields,
	}

	tmpl := indexTemplate
	if data.Mode == model.ViewBoard {
		tmpl = boardTemplate
	}
	if err := tmpl.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) applicationHandler(w http.ResponseWriter, r *http.Request) {
	payload, status, err := s.loadApplication(r, "/applications/")
	if err != nil {
		writeError(w, status, err)
		return
	}

	if err := applicationTemplate.Execute(w, payload); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) apiProjectionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.Project(s.shell.Records(), controlsFromRequest(r)))
}

func (s *Server) apiApplicationHandler(w http.ResponseWriter, r *http.Request) {
	payload, status, err := s.loadApplication(r, "/api/applications/")
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) loadApplication(r *http.Request, prefix string) (applicationPayload, int, error) {
	id, err := parseID(r.URL.Path, prefix)
	if err != nil {
		return applicationPayload{}, http.StatusNotFound, err
	}

	application, ok := s.shell.Find(id)
	if !ok {
		return applicationPayload{}, http.StatusNotFound, fmt.Errorf("application %d not found", id)
	}

	history, err := s.shell.History(r.Context(), id)
	if err != nil {
		return applicationPayload{}, http.StatusInternalServerError, err
	}
	return applicationPayload{Application: application, History: history}, http.StatusOK, nil
}

// apiDropHandler runs one full drag gesture. A drop that resolves to no
// change answers 200 with moved=false.
func (s *Server) apiDropHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode drop: %w", err))
		return
	}

	intent, err := s.shell.Drop(r.Context(), req.ID, req.Target)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if intent.IsNoOp() {
		writeJSON(w, http.StatusOK, dropResponse{})
		return
	}
	writeJSON(w, http.StatusOK, dropResponse{Moved: true, From: intent.From, To: intent.To})
}

func controlsFromRequest(r *http.Request) model.ViewControls {
	query := r.URL.Query()
	controls := model.DefaultControls()

	controls.SearchTerm = strings.TrimSpace(query.Get("q"))
	if status := strings.TrimSpace(query.Get("status")); status != "" {
		controls.StatusFilter = status
	}
	if field := model.SortField(strings.TrimSpace(query.Get("sort"))); field != "" {
		controls.SortField = field
	}
	switch model.SortDirection(strings.TrimSpace(query.Get("dir"))) {
	case model.SortAsc:
		controls.SortDirection = model.SortAsc
	case model.SortDesc:
		controls.SortDirection = model.SortDesc
	}
	return controls
}

func modeFromRequest(r *http.Request) model.ViewMode {
	if model.ViewMode(r.URL.Query().Get("view")) == model.ViewBoard {
		return model.ViewBoard
	}
	return model.ViewTable
}

func parseID(path, prefix string) (int64, error) {
	if !strings.HasPrefix(path, prefix) {
		return 0, fmt.Errorf("invalid path")
	}
	value := strings.TrimPrefix(path, prefix)
	value = strings.Trim(value, "/")
	if value == "" {
		return 0, fmt.Errorf("missing id")
	}
	return strconv.ParseInt(value, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
