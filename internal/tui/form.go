package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldCompany = iota
	fieldPosition
	fieldStatus
	fieldDateApplied
	fieldLocation
	fieldSalary
	fieldJobURL
	fieldNotes
)

func buildFormFields(record *model.Application) []formField {
	fields := []formField{
		{Label: "Company"},
		{Label: "Position"},
		{Label: "Status (space/←→)"},
		{Label: "Applied (YYYY-MM-DD)"},
		{Label: "Location"},
		{Label: "Salary range"},
		{Label: "Job URL"},
		{Label: "Notes"},
	}

	if record == nil {
		fields[fieldStatus].Value = string(model.StatusApplied)
		fields[fieldDateApplied].Value = time.Now().Format("2006-01-02")
		return fields
	}

	fields[fieldCompany].Value = record.Company
	fields[fieldPosition].Value = record.Position
	fields[fieldStatus].Value = string(record.Status)
	if !record.DateApplied.IsZero() {
		fields[fieldDateApplied].Value = record.DateApplied.Format("2006-01-02")
	}
	fields[fieldLocation].Value = record.Location
	fields[fieldSalary].Value = record.SalaryRange
	fields[fieldJobURL].Value = record.JobURL
	fields[fieldNotes].Value = record.Notes

	return fields
}

func parseFormFields(fields []formField) (model.ApplicationInput, error) {
	company := strings.TrimSpace(fields[fieldCompany].Value)
	position := strings.TrimSpace(fields[fieldPosition].Value)
	if company == "" || position == "" {
		return model.ApplicationInput{}, fmt.Errorf("company and position are required")
	}

	status, ok := model.ParseStatus(strings.TrimSpace(fields[fieldStatus].Value))
	if !ok {
		return model.ApplicationInput{}, fmt.Errorf("invalid status")
	}

	dateApplied, err := parseDate(fields[fieldDateApplied].Value)
	if err != nil {
		return model.ApplicationInput{}, err
	}

	return model.ApplicationInput{
		Company:     company,
		Position:    position,
		Status:      status,
		DateApplied: dateApplied,
		Location:    strings.TrimSpace(fields[fieldLocation].Value),
		SalaryRange: strings.TrimSpace(fields[fieldSalary].Value),
		JobURL:      strings.TrimSpace(fields[fieldJobURL].Value),
		Notes:       strings.TrimSpace(fields[fieldNotes].Value),
	}, nil
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid applied date")
	}
	return parsed, nil
}

// patchFromInput sends only the fields that differ from before.
func patchFromInput(before model.Application, input model.ApplicationInput) model.ApplicationPatch {
	var patch model.ApplicationPatch
	if input.Company != before.Company {
		patch.Company = &input.Company
	}
	if input.Position != before.Position {
		patch.Position = &input.Position
	}
	if input.Status != before.Status {
		patch.Status = &input.Status
	}
	if !input.DateApplied.IsZero() && !input.DateApplied.Equal(before.DateApplied) {
		patch.DateApplied = &input.DateApplied
	}
	if input.Location != before.Location {
		patch.Location = &input.Location
	}
	if input.SalaryRange != before.SalaryRange {
		patch.SalaryRange = &input.SalaryRange
	}
	if input.JobURL != before.JobURL {
		patch.JobURL = &input.JobURL
	}
	if input.Notes != before.Notes {
		patch.Notes = &input.Notes
	}
	return patch
}

func (u *UI) addApplication(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	fields := buildFormFields(nil)
	if u.mode == model.ViewBoard {
		fields[fieldStatus].Value = string(model.Statuses[u.column])
	}
	u.form = &formState{fields: fields}
	return nil
}

func (u *UI) editApplication(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedApplication()
	if selected == nil {
		return nil
	}
	u.form = &formState{applicationID: selected.ID, before: *selected, fields: buildFormFields(selected)}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(len(u.form.fields)+3, max(8, maxY-2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	if u.form.applicationID != 0 {
		view.Title = "Edit Application"
	} else {
		view.Title = "New Application"
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	input, err := parseFormFields(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	ctx := context.Background()
	if u.form.applicationID == 0 {
		if _, err := u.shell.Create(ctx, input); err != nil {
			u.status = err.Error()
			return nil
		}
	} else {
		patch := patchFromInput(u.form.before, input)
		if _, err := u.shell.Update(ctx, u.form.applicationID, patch); err != nil {
			u.status = err.Error()
			return nil
		}
	}

	u.form = nil
	u.status = ""
	u.closePopup(gui, viewForm)
	return u.refresh()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.closePopup(gui, viewForm)
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	label := u.form.fields[u.form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.form.fields[u.form.index].Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]
	if ui.form.index == fieldStatus {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleStatus(field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleStatus(field.Value, -1)
		}
		ui.renderForm(view)
		return true
	}
	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}
	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}
	ui.renderForm(view)
	return true
}

func cycleStatus(current string, delta int) string {
	order := model.Statuses
	index := 0
	for i, status := range order {
		if string(status) == strings.TrimSpace(current) {
			index = i
			break
		}
	}
	index = (index + delta + len(order)) % len(order)
	return string(order[index])
}
