package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazyjobs/internal/config"
	"github.com/Joseda-hg/lazyjobs/internal/model"
	"github.com/Joseda-hg/lazyjobs/internal/shell"
	"github.com/Joseda-hg/lazyjobs/internal/view"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewTable   = "table"
	viewDetail  = "detail"
	viewHistory = "history"
	viewSearch  = "search"
	viewForm    = "form"
	viewHelp    = "help"

	columnViewPrefix = "column:"
)

// Preferences persists UI choices between runs.
type Preferences interface {
	Get() config.Preferences
	Set(config.Preferences) error
}

type UI struct {
	shell   *shell.Shell
	prefs   Preferences
	gui     *gocui.Gui
	printer *message.Printer

	mode model.ViewMode
	dark bool

	result  view.Result
	stats   model.Stats
	history []model.HistoryEntry

	selectedRow  int
	column       int
	selectedCard []int
	dropTarget   int
	focus        string

	pendingDelete int64
	form          *formState
	formEditor    *formEditor
	searchActive  bool
	helpActive    bool
	status        string
}

type formState struct {
	applicationID int64
	before        model.Application
	fields        []formField
	index         int
}

type formEditor struct {
	ui *UI
}

func New(sh *shell.Shell, prefs Preferences) *UI {
	ui := &UI{
		shell:        sh,
		prefs:        prefs,
		printer:      message.NewPrinter(language.English),
		mode:         model.ViewTable,
		selectedCard: make([]int, len(model.Statuses)),
		focus:        viewTable,
	}
	if prefs != nil {
		current := prefs.Get()
		ui.dark = current.DarkMode
		if current.ViewMode == model.ViewBoard {
			ui.mode = model.ViewBoard
			ui.focus = columnView(0)
		}
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func Run(sh *shell.Shell, prefs Preferences) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := New(sh, prefs)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.reload(gui, nil); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	global := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, u.quit},
		{'q', u.quit},
		{'r', u.reload},
		{'g', u.clearFilters},
		{'/', u.startSearch},
		{'f', u.cycleFilter},
		{'1', u.sortBy(model.SortCompany)},
		{'2', u.sortBy(model.SortPosition)},
		{'3', u.sortBy(model.SortLocation)},
		{'4', u.sortBy(model.SortStatus)},
		{'5', u.sortBy(model.SortDateApplied)},
		{'v', u.toggleViewMode},
		{'D', u.toggleDarkMode},
		{'m', u.pickUp},
		{gocui.KeyEnter, u.drop},
		{gocui.KeyEsc, u.cancelDrag},
		{'h', u.moveLeft},
		{gocui.KeyArrowLeft, u.moveLeft},
		{'l', u.moveRight},
		{gocui.KeyArrowRight, u.moveRight},
		{'j', u.moveDown},
		{gocui.KeyArrowDown, u.moveDown},
		{'k', u.moveUp},
		{gocui.KeyArrowUp, u.moveUp},
		{'*', u.toggleFavorite},
		{'a', u.addApplication},
		{'e', u.editApplication},
		{'x', u.deleteApplication},
		{'?', u.toggleHelp},
	}
	for _, binding := range global {
		if err := gui.SetKeybinding("", binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	if err := gui.SetKeybinding(viewSearch, gocui.KeyEnter, gocui.ModNone, u.submitSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEsc, gocui.ModNone, u.cancelSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	for _, key := range []any{gocui.KeyEsc, 'q', '?'} {
		if err := gui.SetKeybinding(viewHelp, key, gocui.ModNone, u.closeHelp); err != nil {
			return err
		}
	}

	lists := []string{viewTable}
	for i := range model.Statuses {
		lists = append(lists, columnView(i))
	}
	for _, name := range lists {
		listName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: listName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, listName, opts)
		}}); err != nil {
			return err
		}
	}
	for _, name := range append(lists, viewDetail, viewHistory) {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 2, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	u.applyTheme(headerView)
	u.renderHeader(headerView)

	footerY1 := max(maxY-1, 3)
	footerY0 := max(footerY1-3, 3)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	u.applyTheme(footerView)
	footerView.FgColor |= gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 3
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}

	box := computeLayout(maxX, bodyBottom-bodyTop+1)
	mainX1 := box.mainWidth - 1
	sideX0 := mainX1 + 1
	sideX1 := maxX - 1
	detailY1 := bodyTop + box.detailHeight - 1

	if u.mode == model.ViewBoard {
		_ = gui.DeleteView(viewTable)
		width := max(box.mainWidth/len(model.Statuses), 8)
		for i, status := range model.Statuses {
			x0 := i * width
			x1 := x0 + width - 1
			if i == len(model.Statuses)-1 {
				x1 = mainX1
			}
			name := columnView(i)
			colView, err := gui.SetView(name, x0, bodyTop, x1, bodyBottom, 0)
			if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
				return err
			}
			colView.Title = u.columnTitle(i, status)
			u.applyStyle(colView, u.focus == name, true)
			if u.isDropTarget(i) {
				colView.FrameColor = gocui.ColorYellow
				colView.TitleColor = gocui.ColorYellow
			}
			u.renderColumn(colView, i)
		}
	} else {
		for i := range model.Statuses {
			_ = gui.DeleteView(columnView(i))
		}
		tableView, err := gui.SetView(viewTable, 0, bodyTop, mainX1, bodyBottom, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		if goerrors.Is(err, gocui.ErrUnknownView) {
			tableView.Title = "Applications"
		}
		u.applyStyle(tableView, u.focus == viewTable, true)
		u.renderTable(tableView)
	}

	detailView, err := gui.SetView(viewDetail, sideX0, bodyTop, sideX1, detailY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "Details"
		detailView.Wrap = true
	}
	u.applyStyle(detailView, false, false)
	u.renderDetail(detailView)

	historyView, err := gui.SetView(viewHistory, sideX0, detailY1+1, sideX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "History"
		historyView.Wrap = true
	}
	u.applyStyle(historyView, false, false)
	u.renderHistory(historyView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewSearch)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if !u.inputActive() {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.searchActive || u.form != nil

	return nil
}

type layout struct {
	mainWidth    int
	detailHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width, 40)
	safeHeight := max(height, 8)

	mainWidth := safeWidth * 2 / 3
	if safeWidth-mainWidth < 30 {
		mainWidth = max(safeWidth-30, safeWidth/2)
	}

	detailHeight := int(float64(safeHeight) * 0.6)
	if detailHeight < 4 {
		detailHeight = 4
	}
	if safeHeight-detailHeight < 4 {
		detailHeight = max(safeHeight-4, 4)
	}

	return layout{mainWidth: mainWidth, detailHeight: detailHeight}
}

// reload fetches from the API, falling back to whatever is already loaded.
func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	ctx := context.Background()
	u.status = ""
	if err := u.shell.Refresh(ctx); err != nil {
		u.status = fmt.Sprintf("offline: %v", err)
	}
	u.stats = u.shell.Stats(ctx)
	return u.refresh()
}

// refresh recomputes the projection without touching the network.
func (u *UI) refresh() error {
	u.result = u.shell.Projection()

	u.selectedRow = clamp(u.selectedRow, len(u.result.Rows))
	for i, column := range u.result.Columns {
		u.selectedCard[i] = clamp(u.selectedCard[i], len(column.Records))
	}
	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	selected := u.selectedApplication()
	if selected == nil {
		u.history = nil
		return nil
	}

	history, err := u.shell.History(context.Background(), selected.ID)
	if err != nil {
		return err
	}
	u.history = history
	return nil
}

func (u *UI) selectedApplication() *model.Application {
	if u.mode == model.ViewBoard {
		if u.column < 0 || u.column >= len(u.result.Columns) {
			return nil
		}
		records := u.result.Columns[u.column].Records
		index := u.selectedCard[u.column]
		if index >= 0 && index < len(records) {
			return &records[index]
		}
		return nil
	}
	if u.selectedRow >= 0 && u.selectedRow < len(u.result.Rows) {
		return &u.result.Rows[u.selectedRow]
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	controls := u.shell.Controls()

	search := controls.SearchTerm
	if search == "" {
		search = "type / to search"
	}
	filter := controls.StatusFilter
	if filter == "" {
		filter = model.FilterAll
	}

	fmt.Fprintf(view, "Search: %s | Status: %s | Sort: %s %s | View: %s\n",
		search, filter, controls.SortField, controls.SortDirection, u.mode)
	fmt.Fprint(view, u.printer.Sprintf("Showing %d of %d | Total %d | Response rate %.1f%%",
		u.result.FilteredCount, u.result.TotalCount, u.stats.TotalApplications, u.stats.ResponseRate))
	for _, status := range model.Statuses {
		fmt.Fprint(view, u.printer.Sprintf(" | %s %d", status, u.stats.ByStatus[string(status)]))
	}
	if len(u.result.Unrecognized) > 0 {
		fmt.Fprint(view, u.printer.Sprintf(" | %d off-board", len(u.result.Unrecognized)))
	}
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	if u.mode == model.ViewBoard {
		fmt.Fprintln(view, "m pick up | h/l target | enter drop | esc cancel | j/k card | * favorite | a add | e edit | x delete")
	} else {
		fmt.Fprintln(view, "j/k move | * favorite | a add | e edit | x delete | 1-5 sort | v board")
	}
	fmt.Fprintln(view, "/ search | f status | g clear | v view | D dark | r reload | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTable(view *gocui.View) {
	view.Clear()
	width, _ := view.Size()
	controls := u.shell.Controls()
	fmt.Fprintln(view, "  "+formatTableHeader(width-2, controls))
	for i, record := range u.result.Rows {
		prefix := " "
		if i == u.selectedRow {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatRow(record, width-2))
	}
	if len(u.result.Rows) == 0 {
		fmt.Fprintln(view, "  No applications match")
	}
	if u.focus == viewTable {
		view.SetCursor(0, u.selectedRow+1)
	}
}

func (u *UI) columnTitle(index int, status model.Status) string {
	count := 0
	if index < len(u.result.Columns) {
		count = len(u.result.Columns[index].Records)
	}
	title := u.printer.Sprintf("%s (%d)", status, count)
	if u.isDropTarget(index) {
		title = "→ " + title
	}
	return title
}

func (u *UI) renderColumn(view *gocui.View, index int) {
	view.Clear()
	if index >= len(u.result.Columns) {
		return
	}
	width, _ := view.Size()
	active, dragging := u.shell.Dragging()
	for i, record := range u.result.Columns[index].Records {
		prefix := " "
		if index == u.column && i == u.selectedCard[index] {
			prefix = ">"
		}
		if dragging && record.ID == active {
			prefix = "~"
		}
		for line, text := range formatCard(record, width-2) {
			if line == 0 {
				fmt.Fprintf(view, "%s %s\n", prefix, text)
			} else {
				fmt.Fprintf(view, "  %s\n", text)
			}
		}
	}
	if index == u.column {
		view.SetCursor(0, u.selectedCard[index]*cardHeight)
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	selected := u.selectedApplication()
	if selected == nil {
		fmt.Fprint(view, "No application selected")
		return
	}
	fmt.Fprint(view, strings.Join(formatDetail(*selected), "\n"))
}

func (u *UI) renderHistory(view *gocui.View) {
	view.Clear()
	if len(u.history) == 0 {
		fmt.Fprint(view, "No local history")
		return
	}
	for _, entry := range u.history {
		fmt.Fprintf(view, "%s | %s | %s\n", entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.EventType, entry.Details)
	}
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	if viewName == viewTable {
		u.selectedRow = clamp(row-1, len(u.result.Rows))
		u.pendingDelete = 0
		return u.loadHistory()
	}
	for i := range model.Statuses {
		if viewName != columnView(i) {
			continue
		}
		u.column = i
		u.focus = viewName
		if i < len(u.result.Columns) {
			u.selectedCard[i] = clamp(row/cardHeight, len(u.result.Columns[i].Records))
		}
		u.pendingDelete = 0
		return u.loadHistory()
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() || view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() || view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.pendingDelete = 0
	if u.mode == model.ViewBoard {
		if u.column < len(u.result.Columns) && u.selectedCard[u.column] < len(u.result.Columns[u.column].Records)-1 {
			u.selectedCard[u.column]++
			return u.loadHistory()
		}
		return nil
	}
	if u.selectedRow < len(u.result.Rows)-1 {
		u.selectedRow++
		return u.loadHistory()
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.pendingDelete = 0
	if u.mode == model.ViewBoard {
		if u.selectedCard[u.column] > 0 {
			u.selectedCard[u.column]--
			return u.loadHistory()
		}
		return nil
	}
	if u.selectedRow > 0 {
		u.selectedRow--
		return u.loadHistory()
	}
	return nil
}

// moveLeft moves the drop target while a card is picked up, otherwise the
// focused column.
func (u *UI) moveLeft(gui *gocui.Gui, _ *gocui.View) error {
	return u.shiftColumn(gui, -1)
}

func (u *UI) moveRight(gui *gocui.Gui, _ *gocui.View) error {
	return u.shiftColumn(gui, 1)
}

func (u *UI) shiftColumn(gui *gocui.Gui, delta int) error {
	if u.inputActive() || u.mode != model.ViewBoard {
		return nil
	}
	last := len(model.Statuses) - 1
	if _, dragging := u.shell.Dragging(); dragging {
		u.dropTarget = min(max(u.dropTarget+delta, 0), last)
		return nil
	}
	u.column = min(max(u.column+delta, 0), last)
	u.pendingDelete = 0
	u.setFocus(gui, columnView(u.column))
	return u.loadHistory()
}

func (u *UI) pickUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.mode != model.ViewBoard {
		return nil
	}
	selected := u.selectedApplication()
	if selected == nil {
		return nil
	}
	u.shell.DragStart(selected.ID)
	u.dropTarget = u.column
	u.status = fmt.Sprintf("moving %s: h/l to choose a column, enter to drop, esc to cancel", selected.Company)
	return nil
}

func (u *UI) drop(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	id, dragging := u.shell.Dragging()
	if !dragging {
		return nil
	}

	target := string(model.Statuses[u.dropTarget])
	intent := u.shell.DragEnd(id, target)
	if intent.IsNoOp() {
		u.status = ""
		return u.refresh()
	}
	if err := u.shell.Apply(context.Background(), intent); err != nil {
		u.status = err.Error()
		return u.refresh()
	}

	u.status = fmt.Sprintf("moved to %s", intent.To)
	u.column = u.dropTarget
	u.setFocus(gui, columnView(u.column))
	if err := u.refresh(); err != nil {
		return err
	}
	u.selectCard(intent.RecordID)
	return u.loadHistory()
}

func (u *UI) cancelDrag(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if _, dragging := u.shell.Dragging(); dragging {
		u.shell.DragCancel()
		u.status = ""
	}
	u.pendingDelete = 0
	return nil
}

func (u *UI) selectCard(id int64) {
	for i, column := range u.result.Columns {
		for j, record := range column.Records {
			if record.ID == id {
				u.column = i
				u.selectedCard[i] = j
				return
			}
		}
	}
}

func (u *UI) sortBy(field model.SortField) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if u.inputActive() {
			return nil
		}
		u.shell.SortBy(field)
		return u.refresh()
	}
}

func (u *UI) cycleFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.shell.CycleStatusFilter()
	return u.refresh()
}

func (u *UI) clearFilters(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.shell.ClearFilters()
	return u.refresh()
}

func (u *UI) toggleViewMode(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if _, dragging := u.shell.Dragging(); dragging {
		u.shell.DragCancel()
	}
	if u.mode == model.ViewBoard {
		u.mode = model.ViewTable
		u.focus = viewTable
	} else {
		u.mode = model.ViewBoard
		u.focus = columnView(u.column)
	}
	u.setFocus(gui, u.focus)
	u.savePreferences()
	return u.refresh()
}

func (u *UI) toggleDarkMode(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.dark = !u.dark
	u.savePreferences()
	return nil
}

func (u *UI) savePreferences() {
	if u.prefs == nil {
		return
	}
	if err := u.prefs.Set(config.Preferences{DarkMode: u.dark, ViewMode: u.mode}); err != nil {
		u.status = fmt.Sprintf("save preferences: %v", err)
	}
}

func (u *UI) toggleFavorite(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedApplication()
	if selected == nil {
		return nil
	}
	if _, err := u.shell.ToggleFavorite(context.Background(), selected.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.refresh()
}

// deleteApplication asks for a second press on the same record.
func (u *UI) deleteApplication(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedApplication()
	if selected == nil {
		return nil
	}
	if u.pendingDelete != selected.ID {
		u.pendingDelete = selected.ID
		u.status = fmt.Sprintf("press x again to delete %s / %s", selected.Company, selected.Position)
		return nil
	}

	u.pendingDelete = 0
	if err := u.shell.Delete(context.Background(), selected.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.refresh()
}

func (u *UI) startSearch(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewSearch, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search company, position, location"
		view.Clear()
		fmt.Fprint(view, u.shell.Controls().SearchTerm)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	value := ""
	if view != nil {
		value = strings.TrimSpace(view.Buffer())
	}
	u.shell.SetSearch(value)
	u.searchActive = false
	u.status = ""
	u.closePopup(gui, viewSearch)
	return u.refresh()
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	u.closePopup(gui, viewSearch)
	return nil
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closePopup(gui, viewHelp)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 24
	x0 := (maxX - width) / 2
	y0 := max((maxY-height)/2, 0)

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) closePopup(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) {
	u.focus = name
	if gui == nil {
		return
	}
	_, _ = gui.SetCurrentView(name)
}

func (u *UI) isDropTarget(index int) bool {
	_, dragging := u.shell.Dragging()
	return dragging && index == u.dropTarget
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  j/k or arrows move selection",
		"  h/l or arrows change board column",
		"  mouse click selects, wheel scrolls",
		"",
		"View:",
		"  / search | f cycle status filter | g clear filters",
		"  1 company | 2 position | 3 location | 4 status | 5 date applied",
		"  press a sort key again to flip direction",
		"  v table/board | D dark mode",
		"",
		"Board:",
		"  m pick up card | h/l choose column | enter drop | esc cancel",
		"",
		"Actions:",
		"  a add | e edit | x delete (press twice) | * favorite",
		"  tab/arrows next field | space/left/right cycle status (form)",
		"",
		"Other:",
		"  r reload from API | ? help | esc/q close help | q quit",
	}, "\n")
}

func (u *UI) applyTheme(view *gocui.View) {
	if u.dark {
		view.FgColor = gocui.ColorWhite
		view.BgColor = gocui.ColorBlack
		return
	}
	view.FgColor = gocui.ColorDefault
	view.BgColor = gocui.ColorDefault
}

func (u *UI) applyStyle(view *gocui.View, focused bool, highlight bool) {
	u.applyTheme(view)
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
		view.TitleColor = gocui.ColorDefault
	}
}

func columnView(index int) string {
	return fmt.Sprintf("%s%d", columnViewPrefix, index)
}

func clamp(index, length int) int {
	if length == 0 {
		return 0
	}
	return min(max(index, 0), length-1)
}
