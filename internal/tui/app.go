package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/japa/internal/cloud"
	"github.com/sadopc/japa/internal/dateutil"
	"github.com/sadopc/japa/internal/export"
	"github.com/sadopc/japa/internal/reset"
	"github.com/sadopc/japa/internal/stats"
	"github.com/sadopc/japa/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store       *store.Store
	coordinator *reset.Coordinator
	syncer      *cloud.Syncer // nil disables backups
	width       int
	height      int

	activeView viewState
	showHelp   bool

	// Day-boundary modal
	resetPending bool
	pendingDate  string
	resetCursor  int

	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	counting  countingModel
	history   historyModel
	settings  settingsModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, syncer *cloud.Syncer) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:       s,
		coordinator: reset.New(s),
		syncer:      syncer,
		activeView:  viewDashboard,
		dashboard:   newDashboardModel(s),
		counting:    newCountingModel(s),
		history:     newHistoryModel(s),
		settings:    newSettingsModel(s),
		help:        h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		a.checkDayBoundary(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (a App) checkDayBoundary() tea.Cmd {
	return func() tea.Msg {
		state, err := a.coordinator.Check()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if state == reset.StatePending {
			return resetPendingMsg{pendingDate: a.coordinator.PendingDate()}
		}
		return nil
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.counting.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// The day-boundary modal blocks everything until resolved.
		if a.resetPending {
			return a.updateResetModal(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCounting
			return a, a.counting.refresh(a.dashboard.activeID)
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewHistory
			return a, a.history.refresh(a.dashboard.activeID)
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		return a, tea.Batch(tickCmd(), a.checkDayBoundary())

	case resetPendingMsg:
		a.resetPending = true
		a.pendingDate = msg.pendingDate
		a.resetCursor = 0
		return a, nil

	case resetDoneMsg:
		if msg.saved {
			a.status = "New day. Yesterday's counts saved to history."
		} else {
			a.status = "New day. Yesterday's counts discarded."
		}
		return a, tea.Batch(a.refreshAll(), a.backup())

	case statusMsg:
		a.status = msg.text
		return a, nil

	case mantraCreatedMsg:
		a.status = "Added " + msg.mantra.Name
		return a, nil

	case dataChangedMsg:
		return a, tea.Batch(a.backup(), a.refreshBackgroundViews())

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewCounting:
		a.counting, cmd = a.counting.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.refresh()
	case viewCounting:
		return a.counting.refresh(a.dashboard.activeID)
	case viewHistory:
		return a.history.refresh(a.dashboard.activeID)
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.dashboard.refresh(),
		a.counting.refresh(a.dashboard.activeID),
		a.history.refresh(a.dashboard.activeID),
		a.settings.refresh(),
	)
}

// refreshBackgroundViews keeps the inactive data views in step after a
// mutation without reloading the view the user is typing in.
func (a App) refreshBackgroundViews() tea.Cmd {
	var cmds []tea.Cmd
	if a.activeView != viewDashboard {
		cmds = append(cmds, a.dashboard.refresh())
	}
	if a.activeView != viewCounting {
		cmds = append(cmds, a.counting.refresh(a.dashboard.activeID))
	}
	if a.activeView != viewHistory {
		cmds = append(cmds, a.history.refresh(a.dashboard.activeID))
	}
	return tea.Batch(cmds...)
}

func (a App) backup() tea.Cmd {
	if a.syncer == nil {
		return nil
	}
	return func() tea.Msg {
		mantras, err := a.store.ListMantras()
		if err != nil {
			return nil
		}
		a.syncer.SaveAsync(mantras)
		return backupDoneMsg{}
	}
}

// --- Day-boundary modal ---

func (a App) updateResetModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.resetCursor > 0 {
			a.resetCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.resetCursor < 1 {
			a.resetCursor++
		}
	case key.Matches(msg, keys.Enter):
		outcome := reset.OutcomeSave
		if a.resetCursor == 1 {
			outcome = reset.OutcomeDiscard
		}
		a.resetPending = false
		return a, a.resolveReset(outcome)
	}
	// No escape: the day rolled over and the counters must be settled.
	return a, nil
}

func (a App) resolveReset(outcome reset.Outcome) tea.Cmd {
	return func() tea.Msg {
		if err := a.coordinator.Resolve(outcome); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return resetDoneMsg{saved: outcome == reset.OutcomeSave}
	}
}

func (a App) renderResetModal() string {
	title := titleStyle.Render("A new day has begun")
	date, err := dateutil.ParseISO(a.pendingDate)
	dateLabel := a.pendingDate
	if err == nil {
		dateLabel = date.Format("Monday, Jan 2")
	}

	options := []string{
		"Save & Reset — keep " + dateLabel + "'s counts in history",
		"Discard & Reset — drop them entirely",
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  Your counters still hold "+dateLabel+"'s repetitions."))
	rows = append(rows, "")
	for i, opt := range options {
		cursor := "  "
		style := normalItemStyle
		if i == a.resetCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+opt))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ↑/↓: choose  enter: confirm"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// --- Export picker ---

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) doExport(format int) tea.Cmd {
	activeID := a.dashboard.activeID
	return func() tea.Msg {
		m, err := a.exportTarget(activeID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		today := time.Now()
		entries := stats.Window(m, today, stats.WindowDays)
		summary := stats.Compute(entries, m.MalaSize, today)

		home, _ := os.UserHomeDir()
		dateStr := today.Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("japa-export-%s.csv", dateStr))
			if err := export.ToCSV(m, entries, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("japa-export-%s.json", dateStr))
			if err := export.ToJSON(m, entries, summary, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

func (a App) exportTarget(activeID int64) (*store.Mantra, error) {
	if activeID != 0 {
		if m, err := a.store.GetMantra(activeID); err == nil {
			return m, nil
		}
	}
	mantras, err := a.store.ListMantras()
	if err != nil {
		return nil, err
	}
	if len(mantras) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	return &mantras[0], nil
}

// --- Rendering ---

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewCounting:
		content = a.counting.view()
	case viewHistory:
		content = a.history.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.resetPending {
		content = a.renderResetModal()
	} else if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("japa")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Today's progress on the active mantra, always visible.
	todayInfo := ""
	if m := a.counting.mantra; m != nil && m.TodayCount > 0 {
		todayInfo = successStyle.Render(" ● " + formatCount(m.TodayCount, m.MalaSize))
	}

	left := footerStyle.Render(helpView)
	right := todayInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
