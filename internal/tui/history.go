package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/japa/internal/rollup"
	"github.com/sadopc/japa/internal/stats"
	"github.com/sadopc/japa/internal/store"
)

type historyModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	mantra   *store.Mantra
	drill    rollup.Drill
	buckets  []rollup.Bucket
	selected int

	windowDays int
	window     []stats.DayEntry
	summary    stats.Summary

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store:      s,
		now:        time.Now,
		drill:      rollup.NewDrill(rollup.PeriodWeekly),
		windowDays: stats.WindowDays,
		chart:      barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
	if h.mantra != nil {
		h.rebuild()
	}
}

type historyDataMsg struct {
	mantra     *store.Mantra
	windowDays int
}

func (h historyModel) refresh(activeID int64) tea.Cmd {
	return func() tea.Msg {
		days := stats.WindowDays
		if v, err := h.store.GetSetting("history_days"); err == nil {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				days = n
			}
		}
		if activeID != 0 {
			if m, err := h.store.GetMantra(activeID); err == nil {
				return historyDataMsg{mantra: m, windowDays: days}
			}
		}
		mantras, _ := h.store.ListMantras()
		if len(mantras) == 0 {
			return historyDataMsg{windowDays: days}
		}
		return historyDataMsg{mantra: &mantras[0], windowDays: days}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.mantra = msg.mantra
		h.windowDays = msg.windowDays
		h.rebuild()
		h.selected = rollup.DefaultSelection(h.buckets)
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		if h.mantra == nil {
			return h, nil
		}
		switch {
		case key.Matches(msg, keys.Left):
			if h.selected > 0 {
				h.selected--
				h.buildChart()
			}
		case key.Matches(msg, keys.Right):
			if h.selected < len(h.buckets)-1 {
				h.selected++
				h.buildChart()
			}
		case key.Matches(msg, keys.Enter):
			if h.selected >= 0 && h.selected < len(h.buckets) {
				if next, ok := h.drill.ZoomIn(h.buckets[h.selected]); ok {
					h.drill = next
					h.rebuild()
					h.selected = rollup.DefaultSelection(h.buckets)
					h.buildChart()
				}
			}
		case key.Matches(msg, keys.Back):
			if h.drill.Level != rollup.LevelFlat {
				h.drill = h.drill.ZoomOut()
				h.rebuild()
				h.selected = rollup.DefaultSelection(h.buckets)
				h.buildChart()
			}
		case key.Matches(msg, keys.Reset):
			h.drill = h.drill.Reset()
			h.rebuild()
			h.selected = rollup.DefaultSelection(h.buckets)
			h.buildChart()
		case key.Matches(msg, keys.Weekly):
			return h.setPeriod(rollup.PeriodWeekly)
		case key.Matches(msg, keys.Monthly):
			return h.setPeriod(rollup.PeriodMonthly)
		case key.Matches(msg, keys.Yearly):
			return h.setPeriod(rollup.PeriodYearly)
		}
	}
	return h, nil
}

func (h historyModel) setPeriod(p rollup.Period) (historyModel, tea.Cmd) {
	h.drill = h.drill.SetPeriod(p)
	h.rebuild()
	h.selected = rollup.DefaultSelection(h.buckets)
	h.buildChart()
	return h, nil
}

func (h *historyModel) rebuild() {
	if h.mantra == nil {
		h.buckets = nil
		h.window = nil
		return
	}
	today := h.now()
	h.buckets = h.drill.Buckets(h.mantra, today)
	h.window = stats.Window(h.mantra, today, h.windowDays)
	h.summary = stats.Compute(h.window, h.mantra.MalaSize, today)
	if h.selected >= len(h.buckets) {
		h.selected = len(h.buckets) - 1
	}
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, b := range h.buckets {
		style := barStyle
		if b.IsCurrent {
			style = barCurrentStyle
		}
		if i == h.selected {
			style = barSelectedStyle
		}
		bars = append(bars, barchart.BarData{
			Label: b.Label,
			Values: []barchart.BarValue{
				{Name: b.Label, Value: float64(b.Count), Style: style},
			},
		})
	}
	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	if h.mantra == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("History"),
			"",
			mutedStyle.Render("No mantra selected. Press 1 and pick one from the dashboard."),
		)
		return panelStyle.Width(w).Render(content)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(h.mantra.Name),
		"  ",
		h.renderPeriodTabs(),
		"  ",
		mutedStyle.Render(h.drill.Title()),
	)

	chartView := h.chart.View()
	bucketPanel := h.renderBucketPanel(w)
	summaryPanel := h.renderSummaryPanel(w)

	nav := "  ←/→: select  enter: zoom in  esc: zoom out  r: flat  w/m/y: period"
	if h.drill.Level == rollup.LevelDaily {
		nav = "  ←/→: select  esc: zoom out  r: flat"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", chartView, "", mutedStyle.Render(nav)),
		),
		bucketPanel,
		summaryPanel,
	)
}

func (h historyModel) renderPeriodTabs() string {
	var tabs []string
	for p := rollup.PeriodWeekly; p <= rollup.PeriodYearly; p++ {
		label := p.String()
		if p == h.drill.Period && h.drill.Level == rollup.LevelFlat {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (h historyModel) renderBucketPanel(w int) string {
	if h.selected < 0 || h.selected >= len(h.buckets) {
		return panelStyle.Width(w).Render(mutedStyle.Render("No data yet"))
	}
	b := h.buckets[h.selected]

	marker := ""
	if b.IsCurrent {
		marker = successStyle.Render("  current")
	}
	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(b.Label), "  ", mutedStyle.Render(b.RangeLabel()), marker,
	)

	line := fmt.Sprintf("  %s repetitions   %s   active %d of %s",
		accentStyle.Render(strconv.Itoa(b.Count)),
		highlightStyle.Render(plural(b.Malas, "mala")),
		b.ActiveDays,
		plural(b.TotalDays, "day"),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", line),
	)
}

func (h historyModel) renderSummaryPanel(w int) string {
	s := h.summary

	title := titleStyle.Render(fmt.Sprintf("Last %d days", len(h.window)))

	streak := fmt.Sprintf("  Streak: %s now, %s best",
		highlightStyle.Render(plural(s.CurrentStreak, "day")),
		mutedStyle.Render(plural(s.BestStreak, "day")),
	)
	practice := fmt.Sprintf("  Practiced %d, missed %d, rest %d  (consistency %d%%)",
		s.PracticedDays, s.MissedDays, s.RestDays, s.Consistency,
	)
	best := "  No practice recorded yet"
	if s.HasPractice {
		best = fmt.Sprintf("  Best day: %s with %s",
			highlightStyle.Render(s.BestDate),
			accentStyle.Render(formatCount(s.BestCount, h.mantra.MalaSize)),
		)
	}

	rows := []string{title, "", streak, practice, best, ""}
	rows = append(rows, h.renderDayLog()...)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderDayLog lists the most recent window days, newest first.
func (h historyModel) renderDayLog() []string {
	if len(h.window) == 0 {
		return nil
	}
	limit := 7
	if h.height > 40 {
		limit = 14
	}

	rows := []string{mutedStyle.Render(fmt.Sprintf("  %-12s %-10s %8s %6s  %s", "Date", "Day", "Count", "Malas", "Remark"))}
	for i := len(h.window) - 1; i >= 0 && len(rows) <= limit; i-- {
		e := h.window[i]
		style := normalItemStyle
		switch {
		case e.Count > 0:
			style = successStyle
		case e.IsPracticeDay && !e.IsToday:
			style = errorStyle
		default:
			style = mutedStyle
		}
		remark := e.Remark
		if e.BeadsUpdated || e.SettingsUpdated {
			remark = strings.TrimSpace(remark + " " + warningStyle.Render("(settings changed)"))
		}
		rows = append(rows, style.Render(fmt.Sprintf("  %-12s %-10s %8d %6d", e.Date, e.Weekday.String()[:3], e.Count, e.Malas))+"  "+remark)
	}
	return rows
}
