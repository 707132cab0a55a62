package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/japa/internal/store"
)

type countingModel struct {
	store  *store.Store
	width  int
	height int

	mantra *store.Mantra

	confirmDiscard bool
}

func newCountingModel(s *store.Store) countingModel {
	return countingModel{store: s}
}

func (c *countingModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type countingDataMsg struct {
	mantra *store.Mantra
}

// refresh reloads the active mantra, falling back to the first one.
func (c countingModel) refresh(activeID int64) tea.Cmd {
	return func() tea.Msg {
		if activeID != 0 {
			if m, err := c.store.GetMantra(activeID); err == nil {
				return countingDataMsg{mantra: m}
			}
		}
		mantras, _ := c.store.ListMantras()
		if len(mantras) == 0 {
			return countingDataMsg{}
		}
		return countingDataMsg{mantra: &mantras[0]}
	}
}

func (c countingModel) update(msg tea.Msg) (countingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case countingDataMsg:
		c.mantra = msg.mantra
		return c, nil

	case tea.KeyMsg:
		if c.mantra == nil {
			return c, nil
		}

		if c.confirmDiscard {
			switch {
			case key.Matches(msg, keys.Enter):
				c.confirmDiscard = false
				m, err := c.store.DiscardToday(c.mantra.ID)
				if err != nil {
					return c, errStatus(err)
				}
				c.mantra = m
				return c, tea.Batch(
					func() tea.Msg { return statusMsg{text: "Today's count discarded"} },
					func() tea.Msg { return dataChangedMsg{} },
				)
			case key.Matches(msg, keys.Back):
				c.confirmDiscard = false
			}
			return c, nil
		}

		switch {
		case key.Matches(msg, keys.Count):
			m, err := c.store.IncrementCount(c.mantra.ID)
			if err != nil {
				return c, errStatus(err)
			}
			crossed := store.Malas(m.TodayCount, m.MalaSize) > store.Malas(c.mantra.TodayCount, c.mantra.MalaSize)
			c.mantra = m
			if crossed {
				return c, tea.Batch(
					func() tea.Msg {
						return statusMsg{text: fmt.Sprintf("Mala complete! %d today", store.Malas(m.TodayCount, m.MalaSize))}
					},
					func() tea.Msg { return dataChangedMsg{} },
				)
			}
			return c, func() tea.Msg { return dataChangedMsg{} }

		case key.Matches(msg, keys.Undo):
			m, err := c.store.DecrementCount(c.mantra.ID)
			if err != nil {
				return c, errStatus(err)
			}
			c.mantra = m
			return c, func() tea.Msg { return dataChangedMsg{} }

		case key.Matches(msg, keys.Discard):
			if c.mantra.TodayCount > 0 {
				c.confirmDiscard = true
			}
			return c, nil
		}
	}
	return c, nil
}

func (c countingModel) view() string {
	w := c.width - 4

	if c.mantra == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Counting"),
			"",
			mutedStyle.Render("No mantra selected. Press 1 and pick one from the dashboard."),
		)
		return panelStyle.Width(w).Render(content)
	}

	m := c.mantra

	if c.confirmDiscard {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Discard today's count?"),
			"",
			warningStyle.Render(fmt.Sprintf("  %d repetitions will be removed from %s.", m.TodayCount, m.Name)),
			"",
			mutedStyle.Render("  enter: discard  esc: cancel"),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	name := highlightStyle.Render(m.Name)

	pos, size := malaProgress(m.TodayCount, m.MalaSize)
	counter := counterStyle.Width(w - 6).Render(fmt.Sprintf("%d", m.TodayCount))
	if m.TodayCount > 0 && pos == 0 {
		// Exactly on a mala boundary.
		counter = counterDoneStyle.Width(w - 6).Render(fmt.Sprintf("%d", m.TodayCount))
	}

	progress := c.renderBeadBar(pos, size, w-10)
	progressLabel := mutedStyle.Render(fmt.Sprintf("bead %d of %d", pos, size))

	todayLine := fmt.Sprintf("Today: %s", accentStyle.Render(formatCount(m.TodayCount, m.MalaSize)))
	totalLine := fmt.Sprintf("Lifetime: %s", highlightStyle.Render(formatCount(m.TotalCount, m.MalaSize)))

	counterPanel := activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			name,
			"",
			counter,
			"",
			progress,
			progressLabel,
		),
	)

	statsPanel := panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			todayLine,
			totalLine,
			"",
			mutedStyle.Render("space: count  -: undo  x: discard today"),
		),
	)

	return lipgloss.JoinVertical(lipgloss.Left, counterPanel, statsPanel)
}

// renderBeadBar draws position within the current mala as a filled bar.
func (c countingModel) renderBeadBar(pos, size, width int) string {
	if size <= 0 || width < 10 {
		return ""
	}
	filled := 0
	if size > 0 {
		filled = pos * width / size
	}
	filled = min(filled, width)
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar
}
