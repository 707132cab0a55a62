package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/japa/internal/store"
)

var sortOptions = []string{"newest", "oldest", "name-asc", "total-malas", "today-malas"}

type dashboardModel struct {
	store  *store.Store
	width  int
	height int

	mantras  []store.Mantra
	cursor   int
	activeID int64
	sortBy   string

	formActive bool
	form       *huh.Form
	editingID  int64 // 0 = creating

	// Form field pointers (survive value copies)
	formName     *string
	formMalaSize *string
	formDays     *[]int
}

func newDashboardModel(s *store.Store) dashboardModel {
	name, size := "", ""
	days := []int{}
	return dashboardModel{
		store:        s,
		sortBy:       "newest",
		formName:     &name,
		formMalaSize: &size,
		formDays:     &days,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.refresh()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		mantras, _ := d.store.ListMantras()
		var activeID int64
		if v, err := d.store.GetSetting("default_mantra_id"); err == nil && v != "" {
			activeID, _ = strconv.ParseInt(v, 10, 64)
		}
		return mantrasDataMsg{mantras: mantras, activeID: activeID}
	}
}

func (d dashboardModel) selected() *store.Mantra {
	if d.cursor < 0 || d.cursor >= len(d.mantras) {
		return nil
	}
	return &d.mantras[d.cursor]
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case mantrasDataMsg:
		d.mantras = msg.mantras
		d.activeID = msg.activeID
		if v, err := d.store.GetSetting("sort_option"); err == nil && v != "" {
			d.sortBy = v
		}
		sortMantras(d.mantras, d.sortBy)
		if d.cursor >= len(d.mantras) {
			d.cursor = max(0, len(d.mantras)-1)
		}
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.mantras)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if m := d.selected(); m != nil {
				d.activeID = m.ID
				d.store.SetSetting("default_mantra_id", strconv.FormatInt(m.ID, 10))
				return d, func() tea.Msg {
					return statusMsg{text: "Now counting: " + m.Name}
				}
			}
		case key.Matches(msg, keys.New):
			return d.showForm(nil)
		case key.Matches(msg, keys.Rename):
			if m := d.selected(); m != nil {
				return d.showForm(m)
			}
		case key.Matches(msg, keys.Delete):
			if m := d.selected(); m != nil {
				name := m.Name
				if err := d.store.DeleteMantra(m.ID); err != nil {
					return d, errStatus(err)
				}
				return d, tea.Batch(d.refresh(),
					func() tea.Msg { return statusMsg{text: "Deleted " + name} },
					func() tea.Msg { return dataChangedMsg{} },
				)
			}
		case key.Matches(msg, keys.Sort):
			d.sortBy = nextSort(d.sortBy)
			d.store.SetSetting("sort_option", d.sortBy)
			sortMantras(d.mantras, d.sortBy)
			return d, nil
		}
	}
	return d, nil
}

func nextSort(cur string) string {
	for i, s := range sortOptions {
		if s == cur {
			return sortOptions[(i+1)%len(sortOptions)]
		}
	}
	return sortOptions[0]
}

func sortMantras(mantras []store.Mantra, by string) {
	switch by {
	case "oldest":
		sort.SliceStable(mantras, func(i, j int) bool { return mantras[i].ID < mantras[j].ID })
	case "name-asc":
		sort.SliceStable(mantras, func(i, j int) bool {
			return strings.ToLower(mantras[i].Name) < strings.ToLower(mantras[j].Name)
		})
	case "total-malas":
		sort.SliceStable(mantras, func(i, j int) bool { return mantras[i].TotalMalas() > mantras[j].TotalMalas() })
	case "today-malas":
		sort.SliceStable(mantras, func(i, j int) bool { return mantras[i].TodayMalas() > mantras[j].TodayMalas() })
	default: // newest
		sort.SliceStable(mantras, func(i, j int) bool { return mantras[i].ID > mantras[j].ID })
	}
}

func (d dashboardModel) showForm(m *store.Mantra) (dashboardModel, tea.Cmd) {
	if m == nil {
		d.editingID = 0
		*d.formName = ""
		*d.formMalaSize = strconv.Itoa(store.DefaultMalaSize)
		*d.formDays = []int{0, 1, 2, 3, 4, 5, 6}
	} else {
		d.editingID = m.ID
		*d.formName = m.Name
		*d.formMalaSize = strconv.Itoa(m.MalaSize)
		days := make([]int, 0, len(m.PracticeDays))
		for _, w := range m.PracticeDays {
			days = append(days, int(w))
		}
		*d.formDays = days
	}

	dayOptions := make([]huh.Option[int], 7)
	for w := time.Sunday; w <= time.Saturday; w++ {
		dayOptions[w] = huh.NewOption(w.String(), int(w))
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Mantra").Value(d.formName),
			huh.NewInput().Title("Beads per mala").Value(d.formMalaSize),
			huh.NewMultiSelect[int]().Title("Practice days").
				Options(dayOptions...).Value(d.formDays),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		return d.submitForm()
	}
	return d, cmd
}

func (d dashboardModel) submitForm() (dashboardModel, tea.Cmd) {
	name := strings.TrimSpace(*d.formName)
	if name == "" {
		return d, errStatus(store.ErrEmptyName)
	}
	malaSize, err := strconv.Atoi(strings.TrimSpace(*d.formMalaSize))
	if err != nil || malaSize <= 0 {
		return d, errStatus(store.ErrBadMalaSize)
	}
	days := make([]time.Weekday, 0, len(*d.formDays))
	for _, n := range *d.formDays {
		days = append(days, time.Weekday(n))
	}

	if d.editingID == 0 {
		m, err := d.store.CreateMantra(name, malaSize, days)
		if err != nil {
			return d, errStatus(err)
		}
		return d, tea.Batch(d.refresh(),
			func() tea.Msg { return mantraCreatedMsg{mantra: m} },
			func() tea.Msg { return dataChangedMsg{} },
		)
	}

	if err := d.store.RenameMantra(d.editingID, name); err != nil {
		return d, errStatus(err)
	}
	if err := d.store.SetMalaSize(d.editingID, malaSize); err != nil {
		return d, errStatus(err)
	}
	if err := d.store.SetPracticeDays(d.editingID, days); err != nil {
		return d, errStatus(err)
	}
	return d, tea.Batch(d.refresh(),
		func() tea.Msg { return statusMsg{text: "Updated " + name} },
		func() tea.Msg { return dataChangedMsg{} },
	)
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func (d dashboardModel) view() string {
	w := d.width - 4

	if d.formActive && d.form != nil {
		title := titleStyle.Render("New Mantra")
		if d.editingID != 0 {
			title = titleStyle.Render("Edit Mantra")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View()),
		)
	}

	title := titleStyle.Render("Mantras")
	sortLabel := mutedStyle.Render("sort: " + d.sortBy)
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", sortLabel)

	if len(d.mantras) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No mantras yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-26s %10s %12s", "", "Name", "Today", "Total")))

	for i, m := range d.mantras {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := " "
		if m.ID == d.activeID {
			marker = successStyle.Render("●")
		}
		row := style.Render(fmt.Sprintf("%s%s %-26s %10s %12s",
			cursor, marker, m.Name,
			formatCount(m.TodayCount, m.MalaSize),
			formatCount(m.TotalCount, m.MalaSize),
		))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  r: edit  d: delete  s: sort  enter: count this one"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
