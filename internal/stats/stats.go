// Package stats derives streaks, averages and consistency figures from a
// window of daily entries. Like rollup, it is pure over a mantra snapshot
// and an injected "today".
package stats

import (
	"math"
	"time"

	"github.com/sadopc/japa/internal/dateutil"
	"github.com/sadopc/japa/internal/store"
)

// WindowDays is how far back the raw daily log reaches.
const WindowDays = 30

// DayEntry is one day of the history window, oldest-first.
type DayEntry struct {
	Date            string
	Weekday         time.Weekday
	Count           int
	Malas           int
	IsPracticeDay   bool
	IsToday         bool
	Remark          string
	BeadsUpdated    bool
	SettingsUpdated bool
}

// WeekdayTotal aggregates counts per weekday name.
type WeekdayTotal struct {
	Count      int
	ActiveDays int
}

// Summary is the derived statistics block for a window.
type Summary struct {
	TotalCount    int
	TotalMalas    int
	TotalDays     int
	PracticedDays int
	MissedDays    int
	RestDays      int
	Consistency   int // percent of expected practice days actually practiced

	CurrentStreak int
	BestStreak    int

	BestDate  string // earliest day with the maximum count; "" when none
	BestCount int
	BestMalas int

	AvgPerDay          int
	AvgPerPracticedDay int

	Weekdays    [7]WeekdayTotal // indexed by time.Weekday
	TopWeekday  time.Weekday
	HasPractice bool
}

// Window builds up to maxDays of daily entries ending today, never reaching
// before the mantra's creation day. Today's entry reads the running counter.
func Window(m *store.Mantra, today time.Time, maxDays int) []DayEntry {
	today = dateutil.Midnight(today)
	created := m.CreatedDate()

	var entries []DayEntry
	for i := maxDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		if d.Before(created) {
			continue
		}
		key := dateutil.ISO(d)
		count := m.CountOn(key, today)
		e := DayEntry{
			Date:          key,
			Weekday:       d.Weekday(),
			Count:         count,
			Malas:         store.Malas(count, m.MalaSize),
			IsPracticeDay: m.IsPracticeDay(d.Weekday()),
			IsToday:       dateutil.SameDay(d, today),
		}
		if rec := m.Record(key); rec != nil {
			e.Remark = rec.Remark
			e.BeadsUpdated = rec.BeadsUpdated
			e.SettingsUpdated = rec.SettingsUpdated
		}
		entries = append(entries, e)
	}
	return entries
}

// Filter clamps a window to an inclusive [from, to] date-key range.
func Filter(entries []DayEntry, from, to string) []DayEntry {
	var out []DayEntry
	for _, e := range entries {
		if (from == "" || e.Date >= from) && (to == "" || e.Date <= to) {
			out = append(out, e)
		}
	}
	return out
}

// Compute derives the summary for an oldest-first entry window. All
// zero-denominator cases yield 0, never NaN.
func Compute(entries []DayEntry, malaSize int, today time.Time) Summary {
	var s Summary
	s.TotalDays = len(entries)

	expected := 0
	for _, e := range entries {
		s.TotalCount += e.Count
		if e.IsPracticeDay {
			expected++
		}
		switch {
		case e.Count > 0:
			s.PracticedDays++
		case e.IsPracticeDay:
			s.MissedDays++
		default:
			s.RestDays++
		}

		s.Weekdays[e.Weekday].Count += e.Count
		if e.Count > 0 {
			s.Weekdays[e.Weekday].ActiveDays++
		}

		if e.Count > s.BestCount {
			s.BestCount = e.Count
			s.BestDate = e.Date
		}
	}

	s.TotalMalas = store.Malas(s.TotalCount, malaSize)
	s.BestMalas = store.Malas(s.BestCount, malaSize)
	s.HasPractice = s.PracticedDays > 0

	if expected > 0 {
		s.Consistency = roundPct(s.PracticedDays, expected)
	}
	if s.TotalDays > 0 {
		s.AvgPerDay = roundDiv(s.TotalCount, s.TotalDays)
	}
	if s.PracticedDays > 0 {
		s.AvgPerPracticedDay = roundDiv(s.TotalCount, s.PracticedDays)
	}

	s.CurrentStreak, s.BestStreak = streaks(entries, today)

	top := time.Sunday
	for w := time.Sunday; w <= time.Saturday; w++ {
		if s.Weekdays[w].Count > s.Weekdays[top].Count {
			top = w
		}
	}
	s.TopWeekday = top
	return s
}

// streaks scans practiced days chronologically. A streak grows on calendar
// adjacency and restarts at 1 after any gap. The trailing streak only
// counts as current while the last practiced day is today or yesterday.
func streaks(entries []DayEntry, today time.Time) (current, best int) {
	var practiced []DayEntry
	for _, e := range entries {
		if e.Count > 0 {
			practiced = append(practiced, e)
		}
	}
	if len(practiced) == 0 {
		return 0, 0
	}

	run := 0
	var prev time.Time
	for i, e := range practiced {
		d, err := dateutil.ParseISO(e.Date)
		if err != nil {
			continue
		}
		if i == 0 || dateutil.DaysBetween(prev, d) != 1 {
			run = 1
		} else {
			run++
		}
		if run > best {
			best = run
		}
		prev = d
	}

	if dateutil.DaysBetween(prev, dateutil.Midnight(today)) <= 1 {
		current = run
	}
	return current, best
}

func roundDiv(num, den int) int {
	return int(math.Round(float64(num) / float64(den)))
}

func roundPct(num, den int) int {
	return int(math.Round(100 * float64(num) / float64(den)))
}
