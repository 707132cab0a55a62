// Package rollup derives period buckets from a mantra's daily history.
// Everything here is pure: the same mantra snapshot and the same "today"
// always produce the same bucket sequence.
package rollup

import (
	"fmt"
	"time"

	"github.com/sadopc/japa/internal/dateutil"
	"github.com/sadopc/japa/internal/store"
)

// Period selects the flat rollup granularity.
type Period int

const (
	PeriodWeekly Period = iota
	PeriodMonthly
	PeriodYearly
)

func (p Period) String() string {
	switch p {
	case PeriodMonthly:
		return "Monthly"
	case PeriodYearly:
		return "Yearly"
	default:
		return "Weekly"
	}
}

// Bucket is one aggregated bar. Start/End are the clamped effective range;
// IsCurrent is judged against the unclamped period so the trailing partial
// bucket still reads as current. Malas is floor division of the bucket sum
// by the current mala size, not a sum of per-day floors.
type Bucket struct {
	Label      string
	StartDate  string // YYYY-MM-DD inclusive
	EndDate    string // YYYY-MM-DD inclusive
	Count      int
	Malas      int
	ActiveDays int
	TotalDays  int
	IsCurrent  bool

	// Drill-down context for the zoom-in transition.
	Year       int
	Month      time.Month // 0 when not a month-scoped bucket
	WeekStart  string     // Monday key when week-scoped
	WeekNumber int
}

// RangeLabel renders the effective range as dd/mm/yy → dd/mm/yy.
func (b Bucket) RangeLabel() string {
	s, err := dateutil.ParseISO(b.StartDate)
	if err != nil {
		return ""
	}
	e, err := dateutil.ParseISO(b.EndDate)
	if err != nil {
		return ""
	}
	if b.StartDate == b.EndDate {
		return fmt.Sprintf("%s, %s", s.Weekday(), s.Format("02/01/06"))
	}
	return fmt.Sprintf("%s → %s", s.Format("02/01/06"), e.Format("02/01/06"))
}

// Series produces the flat bucket sequence for a period, spanning the
// mantra's creation day through today. Labels are numbered relative to
// creation (W1, M1, Y1), not calendar week-of-year.
func Series(m *store.Mantra, period Period, today time.Time) []Bucket {
	switch period {
	case PeriodMonthly:
		return flatMonthly(m, today)
	case PeriodYearly:
		return flatYearly(m, today)
	default:
		return flatWeekly(m, today)
	}
}

func flatWeekly(m *store.Mantra, today time.Time) []Bucket {
	today = dateutil.Midnight(today)
	created := m.CreatedDate()
	var buckets []Bucket

	weekStart := dateutil.MondayOf(created)
	n := 1
	for !weekStart.After(today) {
		weekEnd := weekStart.AddDate(0, 0, 6)
		effStart := laterOf(weekStart, created)
		effEnd := earlierOf(weekEnd, today)
		if !effStart.After(effEnd) {
			b := sumRange(m, effStart, effEnd, today)
			b.Label = fmt.Sprintf("W%d", n)
			b.IsCurrent = within(today, weekStart, weekEnd)
			b.WeekStart = dateutil.ISO(weekStart)
			b.WeekNumber = n
			buckets = append(buckets, b)
			n++
		}
		weekStart = weekStart.AddDate(0, 0, 7)
	}
	return buckets
}

func flatMonthly(m *store.Mantra, today time.Time) []Bucket {
	today = dateutil.Midnight(today)
	created := m.CreatedDate()
	var buckets []Bucket

	cur := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, created.Location())
	last := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	n := 1
	for !cur.After(last) {
		monthEnd := cur.AddDate(0, 1, -1)
		effStart := laterOf(cur, created)
		effEnd := earlierOf(monthEnd, today)
		if !effStart.After(effEnd) {
			b := sumRange(m, effStart, effEnd, today)
			b.Label = fmt.Sprintf("M%d", n)
			b.IsCurrent = cur.Year() == today.Year() && cur.Month() == today.Month()
			b.Year = cur.Year()
			b.Month = cur.Month()
			buckets = append(buckets, b)
			n++
		}
		cur = cur.AddDate(0, 1, 0)
	}
	return buckets
}

func flatYearly(m *store.Mantra, today time.Time) []Bucket {
	today = dateutil.Midnight(today)
	created := m.CreatedDate()
	var buckets []Bucket

	n := 1
	for year := created.Year(); year <= today.Year(); year++ {
		yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, created.Location())
		yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, created.Location())
		effStart := laterOf(yearStart, created)
		effEnd := earlierOf(yearEnd, today)
		if !effStart.After(effEnd) {
			b := sumRange(m, effStart, effEnd, today)
			b.Label = fmt.Sprintf("Y%d", n)
			b.IsCurrent = year == today.Year()
			b.Year = year
			buckets = append(buckets, b)
			n++
		}
	}
	return buckets
}

// MonthsOfYear emits up to 12 month buckets for one year, skipping months
// entirely outside [createdAt, today].
func MonthsOfYear(m *store.Mantra, year int, today time.Time) []Bucket {
	today = dateutil.Midnight(today)
	created := m.CreatedDate()
	var buckets []Bucket

	for mon := time.January; mon <= time.December; mon++ {
		mStart := time.Date(year, mon, 1, 0, 0, 0, 0, today.Location())
		mEnd := mStart.AddDate(0, 1, -1)
		if mStart.After(today) || mEnd.Before(created) {
			continue
		}
		effStart := laterOf(mStart, created)
		effEnd := earlierOf(mEnd, today)
		if effStart.After(effEnd) {
			continue
		}
		b := sumRange(m, effStart, effEnd, today)
		b.Label = mon.String()[:3]
		b.IsCurrent = year == today.Year() && mon == today.Month()
		b.Year = year
		b.Month = mon
		buckets = append(buckets, b)
	}
	return buckets
}

// WeeksOfMonth emits the Monday-aligned weeks overlapping one month,
// clamped to the month and to [createdAt, today].
func WeeksOfMonth(m *store.Mantra, year int, month time.Month, today time.Time) []Bucket {
	today = dateutil.Midnight(today)
	created := m.CreatedDate()
	var buckets []Bucket

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	weekStart := dateutil.MondayOf(monthStart)
	n := 1
	for !weekStart.After(monthEnd) {
		weekEnd := weekStart.AddDate(0, 0, 6)
		effStart := laterOf(laterOf(weekStart, created), monthStart)
		effEnd := earlierOf(earlierOf(weekEnd, today), monthEnd)
		if !effStart.After(effEnd) {
			b := sumRange(m, effStart, effEnd, today)
			b.Label = fmt.Sprintf("W%d", n)
			b.IsCurrent = within(today, weekStart, weekEnd)
			b.Year = year
			b.Month = month
			b.WeekStart = dateutil.ISO(weekStart)
			b.WeekNumber = n
			buckets = append(buckets, b)
			n++
		}
		weekStart = weekStart.AddDate(0, 0, 7)
	}
	return buckets
}

// DaysOfWeek emits up to 7 daily buckets Monday..Sunday for the week
// starting at weekStart, skipping days outside [createdAt, today].
func DaysOfWeek(m *store.Mantra, weekStart string, today time.Time) []Bucket {
	today = dateutil.Midnight(today)
	created := m.CreatedDate()
	start, err := dateutil.ParseISO(weekStart)
	if err != nil {
		return nil
	}

	var buckets []Bucket
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		if d.Before(created) || d.After(today) {
			continue
		}
		key := dateutil.ISO(d)
		count := m.CountOn(key, today)
		active := 0
		if count > 0 {
			active = 1
		}
		buckets = append(buckets, Bucket{
			Label:      d.Weekday().String()[:3],
			StartDate:  key,
			EndDate:    key,
			Count:      count,
			Malas:      store.Malas(count, m.MalaSize),
			ActiveDays: active,
			TotalDays:  1,
			IsCurrent:  dateutil.SameDay(d, today),
		})
	}
	return buckets
}

// DefaultSelection returns the index of the current bucket, or the last
// bucket when none is current, or -1 for an empty sequence.
func DefaultSelection(buckets []Bucket) int {
	for i, b := range buckets {
		if b.IsCurrent {
			return i
		}
	}
	return len(buckets) - 1
}

func sumRange(m *store.Mantra, effStart, effEnd, today time.Time) Bucket {
	count, activeDays, totalDays := 0, 0, 0
	for d := effStart; !d.After(effEnd); d = d.AddDate(0, 0, 1) {
		totalDays++
		dc := m.CountOn(dateutil.ISO(d), today)
		count += dc
		if dc > 0 {
			activeDays++
		}
	}
	return Bucket{
		StartDate:  dateutil.ISO(effStart),
		EndDate:    dateutil.ISO(effEnd),
		Count:      count,
		Malas:      store.Malas(count, m.MalaSize),
		ActiveDays: activeDays,
		TotalDays:  totalDays,
	}
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
