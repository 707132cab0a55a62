package rollup

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/japa/internal/store"
)

// Level is the current zoom depth. Flat is the top; Daily has no further
// zoom-in target.
type Level int

const (
	LevelFlat Level = iota
	LevelMonthly
	LevelWeekly
	LevelDaily
)

// Drill tracks the drill-down position. Transitions only narrow one level
// at a time and only widen on an explicit zoom-out; Period remembers which
// flat view the user last toggled so Reset can restore it.
type Drill struct {
	Period    Period
	Level     Level
	Year      int
	Month     time.Month // 0 when unset
	WeekStart string     // Monday key, set at LevelDaily
	Crumb     string     // breadcrumb label for the header
}

// NewDrill starts flat at the given period.
func NewDrill(p Period) Drill {
	return Drill{Period: p}
}

// SetPeriod switches the flat view granularity and leaves any drill.
func (d Drill) SetPeriod(p Period) Drill {
	return Drill{Period: p}
}

// Reset returns straight to the flat view at the remembered period.
func (d Drill) Reset() Drill {
	return Drill{Period: d.Period}
}

// ZoomIn narrows one level into the given bucket. The bool reports whether
// a transition happened (Daily is terminal; buckets without drill context
// are inert).
func (d Drill) ZoomIn(b Bucket) (Drill, bool) {
	switch d.Level {
	case LevelFlat:
		switch d.Period {
		case PeriodYearly:
			if b.Year == 0 {
				return d, false
			}
			return Drill{Period: d.Period, Level: LevelMonthly, Year: b.Year,
				Crumb: fmt.Sprintf("%d", b.Year)}, true
		case PeriodMonthly:
			if b.Year == 0 || b.Month == 0 {
				return d, false
			}
			return Drill{Period: d.Period, Level: LevelWeekly, Year: b.Year, Month: b.Month,
				Crumb: fmt.Sprintf("%s %d", b.Month.String()[:3], b.Year)}, true
		default: // PeriodWeekly
			if b.WeekStart == "" {
				return d, false
			}
			return Drill{Period: d.Period, Level: LevelDaily, WeekStart: b.WeekStart,
				Crumb: b.RangeLabel()}, true
		}

	case LevelMonthly:
		if b.Year == 0 || b.Month == 0 {
			return d, false
		}
		return Drill{Period: d.Period, Level: LevelWeekly, Year: b.Year, Month: b.Month,
			Crumb: d.Crumb + " > " + b.Month.String()[:3]}, true

	case LevelWeekly:
		if b.WeekStart == "" {
			return d, false
		}
		return Drill{Period: d.Period, Level: LevelDaily, Year: d.Year, Month: d.Month,
			WeekStart: b.WeekStart, Crumb: d.Crumb + " > " + b.Label}, true
	}
	return d, false
}

// ZoomOut pops exactly one level. A daily view entered straight from the
// flat weekly series (no month context) pops back to flat, since the
// intermediate levels were never entered.
func (d Drill) ZoomOut() Drill {
	switch d.Level {
	case LevelDaily:
		if d.Year != 0 && d.Month != 0 {
			return Drill{Period: d.Period, Level: LevelWeekly, Year: d.Year, Month: d.Month,
				Crumb: dropLastCrumb(d.Crumb)}
		}
		return Drill{Period: d.Period}
	case LevelWeekly:
		if d.Year != 0 {
			return Drill{Period: d.Period, Level: LevelMonthly, Year: d.Year,
				Crumb: fmt.Sprintf("%d", d.Year)}
		}
		return Drill{Period: d.Period}
	case LevelMonthly:
		return Drill{Period: d.Period}
	}
	return d
}

// Buckets produces the bucket sequence for the current position.
func (d Drill) Buckets(m *store.Mantra, today time.Time) []Bucket {
	switch d.Level {
	case LevelMonthly:
		return MonthsOfYear(m, d.Year, today)
	case LevelWeekly:
		return WeeksOfMonth(m, d.Year, d.Month, today)
	case LevelDaily:
		return DaysOfWeek(m, d.WeekStart, today)
	default:
		return Series(m, d.Period, today)
	}
}

// Title is the header label for the current position.
func (d Drill) Title() string {
	switch d.Level {
	case LevelMonthly:
		return d.Crumb + " — Months"
	case LevelWeekly:
		return d.Crumb + " — Weeks"
	case LevelDaily:
		return d.Crumb + " — Days"
	default:
		return d.Period.String()
	}
}

// Unit names what each bucket represents at the current position.
func (d Drill) Unit() string {
	switch d.Level {
	case LevelMonthly:
		return "months"
	case LevelWeekly:
		return "weeks"
	case LevelDaily:
		return "days"
	}
	switch d.Period {
	case PeriodMonthly:
		return "months"
	case PeriodYearly:
		return "years"
	default:
		return "weeks"
	}
}

func dropLastCrumb(crumb string) string {
	if i := strings.LastIndex(crumb, " > "); i >= 0 {
		return crumb[:i]
	}
	return crumb
}
