package store

import (
	"time"

	"github.com/sadopc/japa/internal/dateutil"
)

// DefaultMalaSize is the traditional bead count per cycle.
const DefaultMalaSize = 108

// Mantra is a repetition-counting target with its own schedule and history.
type Mantra struct {
	ID           int64
	Name         string
	MalaSize     int
	PracticeDays []time.Weekday
	TotalCount   int
	TodayCount   int
	CreatedAt    string // YYYY-MM-DD, the first day any record may carry
	LastUpdated  time.Time

	// History holds one finalized record per date, ordered oldest first.
	History []DailyRecord
}

// DailyRecord is a finalized per-day entry. MalaCount is always derived from
// the count, never stored.
type DailyRecord struct {
	ID              int64
	MantraID        int64
	Date            string // YYYY-MM-DD, unique per mantra
	Count           int
	Remark          string
	BeadsUpdated    bool
	SettingsUpdated bool
	LastUpdated     time.Time
}

// Malas returns floor(count / malaSize), guarding a zero size.
func Malas(count, malaSize int) int {
	if malaSize <= 0 {
		return 0
	}
	return count / malaSize
}

func (r DailyRecord) Practiced() bool { return r.Count > 0 }

// IsPracticeDay reports whether w is one of the mantra's scheduled weekdays.
func (m *Mantra) IsPracticeDay(w time.Weekday) bool {
	for _, d := range m.PracticeDays {
		if d == w {
			return true
		}
	}
	return false
}

// CountOn returns the count for a date key: todayCount when the key is
// today, else the matching record's count, else 0. Never fails.
func (m *Mantra) CountOn(date string, today time.Time) int {
	if date == dateutil.ISO(today) {
		return m.TodayCount
	}
	for i := range m.History {
		if m.History[i].Date == date {
			return m.History[i].Count
		}
	}
	return 0
}

// Record returns the record for a date key, or nil.
func (m *Mantra) Record(date string) *DailyRecord {
	for i := range m.History {
		if m.History[i].Date == date {
			return &m.History[i]
		}
	}
	return nil
}

// CreatedDate returns the creation day at local midnight.
func (m *Mantra) CreatedDate() time.Time {
	t, err := dateutil.ParseISO(m.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TotalMalas is the lifetime mala count at the current mala size.
func (m *Mantra) TotalMalas() int { return Malas(m.TotalCount, m.MalaSize) }

// TodayMalas is today's completed cycles at the current mala size.
func (m *Mantra) TodayMalas() int { return Malas(m.TodayCount, m.MalaSize) }
