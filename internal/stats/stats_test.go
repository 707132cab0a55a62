package stats

import (
	"testing"
	"time"

	"github.com/sadopc/japa/internal/store"
)

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.Local)
}

// tenDayMantra reproduces a small fixed history: created ten days before
// today, practiced on days 2, 3 and 5 (counts 108, 108, 54), nothing today.
func tenDayMantra() (*store.Mantra, time.Time) {
	today := day(2026, time.August, 31)
	m := &store.Mantra{
		Name:      "Test",
		MalaSize:  108,
		CreatedAt: "2026-08-22",
		PracticeDays: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		History: []store.DailyRecord{
			{Date: "2026-08-23", Count: 108},
			{Date: "2026-08-24", Count: 108},
			{Date: "2026-08-26", Count: 54},
		},
	}
	return m, today
}

// ============================================================
// Window
// ============================================================

func TestWindowStopsAtCreation(t *testing.T) {
	m, today := tenDayMantra()
	entries := Window(m, today, WindowDays)
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	if entries[0].Date != "2026-08-22" || entries[9].Date != "2026-08-31" {
		t.Fatalf("window = %s..%s", entries[0].Date, entries[len(entries)-1].Date)
	}
	if !entries[9].IsToday || entries[0].IsToday {
		t.Fatal("IsToday flag misplaced")
	}
}

func TestWindowTodayReadsRunningCounter(t *testing.T) {
	m, today := tenDayMantra()
	m.TodayCount = 17
	// A stale mirrored record for today must not shadow the counter.
	m.History = append(m.History, store.DailyRecord{Date: "2026-08-31", Count: 3, Remark: "short session"})

	entries := Window(m, today, WindowDays)
	last := entries[len(entries)-1]
	if last.Count != 17 {
		t.Fatalf("today count = %d", last.Count)
	}
	if last.Remark != "short session" {
		t.Fatalf("remark = %q", last.Remark)
	}
}

func TestWindowCapsAtMaxDays(t *testing.T) {
	today := day(2026, time.August, 31)
	m := &store.Mantra{Name: "Old", MalaSize: 108, CreatedAt: "2020-01-01"}

	entries := Window(m, today, WindowDays)
	if len(entries) != WindowDays {
		t.Fatalf("expected %d entries, got %d", WindowDays, len(entries))
	}
}

func TestFilter(t *testing.T) {
	m, today := tenDayMantra()
	entries := Window(m, today, WindowDays)

	got := Filter(entries, "2026-08-24", "2026-08-26")
	if len(got) != 3 || got[0].Date != "2026-08-24" || got[2].Date != "2026-08-26" {
		t.Fatalf("filtered = %+v", got)
	}
	if got := Filter(entries, "", ""); len(got) != len(entries) {
		t.Fatal("open filter should keep everything")
	}
}

// ============================================================
// Summary
// ============================================================

func TestComputeTenDayHistory(t *testing.T) {
	m, today := tenDayMantra()
	s := Compute(Window(m, today, WindowDays), m.MalaSize, today)

	if s.TotalCount != 270 {
		t.Fatalf("total = %d", s.TotalCount)
	}
	if s.TotalMalas != 2 {
		t.Fatalf("malas = %d", s.TotalMalas)
	}
	if s.TotalDays != 10 || s.PracticedDays != 3 || s.MissedDays != 7 {
		t.Fatalf("days: total=%d practiced=%d missed=%d", s.TotalDays, s.PracticedDays, s.MissedDays)
	}
	if s.Consistency != 30 {
		t.Fatalf("consistency = %d", s.Consistency)
	}
	// Two 108-count days tie; the earlier one wins.
	if s.BestDate != "2026-08-23" || s.BestCount != 108 || s.BestMalas != 1 {
		t.Fatalf("best: %s %d (%d malas)", s.BestDate, s.BestCount, s.BestMalas)
	}
	if s.BestStreak != 2 {
		t.Fatalf("best streak = %d", s.BestStreak)
	}
	// Last practice was five days ago, so no current streak.
	if s.CurrentStreak != 0 {
		t.Fatalf("current streak = %d", s.CurrentStreak)
	}
	if s.AvgPerDay != 27 || s.AvgPerPracticedDay != 90 {
		t.Fatalf("avg=%d avgPracticed=%d", s.AvgPerDay, s.AvgPerPracticedDay)
	}
	if !s.HasPractice {
		t.Fatal("HasPractice should be true")
	}
}

func TestComputeEmptyWindow(t *testing.T) {
	today := day(2026, time.August, 31)
	s := Compute(nil, 108, today)
	if s.TotalCount != 0 || s.Consistency != 0 || s.AvgPerDay != 0 || s.CurrentStreak != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
	if s.HasPractice || s.BestDate != "" {
		t.Fatalf("empty summary = %+v", s)
	}
}

func TestComputeZeroMalaSizeGuard(t *testing.T) {
	entries := []DayEntry{{Date: "2026-08-30", Count: 100}}
	s := Compute(entries, 0, day(2026, time.August, 31))
	if s.TotalMalas != 0 || s.BestMalas != 0 {
		t.Fatalf("malas with zero bead count: %+v", s)
	}
}

func TestRestDaysExcludedFromConsistency(t *testing.T) {
	// Practice scheduled Mon/Wed/Fri only; the week has 3 expected days.
	today := day(2026, time.August, 30) // Sunday
	m := &store.Mantra{
		Name:         "Sched",
		MalaSize:     108,
		CreatedAt:    "2026-08-24", // Monday
		PracticeDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		History: []store.DailyRecord{
			{Date: "2026-08-24", Count: 108},
			{Date: "2026-08-26", Count: 108},
		},
	}
	s := Compute(Window(m, today, WindowDays), m.MalaSize, today)
	if s.PracticedDays != 2 || s.MissedDays != 1 {
		t.Fatalf("practiced=%d missed=%d", s.PracticedDays, s.MissedDays)
	}
	if s.RestDays != 4 {
		t.Fatalf("rest days = %d", s.RestDays)
	}
	if s.Consistency != 67 {
		t.Fatalf("consistency = %d", s.Consistency)
	}
}

// ============================================================
// Streaks
// ============================================================

func TestCurrentStreakEndsToday(t *testing.T) {
	today := day(2026, time.August, 31)
	m := &store.Mantra{
		Name: "S", MalaSize: 108, CreatedAt: "2026-08-25",
		PracticeDays: []time.Weekday{time.Monday},
		TodayCount:   10,
		History: []store.DailyRecord{
			{Date: "2026-08-29", Count: 108},
			{Date: "2026-08-30", Count: 108},
		},
	}
	s := Compute(Window(m, today, WindowDays), m.MalaSize, today)
	if s.CurrentStreak != 3 || s.BestStreak != 3 {
		t.Fatalf("current=%d best=%d", s.CurrentStreak, s.BestStreak)
	}
}

func TestCurrentStreakSurvivesYesterday(t *testing.T) {
	// Practiced through yesterday but not yet today: the streak holds.
	today := day(2026, time.August, 31)
	m := &store.Mantra{
		Name: "S", MalaSize: 108, CreatedAt: "2026-08-25",
		PracticeDays: []time.Weekday{time.Monday},
		History: []store.DailyRecord{
			{Date: "2026-08-29", Count: 54},
			{Date: "2026-08-30", Count: 54},
		},
	}
	s := Compute(Window(m, today, WindowDays), m.MalaSize, today)
	if s.CurrentStreak != 2 {
		t.Fatalf("current = %d", s.CurrentStreak)
	}
}

func TestStreakBrokenByGap(t *testing.T) {
	today := day(2026, time.August, 31)
	m := &store.Mantra{
		Name: "S", MalaSize: 108, CreatedAt: "2026-08-20",
		PracticeDays: []time.Weekday{time.Monday},
		TodayCount:   10,
		History: []store.DailyRecord{
			{Date: "2026-08-21", Count: 108},
			{Date: "2026-08-22", Count: 108},
			{Date: "2026-08-23", Count: 108},
			// gap
			{Date: "2026-08-30", Count: 54},
		},
	}
	s := Compute(Window(m, today, WindowDays), m.MalaSize, today)
	if s.BestStreak != 3 {
		t.Fatalf("best = %d", s.BestStreak)
	}
	// Yesterday + today form the trailing run.
	if s.CurrentStreak != 2 {
		t.Fatalf("current = %d", s.CurrentStreak)
	}
}

// ============================================================
// Weekday distribution
// ============================================================

func TestWeekdayDistribution(t *testing.T) {
	m, today := tenDayMantra()
	s := Compute(Window(m, today, WindowDays), m.MalaSize, today)

	// 2026-08-23 is a Sunday, 08-24 a Monday, 08-26 a Wednesday.
	if s.Weekdays[time.Sunday].Count != 108 || s.Weekdays[time.Monday].Count != 108 {
		t.Fatalf("weekdays = %+v", s.Weekdays)
	}
	if s.Weekdays[time.Wednesday].Count != 54 || s.Weekdays[time.Wednesday].ActiveDays != 1 {
		t.Fatalf("weekdays = %+v", s.Weekdays)
	}
	if s.TopWeekday != time.Sunday {
		t.Fatalf("top weekday = %v", s.TopWeekday)
	}
}
