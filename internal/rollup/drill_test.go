package rollup

import (
	"testing"
	"time"
)

// ============================================================
// Zoom transitions
// ============================================================

func TestZoomInFromYearly(t *testing.T) {
	d := NewDrill(PeriodYearly)

	d, ok := d.ZoomIn(Bucket{Label: "Y1", Year: 2025})
	if !ok || d.Level != LevelMonthly || d.Year != 2025 {
		t.Fatalf("after year zoom: %+v", d)
	}
	if d.Crumb != "2025" {
		t.Fatalf("crumb = %q", d.Crumb)
	}

	d, ok = d.ZoomIn(Bucket{Label: "Mar", Year: 2025, Month: time.March})
	if !ok || d.Level != LevelWeekly || d.Month != time.March {
		t.Fatalf("after month zoom: %+v", d)
	}
	if d.Crumb != "2025 > Mar" {
		t.Fatalf("crumb = %q", d.Crumb)
	}

	d, ok = d.ZoomIn(Bucket{Label: "W2", Year: 2025, Month: time.March, WeekStart: "2025-03-03"})
	if !ok || d.Level != LevelDaily || d.WeekStart != "2025-03-03" {
		t.Fatalf("after week zoom: %+v", d)
	}
	if d.Crumb != "2025 > Mar > W2" {
		t.Fatalf("crumb = %q", d.Crumb)
	}

	// Daily is terminal.
	if _, ok := d.ZoomIn(Bucket{}); ok {
		t.Fatal("daily level should not zoom further")
	}
}

func TestZoomOutReversesYearlyPath(t *testing.T) {
	d := NewDrill(PeriodYearly)
	d, _ = d.ZoomIn(Bucket{Year: 2025})
	d, _ = d.ZoomIn(Bucket{Year: 2025, Month: time.March, Label: "Mar"})
	d, _ = d.ZoomIn(Bucket{Year: 2025, Month: time.March, WeekStart: "2025-03-03", Label: "W2"})

	d = d.ZoomOut()
	if d.Level != LevelWeekly || d.Year != 2025 || d.Month != time.March {
		t.Fatalf("after first pop: %+v", d)
	}
	d = d.ZoomOut()
	if d.Level != LevelMonthly || d.Year != 2025 || d.Crumb != "2025" {
		t.Fatalf("after second pop: %+v", d)
	}
	d = d.ZoomOut()
	if d.Level != LevelFlat || d.Period != PeriodYearly {
		t.Fatalf("after third pop: %+v", d)
	}
	// Flat is the top; popping again is a no-op.
	if d.ZoomOut() != d {
		t.Fatal("flat pop should be a no-op")
	}
}

func TestZoomFromWeeklyFlatSkipsIntermediateLevels(t *testing.T) {
	d := NewDrill(PeriodWeekly)
	d, ok := d.ZoomIn(Bucket{Label: "W4", WeekStart: "2026-08-24", StartDate: "2026-08-24", EndDate: "2026-08-30"})
	if !ok || d.Level != LevelDaily {
		t.Fatalf("after zoom: %+v", d)
	}
	// Month context was never entered, so the pop goes straight back to flat.
	d = d.ZoomOut()
	if d.Level != LevelFlat || d.Period != PeriodWeekly {
		t.Fatalf("after pop: %+v", d)
	}
}

func TestZoomFromMonthlyFlat(t *testing.T) {
	d := NewDrill(PeriodMonthly)
	d, ok := d.ZoomIn(Bucket{Label: "M5", Year: 2026, Month: time.May})
	if !ok || d.Level != LevelWeekly || d.Crumb != "May 2026" {
		t.Fatalf("after zoom: %+v", d)
	}
	d = d.ZoomOut()
	if d.Level != LevelMonthly || d.Year != 2026 {
		t.Fatalf("after pop: %+v", d)
	}
}

func TestZoomInInertBucket(t *testing.T) {
	d := NewDrill(PeriodYearly)
	if _, ok := d.ZoomIn(Bucket{Label: "Y1"}); ok {
		t.Fatal("bucket without year context should be inert")
	}
	d = NewDrill(PeriodWeekly)
	if _, ok := d.ZoomIn(Bucket{Label: "W1"}); ok {
		t.Fatal("bucket without week context should be inert")
	}
}

func TestResetAndSetPeriod(t *testing.T) {
	d := NewDrill(PeriodYearly)
	d, _ = d.ZoomIn(Bucket{Year: 2025})

	reset := d.Reset()
	if reset.Level != LevelFlat || reset.Period != PeriodYearly || reset.Crumb != "" {
		t.Fatalf("reset = %+v", reset)
	}

	switched := d.SetPeriod(PeriodWeekly)
	if switched.Level != LevelFlat || switched.Period != PeriodWeekly || switched.Year != 0 {
		t.Fatalf("set period = %+v", switched)
	}
}

// ============================================================
// Dispatch and labels
// ============================================================

func TestDrillBucketsDispatch(t *testing.T) {
	today := day(2026, time.August, 31)
	m := testMantra("2026-06-15", 108, map[string]int{"2026-07-10": 108}, 0)

	d := NewDrill(PeriodYearly)
	if got := d.Buckets(m, today); len(got) != 1 || got[0].Label != "Y1" {
		t.Fatalf("flat yearly = %+v", got)
	}

	d, _ = d.ZoomIn(Bucket{Year: 2026})
	months := d.Buckets(m, today)
	if len(months) != 3 || months[1].Label != "Jul" {
		t.Fatalf("months = %+v", months)
	}

	d, _ = d.ZoomIn(months[1])
	weeks := d.Buckets(m, today)
	if len(weeks) == 0 || weeks[0].Year != 2026 {
		t.Fatalf("weeks = %+v", weeks)
	}

	d, _ = d.ZoomIn(weeks[1])
	days := d.Buckets(m, today)
	if len(days) != 7 {
		t.Fatalf("expected full week of days, got %d", len(days))
	}
}

func TestTitleAndUnit(t *testing.T) {
	d := NewDrill(PeriodWeekly)
	if d.Title() != "Weekly" || d.Unit() != "weeks" {
		t.Fatalf("flat weekly: title=%q unit=%q", d.Title(), d.Unit())
	}
	d = NewDrill(PeriodYearly)
	if d.Unit() != "years" {
		t.Fatalf("flat yearly unit = %q", d.Unit())
	}
	d, _ = d.ZoomIn(Bucket{Year: 2025})
	if d.Title() != "2025 — Months" || d.Unit() != "months" {
		t.Fatalf("drilled: title=%q unit=%q", d.Title(), d.Unit())
	}
}
