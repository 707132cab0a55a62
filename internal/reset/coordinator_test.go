package reset

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/japa/internal/store"
)

// clockAt pins both the store and the coordinator to one moment.
func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newFixture(t *testing.T, at time.Time) (*store.Store, *Coordinator) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.SetClock(clockAt(at))
	return s, NewAt(s, clockAt(at))
}

func advance(t *testing.T, s *store.Store, c *Coordinator, to time.Time) {
	t.Helper()
	s.SetClock(clockAt(to))
	c.now = clockAt(to)
}

// ============================================================
// Check
// ============================================================

func TestCheckFirstRunInitializesSilently(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	s, c := newFixture(t, day1)

	state, err := c.Check()
	if err != nil {
		t.Fatal(err)
	}
	if state != StateIdle {
		t.Fatalf("first run state = %v", state)
	}
	v, _ := s.GetSetting("last_reset_date")
	if v != "2026-04-02" {
		t.Fatalf("marker = %q", v)
	}
}

func TestCheckSameDayStaysIdle(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	_, c := newFixture(t, day1)

	c.Check()
	state, err := c.Check()
	if err != nil {
		t.Fatal(err)
	}
	if state != StateIdle || c.PendingDate() != "" {
		t.Fatalf("state=%v pending=%q", state, c.PendingDate())
	}
}

func TestCheckDetectsDayBoundary(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	s, c := newFixture(t, day1)
	c.Check()

	advance(t, s, c, day1.AddDate(0, 0, 1))
	state, err := c.Check()
	if err != nil {
		t.Fatal(err)
	}
	if state != StatePending {
		t.Fatalf("state = %v", state)
	}
	if c.PendingDate() != "2026-04-02" {
		t.Fatalf("pending date = %q", c.PendingDate())
	}
}

func TestResolveWithoutPending(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	_, c := newFixture(t, day1)
	c.Check()

	if err := c.Resolve(OutcomeSave); !errors.Is(err, ErrNotPending) {
		t.Fatalf("got %v", err)
	}
}

// ============================================================
// Resolve: save
// ============================================================

func TestResolveSaveFinalizesCarryover(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	s, c := newFixture(t, day1)
	c.Check()

	m, _ := s.CreateMantra("Japa", 108, nil)
	for i := 0; i < 36; i++ {
		s.IncrementCount(m.ID)
	}

	advance(t, s, c, day1.AddDate(0, 0, 1))
	if state, _ := c.Check(); state != StatePending {
		t.Fatal("expected pending state")
	}
	if err := c.Resolve(OutcomeSave); err != nil {
		t.Fatal(err)
	}

	m, _ = s.GetMantra(m.ID)
	rec := m.Record("2026-04-02")
	if rec == nil || rec.Count != 36 {
		t.Fatalf("record = %+v", rec)
	}
	if got := store.Malas(rec.Count, m.MalaSize); got != 0 {
		t.Fatalf("36 of 108 beads is 0 malas, got %d", got)
	}
	// Lifetime total keeps the saved counts; only the counter resets.
	if m.TotalCount != 36 || m.TodayCount != 0 {
		t.Fatalf("total=%d today=%d", m.TotalCount, m.TodayCount)
	}

	v, _ := s.GetSetting("last_reset_date")
	if v != "2026-04-03" {
		t.Fatalf("marker = %q", v)
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %v", c.State())
	}
}

func TestResolveSaveSkipsZeroDays(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	s, c := newFixture(t, day1)
	c.Check()

	m, _ := s.CreateMantra("Untouched", 108, nil)

	advance(t, s, c, day1.AddDate(0, 0, 1))
	c.Check()
	if err := c.Resolve(OutcomeSave); err != nil {
		t.Fatal(err)
	}

	m, _ = s.GetMantra(m.ID)
	if m.Record("2026-04-02") != nil {
		t.Fatal("zero-count day should leave no record")
	}
}

func TestResolveSaveMergesPartialRecord(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	s, c := newFixture(t, day1)
	c.Check()

	m, _ := s.CreateMantra("Japa", 108, nil)
	s.SetRemark(m.ID, "2026-04-02", "rest day")

	advance(t, s, c, day1.AddDate(0, 0, 1))
	c.Check()
	if err := c.Resolve(OutcomeSave); err != nil {
		t.Fatal(err)
	}

	m, _ = s.GetMantra(m.ID)
	rec := m.Record("2026-04-02")
	if rec == nil || rec.Count != 0 || rec.Remark != "rest day" {
		t.Fatalf("record = %+v", rec)
	}
}

// ============================================================
// Resolve: discard
// ============================================================

func TestResolveDiscardDropsCarryover(t *testing.T) {
	day1 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.Local)
	s, c := newFixture(t, day1)
	c.Check()

	m, _ := s.CreateMantra("Japa", 108, nil)
	for i := 0; i < 42; i++ {
		s.IncrementCount(m.ID)
	}
	advance(t, s, c, day1.AddDate(0, 0, 1))
	c.Check()
	if err := c.Resolve(OutcomeDiscard); err != nil {
		t.Fatal(err)
	}

	m, _ = s.GetMantra(m.ID)
	if m.TotalCount != 0 || m.TodayCount != 0 {
		t.Fatalf("total=%d today=%d", m.TotalCount, m.TodayCount)
	}
	if m.Record("2026-04-02") != nil {
		t.Fatal("discarded day should leave no record")
	}
	v, _ := s.GetSetting("last_reset_date")
	if v != "2026-04-03" {
		t.Fatalf("marker = %q", v)
	}
}

func TestResolveDiscardPreservesPriorHistory(t *testing.T) {
	day1 := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.Local)
	s, c := newFixture(t, day1)
	c.Check()

	m, _ := s.CreateMantra("Japa", 108, nil)
	for i := 0; i < 108; i++ {
		s.IncrementCount(m.ID)
	}

	// Cross into April 2 and save, then accumulate again and discard on
	// April 3. Only the second day's counts vanish.
	advance(t, s, c, day1.AddDate(0, 0, 1))
	c.Check()
	if err := c.Resolve(OutcomeSave); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 42; i++ {
		s.IncrementCount(m.ID)
	}

	advance(t, s, c, day1.AddDate(0, 0, 2))
	c.Check()
	if err := c.Resolve(OutcomeDiscard); err != nil {
		t.Fatal(err)
	}

	m, _ = s.GetMantra(m.ID)
	if m.TotalCount != 108 || m.TodayCount != 0 {
		t.Fatalf("total=%d today=%d", m.TotalCount, m.TodayCount)
	}
	if rec := m.Record("2026-04-01"); rec == nil || rec.Count != 108 {
		t.Fatalf("first day record = %+v", rec)
	}
	if m.Record("2026-04-02") != nil {
		t.Fatal("discarded day should leave no record")
	}
}
