package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/japa/internal/dateutil"
)

var (
	ErrEmptyName      = errors.New("mantra name is empty")
	ErrBadMalaSize    = errors.New("mala size must be a positive integer")
	ErrBadWeekday     = errors.New("practice day out of range 0-6")
	ErrNoPracticeDays = errors.New("at least one practice day is required")
)

// CreateMantra inserts a new mantra. Zero malaSize resolves to
// DefaultMalaSize and empty practiceDays to every weekday; anything else
// invalid is rejected and nothing is written.
func (s *Store) CreateMantra(name string, malaSize int, practiceDays []time.Weekday) (*Mantra, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if malaSize == 0 {
		malaSize = DefaultMalaSize
	}
	if malaSize < 0 {
		return nil, ErrBadMalaSize
	}
	if len(practiceDays) == 0 {
		practiceDays = allWeekdays()
	}
	for _, d := range practiceDays {
		if d < time.Sunday || d > time.Saturday {
			return nil, ErrBadWeekday
		}
	}

	now := s.now()
	res, err := s.db.Exec(
		`INSERT INTO mantras (name, mala_size, practice_days, created_at, last_updated) VALUES (?, ?, ?, ?, ?)`,
		name, malaSize, encodeWeekdays(practiceDays), dateutil.ISO(now), now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert mantra: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetMantra(id)
}

// GetMantra loads a mantra with its full daily history.
func (s *Store) GetMantra(id int64) (*Mantra, error) {
	m := &Mantra{}
	var days, lastUpdated string
	err := s.db.QueryRow(
		`SELECT id, name, mala_size, practice_days, total_count, today_count, created_at, last_updated
		 FROM mantras WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.MalaSize, &days, &m.TotalCount, &m.TodayCount, &m.CreatedAt, &lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("get mantra %d: %w", id, err)
	}
	m.PracticeDays = decodeWeekdays(days)
	m.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)

	m.History, err = s.listRecords(id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMantras returns all mantras with their histories, insertion order.
func (s *Store) ListMantras() ([]Mantra, error) {
	rows, err := s.db.Query(
		`SELECT id, name, mala_size, practice_days, total_count, today_count, created_at, last_updated
		 FROM mantras ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list mantras: %w", err)
	}
	defer rows.Close()

	var mantras []Mantra
	for rows.Next() {
		var m Mantra
		var days, lastUpdated string
		if err := rows.Scan(&m.ID, &m.Name, &m.MalaSize, &days, &m.TotalCount, &m.TodayCount, &m.CreatedAt, &lastUpdated); err != nil {
			return nil, err
		}
		m.PracticeDays = decodeWeekdays(days)
		m.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
		mantras = append(mantras, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range mantras {
		if mantras[i].History, err = s.listRecords(mantras[i].ID); err != nil {
			return nil, err
		}
	}
	return mantras, nil
}

// RenameMantra changes the display name only.
func (s *Store) RenameMantra(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.touchMantra(id, `name = ?`, name)
}

// SetMalaSize changes the beads-per-cycle and flags today's record so the
// change stays visible in history.
func (s *Store) SetMalaSize(id int64, malaSize int) error {
	if malaSize <= 0 {
		return ErrBadMalaSize
	}
	m, err := s.GetMantra(id)
	if err != nil {
		return err
	}
	if malaSize == m.MalaSize {
		return nil
	}
	if err := s.touchMantra(id, `mala_size = ?`, malaSize); err != nil {
		return err
	}
	return s.markSettingsChanged(m, true)
}

// SetPracticeDays changes the expected-practice schedule and flags today's
// record.
func (s *Store) SetPracticeDays(id int64, days []time.Weekday) error {
	if len(days) == 0 {
		return ErrNoPracticeDays
	}
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return ErrBadWeekday
		}
	}
	m, err := s.GetMantra(id)
	if err != nil {
		return err
	}
	if err := s.touchMantra(id, `practice_days = ?`, encodeWeekdays(days)); err != nil {
		return err
	}
	return s.markSettingsChanged(m, false)
}

// markSettingsChanged upserts today's record with the updated flags,
// carrying the running count into it (original app behavior).
func (s *Store) markSettingsChanged(m *Mantra, beads bool) error {
	today := dateutil.ISO(s.now())
	rec := m.Record(today)
	count := m.TodayCount
	remark := ""
	if rec != nil {
		remark = rec.Remark
		beads = beads || rec.BeadsUpdated
	}
	return s.writeRecord(m.ID, today, count, remark, beads, true)
}

func (s *Store) DeleteMantra(id int64) error {
	_, err := s.db.Exec(`DELETE FROM mantras WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete mantra %d: %w", id, err)
	}
	return nil
}

// IncrementCount adds one repetition to today's running counter,
// the lifetime total, and today's record.
func (s *Store) IncrementCount(id int64) (*Mantra, error) {
	return s.bumpCount(id, +1)
}

// DecrementCount removes one repetition; a zero counter is left alone.
func (s *Store) DecrementCount(id int64) (*Mantra, error) {
	return s.bumpCount(id, -1)
}

func (s *Store) bumpCount(id int64, delta int) (*Mantra, error) {
	m, err := s.GetMantra(id)
	if err != nil {
		return nil, err
	}
	if delta < 0 && m.TodayCount <= 0 {
		return m, nil
	}

	newToday := m.TodayCount + delta
	newTotal := m.TotalCount + delta
	now := s.now()
	_, err = s.db.Exec(
		`UPDATE mantras SET today_count = ?, total_count = ?, last_updated = ? WHERE id = ?`,
		newToday, newTotal, now.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update count: %w", err)
	}

	// Mirror the running counter into today's record so the log and the
	// counter can never disagree mid-day.
	today := dateutil.ISO(now)
	remark, beads, settings := "", false, false
	if rec := m.Record(today); rec != nil {
		remark, beads, settings = rec.Remark, rec.BeadsUpdated, rec.SettingsUpdated
	}
	if err := s.writeRecord(id, today, newToday, remark, beads, settings); err != nil {
		return nil, err
	}
	return s.GetMantra(id)
}

// DiscardToday zeroes the running counter and removes the discarded amount
// from the lifetime total, so it disappears from every aggregate.
func (s *Store) DiscardToday(id int64) (*Mantra, error) {
	m, err := s.GetMantra(id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	_, err = s.db.Exec(
		`UPDATE mantras SET total_count = total_count - today_count, today_count = 0, last_updated = ? WHERE id = ?`,
		now.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("discard today: %w", err)
	}
	today := dateutil.ISO(now)
	if rec := m.Record(today); rec != nil {
		if err := s.writeRecord(id, today, 0, rec.Remark, rec.BeadsUpdated, rec.SettingsUpdated); err != nil {
			return nil, err
		}
	}
	return s.GetMantra(id)
}

func (s *Store) touchMantra(id int64, setClause string, val any) error {
	res, err := s.db.Exec(
		`UPDATE mantras SET `+setClause+`, last_updated = ? WHERE id = ?`,
		val, s.now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("update mantra %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update mantra %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func allWeekdays() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}
