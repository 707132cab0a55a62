package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/japa/internal/dateutil"
)

var (
	ErrNegativeCount = errors.New("count must be non-negative")
	ErrDateOutOfRange = errors.New("date outside [createdAt, today]")
)

func (s *Store) listRecords(mantraID int64) ([]DailyRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, mantra_id, date, count, remark, beads_updated, settings_updated, last_updated
		 FROM daily_records WHERE mantra_id = ? ORDER BY date`, mantraID,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []DailyRecord
	for rows.Next() {
		var r DailyRecord
		var beads, settings int
		var lastUpdated string
		if err := rows.Scan(&r.ID, &r.MantraID, &r.Date, &r.Count, &r.Remark, &beads, &settings, &lastUpdated); err != nil {
			return nil, err
		}
		r.BeadsUpdated = beads == 1
		r.SettingsUpdated = settings == 1
		r.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
		records = append(records, r)
	}
	return records, rows.Err()
}

// writeRecord inserts or replaces the single record for (mantraID, date).
func (s *Store) writeRecord(mantraID int64, date string, count int, remark string, beads, settings bool) error {
	_, err := s.db.Exec(
		`INSERT INTO daily_records (mantra_id, date, count, remark, beads_updated, settings_updated, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(mantra_id, date) DO UPDATE SET
			count = excluded.count,
			remark = excluded.remark,
			beads_updated = excluded.beads_updated,
			settings_updated = excluded.settings_updated,
			last_updated = excluded.last_updated`,
		mantraID, date, count, remark, boolInt(beads), boolInt(settings),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write record %s: %w", date, err)
	}
	return nil
}

// UpsertRecord is the explicit-correction path for historical entries.
// The date must parse and fall within [createdAt, today]; an existing
// remark is preserved.
func (s *Store) UpsertRecord(mantraID int64, date string, count int) error {
	if count < 0 {
		return ErrNegativeCount
	}
	m, err := s.GetMantra(mantraID)
	if err != nil {
		return err
	}
	d, err := dateutil.ParseISO(date)
	if err != nil {
		return err
	}
	today := dateutil.Midnight(s.now())
	if d.Before(m.CreatedDate()) || d.After(today) {
		return ErrDateOutOfRange
	}

	remark, beads, settings := "", false, false
	if rec := m.Record(date); rec != nil {
		remark, beads, settings = rec.Remark, rec.BeadsUpdated, rec.SettingsUpdated
	}
	if err := s.writeRecord(mantraID, date, count, remark, beads, settings); err != nil {
		return err
	}

	// Editing today's record re-bases the running counter; either way the
	// lifetime total is recomputed from the sum identity.
	if date == dateutil.ISO(today) {
		if _, err := s.db.Exec(`UPDATE mantras SET today_count = ? WHERE id = ?`, count, mantraID); err != nil {
			return fmt.Errorf("rebase today count: %w", err)
		}
	}
	return s.recomputeTotal(mantraID)
}

// SetRemark attaches free text to a date, creating an empty record if none
// exists yet.
func (s *Store) SetRemark(mantraID int64, date, remark string) error {
	if _, err := dateutil.ParseISO(date); err != nil {
		return err
	}
	m, err := s.GetMantra(mantraID)
	if err != nil {
		return err
	}
	count, beads, settings := 0, false, false
	if rec := m.Record(date); rec != nil {
		count, beads, settings = rec.Count, rec.BeadsUpdated, rec.SettingsUpdated
	}
	return s.writeRecord(mantraID, date, count, remark, beads, settings)
}

// FinalizeDay writes the current running counter into the record for date,
// merging any partial record (e.g. a remark added ahead of time). The
// running counter itself is untouched so save-and-reset and
// discard-and-reset stay separate steps.
func (s *Store) FinalizeDay(mantraID int64, date string) error {
	m, err := s.GetMantra(mantraID)
	if err != nil {
		return err
	}
	remark, beads, settings := "", false, false
	if rec := m.Record(date); rec != nil {
		remark, beads, settings = rec.Remark, rec.BeadsUpdated, rec.SettingsUpdated
	}
	return s.writeRecord(mantraID, date, m.TodayCount, remark, beads, settings)
}

// DiscardCarryover drops a running counter that was never saved across a
// day boundary: the lifetime total shrinks by the counter, the counter
// zeroes, and the record mirrored for the old date disappears (kept with a
// zero count only when it carries a remark or status flags worth keeping).
func (s *Store) DiscardCarryover(mantraID int64, date string) error {
	m, err := s.GetMantra(mantraID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE mantras SET total_count = total_count - today_count, today_count = 0, last_updated = ? WHERE id = ?`,
		s.now().UTC().Format(time.RFC3339), mantraID,
	)
	if err != nil {
		return fmt.Errorf("discard carryover: %w", err)
	}
	if rec := m.Record(date); rec != nil {
		if rec.Remark == "" && !rec.BeadsUpdated && !rec.SettingsUpdated {
			if _, err := s.db.Exec(`DELETE FROM daily_records WHERE mantra_id = ? AND date = ?`, mantraID, date); err != nil {
				return fmt.Errorf("drop record %s: %w", date, err)
			}
		} else if err := s.writeRecord(mantraID, date, 0, rec.Remark, rec.BeadsUpdated, rec.SettingsUpdated); err != nil {
			return err
		}
	}
	return nil
}

// ZeroToday clears the running counter without touching the lifetime total.
func (s *Store) ZeroToday(mantraID int64) error {
	_, err := s.db.Exec(
		`UPDATE mantras SET today_count = 0, last_updated = ? WHERE id = ?`,
		s.now().UTC().Format(time.RFC3339), mantraID,
	)
	if err != nil {
		return fmt.Errorf("zero today: %w", err)
	}
	return nil
}

// recomputeTotal restores the invariant
// total = today + sum(records dated before today).
func (s *Store) recomputeTotal(mantraID int64) error {
	today := dateutil.ISO(s.now())
	_, err := s.db.Exec(
		`UPDATE mantras SET total_count = today_count + COALESCE(
			(SELECT SUM(count) FROM daily_records WHERE mantra_id = ? AND date != ?), 0)
		 WHERE id = ?`,
		mantraID, today, mantraID,
	)
	if err != nil {
		return fmt.Errorf("recompute total: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
