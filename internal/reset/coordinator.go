// Package reset detects day-boundary crossings and migrates the running
// counters into finalized daily records.
package reset

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/japa/internal/dateutil"
	"github.com/sadopc/japa/internal/store"
)

type State int

const (
	StateIdle State = iota
	StatePending
)

type Outcome int

const (
	// OutcomeSave finalizes the carried-over counts into history for the
	// old date, then zeroes the running counters.
	OutcomeSave Outcome = iota
	// OutcomeDiscard zeroes the running counters and removes the discarded
	// amounts from the lifetime totals. No record is written.
	OutcomeDiscard
)

var ErrNotPending = errors.New("no day boundary pending")

const lastResetKey = "last_reset_date"

// Coordinator compares the stored last-reset date against today and, on a
// mismatch, holds a pending reset until the caller resolves it with an
// explicit outcome. It never resets counts on its own.
type Coordinator struct {
	store *store.Store
	now   func() time.Time

	state       State
	pendingDate string // date key the counters still belong to
}

func New(s *store.Store) *Coordinator {
	return &Coordinator{store: s, now: time.Now}
}

// NewAt builds a coordinator with an injected clock for tests.
func NewAt(s *store.Store, now func() time.Time) *Coordinator {
	return &Coordinator{store: s, now: now}
}

func (c *Coordinator) State() State        { return c.state }
func (c *Coordinator) PendingDate() string { return c.pendingDate }

// Check compares the stored last-reset date with today. The first run
// initializes the marker silently; a stale marker flips to StatePending.
func (c *Coordinator) Check() (State, error) {
	today := dateutil.ISO(c.now())

	stored, err := c.store.GetSetting(lastResetKey)
	if err != nil {
		return c.state, fmt.Errorf("read %s: %w", lastResetKey, err)
	}

	if stored == "" {
		if err := c.store.SetSetting(lastResetKey, today); err != nil {
			return c.state, fmt.Errorf("init %s: %w", lastResetKey, err)
		}
		c.state = StateIdle
		return c.state, nil
	}

	if stored != today {
		c.state = StatePending
		c.pendingDate = stored
	} else {
		c.state = StateIdle
		c.pendingDate = ""
	}
	return c.state, nil
}

// Resolve applies the chosen outcome to every mantra and advances the
// last-reset marker to today.
func (c *Coordinator) Resolve(outcome Outcome) error {
	if c.state != StatePending {
		return ErrNotPending
	}

	mantras, err := c.store.ListMantras()
	if err != nil {
		return err
	}

	for i := range mantras {
		m := &mantras[i]
		switch outcome {
		case OutcomeSave:
			// Zero-count days leave no record unless a partial one (e.g. a
			// remark) already exists to merge with.
			if m.TodayCount > 0 || m.Record(c.pendingDate) != nil {
				if err := c.store.FinalizeDay(m.ID, c.pendingDate); err != nil {
					return err
				}
			}
			if err := c.store.ZeroToday(m.ID); err != nil {
				return err
			}
		case OutcomeDiscard:
			if err := c.store.DiscardCarryover(m.ID, c.pendingDate); err != nil {
				return err
			}
		}
	}

	if err := c.store.SetSetting(lastResetKey, dateutil.ISO(c.now())); err != nil {
		return fmt.Errorf("advance %s: %w", lastResetKey, err)
	}
	c.state = StateIdle
	c.pendingDate = ""
	return nil
}
