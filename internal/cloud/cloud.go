// Package cloud mirrors mantra snapshots to an external store. The backend
// is an opaque load/save pair; saves are fire-and-forget and a failure can
// never touch local state.
package cloud

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sadopc/japa/internal/store"
)

// ErrNoData marks an empty remote: a first-run condition, not a failure.
var ErrNoData = errors.New("no remote data")

// Snapshot is the wire form of one mantra with its history.
type Snapshot struct {
	Name         string       `json:"name"`
	MalaSize     int          `json:"mala_size"`
	PracticeDays []int        `json:"practice_days"`
	TotalCount   int          `json:"total_count"`
	TodayCount   int          `json:"today_count"`
	CreatedAt    string       `json:"created_at"`
	History      []DaySnapshot `json:"history,omitempty"`
}

type DaySnapshot struct {
	Date            string `json:"date"`
	Count           int    `json:"count"`
	Remark          string `json:"remark,omitempty"`
	BeadsUpdated    bool   `json:"beads_updated,omitempty"`
	SettingsUpdated bool   `json:"settings_updated,omitempty"`
}

// Backend is the persistence collaborator.
type Backend interface {
	Load(ctx context.Context, userID string) ([]Snapshot, error)
	Save(ctx context.Context, userID string, snaps []Snapshot) error
}

// Syncer guards the first write-through: until LoadInitial has run, saves
// are skipped so an unread (possibly stale or empty) remote can never be
// clobbered by — or clobber — populated local state.
type Syncer struct {
	backend Backend
	userID  string
	timeout time.Duration

	mu     sync.Mutex
	loaded bool
}

func NewSyncer(b Backend, userID string) *Syncer {
	return &Syncer{backend: b, userID: userID, timeout: 10 * time.Second}
}

// LoadInitial fetches the remote snapshots once. ErrNoData counts as a
// completed load with nothing to merge.
func (s *Syncer) LoadInitial(ctx context.Context) ([]Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snaps, err := s.backend.Load(ctx, s.userID)
	if err != nil && !errors.Is(err, ErrNoData) {
		return nil, err
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
	return snaps, nil
}

// Loaded reports whether the initial load has completed.
func (s *Syncer) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// SaveAsync mirrors the given mantras in the background. Failures are
// logged and dropped; local state stays authoritative.
func (s *Syncer) SaveAsync(mantras []store.Mantra) {
	if !s.Loaded() {
		log.Printf("cloud: skipping save, initial load not done")
		return
	}
	snaps := Pack(mantras)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.backend.Save(ctx, s.userID, snaps); err != nil {
			log.Printf("cloud: save failed: %v", err)
		}
	}()
}

// Pack converts store mantras into wire snapshots.
func Pack(mantras []store.Mantra) []Snapshot {
	snaps := make([]Snapshot, 0, len(mantras))
	for _, m := range mantras {
		snap := Snapshot{
			Name:       m.Name,
			MalaSize:   m.MalaSize,
			TotalCount: m.TotalCount,
			TodayCount: m.TodayCount,
			CreatedAt:  m.CreatedAt,
		}
		for _, d := range m.PracticeDays {
			snap.PracticeDays = append(snap.PracticeDays, int(d))
		}
		for _, r := range m.History {
			snap.History = append(snap.History, DaySnapshot{
				Date:            r.Date,
				Count:           r.Count,
				Remark:          r.Remark,
				BeadsUpdated:    r.BeadsUpdated,
				SettingsUpdated: r.SettingsUpdated,
			})
		}
		snaps = append(snaps, snap)
	}
	return snaps
}
