package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores snapshots as one JSON document per user under a base
// directory. It stands in for the remote store and shares its contract.
type FileBackend struct {
	Dir string
}

func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{Dir: dir}
}

// DefaultBackupDir returns ~/.config/japa/backup.
func DefaultBackupDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "japa", "backup"), nil
}

func (f *FileBackend) path(userID string) string {
	return filepath.Join(f.Dir, userID+".json")
}

func (f *FileBackend) Load(ctx context.Context, userID string) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(userID))
	if os.IsNotExist(err) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var snaps []Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return snaps, nil
}

func (f *FileBackend) Save(ctx context.Context, userID string, snaps []Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	data, err := json.MarshalIndent(snaps, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	// Write-then-rename keeps a crash from truncating the previous backup.
	tmp := f.path(userID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, f.path(userID)); err != nil {
		return fmt.Errorf("replace backup: %w", err)
	}
	return nil
}
