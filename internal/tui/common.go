package tui

import (
	"fmt"

	"github.com/sadopc/japa/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewCounting
	viewHistory
	viewSettings
)

var viewNames = []string{"Dashboard", "Counting", "History", "Settings"}

// --- Messages ---

type mantrasDataMsg struct {
	mantras  []store.Mantra
	activeID int64
}

type mantraCreatedMsg struct {
	mantra *store.Mantra
}

// dataChangedMsg flows up after any mutation so the app can refresh and
// mirror the new state to the backup.
type dataChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg struct{}

// resetPendingMsg flips the app into the day-boundary modal.
type resetPendingMsg struct {
	pendingDate string
}

type resetDoneMsg struct {
	saved bool
}

type exportDoneMsg struct {
	path string
}

type backupDoneMsg struct{}

// --- Helpers ---

func formatCount(count, malaSize int) string {
	malas := store.Malas(count, malaSize)
	if malas == 0 {
		return fmt.Sprintf("%d", count)
	}
	return fmt.Sprintf("%d (%d mala)", count, malas)
}

// malaProgress reports position within the current cycle, e.g. 37/108.
func malaProgress(count, malaSize int) (int, int) {
	if malaSize <= 0 {
		return 0, 0
	}
	return count % malaSize, malaSize
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
