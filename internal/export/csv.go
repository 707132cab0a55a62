package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/japa/internal/stats"
	"github.com/sadopc/japa/internal/store"
)

// ToCSV writes the daily log window for one mantra, oldest first.
func ToCSV(m *store.Mantra, entries []stats.DayEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Day", "Count", "Malas", "Status", "Remark"}); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.Date,
			e.Weekday.String(),
			fmt.Sprintf("%d", e.Count),
			fmt.Sprintf("%d", e.Malas),
			dayStatus(e),
			e.Remark,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func dayStatus(e stats.DayEntry) string {
	switch {
	case e.Count > 0:
		return "practiced"
	case e.IsPracticeDay:
		return "missed"
	default:
		return "rest"
	}
}
