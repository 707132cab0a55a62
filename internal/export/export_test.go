package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/japa/internal/stats"
	"github.com/sadopc/japa/internal/store"
)

func testEntries() (*store.Mantra, []stats.DayEntry, stats.Summary) {
	m := &store.Mantra{Name: "Gayatri", MalaSize: 108}
	entries := []stats.DayEntry{
		{Date: "2026-08-29", Weekday: time.Saturday, Count: 108, Malas: 1, IsPracticeDay: true, Remark: "dawn"},
		{Date: "2026-08-30", Weekday: time.Sunday, Count: 0, IsPracticeDay: true},
		{Date: "2026-08-31", Weekday: time.Monday, Count: 0, IsPracticeDay: false},
	}
	summary := stats.Compute(entries, m.MalaSize, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.Local))
	return m, entries, summary
}

func TestToCSV(t *testing.T) {
	m, entries, _ := testEntries()
	path := filepath.Join(t.TempDir(), "export.csv")

	if err := ToCSV(m, entries, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][5] != "Remark" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][2] != "108" || rows[1][4] != "practiced" || rows[1][5] != "dawn" {
		t.Fatalf("row 1 = %v", rows[1])
	}
	if rows[2][4] != "missed" {
		t.Fatalf("row 2 = %v", rows[2])
	}
	if rows[3][4] != "rest" {
		t.Fatalf("row 3 = %v", rows[3])
	}
}

func TestToCSVBadPath(t *testing.T) {
	m, entries, _ := testEntries()
	if err := ToCSV(m, entries, "/nonexistent/dir/export.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSON(t *testing.T) {
	m, entries, summary := testEntries()
	path := filepath.Join(t.TempDir(), "export.json")

	if err := ToJSON(m, entries, summary, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Mantra  string `json:"mantra"`
		Summary struct {
			TotalCount  int `json:"total_count"`
			TotalMalas  int `json:"total_malas"`
			Consistency int `json:"consistency_pct"`
		} `json:"summary"`
		Days []struct {
			Date   string `json:"date"`
			Status string `json:"status"`
			Remark string `json:"remark"`
		} `json:"days"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}

	if got.Mantra != "Gayatri" {
		t.Fatalf("mantra = %q", got.Mantra)
	}
	if got.Summary.TotalCount != 108 || got.Summary.TotalMalas != 1 {
		t.Fatalf("summary = %+v", got.Summary)
	}
	// 2 of 2 expected practice days counted, one practiced.
	if got.Summary.Consistency != 50 {
		t.Fatalf("consistency = %d", got.Summary.Consistency)
	}
	if len(got.Days) != 3 || got.Days[0].Remark != "dawn" || got.Days[2].Status != "rest" {
		t.Fatalf("days = %+v", got.Days)
	}
}
