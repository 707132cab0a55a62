package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/japa/internal/stats"
	"github.com/sadopc/japa/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Mantra     string      `json:"mantra"`
	MalaSize   int         `json:"mala_size"`
	Summary    jsonSummary `json:"summary"`
	Days       []jsonDay   `json:"days"`
}

type jsonSummary struct {
	TotalCount    int    `json:"total_count"`
	TotalMalas    int    `json:"total_malas"`
	PracticedDays int    `json:"practiced_days"`
	MissedDays    int    `json:"missed_days"`
	RestDays      int    `json:"rest_days"`
	Consistency   int    `json:"consistency_pct"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
	BestDate      string `json:"best_date,omitempty"`
	BestCount     int    `json:"best_count"`
	AvgPerDay     int    `json:"avg_per_day"`
}

type jsonDay struct {
	Date   string `json:"date"`
	Day    string `json:"day"`
	Count  int    `json:"count"`
	Malas  int    `json:"malas"`
	Status string `json:"status"`
	Remark string `json:"remark,omitempty"`
}

// ToJSON writes the window plus its computed summary.
func ToJSON(m *store.Mantra, entries []stats.DayEntry, summary stats.Summary, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Mantra:     m.Name,
		MalaSize:   m.MalaSize,
		Summary: jsonSummary{
			TotalCount:    summary.TotalCount,
			TotalMalas:    summary.TotalMalas,
			PracticedDays: summary.PracticedDays,
			MissedDays:    summary.MissedDays,
			RestDays:      summary.RestDays,
			Consistency:   summary.Consistency,
			CurrentStreak: summary.CurrentStreak,
			BestStreak:    summary.BestStreak,
			BestDate:      summary.BestDate,
			BestCount:     summary.BestCount,
			AvgPerDay:     summary.AvgPerDay,
		},
	}

	for _, e := range entries {
		out.Days = append(out.Days, jsonDay{
			Date:   e.Date,
			Day:    e.Weekday.String(),
			Count:  e.Count,
			Malas:  e.Malas,
			Status: dayStatus(e),
			Remark: e.Remark,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
