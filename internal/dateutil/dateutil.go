// Package dateutil provides civil-date arithmetic for the practice log.
// A date is a calendar day in the local timezone, never an instant.
package dateutil

import (
	"fmt"
	"time"
)

// ISOLayout is the date key format used throughout the store.
const ISOLayout = "2006-01-02"

// ISO formats t as YYYY-MM-DD using its local calendar fields.
func ISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// ParseISO parses a YYYY-MM-DD key into local midnight.
func ParseISO(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISOLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Midnight truncates t to the start of its calendar day, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MondayOf returns the Monday of the week containing t (t itself if already
// Monday). Sunday maps six days back.
func MondayOf(t time.Time) time.Time {
	t = Midnight(t)
	diff := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		diff = 6
	}
	return t.AddDate(0, 0, -diff)
}

// DaysBetween returns the whole-day difference b-a. Both times are reduced
// to their calendar day first, so DST transitions cannot skew the count.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
