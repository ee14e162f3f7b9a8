// internal/infra/schedule/schedule.go
package schedule

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
)

// ClockTime is a time of day with minute resolution, as written in the
// schedule file ("HH:MM").
type ClockTime struct {
	Hour   int
	Minute int
}

// On anchors the clock time on the given calendar day, in that day's
// location.
func (c ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Window is a polling interval within a single weekday. Bounds are
// inclusive on both ends.
type Window struct {
	Start ClockTime
	End   ClockTime
}

// Schedule maps each weekday to its polling windows, in file order.
// An empty schedule means polling is never active.
type Schedule map[time.Weekday][]Window

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Load parses the weekly window table from a CSV file with the header
// "day_of_week,start_time,end_time". Lines starting with '#' are ignored.
// Any malformed row invalidates the whole file: an empty schedule and an
// error are returned, and the caller is expected to keep running with
// polling disabled.
func Load(path string) (Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("open schedule file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Schedule{}, fmt.Errorf("parse schedule file %s: %w", path, err)
	}
	if len(records) == 0 {
		return Schedule{}, fmt.Errorf("schedule file %s is empty", path)
	}
	if len(records[0]) < 3 || strings.TrimSpace(records[0][0]) != "day_of_week" {
		return Schedule{}, fmt.Errorf("schedule file %s: missing day_of_week,start_time,end_time header", path)
	}

	sched := Schedule{}
	for _, row := range records[1:] {
		if len(row) != 3 {
			return Schedule{}, fmt.Errorf("schedule file %s: expected 3 columns, got %d", path, len(row))
		}
		day, ok := weekdays[strings.ToLower(strings.TrimSpace(row[0]))]
		if !ok {
			return Schedule{}, fmt.Errorf("schedule file %s: unknown day of week %q", path, row[0])
		}
		start, err := parseClock(row[1])
		if err != nil {
			return Schedule{}, fmt.Errorf("schedule file %s: bad start_time: %w", path, err)
		}
		end, err := parseClock(row[2])
		if err != nil {
			return Schedule{}, fmt.Errorf("schedule file %s: bad end_time: %w", path, err)
		}
		sched[day] = append(sched[day], Window{Start: start, End: end})
	}
	return sched, nil
}

func parseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, err
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// WithinWindow reports whether now falls inside one of the windows for
// now's weekday, and returns that window's end anchored on now's date.
// Window bounds are inclusive.
func (s Schedule) WithinWindow(now time.Time) (bool, time.Time) {
	for _, w := range s[now.Weekday()] {
		start := w.Start.On(now)
		end := w.End.On(now)
		if !now.Before(start) && !now.After(end) {
			return true, end
		}
	}
	return false, time.Time{}
}

// NextWindowStart returns the start of the next window strictly after now:
// first the remaining windows for today in file order, then the first
// window of the first day within the next 7 days that has any. Returns
// false when the schedule has no windows at all.
func (s Schedule) NextWindowStart(now time.Time) (time.Time, bool) {
	for _, w := range s[now.Weekday()] {
		start := w.Start.On(now)
		if now.Before(start) {
			return start, true
		}
	}
	for ahead := 1; ahead <= 7; ahead++ {
		day := now.AddDate(0, 0, ahead)
		if windows := s[day.Weekday()]; len(windows) > 0 {
			return windows[0].Start.On(day), true
		}
	}
	return time.Time{}, false
}
