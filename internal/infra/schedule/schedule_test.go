package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchedule(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scheduler.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses windows with comments and multiple rows per day", func(t *testing.T) {
		path := writeSchedule(t, `# polling windows
day_of_week,start_time,end_time
monday,09:00,10:00
monday,15:30,16:45
# afternoon pickup only
friday,12:00,13:00
`)
		sched, err := Load(path)
		require.NoError(t, err)

		require.Len(t, sched[time.Monday], 2)
		assert.Equal(t, Window{Start: ClockTime{9, 0}, End: ClockTime{10, 0}}, sched[time.Monday][0])
		assert.Equal(t, Window{Start: ClockTime{15, 30}, End: ClockTime{16, 45}}, sched[time.Monday][1])
		require.Len(t, sched[time.Friday], 1)
		assert.Empty(t, sched[time.Tuesday])
	})

	t.Run("malformed row yields an empty schedule", func(t *testing.T) {
		path := writeSchedule(t, `day_of_week,start_time,end_time
monday,09:00,10:00
tuesday,not-a-time,10:00
`)
		sched, err := Load(path)
		require.Error(t, err)
		assert.Empty(t, sched)

		within, _ := sched.WithinWindow(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))
		assert.False(t, within)
	})

	t.Run("unknown weekday yields an empty schedule", func(t *testing.T) {
		path := writeSchedule(t, `day_of_week,start_time,end_time
moonday,09:00,10:00
`)
		sched, err := Load(path)
		require.Error(t, err)
		assert.Empty(t, sched)
	})

	t.Run("missing header yields an empty schedule", func(t *testing.T) {
		path := writeSchedule(t, "monday,09:00,10:00\n")
		sched, err := Load(path)
		require.Error(t, err)
		assert.Empty(t, sched)
	})

	t.Run("missing file yields an empty schedule", func(t *testing.T) {
		sched, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
		assert.Empty(t, sched)
	})
}

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func mondaySchedule() Schedule {
	return Schedule{
		time.Monday: {{Start: ClockTime{9, 0}, End: ClockTime{10, 0}}},
	}
}

func TestSchedule_WithinWindow(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		wantWithin bool
		wantEnd    time.Time
	}{
		{
			name:       "inside window",
			now:        monday.Add(9*time.Hour + 30*time.Minute),
			wantWithin: true,
			wantEnd:    monday.Add(10 * time.Hour),
		},
		{
			name:       "exactly at window start is inside",
			now:        monday.Add(9 * time.Hour),
			wantWithin: true,
			wantEnd:    monday.Add(10 * time.Hour),
		},
		{
			name:       "exactly at window end is inside",
			now:        monday.Add(10 * time.Hour),
			wantWithin: true,
			wantEnd:    monday.Add(10 * time.Hour),
		},
		{
			name:       "just past window end is outside",
			now:        monday.Add(10*time.Hour + time.Second),
			wantWithin: false,
		},
		{
			name:       "before window is outside",
			now:        monday.Add(8 * time.Hour),
			wantWithin: false,
		},
		{
			name:       "day without windows is outside",
			now:        monday.AddDate(0, 0, 1).Add(9*time.Hour + 30*time.Minute),
			wantWithin: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			within, end := mondaySchedule().WithinWindow(tt.now)
			assert.Equal(t, tt.wantWithin, within)
			if tt.wantWithin {
				assert.Equal(t, tt.wantEnd, end)
			}
		})
	}
}

func TestSchedule_NextWindowStart(t *testing.T) {
	tests := []struct {
		name     string
		sched    Schedule
		now      time.Time
		want     time.Time
		wantNone bool
	}{
		{
			name:  "before today's window returns today's start",
			sched: mondaySchedule(),
			now:   monday.Add(7 * time.Hour),
			want:  monday.Add(9 * time.Hour),
		},
		{
			name:  "after today's window wraps to next monday",
			sched: mondaySchedule(),
			now:   monday.Add(10*time.Hour + 30*time.Minute),
			want:  monday.AddDate(0, 0, 7).Add(9 * time.Hour),
		},
		{
			name: "inside a window still returns a later window",
			sched: Schedule{
				time.Monday: {
					{Start: ClockTime{9, 0}, End: ClockTime{10, 0}},
					{Start: ClockTime{15, 0}, End: ClockTime{16, 0}},
				},
			},
			now:  monday.Add(9*time.Hour + 30*time.Minute),
			want: monday.Add(15 * time.Hour),
		},
		{
			name: "next day with windows wins over later weekday",
			sched: Schedule{
				time.Wednesday: {{Start: ClockTime{12, 0}, End: ClockTime{13, 0}}},
				time.Friday:    {{Start: ClockTime{8, 0}, End: ClockTime{9, 0}}},
			},
			now:  monday.Add(11 * time.Hour),
			want: monday.AddDate(0, 0, 2).Add(12 * time.Hour),
		},
		{
			name:     "empty schedule has no next window",
			sched:    Schedule{},
			now:      monday,
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.sched.NextWindowStart(tt.now)
			if tt.wantNone {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Before(tt.now), "next window start must never be before now")
		})
	}
}
