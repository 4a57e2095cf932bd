package holiday

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeHolidayFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nse_holidays.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))
	return path
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOracle_RecurringMode(t *testing.T) {
	o := NewOracle(filepath.Join(t.TempDir(), "missing.csv"), testLogger())
	require.Equal(t, ModeRecurring, o.Mode())

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"republic day 2019", date(2019, time.January, 26), true},
		{"republic day far future", date(2031, time.January, 26), true},
		{"day after republic day", date(2019, time.January, 27), false},
		{"independence day", date(2024, time.August, 15), true},
		{"christmas", date(2020, time.December, 25), true},
		{"ordinary trading day", date(2023, time.March, 14), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.IsHoliday(tt.date))
		})
	}
}

func TestOracle_AuthoritativeMode(t *testing.T) {
	path := writeHolidayFile(t, "2019-03-04\n2019-03-21\n2019-10-08\n")
	o := NewOracle(path, testLogger())
	require.Equal(t, ModeAuthoritative, o.Mode())
	assert.Equal(t, 3, o.Len())

	// Exact dates from the list.
	assert.True(t, o.IsHoliday(date(2019, time.March, 4)))
	assert.True(t, o.IsHoliday(date(2019, time.October, 8)))

	// Recurring days are still holidays even when absent from the list.
	assert.True(t, o.IsHoliday(date(2019, time.January, 26)))
	assert.True(t, o.IsHoliday(date(2019, time.August, 15)))

	// The same month/day in a different year is not an exact match.
	assert.False(t, o.IsHoliday(date(2020, time.March, 4)))
	assert.False(t, o.IsHoliday(date(2019, time.March, 5)))
}

func TestOracle_MalformedLinesSkipped(t *testing.T) {
	path := writeHolidayFile(t, "2019-03-04\nnot-a-date\n04/03/2019\n\n2019-03-21\n")
	o := NewOracle(path, testLogger())

	require.Equal(t, ModeAuthoritative, o.Mode())
	assert.Equal(t, 2, o.Len())
	assert.True(t, o.IsHoliday(date(2019, time.March, 4)))
	assert.True(t, o.IsHoliday(date(2019, time.March, 21)))
}

func TestOracle_ReloadReplacesState(t *testing.T) {
	first := writeHolidayFile(t, "2019-03-04\n")
	o := NewOracle(first, testLogger())
	require.True(t, o.IsHoliday(date(2019, time.March, 4)))

	second := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(second, []byte("2020-11-16\n"), 0644))
	o.Load(second)

	assert.Equal(t, ModeAuthoritative, o.Mode())
	assert.False(t, o.IsHoliday(date(2019, time.March, 4)), "prior state must not survive a reload")
	assert.True(t, o.IsHoliday(date(2020, time.November, 16)))

	// Reloading a missing file degrades to recurring mode.
	o.Load(filepath.Join(t.TempDir(), "gone.csv"))
	assert.Equal(t, ModeRecurring, o.Mode())
	assert.False(t, o.IsHoliday(date(2020, time.November, 16)))
	assert.True(t, o.IsHoliday(date(2020, time.October, 2)))
}

func TestHolidayName(t *testing.T) {
	assert.Equal(t, "Republic Day", HolidayName(time.January, 26))
	assert.Equal(t, "Gandhi Jayanti", HolidayName(time.October, 2))
	assert.Equal(t, "", HolidayName(time.March, 14))
}
