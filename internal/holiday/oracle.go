package holiday

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Mode identifies which holiday representation the oracle is running on.
type Mode string

const (
	// ModeAuthoritative means exact dates were loaded from the holiday file.
	ModeAuthoritative Mode = "authoritative"
	// ModeRecurring means the fixed (month, day) fallback table is active.
	// Recurring mode is lower fidelity: it flags the same calendar day every
	// year and knows nothing about exchange-specific closures.
	ModeRecurring Mode = "recurring"
)

// monthDay is a year-independent calendar day.
type monthDay struct {
	Month time.Month
	Day   int
}

// recurringHolidays lists Indian national holidays observed by NSE every
// year, used when the authoritative list is unavailable.
var recurringHolidays = map[monthDay]string{
	{time.January, 26}:  "Republic Day",
	{time.May, 1}:       "Labour Day",
	{time.August, 15}:   "Independence Day",
	{time.October, 2}:   "Gandhi Jayanti",
	{time.December, 25}: "Christmas",
}

// Oracle answers whether a calendar date is a market holiday. It loads an
// authoritative date list when available and otherwise falls back to the
// recurring table. Construct once and share; Load fully replaces state.
type Oracle struct {
	mode   Mode
	dates  map[time.Time]struct{}
	logger *slog.Logger
}

// NewOracle creates an oracle and loads holiday data from filePath.
// A missing or unreadable file is not an error: the oracle degrades to
// recurring mode and logs a warning.
func NewOracle(filePath string, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Oracle{logger: logger}
	o.Load(filePath)
	return o
}

// Load reads the authoritative holiday file, one ISO date (YYYY-MM-DD) per
// line. Malformed lines are skipped individually. Any prior state is
// replaced. Calling Load again with a different path is the only way to
// change the active mode.
func (o *Oracle) Load(filePath string) {
	file, err := os.Open(filePath)
	if err != nil {
		o.mode = ModeRecurring
		o.dates = nil
		o.logger.Warn("holiday file unavailable, using recurring fallback",
			slog.String("path", filePath),
			slog.String("error", err.Error()),
			slog.String("mode", string(ModeRecurring)))
		return
	}
	defer file.Close()

	dates := make(map[time.Time]struct{})
	skipped := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", line)
		if err != nil {
			skipped++
			continue
		}
		dates[normalize(d)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		o.mode = ModeRecurring
		o.dates = nil
		o.logger.Warn("failed reading holiday file, using recurring fallback",
			slog.String("path", filePath),
			slog.String("error", err.Error()))
		return
	}

	o.mode = ModeAuthoritative
	o.dates = dates
	o.logger.Info("loaded holiday calendar",
		slog.String("path", filePath),
		slog.Int("holidays", len(dates)),
		slog.Int("skipped_lines", skipped))
}

// IsHoliday reports whether date is a market holiday. In authoritative mode
// the exact-date set is checked first, then the recurring table; in
// recurring mode only (month, day) membership applies.
func (o *Oracle) IsHoliday(date time.Time) bool {
	md := monthDay{date.Month(), date.Day()}
	if o.mode == ModeRecurring {
		_, ok := recurringHolidays[md]
		return ok
	}
	if _, ok := o.dates[normalize(date)]; ok {
		return true
	}
	_, ok := recurringHolidays[md]
	return ok
}

// Mode returns the active holiday representation.
func (o *Oracle) Mode() Mode {
	return o.mode
}

// Len returns the number of loaded authoritative dates, or the size of the
// recurring table in recurring mode.
func (o *Oracle) Len() int {
	if o.mode == ModeRecurring {
		return len(recurringHolidays)
	}
	return len(o.dates)
}

// HolidayName returns the name of the recurring holiday on (month, day),
// or "" when the day is not in the recurring table.
func HolidayName(month time.Month, day int) string {
	return recurringHolidays[monthDay{month, day}]
}

// normalize truncates a timestamp to its calendar date in UTC.
func normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
