package files

import (
	"path/filepath"
	"strings"
	"time"

	"nsecli/internal/errors"
)

// DateFromFilename extracts the logical trading date from a bhavcopy file
// name of the form <prefix>_<DDMMYYYY>.<ext>. The trailing 8 characters of
// the stem must parse as day-month-year.
func DateFromFilename(name string) (time.Time, error) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if len(stem) < 8 {
		return time.Time{}, errors.DateParse(base)
	}
	t, err := time.Parse("02012006", stem[len(stem)-8:])
	if err != nil {
		return time.Time{}, errors.DateParse(base)
	}
	return t, nil
}

// BhavcopyName returns the expected daily bhavcopy file name for date.
func BhavcopyName(date time.Time) string {
	return "sec_bhavdata_full_" + date.Format("02012006") + ".csv"
}
