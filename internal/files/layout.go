package files

import (
	"fmt"
	"path/filepath"
	"time"
)

// EntityCapitalMarket is the partition segment for capital-market bhavcopy
// data, the only entity both pipelines currently handle.
const EntityCapitalMarket = "cm"

// Layout builds the date-partitioned directory structure shared by both
// pipelines:
//
//	raw/<entity>/year=YYYY/month=MM/<original-file>
//	curated/<entity>/year=YYYY/month=MM/day=DD.<ext>
//
// Partition keys are zero padded so downstream queries can prune partitions
// lexicographically.
type Layout struct {
	Root   string
	Entity string
}

// NewLayout creates a layout rooted at root for the given entity.
func NewLayout(root, entity string) Layout {
	return Layout{Root: root, Entity: entity}
}

// RawDir returns the raw partition directory for date.
func (l Layout) RawDir(date time.Time) string {
	return filepath.Join(l.Root, "raw", l.Entity,
		fmt.Sprintf("year=%04d", date.Year()),
		fmt.Sprintf("month=%02d", int(date.Month())))
}

// RawFile returns the raw partition path for an original file name.
func (l Layout) RawFile(date time.Time, name string) string {
	return filepath.Join(l.RawDir(date), name)
}

// CuratedDir returns the curated partition directory for date.
func (l Layout) CuratedDir(date time.Time) string {
	return filepath.Join(l.Root, "curated", l.Entity,
		fmt.Sprintf("year=%04d", date.Year()),
		fmt.Sprintf("month=%02d", int(date.Month())))
}

// CuratedFile returns the curated artifact path for date, keyed by day.
func (l Layout) CuratedFile(date time.Time, ext string) string {
	return filepath.Join(l.CuratedDir(date), fmt.Sprintf("day=%02d.%s", date.Day(), ext))
}
