// Package snapshot holds the published course dataset and memoizes the
// per-period views derived from it.
//
// A Snapshot is immutable once constructed. A refresh builds a new
// Snapshot and publishes it by swapping a pointer, so readers never
// observe a partially updated dataset and never need a lock.
package snapshot

import (
	"slices"
	"strconv"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
)

// Snapshot is an immutable point-in-time set of course records.
type Snapshot struct {
	id       string
	source   string
	loadedAt time.Time
	columns  []string
	colset   map[string]struct{}
	courses  []catalog.Course
}

// New creates a snapshot. The courses slice is owned by the snapshot
// afterwards and must not be modified by the caller.
func New(source string, columns []string, courses []catalog.Course, loadedAt time.Time) *Snapshot {
	colset := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		colset[c] = struct{}{}
	}
	return &Snapshot{
		id:       source + "@" + strconv.FormatInt(loadedAt.UnixNano(), 10),
		source:   source,
		loadedAt: loadedAt,
		columns:  slices.Clone(columns),
		colset:   colset,
		courses:  courses,
	}
}

// derive builds a view over a subset of s that shares its columns.
func (s *Snapshot) derive(suffix string, courses []catalog.Course) *Snapshot {
	return &Snapshot{
		id:       s.id + "#" + suffix,
		source:   s.source,
		loadedAt: s.loadedAt,
		columns:  s.columns,
		colset:   s.colset,
		courses:  courses,
	}
}

// ID identifies the dataset the snapshot was built from.
func (s *Snapshot) ID() string { return s.id }

// Source returns the file or object name the snapshot was loaded from.
func (s *Snapshot) Source() string { return s.source }

// LoadedAt returns when the snapshot was loaded.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.courses)
}

// Empty reports whether s is nil or has no records.
func (s *Snapshot) Empty() bool { return s.Len() == 0 }

// Courses returns the records in dataset order. The slice is shared;
// callers must treat it as read-only.
func (s *Snapshot) Courses() []catalog.Course {
	if s == nil {
		return nil
	}
	return s.courses
}

// Columns returns the dataset columns in file order.
func (s *Snapshot) Columns() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.columns)
}

// HasColumn reports whether the dataset carried the named column.
func (s *Snapshot) HasColumn(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.colset[name]
	return ok
}

// Filter returns a new view holding the records for which keep is true.
func (s *Snapshot) Filter(suffix string, keep func(*catalog.Course) bool) *Snapshot {
	out := make([]catalog.Course, 0)
	for i := range s.courses {
		if keep(&s.courses[i]) {
			out = append(out, s.courses[i])
		}
	}
	return s.derive(suffix, out)
}

// Periods returns the distinct periods present, newest first.
// Records whose year or semester is not an integer are skipped.
func (s *Snapshot) Periods() []catalog.Period {
	seen := make(map[catalog.Period]struct{})
	var out []catalog.Period
	for i := range s.Courses() {
		c := &s.courses[i]
		y, ok := c.Year.Integer()
		if !ok {
			continue
		}
		sem, ok := c.Semester.Integer()
		if !ok {
			continue
		}
		p := catalog.Period{Year: int(y), Semester: int(sem)}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b catalog.Period) int {
		switch {
		case b.Less(a):
			return -1
		case a.Less(b):
			return 1
		default:
			return 0
		}
	})
	return out
}
