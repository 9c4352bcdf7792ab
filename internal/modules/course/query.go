package course

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
	"github.com/garyellow/ntpu-course-master/internal/sliceutil"
	"github.com/garyellow/ntpu-course-master/internal/stringutil"
)

// requiredMarker tags required courses in 課程性質.
const requiredMarker = "必修"

// ListAll returns every record of the period view when year and semester
// are both set, otherwise every record of the latest snapshot. A missing
// dataset yields an empty result.
func (s *Service) ListAll(ctx context.Context, year, semester *int) (Result, error) {
	start := time.Now()
	snap, ok := s.periodOrLatest(year, semester)
	if !ok {
		s.observe(ctx, OpListAll, start, 0)
		return Result{Courses: []catalog.Course{}}, nil
	}
	res := newResult(snap.Courses())
	s.observe(ctx, OpListAll, start, res.Total)
	return res, nil
}

// Search returns up to limit records of the latest snapshot whose name,
// English name or instructor contains query, in dataset order.
func (s *Service) Search(ctx context.Context, query string, limit int) (Result, error) {
	start := time.Now()
	snap, ok := s.latest()
	if !ok {
		return Result{}, apperrors.ErrNoDataset
	}
	matches := textMatches(snap.Courses(), query, limit)
	res := newResult(matches)
	s.observe(ctx, OpSearch, start, res.Total)
	return res, nil
}

// History is Search over the whole latest snapshot ordered newest period
// first. Ties keep dataset order.
func (s *Service) History(ctx context.Context, query string, limit int) (Result, error) {
	start := time.Now()
	snap, ok := s.latest()
	if !ok {
		return Result{}, apperrors.ErrNoDataset
	}
	matches := textMatches(snap.Courses(), query, -1)
	slices.SortStableFunc(matches, newestFirst)
	if limit < len(matches) {
		matches = matches[:max(limit, 0)]
	}
	res := newResult(matches)
	s.observe(ctx, OpHistory, start, res.Total)
	return res, nil
}

// ByClass returns the records of one period offered to department or
// className, required courses first. Unknown periods yield an empty result.
func (s *Service) ByClass(ctx context.Context, department, className string, year, semester int) (Result, error) {
	start := time.Now()
	view, ok := s.cache.ByPeriod(year, semester)
	if !ok {
		s.observe(ctx, OpByClass, start, 0)
		return Result{Courses: []catalog.Course{}}, nil
	}

	var required, others []catalog.Course
	for i := range view.Courses() {
		c := &view.Courses()[i]
		if !catalog.FieldContains(c.OfferingClass, department) &&
			!catalog.FieldContains(c.OfferingClass, className) {
			continue
		}
		if catalog.FieldContains(c.Nature, requiredMarker) {
			required = append(required, *c)
		} else {
			others = append(others, *c)
		}
	}

	res := newResult(append(required, others...))
	s.observe(ctx, OpByClass, start, res.Total)
	return res, nil
}

// GetByCode returns the first record of the latest snapshot whose course
// code equals code.
func (s *Service) GetByCode(ctx context.Context, code string) (catalog.Course, error) {
	start := time.Now()
	snap, ok := s.latest()
	if !ok {
		return catalog.Course{}, apperrors.ErrNoDataset
	}
	for i := range snap.Courses() {
		c := &snap.Courses()[i]
		if catalog.FieldEquals(c.Code, code) {
			s.observe(ctx, OpDetail, start, 1)
			return catalog.Sanitize(*c), nil
		}
	}
	s.observe(ctx, OpDetail, start, 0)
	return catalog.Course{}, apperrors.ErrNotFound
}

// ListDepartments returns the sorted distinct non-blank offering classes of
// the period view (when year and semester are set) or the latest snapshot.
func (s *Service) ListDepartments(ctx context.Context, year, semester *int) ([]string, error) {
	start := time.Now()
	snap, ok := s.periodOrLatest(year, semester)
	if !ok || !snap.HasColumn(catalog.ColOfferingClass) {
		s.observe(ctx, OpDepartments, start, 0)
		return []string{}, nil
	}

	labels := make([]string, 0, snap.Len())
	for i := range snap.Courses() {
		if v, ok := snap.Courses()[i].OfferingClass.Text(); ok {
			labels = append(labels, v)
		}
	}
	labels = sliceutil.Filter(labels, func(v string) bool { return !stringutil.IsBlank(v) })
	labels = sliceutil.Deduplicate(labels, func(v string) string { return v })
	slices.Sort(labels)

	s.observe(ctx, OpDepartments, start, len(labels))
	return labels, nil
}

// textMatches returns copies of the matching courses in order, at most
// limit of them. A negative limit means no limit.
func textMatches(courses []catalog.Course, query string, limit int) []catalog.Course {
	out := make([]catalog.Course, 0)
	if limit == 0 {
		return out
	}
	for i := range courses {
		if !catalog.TextMatches(&courses[i], query) {
			continue
		}
		out = append(out, courses[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// newestFirst orders by (學年度, 學期) descending. Values that are not
// numeric sort after all numeric ones.
func newestFirst(a, b catalog.Course) int {
	if c := descending(a.Year, b.Year); c != 0 {
		return c
	}
	return descending(a.Semester, b.Semester)
}

func descending(a, b catalog.Field) int {
	x, okA := a.Number()
	y, okB := b.Number()
	switch {
	case okA && okB:
		return cmp.Compare(y, x)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}
