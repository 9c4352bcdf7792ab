// Package course implements the course query, recommendation and
// statistics engine over the published course snapshot.
//
// Every operation is a synchronous scan of an immutable snapshot. Records
// leave the package only through Sanitize.
package course

import (
	"context"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/logger"
	"github.com/garyellow/ntpu-course-master/internal/metrics"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

// ModuleName identifies the module in logs.
const ModuleName = "course"

// Operation names used for metrics and error context.
const (
	OpListAll     = "list_all"
	OpSearch      = "search"
	OpByClass     = "by_class"
	OpRecommend   = "recommend"
	OpHistory     = "history"
	OpStats       = "stats"
	OpDetail      = "detail"
	OpDepartments = "departments"
)

// Result is a bounded, ordered list of sanitized records.
type Result struct {
	Courses []catalog.Course `json:"courses"`
	Total   int              `json:"total"`
}

// newResult sanitizes courses and counts them.
func newResult(courses []catalog.Course) Result {
	return Result{Courses: catalog.SanitizeAll(courses), Total: len(courses)}
}

// Service answers course queries from a snapshot cache.
type Service struct {
	cache   *snapshot.Cache
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewService creates a course service. metrics and log may be nil.
func NewService(cache *snapshot.Cache, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{cache: cache, metrics: m, logger: log}
}

// latest returns the latest non-empty snapshot.
func (s *Service) latest() (*snapshot.Snapshot, bool) {
	snap, ok := s.cache.Latest()
	if !ok || snap.Empty() {
		return nil, false
	}
	return snap, true
}

// periodOrLatest returns the period view when both year and semester are
// set and non-zero, otherwise the latest snapshot.
func (s *Service) periodOrLatest(year, semester *int) (*snapshot.Snapshot, bool) {
	if year != nil && semester != nil && *year != 0 && *semester != 0 {
		return s.cache.ByPeriod(*year, *semester)
	}
	return s.latest()
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, results int) {
	s.metrics.RecordQuery(op, results, time.Since(start).Seconds())
	if s.logger != nil {
		s.logger.WithModule(ModuleName).DebugContext(ctx, "Query completed",
			"operation", op,
			"results", results,
			"duration_ms", time.Since(start).Milliseconds())
	}
}
