package course

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/config"
	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
)

// Categories with a course-nature filter. Any other category keeps every course.
var filteredCategories = map[string]struct{}{
	"通識": {},
	"國文": {},
	"英文": {},
}

// CourseRef identifies an offering the student already takes.
// Code and Serial accept JSON strings or numbers.
type CourseRef struct {
	Code   catalog.Field `json:"code"`
	Serial catalog.Field `json:"serial"`
}

// RecommendRequest describes what to recommend.
type RecommendRequest struct {
	EmptySlots     []catalog.Slot `json:"empty_slots"`
	TargetCredits  int            `json:"target_credits"`
	Category       string         `json:"category"`
	College        string         `json:"college"`
	Grade          string         `json:"grade"`
	CurrentCourses []CourseRef    `json:"current_courses"`
	Year           *int           `json:"year"`
	Semester       *int           `json:"semester"`
}

// NewRecommendRequest returns a request holding the defaults for fields a
// client may omit.
func NewRecommendRequest() RecommendRequest {
	return RecommendRequest{
		TargetCredits: config.DefaultTargetCredits,
		Category:      config.DefaultCategory,
	}
}

// candidate is a course with its popularity computed once.
type candidate struct {
	course catalog.Course
	score  float64
}

// Recommend runs the recommendation pipeline: period, category, college,
// grade, exclusion, free-slot fit, popularity ranking, credit selection and
// the result cap. Only a missing dataset is an error.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (Result, error) {
	start := time.Now()
	latest, ok := s.latest()
	if !ok {
		return Result{}, apperrors.ErrNoDataset
	}

	pool := latest.Courses()
	if period, ok := resolvePeriod(latest, req.Year, req.Semester); ok {
		view, ok := s.cache.ByPeriod(period.Year, period.Semester)
		if !ok {
			s.observe(ctx, OpRecommend, start, 0)
			return newResult(nil), nil
		}
		pool = view.Courses()
	}

	stages := []func(*catalog.Course) bool{
		categoryFilter(req.Category),
		collegeFilter(req.College),
		gradeFilter(req.Grade),
		exclusionFilter(req.CurrentCourses),
		slotFilter(req.EmptySlots),
	}

	var candidates []candidate
	for i := range pool {
		c := &pool[i]
		if !passes(c, stages) {
			continue
		}
		candidates = append(candidates, candidate{course: *c})
	}

	rank(candidates)
	selected := selectByCredits(candidates, float64(req.TargetCredits))
	if len(selected) > config.MaxRecommendations {
		selected = selected[:config.MaxRecommendations]
	}

	res := newResult(selected)
	s.observe(ctx, OpRecommend, start, res.Total)
	return res, nil
}

// passes applies the stages in order; a nil stage keeps everything.
func passes(c *catalog.Course, stages []func(*catalog.Course) bool) bool {
	for _, keep := range stages {
		if keep != nil && !keep(c) {
			return false
		}
	}
	return true
}

func categoryFilter(category string) func(*catalog.Course) bool {
	if _, ok := filteredCategories[category]; !ok {
		return nil
	}
	return func(c *catalog.Course) bool { return catalog.FieldContains(c.Nature, category) }
}

func collegeFilter(college string) func(*catalog.Course) bool {
	if college == "" {
		return nil
	}
	return func(c *catalog.Course) bool { return catalog.FieldContains(c.College, college) }
}

func gradeFilter(grade string) func(*catalog.Course) bool {
	if grade == "" {
		return nil
	}
	return func(c *catalog.Course) bool { return catalog.FieldEquals(c.Grade, grade) }
}

type offering struct{ code, serial string }

func exclusionFilter(taken []CourseRef) func(*catalog.Course) bool {
	if len(taken) == 0 {
		return nil
	}
	excluded := make(map[offering]struct{}, len(taken))
	for _, ref := range taken {
		excluded[offering{ref.Code.String(), ref.Serial.String()}] = struct{}{}
	}
	return func(c *catalog.Course) bool {
		code, ok := c.Code.Text()
		if !ok {
			return true
		}
		serial, ok := c.Serial.Text()
		if !ok {
			return true
		}
		_, drop := excluded[offering{code, serial}]
		return !drop
	}
}

func slotFilter(slots []catalog.Slot) func(*catalog.Course) bool {
	if len(slots) == 0 {
		return nil
	}
	set := catalog.NewSlotSet(slots...)
	return func(c *catalog.Course) bool { return catalog.FitsWithinSlots(c, set) }
}

// rank attaches popularity and stable-sorts by it, highest first.
// Once any course has a ratio the whole column is floating point, so the
// integer zeros of courses without capacity become 0.0.
func rank(candidates []candidate) {
	anyRatio := false
	for i := range candidates {
		c := &candidates[i]
		c.course.Popularity = catalog.Popularity(&c.course)
		c.score = catalog.PopularityScore(&c.course)
		anyRatio = anyRatio || c.course.Popularity.Kind() == catalog.KindFloat
	}
	if anyRatio {
		for i := range candidates {
			candidates[i].course.Popularity = catalog.FloatField(candidates[i].score)
		}
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})
}

// selectByCredits walks the ranked candidates once, admitting each course
// that keeps the running total at or under target and stopping once the
// total reaches target. A target of zero or less admits everything.
func selectByCredits(candidates []candidate, target float64) []catalog.Course {
	out := make([]catalog.Course, 0, len(candidates))
	if target <= 0 {
		for _, c := range candidates {
			out = append(out, c.course)
		}
		return out
	}

	total := 0.0
	for _, c := range candidates {
		credits := catalog.Credits(&c.course)
		if total+credits <= target {
			out = append(out, c.course)
			total += credits
		}
		if total >= target {
			break
		}
	}
	return out
}
