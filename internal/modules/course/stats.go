package course

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/config"
	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

// Stats summarizes the latest snapshot.
type Stats struct {
	TotalCourses  int     `json:"total_courses"`
	TotalTeachers int     `json:"total_teachers"`
	Departments   Counts  `json:"departments"`
	CourseTypes   Counts  `json:"course_types"`
	EnglishOnly   int64   `json:"english_only"`
	AvgEnrollment float64 `json:"avg_enrollment"`
	MaxEnrollment int64   `json:"max_enrollment"`
}

// Count is one row of a frequency table.
type Count struct {
	Value string
	N     int
}

// Counts is a frequency table, most frequent first. It encodes as a JSON
// object whose keys keep that order.
type Counts []Count

// MarshalJSON implements json.Marshaler.
func (cs Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range cs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.N))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Stats computes the aggregates of the latest snapshot. An aggregate whose
// column is missing from the dataset is zero or empty.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	start := time.Now()
	snap, ok := s.latest()
	if !ok {
		return Stats{}, apperrors.ErrNoDataset
	}

	courses := snap.Courses()
	st := Stats{
		TotalCourses: len(courses),
		Departments:  Counts{},
		CourseTypes:  Counts{},
	}
	if snap.HasColumn(catalog.ColInstructor) {
		st.TotalTeachers = distinct(courses, func(c *catalog.Course) catalog.Field { return c.Instructor })
	}
	if snap.HasColumn(catalog.ColOfferingClass) {
		st.Departments = valueCounts(courses, func(c *catalog.Course) catalog.Field { return c.OfferingClass })
		if len(st.Departments) > config.TopDepartments {
			st.Departments = st.Departments[:config.TopDepartments]
		}
	}
	if snap.HasColumn(catalog.ColNature) {
		st.CourseTypes = valueCounts(courses, func(c *catalog.Course) catalog.Field { return c.Nature })
	}
	if snap.HasColumn(catalog.ColEnglishTaught) {
		st.EnglishOnly = int64(sum(courses, func(c *catalog.Course) catalog.Field { return c.EnglishTaught }))
	}
	if snap.HasColumn(catalog.ColEnrollment) {
		st.AvgEnrollment, st.MaxEnrollment = enrollment(snap)
	}

	s.observe(ctx, OpStats, start, st.TotalCourses)
	return st, nil
}

func distinct(courses []catalog.Course, get func(*catalog.Course) catalog.Field) int {
	seen := make(map[string]struct{})
	for i := range courses {
		if v, ok := get(&courses[i]).Text(); ok {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// valueCounts counts non-missing values, most frequent first, ties in
// order of first appearance.
func valueCounts(courses []catalog.Course, get func(*catalog.Course) catalog.Field) Counts {
	index := make(map[string]int)
	out := Counts{}
	for i := range courses {
		v, ok := get(&courses[i]).Text()
		if !ok {
			continue
		}
		if j, seen := index[v]; seen {
			out[j].N++
			continue
		}
		index[v] = len(out)
		out = append(out, Count{Value: v, N: 1})
	}
	slices.SortStableFunc(out, func(a, b Count) int { return b.N - a.N })
	return out
}

func sum(courses []catalog.Course, get func(*catalog.Course) catalog.Field) float64 {
	total := 0.0
	for i := range courses {
		if v, ok := get(&courses[i]).Number(); ok {
			total += v
		}
	}
	return total
}

// enrollment returns the mean and maximum of the numeric 選上人數 values.
func enrollment(snap *snapshot.Snapshot) (float64, int64) {
	var (
		total float64
		n     int
		peak  = math.Inf(-1)
	)
	for i := range snap.Courses() {
		v, ok := snap.Courses()[i].Enrollment.Number()
		if !ok {
			continue
		}
		total += v
		n++
		peak = max(peak, v)
	}
	if n == 0 {
		return 0, 0
	}
	return total / float64(n), int64(peak)
}
