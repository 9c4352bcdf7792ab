package course

import (
	"encoding/json"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/config"
	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

// general returns a 通識 course of 113-1.
func general(code string, credits, enrolled, capacity int64) catalog.Course {
	c := offered(code, "1")
	c.Nature = text("通識")
	c.Credits = num(credits)
	c.Enrollment = num(enrolled)
	c.Capacity = num(capacity)
	return c
}

func TestRecommendExample(t *testing.T) {
	t.Parallel()
	svc := newTestService(t,
		general("B", 4, 10, 50),
		general("A", 3, 30, 30),
	)
	req := NewRecommendRequest()
	req.TargetCredits = 3

	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, codes(t, res))
	assert.Equal(t, 1, res.Total)
	assert.True(t, res.Courses[0].Popularity.Equal(catalog.FloatField(100)))
}

func TestRecommendNoDataset(t *testing.T) {
	t.Parallel()
	svc := NewService(snapshot.NewCache(nil, nil), nil, nil)

	_, err := svc.Recommend(bg, NewRecommendRequest())
	assert.ErrorIs(t, err, apperrors.ErrNoDataset)
}

func TestNewRecommendRequestDefaults(t *testing.T) {
	t.Parallel()
	req := NewRecommendRequest()
	assert.Equal(t, config.DefaultTargetCredits, req.TargetCredits)
	assert.Equal(t, config.DefaultCategory, req.Category)

	require.NoError(t, json.Unmarshal([]byte(`{"college":"商學院","current_courses":[{"code":1001,"serial":"0101"}],"year":113,"semester":2}`), &req))
	assert.Equal(t, config.DefaultTargetCredits, req.TargetCredits, "absent fields keep defaults")
	assert.Equal(t, "商學院", req.College)
	require.Len(t, req.CurrentCourses, 1)
	assert.Equal(t, "1001", req.CurrentCourses[0].Code.String())
	assert.Equal(t, "0101", req.CurrentCourses[0].Serial.String())
	assert.Equal(t, 113, *req.Year)
	assert.Equal(t, 2, *req.Semester)
}

func TestRecommendCategory(t *testing.T) {
	t.Parallel()
	chinese := general("CH", 2, 1, 10)
	chinese.Nature = text("國文")
	english := general("EN", 2, 1, 10)
	english.Nature = text("英文(一)")
	req := general("RQ", 2, 1, 10)
	req.Nature = text("必修")
	svc := newTestService(t, general("GE", 2, 1, 10), chinese, english, req)

	tests := []struct {
		category string
		want     int
	}{
		{"通識", 1},
		{"國文", 1},
		{"英文", 1},
		{"", 4},
		{"體育", 4},
		{"必修", 4},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			r := NewRecommendRequest()
			r.Category = tt.category
			r.TargetCredits = 0
			res, err := svc.Recommend(bg, r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Total)
		})
	}
}

func TestRecommendCategoryPassThrough(t *testing.T) {
	t.Parallel()
	a := general("A", 2, 5, 10)
	b := general("B", 3, 1, 10)
	b.Nature = text("選修")
	svc := newTestService(t, a, b)

	unknown := NewRecommendRequest()
	unknown.Category = "unrecognized"
	none := NewRecommendRequest()
	none.Category = ""

	got, err := svc.Recommend(bg, unknown)
	require.NoError(t, err)
	want, err := svc.Recommend(bg, none)
	require.NoError(t, err)
	assert.Equal(t, want.Total, got.Total)
	assert.Equal(t, 2, got.Total)
}

func TestRecommendCollegeAndGrade(t *testing.T) {
	t.Parallel()
	a := general("A", 2, 1, 10)
	a.College = text("商學院")
	a.Grade = num(1)
	b := general("B", 2, 1, 10)
	b.College = text("法律學院")
	b.Grade = num(1)
	c := general("C", 2, 1, 10)
	c.College = text("商學院")
	c.Grade = text("2")
	d := general("D", 2, 1, 10)
	d.College = catalog.NaN()
	svc := newTestService(t, a, b, c, d)

	req := NewRecommendRequest()
	req.TargetCredits = 0
	req.College = "商"
	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "C"}, codes(t, res))

	req.Grade = "1"
	res, err = svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, codes(t, res))
}

func TestRecommendExcludesCurrentCourses(t *testing.T) {
	t.Parallel()
	a := general("1001", 2, 1, 10)
	a.Code = num(1001)
	a.Serial = text("0101")
	b := general("B", 2, 1, 10)
	b.Serial = text("0102")
	c := general("B", 2, 1, 10)
	c.Serial = text("0103")
	svc := newTestService(t, a, b, c)

	req := NewRecommendRequest()
	req.TargetCredits = 0
	require.NoError(t, json.Unmarshal([]byte(`{"current_courses":[{"code":1001,"serial":"0101"},{"code":"B","serial":"0102"}]}`), &req))

	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "0103", res.Courses[0].Serial.String())
}

func TestRecommendEmptySlots(t *testing.T) {
	t.Parallel()
	fits := general("FIT", 2, 1, 10)
	fits.Weekday = text("二")
	fits.StartPeriod = num(3)
	fits.EndPeriod = catalog.FloatField(4)
	overlaps := general("OVER", 2, 1, 10)
	overlaps.Weekday = num(2)
	overlaps.StartPeriod = num(4)
	overlaps.EndPeriod = num(6)
	unscheduled := general("NONE", 2, 1, 10)
	svc := newTestService(t, fits, overlaps, unscheduled)

	req := NewRecommendRequest()
	req.TargetCredits = 0
	req.EmptySlots = []catalog.Slot{{Day: 2, Period: 3}, {Day: 2, Period: 4}, {Day: 2, Period: 5}}

	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"FIT"}, codes(t, res))
	assert.True(t, res.Courses[0].EndPeriod.Equal(num(4)), "integral periods are returned as integers")

	req.EmptySlots = nil
	res, err = svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total, "no slots means no slot filter")
}

func TestRecommendStableRanking(t *testing.T) {
	t.Parallel()
	svc := newTestService(t,
		general("T1", 1, 5, 10),
		general("LOW", 1, 1, 10),
		general("T2", 1, 5, 10),
		general("HIGH", 1, 9, 10),
		general("T3", 1, 10, 20),
	)
	req := NewRecommendRequest()
	req.TargetCredits = 0

	for range 5 {
		res, err := svc.Recommend(bg, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"HIGH", "T1", "T2", "T3", "LOW"}, codes(t, res))
	}
}

func TestRecommendPopularityColumnIsFloat(t *testing.T) {
	t.Parallel()
	noCapacity := general("Z", 1, 5, 0)
	noCapacity.Capacity = catalog.NaN()
	svc := newTestService(t, general("A", 1, 5, 10), noCapacity)
	req := NewRecommendRequest()
	req.TargetCredits = 0

	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "Z"}, codes(t, res))
	assert.True(t, res.Courses[1].Popularity.Equal(catalog.FloatField(0)))

	only := newTestService(t, noCapacity)
	res, err = only.Recommend(bg, req)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.True(t, res.Courses[0].Popularity.Equal(num(0)))
}

func TestRecommendGreedySkipsAndContinues(t *testing.T) {
	t.Parallel()
	svc := newTestService(t,
		general("A", 3, 10, 10),
		general("B", 4, 9, 10),
		general("C", 2, 8, 10),
		general("D", 1, 7, 10),
	)
	req := NewRecommendRequest()
	req.TargetCredits = 5

	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, codes(t, res), "B overshoots and is skipped, D is never reached")
}

func TestRecommendNonPositiveTargetKeepsAll(t *testing.T) {
	t.Parallel()
	var courses []catalog.Course
	for i := range 60 {
		courses = append(courses, general("C"+strconv.Itoa(i), 3, 1, 10))
	}
	svc := newTestService(t, courses...)

	for _, target := range []int{0, -5} {
		req := NewRecommendRequest()
		req.TargetCredits = target
		res, err := svc.Recommend(bg, req)
		require.NoError(t, err)
		assert.Equal(t, config.MaxRecommendations, res.Total)
	}
}

func TestSelectByCreditsNeverExceedsTarget(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		n := rng.IntN(30)
		candidates := make([]candidate, n)
		for i := range candidates {
			c := catalog.Course{}
			switch rng.IntN(4) {
			case 0:
				c.Credits = catalog.NaN()
			case 1:
				c.Credits = catalog.FloatField(float64(rng.IntN(8)) / 2)
			default:
				c.Credits = num(int64(rng.IntN(5)))
			}
			candidates[i] = candidate{course: c}
		}
		target := rng.IntN(25)

		total := 0.0
		for _, c := range selectByCredits(candidates, float64(target)) {
			total += catalog.Credits(&c)
		}
		if target > 0 {
			assert.LessOrEqual(t, total, float64(target))
		}
	}
}

func TestRecommendPeriod(t *testing.T) {
	t.Parallel()
	old := general("OLD", 2, 1, 10)
	old.Year, old.Semester = num(112), num(2)
	first := general("FIRST", 2, 1, 10)
	second := general("SECOND", 2, 1, 10)
	second.Semester = num(2)
	svc := newTestService(t, old, first, second)

	req := NewRecommendRequest()
	req.TargetCredits = 0
	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"SECOND"}, codes(t, res), "newest period is inferred")

	req.Year, req.Semester = intp(112), intp(2)
	res, err = svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"OLD"}, codes(t, res))

	req.Year, req.Semester = intp(100), intp(1)
	res, err = svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Courses)

	req.Year, req.Semester = intp(112), nil
	res, err = svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"SECOND"}, codes(t, res), "a lone year is ignored")
}

func TestRecommendWithoutYearColumn(t *testing.T) {
	t.Parallel()
	a := general("A", 2, 1, 10)
	a.Year, a.Semester = catalog.Null(), catalog.Null()
	b := general("B", 2, 1, 10)
	b.Year, b.Semester = catalog.NaN(), catalog.Null()
	svc := newTestService(t, a, b)

	req := NewRecommendRequest()
	req.TargetCredits = 0
	res, err := svc.Recommend(bg, req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}
