package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/metrics"
)

func course(year, semester int64, code string) catalog.Course {
	return catalog.Course{
		Year:     catalog.IntField(year),
		Semester: catalog.IntField(semester),
		Code:     catalog.TextField(code),
	}
}

func testSnapshot(source string, courses ...catalog.Course) *Snapshot {
	return New(source, []string{catalog.ColYear, catalog.ColSemester, catalog.ColCode}, courses, time.Unix(1760000000, 0))
}

func TestCacheEmpty(t *testing.T) {
	t.Parallel()
	c := NewCache(nil, nil)

	_, ok := c.Latest()
	assert.False(t, ok)

	_, ok = c.ByPeriod(113, 1)
	assert.False(t, ok)
}

func TestCacheLatest(t *testing.T) {
	t.Parallel()
	c := NewCache(nil, nil)
	snap := testSnapshot("all_courses_113.csv", course(113, 1, "U1001"))

	c.Publish(snap)

	got, ok := c.Latest()
	require.True(t, ok)
	assert.Same(t, snap, got)
}

func TestCacheByPeriodMemoizes(t *testing.T) {
	t.Parallel()
	m := metrics.New(prometheus.NewRegistry())
	c := NewCache(m, nil)
	c.Publish(testSnapshot("a.csv",
		course(113, 1, "U1001"),
		course(113, 2, "U1002"),
		course(113, 1, "U1003"),
	))

	first, ok := c.ByPeriod(113, 1)
	require.True(t, ok)
	assert.Equal(t, 2, first.Len())
	assert.Equal(t, "U1001", first.Courses()[0].Code.String())
	assert.Equal(t, "U1003", first.Courses()[1].Code.String())

	second, ok := c.ByPeriod(113, 1)
	require.True(t, ok)
	assert.Same(t, first, second, "a hit returns the memoized view")
	assert.Equal(t, 1, c.Views())
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("period")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("period")), 0)
}

func TestCacheByPeriodEmptyNotMemoized(t *testing.T) {
	t.Parallel()
	c := NewCache(nil, nil)
	c.Publish(testSnapshot("a.csv", course(113, 1, "U1001")))

	_, ok := c.ByPeriod(100, 1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Views())
}

func TestCachePublishKeysViewsByDataset(t *testing.T) {
	t.Parallel()
	c := NewCache(nil, nil)
	c.Publish(testSnapshot("old.csv", course(113, 1, "OLD")))

	oldView, ok := c.ByPeriod(113, 1)
	require.True(t, ok)

	c.Publish(New("new.csv", nil, []catalog.Course{course(113, 1, "NEW")}, time.Unix(1760000100, 0)))

	newView, ok := c.ByPeriod(113, 1)
	require.True(t, ok)
	assert.Equal(t, "NEW", newView.Courses()[0].Code.String())
	assert.Equal(t, "OLD", oldView.Courses()[0].Code.String(), "old views are not mutated")
	assert.Equal(t, 2, c.Views(), "older views are retained")
}

func TestCacheConcurrentReaders(t *testing.T) {
	t.Parallel()
	c := NewCache(metrics.New(prometheus.NewRegistry()), nil)
	courses := make([]catalog.Course, 0, 200)
	for i := range 200 {
		courses = append(courses, course(113, int64(i%2+1), "U"))
	}
	c.Publish(testSnapshot("a.csv", courses...))

	var wg sync.WaitGroup
	results := make([]*Snapshot, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := c.ByPeriod(113, 2)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, v := range results {
		require.NotNil(t, v)
		assert.Equal(t, 100, v.Len())
	}
	assert.Equal(t, 1, c.Views())
}
