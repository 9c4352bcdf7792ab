package course

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

func intp(v int) *int { return &v }

func text(s string) catalog.Field { return catalog.TextField(s) }

func num(n int64) catalog.Field { return catalog.IntField(n) }

// offered builds a course of period 113-1.
func offered(code, serial string) catalog.Course {
	return catalog.Course{
		Year:     num(113),
		Semester: num(1),
		Code:     text(code),
		Serial:   text(serial),
	}
}

func newTestService(t *testing.T, courses ...catalog.Course) *Service {
	t.Helper()
	cache := snapshot.NewCache(nil, nil)
	cache.Publish(snapshot.New("all_courses_test.csv", catalog.KnownColumns, courses, time.Now()))
	return NewService(cache, nil, nil)
}

func newServiceWithColumns(t *testing.T, columns []string, courses ...catalog.Course) *Service {
	t.Helper()
	cache := snapshot.NewCache(nil, nil)
	cache.Publish(snapshot.New("all_courses_test.csv", columns, courses, time.Now()))
	return NewService(cache, nil, nil)
}

func codes(t *testing.T, res Result) []string {
	t.Helper()
	require.Len(t, res.Courses, res.Total)
	out := make([]string, len(res.Courses))
	for i, c := range res.Courses {
		out[i] = c.Code.String()
	}
	return out
}

var bg = context.Background()
