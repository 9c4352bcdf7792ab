package course

import (
	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/snapshot"
)

// defaultSemester is used when the newest year has no usable semester.
const defaultSemester = 1

// InferPeriod returns the newest period present in snap: the greatest
// 學年度, then the greatest 學期 within that year. When the year is known
// but no semester of it is an integer, the semester is 1. It returns false
// when no record has an integral 學年度.
func InferPeriod(snap *snapshot.Snapshot) (catalog.Period, bool) {
	courses := snap.Courses()

	year, found := int64(0), false
	for i := range courses {
		if y, ok := courses[i].Year.Integer(); ok && (!found || y > year) {
			year, found = y, true
		}
	}
	if !found {
		return catalog.Period{}, false
	}

	semester, haveSemester := int64(0), false
	for i := range courses {
		if y, ok := courses[i].Year.Integer(); !ok || y != year {
			continue
		}
		if sem, ok := courses[i].Semester.Integer(); ok && (!haveSemester || sem > semester) {
			semester, haveSemester = sem, true
		}
	}
	if !haveSemester {
		semester = defaultSemester
	}
	return catalog.Period{Year: int(year), Semester: int(semester)}, true
}

// resolvePeriod picks the recommendation period: the requested one when
// both parts are given, otherwise the inferred one.
func resolvePeriod(snap *snapshot.Snapshot, year, semester *int) (catalog.Period, bool) {
	if year != nil && semester != nil {
		return catalog.Period{Year: *year, Semester: *semester}, true
	}
	return InferPeriod(snap)
}
