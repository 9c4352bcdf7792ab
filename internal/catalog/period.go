package catalog

import (
	"strconv"
	"strings"
)

// Period is an academic year and semester, e.g. 113-1.
type Period struct {
	Year     int
	Semester int
}

// String returns the period as "year_semester".
func (p Period) String() string {
	return strconv.Itoa(p.Year) + "_" + strconv.Itoa(p.Semester)
}

// Matches reports whether the course belongs to p.
// Integral numbers compare by value, text compares by its trimmed form.
func (p Period) Matches(c *Course) bool {
	return fieldIs(c.Year, p.Year) && fieldIs(c.Semester, p.Semester)
}

func fieldIs(v Field, want int) bool {
	if n, ok := v.Integer(); ok {
		return n == int64(want)
	}
	s, ok := v.Text()
	return ok && strings.TrimSpace(s) == strconv.Itoa(want)
}

// Less orders periods chronologically.
func (p Period) Less(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Semester < o.Semester
}
