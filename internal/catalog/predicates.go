package catalog

import (
	"strconv"
	"strings"

	"github.com/garyellow/ntpu-course-master/internal/sliceutil"
	"github.com/garyellow/ntpu-course-master/internal/stringutil"
)

// searchColumns are the columns a free-text query is matched against.
// The list repeats 課程名稱 the way the front end historically sent it;
// duplicates are dropped once at init.
var searchColumns = sliceutil.Deduplicate(
	[]string{ColName, ColInstructor, ColName, ColEnglishName},
	func(s string) string { return s },
)

// SearchColumns returns the deduplicated columns used by TextMatches.
func SearchColumns() []string {
	return append([]string(nil), searchColumns...)
}

// TextMatches reports whether query is a case-insensitive substring of the
// course name, instructor, or English name. Missing fields never match.
func TextMatches(c *Course, query string) bool {
	for _, name := range searchColumns {
		v, _ := c.Get(name)
		s, ok := v.Text()
		if !ok {
			continue
		}
		if stringutil.ContainsFold(s, query) {
			return true
		}
	}
	return false
}

// FieldContains reports whether the string form of v contains substr.
// Missing values never match.
func FieldContains(v Field, substr string) bool {
	s, ok := v.Text()
	return ok && strings.Contains(s, substr)
}

// FieldEquals reports whether the string form of v equals s.
// Missing values never match.
func FieldEquals(v Field, s string) bool {
	t, ok := v.Text()
	return ok && t == s
}

var cjkWeekdays = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6, "日": 7,
}

// NormalizeWeekday converts an integer, a numeric string, or a CJK numeral
// into a weekday in 1..7.
func NormalizeWeekday(v Field) (int, bool) {
	var day int
	switch v.Kind() {
	case KindInt, KindFloat:
		n, ok := v.Integer()
		if !ok {
			return 0, false
		}
		day = int(n)
	case KindText:
		s := strings.TrimSpace(v.String())
		if stringutil.IsNumeric(s) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0, false
			}
			day = n
		} else {
			d, ok := cjkWeekdays[s]
			if !ok {
				return 0, false
			}
			day = d
		}
	default:
		return 0, false
	}
	if day < 1 || day > 7 {
		return 0, false
	}
	return day, true
}

// Slot is one (weekday, period) unit of free time.
type Slot struct {
	Day    int `json:"day"`
	Period int `json:"period"`
}

// SlotSet is a set of free slots.
type SlotSet map[Slot]struct{}

// NewSlotSet builds a set from slots.
func NewSlotSet(slots ...Slot) SlotSet {
	set := make(SlotSet, len(slots))
	for _, s := range slots {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether s is in the set.
func (set SlotSet) Contains(s Slot) bool {
	_, ok := set[s]
	return ok
}

// FitsWithinSlots reports whether every period the course occupies is free.
// The weekday must normalize and both period bounds must be positive
// integers with start <= end; anything else does not fit.
func FitsWithinSlots(c *Course, slots SlotSet) bool {
	day, ok := NormalizeWeekday(c.Weekday)
	if !ok {
		return false
	}
	start, ok := c.StartPeriod.Integer()
	if !ok || start <= 0 {
		return false
	}
	end, ok := c.EndPeriod.Integer()
	if !ok || end <= 0 || start > end {
		return false
	}
	for p := start; p <= end; p++ {
		if !slots.Contains(Slot{Day: day, Period: int(p)}) {
			return false
		}
	}
	return true
}

// Popularity returns enrollment / capacity * 100, or integer 0 when the
// capacity is missing or not positive. Missing enrollment counts as 0.
func Popularity(c *Course) Field {
	capacity, ok := c.Capacity.Number()
	if !ok || capacity <= 0 {
		return IntField(0)
	}
	enrolled, _ := c.Enrollment.Number()
	return FloatField(enrolled / capacity * 100)
}

// PopularityScore returns Popularity as a float for ranking.
func PopularityScore(c *Course) float64 {
	v, _ := Popularity(c).Number()
	return v
}

// Credits returns the course credits. Unparseable values count as 0.
func Credits(c *Course) float64 {
	v, ok := c.Credits.Number()
	if !ok {
		return 0
	}
	return v
}

// Sanitize returns a copy of c with NaN values replaced by absent markers
// and integral period bounds coerced to integers.
func Sanitize(c Course) Course {
	out := c
	for _, name := range KnownColumns {
		p := out.slot(name)
		*p = sanitizeField(*p)
	}
	if len(c.Extra) > 0 {
		out.Extra = make([]Column, len(c.Extra))
		for i, col := range c.Extra {
			out.Extra[i] = Column{Name: col.Name, Value: sanitizeField(col.Value)}
		}
	}
	out.Popularity = sanitizeField(out.Popularity)
	out.StartPeriod = integralPeriod(out.StartPeriod)
	out.EndPeriod = integralPeriod(out.EndPeriod)
	return out
}

// SanitizeAll sanitizes every course into a new slice.
func SanitizeAll(courses []Course) []Course {
	out := make([]Course, len(courses))
	for i := range courses {
		out[i] = Sanitize(courses[i])
	}
	return out
}

func sanitizeField(v Field) Field {
	if v.IsNaN() {
		return Null()
	}
	return v
}

func integralPeriod(v Field) Field {
	if v.Kind() == KindAbsent || v.Kind() == KindInt {
		return v
	}
	if n, ok := v.Integer(); ok {
		return IntField(n)
	}
	return v
}
