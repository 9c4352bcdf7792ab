// Package catalog defines the course record and the predicates evaluated
// over it by the query and recommendation engines.
package catalog

import (
	"bytes"
	"encoding/json"
)

// Dataset column names. They double as JSON keys on the wire.
const (
	ColYear          = "學年度"
	ColSemester      = "學期"
	ColCode          = "課程代碼"
	ColSerial        = "序號"
	ColName          = "課程名稱"
	ColEnglishName   = "英文課程名稱"
	ColInstructor    = "教師姓名"
	ColNature        = "課程性質"
	ColCollege       = "學院"
	ColGrade         = "年級"
	ColOfferingClass = "開課班別(代表)"
	ColWeekday       = "星期"
	ColStartPeriod   = "起始節次"
	ColEndPeriod     = "結束節次"
	ColEnrollment    = "選上人數"
	ColCapacity      = "上限人數"
	ColCredits       = "學分"
	ColEnglishTaught = "全英語授課"

	// ColPopularity is the derived field added by recommendation.
	ColPopularity = "熱門度"
)

// KnownColumns lists the typed columns in output order.
var KnownColumns = []string{
	ColYear, ColSemester, ColCode, ColSerial,
	ColName, ColEnglishName, ColInstructor, ColNature,
	ColCollege, ColGrade, ColOfferingClass,
	ColWeekday, ColStartPeriod, ColEndPeriod,
	ColEnrollment, ColCapacity, ColCredits, ColEnglishTaught,
}

// Column is a dataset column the record type does not model explicitly.
type Column struct {
	Name  string
	Value Field
}

// Course is one row of the catalog: a course offering and serial number
// for a single weekday/period range.
type Course struct {
	Year          Field
	Semester      Field
	Code          Field
	Serial        Field
	Name          Field
	EnglishName   Field
	Instructor    Field
	Nature        Field
	College       Field
	Grade         Field
	OfferingClass Field
	Weekday       Field
	StartPeriod   Field
	EndPeriod     Field
	Enrollment    Field
	Capacity      Field
	Credits       Field
	EnglishTaught Field

	// Extra keeps unknown columns in dataset order.
	Extra []Column

	// Popularity is set only by recommendation; absent otherwise.
	Popularity Field
}

func (c *Course) slot(name string) *Field {
	switch name {
	case ColYear:
		return &c.Year
	case ColSemester:
		return &c.Semester
	case ColCode:
		return &c.Code
	case ColSerial:
		return &c.Serial
	case ColName:
		return &c.Name
	case ColEnglishName:
		return &c.EnglishName
	case ColInstructor:
		return &c.Instructor
	case ColNature:
		return &c.Nature
	case ColCollege:
		return &c.College
	case ColGrade:
		return &c.Grade
	case ColOfferingClass:
		return &c.OfferingClass
	case ColWeekday:
		return &c.Weekday
	case ColStartPeriod:
		return &c.StartPeriod
	case ColEndPeriod:
		return &c.EndPeriod
	case ColEnrollment:
		return &c.Enrollment
	case ColCapacity:
		return &c.Capacity
	case ColCredits:
		return &c.Credits
	case ColEnglishTaught:
		return &c.EnglishTaught
	default:
		return nil
	}
}

// Set assigns a column value. Unknown columns are appended to Extra,
// replacing an earlier value of the same name.
func (c *Course) Set(name string, v Field) {
	if p := c.slot(name); p != nil {
		*p = v
		return
	}
	for i := range c.Extra {
		if c.Extra[i].Name == name {
			c.Extra[i].Value = v
			return
		}
	}
	c.Extra = append(c.Extra, Column{Name: name, Value: v})
}

// Get returns a column value by name.
func (c *Course) Get(name string) (Field, bool) {
	if p := c.slot(name); p != nil {
		return *p, true
	}
	for _, col := range c.Extra {
		if col.Name == name {
			return col.Value, true
		}
	}
	return Null(), false
}

// MarshalJSON writes the known columns first, then Extra in dataset
// order, then 熱門度 when it has been computed.
func (c Course) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(name string, v Field) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := v.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(val)
		return nil
	}

	for _, name := range KnownColumns {
		if err := write(name, *c.slot(name)); err != nil {
			return nil, err
		}
	}
	for _, col := range c.Extra {
		if err := write(col.Name, col.Value); err != nil {
			return nil, err
		}
	}
	if c.Popularity.Kind() != KindAbsent {
		if err := write(ColPopularity, c.Popularity); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a record keyed by column name.
func (c *Course) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = Course{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var v Field
		if err := dec.Decode(&v); err != nil {
			return err
		}
		if name == ColPopularity {
			c.Popularity = v
			continue
		}
		c.Set(name, v)
	}
	_, err := dec.Token()
	return err
}
