package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Field holds.
type Kind uint8

const (
	// KindAbsent marks a value that is missing from the record.
	KindAbsent Kind = iota
	// KindText is a free-form string value.
	KindText
	// KindInt is an integer value.
	KindInt
	// KindFloat is a floating point value. NaN is a float until sanitized.
	KindFloat
)

// Field is a single cell of a course record.
// The zero value is absent.
type Field struct {
	kind Kind
	text string
	num  int64
	flt  float64
}

// Null returns an absent field.
func Null() Field { return Field{} }

// TextField returns a text field.
func TextField(s string) Field { return Field{kind: KindText, text: s} }

// IntField returns an integer field.
func IntField(n int64) Field { return Field{kind: KindInt, num: n} }

// FloatField returns a float field.
func FloatField(f float64) Field { return Field{kind: KindFloat, flt: f} }

// NaN returns the float field used for a missing cell before sanitization.
func NaN() Field { return FloatField(math.NaN()) }

// missingTokens are cell values treated as missing by the dataset producer.
var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"None": {},
	"null": {},
	"NULL": {},
}

// ParseField converts a raw cell into a Field.
//
// Missing tokens become NaN, integer-looking text becomes an integer,
// float-looking text becomes a float, and everything else stays text.
// Numbers with leading zeros (course serials such as "0101") stay text.
func ParseField(raw string) Field {
	trimmed := strings.TrimSpace(raw)
	if _, ok := missingTokens[trimmed]; ok {
		return NaN()
	}
	if hasLeadingZero(trimmed) {
		return TextField(raw)
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return IntField(n)
	}
	if f, ok := parseFinite(trimmed); ok {
		return FloatField(f)
	}
	return TextField(raw)
}

// FieldOf converts a value produced by a database driver into a Field.
func FieldOf(v any) Field {
	switch val := v.(type) {
	case nil:
		return NaN()
	case int64:
		return IntField(val)
	case int:
		return IntField(int64(val))
	case float64:
		return FloatField(val)
	case bool:
		if val {
			return IntField(1)
		}
		return IntField(0)
	case []byte:
		return ParseField(string(val))
	case string:
		return ParseField(val)
	default:
		return NaN()
	}
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Kind returns the variant held by f.
func (f Field) Kind() Kind { return f.kind }

// IsNaN reports whether f is a NaN float.
func (f Field) IsNaN() bool { return f.kind == KindFloat && math.IsNaN(f.flt) }

// Missing reports whether f is absent or NaN.
func (f Field) Missing() bool { return f.kind == KindAbsent || f.IsNaN() }

// Text returns the string form of f, or false when f is missing.
// Integral floats render with a trailing ".0".
func (f Field) Text() (string, bool) {
	switch f.kind {
	case KindText:
		return f.text, true
	case KindInt:
		return strconv.FormatInt(f.num, 10), true
	case KindFloat:
		if math.IsNaN(f.flt) {
			return "", false
		}
		return formatFloat(f.flt), true
	default:
		return "", false
	}
}

// String implements fmt.Stringer. Missing fields render as "".
func (f Field) String() string {
	s, _ := f.Text()
	return s
}

// Number returns the numeric value of f. Numeric text is parsed.
func (f Field) Number() (float64, bool) {
	switch f.kind {
	case KindInt:
		return float64(f.num), true
	case KindFloat:
		if math.IsNaN(f.flt) {
			return 0, false
		}
		return f.flt, true
	case KindText:
		return parseFinite(strings.TrimSpace(f.text))
	default:
		return 0, false
	}
}

// Integer returns f as an integer when the conversion is lossless.
func (f Field) Integer() (int64, bool) {
	if f.kind == KindInt {
		return f.num, true
	}
	v, ok := f.Number()
	if !ok || v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, false
	}
	return int64(v), true
}

// Equal reports whether two fields hold the same variant and value.
// NaN fields are equal to each other.
func (f Field) Equal(o Field) bool {
	if f.kind != o.kind {
		return false
	}
	switch f.kind {
	case KindText:
		return f.text == o.text
	case KindInt:
		return f.num == o.num
	case KindFloat:
		if math.IsNaN(f.flt) {
			return math.IsNaN(o.flt)
		}
		return f.flt == o.flt
	default:
		return true
	}
}

// MarshalJSON encodes missing values as null.
func (f Field) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case KindText:
		return json.Marshal(f.text)
	case KindInt:
		return strconv.AppendInt(nil, f.num, 10), nil
	case KindFloat:
		if math.IsNaN(f.flt) || math.IsInf(f.flt, 0) {
			return []byte("null"), nil
		}
		return []byte(formatFloat(f.flt)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null as absent, numbers as int or float, and strings as text.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = Null()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = TextField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil && !bytes.ContainsAny(data, ".eE") {
		*f = IntField(i)
		return nil
	}
	v, err := n.Float64()
	if err != nil {
		return err
	}
	*f = FloatField(v)
	return nil
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
