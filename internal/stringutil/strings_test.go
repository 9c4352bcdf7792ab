package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Valid digits", "123456", true},
		{"Single weekday digit", "3", true},
		{"Empty string", "", false},
		{"Contains letter", "123a456", false},
		{"Contains space", "123 456", false},
		{"CJK numeral", "三", false},
		{"Decimal point", "3.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumeric(tt.input))
		})
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{"ASCII case-insensitive", "Introduction to Calculus", "CALC", true},
		{"CJK substring", "微積分（一）", "積分", true},
		{"Instructor name", "王小明", "小明", true},
		{"Not contained", "線性代數", "微積分", false},
		{"Empty substring", "anything", "", true},
		{"Empty haystack", "", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsFold(tt.s, tt.substr))
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\n"))
	assert.False(t, IsBlank(" 資工系 "))
}

func TestTrimBOM(t *testing.T) {
	assert.Equal(t, []byte("學年度"), TrimBOM(append([]byte{0xEF, 0xBB, 0xBF}, "學年度"...)))
	assert.Equal(t, []byte("abc"), TrimBOM([]byte("abc")))
	assert.Empty(t, TrimBOM([]byte{}))
}

func TestIsUTF8(t *testing.T) {
	assert.True(t, IsUTF8([]byte("課程名稱")))
	// "課程" encoded in Big5
	assert.False(t, IsUTF8([]byte{0xBD, 0xD2, 0xB5, 0x7B}))
}
