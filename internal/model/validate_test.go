package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidFargName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"<a>", true},
		{"<val>", true},
		{"<x1_y-2>", true},
		{"<>", false},
		{"a", false},
		{"<a", false},
		{"a>", false},
		{"<a b>", false},
		{"<a,b>", false},
		{"<a(b>", false},
		{`<a"b>`, false},
		{"<a<b>", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidFargName(tt.name))
		})
	}
}

func TestNameValidators(t *testing.T) {
	assert.True(t, IsValidPredName("p3"))
	assert.False(t, IsValidPredName("p 3"), "predicate names take no internal spaces")
	assert.False(t, IsValidPredName(" p"))
	assert.False(t, IsValidPredName("p("))
	assert.False(t, IsValidPredName(""))

	assert.True(t, IsValidSVarName("my column"))
	assert.False(t, IsValidSVarName("my column "))
	assert.False(t, IsValidSVarName("a<b"))

	assert.True(t, IsValidQueryVarName("?x"))
	assert.False(t, IsValidQueryVarName("x"))
	assert.False(t, IsValidQueryVarName("?"))
	assert.False(t, IsValidQueryVarName("?a b"))

	assert.True(t, IsGraphicalChar('a'))
	assert.False(t, IsGraphicalChar(' '))
	assert.False(t, IsGraphicalChar(0x7F))
}

func TestValueValidators(t *testing.T) {
	tests := []struct {
		name  string
		check func(any) (bool, error)
		v     any
		want  bool
	}{
		{"float64", IsValidFloat, 1.5, true},
		{"float32 rejected", IsValidFloat, float32(1.5), false},
		{"int as float", IsValidFloat, int64(1), false},
		{"int64", IsValidInt, int64(7), true},
		{"int rejected", IsValidInt, 7, false},
		{"int32 rejected", IsValidInt, int32(7), false},
		{"nominal", IsValidNominal, "alpha beta", true},
		{"nominal leading blank", IsValidNominal, " alpha", false},
		{"nominal comma", IsValidNominal, "a,b", false},
		{"nominal wrong type", IsValidNominal, 3, false},
		{"text empty", IsValidTextString, "", true},
		{"text DEL", IsValidTextString, "a\x7F", true},
		{"text control", IsValidTextString, "a\x1F", false},
		{"text high", IsValidTextString, "a\x80", false},
		{"quote reserved chars", IsValidQuoteString, " (a, b) <c> ", true},
		{"quote DEL", IsValidQuoteString, "a\x7F", false},
		{"quote double quote", IsValidQuoteString, `a"b`, false},
		{"time stamp", IsValidTimeStamp, TimeStamp{TPS: 60, Ticks: 10}, true},
		{"time stamp zero tps", IsValidTimeStamp, TimeStamp{}, false},
		{"time stamp wrong type", IsValidTimeStamp, int64(10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueValidators_NilIsAnError(t *testing.T) {
	for _, check := range []func(any) (bool, error){
		IsValidFloat, IsValidInt, IsValidNominal, IsValidTextString, IsValidQuoteString, IsValidTimeStamp,
	} {
		ok, err := check(nil)
		assert.False(t, ok)
		assert.True(t, HasCode(err, ErrCodeNilArgument))
	}
}

func TestTimeStamp(t *testing.T) {
	ts, err := NewTimeStamp(60, (3600+60+1)*60+30)
	require.NoError(t, err)
	assert.Equal(t, "01:01:01:030", ts.String())
	assert.Equal(t, "(60,01:01:01:030)", ts.DBString())

	_, err = NewTimeStamp(0, 1)
	assert.True(t, HasCode(err, ErrCodeOutOfRange))
	_, err = NewTimeStamp(1001, 1)
	assert.True(t, HasCode(err, ErrCodeOutOfRange))
	_, err = NewTimeStamp(60, -1)
	assert.True(t, HasCode(err, ErrCodeOutOfRange))

	// Ordering is by absolute time, whatever the tick rate.
	assert.Equal(t, 0, TimeStamp{TPS: 60, Ticks: 60}.Compare(TimeStamp{TPS: 1000, Ticks: 1000}))
	assert.Equal(t, 1, TimeStamp{TPS: 30, Ticks: 1}.Compare(TimeStamp{TPS: 60, Ticks: 1}))
	assert.Equal(t, -1, TimeStamp{TPS: 60, Ticks: 1}.Compare(TimeStamp{TPS: 60, Ticks: MaxTicks}))
	assert.True(t, TimeStamp{}.IsZero())
}

func TestParseTimeStamp(t *testing.T) {
	for _, ts := range []TimeStamp{
		{TPS: 60, Ticks: 0},
		{TPS: 60, Ticks: (3600+60+1)*60 + 30},
		{TPS: 1000, Ticks: 999},
		{TPS: 60, Ticks: MaxTicks},
	} {
		got, err := ParseTimeStamp(ts.DBString())
		require.NoError(t, err, ts.DBString())
		assert.Equal(t, ts, got)
	}

	for _, bad := range []string{"", "(60,00:00:00)", "(60,00:00:00:000", "(60,00:61:00:000)", "(60,00:00:00:060)", "(0,00:00:00:000)", "(60,00:00:00:000)x"} {
		_, err := ParseTimeStamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{50, "50.0"},
		{-100, "-100.0"},
		{0, "0.0"},
		{99.9999, "99.9999"},
		{1234567, "1234567.0"},
		{1e10, "1.0E10"},
		{0.0001, "1.0E-4"},
		{math.MaxFloat64, "1.7976931348623157E308"},
		{-math.MaxFloat64, "-1.7976931348623157E308"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFloat(tt.in))
		})
	}
}
