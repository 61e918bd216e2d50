package model

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders f the way the canonical strings expect: plain decimal
// with at least one fractional digit for magnitudes in [1e-3, 1e7), and
// d.dddE±n otherwise (50.0, -100.0, 1.0E10, -1.7976931348623157E308).
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(f, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}

// joinStrings renders items as "(a, b, c)"; "()" when empty.
func joinStrings(items []string) string {
	return "(" + strings.Join(items, ", ") + ")"
}
