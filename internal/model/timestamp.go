package model

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// TimeStamp bounds.
const (
	MinTPS   int64 = 1
	MaxTPS   int64 = 1000
	MinTicks int64 = 0
	MaxTicks int64 = math.MaxInt64
)

// DefaultTPS is the ticks-per-second of a Database created without
// WithTicksPerSecond.
const DefaultTPS int64 = 60

// TimeStamp is a point in media time: Ticks at TPS ticks per second.
type TimeStamp struct {
	TPS   int64
	Ticks int64
}

// NewTimeStamp creates a validated TimeStamp.
func NewTimeStamp(tps, ticks int64) (TimeStamp, error) {
	ts := TimeStamp{TPS: tps, Ticks: ticks}
	if err := ts.Validate(); err != nil {
		return TimeStamp{}, err
	}
	return ts, nil
}

// Validate checks TPS and Ticks against their bounds.
func (ts TimeStamp) Validate() error {
	if ts.TPS < MinTPS || ts.TPS > MaxTPS {
		return newError(ErrCodeOutOfRange, "TimeStamp.Validate", "tps %d outside [%d, %d]", ts.TPS, MinTPS, MaxTPS)
	}
	if ts.Ticks < MinTicks {
		return newError(ErrCodeOutOfRange, "TimeStamp.Validate", "negative ticks %d", ts.Ticks)
	}
	return nil
}

// IsZero reports whether ts is the zero value (no time stamp).
func (ts TimeStamp) IsZero() bool {
	return ts.TPS == 0 && ts.Ticks == 0
}

// Compare orders two time stamps by absolute time, independent of their
// tick rates. Returns -1, 0 or +1.
func (ts TimeStamp) Compare(o TimeStamp) int {
	// ticks/tps vs o.ticks/o.tps, cross-multiplied in 128 bits.
	hi1, lo1 := bits.Mul64(uint64(ts.Ticks), uint64(o.TPS))
	hi2, lo2 := bits.Mul64(uint64(o.Ticks), uint64(ts.TPS))
	switch {
	case hi1 < hi2 || (hi1 == hi2 && lo1 < lo2):
		return -1
	case hi1 > hi2 || (hi1 == hi2 && lo1 > lo2):
		return 1
	}
	return 0
}

func (ts TimeStamp) fields() (h, m, s, f int64) {
	if ts.TPS <= 0 {
		return 0, 0, 0, 0
	}
	secs := ts.Ticks / ts.TPS
	return secs / 3600, (secs / 60) % 60, secs % 60, ts.Ticks % ts.TPS
}

// String renders HH:MM:SS:FFF where FFF counts ticks within the second.
func (ts TimeStamp) String() string {
	h, m, s, f := ts.fields()
	return fmt.Sprintf("%02d:%02d:%02d:%03d", h, m, s, f)
}

// DBString renders (tps,HH:MM:SS:FFF).
func (ts TimeStamp) DBString() string {
	return fmt.Sprintf("(%d,%s)", ts.TPS, ts.String())
}

// ParseTimeStamp reads the DBString form back. The tick field must be
// below the tick rate.
func ParseTimeStamp(s string) (TimeStamp, error) {
	const op = "ParseTimeStamp"
	var tps, h, m, sec, f int64
	var rest string
	n, _ := fmt.Sscanf(s, "(%d,%d:%d:%d:%d)%s", &tps, &h, &m, &sec, &f, &rest)
	if n != 5 || !strings.HasSuffix(s, ")") {
		return TimeStamp{}, newError(ErrCodeInvalidValue, op, "malformed time stamp %q", s)
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 || f < 0 || (tps > 0 && f >= tps) {
		return TimeStamp{}, newError(ErrCodeInvalidValue, op, "time stamp %q has a field out of range", s)
	}
	return NewTimeStamp(tps, ((h*3600+m*60+sec)*tps)+f)
}
