package model

import (
	"fmt"
	"math"
)

// FloatFormalArg accepts float64 values, optionally within [min, max].
type FloatFormalArg struct {
	fargBase
	subRange bool
	min      float64
	max      float64
}

// NewFloatFormalArg creates an unattached float argument with an unbounded range.
func NewFloatFormalArg(db *Database, name string) (*FloatFormalArg, error) {
	b, err := newFargBase("NewFloatFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &FloatFormalArg{fargBase: b, min: -math.MaxFloat64, max: math.MaxFloat64}, nil
}

func (fa *FloatFormalArg) Type() FargType { return FargFloat }
func (fa *FloatFormalArg) SubRange() bool { return fa.subRange }
func (fa *FloatFormalArg) Min() float64   { return fa.min }
func (fa *FloatFormalArg) Max() float64   { return fa.max }

// SetSubRange toggles the range constraint. Disabling restores the
// unbounded range; enabling keeps the current bounds.
func (fa *FloatFormalArg) SetSubRange(on bool) error {
	fa.subRange = on
	if !on {
		fa.min, fa.max = -math.MaxFloat64, math.MaxFloat64
	}
	return nil
}

// SetRange sets the bounds. Requires the sub-range to be on and min < max.
func (fa *FloatFormalArg) SetRange(min, max float64) error {
	const op = "FloatFormalArg.SetRange"
	if !fa.subRange {
		return newIDError(ErrCodeSubRangeDisabled, op, fa.id, "sub-range is off")
	}
	if math.IsNaN(min) || math.IsNaN(max) || min >= max {
		return newIDError(ErrCodeOutOfRange, op, fa.id, "invalid range [%v, %v]", min, max)
	}
	fa.min, fa.max = min, max
	return nil
}

// CoerceToRange clamps v into [min, max] when the sub-range is on.
func (fa *FloatFormalArg) CoerceToRange(v float64) float64 {
	if !fa.subRange {
		return v
	}
	return math.Max(fa.min, math.Min(fa.max, v))
}

func (fa *FloatFormalArg) IsValidValue(v any) (bool, error) {
	ok, err := IsValidFloat(v)
	if err != nil || !ok {
		return false, err
	}
	f := v.(float64)
	return !fa.subRange || (f >= fa.min && f <= fa.max), nil
}

func (fa *FloatFormalArg) DBString() string {
	return fmt.Sprintf("(FloatFormalArg %d %s %t %s %s)", fa.id, fa.name, fa.subRange, formatFloat(fa.min), formatFloat(fa.max))
}

func (fa *FloatFormalArg) Clone() FormalArgument {
	c := *fa
	return &c
}

func (fa *FloatFormalArg) Validate() error {
	const op = "FloatFormalArg.Validate"
	if err := fa.validate(op); err != nil {
		return err
	}
	if fa.min > fa.max {
		return newIDError(ErrCodeIllFormed, op, fa.id, "min > max")
	}
	return nil
}

// IntFormalArg accepts int64 values, optionally within [min, max].
type IntFormalArg struct {
	fargBase
	subRange bool
	min      int64
	max      int64
}

// NewIntFormalArg creates an unattached integer argument with an unbounded range.
func NewIntFormalArg(db *Database, name string) (*IntFormalArg, error) {
	b, err := newFargBase("NewIntFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &IntFormalArg{fargBase: b, min: math.MinInt64, max: math.MaxInt64}, nil
}

func (fa *IntFormalArg) Type() FargType { return FargInteger }
func (fa *IntFormalArg) SubRange() bool { return fa.subRange }
func (fa *IntFormalArg) Min() int64     { return fa.min }
func (fa *IntFormalArg) Max() int64     { return fa.max }

// SetSubRange toggles the range constraint. Disabling restores the
// unbounded range; enabling keeps the current bounds.
func (fa *IntFormalArg) SetSubRange(on bool) error {
	fa.subRange = on
	if !on {
		fa.min, fa.max = math.MinInt64, math.MaxInt64
	}
	return nil
}

// SetRange sets the bounds. Requires the sub-range to be on and min < max.
func (fa *IntFormalArg) SetRange(min, max int64) error {
	const op = "IntFormalArg.SetRange"
	if !fa.subRange {
		return newIDError(ErrCodeSubRangeDisabled, op, fa.id, "sub-range is off")
	}
	if min >= max {
		return newIDError(ErrCodeOutOfRange, op, fa.id, "invalid range [%d, %d]", min, max)
	}
	fa.min, fa.max = min, max
	return nil
}

// CoerceToRange clamps v into [min, max] when the sub-range is on.
func (fa *IntFormalArg) CoerceToRange(v int64) int64 {
	if !fa.subRange {
		return v
	}
	return max(fa.min, min(fa.max, v))
}

func (fa *IntFormalArg) IsValidValue(v any) (bool, error) {
	ok, err := IsValidInt(v)
	if err != nil || !ok {
		return false, err
	}
	i := v.(int64)
	return !fa.subRange || (i >= fa.min && i <= fa.max), nil
}

func (fa *IntFormalArg) DBString() string {
	return fmt.Sprintf("(IntFormalArg %d %s %t %d %d)", fa.id, fa.name, fa.subRange, fa.min, fa.max)
}

func (fa *IntFormalArg) Clone() FormalArgument {
	c := *fa
	return &c
}

func (fa *IntFormalArg) Validate() error {
	const op = "IntFormalArg.Validate"
	if err := fa.validate(op); err != nil {
		return err
	}
	if fa.min > fa.max {
		return newIDError(ErrCodeIllFormed, op, fa.id, "min > max")
	}
	return nil
}

// TimeStampFormalArg accepts TimeStamp values, optionally within [min, max].
// The bounds are zero while the sub-range is off.
type TimeStampFormalArg struct {
	fargBase
	subRange bool
	min      TimeStamp
	max      TimeStamp
}

// NewTimeStampFormalArg creates an unattached time stamp argument.
func NewTimeStampFormalArg(db *Database, name string) (*TimeStampFormalArg, error) {
	b, err := newFargBase("NewTimeStampFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &TimeStampFormalArg{fargBase: b}, nil
}

func (fa *TimeStampFormalArg) Type() FargType { return FargTimeStamp }
func (fa *TimeStampFormalArg) SubRange() bool { return fa.subRange }
func (fa *TimeStampFormalArg) Min() TimeStamp { return fa.min }
func (fa *TimeStampFormalArg) Max() TimeStamp { return fa.max }

// SetSubRange toggles the range constraint. Enabling from off starts with
// the widest range at the database tick rate; disabling clears the bounds.
func (fa *TimeStampFormalArg) SetSubRange(on bool) error {
	switch {
	case on && !fa.subRange:
		tps := fa.db.TicksPerSecond()
		fa.min = TimeStamp{TPS: tps, Ticks: MinTicks}
		fa.max = TimeStamp{TPS: tps, Ticks: MaxTicks}
	case !on:
		fa.min, fa.max = TimeStamp{}, TimeStamp{}
	}
	fa.subRange = on
	return nil
}

// SetRange sets the bounds. Requires the sub-range to be on and min < max.
func (fa *TimeStampFormalArg) SetRange(min, max TimeStamp) error {
	const op = "TimeStampFormalArg.SetRange"
	if !fa.subRange {
		return newIDError(ErrCodeSubRangeDisabled, op, fa.id, "sub-range is off")
	}
	if err := min.Validate(); err != nil {
		return err
	}
	if err := max.Validate(); err != nil {
		return err
	}
	if min.Compare(max) >= 0 {
		return newIDError(ErrCodeOutOfRange, op, fa.id, "invalid range [%s, %s]", min.DBString(), max.DBString())
	}
	fa.min, fa.max = min, max
	return nil
}

// CoerceToRange clamps ts into [min, max] when the sub-range is on.
func (fa *TimeStampFormalArg) CoerceToRange(ts TimeStamp) TimeStamp {
	if !fa.subRange {
		return ts
	}
	if ts.Compare(fa.min) < 0 {
		return fa.min
	}
	if ts.Compare(fa.max) > 0 {
		return fa.max
	}
	return ts
}

func (fa *TimeStampFormalArg) IsValidValue(v any) (bool, error) {
	ok, err := IsValidTimeStamp(v)
	if err != nil || !ok {
		return false, err
	}
	ts := v.(TimeStamp)
	return !fa.subRange || (ts.Compare(fa.min) >= 0 && ts.Compare(fa.max) <= 0), nil
}

func (fa *TimeStampFormalArg) DBString() string {
	if !fa.subRange {
		return fmt.Sprintf("(TimeStampFormalArg %d %s false null null)", fa.id, fa.name)
	}
	return fmt.Sprintf("(TimeStampFormalArg %d %s true %s %s)", fa.id, fa.name, fa.min.DBString(), fa.max.DBString())
}

func (fa *TimeStampFormalArg) Clone() FormalArgument {
	c := *fa
	return &c
}

func (fa *TimeStampFormalArg) Validate() error {
	const op = "TimeStampFormalArg.Validate"
	if err := fa.validate(op); err != nil {
		return err
	}
	if !fa.subRange {
		return nil
	}
	if fa.min.Validate() != nil || fa.max.Validate() != nil || fa.min.Compare(fa.max) > 0 {
		return newIDError(ErrCodeIllFormed, op, fa.id, "invalid range")
	}
	return nil
}
