package model

import (
	"fmt"
	"math"
	"strconv"
)

// DataValue is a typed value bound to one formal argument by ID, and
// optionally to a cell.
//
// The value snapshots the bound argument's sub-range state (flag and, for
// numeric and time stamp kinds, the bounds) and its kind tag. Vocabulary
// edits keep the snapshot current through the cascade; callers never
// update it themselves.
//
// String kinds use the empty string as their null value.
type DataValue struct {
	db         *Database
	id         ID
	cellID     ID
	fargID     ID
	fargType   FargType
	predID     ID
	lastModUID int64
	subRange   bool
	payload    payload
}

// payload is the kind-specific part of a DataValue.
type payload interface {
	kind() DataValueKind
	clone() payload
	value() any
	display() string
	dbValue() string
}

type floatPayload struct{ v, min, max float64 }

func (p *floatPayload) kind() DataValueKind { return KindFloat }
func (p *floatPayload) clone() payload      { c := *p; return &c }
func (p *floatPayload) value() any          { return p.v }
func (p *floatPayload) display() string     { return formatFloat(p.v) }
func (p *floatPayload) dbValue() string     { return formatFloat(p.v) }

type intPayload struct{ v, min, max int64 }

func (p *intPayload) kind() DataValueKind { return KindInt }
func (p *intPayload) clone() payload      { c := *p; return &c }
func (p *intPayload) value() any          { return p.v }
func (p *intPayload) display() string     { return strconv.FormatInt(p.v, 10) }
func (p *intPayload) dbValue() string     { return strconv.FormatInt(p.v, 10) }

type stringPayload struct {
	k DataValueKind
	v string
}

func (p *stringPayload) kind() DataValueKind { return p.k }
func (p *stringPayload) clone() payload      { c := *p; return &c }
func (p *stringPayload) value() any          { return p.v }

func (p *stringPayload) display() string {
	if p.k == KindQuoteString {
		return `"` + p.v + `"`
	}
	return p.v
}

func (p *stringPayload) dbValue() string {
	if p.v == "" && p.k != KindUndefined {
		return "<null>"
	}
	return p.v
}

type timeStampPayload struct{ v, min, max TimeStamp }

func (p *timeStampPayload) kind() DataValueKind { return KindTimeStamp }
func (p *timeStampPayload) clone() payload      { c := *p; return &c }
func (p *timeStampPayload) value() any          { return p.v }
func (p *timeStampPayload) display() string     { return p.v.String() }
func (p *timeStampPayload) dbValue() string     { return p.v.DBString() }

type predPayload struct{ p *Predicate }

func (p *predPayload) kind() DataValueKind { return KindPred }
func (p *predPayload) clone() payload      { return &predPayload{p: p.p.Clone()} }
func (p *predPayload) value() any          { return p.p.Clone() }
func (p *predPayload) display() string     { return p.p.String() }

func (p *predPayload) dbValue() string {
	if p.p.IsEmpty() {
		return "()"
	}
	return p.p.DBString()
}

type colPredPayload struct{ cp *ColPredicate }

func (p *colPredPayload) kind() DataValueKind { return KindColPred }
func (p *colPredPayload) clone() payload      { return &colPredPayload{cp: p.cp.Clone()} }
func (p *colPredPayload) value() any          { return p.cp.Clone() }
func (p *colPredPayload) display() string     { return p.cp.String() }

func (p *colPredPayload) dbValue() string {
	if p.cp.IsEmpty() {
		return "()"
	}
	return p.cp.DBString()
}

// undefinedValue is the value of an unbound Undefined data value.
const undefinedValue = "<val>"

func zeroPayload(db *Database, k DataValueKind) payload {
	switch k {
	case KindFloat:
		return &floatPayload{}
	case KindInt:
		return &intPayload{}
	case KindNominal, KindQuoteString, KindTextString:
		return &stringPayload{k: k}
	case KindTimeStamp:
		return &timeStampPayload{v: TimeStamp{TPS: db.TicksPerSecond()}}
	case KindPred:
		return &predPayload{p: emptyPredicate(db)}
	case KindColPred:
		return &colPredPayload{cp: emptyColPredicate(db)}
	}
	return &stringPayload{k: KindUndefined, v: undefinedValue}
}

// NewDataValue creates a data value of the given kind holding the kind's
// default, bound to fargID or unbound when fargID is InvalidID. The value
// is registered with db so vocabulary edits reach it.
//
// Fails if fargID does not name an indexed formal argument or the argument
// cannot hold values of kind k.
func NewDataValue(db *Database, k DataValueKind, fargID ID) (*DataValue, error) {
	const op = "NewDataValue"
	if db == nil {
		return nil, newError(ErrCodeNilArgument, op, "database is nil")
	}
	if k < KindUndefined || k > KindColPred {
		return nil, newError(ErrCodeInvalidValue, op, "unknown data value kind %d", int(k))
	}
	var fa FormalArgument
	if fargID != InvalidID {
		var err error
		if fa, err = db.index.formalArg(op, fargID); err != nil {
			return nil, err
		}
		if !k.canBind(fa) {
			return nil, newIDError(ErrCodeKindMismatch, op, fargID, "%s value cannot bind to %s argument %s", k, fa.Type(), fa.Name())
		}
	}
	dv := newDataValue(db, k, fa)
	db.track(dv)
	return dv, nil
}

// newValueOf creates, fills and registers a value, dropping the registration
// again when v is rejected.
func newValueOf(db *Database, k DataValueKind, fargID ID, v any) (*DataValue, error) {
	dv, err := NewDataValue(db, k, fargID)
	if err != nil {
		return nil, err
	}
	if err := dv.SetValue(v); err != nil {
		db.Release(dv)
		return nil, err
	}
	return dv, nil
}

// NewFloatDataValue creates a float value bound to fargID.
func NewFloatDataValue(db *Database, fargID ID, v float64) (*DataValue, error) {
	return newValueOf(db, KindFloat, fargID, v)
}

// NewIntDataValue creates an integer value bound to fargID.
func NewIntDataValue(db *Database, fargID ID, v int64) (*DataValue, error) {
	return newValueOf(db, KindInt, fargID, v)
}

// NewNominalDataValue creates a nominal value bound to fargID.
func NewNominalDataValue(db *Database, fargID ID, v string) (*DataValue, error) {
	return newValueOf(db, KindNominal, fargID, v)
}

// NewQuoteStringDataValue creates a quote string value bound to fargID.
func NewQuoteStringDataValue(db *Database, fargID ID, v string) (*DataValue, error) {
	return newValueOf(db, KindQuoteString, fargID, v)
}

// NewTextStringDataValue creates a text string value bound to fargID.
func NewTextStringDataValue(db *Database, fargID ID, v string) (*DataValue, error) {
	return newValueOf(db, KindTextString, fargID, v)
}

// NewTimeStampDataValue creates a time stamp value bound to fargID.
func NewTimeStampDataValue(db *Database, fargID ID, v TimeStamp) (*DataValue, error) {
	return newValueOf(db, KindTimeStamp, fargID, v)
}

// NewPredDataValue creates a predicate value bound to fargID. The value
// holds a copy of p.
func NewPredDataValue(db *Database, fargID ID, p *Predicate) (*DataValue, error) {
	return newValueOf(db, KindPred, fargID, p)
}

// NewColPredDataValue creates a column predicate value bound to fargID. The
// value holds a copy of cp.
func NewColPredDataValue(db *Database, fargID ID, cp *ColPredicate) (*DataValue, error) {
	return newValueOf(db, KindColPred, fargID, cp)
}

// NewUndefinedDataValue creates a placeholder bound to fargID. Its value is
// the argument's name, or "<val>" when unbound.
func NewUndefinedDataValue(db *Database, fargID ID) (*DataValue, error) {
	return NewDataValue(db, KindUndefined, fargID)
}

// newDataValue builds an unregistered value bound to fa (nil for unbound).
func newDataValue(db *Database, k DataValueKind, fa FormalArgument) *DataValue {
	dv := &DataValue{db: db, payload: zeroPayload(db, k)}
	if fa != nil {
		dv.bind(fa)
	}
	return dv
}

// defaultValue is the value a fresh predicate argument bound to fa starts with.
func defaultValue(db *Database, fa FormalArgument) *DataValue {
	return newDataValue(db, defaultKind(fa.Type()), fa)
}

func (dv *DataValue) bind(fa FormalArgument) {
	dv.fargID = fa.ID()
	dv.fargType = fa.Type()
	if p, ok := dv.payload.(*stringPayload); ok && p.k == KindUndefined {
		p.v = fa.Name()
	}
	dv.updateSubRange(fa)
}

func (dv *DataValue) ID() ID              { return dv.id }
func (dv *DataValue) DB() *Database       { return dv.db }
func (dv *DataValue) Kind() DataValueKind { return dv.payload.kind() }
func (dv *DataValue) FargID() ID          { return dv.fargID }
func (dv *DataValue) FargType() FargType  { return dv.fargType }
func (dv *DataValue) CellID() ID          { return dv.cellID }
func (dv *DataValue) ItsPredID() ID       { return dv.predID }
func (dv *DataValue) SubRange() bool      { return dv.subRange }
func (dv *DataValue) LastModUID() int64   { return dv.lastModUID }

// AssignID records the ID a collaborator (e.g. a cell store) gave the value.
func (dv *DataValue) AssignID(id ID) error {
	if id < InvalidID {
		return newError(ErrCodeInvalidID, "DataValue.AssignID", "negative id %d", id)
	}
	dv.id = id
	return nil
}

// SetCellID records the cell holding the value.
func (dv *DataValue) SetCellID(id ID) error {
	if id < InvalidID {
		return newError(ErrCodeInvalidID, "DataValue.SetCellID", "negative cell id %d", id)
	}
	dv.cellID = id
	return nil
}

// SetLastModUID records the user who last modified the value.
func (dv *DataValue) SetLastModUID(uid int64) {
	dv.lastModUID = uid
}

// Value returns the payload: float64, int64, string (nominal, quote, text
// and undefined kinds), TimeStamp, or a copy of the *Predicate or
// *ColPredicate held.
func (dv *DataValue) Value() any {
	return dv.payload.value()
}

// Bounds returns the snapshotted range of float, int and time stamp values.
// ok is false for other kinds.
func (dv *DataValue) Bounds() (min, max any, ok bool) {
	switch p := dv.payload.(type) {
	case *floatPayload:
		return p.min, p.max, true
	case *intPayload:
		return p.min, p.max, true
	case *timeStampPayload:
		return p.min, p.max, true
	}
	return nil, nil, false
}

// boundArg resolves the bound argument; nil when unbound.
func (dv *DataValue) boundArg(op string) (FormalArgument, error) {
	if !dv.fargID.Valid() {
		return nil, nil
	}
	return dv.db.index.formalArg(op, dv.fargID)
}

// SetValue stores v. Numeric and time stamp values are clamped into the
// sub-range; nominal and predicate values the bound argument does not
// approve are rejected. The empty string stores null for string kinds.
func (dv *DataValue) SetValue(v any) error {
	const op = "DataValue.SetValue"
	if v == nil {
		return newIDError(ErrCodeNilArgument, op, dv.id, "value is nil")
	}
	fa, err := dv.boundArg(op)
	if err != nil {
		return err
	}

	switch p := dv.payload.(type) {
	case *floatPayload:
		f, ok := v.(float64)
		if !ok {
			return kindMismatch(op, dv, v)
		}
		if math.IsNaN(f) {
			return newIDError(ErrCodeInvalidValue, op, dv.id, "NaN is not a float value")
		}
		if dv.subRange {
			f = math.Max(p.min, math.Min(p.max, f))
		}
		p.v = f

	case *intPayload:
		i, ok := v.(int64)
		if !ok {
			return kindMismatch(op, dv, v)
		}
		if dv.subRange {
			i = max(p.min, min(p.max, i))
		}
		p.v = i

	case *timeStampPayload:
		ts, ok := v.(TimeStamp)
		if !ok {
			return kindMismatch(op, dv, v)
		}
		if err := ts.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if dv.subRange {
			ts = clampTimeStamp(ts, p.min, p.max)
		}
		p.v = ts

	case *stringPayload:
		s, ok := v.(string)
		if !ok {
			return kindMismatch(op, dv, v)
		}
		if err := dv.checkString(op, p.k, s, fa); err != nil {
			return err
		}
		p.v = s

	case *predPayload:
		pred, ok := v.(*Predicate)
		if !ok || pred == nil {
			return kindMismatch(op, dv, v)
		}
		if pred.db != dv.db {
			return newIDError(ErrCodeDBMismatch, op, dv.id, "predicate belongs to another database")
		}
		if pfa, ok := fa.(*PredFormalArg); ok {
			if _, ok := pfa.CoerceToRange(pred); !ok {
				return newIDError(ErrCodeInvalidValue, op, dv.id, "predicate %s not approved by %s", pred.Name(), pfa.Name())
			}
		}
		p.p = pred.Clone()
		p.p.id = InvalidID

	case *colPredPayload:
		cp, ok := v.(*ColPredicate)
		if !ok || cp == nil {
			return kindMismatch(op, dv, v)
		}
		if cp.db != dv.db {
			return newIDError(ErrCodeDBMismatch, op, dv.id, "column predicate belongs to another database")
		}
		p.cp = cp.Clone()
		p.cp.id = InvalidID
	}

	dv.db.deps.reindex(dv)
	return nil
}

func (dv *DataValue) checkString(op string, k DataValueKind, s string, fa FormalArgument) error {
	switch k {
	case KindNominal:
		if s == "" {
			return nil
		}
		if !validNominal(s) {
			return newIDError(ErrCodeInvalidValue, op, dv.id, "invalid nominal %q", s)
		}
		if nfa, ok := fa.(*NominalFormalArg); ok {
			if _, ok := nfa.CoerceToRange(s); !ok {
				return newIDError(ErrCodeInvalidValue, op, dv.id, "nominal %q not approved by %s", s, nfa.Name())
			}
		}
	case KindQuoteString:
		if !validQuoteString(s) {
			return newIDError(ErrCodeInvalidValue, op, dv.id, "invalid quote string %q", s)
		}
	case KindTextString:
		if !validTextString(s) {
			return newIDError(ErrCodeInvalidValue, op, dv.id, "invalid text string %q", s)
		}
	case KindUndefined:
		if !IsValidFargName(s) {
			return newIDError(ErrCodeInvalidValue, op, dv.id, "undefined value %q is not an argument name", s)
		}
	}
	return nil
}

func kindMismatch(op string, dv *DataValue, v any) error {
	return newIDError(ErrCodeKindMismatch, op, dv.id, "%s value cannot hold %T", dv.Kind(), v)
}

func clampTimeStamp(ts, lo, hi TimeStamp) TimeStamp {
	if ts.Compare(lo) < 0 {
		return lo
	}
	if ts.Compare(hi) > 0 {
		return hi
	}
	return ts
}

// CoerceToRange returns v as this value would store it: clamped into the
// sub-range for numeric and time stamp kinds, unchanged when approved (or
// unconstrained) for nominal and predicate kinds. A nil result with a nil
// error means the bound argument rejects v.
func (dv *DataValue) CoerceToRange(v any) (any, error) {
	const op = "DataValue.CoerceToRange"
	if v == nil {
		return nil, newIDError(ErrCodeNilArgument, op, dv.id, "value is nil")
	}
	fa, err := dv.boundArg(op)
	if err != nil {
		return nil, err
	}

	switch p := dv.payload.(type) {
	case *floatPayload:
		f, ok := v.(float64)
		if !ok {
			return nil, kindMismatch(op, dv, v)
		}
		if dv.subRange {
			f = math.Max(p.min, math.Min(p.max, f))
		}
		return f, nil
	case *intPayload:
		i, ok := v.(int64)
		if !ok {
			return nil, kindMismatch(op, dv, v)
		}
		if dv.subRange {
			i = max(p.min, min(p.max, i))
		}
		return i, nil
	case *timeStampPayload:
		ts, ok := v.(TimeStamp)
		if !ok {
			return nil, kindMismatch(op, dv, v)
		}
		if dv.subRange {
			ts = clampTimeStamp(ts, p.min, p.max)
		}
		return ts, nil
	case *stringPayload:
		s, ok := v.(string)
		if !ok {
			return nil, kindMismatch(op, dv, v)
		}
		if dv.checkString(op, p.k, s, fa) != nil {
			return nil, nil
		}
		return s, nil
	case *predPayload:
		pred, ok := v.(*Predicate)
		if !ok || pred == nil {
			return nil, kindMismatch(op, dv, v)
		}
		if pfa, ok := fa.(*PredFormalArg); ok {
			if _, ok := pfa.CoerceToRange(pred); !ok {
				return nil, nil
			}
		} else if pred.db != dv.db {
			return nil, nil
		}
		return pred, nil
	case *colPredPayload:
		cp, ok := v.(*ColPredicate)
		if !ok || cp == nil {
			return nil, kindMismatch(op, dv, v)
		}
		if cp.db != dv.db {
			return nil, nil
		}
		return cp, nil
	}
	return nil, newIDError(ErrCodeIllFormed, op, dv.id, "unknown payload")
}

// String returns the display form of the value.
func (dv *DataValue) String() string {
	return dv.payload.display()
}

// DBString returns the canonical debug form:
//
//	(<Kind>DataValue (id N) (itsFargID N) (itsFargType T) (itsCellID N) (itsValue V) (subRange B)[ (minVal X) (maxVal Y)])
//
// Float and int values always print their bounds; time stamps only with
// the sub-range on.
func (dv *DataValue) DBString() string {
	var bounds string
	switch p := dv.payload.(type) {
	case *floatPayload:
		bounds = fmt.Sprintf(" (minVal %s) (maxVal %s)", formatFloat(p.min), formatFloat(p.max))
	case *intPayload:
		bounds = fmt.Sprintf(" (minVal %d) (maxVal %d)", p.min, p.max)
	case *timeStampPayload:
		if dv.subRange {
			bounds = fmt.Sprintf(" (minVal %s) (maxVal %s)", p.min.DBString(), p.max.DBString())
		}
	}
	return fmt.Sprintf("(%sDataValue (id %d) (itsFargID %d) (itsFargType %s) (itsCellID %d) (itsValue %s) (subRange %t)%s)",
		dv.Kind(), dv.id, dv.fargID, dv.fargType, dv.cellID, dv.payload.dbValue(), dv.subRange, bounds)
}

// Clone returns a deep copy keeping the ID and binding. The copy is a
// snapshot: it is not registered with the database.
func (dv *DataValue) Clone() *DataValue {
	c := *dv
	c.payload = dv.payload.clone()
	return &c
}

// Copy returns a validated, unbound deep copy registered with the same
// database. ID, binding and sub-range snapshot are reset; the value is kept.
func (dv *DataValue) Copy() (*DataValue, error) {
	const op = "DataValue.Copy"
	if dv == nil {
		return nil, newError(ErrCodeNilArgument, op, "data value is nil")
	}
	if err := dv.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c := dv.Clone()
	c.id = InvalidID
	c.fargID = InvalidID
	c.fargType = FargUndefined
	c.predID = InvalidID
	c.subRange = false
	switch p := c.payload.(type) {
	case *floatPayload:
		p.min, p.max = 0, 0
	case *intPayload:
		p.min, p.max = 0, 0
	case *timeStampPayload:
		p.min, p.max = TimeStamp{}, TimeStamp{}
	}
	dv.db.track(c)
	return c, nil
}

// Validate checks the value's structural consistency.
func (dv *DataValue) Validate() error {
	const op = "DataValue.Validate"
	if dv.db == nil {
		return newIDError(ErrCodeIllFormed, op, dv.id, "no database")
	}
	if dv.payload == nil {
		return newIDError(ErrCodeIllFormed, op, dv.id, "no payload")
	}
	if dv.fargID < InvalidID || dv.cellID < InvalidID || dv.id < InvalidID {
		return newIDError(ErrCodeInvalidID, op, dv.id, "negative id")
	}
	if !dv.fargID.Valid() && (dv.fargType != FargUndefined || dv.subRange) {
		return newIDError(ErrCodeIllFormed, op, dv.id, "unbound value carries a binding snapshot")
	}
	if dv.fargID.Valid() && dv.fargType == FargUndefined {
		return newIDError(ErrCodeIllFormed, op, dv.id, "bound value has no argument type")
	}

	switch p := dv.payload.(type) {
	case *floatPayload:
		if math.IsNaN(p.v) || (dv.subRange && (p.min > p.max || p.v < p.min || p.v > p.max)) {
			return newIDError(ErrCodeIllFormed, op, dv.id, "float value outside its range")
		}
	case *intPayload:
		if dv.subRange && (p.min > p.max || p.v < p.min || p.v > p.max) {
			return newIDError(ErrCodeIllFormed, op, dv.id, "int value outside its range")
		}
	case *timeStampPayload:
		if p.v.Validate() != nil {
			return newIDError(ErrCodeIllFormed, op, dv.id, "invalid time stamp")
		}
		if dv.subRange && (p.v.Compare(p.min) < 0 || p.v.Compare(p.max) > 0) {
			return newIDError(ErrCodeIllFormed, op, dv.id, "time stamp outside its range")
		}
	case *stringPayload:
		if dv.checkString(op, p.k, p.v, nil) != nil {
			return newIDError(ErrCodeIllFormed, op, dv.id, "invalid %s value %q", p.k, p.v)
		}
	case *predPayload:
		if p.p == nil || p.p.db != dv.db {
			return newIDError(ErrCodeIllFormed, op, dv.id, "predicate missing or from another database")
		}
		return p.p.Validate()
	case *colPredPayload:
		if p.cp == nil || p.cp.db != dv.db {
			return newIDError(ErrCodeIllFormed, op, dv.id, "column predicate missing or from another database")
		}
		return p.cp.Validate()
	}
	return nil
}

// refs reports the bound argument and everything a nested predicate refers to.
func (dv *DataValue) refs(add func(ID)) {
	add(dv.fargID)
	switch p := dv.payload.(type) {
	case *predPayload:
		p.p.refs(add)
	case *colPredPayload:
		p.cp.refs(add)
	}
}

// applyChange updates the value for its own argument's delta, then passes
// c on to a nested predicate.
func (dv *DataValue) applyChange(c *vocabChange) {
	if d, ok := c.deltas[dv.fargID]; ok && dv.fargID.Valid() {
		dv.updateForFargChange(d)
	}
	switch p := dv.payload.(type) {
	case *predPayload:
		p.p.applyChange(c)
	case *colPredPayload:
		p.cp.applyChange(c)
	}
}

// updateForFargChange brings the value in line with an edit of its bound
// argument:
//   - a deleted argument leaves an unbound Undefined value;
//   - a kind change leaves an Undefined value bound to the new argument;
//   - otherwise the cached type and sub-range snapshot are refreshed and
//     the value is coerced into the new range.
func (dv *DataValue) updateForFargChange(d *fargDelta) {
	switch {
	case d.deleted():
		dv.fargID = InvalidID
		dv.fargType = FargUndefined
		dv.subRange = false
		dv.payload = &stringPayload{k: KindUndefined, v: d.old.Name()}
	case d.typeChanged:
		dv.fargID = d.new.ID()
		dv.fargType = d.new.Type()
		dv.subRange = false
		dv.payload = &stringPayload{k: KindUndefined, v: d.new.Name()}
	default:
		dv.fargType = d.new.Type()
		if p, ok := dv.payload.(*stringPayload); ok && p.k == KindUndefined {
			p.v = d.new.Name()
		}
		dv.updateSubRange(d.new)
	}
}

// updateSubRange snapshots fa's sub-range state and re-coerces the value.
// Values whose kind does not match fa (e.g. bound to an untyped argument)
// carry no sub-range.
func (dv *DataValue) updateSubRange(fa FormalArgument) {
	dv.subRange = false
	switch p := dv.payload.(type) {
	case *floatPayload:
		p.min, p.max = 0, 0
		if a, ok := fa.(*FloatFormalArg); ok && a.subRange {
			dv.subRange = true
			p.min, p.max = a.min, a.max
			p.v = a.CoerceToRange(p.v)
		}
	case *intPayload:
		p.min, p.max = 0, 0
		if a, ok := fa.(*IntFormalArg); ok && a.subRange {
			dv.subRange = true
			p.min, p.max = a.min, a.max
			p.v = a.CoerceToRange(p.v)
		}
	case *timeStampPayload:
		p.min, p.max = TimeStamp{}, TimeStamp{}
		if a, ok := fa.(*TimeStampFormalArg); ok && a.subRange {
			dv.subRange = true
			p.min, p.max = a.min, a.max
			p.v = a.CoerceToRange(p.v)
		}
	case *stringPayload:
		if a, ok := fa.(*NominalFormalArg); ok && p.k == KindNominal {
			dv.subRange = a.subRange
			if p.v != "" {
				if _, ok := a.CoerceToRange(p.v); !ok {
					p.v = ""
				}
			}
		}
	case *predPayload:
		if a, ok := fa.(*PredFormalArg); ok {
			dv.subRange = a.subRange
			if _, ok := a.CoerceToRange(p.p); !ok {
				p.p = emptyPredicate(dv.db)
			}
		}
	}
}
