package model

import "fmt"

// DataValueKind tags the payload of a DataValue.
type DataValueKind int

const (
	KindUndefined DataValueKind = iota
	KindFloat
	KindInt
	KindNominal
	KindPred
	KindQuoteString
	KindTimeStamp
	KindTextString
	KindColPred
)

var dataValueKindNames = [...]string{
	KindUndefined:   "Undefined",
	KindFloat:       "Float",
	KindInt:         "Int",
	KindNominal:     "Nominal",
	KindPred:        "Pred",
	KindQuoteString: "QuoteString",
	KindTimeStamp:   "TimeStamp",
	KindTextString:  "TextString",
	KindColPred:     "ColPred",
}

func (k DataValueKind) String() string {
	if k < 0 || int(k) >= len(dataValueKindNames) {
		return fmt.Sprintf("DataValueKind(%d)", int(k))
	}
	return dataValueKindNames[k]
}

// ParseDataValueKind maps a kind name ("Float", "ColPred", ...) back to its tag.
func ParseDataValueKind(s string) (DataValueKind, error) {
	for i, name := range dataValueKindNames {
		if name == s {
			return DataValueKind(i), nil
		}
	}
	return KindUndefined, newError(ErrCodeInvalidValue, "ParseDataValueKind", "unknown data value kind %q", s)
}

// fargType is the formal-argument kind a value of kind k binds to natively.
func (k DataValueKind) fargType() FargType {
	switch k {
	case KindFloat:
		return FargFloat
	case KindInt:
		return FargInteger
	case KindNominal:
		return FargNominal
	case KindPred:
		return FargPredicate
	case KindQuoteString:
		return FargQuoteString
	case KindTimeStamp:
		return FargTimeStamp
	case KindTextString:
		return FargText
	case KindColPred:
		return FargColPredicate
	}
	return FargUndefined
}

// canBind reports whether a value of kind k may be bound to fa. Undefined
// values bind to anything; text values only to text arguments; the rest to
// their native kind or an untyped argument.
func (k DataValueKind) canBind(fa FormalArgument) bool {
	switch {
	case k == KindUndefined:
		return true
	case fa.Type() == k.fargType():
		return true
	case fa.Type() == FargUntyped:
		return k != KindTextString && k != KindColPred
	}
	return false
}

// defaultKind is the kind of the default value for an argument of type t.
func defaultKind(t FargType) DataValueKind {
	switch t {
	case FargFloat:
		return KindFloat
	case FargInteger:
		return KindInt
	case FargNominal:
		return KindNominal
	case FargPredicate:
		return KindPred
	case FargQuoteString:
		return KindQuoteString
	case FargTimeStamp:
		return KindTimeStamp
	case FargText:
		return KindTextString
	case FargColPredicate:
		return KindColPred
	}
	return KindUndefined
}
