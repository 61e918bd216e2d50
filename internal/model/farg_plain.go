package model

import "fmt"

// QuoteStringFormalArg accepts quote strings.
type QuoteStringFormalArg struct {
	fargBase
}

// NewQuoteStringFormalArg creates an unattached quote string argument.
func NewQuoteStringFormalArg(db *Database, name string) (*QuoteStringFormalArg, error) {
	b, err := newFargBase("NewQuoteStringFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &QuoteStringFormalArg{fargBase: b}, nil
}

func (fa *QuoteStringFormalArg) Type() FargType { return FargQuoteString }

// CoerceToRange returns (s, true) for a valid quote string and ("", false)
// otherwise. There is no approved set to consult.
func (fa *QuoteStringFormalArg) CoerceToRange(s string) (string, bool) {
	if !validQuoteString(s) {
		return "", false
	}
	return s, true
}

func (fa *QuoteStringFormalArg) IsValidValue(v any) (bool, error) {
	return IsValidQuoteString(v)
}

func (fa *QuoteStringFormalArg) DBString() string {
	return fmt.Sprintf("(QuoteStringFormalArg %d %s)", fa.id, fa.name)
}

func (fa *QuoteStringFormalArg) Clone() FormalArgument {
	c := *fa
	return &c
}

func (fa *QuoteStringFormalArg) Validate() error {
	return fa.validate("QuoteStringFormalArg.Validate")
}

// TextStringFormalArg accepts text strings. Only TEXT matrices may use it.
type TextStringFormalArg struct {
	fargBase
}

// NewTextStringFormalArg creates an unattached text string argument.
func NewTextStringFormalArg(db *Database, name string) (*TextStringFormalArg, error) {
	b, err := newFargBase("NewTextStringFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &TextStringFormalArg{fargBase: b}, nil
}

func (fa *TextStringFormalArg) Type() FargType { return FargText }

func (fa *TextStringFormalArg) IsValidValue(v any) (bool, error) {
	return IsValidTextString(v)
}

func (fa *TextStringFormalArg) DBString() string {
	return fmt.Sprintf("(TextStringFormalArg %d %s)", fa.id, fa.name)
}

func (fa *TextStringFormalArg) Clone() FormalArgument {
	c := *fa
	return &c
}

func (fa *TextStringFormalArg) Validate() error {
	return fa.validate("TextStringFormalArg.Validate")
}

// UnTypedFormalArg accepts any value some other kind would accept.
type UnTypedFormalArg struct {
	fargBase
}

// NewUnTypedFormalArg creates an unattached untyped argument.
func NewUnTypedFormalArg(db *Database, name string) (*UnTypedFormalArg, error) {
	b, err := newFargBase("NewUnTypedFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &UnTypedFormalArg{fargBase: b}, nil
}

func (fa *UnTypedFormalArg) Type() FargType { return FargUntyped }

// IsValidValue accepts float64, int64, nominal or quote strings, time
// stamps at the database's tick rate, and predicates of the same database.
// Column predicates only go to column predicate arguments.
func (fa *UnTypedFormalArg) IsValidValue(v any) (bool, error) {
	if v == nil {
		return false, newIDError(ErrCodeNilArgument, "UnTypedFormalArg.IsValidValue", fa.id, "value is nil")
	}
	switch val := v.(type) {
	case float64, int64:
		return true, nil
	case string:
		return validNominal(val) || validQuoteString(val), nil
	case TimeStamp:
		return val.Validate() == nil && val.TPS == fa.db.TicksPerSecond(), nil
	case *Predicate:
		return val != nil && val.db == fa.db, nil
	}
	return false, nil
}

func (fa *UnTypedFormalArg) DBString() string {
	return fmt.Sprintf("(UnTypedFormalArg %d %s)", fa.id, fa.name)
}

func (fa *UnTypedFormalArg) Clone() FormalArgument {
	c := *fa
	return &c
}

func (fa *UnTypedFormalArg) Validate() error {
	return fa.validate("UnTypedFormalArg.Validate")
}

// ColPredFormalArg accepts column predicates of the same database.
type ColPredFormalArg struct {
	fargBase
}

// NewColPredFormalArg creates an unattached column predicate argument.
func NewColPredFormalArg(db *Database, name string) (*ColPredFormalArg, error) {
	b, err := newFargBase("NewColPredFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &ColPredFormalArg{fargBase: b}, nil
}

func (fa *ColPredFormalArg) Type() FargType { return FargColPredicate }

func (fa *ColPredFormalArg) IsValidValue(v any) (bool, error) {
	if v == nil {
		return false, newIDError(ErrCodeNilArgument, "ColPredFormalArg.IsValidValue", fa.id, "value is nil")
	}
	cp, ok := v.(*ColPredicate)
	return ok && cp != nil && cp.db == fa.db, nil
}

func (fa *ColPredFormalArg) DBString() string {
	return fmt.Sprintf("(ColPredFormalArg %d %s)", fa.id, fa.name)
}

func (fa *ColPredFormalArg) Clone() FormalArgument {
	c := *fa
	return &c
}

func (fa *ColPredFormalArg) Validate() error {
	return fa.validate("ColPredFormalArg.Validate")
}
