package model

// FormalArgument is a typed, named slot in a vocabulary element's signature.
//
// The interface is sealed: the concrete kinds are FloatFormalArg,
// IntFormalArg, NominalFormalArg, PredFormalArg, QuoteStringFormalArg,
// TimeStampFormalArg, TextStringFormalArg, UnTypedFormalArg and
// ColPredFormalArg. Range and approved-set management are optional
// capabilities (SubRanger, Ranger, ApprovedSetter); the package-level
// helpers report ErrCodeNotSupported for kinds that lack them.
type FormalArgument interface {
	Entity

	// Name returns the angle-bracketed argument name, e.g. "<arg>".
	Name() string

	// SetName renames the argument. The name must satisfy IsValidFargName.
	SetName(name string) error

	Hidden() bool
	SetHidden(hidden bool)

	// ItsVocabElementID is the owning element, InvalidID until attached.
	ItsVocabElementID() ID

	// Type returns the kind tag.
	Type() FargType

	// IsValidValue reports whether v may be stored in a data value bound to
	// this argument. A nil v is a consistency error, not a false result.
	IsValidValue(v any) (bool, error)

	// DBString returns the canonical debug string.
	DBString() string

	// Clone returns a deep copy with the same ID and owner.
	Clone() FormalArgument

	// Validate checks structural consistency.
	Validate() error

	base() *fargBase
}

// SubRanger is implemented by kinds that can constrain their value domain.
type SubRanger interface {
	FormalArgument
	SubRange() bool
	SetSubRange(on bool) error
}

// ApprovedSetter is implemented by kinds constrained by a discrete approved
// set (Nominal, Pred). Items are strings for Nominal and IDs for Pred.
type ApprovedSetter interface {
	SubRanger
	approvedItems() []string
}

// fargBase holds the fields every kind shares.
type fargBase struct {
	db     *Database
	id     ID
	name   string
	hidden bool
	veID   ID
}

func newFargBase(op string, db *Database, name string) (fargBase, error) {
	if db == nil {
		return fargBase{}, newError(ErrCodeNilArgument, op, "database is nil")
	}
	if !IsValidFargName(name) {
		return fargBase{}, newError(ErrCodeMalformedName, op, "invalid formal argument name %q", name)
	}
	return fargBase{db: db, name: name}, nil
}

func (b *fargBase) ID() ID                { return b.id }
func (b *fargBase) setID(id ID)           { b.id = id }
func (b *fargBase) DB() *Database         { return b.db }
func (b *fargBase) Name() string          { return b.name }
func (b *fargBase) Hidden() bool          { return b.hidden }
func (b *fargBase) SetHidden(hidden bool) { b.hidden = hidden }
func (b *fargBase) ItsVocabElementID() ID { return b.veID }
func (b *fargBase) base() *fargBase       { return b }

func (b *fargBase) SetName(name string) error {
	if !IsValidFargName(name) {
		return newIDError(ErrCodeMalformedName, "FormalArgument.SetName", b.id, "invalid formal argument name %q", name)
	}
	b.name = name
	return nil
}

func (b *fargBase) validate(op string) error {
	if b.db == nil {
		return newIDError(ErrCodeIllFormed, op, b.id, "no database")
	}
	if !IsValidFargName(b.name) {
		return newIDError(ErrCodeMalformedName, op, b.id, "invalid formal argument name %q", b.name)
	}
	return nil
}

// CopyFormalArg returns a validated deep copy of fa. With resetID the copy
// is unindexed; with resetOwner it is detached from its vocabulary element.
func CopyFormalArg(fa FormalArgument, resetID, resetOwner bool) (FormalArgument, error) {
	if fa == nil {
		return nil, newError(ErrCodeNilArgument, "CopyFormalArg", "formal argument is nil")
	}
	if err := fa.Validate(); err != nil {
		return nil, err
	}
	c := fa.Clone()
	if resetID {
		c.setID(InvalidID)
	}
	if resetOwner {
		c.base().veID = InvalidID
	}
	return c, nil
}

// SubRangeOf reports whether fa has its sub-range enabled. Kinds without
// sub-range support report false.
func SubRangeOf(fa FormalArgument) bool {
	if sr, ok := fa.(SubRanger); ok {
		return sr.SubRange()
	}
	return false
}

// SetSubRange toggles the sub-range of fa.
func SetSubRange(fa FormalArgument, on bool) error {
	sr, ok := fa.(SubRanger)
	if !ok {
		return newIDError(ErrCodeNotSupported, "SetSubRange", fa.ID(), "%s has no sub-range", fa.Type())
	}
	return sr.SetSubRange(on)
}

// AddApproved adds v to the approved set of fa: a string for Nominal
// arguments, an ID for Pred arguments.
func AddApproved(fa FormalArgument, v any) error {
	const op = "AddApproved"
	switch a := fa.(type) {
	case *NominalFormalArg:
		s, ok := v.(string)
		if !ok {
			return newIDError(ErrCodeKindMismatch, op, fa.ID(), "nominal approved value must be a string, got %T", v)
		}
		return a.AddApproved(s)
	case *PredFormalArg:
		id, ok := v.(ID)
		if !ok {
			return newIDError(ErrCodeKindMismatch, op, fa.ID(), "predicate approved value must be an ID, got %T", v)
		}
		return a.AddApproved(id)
	}
	return newIDError(ErrCodeNotSupported, op, fa.ID(), "%s has no approved set", fa.Type())
}

// DeleteApproved removes v from the approved set of fa.
func DeleteApproved(fa FormalArgument, v any) error {
	const op = "DeleteApproved"
	switch a := fa.(type) {
	case *NominalFormalArg:
		s, ok := v.(string)
		if !ok {
			return newIDError(ErrCodeKindMismatch, op, fa.ID(), "nominal approved value must be a string, got %T", v)
		}
		return a.DeleteApproved(s)
	case *PredFormalArg:
		id, ok := v.(ID)
		if !ok {
			return newIDError(ErrCodeKindMismatch, op, fa.ID(), "predicate approved value must be an ID, got %T", v)
		}
		return a.DeleteApproved(id)
	}
	return newIDError(ErrCodeNotSupported, op, fa.ID(), "%s has no approved set", fa.Type())
}

// sameShape reports whether two arguments agree on kind and name. Used to
// check matrix column-predicate mirrors.
func sameShape(a, b FormalArgument) bool {
	return a.Type() == b.Type() && a.Name() == b.Name()
}
