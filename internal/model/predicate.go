package model

import (
	"fmt"
	"strings"
)

// instance is the part Predicate and ColPredicate share: a vocabulary
// element reference and one data value per current argument.
type instance struct {
	db   *Database
	id   ID
	veID ID
	args []*DataValue
}

func (in *instance) ID() ID        { return in.id }
func (in *instance) DB() *Database { return in.db }
func (in *instance) NumArgs() int  { return len(in.args) }

// IsEmpty reports whether the instance refers to no element.
func (in *instance) IsEmpty() bool {
	return !in.veID.Valid()
}

// AssignID records the ID a collaborator gave the instance.
func (in *instance) AssignID(id ID) error {
	if id < InvalidID {
		return newError(ErrCodeInvalidID, "AssignID", "negative id %d", id)
	}
	in.id = id
	for _, a := range in.args {
		a.predID = id
	}
	return nil
}

// Arg returns a copy of the value at pos.
func (in *instance) Arg(pos int) (*DataValue, error) {
	if pos < 0 || pos >= len(in.args) {
		return nil, newIDError(ErrCodeOutOfRange, "Arg", in.veID, "position %d outside [0, %d)", pos, len(in.args))
	}
	return in.args[pos].Clone(), nil
}

// Args returns copies of all values in order.
func (in *instance) Args() []*DataValue {
	out := make([]*DataValue, len(in.args))
	for i, a := range in.args {
		out[i] = a.Clone()
	}
	return out
}

func (in *instance) build(fargs []FormalArgument) {
	in.args = make([]*DataValue, len(fargs))
	for i, fa := range fargs {
		in.args[i] = defaultValue(in.db, fa)
		in.args[i].predID = in.id
	}
}

// setArg stores a copy of dv at pos. dv must be bound to the argument at pos.
func (in *instance) setArg(op string, pos int, dv *DataValue, fargs []FormalArgument) error {
	if dv == nil {
		return newIDError(ErrCodeNilArgument, op, in.veID, "data value is nil")
	}
	if pos < 0 || pos >= len(in.args) {
		return newIDError(ErrCodeOutOfRange, op, in.veID, "position %d outside [0, %d)", pos, len(in.args))
	}
	if dv.db != in.db {
		return newIDError(ErrCodeDBMismatch, op, in.veID, "data value belongs to another database")
	}
	fa := fargs[pos]
	if dv.fargID != fa.ID() {
		return newIDError(ErrCodeInvalidID, op, in.veID, "value bound to %d, position %d is argument %d", dv.fargID, pos, fa.ID())
	}
	if err := dv.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c := dv.Clone()
	c.id = InvalidID
	c.predID = in.id
	in.args[pos] = c
	return nil
}

// resync rebuilds the value list against fargs: values whose argument is
// still present are kept (and see c), new arguments get a default value,
// values of dropped arguments are discarded.
func (in *instance) resync(c *vocabChange, fargs []FormalArgument) {
	byFarg := make(map[ID]*DataValue, len(in.args))
	for _, a := range in.args {
		if a.fargID.Valid() {
			byFarg[a.fargID] = a
		}
	}
	args := make([]*DataValue, len(fargs))
	for i, fa := range fargs {
		if a, ok := byFarg[fa.ID()]; ok {
			a.applyChange(c)
			args[i] = a
		} else {
			args[i] = defaultValue(in.db, fa)
		}
		args[i].predID = in.id
	}
	in.args = args
}

// forward passes c on to every value.
func (in *instance) forward(c *vocabChange) {
	for _, a := range in.args {
		a.applyChange(c)
	}
}

func (in *instance) refs(add func(ID)) {
	add(in.veID)
	for _, a := range in.args {
		a.refs(add)
	}
}

func (in *instance) clone() instance {
	c := *in
	if in.args != nil {
		c.args = make([]*DataValue, len(in.args))
		for i, a := range in.args {
			c.args[i] = a.Clone()
		}
	}
	return c
}

func (in *instance) argString() string {
	items := make([]string, len(in.args))
	for i, a := range in.args {
		items[i] = a.String()
	}
	return "(" + strings.Join(items, ", ") + ")"
}

func (in *instance) argDBString() string {
	items := make([]string, len(in.args))
	for i, a := range in.args {
		items[i] = a.DBString()
	}
	return "(argList " + joinStrings(items) + ")"
}

// validateArgs checks the value list is isomorphic to fargs.
func (in *instance) validateArgs(op string, fargs []FormalArgument) error {
	if in.db == nil {
		return newIDError(ErrCodeIllFormed, op, in.id, "no database")
	}
	if !in.veID.Valid() {
		if len(in.args) != 0 {
			return newIDError(ErrCodeIllFormed, op, in.id, "empty instance with arguments")
		}
		return nil
	}
	if len(in.args) != len(fargs) {
		return newIDError(ErrCodeIllFormed, op, in.id, "%d values for %d arguments", len(in.args), len(fargs))
	}
	for i, a := range in.args {
		if a.fargID != fargs[i].ID() {
			return newIDError(ErrCodeIllFormed, op, in.id, "value %d bound to %d, want %d", i, a.fargID, fargs[i].ID())
		}
		if a.db != in.db {
			return newIDError(ErrCodeDBMismatch, op, in.id, "value %d belongs to another database", i)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Predicate is an instance of a predicate vocabulary element: the element's
// ID and one data value per argument, in argument order. The value list
// follows the element through every vocabulary edit.
type Predicate struct {
	instance
}

func emptyPredicate(db *Database) *Predicate {
	return &Predicate{instance{db: db}}
}

// NewPredicate creates a predicate of the element pveID with every argument
// at its default value, and registers it with db. InvalidID yields the
// empty predicate.
func NewPredicate(db *Database, pveID ID) (*Predicate, error) {
	const op = "NewPredicate"
	if db == nil {
		return nil, newError(ErrCodeNilArgument, op, "database is nil")
	}
	p := emptyPredicate(db)
	if pveID != InvalidID {
		pve, err := db.vocab.predicateElement(op, pveID)
		if err != nil {
			return nil, err
		}
		p.veID = pveID
		p.build(pve.fargs)
	}
	db.track(p)
	return p, nil
}

// PVEID returns the predicate element's ID, InvalidID when empty.
func (p *Predicate) PVEID() ID {
	return p.veID
}

func (p *Predicate) element() *PredicateVocabElement {
	if !p.veID.Valid() {
		return nil
	}
	pve, _ := p.db.vocab.byID[p.veID].(*PredicateVocabElement)
	return pve
}

// Name returns the element's current name, "" when empty.
func (p *Predicate) Name() string {
	if pve := p.element(); pve != nil {
		return pve.name
	}
	return ""
}

// VarLen reports whether the element takes a variable-length argument list.
func (p *Predicate) VarLen() bool {
	if pve := p.element(); pve != nil {
		return pve.varLen
	}
	return false
}

// SetArg stores a copy of dv at pos. dv must be bound to the element's
// argument at pos.
func (p *Predicate) SetArg(pos int, dv *DataValue) error {
	const op = "Predicate.SetArg"
	pve := p.element()
	if pve == nil {
		return newError(ErrCodeOutOfRange, op, "empty predicate has no arguments")
	}
	if err := p.setArg(op, pos, dv, pve.fargs); err != nil {
		return err
	}
	p.db.deps.reindex(p)
	return nil
}

// Clone returns a deep copy. The copy is not registered with the database.
func (p *Predicate) Clone() *Predicate {
	return &Predicate{p.clone()}
}

// String returns name(arg, ...), or "()" for the empty predicate.
func (p *Predicate) String() string {
	if p.IsEmpty() {
		return "()"
	}
	return p.Name() + p.argString()
}

// DBString returns
// (predicate (id N) (predID N) (predName n) (varLen b) (argList (...))).
func (p *Predicate) DBString() string {
	return fmt.Sprintf("(predicate (id %d) (predID %d) (predName %s) (varLen %t) %s)",
		p.id, p.veID, p.Name(), p.VarLen(), p.argDBString())
}

// Validate checks the value list matches the element's current arguments.
func (p *Predicate) Validate() error {
	const op = "Predicate.Validate"
	var fargs []FormalArgument
	if p.veID.Valid() {
		pve := p.element()
		if pve == nil {
			return newIDError(ErrCodeNotFound, op, p.veID, "predicate element not in vocab list")
		}
		fargs = pve.fargs
	}
	return p.validateArgs(op, fargs)
}

func (p *Predicate) applyChange(c *vocabChange) {
	if c.veID != p.veID || !p.veID.Valid() {
		p.forward(c)
		return
	}
	if c.removed() {
		p.veID = InvalidID
		p.args = nil
		return
	}
	p.resync(c, c.newVE.elementBase().fargs)
}
