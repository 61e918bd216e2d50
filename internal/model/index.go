package model

import (
	"reflect"
	"slices"
)

// Entity is anything the Index can hold: vocabulary elements and formal
// arguments. The interface is sealed by setID.
type Entity interface {
	ID() ID
	DB() *Database
	setID(id ID)
}

// Index is the global ID → entity map of a Database and the only authority
// for ID allocation and existence.
//
// Every operation either succeeds completely or fails with a
// ConsistencyError and leaves the Index untouched. The Index has no
// rollback of its own: callers performing several operations validate first
// so that later steps cannot fail.
type Index struct {
	db      *Database
	clock   *Clock
	entries map[ID]Entity
}

func newIndex(db *Database, clock *Clock) *Index {
	return &Index{
		db:      db,
		clock:   clock,
		entries: make(map[ID]Entity),
	}
}

// Insert assigns the next ID to e and stores it.
//
// Fails if e is nil, already carries an ID, or belongs to another database.
func (x *Index) Insert(e Entity) (ID, error) {
	const op = "Index.Insert"
	if isNil(e) {
		return InvalidID, newError(ErrCodeNilArgument, op, "entity is nil")
	}
	if e.ID() != InvalidID {
		return InvalidID, newIDError(ErrCodeAlreadyIndexed, op, e.ID(), "entity already has an ID")
	}
	if e.DB() != x.db {
		return InvalidID, newError(ErrCodeDBMismatch, op, "entity belongs to another database")
	}

	id := x.clock.Next()
	e.setID(id)
	x.entries[id] = e
	x.db.logger.Debug("index insert", "id", id, "kind", kindName(e))
	x.db.metrics.SetIndexSize(len(x.entries))
	return id, nil
}

// Replace swaps the entity stored under id for e.
//
// e must carry id and be of the same concrete kind as the incumbent.
func (x *Index) Replace(id ID, e Entity) error {
	const op = "Index.Replace"
	if isNil(e) {
		return newError(ErrCodeNilArgument, op, "entity is nil")
	}
	if !id.Valid() {
		return newError(ErrCodeInvalidID, op, "invalid id")
	}
	if e.ID() != id {
		return newIDError(ErrCodeInvalidID, op, id, "entity carries id %d", e.ID())
	}
	if e.DB() != x.db {
		return newIDError(ErrCodeDBMismatch, op, id, "entity belongs to another database")
	}
	old, ok := x.entries[id]
	if !ok {
		return newIDError(ErrCodeNotFound, op, id, "id not in index")
	}
	if reflect.TypeOf(old) != reflect.TypeOf(e) {
		return newIDError(ErrCodeKindMismatch, op, id, "cannot replace %s with %s", kindName(old), kindName(e))
	}

	x.entries[id] = e
	x.db.logger.Debug("index replace", "id", id, "kind", kindName(e))
	return nil
}

// reinstate stores e under its existing ID regardless of the incumbent's
// kind. Only the VocabList uses it, for formal arguments retyped in place.
func (x *Index) reinstate(e Entity) error {
	const op = "Index.reinstate"
	if isNil(e) {
		return newError(ErrCodeNilArgument, op, "entity is nil")
	}
	if _, ok := x.entries[e.ID()]; !ok {
		return newIDError(ErrCodeNotFound, op, e.ID(), "id not in index")
	}
	x.entries[e.ID()] = e
	x.db.logger.Debug("index reinstate", "id", e.ID(), "kind", kindName(e))
	return nil
}

// Remove deletes the entity stored under id.
func (x *Index) Remove(id ID) error {
	const op = "Index.Remove"
	if !id.Valid() {
		return newError(ErrCodeInvalidID, op, "invalid id")
	}
	if _, ok := x.entries[id]; !ok {
		return newIDError(ErrCodeNotFound, op, id, "id not in index")
	}

	delete(x.entries, id)
	x.db.logger.Debug("index remove", "id", id)
	x.db.metrics.SetIndexSize(len(x.entries))
	return nil
}

// Get returns the entity stored under id.
func (x *Index) Get(id ID) (Entity, error) {
	const op = "Index.Get"
	if !id.Valid() {
		return nil, newError(ErrCodeInvalidID, op, "invalid id")
	}
	e, ok := x.entries[id]
	if !ok {
		return nil, newIDError(ErrCodeNotFound, op, id, "id not in index")
	}
	return e, nil
}

// Exists reports whether id is in the index.
func (x *Index) Exists(id ID) bool {
	_, ok := x.entries[id]
	return ok
}

// Len returns the number of indexed entities.
func (x *Index) Len() int {
	return len(x.entries)
}

// IDs returns every indexed ID in ascending order.
func (x *Index) IDs() []ID {
	ids := make([]ID, 0, len(x.entries))
	for id := range x.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// formalArg looks up id and asserts it is a formal argument.
func (x *Index) formalArg(op string, id ID) (FormalArgument, error) {
	e, err := x.Get(id)
	if err != nil {
		return nil, err
	}
	fa, ok := e.(FormalArgument)
	if !ok {
		return nil, newIDError(ErrCodeKindMismatch, op, id, "%s is not a formal argument", kindName(e))
	}
	return fa, nil
}

func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func kindName(e Entity) string {
	return reflect.TypeOf(e).Elem().Name()
}
