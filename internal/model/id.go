package model

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ID identifies an indexed entity. IDs are allocated by the Index, strictly
// increase, and are never reused within one Database.
type ID int64

// InvalidID denotes "no object". It is never assigned to a real entity.
const InvalidID ID = 0

// Valid reports whether id can name a real entity.
func (id ID) Valid() bool {
	return id > InvalidID
}

// Clock is the monotonic ID source behind an Index.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), so a
// journal may read Current() while the owner allocates.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start.
// Used by journal replay to continue numbering after the last recorded ID.
func NewClockAt(start ID) *Clock {
	c := &Clock{}
	c.seq.Store(int64(start))
	return c
}

// Next returns the next ID and advances the clock.
func (c *Clock) Next() ID {
	return ID(c.seq.Add(1))
}

// Current returns the last allocated ID without advancing.
func (c *Clock) Current() ID {
	return ID(c.seq.Load())
}

// TokenGenerator produces the identity token of a Database.
//
// Implementations:
//   - UUIDv7Generator: production (time-sortable UUIDs)
//   - testutil.FixedTokenGenerator: deterministic tests
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates UUIDv7 database tokens.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
