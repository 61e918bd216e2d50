package model

import (
	"log/slog"
	"time"

	"github.com/roach88/codebook/internal/metric"
)

// Database is the façade over one Index, one VocabList and the dependency
// registry driving cascades.
//
// Every entity carries a *Database and operations reject entities of
// another database. The token distinguishes databases across processes
// (e.g. in journals).
type Database struct {
	token string
	name  string
	tps   int64

	clock *Clock
	index *Index
	vocab *VocabList
	deps  *registry

	logger  *slog.Logger
	metrics *metric.Metrics
	tokens  TokenGenerator
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithTicksPerSecond sets the tick rate used for time stamp defaults.
// Default: DefaultTPS.
func WithTicksPerSecond(tps int64) Option {
	return func(db *Database) {
		db.tps = tps
	}
}

// WithTokenGenerator sets the source of the database token.
// Default: UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(db *Database) {
		if g != nil {
			db.tokens = g
		}
	}
}

// WithToken fixes the database token, e.g. when replaying a journal.
func WithToken(token string) Option {
	return func(db *Database) {
		db.token = token
	}
}

// WithMetrics attaches Prometheus instrumentation. A nil m disables it.
func WithMetrics(m *metric.Metrics) Option {
	return func(db *Database) {
		db.metrics = m
	}
}

// WithClock sets the ID clock. Used for replay to continue numbering after
// the last recorded ID.
func WithClock(c *Clock) Option {
	return func(db *Database) {
		if c != nil {
			db.clock = c
		}
	}
}

// New creates an empty Database.
//
// Fails if name is empty or the tick rate is outside [MinTPS, MaxTPS].
func New(name string, opts ...Option) (*Database, error) {
	const op = "New"
	db := &Database{
		name:   name,
		tps:    DefaultTPS,
		clock:  NewClock(),
		logger: slog.Default(),
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(db)
	}

	if name == "" {
		return nil, newError(ErrCodeNilArgument, op, "database name is empty")
	}
	if db.tps < MinTPS || db.tps > MaxTPS {
		return nil, newError(ErrCodeOutOfRange, op, "ticks per second %d outside [%d, %d]", db.tps, MinTPS, MaxTPS)
	}
	if db.token == "" {
		db.token = db.tokens.Generate()
	}

	db.index = newIndex(db, db.clock)
	db.vocab = newVocabList(db)
	db.deps = newRegistry()
	db.logger = db.logger.With("db", db.name)
	db.logger.Debug("database created", "token", db.token, "tps", db.tps)
	return db, nil
}

func (db *Database) Token() string         { return db.token }
func (db *Database) Name() string          { return db.name }
func (db *Database) TicksPerSecond() int64 { return db.tps }
func (db *Database) Index() *Index         { return db.index }
func (db *Database) Vocab() *VocabList     { return db.vocab }
func (db *Database) Clock() *Clock         { return db.clock }
func (db *Database) Logger() *slog.Logger  { return db.logger }

// Dependent is a value tree the cascade keeps in line with the vocabulary:
// a *DataValue, *Predicate or *ColPredicate.
type Dependent interface {
	dependent
	DB() *Database
}

func (db *Database) track(d dependent) {
	db.deps.add(d)
	db.metrics.SetDependents(db.deps.len())
}

// Track registers d so later vocabulary edits update it. Values returned
// by Clone and by accessors are snapshots until tracked.
func (db *Database) Track(d Dependent) error {
	if d == nil || d.DB() != db {
		return newError(ErrCodeDBMismatch, "Database.Track", "dependent is nil or belongs to another database")
	}
	db.track(d)
	return nil
}

// Release unregisters d. Released values keep their last state and are no
// longer updated. Reports whether d was registered.
func (db *Database) Release(d Dependent) bool {
	if d == nil {
		return false
	}
	ok := db.deps.remove(d)
	db.metrics.SetDependents(db.deps.len())
	return ok
}

// Tracked reports whether d is registered.
func (db *Database) Tracked(d Dependent) bool {
	return d != nil && db.deps.has(d)
}

// DependentCount returns how many registered dependents refer to id (a
// vocabulary element or formal argument).
func (db *Database) DependentCount(id ID) int {
	return db.deps.refCount(id)
}

// cascade applies c to every registered dependent referring to the element
// or a changed argument, and refreshes their registrations. Returns the
// number of dependents updated.
func (db *Database) cascade(c *vocabChange) int {
	start := time.Now()
	deps := db.deps.affected(c.refIDs())
	for _, d := range deps {
		d.applyChange(c)
		db.deps.reindex(d)
	}

	if len(deps) > 0 {
		db.logger.Info("cascade applied",
			"element_id", c.veID,
			"removed", c.removed(),
			"changed_args", len(c.deltas),
			"dependents", len(deps),
		)
	}
	db.metrics.RecordCascade(len(deps), time.Since(start))
	return len(deps)
}

// Stats summarizes a database for reporting.
type Stats struct {
	Token        string `json:"token"`
	Name         string `json:"name"`
	Predicates   int    `json:"predicates"`
	Matrices     int    `json:"matrices"`
	System       int    `json:"system"`
	IndexEntries int    `json:"index_entries"`
	Dependents   int    `json:"dependents"`
	LastID       ID     `json:"last_id"`
}

// Stats counts the database's elements, index entries and dependents.
func (db *Database) Stats() Stats {
	s := Stats{
		Token:        db.token,
		Name:         db.name,
		IndexEntries: db.index.Len(),
		Dependents:   db.deps.len(),
		LastID:       db.clock.Current(),
	}
	for _, ve := range db.vocab.byID {
		switch {
		case ve.System():
			s.System++
		case isPredicate(ve):
			s.Predicates++
		default:
			s.Matrices++
		}
	}
	return s
}

func isPredicate(ve VocabElement) bool {
	_, ok := ve.(*PredicateVocabElement)
	return ok
}
