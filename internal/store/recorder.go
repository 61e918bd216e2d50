package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/metric"
	"github.com/roach88/codebook/internal/model"
)

// Recorder applies vocabulary edits to a Database and journals each one
// that succeeds.
//
// Edits made on the Database directly bypass the journal, and a journal
// built that way will not replay.
type Recorder struct {
	store   *Store
	db      *model.Database
	metrics *metric.Metrics
	logger  *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderMetrics counts journal writes. A nil m disables it.
func WithRecorderMetrics(m *metric.Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithRecorderLogger sets the logger. Default: the Database's logger.
func WithRecorderLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder registers db with the store and returns a Recorder for it.
// db should have no elements yet; replay starts from an empty vocabulary.
func NewRecorder(ctx context.Context, s *Store, db *model.Database, opts ...RecorderOption) (*Recorder, error) {
	if db.Vocab().Len() > 0 {
		return nil, fmt.Errorf("new recorder: database %s already has %d elements", db.Name(), db.Vocab().Len())
	}
	r := &Recorder{store: s, db: db, logger: db.Logger()}
	for _, opt := range opts {
		opt(r)
	}

	err := s.WriteDatabase(ctx, DatabaseRecord{
		Token:          db.Token(),
		Name:           db.Name(),
		TicksPerSecond: db.TicksPerSecond(),
		IRVersion:      ir.IRVersion,
		ToolVersion:    ir.ToolVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("new recorder: %w", err)
	}
	return r, nil
}

// Database returns the recorded database.
func (r *Recorder) Database() *model.Database {
	return r.db
}

// AddElement registers ve and journals it.
//
// If the journal write fails the element stays registered and the error
// says so; the journal no longer matches the Database.
func (r *Recorder) AddElement(ctx context.Context, ve model.VocabElement) (model.ID, error) {
	id, err := r.db.Vocab().AddElement(ve)
	if err != nil {
		return model.InvalidID, err
	}
	if err := r.recordCurrent(ctx, OpAdd, id); err != nil {
		return id, err
	}
	return id, nil
}

// ReplaceVocabElement replaces the registered element ve.ID() with ve and
// journals the result.
func (r *Recorder) ReplaceVocabElement(ctx context.Context, ve model.VocabElement) error {
	if err := r.db.Vocab().ReplaceVocabElement(ve); err != nil {
		return err
	}
	return r.recordCurrent(ctx, OpReplace, ve.ID())
}

// RemoveVocabElement removes the element id and journals it.
func (r *Recorder) RemoveVocabElement(ctx context.Context, id model.ID) error {
	ve, err := r.db.Vocab().VocabElement(id)
	if err != nil {
		return err
	}
	spec, err := ir.FromElement(ve)
	if err != nil {
		return fmt.Errorf("journal remove %d: %w", id, err)
	}
	if err := r.db.Vocab().RemoveVocabElement(id); err != nil {
		return err
	}
	return r.record(ctx, OpRemove, spec, "")
}

func (r *Recorder) recordCurrent(ctx context.Context, op Op, id model.ID) error {
	ve, err := r.db.Vocab().VocabElement(id)
	if err != nil {
		return fmt.Errorf("journal %s %d: %w", op, id, err)
	}
	spec, err := ir.FromElement(ve)
	if err != nil {
		return fmt.Errorf("journal %s %d: %w", op, id, err)
	}
	return r.record(ctx, op, spec, ve.DBString())
}

func (r *Recorder) record(ctx context.Context, op Op, spec ir.ElementSpec, dbString string) error {
	hash, err := ir.ElementHash(spec)
	if err == nil {
		var seq int64
		seq, err = r.store.AppendEdit(ctx, Edit{
			DBToken:     r.db.Token(),
			Op:          op,
			ElementID:   spec.ID,
			ElementName: spec.Name,
			Spec:        spec,
			SpecHash:    hash,
			DBString:    dbString,
			LastID:      r.db.Clock().Current(),
		})
		if err == nil {
			r.logger.Debug("vocab edit journaled", "seq", seq, "op", op, "element_id", spec.ID, "name", spec.Name)
		}
	}
	r.metrics.RecordJournalWrite(err)
	if err != nil {
		return fmt.Errorf("journal %s %s: %w", op, spec.Name, err)
	}
	return nil
}
