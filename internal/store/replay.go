package store

import (
	"context"
	"fmt"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
)

// ReplayError reports the first journal row a replay could not reproduce.
type ReplayError struct {
	Seq       int64
	Op        Op
	ElementID model.ID
	Reason    string
	Err       error
}

func (e *ReplayError) Error() string {
	msg := fmt.Sprintf("replay seq %d (%s %d): %s", e.Seq, e.Op, e.ElementID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReplayError) Unwrap() error { return e.Err }

// Replay rebuilds the journaled database token from an empty vocabulary.
//
// opts configure the new Database (logger, metrics); its name, token and
// tick rate come from the journal. After every row the element's DB string
// and the last allocated ID must match what was recorded.
func (s *Store) Replay(ctx context.Context, token string, opts ...model.Option) (*model.Database, error) {
	rec, err := s.ReadDatabase(ctx, token)
	if err != nil {
		return nil, err
	}
	edits, err := s.ReadEdits(ctx, token)
	if err != nil {
		return nil, err
	}

	opts = append(opts, model.WithToken(rec.Token), model.WithTicksPerSecond(rec.TicksPerSecond))
	db, err := model.New(rec.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", token, err)
	}

	for _, e := range edits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := replayEdit(db, e); err != nil {
			return nil, err
		}
	}
	db.Logger().Info("journal replayed", "token", token, "edits", len(edits))
	return db, nil
}

func replayEdit(db *model.Database, e Edit) error {
	fail := func(reason string, err error) error {
		return &ReplayError{Seq: e.Seq, Op: e.Op, ElementID: e.ElementID, Reason: reason, Err: err}
	}
	vl := db.Vocab()

	switch e.Op {
	case OpAdd:
		ve, err := ir.Build(db, e.Spec)
		if err != nil {
			return fail("build element", err)
		}
		id, err := vl.AddElement(ve)
		if err != nil {
			return fail("add element", err)
		}
		if id != e.ElementID {
			return fail(fmt.Sprintf("element registered as %d", id), nil)
		}
	case OpReplace:
		cur, err := vl.VocabElement(e.ElementID)
		if err != nil {
			return fail("look up element", err)
		}
		ve, err := ir.ApplyTo(cur, e.Spec)
		if err != nil {
			return fail("apply spec", err)
		}
		if err := vl.ReplaceVocabElement(ve); err != nil {
			return fail("replace element", err)
		}
	case OpRemove:
		if err := vl.RemoveVocabElement(e.ElementID); err != nil {
			return fail("remove element", err)
		}
	default:
		return fail("unknown op", nil)
	}

	if e.Op != OpRemove {
		ve, err := vl.VocabElement(e.ElementID)
		if err != nil {
			return fail("look up element", err)
		}
		if got := ve.DBString(); got != e.DBString {
			return fail(fmt.Sprintf("DB string mismatch: got %s, recorded %s", got, e.DBString), nil)
		}
	}
	if last := db.Clock().Current(); last != e.LastID {
		return fail(fmt.Sprintf("last id %d, recorded %d", last, e.LastID), nil)
	}
	return nil
}
