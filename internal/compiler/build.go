package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
)

// Registrar adds and replaces vocabulary elements. *store.Recorder
// implements it, journaling every edit; Direct registers without a
// journal.
type Registrar interface {
	Database() *model.Database
	AddElement(ctx context.Context, ve model.VocabElement) (model.ID, error)
	ReplaceVocabElement(ctx context.Context, ve model.VocabElement) error
}

type direct struct {
	db *model.Database
}

// Direct returns a Registrar that edits db's vocabulary list directly.
func Direct(db *model.Database) Registrar {
	return direct{db: db}
}

func (d direct) Database() *model.Database { return d.db }

func (d direct) AddElement(_ context.Context, ve model.VocabElement) (model.ID, error) {
	return d.db.Vocab().AddElement(ve)
}

func (d direct) ReplaceVocabElement(_ context.Context, ve model.VocabElement) error {
	return d.db.Vocab().ReplaceVocabElement(ve)
}

// BuildError reports the element that could not be registered.
type BuildError struct {
	Element string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("register %s: %v", e.Element, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Build registers every element of spec with r and returns their IDs by
// name. spec must have passed Validate.
//
// Predicates are added after the predicates they approve. Predicates in an
// approval cycle are added without the approvals inside the cycle, which
// are then set with one replace per member. Build stops at the first
// failure; elements registered before it stay registered.
func Build(ctx context.Context, r Registrar, spec *ir.VocabSpec) (map[string]model.ID, error) {
	db := r.Database()
	logger := db.Logger()

	byName := make(map[string]ir.ElementSpec, len(spec.Predicates)+len(spec.Matrices))
	for _, s := range spec.Elements() {
		byName[s.Name] = s
	}

	ids := make(map[string]model.ID, len(byName))
	g := buildApprovalGraph(spec)
	for _, scc := range g.components() {
		cyclic := g.cyclic(scc)
		if cyclic {
			c := g.cycle(scc)
			logger.Info("approval cycle", "path", c.Path)
		}

		for _, name := range scc {
			if err := ctx.Err(); err != nil {
				return ids, err
			}
			s := byName[name]
			if cyclic {
				s = withoutApprovals(s, scc)
			}
			ve, err := ir.Build(db, s)
			if err != nil {
				return ids, &BuildError{Element: name, Err: err}
			}
			id, err := r.AddElement(ctx, ve)
			if err != nil {
				return ids, &BuildError{Element: name, Err: err}
			}
			ids[name] = id
			logger.Debug("element registered", "name", name, "id", id)
		}

		if !cyclic {
			continue
		}
		for _, name := range scc {
			if err := restoreApprovals(ctx, r, ids[name], byName[name]); err != nil {
				return ids, &BuildError{Element: name, Err: err}
			}
		}
	}
	return ids, nil
}

// withoutApprovals drops approvals of predicates in scc. The arguments keep
// their sub-range.
func withoutApprovals(s ir.ElementSpec, scc []string) ir.ElementSpec {
	args := make([]ir.ArgSpec, len(s.Args))
	for i, a := range s.Args {
		if a.Type == "PREDICATE" && len(a.Approved) > 0 {
			a.Approved = slices.DeleteFunc(slices.Clone(a.Approved), func(name string) bool {
				return slices.Contains(scc, name)
			})
			a.SubRange = true
		}
		args[i] = a
	}
	s.Args = args
	return s
}

func restoreApprovals(ctx context.Context, r Registrar, id model.ID, want ir.ElementSpec) error {
	cur, err := r.Database().Vocab().VocabElement(id)
	if err != nil {
		return err
	}
	s, err := ir.FromElement(cur)
	if err != nil {
		return err
	}
	for i := range s.Args {
		s.Args[i].Approved = want.Args[i].Approved
	}
	ve, err := ir.ApplyTo(cur, s)
	if err != nil {
		return err
	}
	if err := r.ReplaceVocabElement(ctx, ve); err != nil {
		return err
	}
	r.Database().Logger().Debug("approvals restored", slog.String("name", want.Name), slog.Int64("id", int64(id)))
	return nil
}
