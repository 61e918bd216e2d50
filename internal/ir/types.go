package ir

import "github.com/roach88/codebook/internal/model"

// Element kinds.
const (
	KindPredicate = "predicate"
	KindMatrix    = "matrix"
)

// VocabSpec is a whole vocabulary: predicates first, then matrices, each in
// declaration order.
type VocabSpec struct {
	Predicates []ElementSpec `json:"predicates,omitempty"`
	Matrices   []ElementSpec `json:"matrices,omitempty"`
}

// Elements returns predicates followed by matrices.
func (v VocabSpec) Elements() []ElementSpec {
	out := make([]ElementSpec, 0, len(v.Predicates)+len(v.Matrices))
	out = append(out, v.Predicates...)
	return append(out, v.Matrices...)
}

// ElementSpec describes one vocabulary element.
//
// ID and the argument IDs are zero in hand-written specs. Specs taken from
// a live element (FromElement) carry them so a replayed edit can be
// checked against what was recorded.
type ElementSpec struct {
	ID     model.ID  `json:"id,omitempty"`
	Kind   string    `json:"kind"`
	Name   string    `json:"name"`
	Type   string    `json:"type,omitempty"` // Matrix type, e.g. "MATRIX"
	System bool      `json:"system,omitempty"`
	VarLen bool      `json:"var_len,omitempty"`
	Args   []ArgSpec `json:"args"`

	// CPArgIDs lists the matrix's column-predicate argument IDs:
	// <ord>, <onset>, <offset>, then one mirror per argument.
	CPArgIDs []model.ID `json:"cp_arg_ids,omitempty"`
}

// ArgSpec describes one formal argument.
//
// Bounds are text so an ArgSpec stays float-free in canonical JSON:
// FLOAT and INTEGER bounds are decimal numbers, TIME_STAMP bounds use the
// (tps,HH:MM:SS:FFF) form. Approved holds nominals for NOMINAL arguments
// and predicate names for PREDICATE arguments.
type ArgSpec struct {
	ID       model.ID `json:"id,omitempty"`
	Name     string   `json:"name"`
	Type     string   `json:"type"` // FargType name, e.g. "FLOAT"
	Hidden   bool     `json:"hidden,omitempty"`
	SubRange bool     `json:"sub_range,omitempty"`
	Min      string   `json:"min,omitempty"`
	Max      string   `json:"max,omitempty"`
	Approved []string `json:"approved,omitempty"`
}

// IsPredicate reports whether s describes a predicate element.
func (s ElementSpec) IsPredicate() bool {
	return s.Kind == KindPredicate
}
