package store

import (
	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
)

// Op is the kind of vocabulary edit a journal row records.
type Op string

const (
	OpAdd     Op = "add"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
)

// DatabaseRecord identifies one journaled model.Database.
type DatabaseRecord struct {
	Token          string
	Name           string
	TicksPerSecond int64
	IRVersion      string
	ToolVersion    string
}

// Edit is one journal row.
//
// Spec is the element after the edit, or as it was before removal for
// OpRemove. DBString is the registered element's DB string after the edit
// and is empty for OpRemove. LastID is the database's last allocated ID
// once the edit completed.
type Edit struct {
	Seq         int64
	DBToken     string
	Op          Op
	ElementID   model.ID
	ElementName string
	Spec        ir.ElementSpec
	SpecHash    string
	DBString    string
	LastID      model.ID
}
