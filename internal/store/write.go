package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrDatabaseExists is returned by WriteDatabase for a token that is
// already journaled.
var ErrDatabaseExists = errors.New("database token already journaled")

// WriteDatabase records a journaled database. A token is written once:
// its journal replays from an empty vocabulary, so a second database
// under the same token fails with ErrDatabaseExists.
func (s *Store) WriteDatabase(ctx context.Context, rec DatabaseRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO databases (token, name, ticks_per_second, ir_version, tool_version)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.Token,
		rec.Name,
		rec.TicksPerSecond,
		rec.IRVersion,
		rec.ToolVersion,
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("write database %s: %w", rec.Token, ErrDatabaseExists)
	}
	if err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// AppendEdit appends e to its database's journal and returns the assigned
// seq. e.Seq is ignored.
//
// The database row must exist (foreign key constraint).
func (s *Store) AppendEdit(ctx context.Context, e Edit) (int64, error) {
	payload, err := marshalSpec(e.Spec)
	if err != nil {
		return 0, fmt.Errorf("append edit: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vocab_edits
		(db_token, op, element_id, element_name, payload, spec_hash, db_string, last_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.DBToken,
		string(e.Op),
		int64(e.ElementID),
		e.ElementName,
		payload,
		e.SpecHash,
		e.DBString,
		int64(e.LastID),
	)
	if err != nil {
		return 0, fmt.Errorf("append edit: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append edit: %w", err)
	}
	return seq, nil
}
