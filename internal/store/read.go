package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/codebook/internal/model"
)

// ErrUnknownDatabase is returned for a token with no databases row.
var ErrUnknownDatabase = errors.New("unknown database token")

// ReadDatabase returns the record for token.
func (s *Store) ReadDatabase(ctx context.Context, token string) (DatabaseRecord, error) {
	var rec DatabaseRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT token, name, ticks_per_second, ir_version, tool_version
		FROM databases
		WHERE token = ?
	`, token).Scan(&rec.Token, &rec.Name, &rec.TicksPerSecond, &rec.IRVersion, &rec.ToolVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return DatabaseRecord{}, fmt.Errorf("read database %s: %w", token, ErrUnknownDatabase)
	}
	if err != nil {
		return DatabaseRecord{}, fmt.Errorf("read database %s: %w", token, err)
	}
	return rec, nil
}

// ListDatabases returns every journaled database ordered by token.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListDatabases(ctx context.Context) ([]DatabaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, name, ticks_per_second, ir_version, tool_version
		FROM databases
		ORDER BY token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query databases: %w", err)
	}
	defer rows.Close()

	recs := []DatabaseRecord{}
	for rows.Next() {
		var rec DatabaseRecord
		if err := rows.Scan(&rec.Token, &rec.Name, &rec.TicksPerSecond, &rec.IRVersion, &rec.ToolVersion); err != nil {
			return nil, fmt.Errorf("scan database: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate databases: %w", err)
	}
	return recs, nil
}

const editColumns = `seq, db_token, op, element_id, element_name, payload, spec_hash, db_string, last_id`

// ReadEdits returns the journal of token in seq order.
// Returns an empty slice (not nil) when nothing was recorded.
func (s *Store) ReadEdits(ctx context.Context, token string) ([]Edit, error) {
	return s.queryEdits(ctx, `
		SELECT `+editColumns+`
		FROM vocab_edits
		WHERE db_token = ?
		ORDER BY seq ASC
	`, token)
}

// ReadElementHistory returns the edits of one element in seq order.
func (s *Store) ReadElementHistory(ctx context.Context, token string, id model.ID) ([]Edit, error) {
	return s.queryEdits(ctx, `
		SELECT `+editColumns+`
		FROM vocab_edits
		WHERE db_token = ? AND element_id = ?
		ORDER BY seq ASC
	`, token, int64(id))
}

// LatestSeq returns the highest seq recorded for token, 0 when none.
func (s *Store) LatestSeq(ctx context.Context, token string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM vocab_edits WHERE db_token = ?
	`, token).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) queryEdits(ctx context.Context, query string, args ...any) ([]Edit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	edits := []Edit{}
	for rows.Next() {
		e, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edits: %w", err)
	}
	return edits, nil
}

func scanEdit(rows *sql.Rows) (Edit, error) {
	var (
		e         Edit
		op        string
		elementID int64
		lastID    int64
		payload   string
	)
	err := rows.Scan(&e.Seq, &e.DBToken, &op, &elementID, &e.ElementName, &payload, &e.SpecHash, &e.DBString, &lastID)
	if err != nil {
		return Edit{}, fmt.Errorf("scan edit: %w", err)
	}
	e.Op = Op(op)
	e.ElementID = model.ID(elementID)
	e.LastID = model.ID(lastID)

	e.Spec, err = unmarshalSpec(payload)
	if err != nil {
		return Edit{}, fmt.Errorf("edit %d: %w", e.Seq, err)
	}
	return e, nil
}
