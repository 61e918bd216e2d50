package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codebook/internal/store"
)

func TestReplay_MissingDatabaseFlag(t *testing.T) {
	_, _, err := execute(t, "replay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplay_MissingJournal(t *testing.T) {
	_, _, err := execute(t, "replay", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}

func TestReplay_EmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "codebook.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No databases found in journal.")
}

func TestReplay_Verified(t *testing.T) {
	dbPath := recordGaze(t, "tok-1")

	out, _, err := execute(t, "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 database(s)")
	assert.Contains(t, out, "✓ tok-1 (codebook)")
	assert.Contains(t, out, "Edits: 2, elements: 2, last id: 11")
	assert.Contains(t, out, "✓ All journals verified")
}

func TestReplay_JSON(t *testing.T) {
	dbPath := recordGaze(t, "tok-1")

	out, _, err := execute(t, "replay", "--db", dbPath, "--token", "tok-1", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllVerified)
	require.Len(t, resp.Data.Databases, 1)
	db := resp.Data.Databases[0]
	assert.True(t, db.Verified)
	assert.True(t, db.Deterministic)
	assert.Empty(t, db.Diff)
	assert.Equal(t, int64(11), db.LastID)
}

func TestReplay_UnknownToken(t *testing.T) {
	dbPath := recordGaze(t, "tok-1")

	out, _, err := execute(t, "replay", "--db", dbPath, "--token", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestReplay_DetectsTamperedJournal(t *testing.T) {
	dbPath := recordGaze(t, "tok-1")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.DB().ExecContext(context.Background(),
		`UPDATE vocab_edits SET db_string = 'tampered' WHERE element_name = 'looks'`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "replay", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ tok-1 (codebook)")
	assert.Contains(t, out, "Error: replay seq 1")
	assert.Contains(t, out, "✗ Journal verification failed")
}
