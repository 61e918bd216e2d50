package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codebook/internal/model"
	"github.com/roach88/codebook/internal/store"
)

func TestRecord_MissingDatabaseFlag(t *testing.T) {
	dir := writeVocabDir(t, map[string]string{"gaze.cue": gazeVocab})
	_, _, err := execute(t, "record", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRecord_JournalsVocabulary(t *testing.T) {
	dbPath := recordGaze(t, "tok-1")
	ctx := context.Background()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	recs, err := st.ListDatabases(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "tok-1", recs[0].Token)
	assert.Equal(t, "codebook", recs[0].Name)
	assert.Equal(t, int64(model.DefaultTPS), recs[0].TicksPerSecond)

	edits, err := st.ReadEdits(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, "looks", edits[0].ElementName)
	assert.Equal(t, "events", edits[1].ElementName)
	assert.Equal(t, model.ID(11), edits[1].LastID)
}

func TestRecord_JSON(t *testing.T) {
	dir := writeVocabDir(t, map[string]string{"gaze.cue": gazeVocab})
	dbPath := filepath.Join(t.TempDir(), "codebook.db")

	out, _, err := execute(t, "record", "--format", "json", "--db", dbPath,
		"--token", "tok-json", "--name", "gaze", "--tps", "30", dir)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RecordResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "tok-json", resp.Data.Token)
	assert.Equal(t, "gaze", resp.Data.Name)
	assert.Equal(t, []RecordedElement{{Name: "looks", ID: 1}, {Name: "events", ID: 4}}, resp.Data.Elements)
	assert.Equal(t, 1, resp.Data.Stats.Predicates)
	assert.Equal(t, 1, resp.Data.Stats.Matrices)
	assert.Equal(t, model.ID(11), resp.Data.Stats.LastID)
}

func TestRecord_MetricsFile(t *testing.T) {
	dir := writeVocabDir(t, map[string]string{"gaze.cue": gazeVocab})
	tmp := t.TempDir()
	metricsPath := filepath.Join(tmp, "codebook.prom")

	_, _, err := execute(t, "record", "--db", filepath.Join(tmp, "codebook.db"), "--metrics", metricsPath, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `codebook_journal_writes_total{status="ok"} 2`)
	assert.Contains(t, string(data), `codebook_vocab_edits_total{op="add"} 2`)
}

func TestRecord_Logger(t *testing.T) {
	dir := writeVocabDir(t, map[string]string{"gaze.cue": gazeVocab})
	var logs bytes.Buffer
	opts := &RecordOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       filepath.Join(t.TempDir(), "codebook.db"),
		Name:           "codebook",
		TicksPerSecond: model.DefaultTPS,
		Logger:         slog.New(slog.NewJSONHandler(&logs, nil)),
	}
	cmd := NewRecordCommand(opts.RootOptions)
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runRecord(opts, dir, cmd))
	assert.Contains(t, out.String(), "✓ Recorded 2 element(s)")
	assert.Contains(t, out.String(), "Last ID: 11")
	assert.Contains(t, logs.String(), `"msg":"vocabulary recorded"`)
}

func TestRecord_DuplicateToken(t *testing.T) {
	dbPath := recordGaze(t, "tok-dup")
	dir := writeVocabDir(t, map[string]string{"gaze.cue": gazeVocab})

	_, _, err := execute(t, "record", "--db", dbPath, "--token", "tok-dup", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeStoreFailed)
	assert.Contains(t, err.Error(), "already journaled")

	out, _, err := execute(t, "replay", "--db", dbPath, "--token", "tok-dup")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All journals verified")
}

func TestRecord_InvalidVocab(t *testing.T) {
	dir := writeVocabDir(t, map[string]string{"bad.cue": `package vocab

predicate: looks: args: [
	{name: "<who>", type: "nominal"},
	{name: "<who>", type: "float"},
]
`})
	dbPath := filepath.Join(t.TempDir(), "codebook.db")

	_, _, err := execute(t, "record", "--db", dbPath, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "nothing is journaled for an invalid vocabulary")
}
