package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const gazeVocab = `package vocab

predicate: looks: args: [
	{name: "<who>", type: "nominal"},
	{name: "<at>", type: "time_stamp"},
]

matrix: events: {
	type: "matrix"
	args: [
		{name: "<act>", type: "predicate", approved: ["looks"]},
		{name: "<score>", type: "float", range: [0, 10]},
	]
}
`

// writeVocabDir writes files into a fresh directory and returns it.
func writeVocabDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// recordGaze journals the gaze vocabulary under token and returns the
// journal path.
func recordGaze(t *testing.T, token string) string {
	t.Helper()
	vocab := writeVocabDir(t, map[string]string{"gaze.cue": gazeVocab})
	dbPath := filepath.Join(t.TempDir(), "codebook.db")
	_, _, err := execute(t, "record", "--db", dbPath, "--token", token, vocab)
	require.NoError(t, err)
	return dbPath
}
