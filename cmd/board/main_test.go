package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectboard/internal/app"
	"projectboard/internal/config"
	"projectboard/internal/domain"
	"projectboard/internal/store"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func shellBoard(t *testing.T) *app.Board {
	t.Helper()
	viper.Reset()
	n := 0
	s := store.New(store.WithIDFunc(func() string { n++; return fmt.Sprintf("p%d", n) }))
	b, err := app.New(context.Background(), s, config.Default(), app.Options{JournalName: t.Name()})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestShellSession(t *testing.T) {
	b := shellBoard(t)
	in := strings.NewReader(strings.Join([]string{
		`add --title "Build shed" --description "Construct a garden shed" --people 3`,
		`add -t "Paint fence" -d "Paint the back fence white" -p 2`,
		`add --title "Bad" --description "no" --people 3`,
		`move "#1" finished`,
		`move "#1" finished`,
		`move nope active`,
		`move p2 sideways`,
		`list finished`,
		`log`,
		`quit`,
		`add --title "after quit" --description "never happens" --people 1`,
	}, "\n"))
	var out bytes.Buffer
	require.NoError(t, runShell(context.Background(), b, in, &out))

	got := out.String()
	assert.Contains(t, got, "added p1")
	assert.Contains(t, got, "added p2")
	assert.Contains(t, got, "error: invalid input, please try again")
	assert.Contains(t, got, "moved p1 to finished")
	assert.Contains(t, got, "p1 is already finished")
	assert.Contains(t, got, "warning: no project nope")
	assert.Contains(t, got, `error: invalid status "sideways"`)
	assert.Contains(t, got, "FINISHED PROJECTS")
	assert.Contains(t, got, "record.moved")

	assert.Equal(t, 2, b.Store.Len())
	rec, ok := b.Store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, domain.Finished, rec.Status)
}

func TestShellFlagsDoNotLeakBetweenLines(t *testing.T) {
	b := shellBoard(t)
	in := strings.NewReader(`add --title "First" --description "first description" --people 1
add --description "second description" --people 1
`)
	var out bytes.Buffer
	require.NoError(t, runShell(context.Background(), b, in, &out))
	assert.Equal(t, 1, b.Store.Len())
	assert.Contains(t, out.String(), "error: invalid input")
}

func TestShellUnbalancedQuotes(t *testing.T) {
	b := shellBoard(t)
	var out bytes.Buffer
	require.NoError(t, runShell(context.Background(), b, strings.NewReader(`add --title "oops`+"\n"), &out))
	assert.Contains(t, out.String(), "error:")
	assert.Zero(t, b.Store.Len())
}

func TestRunScriptCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.yml")
	require.NoError(t, os.WriteFile(script, []byte(`steps:
  - add: {title: Build shed, description: Construct a garden shed, people: "3"}
  - add: {title: Paint fence, description: Paint the back fence white, people: "2"}
  - move: {ref: "#1", to: finished}
  - move: {id: ghost, to: finished}
`), 0o644))

	out, errOut, err := runCLI(t, "run", script, "--log", "-w", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ACTIVE PROJECTS")
	assert.Contains(t, out, "Paint fence")
	assert.Contains(t, out, "record.added")
	assert.Contains(t, errOut, "warning: step 4")

	out, _, err = runCLI(t, "run", script, "--json", "-w", dir)
	require.NoError(t, err)
	dec := json.NewDecoder(strings.NewReader(out))
	var lists []struct {
		Status  string          `json:"status"`
		Records []domain.Record `json:"records"`
	}
	for dec.More() {
		var l struct {
			Status  string          `json:"status"`
			Records []domain.Record `json:"records"`
		}
		require.NoError(t, dec.Decode(&l))
		lists = append(lists, l)
	}
	require.Len(t, lists, 2)
	assert.Equal(t, "finished", lists[1].Status)
	require.Len(t, lists[1].Records, 1)
	assert.Equal(t, "Build shed", lists[1].Records[0].Title)
}

func TestRunScriptCommandInvalidInput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.yml")
	require.NoError(t, os.WriteFile(script, []byte("steps:\n  - add: {title: x, description: y, people: \"9\"}\n"), 0o644))
	_, _, err := runCLI(t, "run", script, "-w", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runCLI(t, "config", "validate", "-w", dir)
	require.Error(t, err)

	out, _, err := runCLI(t, "config", "init", "-w", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "board.yml")

	out, _, err = runCLI(t, "config", "validate", "-w", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, _, err = runCLI(t, "config", "show", "-w", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "min_length: 5")

	require.NoError(t, os.WriteFile(config.Path(dir), []byte("validation:\n  people:\n    min: 4\n    max: 2\n"), 0o644))
	_, _, err = runCLI(t, "config", "validate", "-w", dir)
	require.Error(t, err)
}
