package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ACTIVE PROJECTS", cfg.Lists.Active)
	assert.Equal(t, "FINISHED PROJECTS", cfg.Lists.Finished)
	assert.True(t, cfg.Validation.Title.Required)
	require.NotNil(t, cfg.Validation.Description.MinLength)
	assert.Equal(t, 5, *cfg.Validation.Description.MinLength)
	require.NotNil(t, cfg.Validation.People.Min)
	require.NotNil(t, cfg.Validation.People.Max)
	assert.Equal(t, 1, *cfg.Validation.People.Min)
	assert.Equal(t, 5, *cfg.Validation.People.Max)
	assert.True(t, cfg.Journal.Enabled)
}

func TestFromYAMLOverlaysDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("validation:\n  people:\n    max: 9\njournal:\n  enabled: false\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, *cfg.Validation.People.Max)
	assert.Equal(t, 1, *cfg.Validation.People.Min)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, "ACTIVE PROJECTS", cfg.Lists.Active)
}

func TestFromYAMLRejectsBadRanges(t *testing.T) {
	_, err := FromYAML([]byte("validation:\n  people:\n    min: 6\n    max: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation.people.min")

	_, err = FromYAML([]byte("validation:\n  description:\n    min_length: 10\n    max_length: 3\n"))
	require.Error(t, err)

	_, err = FromYAML([]byte("lists:\n  active: \"\"\n"))
	require.Error(t, err)

	_, err = FromYAML([]byte("board: [oops"))
	require.Error(t, err)
}

func TestLoadAndInit(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)

	cfg, err := LoadOptional(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "board.yml"), path)

	_, err = Init(dir)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("board:\n  title: Garden\n"), 0o644))
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Garden", cfg.Board.Title)
}

func TestYAMLRoundTripsThroughFromYAML(t *testing.T) {
	out, err := Default().YAML()
	require.NoError(t, err)
	cfg, err := FromYAML([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
