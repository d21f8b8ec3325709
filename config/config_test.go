package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto/config"
)

func TestLoadAppliesDefaultsAndFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialect = "postgres"
max_open_conns = 25
`), 0o644))

	l, err := config.Load(path)
	require.NoError(t, err)

	c := l.Current()
	assert.Equal(t, "postgres", c.Dialect)
	assert.Equal(t, 25, c.MaxOpenConns)
	assert.True(t, c.ForeignKeys) // default, not overridden by the file.
}

func TestPragmaStatementsReflectConfig(t *testing.T) {
	c := config.Config{ForeignKeys: true, JournalMode: "WAL"}
	stmts := c.PragmaStatements()
	assert.Contains(t, stmts, "PRAGMA foreign_keys=ON")
	assert.Contains(t, stmts, "PRAGMA journal_mode=WAL")
}

func TestWriteDefaultProducesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.toml")
	require.NoError(t, config.WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = config.Load(path)
	require.NoError(t, err)
}
