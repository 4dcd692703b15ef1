package mappings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocument(t *testing.T) {
	t.Parallel()

	tables, err := Load([]byte(`
functions:
  NVL: COALESCE
  TRUNC: DATE_TRUNC('day', $1)
types:
  VARCHAR2: VARCHAR
exceptions:
  NO_DATA_FOUND: no_data_found
`))
	require.NoError(t, err)

	got, ok := tables.Function("nvl")
	require.True(t, ok)
	assert.Equal(t, "COALESCE", got)

	got, ok = tables.Function("TRUNC")
	require.True(t, ok)
	assert.Equal(t, "DATE_TRUNC('day', $1)", got)

	assert.Equal(t, 1, tables.NumTypes())
	assert.Equal(t, 1, tables.NumExceptions())
}

func TestLoadEmptyDocument(t *testing.T) {
	t.Parallel()

	tables, err := Load(nil)
	require.NoError(t, err)
	assert.Zero(t, tables.NumFunctions())

	tables, err = Load([]byte("functions: {}\n"))
	require.NoError(t, err)
	assert.Zero(t, tables.NumFunctions())
}

func TestLoadRejectsUnknownSections(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte("operators:\n  '!=': '<>'\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mapping document")
}

func TestLoadRejectsNonStringValues(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte("functions:\n  NVL: 42\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mapping document")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte("functions: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mapping document")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("functions:\n  NVL: COALESCE\n"), 0o644))

	tables, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tables.NumFunctions())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read mapping document")
}
