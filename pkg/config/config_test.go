package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberror "twotable/pkg/error"
	"twotable/pkg/logging"
)

const sample = `
[join]
mode = EWISE
elementMultiplyOp = math

[A]
tableName = left
emitNoMatch = true

[B]
tableName = right

[elementMultiplyOp.opt]
scalarOp = PLUS

[tables]
left = data/left.tsv
right = data/right.tsv.zst

[logging]
level = debug
format = json
`

func TestParseFlattensOptions(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"mode":                           "EWISE",
		"elementMultiplyOp":              "math",
		"A.tableName":                    "left",
		"A.emitNoMatch":                  "true",
		"B.tableName":                    "right",
		"elementMultiplyOp.opt.scalarOp": "PLUS",
	}, f.Options())

	assert.Equal(t, map[string]string{"left": "data/left.tsv", "right": "data/right.tsv.zst"}, f.Tables())
}

func TestLoggingSection(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	cfg, err := f.Logging()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Empty(t, cfg.OutputPath)
}

func TestLoggingDefaults(t *testing.T) {
	f, err := Parse([]byte("[join]\nmode = ROW\n"))
	require.NoError(t, err)

	cfg, err := f.Logging()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelInfo, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, f.Tables())
}

func TestInvalidLoggingLevel(t *testing.T) {
	f, err := Parse([]byte("[join]\nmode = ROW\n[logging]\nlevel = chatty\n"))
	require.NoError(t, err)

	_, err = f.Logging()
	assert.True(t, errors.Is(err, dberror.ErrConfiguration))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "join.ini")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())
	assert.Equal(t, "EWISE", f.Options()["mode"])
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	assert.True(t, errors.Is(err, dberror.ErrConfiguration))

	_, err = Parse([]byte("[A]\ntableName = left\n"))
	assert.True(t, errors.Is(err, dberror.ErrConfiguration))
}
