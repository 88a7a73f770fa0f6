package table

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberror "twotable/pkg/error"
	"twotable/pkg/key"
)

func sampleEntries() []key.Entry {
	return []key.Entry{
		{Key: key.Key{Row: []byte("r1"), Family: []byte("f"), Qualifier: []byte("a"), Visibility: []byte("pub"), Timestamp: 7}, Value: key.Value("2")},
		{Key: key.Key{Row: []byte("r2"), Family: []byte("f"), Qualifier: []byte("b"), Visibility: []byte{}, Timestamp: 3}, Value: key.Value("hello world")},
	}
}

func TestParse(t *testing.T) {
	input := "# row fam qual vis ts value\n\nr1\tf\ta\tpub\t7\t2\r\nr2\tf\tb\t\t3\thello world\n"

	entries, err := Parse(strings.NewReader(input), "inline")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "r1 f:a [pub] 7", entries[0].Key.String())
	assert.Equal(t, "2", string(entries[0].Value))
	assert.Equal(t, "hello world", string(entries[1].Value))
	assert.Empty(t, entries[1].Key.Visibility)
}

func TestParseReportsLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"too few fields", "r1\tf\ta\n", "inline:1"},
		{"bad timestamp", "# header\nr1\tf\ta\t\tsoon\t1\n", "inline:2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), "inline")
			require.Error(t, err)
			assert.True(t, errors.Is(err, dberror.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"plain.tsv", "packed.tsv.zst", "packed.tsv.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, sampleEntries()))

			got, err := Load(path)
			require.NoError(t, err)
			require.Len(t, got, 2)
			for i, e := range sampleEntries() {
				assert.True(t, e.Key.Equal(got[i].Key), "key %d: %s != %s", i, e.Key, got[i].Key)
				assert.Equal(t, string(e.Value), string(got[i].Value))
			}
		})
	}
}

func TestLoadTableSorts(t *testing.T) {
	entries := sampleEntries()
	path := filepath.Join(t.TempDir(), "rev.tsv")
	require.NoError(t, Save(path, []key.Entry{entries[1], entries[0]}))

	tbl, err := LoadTable("t", path)
	require.NoError(t, err)
	assert.Equal(t, "t", tbl.Name())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "r1", string(tbl.Entries()[0].Key.Row))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.tsv"))
	assert.True(t, errors.Is(err, dberror.ErrConfiguration))
}

func TestCompressionFor(t *testing.T) {
	assert.Equal(t, Zstd, CompressionFor("a.tsv.ZST"))
	assert.Equal(t, LZ4, CompressionFor("a.lz4"))
	assert.Equal(t, None, CompressionFor("a.tsv"))
}
