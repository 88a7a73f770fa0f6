// Package table reads and writes tables as tab-separated text, optionally
// compressed with zstd (.zst) or lz4 (.lz4).
//
// Each non-blank line that does not start with '#' is one entry:
//
//	row<TAB>family<TAB>qualifier<TAB>visibility<TAB>timestamp<TAB>value
package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/key"
	"twotable/pkg/logging"
)

const fieldCount = 6

// Compression of a table file, chosen by its extension.
type Compression int

const (
	None Compression = iota
	Zstd
	LZ4
)

// CompressionFor returns the compression implied by the extension of path.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

// Load reads every entry of the file at path.
func Load(path string) ([]key.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dberror.Configuration("cannot open table file").
			WithDetail("%s: %v", path, err).In("Load", "table")
	}
	defer f.Close()

	var r io.Reader = f
	switch CompressionFor(path) {
	case Zstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, dberror.IOFailure(err, "Load", "table").WithDetail("%s", path)
		}
		defer dec.Close()
		r = dec
	case LZ4:
		r = lz4.NewReader(f)
	}

	entries, err := Parse(r, path)
	if err != nil {
		return nil, err
	}
	logging.Debug("table file loaded", "path", path, "entries", len(entries))
	return entries, nil
}

// LoadTable reads the file at path into a table called name.
func LoadTable(name, path string) (*cursor.Table, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cursor.NewTable(name, entries), nil
}

// Parse reads entries from r. source names the input in error messages.
func Parse(r io.Reader, source string) ([]key.Entry, error) {
	var entries []key.Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		e, err := parseLine(text)
		if err != nil {
			return nil, dberror.Configuration("malformed table line").
				WithDetail("%s:%d: %v", source, line, err).In("Parse", "table")
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, dberror.IOFailure(err, "Parse", "table").WithDetail("%s", source)
	}
	return entries, nil
}

func parseLine(text string) (key.Entry, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != fieldCount {
		return key.Entry{}, fmt.Errorf("want %d tab-separated fields, got %d", fieldCount, len(fields))
	}
	ts, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return key.Entry{}, fmt.Errorf("bad timestamp %q", fields[4])
	}
	return key.Entry{
		Key: key.Key{
			Row:        []byte(fields[0]),
			Family:     []byte(fields[1]),
			Qualifier:  []byte(fields[2]),
			Visibility: []byte(fields[3]),
			Timestamp:  ts,
		},
		Value: key.Value(fields[5]),
	}, nil
}

// Write encodes entries as tab-separated lines.
func Write(w io.Writer, entries []key.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.Key.Row, e.Key.Family, e.Key.Qualifier, e.Key.Visibility, e.Key.Timestamp, e.Value)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes entries to path, compressed according to its extension.
func Save(path string, entries []key.Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return dberror.IOFailure(err, "Save", "table").WithDetail("%s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = dberror.IOFailure(cerr, "Save", "table").WithDetail("%s", path)
		}
	}()

	var w io.WriteCloser
	switch CompressionFor(path) {
	case Zstd:
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return dberror.IOFailure(err, "Save", "table").WithDetail("%s", path)
		}
		w = enc
	case LZ4:
		w = lz4.NewWriter(f)
	}

	if w == nil {
		if err := Write(f, entries); err != nil {
			return dberror.IOFailure(err, "Save", "table").WithDetail("%s", path)
		}
		return nil
	}
	if err := Write(w, entries); err != nil {
		w.Close()
		return dberror.IOFailure(err, "Save", "table").WithDetail("%s", path)
	}
	if err := w.Close(); err != nil {
		return dberror.IOFailure(err, "Save", "table").WithDetail("%s", path)
	}
	return nil
}
