// Package config reads join definitions from INI files.
//
// The [join] section holds top-level aligner options. Every other section
// contributes options prefixed with its name, so
//
//	[A]
//	tableName = left
//
// becomes A.tableName. The [logging] and [tables] sections configure the
// process and are not handed to the aligner.
package config

import (
	"os"

	"gopkg.in/ini.v1"

	dberror "twotable/pkg/error"
	"twotable/pkg/logging"
)

// Section names with a fixed meaning.
const (
	SectionJoin    = "join"
	SectionLogging = "logging"
	SectionTables  = "tables"
)

// JoinFile is a parsed join definition.
type JoinFile struct {
	path string
	cfg  *ini.File
}

// Load reads and parses the join definition at path.
func Load(path string) (*JoinFile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, dberror.Configuration("join file not found").
			WithDetail("%s: %v", path, err).In("Load", "config")
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, dberror.Configuration("malformed join file").
			WithDetail("%s: %v", path, err).In("Load", "config")
	}
	return newJoinFile(path, cfg)
}

// Parse reads a join definition from memory.
func Parse(data []byte) (*JoinFile, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, dberror.Configuration("malformed join definition").
			WithDetail("%v", err).In("Parse", "config")
	}
	return newJoinFile("", cfg)
}

func newJoinFile(path string, cfg *ini.File) (*JoinFile, error) {
	if !cfg.HasSection(SectionJoin) {
		return nil, dberror.Configuration("missing [join] section").
			WithDetail("%s", path).
			WithHint("put mode and the strategy names under [join]").In("Load", "config")
	}
	logging.Debug("join definition loaded", "path", path, "sections", len(cfg.Sections()))
	return &JoinFile{path: path, cfg: cfg}, nil
}

// Path returns the file the definition came from, empty for Parse.
func (f *JoinFile) Path() string { return f.path }

// Options flattens the definition into aligner options.
func (f *JoinFile) Options() map[string]string {
	opts := make(map[string]string)
	for _, sec := range f.cfg.Sections() {
		var prefix string
		switch sec.Name() {
		case ini.DefaultSection, SectionJoin:
		case SectionLogging, SectionTables:
			continue
		default:
			prefix = sec.Name() + "."
		}
		for _, k := range sec.Keys() {
			opts[prefix+k.Name()] = k.String()
		}
	}
	return opts
}

// Tables returns the [tables] section, mapping table names to files.
func (f *JoinFile) Tables() map[string]string {
	tables := make(map[string]string)
	if !f.cfg.HasSection(SectionTables) {
		return tables
	}
	for _, k := range f.cfg.Section(SectionTables).Keys() {
		tables[k.Name()] = k.String()
	}
	return tables
}

// Logging returns the logger settings of the [logging] section. Missing keys
// fall back to INFO level text output on stderr.
func (f *JoinFile) Logging() (logging.Config, error) {
	sec := f.cfg.Section(SectionLogging)

	level, err := logging.ParseLevel(sec.Key("level").MustString(string(logging.LevelInfo)))
	if err != nil {
		return logging.Config{}, dberror.Configuration("invalid logging level").
			WithDetail("%v", err).In("Logging", "config")
	}
	return logging.Config{
		Level:      level,
		OutputPath: sec.Key("output").String(),
		Format:     sec.Key("format").In("text", []string{"text", "json"}),
	}, nil
}
