package twotable

import (
	"strconv"
	"strings"

	dberror "twotable/pkg/error"
	"twotable/pkg/key"
	"twotable/pkg/logging"
	"twotable/pkg/multiply"
)

// Mode selects what happens when the two tables align.
type Mode int

const (
	// ModeNone aligns without multiplying; matched entries are dropped.
	// Combined with emitNoMatch on both sides it yields the symmetric
	// difference of the two tables.
	ModeNone Mode = iota

	// ModeRow hands whole matching rows to a RowMultiplier.
	ModeRow

	// ModeEWise hands single entries matching on row, family and qualifier
	// to an ElementMultiplier.
	ModeEWise
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeRow:
		return "ROW"
	case ModeEWise:
		return "EWISE"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Granularity returns the key prefix compared when aligning in mode m.
func (m Mode) Granularity() key.PartialKey {
	if m == ModeRow {
		return key.Row
	}
	return key.RowFamilyQualifier
}

// ParseMode parses NONE, ROW or EWISE, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE":
		return ModeNone, nil
	case "ROW":
		return ModeRow, nil
	case "EWISE":
		return ModeEWise, nil
	default:
		return 0, dberror.Configuration("unknown mode").
			WithDetail("%q", s).
			WithHint("mode must be one of NONE, ROW, EWISE")
	}
}

// Option names of the aligner.
const (
	OptMode                    = "mode"
	OptDotMode                 = "dotmode"
	OptEmitNoMatch             = "emitNoMatch"
	OptDoWholeRow              = "doWholeRow"
	OptRowMultiplyOp           = "rowMultiplyOp"
	OptElementMultiplyOp       = "elementMultiplyOp"
	OptMultiplyOp              = "multiplyOp"
	PrefixA                    = "A."
	PrefixB                    = "B."
	PrefixRowMultiplyOpts      = "rowMultiplyOp.opt."
	PrefixElementMultiplyOpts  = "elementMultiplyOp.opt."
	prefixLegacyMultiplyOpts   = "multiplyOp.opt."
	rowForwardedMultiplyPrefix = multiply.OptMultiplyOpPrefix
)

// SideConfig holds the settings of one input table.
type SideConfig struct {
	// EmitNoMatch passes unmatched entries of this side through unchanged.
	EmitNoMatch bool
	// CursorOptions are forwarded to the side's cursor Init, prefix removed.
	CursorOptions map[string]string
}

// Config is the parsed, immutable configuration of an aligner. It is built
// once by ParseOptions or by hand and never modified afterwards; forks share it.
type Config struct {
	Mode Mode
	A, B SideConfig

	RowMultiplyOp          string
	RowMultiplyOptions     map[string]string
	ElementMultiplyOp      string
	ElementMultiplyOptions map[string]string
}

// ParseOptions turns the string option surface into a Config. A missing or
// unknown mode, or a malformed emitNoMatch flag, is a configuration error.
// Options that do not apply to the chosen mode are ignored with a warning.
func ParseOptions(opts map[string]string) (Config, error) {
	log := logging.WithComponent("aligner")

	modeStr, ok := opts[OptMode]
	if !ok {
		modeStr, ok = opts[OptDotMode]
	}
	if !ok {
		return Config{}, dberror.Configuration("missing required option").
			WithDetail("%q", OptMode).In("Init", "Aligner")
	}
	mode, err := ParseMode(modeStr)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Mode:                   mode,
		A:                      SideConfig{CursorOptions: make(map[string]string)},
		B:                      SideConfig{CursorOptions: make(map[string]string)},
		RowMultiplyOptions:     make(map[string]string),
		ElementMultiplyOptions: make(map[string]string),
	}

	for k, v := range opts {
		switch {
		case strings.HasPrefix(k, PrefixA):
			if err := parseSideOption(&cfg.A, "A", strings.TrimPrefix(k, PrefixA), v); err != nil {
				return Config{}, err
			}

		case strings.HasPrefix(k, PrefixB):
			if err := parseSideOption(&cfg.B, "B", strings.TrimPrefix(k, PrefixB), v); err != nil {
				return Config{}, err
			}

		case strings.HasPrefix(k, PrefixRowMultiplyOpts):
			cfg.RowMultiplyOptions[strings.TrimPrefix(k, PrefixRowMultiplyOpts)] = v

		case strings.HasPrefix(k, PrefixElementMultiplyOpts), strings.HasPrefix(k, prefixLegacyMultiplyOpts):
			name := strings.TrimPrefix(strings.TrimPrefix(k, PrefixElementMultiplyOpts), prefixLegacyMultiplyOpts)
			switch mode {
			case ModeRow:
				cfg.RowMultiplyOptions[rowForwardedMultiplyPrefix+name] = v
			case ModeEWise:
				cfg.ElementMultiplyOptions[name] = v
			default:
				log.Warn("NONE mode: ignoring element multiply option", "option", k)
			}

		case k == OptRowMultiplyOp:
			if mode == ModeRow {
				cfg.RowMultiplyOp = v
			} else {
				log.Warn("ignoring rowMultiplyOp", "mode", mode.String(), "value", v)
			}

		case k == OptElementMultiplyOp, k == OptMultiplyOp:
			switch mode {
			case ModeRow:
				cfg.RowMultiplyOptions[multiply.OptMultiplyOp] = v
			case ModeEWise:
				cfg.ElementMultiplyOp = v
			default:
				log.Warn("NONE mode: ignoring element multiply strategy", "value", v)
			}

		case k == OptMode, k == OptDotMode:

		default:
			log.Warn("ignoring unrecognized option", "option", k, "value", v)
		}
	}

	switch mode {
	case ModeRow:
		if cfg.RowMultiplyOp == "" {
			cfg.RowMultiplyOp = multiply.CartesianName
		}
	case ModeEWise:
		if cfg.ElementMultiplyOp == "" {
			cfg.ElementMultiplyOp = multiply.MathName
		}
	}
	return cfg, nil
}

func parseSideOption(side *SideConfig, name, opt, v string) error {
	switch opt {
	case OptEmitNoMatch:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return dberror.Configuration("malformed emitNoMatch option").
				WithDetail("%s.%s=%q", name, opt, v).In("Init", "Aligner")
		}
		side.EmitNoMatch = b
	case OptDoWholeRow:
		if b, _ := strconv.ParseBool(v); b {
			logging.WithComponent("aligner").Warn("forcing doWholeRow to false", "side", name, "given", v)
		}
	default:
		side.CursorOptions[opt] = v
	}
	return nil
}

func copyOptions(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
