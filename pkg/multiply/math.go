package multiply

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/iterator"
	"twotable/pkg/key"
	"twotable/pkg/logging"
)

// ScalarOp is the arithmetic applied by MathTwoScalar.
type ScalarOp string

const (
	Plus    ScalarOp = "PLUS"
	Times   ScalarOp = "TIMES"
	Minus   ScalarOp = "MINUS"
	Divide  ScalarOp = "DIVIDE"
	Power   ScalarOp = "POWER"
	Min     ScalarOp = "MIN"
	Max     ScalarOp = "MAX"
	SetLeft ScalarOp = "SET_LEFT"
)

// ScalarType selects how values are decoded and encoded.
type ScalarType string

const (
	Long       ScalarType = "LONG"
	Double     ScalarType = "DOUBLE"
	BigDecimal ScalarType = "BIGDECIMAL"
)

// Options understood by MathTwoScalar, and the keyLayout values.
const (
	OptScalarOp   = "scalarOp"
	OptScalarType = "scalarType"
	OptKeyLayout  = "keyLayout"

	LayoutA     = "A"
	LayoutOuter = "outer"
)

var scalarOps = map[ScalarOp]struct{}{
	Plus: {}, Times: {}, Minus: {}, Divide: {}, Power: {}, Min: {}, Max: {}, SetLeft: {},
}

// MathTwoScalar decodes both values as decimal text, applies a ScalarOp and
// emits one entry holding the encoded result. Defaults: TIMES over BIGDECIMAL,
// output key taken from side A.
type MathTwoScalar struct {
	op     ScalarOp
	typ    ScalarType
	layout string
}

// NewMathTwoScalar returns the strategy with its defaults.
func NewMathTwoScalar() *MathTwoScalar {
	return &MathTwoScalar{op: Times, typ: BigDecimal, layout: LayoutA}
}

// Init implements ElementMultiplier.
func (m *MathTwoScalar) Init(opts map[string]string, env *cursor.Environment) error {
	for k, v := range opts {
		switch k {
		case OptScalarOp:
			op := ScalarOp(strings.ToUpper(strings.TrimSpace(v)))
			if _, ok := scalarOps[op]; !ok {
				return dberror.Configuration("unknown scalarOp").WithDetail("%q", v).In("Init", "MathTwoScalar")
			}
			m.op = op
		case OptScalarType:
			typ := ScalarType(strings.ToUpper(strings.TrimSpace(v)))
			switch typ {
			case Long, Double, BigDecimal:
				m.typ = typ
			default:
				return dberror.Configuration("unknown scalarType").WithDetail("%q", v).In("Init", "MathTwoScalar")
			}
		case OptKeyLayout:
			switch v {
			case LayoutA, LayoutOuter:
				m.layout = v
			default:
				return dberror.Configuration("unknown keyLayout").WithDetail("%q", v).In("Init", "MathTwoScalar")
			}
		default:
			logging.WithComponent("MathTwoScalar").Warn("ignoring unrecognized option", "option", k, "value", v)
		}
	}
	return nil
}

// Multiply implements ElementMultiplier.
func (m *MathTwoScalar) Multiply(match Match) (iterator.EntryIterator, error) {
	v, err := m.Combine(match.ValueA, match.ValueB)
	if err != nil {
		return nil, dberror.StrategyFailure(err, "Multiply", "MathTwoScalar")
	}

	k := key.Key{
		Row:       append([]byte(nil), match.Row...),
		Timestamp: newerTimestamp(match.KeyA, match.KeyB),
	}
	if m.layout == LayoutOuter {
		k.Family = append([]byte(nil), match.QualifierA...)
		k.Qualifier = append([]byte(nil), match.QualifierB...)
	} else {
		k.Family = append([]byte(nil), match.FamilyA...)
		k.Qualifier = append([]byte(nil), match.QualifierA...)
		k.Visibility = append([]byte(nil), match.KeyA.Visibility...)
	}
	return iterator.Singleton(key.Entry{Key: k, Value: v}), nil
}

// Combine applies the configured operation to two encoded values.
func (m *MathTwoScalar) Combine(a, b key.Value) (key.Value, error) {
	if m.op == SetLeft {
		return append(key.Value(nil), a...), nil
	}

	switch m.typ {
	case Long:
		return m.combineLong(string(a), string(b))
	case Double:
		return m.combineDouble(string(a), string(b))
	default:
		return m.combineDecimal(string(a), string(b))
	}
}

func (m *MathTwoScalar) combineLong(sa, sb string) (key.Value, error) {
	a, err := strconv.ParseInt(strings.TrimSpace(sa), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode LONG %q: %w", sa, err)
	}
	b, err := strconv.ParseInt(strings.TrimSpace(sb), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode LONG %q: %w", sb, err)
	}

	var r int64
	switch m.op {
	case Plus:
		r = a + b
	case Times:
		r = a * b
	case Minus:
		r = a - b
	case Divide:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		r = a / b
	case Power:
		r = int64(math.Pow(float64(a), float64(b)))
	case Min:
		r = min(a, b)
	case Max:
		r = max(a, b)
	}
	return key.Value(strconv.FormatInt(r, 10)), nil
}

func (m *MathTwoScalar) combineDouble(sa, sb string) (key.Value, error) {
	a, err := strconv.ParseFloat(strings.TrimSpace(sa), 64)
	if err != nil {
		return nil, fmt.Errorf("decode DOUBLE %q: %w", sa, err)
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(sb), 64)
	if err != nil {
		return nil, fmt.Errorf("decode DOUBLE %q: %w", sb, err)
	}

	var r float64
	switch m.op {
	case Plus:
		r = a + b
	case Times:
		r = a * b
	case Minus:
		r = a - b
	case Divide:
		r = a / b
	case Power:
		r = math.Pow(a, b)
	case Min:
		r = math.Min(a, b)
	case Max:
		r = math.Max(a, b)
	}
	return key.Value(strconv.FormatFloat(r, 'g', -1, 64)), nil
}

// combineDecimal works at BigDecimal scales: sums keep the larger scale,
// products add scales, quotients keep the dividend's scale and powers
// multiply it by the exponent. Results are printed in plain notation.
func (m *MathTwoScalar) combineDecimal(sa, sb string) (key.Value, error) {
	a, err := parseDecimal(sa)
	if err != nil {
		return nil, err
	}
	b, err := parseDecimal(sb)
	if err != nil {
		return nil, err
	}

	r := a
	switch m.op {
	case Plus:
		r = a.add(b)
	case Times:
		r = a.mul(b)
	case Minus:
		r = a.sub(b)
	case Divide:
		if r, err = a.quo(b); err != nil {
			return nil, err
		}
	case Power:
		if r, err = a.pow(b); err != nil {
			return nil, err
		}
	case Min:
		if b.cmp(a) < 0 {
			r = b
		}
	case Max:
		if b.cmp(a) > 0 {
			r = b
		}
	}
	return key.Value(r.String()), nil
}
