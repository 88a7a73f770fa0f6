package multiply

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// MaxDecimalExponent is the largest exponent BIGDECIMAL POWER accepts.
const MaxDecimalExponent = 999999999

var bigTen = big.NewInt(10)

// decimal is unscaled * 10^-scale. A negative scale multiplies by a power of ten.
type decimal struct {
	unscaled *big.Int
	scale    int
}

// parseDecimal reads plain or exponent notation: "-12.50", "3", "1.5e3".
func parseDecimal(s string) (decimal, error) {
	s = strings.TrimSpace(s)
	mantissa, exp := s, 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return decimal{}, fmt.Errorf("decode BIGDECIMAL %q: bad exponent", s)
		}
		mantissa, exp = s[:i], e
	}

	sign := ""
	if mantissa != "" && (mantissa[0] == '-' || mantissa[0] == '+') {
		sign, mantissa = mantissa[:1], mantissa[1:]
	}
	whole, frac, _ := strings.Cut(mantissa, ".")
	digits := whole + frac
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return decimal{}, fmt.Errorf("decode BIGDECIMAL %q", s)
	}

	u, _ := new(big.Int).SetString(sign+digits, 10)
	return decimal{unscaled: u, scale: len(frac) - exp}, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// rescale returns the unscaled value of d at a larger scale.
func (d decimal) rescale(scale int) *big.Int {
	if scale == d.scale {
		return d.unscaled
	}
	return new(big.Int).Mul(d.unscaled, pow10(scale-d.scale))
}

// align returns both unscaled values at the larger of the two scales.
func align(a, b decimal) (*big.Int, *big.Int, int) {
	s := max(a.scale, b.scale)
	return a.rescale(s), b.rescale(s), s
}

func (d decimal) add(o decimal) decimal {
	x, y, s := align(d, o)
	return decimal{new(big.Int).Add(x, y), s}
}

func (d decimal) sub(o decimal) decimal {
	x, y, s := align(d, o)
	return decimal{new(big.Int).Sub(x, y), s}
}

func (d decimal) mul(o decimal) decimal {
	return decimal{new(big.Int).Mul(d.unscaled, o.unscaled), d.scale + o.scale}
}

func (d decimal) cmp(o decimal) int {
	x, y, _ := align(d, o)
	return x.Cmp(y)
}

// quo divides keeping the dividend's scale, rounding half away from zero.
func (d decimal) quo(o decimal) (decimal, error) {
	if o.unscaled.Sign() == 0 {
		return decimal{}, fmt.Errorf("division by zero")
	}
	// d/o * 10^d.scale == d.unscaled * 10^o.scale / o.unscaled
	num := new(big.Int).Set(d.unscaled)
	den := new(big.Int).Set(o.unscaled)
	if o.scale > 0 {
		num.Mul(num, pow10(o.scale))
	} else if o.scale < 0 {
		den.Mul(den, pow10(-o.scale))
	}

	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 && new(big.Int).Mul(new(big.Int).Abs(r), big.NewInt(2)).CmpAbs(den) >= 0 {
		if num.Sign() == den.Sign() {
			q.Add(q, big.NewInt(1))
		} else {
			q.Sub(q, big.NewInt(1))
		}
	}
	return decimal{q, d.scale}, nil
}

// pow raises d to a whole exponent in [0, MaxDecimalExponent].
func (d decimal) pow(e decimal) (decimal, error) {
	n, ok := e.integer()
	if !ok || n.Sign() < 0 || n.Cmp(big.NewInt(MaxDecimalExponent)) > 0 {
		return decimal{}, fmt.Errorf("invalid BIGDECIMAL exponent %s: want a whole number in [0, %d]", e, MaxDecimalExponent)
	}
	k := int(n.Int64())
	return decimal{new(big.Int).Exp(d.unscaled, n, nil), d.scale * k}, nil
}

// integer returns d as a whole number when it has no fractional part.
func (d decimal) integer() (*big.Int, bool) {
	if d.scale <= 0 {
		return d.rescale(0), true
	}
	q, r := new(big.Int).QuoRem(d.unscaled, pow10(d.scale), new(big.Int))
	return q, r.Sign() == 0
}

// String renders d in plain notation at its scale.
func (d decimal) String() string {
	if d.scale <= 0 {
		return d.rescale(0).String()
	}
	digits := new(big.Int).Abs(d.unscaled).String()
	if pad := d.scale + 1 - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	cut := len(digits) - d.scale
	s := digits[:cut] + "." + digits[cut:]
	if d.unscaled.Sign() < 0 {
		s = "-" + s
	}
	return s
}
