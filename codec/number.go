package codec

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Number is the literal text of a JSON number as it appeared in the input.
// Handlers convert it to their own width so no precision is lost on the way.
type Number string

func (n Number) String() string { return string(n) }

// IsFloat reports whether the literal has a fraction or an exponent.
func (n Number) IsFloat() bool {
	return strings.ContainsAny(string(n), ".eE")
}

// Float64 parses the literal as a 64-bit float.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int64 parses the literal as a 64-bit integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Value returns the natural Go form of the number: float64 for floating
// literals, int32 for integers that fit 32 bits, int64 for larger ones and
// *big.Int beyond the int64 range.
func (n Number) Value() any {
	if !n.IsFloat() {
		if i, err := n.Int64(); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return int32(i)
			}
			return i
		}
		if b, ok := new(big.Int).SetString(string(n), 10); ok {
			return b
		}
	}
	f, _ := n.Float64()
	return f
}

// exact returns the number as int64, uint64 or float64, whichever holds it
// without loss.
func (n Number) exact() (any, error) {
	if !n.IsFloat() {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
			return u, nil
		}
	}
	return n.Float64()
}
