package coerce

import "math"

// ToInt converts value to a signed integer of the given bit width.
// Booleans convert to 1 and 0.
func ToInt(value any, bits int) (int64, bool) {
	lo := -int64(1) << (bits - 1)
	hi := int64(1)<<(bits-1) - 1
	if bits == 64 {
		lo, hi = math.MinInt64, math.MaxInt64
	}
	switch v := value.(type) {
	case int64:
		if v >= lo && v <= hi {
			return v, true
		}
	case int:
		return ToInt(int64(v), bits)
	case int32:
		return ToInt(int64(v), bits)
	case int16:
		return ToInt(int64(v), bits)
	case int8:
		return ToInt(int64(v), bits)
	case uint64:
		if v <= uint64(hi) {
			return int64(v), true
		}
	case uint:
		return ToInt(uint64(v), bits)
	case uint32:
		return ToInt(uint64(v), bits)
	case uint16:
		return ToInt(uint64(v), bits)
	case uint8:
		return ToInt(uint64(v), bits)
	case float64:
		t := math.Trunc(v)
		limit := math.Ldexp(1, bits-1)
		if t >= -limit && t < limit {
			return int64(t), true
		}
	case float32:
		return ToInt(float64(v), bits)
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// ToUint converts value to an unsigned integer of the given bit width.
func ToUint(value any, bits int) (uint64, bool) {
	hi := uint64(1)<<bits - 1
	if bits == 64 {
		hi = math.MaxUint64
	}
	switch v := value.(type) {
	case uint64:
		if v <= hi {
			return v, true
		}
	case uint:
		return ToUint(uint64(v), bits)
	case uint32:
		return ToUint(uint64(v), bits)
	case uint16:
		return ToUint(uint64(v), bits)
	case uint8:
		return ToUint(uint64(v), bits)
	case int64:
		if v >= 0 {
			return ToUint(uint64(v), bits)
		}
	case int:
		return ToUint(int64(v), bits)
	case int32:
		return ToUint(int64(v), bits)
	case int16:
		return ToUint(int64(v), bits)
	case int8:
		return ToUint(int64(v), bits)
	case float64:
		t := math.Trunc(v)
		if t >= 0 && t < math.Ldexp(1, bits) {
			return uint64(t), true
		}
	case float32:
		return ToUint(float64(v), bits)
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// ToFloat converts value to a float of the given bit width (32 or 64).
// NaN and infinities never fit.
func ToFloat(value any, bits int) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int16:
		f = float64(v)
	case int8:
		f = float64(v)
	case uint64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint8:
		f = float64(v)
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if bits == 32 && math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return f, true
}
