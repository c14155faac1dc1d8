// Package fixed implements deterministic Q16.16 fixed-point scalar arithmetic.
//
// A Fixed value is a signed number with 16 integer bits and 16 fractional bits
// stored in a 32-bit container. The stored bit pattern is the only state: there
// is no hidden exponent and no not-a-number encoding, so every 32-bit pattern
// is a valid, exactly representable value in [-32768, 32767.99998] with a
// resolution of 1/65536.
//
// All operations are pure functions of their inputs and hold no global state,
// which makes them safe for unrestricted concurrent use. Results are identical
// on every platform, compiler, and optimization level: multiplication and
// division widen through a 64-bit intermediate and round to nearest by adding
// half a unit in the last place before the quantizing shift.
//
// Addition, subtraction, negation, and absolute value saturate at the
// container limits instead of wrapping. Float conversions exist for one-time
// initialization and test-vector construction only; they carry no bit-perfect
// cross-platform guarantee and must stay out of the inference path.
package fixed

// Fixed is a Q16.16 fixed-point number in a 32-bit signed container.
type Fixed int32

const (
	// Shift is the number of fractional bits.
	Shift = 16

	// One is the fixed-point representation of 1.0.
	One Fixed = 1 << Shift

	// Half is the fixed-point representation of 0.5, used as the
	// round-to-nearest bias before quantizing a widened intermediate.
	Half Fixed = 1 << (Shift - 1)

	// Zero is the fixed-point representation of 0.0.
	Zero Fixed = 0

	// Max is the largest representable value, 32767 + 65535/65536.
	Max Fixed = 1<<31 - 1

	// Min is the smallest representable value, -32768.0.
	Min Fixed = -1 << 31

	// MaxInt and MinInt bound the integers that convert exactly.
	MaxInt = 32767
	MinInt = -32768
)

// saturate clamps a widened intermediate back into the 32-bit container.
func saturate(v int64) Fixed {
	if v > int64(Max) {
		return Max
	}
	if v < int64(Min) {
		return Min
	}
	return Fixed(v)
}

// FromInt converts an integer to fixed-point. Values in [MinInt, MaxInt]
// convert exactly and round-trip through Int; values outside saturate.
func FromInt(v int32) Fixed {
	return saturate(int64(v) << Shift)
}

// Int truncates the fractional part and returns the integer part.
// The arithmetic shift truncates toward negative infinity, so the
// FromInt round-trip is exact for every integer in [MinInt, MaxInt].
func (f Fixed) Int() int32 {
	return int32(f >> Shift)
}

// Add returns f+g, saturating at the container limits.
func (f Fixed) Add(g Fixed) Fixed {
	return saturate(int64(f) + int64(g))
}

// Sub returns f-g, saturating at the container limits.
func (f Fixed) Sub(g Fixed) Fixed {
	return saturate(int64(f) - int64(g))
}

// Neg returns -f. Negating Min saturates to Max.
func (f Fixed) Neg() Fixed {
	return saturate(-int64(f))
}

// Abs returns the absolute value of f. Abs(Min) saturates to Max.
func (f Fixed) Abs() Fixed {
	if f < 0 {
		return f.Neg()
	}
	return f
}

// Mul returns f*g rounded to nearest.
//
// The raw product is computed in a 64-bit intermediate: an unwidened 32-bit
// multiply overflows at moderate magnitudes (180 * 180 already reproduces the
// fault) while the widened form never overflows for any pair of operands.
// Half a unit in the last place is added before the quantizing shift, which
// keeps bias from accumulating across the long multiply chains of layered
// inference. Results outside the container saturate.
func (f Fixed) Mul(g Fixed) Fixed {
	p := int64(f) * int64(g)
	p += int64(Half)
	return saturate(p >> Shift)
}

// Div returns f/g. Dividing by Zero returns Zero: a defined, deterministic
// fallback rather than a hardware fault. Callers needing stricter semantics
// must validate the divisor first. The dividend is widened and shifted left
// before the division so fractional precision is not lost.
func (f Fixed) Div(g Fixed) Fixed {
	if g == Zero {
		return Zero
	}
	n := int64(f) << Shift
	return saturate(n / int64(g))
}

// FromFloat converts a float to fixed-point, rounding to nearest.
//
// Initialization and test vectors only. Floating point is not part of the
// deterministic execution path and the conversion is not guaranteed to be
// bit-identical across platforms.
func FromFloat(v float64) Fixed {
	if v >= 0 {
		return saturate(int64(v*float64(One) + 0.5))
	}
	return saturate(int64(v*float64(One) - 0.5))
}

// Float converts fixed-point to a float. Initialization and tests only.
func (f Fixed) Float() float64 {
	return float64(f) / float64(One)
}
