package mat

import "github.com/williamofai/certifiable-inference/fixed"

// Mul computes c = a × b.
//
// Preconditions: a.Cols == b.Rows and c is a.Rows × b.Cols. On violation, c
// is left byte-for-byte unchanged and the status names the failure. c must
// not alias a or b; that is a caller obligation the kernel cannot check.
//
// Each output element accumulates its full dot product in a 64-bit
// intermediate, then adds the half-ULP rounding bias and shifts down once.
// Cost is O(a.Rows * a.Cols * b.Cols), a function of shape alone.
func Mul(a, b, c *Matrix) Status {
	if !valid(a) || !valid(b) || !valid(c) {
		return StatusInvalidArgument
	}
	if a.Cols != b.Rows {
		return StatusDimensionMismatch
	}
	if c.Rows != a.Rows || c.Cols != b.Cols {
		return StatusDimensionMismatch
	}

	for i := uint16(0); i < a.Rows; i++ {
		for j := uint16(0); j < b.Cols; j++ {
			var sum int64
			for k := uint16(0); k < a.Cols; k++ {
				va := a.Data[int(i)*int(a.Cols)+int(k)]
				vb := b.Data[int(k)*int(b.Cols)+int(j)]
				sum += int64(va) * int64(vb)
			}
			sum += int64(fixed.Half)
			c.Data[int(i)*int(c.Cols)+int(j)] = quantize(sum)
		}
	}
	return StatusOK
}

// Dot computes the dot product of two equal-length vectors using the same
// accumulation discipline as Mul. An absent input yields Zero with
// StatusInvalidArgument; a length mismatch yields Zero with
// StatusDimensionMismatch.
func Dot(a, b []fixed.Fixed) (fixed.Fixed, Status) {
	if a == nil || b == nil {
		return fixed.Zero, StatusInvalidArgument
	}
	if len(a) != len(b) {
		return fixed.Zero, StatusDimensionMismatch
	}

	var sum int64
	for i := range a {
		sum += int64(a[i]) * int64(b[i])
	}
	sum += int64(fixed.Half)
	return quantize(sum), StatusOK
}

// Add computes c = a + b element-wise. All three views must share identical
// dimensions; on mismatch c is untouched. Elements are combined with
// saturating scalar addition in ascending linear offset order.
func Add(a, b, c *Matrix) Status {
	if !valid(a) || !valid(b) || !valid(c) {
		return StatusInvalidArgument
	}
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return StatusDimensionMismatch
	}
	if c.Rows != a.Rows || c.Cols != a.Cols {
		return StatusDimensionMismatch
	}

	n := a.Len()
	for i := 0; i < n; i++ {
		c.Data[i] = a.Data[i].Add(b.Data[i])
	}
	return StatusOK
}

// quantize shifts a widened accumulator back down to Q16.16, saturating at
// the container limits. The rounding bias must already be in the sum.
func quantize(sum int64) fixed.Fixed {
	q := sum >> fixed.Shift
	if q > int64(fixed.Max) {
		return fixed.Max
	}
	if q < int64(fixed.Min) {
		return fixed.Min
	}
	return fixed.Fixed(q)
}
