package mat

import "github.com/williamofai/certifiable-inference/fixed"

// Conv2DValid computes a valid (no padding), stride-1 2-D convolution of in
// with kernel k, writing the result to out.
//
// For an H×W input and KH×KW kernel the output is fixed at
// (H-KH+1)×(W-KW+1); out must already have exactly that shape. A kernel
// larger than the input in either dimension, or a mis-sized out, leaves out
// unchanged.
//
// Each output element accumulates the window product in a 64-bit
// intermediate, iterating kernel rows then kernel columns in a fixed nested
// order, then applies the same half-ULP rounding and quantizing shift as Mul.
// Cost is O(OH * OW * KH * KW), shape-bound only.
func Conv2DValid(in, k, out *Matrix) Status {
	if !valid(in) || !valid(k) || !valid(out) {
		return StatusInvalidArgument
	}
	if k.Rows == 0 || k.Cols == 0 || k.Rows > in.Rows || k.Cols > in.Cols {
		return StatusDimensionMismatch
	}

	oh := in.Rows - k.Rows + 1
	ow := in.Cols - k.Cols + 1
	if out.Rows != oh || out.Cols != ow {
		return StatusDimensionMismatch
	}

	for r := uint16(0); r < oh; r++ {
		for c := uint16(0); c < ow; c++ {
			var sum int64
			for kr := uint16(0); kr < k.Rows; kr++ {
				for kc := uint16(0); kc < k.Cols; kc++ {
					vi := in.Data[int(r+kr)*int(in.Cols)+int(c+kc)]
					vk := k.Data[int(kr)*int(k.Cols)+int(kc)]
					sum += int64(vi) * int64(vk)
				}
			}
			sum += int64(fixed.Half)
			out.Data[int(r)*int(out.Cols)+int(c)] = quantize(sum)
		}
	}
	return StatusOK
}
