package mat

// MaxPool2x2 downsamples in with non-overlapping 2×2 windows at stride 2,
// writing each window's maximum to out.
//
// Output dimensions are the input dimensions halved with truncation; a
// trailing odd row or column is dropped, so callers wanting full coverage
// pre-size inputs to even dimensions. out must have exactly the halved
// shape or it is left unchanged.
//
// Maximum is well-defined under ties, so no positional tie-break state is
// kept. Cost is four comparisons per output element, O(out.Rows * out.Cols).
func MaxPool2x2(in, out *Matrix) Status {
	if !valid(in) || !valid(out) {
		return StatusInvalidArgument
	}

	oh := in.Rows / 2
	ow := in.Cols / 2
	if out.Rows != oh || out.Cols != ow {
		return StatusDimensionMismatch
	}

	for r := uint16(0); r < oh; r++ {
		for c := uint16(0); c < ow; c++ {
			base := int(2*r)*int(in.Cols) + int(2*c)
			m := in.Data[base]
			if v := in.Data[base+1]; v > m {
				m = v
			}
			if v := in.Data[base+int(in.Cols)]; v > m {
				m = v
			}
			if v := in.Data[base+int(in.Cols)+1]; v > m {
				m = v
			}
			out.Data[int(r)*int(out.Cols)+int(c)] = m
		}
	}
	return StatusOK
}
