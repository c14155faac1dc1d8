// Package mat provides deterministic matrix and feature-map operations over
// caller-owned Q16.16 storage.
//
// A Matrix is a non-owning view: the caller allocates the backing slice and
// keeps it alive for as long as the view is used. Every operation in this
// package runs to completion in one call with a cost bounded by the input
// dimensions, never by element values: no allocation, no I/O, no locking, no
// data-dependent branching in the accumulation loops. Summation order is part
// of the contract. The loops nest output-row, output-column, inner dimension,
// in that fixed order every time, because reordering the additions (as a
// vectorizing compiler would) changes rounding outcomes.
//
// Failures are reported two ways at once: every operation returns a Status,
// and on any non-OK status the output view is provably untouched. There are
// no partial writes. Concurrent invocation is safe as long as each call
// operates on disjoint buffers; mutating the same view from two goroutines is
// the caller's race to serialize.
package mat

import "github.com/williamofai/certifiable-inference/fixed"

// Status reports the outcome of a matrix operation.
type Status uint8

const (
	// StatusOK means the operation completed and the output is valid.
	StatusOK Status = iota

	// StatusInvalidArgument means a required view or buffer was absent or
	// undersized. The output is unmodified.
	StatusInvalidArgument

	// StatusDimensionMismatch means the view shapes violate the operation's
	// precondition. The output is unmodified.
	StatusDimensionMismatch
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusDimensionMismatch:
		return "dimension mismatch"
	default:
		return "unknown"
	}
}

// Matrix is a non-owning view of a row-major feature map or weight matrix.
// Element (r, c) lives at Data[r*Cols+c]. The backing slice belongs to the
// caller; the view never reallocates or resizes it.
type Matrix struct {
	Data []fixed.Fixed
	Rows uint16
	Cols uint16
}

// Init binds m to buf with the given dimensions and zero-fills the bound
// region, so a read before any write deterministically yields zero.
//
// On a nil view, nil buffer, or a buffer shorter than rows*cols elements,
// Init leaves m unchanged and reports the violation.
func Init(m *Matrix, buf []fixed.Fixed, rows, cols uint16) Status {
	if m == nil || buf == nil {
		return StatusInvalidArgument
	}
	n := int(rows) * int(cols)
	if len(buf) < n {
		return StatusInvalidArgument
	}

	m.Data = buf
	m.Rows = rows
	m.Cols = cols

	for i := 0; i < n; i++ {
		m.Data[i] = fixed.Zero
	}
	return StatusOK
}

// At returns element (r, c). Bounds are the caller's responsibility; the
// runtime bounds check on the backing slice still applies.
func (m *Matrix) At(r, c uint16) fixed.Fixed {
	return m.Data[int(r)*int(m.Cols)+int(c)]
}

// Set stores v at element (r, c).
func (m *Matrix) Set(r, c uint16, v fixed.Fixed) {
	m.Data[int(r)*int(m.Cols)+int(c)] = v
}

// Len returns the number of elements covered by the view.
func (m *Matrix) Len() int {
	return int(m.Rows) * int(m.Cols)
}

// valid reports whether a view is usable as an operand: non-nil view,
// non-nil backing slice, and enough backing elements for its shape.
func valid(m *Matrix) bool {
	return m != nil && m.Data != nil && len(m.Data) >= m.Len()
}
