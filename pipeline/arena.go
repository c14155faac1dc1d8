package pipeline

import (
	"fmt"

	"github.com/williamofai/certifiable-inference/fixed"
)

// alignElems is the region alignment in elements. 16 Q16.16 elements are one
// 64-byte cache line, so distinct regions never share a line.
const alignElems = 16

// alignedLen rounds an element count up to the region alignment.
func alignedLen(n int) int {
	return (n + alignElems - 1) &^ (alignElems - 1)
}

// Region is a named span of the arena, in elements.
type Region struct {
	Name string
	Off  int
	Len  int
}

// arena region names.
const (
	regionWeights = "Weights"
	regionBufA    = "BufA"
	regionBufB    = "BufB"
)

// Arena is the single allocation backing one engine. It is laid out once at
// build time into three regions and never grows:
//
//  1. Weights: immutable layer parameters, filled while building
//  2. BufA:    activation buffer, ping side
//  3. BufB:    activation buffer, pong side
//
// Run-time code borrows slices of these regions; the arena itself performs
// no allocation after construction.
type Arena struct {
	buf     []fixed.Fixed
	regions map[string]Region
}

// newArena lays out an arena with a weights region of weightsLen elements
// and two activation regions of bufLen elements each.
func newArena(weightsLen, bufLen int) (*Arena, error) {
	if weightsLen < 0 || bufLen <= 0 {
		return nil, fmt.Errorf("arena: invalid region sizes (weights %d, buffers %d)", weightsLen, bufLen)
	}

	a := &Arena{regions: make(map[string]Region, 3)}
	off := 0

	layout := func(name string, n int) {
		a.regions[name] = Region{Name: name, Off: off, Len: n}
		off += alignedLen(n)
	}
	layout(regionWeights, weightsLen)
	layout(regionBufA, bufLen)
	layout(regionBufB, bufLen)

	a.buf = make([]fixed.Fixed, off)
	return a, nil
}

// Region returns the named region descriptor.
func (a *Arena) Region(name string) (Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// slice borrows the backing storage of a region. The full region is
// returned; callers sub-slice to the shape they need.
func (a *Arena) slice(name string) []fixed.Fixed {
	r, ok := a.regions[name]
	if !ok {
		return nil
	}
	return a.buf[r.Off : r.Off+r.Len : r.Off+r.Len]
}

// TotalSize returns the arena capacity in elements, including alignment
// padding.
func (a *Arena) TotalSize() int {
	return len(a.buf)
}
