// Package pipeline composes the deterministic numeric kernels into
// pre-planned inference pipelines.
//
// A pipeline is declared as an ordered list of layers (convolution,
// activation, pooling, dense, bias). Building a Plan resolves every
// intermediate feature-map shape up front and rejects incompatible layers
// with an error, so the execution path never hits a dimension failure. An
// Engine then lays out a single arena (immutable weights plus two
// ping-pong activation buffers) and executes the steps in a fixed order
// with no allocation, no I/O, and a cost bounded by the planned shapes.
//
// Plans serialize to a compact binary form (and a gob fallback) and can be
// compiled from a small text description; see serialize.go and compile.go.
// All floating-point literals are converted to Q16.16 once, at build or
// compile time, never during execution.
package pipeline

import (
	"fmt"

	"github.com/williamofai/certifiable-inference/fixed"
	"github.com/williamofai/certifiable-inference/mat"
)

// OpKind identifies a pipeline layer operation.
type OpKind uint8

const (
	// OpConv is a valid, stride-1 2-D convolution with a fixed kernel.
	OpConv OpKind = iota + 1

	// OpActivate applies one of the closed activation set in place.
	OpActivate

	// OpPool is fixed 2x2/stride-2 max pooling.
	OpPool

	// OpDense flattens the current feature map to a row vector and
	// multiplies it by a weight matrix.
	OpDense

	// OpBias adds a constant matrix element-wise.
	OpBias
)

// String returns the layer kind's text name, which is also its spelling in
// the text pipeline format.
func (k OpKind) String() string {
	switch k {
	case OpConv:
		return "conv"
	case OpActivate:
		return "activate"
	case OpPool:
		return "pool"
	case OpDense:
		return "dense"
	case OpBias:
		return "bias"
	default:
		return "unknown"
	}
}

// LayerSpec declares one pipeline layer. Which fields matter depends on
// Kind:
//
//   - OpConv: KRows, KCols and Weights (KRows*KCols kernel elements)
//   - OpActivate: Act
//   - OpPool: nothing
//   - OpDense: OutCols and Weights (inElements*OutCols, row-major)
//   - OpBias: Weights (one element per current feature-map element)
type LayerSpec struct {
	Kind    OpKind
	Act     mat.Activation
	KRows   uint16
	KCols   uint16
	OutCols uint16
	Weights []fixed.Fixed
}

// step is a layer with its shapes resolved and its weight view bound.
type step struct {
	kind    OpKind
	act     mat.Activation
	weight  mat.Matrix // bound to the arena weights region by the engine
	wOff    int        // offset of this step's weights within the region
	inRows  uint16
	inCols  uint16
	outRows uint16
	outCols uint16
}

// Plan is a validated pipeline: input shape, per-step shapes, and the arena
// budget. A Plan is immutable once built and safe to share across engines.
type Plan struct {
	InRows uint16
	InCols uint16

	layers     []LayerSpec
	steps      []step
	weightsLen int
	bufLen     int
}

// NewPlan resolves shapes for the given input dimensions and layers. Every
// shape incompatibility is reported at build time; a Plan that builds
// cleanly cannot hit a kernel dimension failure during Run.
func NewPlan(inRows, inCols uint16, layers []LayerSpec) (*Plan, error) {
	if inRows == 0 || inCols == 0 {
		return nil, fmt.Errorf("plan: input shape %dx%d is empty", inRows, inCols)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("plan: no layers")
	}

	p := &Plan{
		InRows: inRows,
		InCols: inCols,
		layers: layers,
		steps:  make([]step, 0, len(layers)),
	}

	rows, cols := inRows, inCols
	maxElems := int(inRows) * int(inCols)
	wOff := 0

	for i, l := range layers {
		s := step{kind: l.Kind, act: l.Act, inRows: rows, inCols: cols, wOff: wOff}

		switch l.Kind {
		case OpConv:
			if l.KRows == 0 || l.KCols == 0 {
				return nil, fmt.Errorf("plan: layer %d: empty conv kernel", i)
			}
			if l.KRows > rows || l.KCols > cols {
				return nil, fmt.Errorf("plan: layer %d: %dx%d kernel exceeds %dx%d input",
					i, l.KRows, l.KCols, rows, cols)
			}
			if want := int(l.KRows) * int(l.KCols); len(l.Weights) != want {
				return nil, fmt.Errorf("plan: layer %d: conv needs %d weights, got %d",
					i, want, len(l.Weights))
			}
			s.outRows = rows - l.KRows + 1
			s.outCols = cols - l.KCols + 1
			s.weight = mat.Matrix{Rows: l.KRows, Cols: l.KCols}
			wOff += len(l.Weights)

		case OpActivate:
			s.outRows, s.outCols = rows, cols

		case OpPool:
			if rows < 2 || cols < 2 {
				return nil, fmt.Errorf("plan: layer %d: cannot pool %dx%d input", i, rows, cols)
			}
			s.outRows = rows / 2
			s.outCols = cols / 2

		case OpDense:
			if l.OutCols == 0 {
				return nil, fmt.Errorf("plan: layer %d: dense output width is zero", i)
			}
			in := int(rows) * int(cols)
			if in > int(^uint16(0)) {
				return nil, fmt.Errorf("plan: layer %d: flattened input %d exceeds dimension range", i, in)
			}
			if want := in * int(l.OutCols); len(l.Weights) != want {
				return nil, fmt.Errorf("plan: layer %d: dense needs %d weights, got %d",
					i, want, len(l.Weights))
			}
			s.outRows = 1
			s.outCols = l.OutCols
			s.weight = mat.Matrix{Rows: uint16(in), Cols: l.OutCols}
			wOff += len(l.Weights)

		case OpBias:
			if want := int(rows) * int(cols); len(l.Weights) != want {
				return nil, fmt.Errorf("plan: layer %d: bias needs %d weights, got %d",
					i, want, len(l.Weights))
			}
			s.outRows, s.outCols = rows, cols
			s.weight = mat.Matrix{Rows: rows, Cols: cols}
			wOff += len(l.Weights)

		default:
			return nil, fmt.Errorf("plan: layer %d: unknown kind %d", i, l.Kind)
		}

		rows, cols = s.outRows, s.outCols
		if n := int(rows) * int(cols); n > maxElems {
			maxElems = n
		}
		p.steps = append(p.steps, s)
	}

	p.weightsLen = wOff
	p.bufLen = maxElems
	return p, nil
}

// OutRows and OutCols report the final feature-map shape.
func (p *Plan) OutRows() uint16 { return p.steps[len(p.steps)-1].outRows }

// OutCols reports the final feature-map width.
func (p *Plan) OutCols() uint16 { return p.steps[len(p.steps)-1].outCols }

// OutLen reports the number of output elements.
func (p *Plan) OutLen() int { return int(p.OutRows()) * int(p.OutCols()) }

// InLen reports the number of input elements.
func (p *Plan) InLen() int { return int(p.InRows) * int(p.InCols) }

// StepCount returns the number of resolved steps.
func (p *Plan) StepCount() int { return len(p.steps) }

// Layers returns the layer declarations the plan was built from.
func (p *Plan) Layers() []LayerSpec { return p.layers }
