package pipeline

import (
	"fmt"

	"github.com/williamofai/certifiable-inference/fixed"
	"github.com/williamofai/certifiable-inference/mat"
)

// Engine executes a Plan over a pre-laid-out arena. All memory is committed
// at construction; Run performs no allocation and its cost is a function of
// the planned shapes alone.
//
// An Engine is single-threaded by design: one Run call at a time per engine.
// Concurrent inference takes one engine per goroutine (plans are shareable,
// arenas are not).
type Engine struct {
	plan  *Plan
	arena *Arena
	steps []step // plan steps with weight views bound to the arena
}

// NewEngine lays out the arena for p and copies every layer's weights into
// the immutable weights region.
func NewEngine(p *Plan) (*Engine, error) {
	if p == nil || len(p.steps) == 0 {
		return nil, fmt.Errorf("engine: nil or empty plan")
	}

	arena, err := newArena(p.weightsLen, p.bufLen)
	if err != nil {
		return nil, err
	}

	weights := arena.slice(regionWeights)
	e := &Engine{
		plan:  p,
		arena: arena,
		steps: make([]step, len(p.steps)),
	}
	copy(e.steps, p.steps)

	// Steps and layers correspond one to one.
	for i := range e.steps {
		s := &e.steps[i]
		if s.weight.Rows == 0 {
			continue
		}
		w := p.layers[i].Weights
		dst := weights[s.wOff : s.wOff+len(w)]
		copy(dst, w)
		s.weight.Data = dst
	}

	return e, nil
}

// Plan returns the engine's immutable plan.
func (e *Engine) Plan() *Plan { return e.plan }

// Arena returns the engine's arena, for inspection tools.
func (e *Engine) Arena() *Arena { return e.arena }

// Run executes the pipeline over input and writes the final feature map to
// output, returning its shape. input must hold exactly InLen elements and
// output at least OutLen.
func (e *Engine) Run(input, output []fixed.Fixed) (rows, cols uint16, err error) {
	if len(input) != e.plan.InLen() {
		return 0, 0, fmt.Errorf("run: input has %d elements, plan wants %d", len(input), e.plan.InLen())
	}
	if len(output) < e.plan.OutLen() {
		return 0, 0, fmt.Errorf("run: output holds %d elements, plan produces %d", len(output), e.plan.OutLen())
	}

	bufs := [2][]fixed.Fixed{e.arena.slice(regionBufA), e.arena.slice(regionBufB)}
	side := 0

	var cur mat.Matrix
	if st := mat.Init(&cur, bufs[side], e.plan.InRows, e.plan.InCols); st != mat.StatusOK {
		return 0, 0, fmt.Errorf("run: bind input buffer: %s", st)
	}
	copy(cur.Data[:len(input)], input)

	for i := range e.steps {
		s := &e.steps[i]

		switch s.kind {
		case OpActivate:
			// In place; no buffer swap.
			if st := mat.ApplyActivation(&cur, s.act); st != mat.StatusOK {
				return 0, 0, fmt.Errorf("run: step %d (%s %s): %s", i, s.kind, s.act, st)
			}
			continue
		}

		var out mat.Matrix
		if st := mat.Init(&out, bufs[1-side], s.outRows, s.outCols); st != mat.StatusOK {
			return 0, 0, fmt.Errorf("run: step %d (%s): bind output: %s", i, s.kind, st)
		}

		var st mat.Status
		switch s.kind {
		case OpConv:
			st = mat.Conv2DValid(&cur, &s.weight, &out)
		case OpPool:
			st = mat.MaxPool2x2(&cur, &out)
		case OpDense:
			flat := mat.Matrix{Data: cur.Data, Rows: 1, Cols: s.weight.Rows}
			st = mat.Mul(&flat, &s.weight, &out)
		case OpBias:
			st = mat.Add(&cur, &s.weight, &out)
		default:
			return 0, 0, fmt.Errorf("run: step %d: unknown kind %d", i, s.kind)
		}
		if st != mat.StatusOK {
			return 0, 0, fmt.Errorf("run: step %d (%s): %s", i, s.kind, st)
		}

		side = 1 - side
		cur = out
	}

	n := int(cur.Rows) * int(cur.Cols)
	copy(output[:n], cur.Data[:n])
	return cur.Rows, cur.Cols, nil
}
