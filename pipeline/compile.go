package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/williamofai/certifiable-inference/fixed"
	"github.com/williamofai/certifiable-inference/mat"
)

// Compile parses a text pipeline description into a validated Plan.
//
// The format is line-based; '#' starts a comment and blank lines are
// ignored. The first directive must declare the input shape, then each line
// adds one layer:
//
//	input <rows> <cols>
//	conv <krows> <kcols> <w0> <w1> ...   # krows*kcols weights, row-major
//	relu
//	crelu
//	pool
//	dense <out> <w0> <w1> ...            # flattened-in * out weights
//	bias <w0> <w1> ...                   # one weight per element
//
// Weights are decimal literals converted to Q16.16 once, here at compile
// time. The float conversion never runs during inference.
func Compile(src string) (*Plan, error) {
	var (
		inRows, inCols uint16
		haveInput      bool
		layers         []LayerSpec
	)

	for n, raw := range strings.Split(src, "\n") {
		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if !haveInput {
			if fields[0] != "input" {
				return nil, fmt.Errorf("line %d: expected input declaration, got %q", n+1, fields[0])
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: input wants rows and cols", n+1)
			}
			r, err := parseDim(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			c, err := parseDim(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			inRows, inCols, haveInput = r, c, true
			continue
		}

		layer, err := parseLayer(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		layers = append(layers, layer)
	}

	if !haveInput {
		return nil, fmt.Errorf("missing input declaration")
	}
	return NewPlan(inRows, inCols, layers)
}

// parseLayer builds one LayerSpec from a directive line.
func parseLayer(fields []string) (LayerSpec, error) {
	switch fields[0] {
	case "conv":
		if len(fields) < 3 {
			return LayerSpec{}, fmt.Errorf("conv wants krows kcols weights...")
		}
		kr, err := parseDim(fields[1])
		if err != nil {
			return LayerSpec{}, err
		}
		kc, err := parseDim(fields[2])
		if err != nil {
			return LayerSpec{}, err
		}
		w, err := parseWeights(fields[3:])
		if err != nil {
			return LayerSpec{}, err
		}
		return LayerSpec{Kind: OpConv, KRows: kr, KCols: kc, Weights: w}, nil

	case "relu":
		return LayerSpec{Kind: OpActivate, Act: mat.ActReLU}, nil

	case "crelu":
		return LayerSpec{Kind: OpActivate, Act: mat.ActClippedReLU}, nil

	case "pool":
		return LayerSpec{Kind: OpPool}, nil

	case "dense":
		if len(fields) < 2 {
			return LayerSpec{}, fmt.Errorf("dense wants an output width")
		}
		out, err := parseDim(fields[1])
		if err != nil {
			return LayerSpec{}, err
		}
		w, err := parseWeights(fields[2:])
		if err != nil {
			return LayerSpec{}, err
		}
		return LayerSpec{Kind: OpDense, OutCols: out, Weights: w}, nil

	case "bias":
		w, err := parseWeights(fields[1:])
		if err != nil {
			return LayerSpec{}, err
		}
		return LayerSpec{Kind: OpBias, Weights: w}, nil

	default:
		return LayerSpec{}, fmt.Errorf("unknown directive %q", fields[0])
	}
}

// parseDim parses a non-zero dimension that fits uint16.
func parseDim(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("bad dimension %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("dimension must be positive")
	}
	return uint16(v), nil
}

// parseWeights converts decimal literals to Q16.16.
func parseWeights(fields []string) ([]fixed.Fixed, error) {
	w := make([]fixed.Fixed, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad weight %q: %w", f, err)
		}
		w[i] = fixed.FromFloat(v)
	}
	return w, nil
}

// CompileFile compiles a text pipeline description from srcPath and writes
// the binary pipeline to outPath.
func CompileFile(srcPath, outPath string) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	p, err := Compile(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", srcPath, err)
	}
	return p.SaveFile(outPath)
}
