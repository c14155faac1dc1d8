package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/williamofai/certifiable-inference/fixed"
	"github.com/williamofai/certifiable-inference/mat"
)

func ones(n int) []fixed.Fixed {
	w := make([]fixed.Fixed, n)
	for i := range w {
		w[i] = fixed.One
	}
	return w
}

func fromInts(vs ...int32) []fixed.Fixed {
	w := make([]fixed.Fixed, len(vs))
	for i, v := range vs {
		w[i] = fixed.FromInt(v)
	}
	return w
}

func TestNewPlanShapes(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(16, 16, []LayerSpec{
		{Kind: OpConv, KRows: 3, KCols: 3, Weights: ones(9)},
		{Kind: OpActivate, Act: mat.ActReLU},
		{Kind: OpPool},
	})
	require.NoError(t, err)

	require.Equal(t, uint16(7), p.OutRows())
	require.Equal(t, uint16(7), p.OutCols())
	require.Equal(t, 256, p.InLen())
	require.Equal(t, 3, p.StepCount())
}

func TestNewPlanRejectsBadLayers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		rows   uint16
		cols   uint16
		layers []LayerSpec
	}{
		{"no layers", 4, 4, nil},
		{"empty input", 0, 4, []LayerSpec{{Kind: OpPool}}},
		{"kernel too big", 2, 2, []LayerSpec{
			{Kind: OpConv, KRows: 3, KCols: 3, Weights: ones(9)}}},
		{"wrong conv weight count", 4, 4, []LayerSpec{
			{Kind: OpConv, KRows: 3, KCols: 3, Weights: ones(8)}}},
		{"wrong dense weight count", 2, 2, []LayerSpec{
			{Kind: OpDense, OutCols: 3, Weights: ones(5)}}},
		{"wrong bias weight count", 2, 2, []LayerSpec{
			{Kind: OpBias, Weights: ones(3)}}},
		{"pool too small", 1, 4, []LayerSpec{{Kind: OpPool}}},
		{"unknown kind", 4, 4, []LayerSpec{{Kind: OpKind(42)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.rows, tt.cols, tt.layers)
			require.Error(t, err)
		})
	}
}

func TestEngineRun(t *testing.T) {
	t.Parallel()
	// 4x4 input 1..16, uniform 3x3 kernel, relu, pool, dense to two
	// outputs, bias. Every stage is hand-computable in integers.
	p, err := NewPlan(4, 4, []LayerSpec{
		{Kind: OpConv, KRows: 3, KCols: 3, Weights: ones(9)},
		{Kind: OpActivate, Act: mat.ActReLU},
		{Kind: OpPool},
		{Kind: OpDense, OutCols: 2, Weights: fromInts(1, 2)},
		{Kind: OpBias, Weights: fromInts(1, 1)},
	})
	require.NoError(t, err)

	e, err := NewEngine(p)
	require.NoError(t, err)

	input := make([]fixed.Fixed, 16)
	for i := range input {
		input[i] = fixed.FromInt(int32(i + 1))
	}
	output := make([]fixed.Fixed, p.OutLen())

	rows, cols, err := e.Run(input, output)
	require.NoError(t, err)
	require.Equal(t, uint16(1), rows)
	require.Equal(t, uint16(2), cols)

	// conv: [[54,63],[90,99]]; pool: [[99]]; dense: [99, 198]; bias: +1.
	require.Equal(t, int32(100), output[0].Int())
	require.Equal(t, int32(199), output[1].Int())
}

func TestEngineRunDeterminism(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(8, 8, []LayerSpec{
		{Kind: OpConv, KRows: 3, KCols: 3,
			Weights: fromInts(1, -2, 3, -4, 5, -6, 7, -8, 9)},
		{Kind: OpActivate, Act: mat.ActClippedReLU},
		{Kind: OpPool},
	})
	require.NoError(t, err)
	e, err := NewEngine(p)
	require.NoError(t, err)

	input := make([]fixed.Fixed, 64)
	for i := range input {
		input[i] = fixed.FromFloat(float64(i%7)*0.25 - 0.75)
	}

	ref := make([]fixed.Fixed, p.OutLen())
	_, _, err = e.Run(input, ref)
	require.NoError(t, err)

	out := make([]fixed.Fixed, p.OutLen())
	for i := 0; i < 100; i++ {
		_, _, err := e.Run(input, out)
		require.NoError(t, err)
		require.Equal(t, ref, out, "iteration %d", i)
	}

	// A second engine built from the same plan lives at different
	// addresses and must still produce the identical bits.
	e2, err := NewEngine(p)
	require.NoError(t, err)
	_, _, err = e2.Run(input, out)
	require.NoError(t, err)
	require.Equal(t, ref, out)
}

func TestEngineRunRejectsBadSizes(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(4, 4, []LayerSpec{{Kind: OpPool}})
	require.NoError(t, err)
	e, err := NewEngine(p)
	require.NoError(t, err)

	out := make([]fixed.Fixed, p.OutLen())
	_, _, err = e.Run(make([]fixed.Fixed, 15), out)
	require.Error(t, err)

	_, _, err = e.Run(make([]fixed.Fixed, 16), make([]fixed.Fixed, 3))
	require.Error(t, err)
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(6, 6, []LayerSpec{
		{Kind: OpConv, KRows: 2, KCols: 2, Weights: fromInts(1, 2, 3, 4)},
		{Kind: OpActivate, Act: mat.ActReLU},
		{Kind: OpPool},
		{Kind: OpDense, OutCols: 3, Weights: ones(4 * 3)},
	})
	require.NoError(t, err)

	data, err := p.Serialize()
	require.NoError(t, err)

	p2, err := Deserialize(data)
	require.NoError(t, err)

	require.Equal(t, p.InRows, p2.InRows)
	require.Equal(t, p.InCols, p2.InCols)
	if diff := cmp.Diff(p.Layers(), p2.Layers()); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserializeRejectsCorruptData(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(4, 4, []LayerSpec{{Kind: OpPool}})
	require.NoError(t, err)
	data, err := p.Serialize()
	require.NoError(t, err)

	_, err = Deserialize(nil)
	require.Error(t, err)

	bad := append([]byte(nil), data...)
	bad[0] ^= 0xFF // break the magic
	_, err = Deserialize(bad)
	require.Error(t, err)

	_, err = Deserialize(data[:len(data)-1])
	require.Error(t, err)
}

func TestGobRoundTrip(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(4, 4, []LayerSpec{
		{Kind: OpConv, KRows: 2, KCols: 2, Weights: fromInts(0, 1, 1, 0)},
		{Kind: OpPool},
	})
	require.NoError(t, err)

	data, err := p.SerializeGob()
	require.NoError(t, err)
	p2, err := DeserializeGob(data)
	require.NoError(t, err)

	require.Equal(t, p.InRows, p2.InRows)
	if diff := cmp.Diff(p.Layers(), p2.Layers()); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()
	p, err := NewPlan(4, 4, []LayerSpec{{Kind: OpActivate, Act: mat.ActReLU}})
	require.NoError(t, err)

	path := t.TempDir() + "/plan.fxp"
	require.NoError(t, p.SaveFile(path))

	p2, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, p.InRows, p2.InRows)
	require.Equal(t, p.StepCount(), p2.StepCount())
}

func TestCompile(t *testing.T) {
	t.Parallel()
	src := `
# toy classifier
input 4 4
conv 2 2  1 0  0 1
relu
pool
`
	p, err := Compile(src)
	require.NoError(t, err)
	require.Equal(t, uint16(4), p.InRows)
	require.Equal(t, 3, p.StepCount())
	require.Equal(t, uint16(1), p.OutRows())
	require.Equal(t, uint16(1), p.OutCols())
}

func TestCompileMatchesHandBuiltPlan(t *testing.T) {
	t.Parallel()
	src := "input 2 2\ndense 1 0.5 0.5 0.5 0.5"
	p, err := Compile(src)
	require.NoError(t, err)

	e, err := NewEngine(p)
	require.NoError(t, err)

	input := fromInts(1, 2, 3, 4)
	out := make([]fixed.Fixed, 1)
	_, _, err = e.Run(input, out)
	require.NoError(t, err)
	// 0.5 * (1+2+3+4) = 5.0 exactly.
	require.Equal(t, fixed.FromInt(5), out[0])
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no input", "pool"},
		{"bad input dims", "input 0 4\npool"},
		{"unknown directive", "input 4 4\nwarp 9"},
		{"bad weight literal", "input 4 4\nconv 2 2 a b c d"},
		{"missing conv dims", "input 4 4\nconv 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			require.Error(t, err)
		})
	}
}
