package pipeline

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/williamofai/certifiable-inference/fixed"
	"github.com/williamofai/certifiable-inference/mat"
)

// Binary pipeline format (.fxp), little-endian throughout:
//
//	magic   uint32  "FXPL"
//	version uint16
//	inRows  uint16
//	inCols  uint16
//	layers  uint16
//	per layer:
//	  kind     uint8
//	  act      uint8
//	  kRows    uint16
//	  kCols    uint16
//	  outCols  uint16
//	  nWeights uint32
//	  weights  nWeights * int32
const (
	formatMagic   uint32 = 0x4C505846 // "FXPL"
	formatVersion uint16 = 1
)

// Serialize encodes the plan's declaration (input shape and layers) in
// the binary pipeline format. Deserializing re-runs full plan validation,
// so a tampered file cannot produce an unvalidated plan.
func (p *Plan) Serialize() ([]byte, error) {
	var buf bytes.Buffer

	for _, v := range []interface{}{formatMagic, formatVersion, p.InRows, p.InCols, uint16(len(p.layers))} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	for i, l := range p.layers {
		header := []interface{}{
			uint8(l.Kind), uint8(l.Act), l.KRows, l.KCols, l.OutCols, uint32(len(l.Weights)),
		}
		for _, v := range header {
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		}
		for _, w := range l.Weights {
			if err := binary.Write(&buf, binary.LittleEndian, int32(w)); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
		}
	}

	return buf.Bytes(), nil
}

// Deserialize decodes a binary pipeline file and rebuilds the Plan,
// re-validating every layer shape.
func Deserialize(data []byte) (*Plan, error) {
	buf := bytes.NewReader(data)

	var magic uint32
	if err := binary.Read(buf, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != formatMagic {
		return nil, fmt.Errorf("invalid magic number: %#x", magic)
	}

	var version uint16
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported version: %d", version)
	}

	var inRows, inCols, layerCount uint16
	for _, v := range []*uint16{&inRows, &inCols, &layerCount} {
		if err := binary.Read(buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	layers := make([]LayerSpec, layerCount)
	for i := range layers {
		var kind, act uint8
		var kRows, kCols, outCols uint16
		var nWeights uint32

		if err := binary.Read(buf, binary.LittleEndian, &kind); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := binary.Read(buf, binary.LittleEndian, &act); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		for _, v := range []*uint16{&kRows, &kCols, &outCols} {
			if err := binary.Read(buf, binary.LittleEndian, v); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
		}
		if err := binary.Read(buf, binary.LittleEndian, &nWeights); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if int(nWeights) > buf.Len()/4 {
			return nil, fmt.Errorf("layer %d: weight count %d exceeds remaining data", i, nWeights)
		}

		weights := make([]fixed.Fixed, nWeights)
		for j := range weights {
			var w int32
			if err := binary.Read(buf, binary.LittleEndian, &w); err != nil {
				return nil, fmt.Errorf("layer %d weight %d: %w", i, j, err)
			}
			weights[j] = fixed.Fixed(w)
		}

		layers[i] = LayerSpec{
			Kind:    OpKind(kind),
			Act:     mat.Activation(act),
			KRows:   kRows,
			KCols:   kCols,
			OutCols: outCols,
			Weights: weights,
		}
	}

	return NewPlan(inRows, inCols, layers)
}

// planGob mirrors the plan declaration for the gob fallback encoding.
type planGob struct {
	InRows uint16
	InCols uint16
	Layers []LayerSpec
}

// SerializeGob encodes the plan declaration with gob (fallback format).
func (p *Plan) SerializeGob() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(planGob{p.InRows, p.InCols, p.layers}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeGob decodes a gob-encoded plan declaration and rebuilds the
// Plan.
func DeserializeGob(data []byte) (*Plan, error) {
	var pg planGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&pg); err != nil {
		return nil, err
	}
	return NewPlan(pg.InRows, pg.InCols, pg.Layers)
}

// SaveFile writes the plan to path in the binary pipeline format.
func (p *Plan) SaveFile(path string) error {
	data, err := p.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads and validates a binary pipeline file.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Deserialize(data)
}
