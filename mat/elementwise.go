package mat

import "github.com/williamofai/certifiable-inference/fixed"

// Activation selects one of the closed set of element-wise activations.
// A closed enum dispatched by switch keeps the determinism contract
// statically checkable instead of delegating it to an opaque callable.
type Activation uint8

const (
	// ActIdentity passes elements through unchanged.
	ActIdentity Activation = iota

	// ActReLU rectifies: negative elements become zero.
	ActReLU

	// ActClippedReLU clamps elements to [0, 1.0], the saturating activation
	// used by quantized inference networks.
	ActClippedReLU
)

// String returns the activation's short name.
func (a Activation) String() string {
	switch a {
	case ActIdentity:
		return "identity"
	case ActReLU:
		return "relu"
	case ActClippedReLU:
		return "crelu"
	default:
		return "unknown"
	}
}

// ApplyActivation applies act to every element of m in place, in ascending
// linear offset order. An unknown activation value leaves m unchanged.
func ApplyActivation(m *Matrix, act Activation) Status {
	if !valid(m) {
		return StatusInvalidArgument
	}

	n := m.Len()
	switch act {
	case ActIdentity:
		// Nothing to do; still a defined, O(1) operation.
	case ActReLU:
		for i := 0; i < n; i++ {
			if m.Data[i] < fixed.Zero {
				m.Data[i] = fixed.Zero
			}
		}
	case ActClippedReLU:
		for i := 0; i < n; i++ {
			switch {
			case m.Data[i] < fixed.Zero:
				m.Data[i] = fixed.Zero
			case m.Data[i] > fixed.One:
				m.Data[i] = fixed.One
			}
		}
	default:
		return StatusInvalidArgument
	}
	return StatusOK
}

// Apply applies a caller-supplied scalar function to every element of m in
// place, in ascending linear offset order.
//
// The kernel's determinism guarantee extends exactly as far as fn is pure and
// platform-independent. That is a trust boundary the kernel documents but
// cannot enforce; integrators needing a verifiable pipeline should use
// ApplyActivation instead.
func Apply(m *Matrix, fn func(fixed.Fixed) fixed.Fixed) Status {
	if !valid(m) || fn == nil {
		return StatusInvalidArgument
	}

	n := m.Len()
	for i := 0; i < n; i++ {
		m.Data[i] = fn(m.Data[i])
	}
	return StatusOK
}
