package qsim

import (
	"fmt"
	"math/cmplx"
)

/*
State owns the dense amplitude vector for one run. The vector is length
2^n and mutable in place; during a moment each shard of it is exclusively
owned by one worker, and outside the engine it is only touched by the
caller between moments. It is never shared across repetitions or
parameter assignments.
*/
type State struct {
	amps      []complex128
	numQubits int
	order     *QubitOrder
	precision Precision
}

// newState allocates the ground state |0...0⟩ over the given order.
func newState(order *QubitOrder, precision Precision) *State {
	amps := make([]complex128, 1<<order.Len())
	amps[0] = 1
	return &State{
		amps:      amps,
		numQubits: order.Len(),
		order:     order,
		precision: precision,
	}
}

func (s *State) NumQubits() int     { return s.numQubits }
func (s *State) Order() *QubitOrder { return s.order }
func (s *State) Dimension() int     { return len(s.amps) }

// Amplitudes returns the live vector, not a copy. Mutating it between
// moments is the sanctioned injection point; normalization is then the
// caller's responsibility.
func (s *State) Amplitudes() []complex128 { return s.amps }

// SetVector overwrites the state with a copy of v.
func (s *State) SetVector(v []complex128) error {
	if len(v) != len(s.amps) {
		return fmt.Errorf("%w: got vector of length %d, state dimension is %d",
			ErrDimensionMismatch, len(v), len(s.amps))
	}
	copy(s.amps, v)
	return nil
}

// SetBasis resets the state to the computational basis state with the
// given index under the active qubit order.
func (s *State) SetBasis(index uint64) error {
	if index >= uint64(len(s.amps)) {
		return fmt.Errorf("%w: basis index %d outside dimension %d",
			ErrDimensionMismatch, index, len(s.amps))
	}
	for i := range s.amps {
		s.amps[i] = 0
	}
	s.amps[index] = 1
	return nil
}

// Norm is the total probability mass, 1.0 up to floating-point error for
// any state the engine produced itself.
func (s *State) Norm() float64 {
	var total float64
	for _, a := range s.amps {
		total += real(a)*real(a) + imag(a)*imag(a)
	}
	return total
}

// Probability of the basis state at index.
func (s *State) Probability(index uint64) float64 {
	a := s.amps[index]
	return real(a)*real(a) + imag(a)*imag(a)
}

// Magnitudes returns |amplitude| per basis state, mostly for tests and
// debugging output.
func (s *State) Magnitudes() []float64 {
	out := make([]float64, len(s.amps))
	for i, a := range s.amps {
		out[i] = cmplx.Abs(a)
	}
	return out
}

// Clone copies the state; the copy shares nothing with the original.
func (s *State) Clone() *State {
	amps := make([]complex128, len(s.amps))
	copy(amps, s.amps)
	return &State{
		amps:      amps,
		numQubits: s.numQubits,
		order:     s.order,
		precision: s.precision,
	}
}
