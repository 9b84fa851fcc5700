package qsim

import (
	"fmt"
	"math"
)

// RandomSource is the explicit randomness a measurement draws from. A
// *rand.Rand from math/rand/v2 satisfies it; trials derive their own
// seeded source so no run depends on process-wide generator state.
type RandomSource interface {
	Float64() float64
}

/*
measureOperation samples a joint outcome for the operation's qubit tuple
and collapses the state onto it. The qubits are sampled together, not
independently: entangled qubits have no independent marginals once the
first draw is made, so the outcome space is the cartesian product of the
per-qubit values. The first qubit in the tuple is the most significant bit
of the outcome.

Collapse zeroes every amplitude inconsistent with the outcome and divides
the rest by the square root of the retained mass. Retained mass below eps
means the draw landed on a numerically dead branch, which is an error
rather than a division by near-zero.
*/
func measureOperation(s *State, op Operation, rng RandomSource, eps float64) ([]int, error) {
	k := len(op.Qubits)
	bitPos := make([]int, k)
	for i, q := range op.Qubits {
		b := s.order.Bit(q)
		if b < 0 {
			return nil, fmt.Errorf("%w: measured qubit %s not in the simulated order",
				ErrDimensionMismatch, q.Key())
		}
		bitPos[i] = b
	}

	probs := make([]float64, 1<<k)
	total := 0.0
	for i, a := range s.amps {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p == 0 {
			continue
		}
		probs[outcomeOf(i, bitPos)] += p
		total += p
	}

	// Cumulative walk over the same additions that produced total, so the
	// final cumulative equals total exactly and the draw always lands.
	r := rng.Float64() * total
	chosen := len(probs) - 1
	cum := 0.0
	for i, p := range probs {
		cum += p
		if r < cum {
			chosen = i
			break
		}
	}

	retained := probs[chosen]
	if retained < eps {
		return nil, fmt.Errorf("%w: outcome %0*b retained mass %g",
			ErrDegenerateMeasurement, k, chosen, retained)
	}

	scale := complex(1/math.Sqrt(retained), 0)
	for i, a := range s.amps {
		if outcomeOf(i, bitPos) == chosen {
			s.amps[i] = a * scale
		} else {
			s.amps[i] = 0
		}
	}

	out := make([]int, k)
	for j := range out {
		out[j] = (chosen >> (k - 1 - j)) & 1
	}
	return out, nil
}

// SampleFinalState draws repeated full basis-state indices from the state
// without collapsing it, as if the whole register were measured on an
// independent copy each repetition. Indices follow the state's qubit
// order, first qubit most significant.
func SampleFinalState(s *State, rng RandomSource, repetitions int) map[uint64]int {
	total := 0.0
	for _, a := range s.amps {
		total += real(a)*real(a) + imag(a)*imag(a)
	}

	counts := make(map[uint64]int, repetitions)
	for rep := 0; rep < repetitions; rep++ {
		r := rng.Float64() * total
		chosen := len(s.amps) - 1
		cum := 0.0
		for i, a := range s.amps {
			cum += real(a)*real(a) + imag(a)*imag(a)
			if r < cum {
				chosen = i
				break
			}
		}
		counts[uint64(chosen)]++
	}
	return counts
}

func outcomeOf(index int, bitPos []int) int {
	k := len(bitPos)
	outcome := 0
	for j, b := range bitPos {
		if index&(1<<b) != 0 {
			outcome |= 1 << (k - 1 - j)
		}
	}
	return outcome
}
