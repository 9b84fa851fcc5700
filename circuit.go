package qsim

import (
	"fmt"
	"sort"
)

/*
Moment is one time-step of a circuit: a set of operations whose qubit sets
are pairwise disjoint, so they are simultaneous by construction. The
builder owns that invariant; the engine still validates it defensively
before touching the state.
*/
type Moment []Operation

// MomentOf groups operations into a moment.
func MomentOf(ops ...Operation) Moment { return Moment(ops) }

func (m Moment) validate() error {
	seen := make(map[string]bool)
	for _, op := range m {
		for _, q := range op.Qubits {
			if seen[q.Key()] {
				return fmt.Errorf("%w: qubit %s in %s", ErrOverlappingMoment, q.Key(), op)
			}
			seen[q.Key()] = true
		}
	}
	return nil
}

// Circuit is an ordered sequence of moments.
type Circuit struct {
	Moments []Moment
}

func NewCircuit(moments ...Moment) *Circuit {
	return &Circuit{Moments: moments}
}

// Append adds a moment to the end of the circuit.
func (c *Circuit) Append(m Moment) {
	c.Moments = append(c.Moments, m)
}

// Qubits returns every qubit the circuit touches, in Compare order.
func (c *Circuit) Qubits() []Qubit {
	seen := make(map[string]bool)
	var out []Qubit
	for _, m := range c.Moments {
		for _, op := range m {
			for _, q := range op.Qubits {
				if !seen[q.Key()] {
					seen[q.Key()] = true
					out = append(out, q)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// resolved substitutes every symbolic parameter in the circuit, returning
// a new circuit; the input is never mutated.
func (c *Circuit) resolved(r ParamResolver) (*Circuit, error) {
	out := &Circuit{Moments: make([]Moment, len(c.Moments))}
	for i, m := range c.Moments {
		rm := make(Moment, len(m))
		for j, op := range m {
			rop, err := resolveOperation(op, r)
			if err != nil {
				return nil, err
			}
			rm[j] = rop
		}
		out.Moments[i] = rm
	}
	return out, nil
}
