package qsim

import (
	"fmt"
	"sort"
	"strings"
)

/*
Qubit is an opaque identity used only to fix basis ordering. The engine
never inspects the identity beyond Key (for map lookups) and Compare (the
externally defined total order). Implementations from different packages
coexist as long as Compare is a total order across all of them; the
provided types fall back to comparing keys across types.
*/
type Qubit interface {
	Key() string
	Compare(other Qubit) int
}

// LineQubit is a qubit on an integer line, ordered numerically.
type LineQubit int

func (q LineQubit) Key() string { return fmt.Sprintf("q%d", int(q)) }

func (q LineQubit) Compare(other Qubit) int {
	if o, ok := other.(LineQubit); ok {
		switch {
		case q < o:
			return -1
		case q > o:
			return 1
		}
		return 0
	}
	return strings.Compare(q.Key(), other.Key())
}

// NamedQubit is a qubit identified by an arbitrary name, ordered lexically.
type NamedQubit string

func (q NamedQubit) Key() string { return string(q) }

func (q NamedQubit) Compare(other Qubit) int {
	return strings.Compare(q.Key(), other.Key())
}

/*
QubitOrder fixes which qubit occupies which tensor axis for one run. The
first qubit maps to the most significant bit of the amplitude index, per
the Kronecker convention, so order [a, b] puts |a b⟩ = |10⟩ at index 2.
*/
type QubitOrder struct {
	qubits []Qubit
	index  map[string]int
}

/*
OrderFor builds the run order from an explicit prefix plus the circuit's
qubits. Explicit qubits keep their given positions and are simulated even
when the circuit never touches them; circuit qubits missing from the
prefix are appended in their natural Compare order.
*/
func OrderFor(explicit []Qubit, c *Circuit) *QubitOrder {
	qo := &QubitOrder{index: make(map[string]int)}
	for _, q := range explicit {
		qo.add(q)
	}
	rest := make([]Qubit, 0)
	for _, q := range c.Qubits() {
		if _, ok := qo.index[q.Key()]; !ok {
			rest = append(rest, q)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Compare(rest[j]) < 0 })
	for _, q := range rest {
		qo.add(q)
	}
	return qo
}

func (qo *QubitOrder) add(q Qubit) {
	if _, ok := qo.index[q.Key()]; ok {
		return
	}
	qo.index[q.Key()] = len(qo.qubits)
	qo.qubits = append(qo.qubits, q)
}

func (qo *QubitOrder) Len() int { return len(qo.qubits) }

// Qubits returns the order as a slice, most significant qubit first.
func (qo *QubitOrder) Qubits() []Qubit {
	out := make([]Qubit, len(qo.qubits))
	copy(out, qo.qubits)
	return out
}

// Bit returns the amplitude-index bit position for q, or -1 when q is not
// part of the order. Position 0 is the least significant bit.
func (qo *QubitOrder) Bit(q Qubit) int {
	i, ok := qo.index[q.Key()]
	if !ok {
		return -1
	}
	return len(qo.qubits) - 1 - i
}
