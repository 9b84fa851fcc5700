package qsim

import "fmt"

/*
primOp is an operation flattened to something the kernels can multiply
directly: a 2x2 or 4x4 matrix at the active precision plus the global bit
positions of its target qubits, first qubit first (most significant bit of
the matrix index).
*/
type primOp struct {
	u    []complex128
	bits []int
}

/*
flattenOperation reduces op to primitive ops, expanding decompositions
recursively. Dispatch prefers a direct unitary over a decomposition so a
gate carrying both is never expanded redundantly. Expansion past maxDepth
is treated as a cycle.
*/
func flattenOperation(op Operation, order *QubitOrder, precision Precision, depth, maxDepth int, out *[]primOp) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: expanding %s past depth %d", ErrDecompositionCycle, op, maxDepth)
	}
	g := op.Gate
	if pg, ok := g.(ParameterizedGate); ok && len(pg.Symbols()) > 0 {
		return fmt.Errorf("%w: %s reached the applicator unresolved", ErrUnresolvedSymbol, op)
	}
	if want := g.QubitCount(); want >= 0 && want != len(op.Qubits) {
		return fmt.Errorf("%w: %s wants %d qubits, got %d",
			ErrUnsupportedOperation, g, want, len(op.Qubits))
	}

	if ug, ok := g.(UnitaryGate); ok && len(op.Qubits) <= 2 {
		dim := 1 << len(op.Qubits)
		u := ug.Unitary()
		if len(u) != dim*dim {
			return fmt.Errorf("%w: %s exposes a %d-entry matrix for %d qubits",
				ErrUnsupportedOperation, g, len(u), len(op.Qubits))
		}
		bits := make([]int, len(op.Qubits))
		for i, q := range op.Qubits {
			b := order.Bit(q)
			if b < 0 {
				return fmt.Errorf("%w: qubit %s not in the simulated order",
					ErrDimensionMismatch, q.Key())
			}
			bits[i] = b
		}
		*out = append(*out, primOp{u: precision.convert(u), bits: bits})
		return nil
	}

	if dg, ok := g.(DecomposableGate); ok {
		for _, sub := range dg.Decompose(op.Qubits) {
			if err := flattenOperation(sub, order, precision, depth+1, maxDepth, out); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %s has neither a unitary nor a decomposition",
		ErrUnsupportedOperation, g)
}

// apply multiplies the op into amps over the index range [start, end).
// Indices whose target bits are set are reached from their cleared-bit
// partners, so for cross-shard application the range is the owning (lower)
// shard and partner indices land in the paired shard's slice of the same
// backing array.
func (p primOp) apply(amps []complex128, start, end int) {
	if len(p.bits) == 1 {
		apply1(amps, p.u, p.bits[0], start, end)
		return
	}
	apply2(amps, p.u, p.bits[0], p.bits[1], start, end)
}

func apply1(amps, u []complex128, bit, start, end int) {
	mask := 1 << bit
	for i := start; i < end; i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := amps[i], amps[j]
		amps[i] = u[0]*a0 + u[1]*a1
		amps[j] = u[2]*a0 + u[3]*a1
	}
}

func apply2(amps, u []complex128, b0, b1, start, end int) {
	m0 := 1 << b0
	m1 := 1 << b1
	for i := start; i < end; i++ {
		if i&m0 != 0 || i&m1 != 0 {
			continue
		}
		i01 := i | m1
		i10 := i | m0
		i11 := i | m0 | m1
		a00, a01, a10, a11 := amps[i], amps[i01], amps[i10], amps[i11]
		amps[i] = u[0]*a00 + u[1]*a01 + u[2]*a10 + u[3]*a11
		amps[i01] = u[4]*a00 + u[5]*a01 + u[6]*a10 + u[7]*a11
		amps[i10] = u[8]*a00 + u[9]*a01 + u[10]*a10 + u[11]*a11
		amps[i11] = u[12]*a00 + u[13]*a01 + u[14]*a10 + u[15]*a11
	}
}
