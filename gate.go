package qsim

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Symbol is a named placeholder for a gate parameter, bound at run time by
// a ParamResolver.
type Symbol string

/*
Param is either a concrete float or a Symbol. Gates carry Params so the
same circuit can be swept over many bindings without rebuilding it.
*/
type Param struct {
	value  float64
	symbol Symbol
}

// Value makes a concrete parameter.
func Value(v float64) Param { return Param{value: v} }

// Sym makes a symbolic parameter resolved later by name.
func Sym(name string) Param { return Param{symbol: Symbol(name)} }

func (p Param) IsSymbolic() bool { return p.symbol != "" }

// Float returns the concrete value. Symbolic params must be resolved first;
// callers guard with IsSymbolic.
func (p Param) Float() float64 { return p.value }

func (p Param) resolve(r ParamResolver) (Param, error) {
	if p.symbol == "" {
		return p, nil
	}
	v, ok := r.Value(p.symbol)
	if !ok {
		return Param{}, fmt.Errorf("%w: %q", ErrUnresolvedSymbol, p.symbol)
	}
	return Param{value: v}, nil
}

func (p Param) String() string {
	if p.symbol != "" {
		return string(p.symbol)
	}
	return fmt.Sprintf("%g", p.value)
}

/*
Gate is the minimal contract every gate meets. Capabilities are optional
interfaces on top of it: a gate exposes a unitary (UnitaryGate), or a
decomposition into smaller operations (DecomposableGate), or is a
measurement. The applicator prefers the unitary when both are present.
*/
type Gate interface {
	// QubitCount is the arity of the gate; -1 means any arity
	// (measurements).
	QubitCount() int
	String() string
}

// UnitaryGate exposes a row-major 2x2 or 4x4 unitary matrix.
type UnitaryGate interface {
	Gate
	Unitary() []complex128
}

// DecomposableGate expands into sub-operations on the given qubits.
type DecomposableGate interface {
	Gate
	Decompose(qubits []Qubit) []Operation
}

// ParameterizedGate carries symbols that a resolver must bind before the
// gate can be applied.
type ParameterizedGate interface {
	Gate
	Symbols() []Symbol
	Resolved(r ParamResolver) (Gate, error)
}

// Operation is a gate bound to an ordered qubit tuple. The first qubit
// maps to the most significant bit of the gate's matrix index.
type Operation struct {
	Gate   Gate
	Qubits []Qubit
}

// Op binds a gate to qubits.
func Op(g Gate, qubits ...Qubit) Operation {
	return Operation{Gate: g, Qubits: qubits}
}

func (op Operation) String() string {
	keys := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		keys[i] = q.Key()
	}
	return fmt.Sprintf("%s(%v)", op.Gate, keys)
}

func expi(theta float64) complex128 {
	return cmplx.Exp(complex(0, theta))
}

/*
XPowGate is X raised to a real exponent, with eigenvalues 1 and e^{iπt}.
XPow(Value(0.5)) is the square root of X; exponent 1 is the Pauli X.
*/
type XPowGate struct{ Exponent Param }

func XPow(e Param) XPowGate { return XPowGate{Exponent: e} }

func (g XPowGate) QubitCount() int { return 1 }
func (g XPowGate) String() string  { return fmt.Sprintf("X**%s", g.Exponent) }

func (g XPowGate) Unitary() []complex128 {
	e := expi(math.Pi * g.Exponent.Float())
	a := (1 + e) / 2
	b := (1 - e) / 2
	return []complex128{a, b, b, a}
}

func (g XPowGate) Symbols() []Symbol { return paramSymbols(g.Exponent) }

func (g XPowGate) Resolved(r ParamResolver) (Gate, error) {
	p, err := g.Exponent.resolve(r)
	if err != nil {
		return nil, err
	}
	return XPowGate{Exponent: p}, nil
}

// YPowGate is Y raised to a real exponent, same eigenvalue convention as X.
type YPowGate struct{ Exponent Param }

func YPow(e Param) YPowGate { return YPowGate{Exponent: e} }

func (g YPowGate) QubitCount() int { return 1 }
func (g YPowGate) String() string  { return fmt.Sprintf("Y**%s", g.Exponent) }

func (g YPowGate) Unitary() []complex128 {
	e := expi(math.Pi * g.Exponent.Float())
	a := (1 + e) / 2
	b := (1 - e) / 2
	return []complex128{a, -1i * b, 1i * b, a}
}

func (g YPowGate) Symbols() []Symbol { return paramSymbols(g.Exponent) }

func (g YPowGate) Resolved(r ParamResolver) (Gate, error) {
	p, err := g.Exponent.resolve(r)
	if err != nil {
		return nil, err
	}
	return YPowGate{Exponent: p}, nil
}

// ZPowGate is Z raised to a real exponent. ZPow(Value(0.5)) is S,
// ZPow(Value(0.25)) is T.
type ZPowGate struct{ Exponent Param }

func ZPow(e Param) ZPowGate { return ZPowGate{Exponent: e} }

func (g ZPowGate) QubitCount() int { return 1 }
func (g ZPowGate) String() string  { return fmt.Sprintf("Z**%s", g.Exponent) }

func (g ZPowGate) Unitary() []complex128 {
	return []complex128{1, 0, 0, expi(math.Pi * g.Exponent.Float())}
}

func (g ZPowGate) Symbols() []Symbol { return paramSymbols(g.Exponent) }

func (g ZPowGate) Resolved(r ParamResolver) (Gate, error) {
	p, err := g.Exponent.resolve(r)
	if err != nil {
		return nil, err
	}
	return ZPowGate{Exponent: p}, nil
}

// HGate is the Hadamard gate.
type HGate struct{}

func (HGate) QubitCount() int { return 1 }
func (HGate) String() string  { return "H" }

func (HGate) Unitary() []complex128 {
	s := complex(1/math.Sqrt2, 0)
	return []complex128{s, s, s, -s}
}

// RxGate rotates about the X axis by Theta radians.
type RxGate struct{ Theta Param }

func Rx(theta Param) RxGate { return RxGate{Theta: theta} }

func (g RxGate) QubitCount() int { return 1 }
func (g RxGate) String() string  { return fmt.Sprintf("Rx(%s)", g.Theta) }

func (g RxGate) Unitary() []complex128 {
	c := complex(math.Cos(g.Theta.Float()/2), 0)
	s := complex(0, -math.Sin(g.Theta.Float()/2))
	return []complex128{c, s, s, c}
}

func (g RxGate) Symbols() []Symbol { return paramSymbols(g.Theta) }

func (g RxGate) Resolved(r ParamResolver) (Gate, error) {
	p, err := g.Theta.resolve(r)
	if err != nil {
		return nil, err
	}
	return RxGate{Theta: p}, nil
}

// RyGate rotates about the Y axis by Theta radians.
type RyGate struct{ Theta Param }

func Ry(theta Param) RyGate { return RyGate{Theta: theta} }

func (g RyGate) QubitCount() int { return 1 }
func (g RyGate) String() string  { return fmt.Sprintf("Ry(%s)", g.Theta) }

func (g RyGate) Unitary() []complex128 {
	c := complex(math.Cos(g.Theta.Float()/2), 0)
	s := complex(math.Sin(g.Theta.Float()/2), 0)
	return []complex128{c, -s, s, c}
}

func (g RyGate) Symbols() []Symbol { return paramSymbols(g.Theta) }

func (g RyGate) Resolved(r ParamResolver) (Gate, error) {
	p, err := g.Theta.resolve(r)
	if err != nil {
		return nil, err
	}
	return RyGate{Theta: p}, nil
}

// RzGate rotates about the Z axis by Theta radians.
type RzGate struct{ Theta Param }

func Rz(theta Param) RzGate { return RzGate{Theta: theta} }

func (g RzGate) QubitCount() int { return 1 }
func (g RzGate) String() string  { return fmt.Sprintf("Rz(%s)", g.Theta) }

func (g RzGate) Unitary() []complex128 {
	return []complex128{expi(-g.Theta.Float() / 2), 0, 0, expi(g.Theta.Float() / 2)}
}

func (g RzGate) Symbols() []Symbol { return paramSymbols(g.Theta) }

func (g RzGate) Resolved(r ParamResolver) (Gate, error) {
	p, err := g.Theta.resolve(r)
	if err != nil {
		return nil, err
	}
	return RzGate{Theta: p}, nil
}

// CZPowGate is the controlled-Z gate raised to a real exponent.
type CZPowGate struct{ Exponent Param }

func CZPow(e Param) CZPowGate { return CZPowGate{Exponent: e} }

func (g CZPowGate) QubitCount() int { return 2 }
func (g CZPowGate) String() string  { return fmt.Sprintf("CZ**%s", g.Exponent) }

func (g CZPowGate) Unitary() []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, expi(math.Pi * g.Exponent.Float()),
	}
}

func (g CZPowGate) Symbols() []Symbol { return paramSymbols(g.Exponent) }

func (g CZPowGate) Resolved(r ParamResolver) (Gate, error) {
	p, err := g.Exponent.resolve(r)
	if err != nil {
		return nil, err
	}
	return CZPowGate{Exponent: p}, nil
}

// CNOTGate flips the second qubit when the first is set.
type CNOTGate struct{}

func (CNOTGate) QubitCount() int { return 2 }
func (CNOTGate) String() string  { return "CNOT" }

func (CNOTGate) Unitary() []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	}
}

// SwapGate exchanges two qubits.
type SwapGate struct{}

func (SwapGate) QubitCount() int { return 2 }
func (SwapGate) String() string  { return "SWAP" }

func (SwapGate) Unitary() []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
}

// ISwapGate swaps two qubits and phases the swapped amplitudes by i.
type ISwapGate struct{}

func (ISwapGate) QubitCount() int { return 2 }
func (ISwapGate) String() string  { return "ISWAP" }

func (ISwapGate) Unitary() []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 0, 1i, 0,
		0, 1i, 0, 0,
		0, 0, 0, 1,
	}
}

/*
CCXGate is the Toffoli gate. It has no direct unitary here (the applicator
only multiplies 1- and 2-qubit matrices) and instead decomposes into the
standard H/T/CNOT sequence.
*/
type CCXGate struct{}

func (CCXGate) QubitCount() int { return 3 }
func (CCXGate) String() string  { return "CCX" }

func (CCXGate) Decompose(qubits []Qubit) []Operation {
	c1, c2, t := qubits[0], qubits[1], qubits[2]
	return []Operation{
		Op(H, t),
		Op(CNOT, c2, t),
		Op(ZPow(Value(-0.25)), t),
		Op(CNOT, c1, t),
		Op(T, t),
		Op(CNOT, c2, t),
		Op(ZPow(Value(-0.25)), t),
		Op(CNOT, c1, t),
		Op(T, c2),
		Op(T, t),
		Op(H, t),
		Op(CNOT, c1, c2),
		Op(T, c1),
		Op(ZPow(Value(-0.25)), c2),
		Op(CNOT, c1, c2),
	}
}

// MeasureGate samples its qubits in the computational basis as one joint
// outcome, recorded under Key.
type MeasureGate struct{ Key string }

// Measure builds a measurement gate for any number of qubits.
func Measure(key string) MeasureGate { return MeasureGate{Key: key} }

func (MeasureGate) QubitCount() int  { return -1 }
func (g MeasureGate) String() string { return fmt.Sprintf("M(%q)", g.Key) }

// The common gates by their usual names.
var (
	X     = XPow(Value(1))
	Y     = YPow(Value(1))
	Z     = ZPow(Value(1))
	S     = ZPow(Value(0.5))
	T     = ZPow(Value(0.25))
	H     = HGate{}
	CZ    = CZPow(Value(1))
	CNOT  = CNOTGate{}
	SWAP  = SwapGate{}
	ISWAP = ISwapGate{}
	CCX   = CCXGate{}
)

func paramSymbols(params ...Param) []Symbol {
	var out []Symbol
	for _, p := range params {
		if p.IsSymbolic() {
			out = append(out, p.symbol)
		}
	}
	return out
}
