package qsim

import (
	"errors"
	"fmt"
)

// Error taxonomy for the simulation engine. Every one of these is fatal to
// the run it occurs in; nothing is retried.
var (
	// ErrDimensionMismatch reports a state vector or basis index whose size
	// does not match the simulated qubit space.
	ErrDimensionMismatch = errors.New("qsim: state dimension mismatch")

	// ErrUnsupportedOperation reports an operation with no unitary and no
	// decomposition, or a unitary wider than two qubits.
	ErrUnsupportedOperation = errors.New("qsim: unsupported operation")

	// ErrDecompositionCycle reports a gate decomposition that never
	// bottoms out in unitaries.
	ErrDecompositionCycle = errors.New("qsim: decomposition exceeded depth bound")

	// ErrUnresolvedSymbol reports a symbolic parameter with no binding in
	// the active resolver.
	ErrUnresolvedSymbol = errors.New("qsim: unresolved symbol")

	// ErrDegenerateMeasurement reports a measurement whose retained
	// probability mass is too small to renormalize against.
	ErrDegenerateMeasurement = errors.New("qsim: degenerate measurement")

	// ErrWorkerFailure reports that a shard worker failed mid-moment. The
	// engine joins every sibling before surfacing this.
	ErrWorkerFailure = errors.New("qsim: worker failure")

	// ErrStepperExhausted reports an Advance call on a finished stepper.
	ErrStepperExhausted = errors.New("qsim: stepper exhausted")

	// ErrOverlappingMoment reports two operations in one moment touching
	// the same qubit.
	ErrOverlappingMoment = errors.New("qsim: overlapping qubits in moment")

	// ErrConflictingRunOption reports a run option that contradicts the
	// entry point it was passed to, such as WithResolver on a sweep.
	ErrConflictingRunOption = errors.New("qsim: conflicting run option")
)

// WorkerError carries the shard whose worker failed along with the cause.
// It matches both ErrWorkerFailure and the underlying cause under errors.Is.
type WorkerError struct {
	Shard int
	Err   error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("qsim: worker for shard %d failed: %v", e.Shard, e.Err)
}

func (e *WorkerError) Unwrap() []error {
	return []error{ErrWorkerFailure, e.Err}
}
