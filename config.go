package qsim

import "runtime"

// Precision selects the complex floating-point width gate matrices are
// converted to before they are multiplied into the state.
type Precision int

const (
	// Double keeps matrices at complex128.
	Double Precision = iota
	// Single rounds every matrix entry through complex64 before use.
	Single
)

// ExecutionMode selects how a moment's work is scheduled.
type ExecutionMode int

const (
	// ExecParallel runs one goroutine per shard.
	ExecParallel ExecutionMode = iota
	// ExecSerial applies everything in-line on a single shard.
	ExecSerial
)

// Config carries the tunables for a Simulator.
type Config struct {
	// ShardCount is the target number of shards. It is rounded down to a
	// power of two and capped at the state dimension.
	ShardCount int

	// MinQubitsBeforeSharding disables sharding below this qubit count,
	// where coordination overhead dominates the arithmetic.
	MinQubitsBeforeSharding int

	Precision     Precision
	ExecutionMode ExecutionMode

	// Seed is the base seed trial random sources are derived from.
	Seed uint64

	// MaxDecompositionDepth bounds recursive gate expansion.
	MaxDecompositionDepth int

	// MeasurementEpsilon is the minimum probability mass a measurement may
	// retain. Zero selects a default appropriate for the precision.
	MeasurementEpsilon float64
}

func NewConfig() *Config {
	return &Config{
		ShardCount:              runtime.GOMAXPROCS(0),
		MinQubitsBeforeSharding: 10,
		Precision:               Double,
		ExecutionMode:           ExecParallel,
		MaxDecompositionDepth:   64,
	}
}

func (c *Config) epsilon() float64 {
	if c.MeasurementEpsilon > 0 {
		return c.MeasurementEpsilon
	}
	if c.Precision == Single {
		return 1e-6
	}
	return 1e-12
}

// convert rounds a gate matrix to the active precision. Double is the
// identity; Single truncates each entry through complex64.
func (p Precision) convert(m []complex128) []complex128 {
	if p == Double {
		return m
	}
	out := make([]complex128, len(m))
	for i, v := range m {
		out[i] = complex128(complex64(v))
	}
	return out
}
