package qsim

import (
	"context"
	"math/rand/v2"

	"github.com/theapemachine/errnie"
)

/*
Simulator is the entry point: it evolves circuits by exact state-vector
simulation, sharded across parallel workers when the state is large enough
to pay for the coordination. One Simulator can serve many runs; each run
gets a fresh state and random source, so trials share nothing.
*/
type Simulator struct {
	cfg     *Config
	metrics *Metrics
}

func NewSimulator(cfg *Config) *Simulator {
	if cfg == nil {
		cfg = NewConfig()
	}
	errnie.Info(
		"NewSimulator - shards %v, minQubits %v, precision %v",
		cfg.ShardCount,
		cfg.MinQubitsBeforeSharding,
		cfg.Precision,
	)
	return &Simulator{cfg: cfg, metrics: newMetrics()}
}

// Metrics returns a snapshot of the simulator's cumulative counters.
func (s *Simulator) Metrics() MetricsSnapshot { return s.metrics.Snapshot() }

type runConfig struct {
	resolver      ParamResolver
	resolverSet   bool
	order         []Qubit
	initialVector []complex128
	initialBasis  *uint64
	rng           RandomSource
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithResolver binds symbolic parameters for the run. Sweeps take their
// resolvers positionally and reject this option.
func WithResolver(r ParamResolver) RunOption {
	return func(rc *runConfig) { rc.resolver = r; rc.resolverSet = true }
}

// WithQubitOrder fixes the leading qubits of the basis ordering. Listed
// qubits are simulated even if the circuit never touches them; unlisted
// circuit qubits are appended in their natural order.
func WithQubitOrder(qubits ...Qubit) RunOption {
	return func(rc *runConfig) { rc.order = qubits }
}

// WithInitialVector starts the run from a caller-supplied full vector.
// Normalization is the caller's responsibility.
func WithInitialVector(v []complex128) RunOption {
	return func(rc *runConfig) { rc.initialVector = v }
}

// WithInitialBasis starts the run from a computational basis state.
func WithInitialBasis(index uint64) RunOption {
	return func(rc *runConfig) { rc.initialBasis = &index }
}

// WithRandomSource supplies the randomness measurements draw from. Sweeps
// derive an independent source per trial and reject this option.
func WithRandomSource(rng RandomSource) RunOption {
	return func(rc *runConfig) { rc.rng = rng }
}

func newRunConfig(opts []RunOption) *runConfig {
	rc := &runConfig{resolver: NewParamResolver(nil)}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Stepper prepares a moment-by-moment run of the circuit.
func (s *Simulator) Stepper(c *Circuit, opts ...RunOption) (*Stepper, error) {
	rc := newRunConfig(opts)
	resolved, err := c.resolved(rc.resolver)
	if err != nil {
		return nil, err
	}
	state, err := s.prepareState(resolved, rc)
	if err != nil {
		return nil, err
	}
	rng := rc.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(s.cfg.Seed, 0))
	}
	engine := newEngine(state, s.cfg, s.metrics)
	return newStepper(resolved, state, engine, rng, s.cfg.epsilon(), s.metrics), nil
}

// SimulationResult is a full run's final state plus every measurement it
// made, keyed by measurement key.
type SimulationResult struct {
	FinalState   *State
	Measurements map[string][]int
}

// Simulate runs the circuit to completion and returns the final state
// without sampling it; measurements inside the circuit still collapse as
// they are reached.
func (s *Simulator) Simulate(ctx context.Context, c *Circuit, opts ...RunOption) (*SimulationResult, error) {
	st, err := s.Stepper(c, opts...)
	if err != nil {
		return nil, err
	}
	measurements, err := drain(ctx, st)
	if err != nil {
		return nil, err
	}
	return &SimulationResult{FinalState: st.State(), Measurements: measurements}, nil
}

func (s *Simulator) prepareState(resolved *Circuit, rc *runConfig) (*State, error) {
	order := OrderFor(rc.order, resolved)
	state := newState(order, s.cfg.Precision)
	if rc.initialVector != nil {
		if err := state.SetVector(rc.initialVector); err != nil {
			return nil, err
		}
	} else if rc.initialBasis != nil {
		if err := state.SetBasis(*rc.initialBasis); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// drain advances a stepper to completion, merging per-moment measurements.
func drain(ctx context.Context, st *Stepper) (map[string][]int, error) {
	merged := make(map[string][]int)
	for st.Status() != StepperDone {
		step, err := st.Advance(ctx)
		if err != nil {
			return nil, err
		}
		for key, outcome := range step.Measurements {
			merged[key] = outcome
		}
	}
	return merged, nil
}
