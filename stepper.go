package qsim

import "context"

// StepperStatus tracks where the stepper is in its lifecycle.
type StepperStatus int

const (
	StepperReady StepperStatus = iota // a moment is available to run
	StepperStepping
	StepperDone // terminal; further Advance calls fail
	StepperFailed
)

/*
StepResult is what one moment produced: the measurements that occurred in
exactly that moment (not cumulative) and a reference to the live state
after it.
*/
type StepResult struct {
	MomentIndex  int
	Measurements map[string][]int
	state        *State
}

// State returns the live state after the step, not a copy.
func (r *StepResult) State() *State { return r.state }

/*
Stepper drives a resolved circuit one moment at a time. Each Advance runs
the moment's unitaries through the engine, then its measurements, and
reports both. Between Advance calls the caller may overwrite the state via
SetVector or SetBasis; the stepper does not second-guess an injected state
against prior execution.
*/
type Stepper struct {
	circuit *Circuit
	state   *State
	engine  *Engine
	rng     RandomSource
	eps     float64
	metrics *Metrics

	moment int
	status StepperStatus
	err    error
}

func newStepper(c *Circuit, state *State, engine *Engine, rng RandomSource, eps float64, metrics *Metrics) *Stepper {
	st := &Stepper{
		circuit: c,
		state:   state,
		engine:  engine,
		rng:     rng,
		eps:     eps,
		metrics: metrics,
	}
	if len(c.Moments) == 0 {
		st.status = StepperDone
	}
	return st
}

func (st *Stepper) Status() StepperStatus { return st.status }
func (st *Stepper) State() *State         { return st.state }

// Err returns the failure that moved the stepper to StepperFailed.
func (st *Stepper) Err() error { return st.err }

// SetVector overwrites the state between moments.
func (st *Stepper) SetVector(v []complex128) error { return st.state.SetVector(v) }

// SetBasis resets the state to a computational basis state between moments.
func (st *Stepper) SetBasis(index uint64) error { return st.state.SetBasis(index) }

// Advance executes the current moment and returns its StepResult. Calling
// it on a finished or failed stepper returns ErrStepperExhausted.
func (st *Stepper) Advance(ctx context.Context) (*StepResult, error) {
	if st.status == StepperDone || st.status == StepperFailed {
		return nil, ErrStepperExhausted
	}
	st.status = StepperStepping

	m := st.circuit.Moments[st.moment]
	if err := m.validate(); err != nil {
		return nil, st.fail(err)
	}

	var unitaries, measurements []Operation
	for _, op := range m {
		if _, ok := op.Gate.(MeasureGate); ok {
			measurements = append(measurements, op)
		} else {
			unitaries = append(unitaries, op)
		}
	}

	if err := st.engine.runMoment(ctx, unitaries); err != nil {
		return nil, st.fail(err)
	}

	result := &StepResult{
		MomentIndex:  st.moment,
		Measurements: make(map[string][]int),
		state:        st.state,
	}
	for _, op := range measurements {
		outcome, err := measureOperation(st.state, op, st.rng, st.eps)
		if err != nil {
			return nil, st.fail(err)
		}
		st.metrics.recordMeasurement()
		result.Measurements[op.Gate.(MeasureGate).Key] = outcome
	}

	st.moment++
	if st.moment >= len(st.circuit.Moments) {
		st.status = StepperDone
	} else {
		st.status = StepperReady
	}
	return result, nil
}

func (st *Stepper) fail(err error) error {
	st.status = StepperFailed
	st.err = err
	return err
}
