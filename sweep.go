package qsim

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
)

// TrialContext identifies one trial of a sweep: which parameter binding it
// ran under, which repetition it was, and the seed its random source was
// derived from.
type TrialContext struct {
	Params     map[Symbol]float64
	Repetition int
	Seed       uint64
}

// TrialResult is the measurement record of one full circuit run.
type TrialResult struct {
	Context      TrialContext
	Measurements map[string][]int
}

// Run executes the circuit under one resolver for the given number of
// repetitions.
func (s *Simulator) Run(ctx context.Context, c *Circuit, resolver ParamResolver, repetitions int, opts ...RunOption) ([]TrialResult, error) {
	return s.RunSweep(ctx, c, []ParamResolver{resolver}, repetitions, opts...)
}

/*
RunSweep iterates resolver-major, repetition-minor, emitting one
TrialResult per trial in exactly that order. Callers correlate results
positionally, so the ordering is a contract; for the same reason a failing
trial aborts the whole sweep instead of leaving a hole in the output.

Every trial runs on a fresh state and a fresh random source seeded from
the base seed, the resolver index and the repetition index, so sweeps are
reproducible and trials share nothing.
*/
func (s *Simulator) RunSweep(ctx context.Context, c *Circuit, resolvers []ParamResolver, repetitions int, opts ...RunOption) ([]TrialResult, error) {
	rc := newRunConfig(opts)
	if rc.resolverSet {
		return nil, fmt.Errorf("%w: sweeps take resolvers positionally, not WithResolver",
			ErrConflictingRunOption)
	}
	if rc.rng != nil {
		return nil, fmt.Errorf("%w: sweep randomness is derived per trial, not WithRandomSource",
			ErrConflictingRunOption)
	}
	results := make([]TrialResult, 0, len(resolvers)*repetitions)

	for ri, resolver := range resolvers {
		resolved, err := c.resolved(resolver)
		if err != nil {
			return nil, err
		}
		log.Printf("sweep: resolver %d/%d, %d repetitions", ri+1, len(resolvers), repetitions)

		for rep := 0; rep < repetitions; rep++ {
			seed := trialSeed(ri, rep)
			rng := rand.New(rand.NewPCG(s.cfg.Seed, seed))

			state, err := s.prepareState(resolved, rc)
			if err != nil {
				return nil, err
			}
			engine := newEngine(state, s.cfg, s.metrics)
			st := newStepper(resolved, state, engine, rng, s.cfg.epsilon(), s.metrics)

			measurements, err := drain(ctx, st)
			if err != nil {
				return nil, err
			}
			s.metrics.recordTrial()
			results = append(results, TrialResult{
				Context: TrialContext{
					Params:     resolver.Params(),
					Repetition: rep,
					Seed:       seed,
				},
				Measurements: measurements,
			})
		}
	}
	return results, nil
}

func trialSeed(resolverIndex, repetition int) uint64 {
	return uint64(resolverIndex)<<32 | uint64(uint32(repetition))
}

// Histogram counts, across trials, how often each joint outcome appeared
// under the given measurement key. Outcomes are packed most significant
// qubit first.
func Histogram(trials []TrialResult, key string) map[uint64]int {
	counts := make(map[uint64]int)
	for _, t := range trials {
		bits, ok := t.Measurements[key]
		if !ok {
			continue
		}
		var packed uint64
		for _, b := range bits {
			packed = packed<<1 | uint64(b)
		}
		counts[packed]++
	}
	return counts
}
