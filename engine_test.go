package qsim

import (
	"context"
	"errors"
	"math/cmplx"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func serialConfig() *Config {
	cfg := NewConfig()
	cfg.ExecutionMode = ExecSerial
	return cfg
}

func shardedConfig(shards int) *Config {
	cfg := NewConfig()
	cfg.ShardCount = shards
	cfg.MinQubitsBeforeSharding = 1
	return cfg
}

func amplitudesClose(a, b []complex128, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if cmplx.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// fourQubitCircuit mixes shard-local gates, single-exchange gates and
// gates spanning two shard bits so every execution path of the engine
// gets exercised.
func fourQubitCircuit() *Circuit {
	q0, q1, q2, q3 := LineQubit(0), LineQubit(1), LineQubit(2), LineQubit(3)
	return NewCircuit(
		MomentOf(Op(H, q0), Op(H, q1), Op(H, q2), Op(H, q3)),
		MomentOf(Op(CNOT, q0, q3), Op(CZ, q1, q2)),
		MomentOf(Op(X, q0), Op(Z, q3)),
		MomentOf(Op(SWAP, q0, q1)),
		MomentOf(Op(Rx(Value(0.3)), q2), Op(Ry(Value(0.7)), q3)),
		MomentOf(Op(T, q0), Op(ISWAP, q2, q3)),
	)
}

func TestShardedEngine(t *testing.T) {
	Convey("Given the same circuit and seed", t, func() {
		circuit := fourQubitCircuit()
		serial, err := NewSimulator(serialConfig()).Simulate(context.Background(), circuit)
		So(err, ShouldBeNil)

		Convey("When run on a few shards", func() {
			sharded, err := NewSimulator(shardedConfig(4)).Simulate(context.Background(), circuit)
			So(err, ShouldBeNil)

			Convey("Then the final states agree amplitude for amplitude", func() {
				So(amplitudesClose(
					serial.FinalState.Amplitudes(),
					sharded.FinalState.Amplitudes(),
					1e-9,
				), ShouldBeTrue)
			})
		})

		Convey("When run on the largest valid power of two, one amplitude per shard", func() {
			sharded, err := NewSimulator(shardedConfig(16)).Simulate(context.Background(), circuit)
			So(err, ShouldBeNil)

			Convey("Then the final states agree amplitude for amplitude", func() {
				So(amplitudesClose(
					serial.FinalState.Amplitudes(),
					sharded.FinalState.Amplitudes(),
					1e-9,
				), ShouldBeTrue)
			})
		})
	})

	Convey("Given a cross-shard flip", t, func() {
		// With four qubits and two shards the first qubit is the shard
		// selector, so X on it must exchange the two halves.
		q0 := LineQubit(0)
		circuit := NewCircuit(
			MomentOf(Op(X, LineQubit(3))),
			MomentOf(Op(X, q0)),
		)
		sim := NewSimulator(shardedConfig(2))

		res, err := sim.Simulate(context.Background(), circuit,
			WithQubitOrder(q0, LineQubit(1), LineQubit(2), LineQubit(3)))

		Convey("Then the amplitude lands in the upper half", func() {
			So(err, ShouldBeNil)
			So(res.FinalState.Probability(0b1001), ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("Then the exchange was counted", func() {
			So(sim.Metrics().CrossShardExchanges, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a shard count that is not a power of two", t, func() {
		state := newState(OrderFor([]Qubit{LineQubit(0), LineQubit(1), LineQubit(2)}, NewCircuit()), Double)
		engine := newEngine(state, shardedConfig(6), newMetrics())

		Convey("Then it rounds down", func() {
			So(engine.Shards(), ShouldEqual, 4)
		})
	})

	Convey("Given a small state space", t, func() {
		cfg := NewConfig()
		cfg.ShardCount = 8
		state := newState(OrderFor([]Qubit{LineQubit(0), LineQubit(1)}, NewCircuit()), Double)
		engine := newEngine(state, cfg, newMetrics())

		Convey("Then sharding is skipped entirely", func() {
			So(engine.Shards(), ShouldEqual, 1)
		})
	})
}

func TestDecomposedGateAcrossShards(t *testing.T) {
	// A Toffoli flattens into H, T and CNOT primitives that do not commute
	// with each other, so the engine must keep their order even when some
	// of them cross the shard boundary and some do not.
	Convey("Given a Toffoli whose expansion straddles the shard bits", t, func() {
		q0, q1, q2 := LineQubit(0), LineQubit(1), LineQubit(2)

		Convey("When both controls are set", func() {
			circuit := NewCircuit(MomentOf(Op(CCX, q0, q1, q2)))

			Convey("Then every shard count flips the target", func() {
				for _, shards := range []int{2, 4, 8} {
					res, err := NewSimulator(shardedConfig(shards)).Simulate(
						context.Background(), circuit, WithInitialBasis(0b110))
					So(err, ShouldBeNil)
					So(res.FinalState.Probability(0b111), ShouldAlmostEqual, 1.0, 1e-9)
				}
			})
		})

		Convey("When it acts on a full superposition", func() {
			circuit := NewCircuit(
				MomentOf(Op(H, q0), Op(H, q1), Op(H, q2)),
				MomentOf(Op(CCX, q0, q1, q2)),
				MomentOf(Op(T, q0)),
			)
			serial, err := NewSimulator(serialConfig()).Simulate(context.Background(), circuit)
			So(err, ShouldBeNil)

			sharded, err := NewSimulator(shardedConfig(2)).Simulate(context.Background(), circuit)
			So(err, ShouldBeNil)

			Convey("Then sharded and serial amplitudes agree", func() {
				So(amplitudesClose(
					serial.FinalState.Amplitudes(),
					sharded.FinalState.Amplitudes(),
					1e-9,
				), ShouldBeTrue)
			})
		})
	})
}

func TestWorkerFailure(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		q0, q1, q2 := LineQubit(0), LineQubit(1), LineQubit(2)
		circuit := NewCircuit(MomentOf(Op(H, q0), Op(H, q1), Op(H, q2)))
		sim := NewSimulator(shardedConfig(4))

		_, err := sim.Simulate(ctx, circuit)

		Convey("Then the run surfaces a worker failure wrapping the cause", func() {
			So(errors.Is(err, ErrWorkerFailure), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)

			var we *WorkerError
			So(errors.As(err, &we), ShouldBeTrue)
		})
	})
}

func TestMomentValidation(t *testing.T) {
	Convey("Given a moment with overlapping qubits", t, func() {
		q0 := LineQubit(0)
		circuit := NewCircuit(MomentOf(Op(X, q0), Op(H, q0)))

		_, err := NewSimulator(nil).Simulate(context.Background(), circuit)

		So(errors.Is(err, ErrOverlappingMoment), ShouldBeTrue)
	})
}
