package qsim

import (
	"context"
	"math/bits"

	"golang.org/x/sync/errgroup"
)

/*
Engine distributes one moment's operations across shard workers. The
amplitude vector is split into S contiguous shards selected by the top
log2(S) index bits; each shard is exclusively owned by one worker for the
duration of a moment. Operations whose qubits all map below the shard bits
run fully parallel with no communication. An operation touching one shard
bit pairs the two shards differing in that bit: the upper shard's worker
hands its slice to the lower shard's worker in a blocking rendezvous, the
lower worker applies the unitary across both slices, then releases the
partner. No worker moves on to the next moment until every worker has
finished the current one; errgroup.Wait is that barrier, and it also joins
every sibling before a worker failure propagates, so partial results are
never returned.
*/
type Engine struct {
	state     *State
	cfg       *Config
	metrics   *Metrics
	shards    int
	localBits int
}

func newEngine(state *State, cfg *Config, metrics *Metrics) *Engine {
	n := state.NumQubits()
	shards := 1
	if cfg.ExecutionMode == ExecParallel && n >= cfg.MinQubitsBeforeSharding {
		shards = floorPowerOfTwo(cfg.ShardCount)
		if max := 1 << n; shards > max {
			shards = max
		}
	}
	return &Engine{
		state:     state,
		cfg:       cfg,
		metrics:   metrics,
		shards:    shards,
		localBits: n - bits.TrailingZeros(uint(shards)),
	}
}

func floorPowerOfTwo(v int) int {
	if v < 1 {
		return 1
	}
	return 1 << (bits.Len(uint(v)) - 1)
}

// Shards reports the shard count the engine settled on.
func (e *Engine) Shards() int { return e.shards }

// shardPrim is a primitive scheduled for the worker phase. A zero mask
// means every target bit is local to a shard; a nonzero mask names the
// shard-index bit the primitive exchanges across.
type shardPrim struct {
	primOp
	mask int
}

// runMoment applies the unitary operations of one moment. Measurements are
// not the engine's business; the stepper performs them after this returns.
//
// Primitives coming out of one operation's decomposition do not commute
// with each other, so their flatten order is preserved everywhere: the
// worker phase walks a single ordered sequence (locals and pairwise
// exchanges interleaved as flattened), and a decomposition containing a
// primitive that spans two shard bits is deferred to the coordinator as a
// whole rather than split around the barrier. Reordering across distinct
// operations is safe; a moment's operations touch disjoint qubits.
func (e *Engine) runMoment(ctx context.Context, ops []Operation) error {
	groups := make([][]primOp, 0, len(ops))
	total := 0
	for _, op := range ops {
		var group []primOp
		err := flattenOperation(op, e.state.order, e.cfg.Precision, 0, e.cfg.MaxDecompositionDepth, &group)
		if err != nil {
			return err
		}
		groups = append(groups, group)
		total += len(group)
	}
	if total == 0 {
		e.metrics.recordMoment(0, 0)
		return nil
	}

	amps := e.state.amps
	if e.shards == 1 {
		for _, group := range groups {
			for _, p := range group {
				p.apply(amps, 0, len(amps))
			}
		}
		e.metrics.recordMoment(total, 0)
		return nil
	}

	var seq []shardPrim
	var deferred []primOp
	exchanges := 0
	for _, group := range groups {
		if e.spansTwoShardBits(group) {
			deferred = append(deferred, group...)
			continue
		}
		for _, p := range group {
			sp := shardPrim{primOp: p}
			for _, b := range p.bits {
				if b >= e.localBits {
					sp.mask = 1 << (b - e.localBits)
				}
			}
			if sp.mask != 0 {
				exchanges++
			}
			seq = append(seq, sp)
		}
	}

	// One handoff and one release channel per exchanging prim per upper
	// shard.
	handoff := make([][]chan struct{}, len(seq))
	release := make([][]chan struct{}, len(seq))
	for k, sp := range seq {
		if sp.mask == 0 {
			continue
		}
		handoff[k] = make([]chan struct{}, e.shards)
		release[k] = make([]chan struct{}, e.shards)
		for w := 0; w < e.shards; w++ {
			if w&sp.mask != 0 {
				handoff[k][w] = make(chan struct{})
				release[k][w] = make(chan struct{})
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < e.shards; w++ {
		w := w
		g.Go(func() error {
			if err := e.runShard(gctx, w, seq, handoff, release); err != nil {
				return &WorkerError{Shard: w, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Primitives spanning two shard bits couple four shards at once, which
	// the pairwise protocol cannot express; with every worker joined at the
	// barrier the coordinator owns the whole vector and applies them here,
	// still in flatten order.
	for _, p := range deferred {
		p.apply(amps, 0, len(amps))
	}

	e.metrics.recordMoment(total, exchanges*e.shards/2)
	return nil
}

// spansTwoShardBits reports whether any primitive in the group targets two
// shard-selecting qubits at once.
func (e *Engine) spansTwoShardBits(group []primOp) bool {
	for _, p := range group {
		high := 0
		for _, b := range p.bits {
			if b >= e.localBits {
				high++
			}
		}
		if high > 1 {
			return true
		}
	}
	return false
}

func (e *Engine) runShard(ctx context.Context, w int, seq []shardPrim, handoff, release [][]chan struct{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	amps := e.state.amps
	base := w << e.localBits
	end := base + 1<<e.localBits

	// Every shard has exactly one partner per exchanging prim, and all
	// workers walk the sequence in the same order, so the rendezvous below
	// cannot deadlock; cancellation unblocks both sides through the
	// context.
	for k, sp := range seq {
		if sp.mask == 0 {
			sp.apply(amps, base, end)
			continue
		}
		if w&sp.mask != 0 {
			// Upper shard: hand the slice to the owning partner, then wait
			// for it to come back.
			select {
			case handoff[k][w] <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case <-release[k][w]:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		partner := w | sp.mask
		select {
		case <-handoff[k][partner]:
		case <-ctx.Done():
			return ctx.Err()
		}
		sp.apply(amps, base, end)
		select {
		case release[k][partner] <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
