package qsim

/*
ParamResolver is an immutable binding from symbol names to values. A
circuit is resolved against one before simulation; any symbol the resolver
does not know is a contract error at resolve time, never a silent default.
*/
type ParamResolver struct {
	params map[Symbol]float64
}

// NewParamResolver copies the given bindings; later mutation of the input
// map does not leak into the resolver.
func NewParamResolver(params map[Symbol]float64) ParamResolver {
	copied := make(map[Symbol]float64, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return ParamResolver{params: copied}
}

func (r ParamResolver) Value(s Symbol) (float64, bool) {
	v, ok := r.params[s]
	return v, ok
}

// Params returns a copy of the bindings, for recording in trial contexts.
func (r ParamResolver) Params() map[Symbol]float64 {
	out := make(map[Symbol]float64, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

// resolveOperation substitutes the operation's symbolic parameters.
// Operations without symbols pass through untouched.
func resolveOperation(op Operation, r ParamResolver) (Operation, error) {
	pg, ok := op.Gate.(ParameterizedGate)
	if !ok || len(pg.Symbols()) == 0 {
		return op, nil
	}
	g, err := pg.Resolved(r)
	if err != nil {
		return Operation{}, err
	}
	return Operation{Gate: g, Qubits: op.Qubits}, nil
}
