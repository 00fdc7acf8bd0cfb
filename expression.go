package drift

// A StatefulTransform is a worker-resident callable whose internal state persists
// and mutates across invocations. Exactly one instance exists per distinct stateful
// Expression per worker, constructed when the worker initializes and retained for
// the worker's whole lifetime.
type StatefulTransform interface {
	// Eval applies this transform to a Partition, producing a single output Column
	// and potentially mutating the transform's private state.
	Eval(part Partition) (Column, error)
}

// A StatefulTransformFactory constructs a fresh StatefulTransform instance.
// It is invoked exactly once per worker during ActorPool setup.
type StatefulTransformFactory func() (StatefulTransform, error)

// An Expression is a named transform producing one output Column from a Partition.
// A stateless Expression is evaluated directly via Eval. A stateful Expression
// carries a StatefulTransformFactory instead, and is evaluated through the
// worker-local instance obtained from a WorkerContext.
type Expression interface {
	Name() string                       // Name returns the output column name for this Expression
	IsStateful() bool                   // IsStateful returns true iff this Expression is bound to a StatefulTransform
	Eval(part Partition) (Column, error) // Eval evaluates a stateless Expression against a Partition
	Factory() StatefulTransformFactory  // Factory returns the StatefulTransformFactory for a stateful Expression, or nil
}

// An ExpressionsProjection is an ordered set of named Expressions, applied
// together to a Partition to produce a new Partition.
type ExpressionsProjection struct {
	exprs []Expression
}

// CreateProjection assembles an ExpressionsProjection from an ordered list of Expressions
func CreateProjection(exprs ...Expression) ExpressionsProjection {
	return ExpressionsProjection{exprs: exprs}
}

// Expressions returns the Expressions in this projection, in order
func (p ExpressionsProjection) Expressions() []Expression {
	return p.exprs
}

// StatefulExpressions returns just the stateful Expressions in this projection, in order
func (p ExpressionsProjection) StatefulExpressions() []Expression {
	var stateful []Expression
	for _, e := range p.exprs {
		if e.IsStateful() {
			stateful = append(stateful, e)
		}
	}
	return stateful
}

// Len returns the number of Expressions in this projection
func (p ExpressionsProjection) Len() int {
	return len(p.exprs)
}
