package execution

import (
	"github.com/go-drift/drift"
	"github.com/go-drift/drift/partition"
)

// projectInstruction applies a stateless projection to each input Partition
type projectInstruction struct {
	projection drift.ExpressionsProjection
}

// Project returns an Instruction which applies a stateless ExpressionsProjection
// to each input Partition, producing one output Partition per input
func Project(projection drift.ExpressionsProjection) drift.Instruction {
	return &projectInstruction{projection: projection}
}

// Name identifies this kind of Instruction
func (s *projectInstruction) Name() string {
	return "project"
}

// RunWorker applies this Instruction to a list of Partitions
func (s *projectInstruction) RunWorker(wctx drift.WorkerContext, previous []drift.Partition) ([]drift.Partition, error) {
	next := make([]drift.Partition, 0, len(previous))
	for _, part := range previous {
		cols := make([]drift.Column, 0, s.projection.Len())
		for _, e := range s.projection.Expressions() {
			col, err := e.Eval(part)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
		out, err := partition.FromColumnList(cols)
		if err != nil {
			return nil, err
		}
		next = append(next, out)
	}
	return next, nil
}

// statefulProjectInstruction applies a projection whose stateful Expressions are
// evaluated through the executing worker's private transform instances
type statefulProjectInstruction struct {
	projection drift.ExpressionsProjection
}

// StatefulProject returns an Instruction which applies an ExpressionsProjection
// to each input Partition, routing stateful Expressions through the worker-local
// instances exposed by the WorkerContext. State mutation is threaded through
// calls to the same instance for the lifetime of the worker.
func StatefulProject(projection drift.ExpressionsProjection) drift.Instruction {
	return &statefulProjectInstruction{projection: projection}
}

// Name identifies this kind of Instruction
func (s *statefulProjectInstruction) Name() string {
	return "stateful_project"
}

// RunWorker applies this Instruction to a list of Partitions
func (s *statefulProjectInstruction) RunWorker(wctx drift.WorkerContext, previous []drift.Partition) ([]drift.Partition, error) {
	next := make([]drift.Partition, 0, len(previous))
	for _, part := range previous {
		cols := make([]drift.Column, 0, s.projection.Len())
		for _, e := range s.projection.Expressions() {
			var col drift.Column
			var err error
			if e.IsStateful() {
				var transform drift.StatefulTransform
				transform, err = wctx.Transform(e.Name())
				if err != nil {
					return nil, err
				}
				col, err = transform.Eval(part)
			} else {
				col, err = e.Eval(part)
			}
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
		out, err := partition.FromColumnList(cols)
		if err != nil {
			return nil, err
		}
		next = append(next, out)
	}
	return next, nil
}
