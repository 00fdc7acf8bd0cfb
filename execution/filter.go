package execution

import (
	"github.com/go-drift/drift"
	"github.com/go-drift/drift/partition"
)

// filterInstruction retains rows for which a boolean Expression evaluates true
type filterInstruction struct {
	predicate drift.Expression
}

// Filter returns an Instruction which evaluates a stateless boolean Expression
// against each input Partition and retains only the rows where it is true
func Filter(predicate drift.Expression) drift.Instruction {
	return &filterInstruction{predicate: predicate}
}

// Name identifies this kind of Instruction
func (s *filterInstruction) Name() string {
	return "filter"
}

// RunWorker applies this Instruction to a list of Partitions
func (s *filterInstruction) RunWorker(wctx drift.WorkerContext, previous []drift.Partition) ([]drift.Partition, error) {
	next := make([]drift.Partition, 0, len(previous))
	for _, part := range previous {
		col, err := s.predicate.Eval(part)
		if err != nil {
			return nil, err
		}
		mask, err := col.BoolValues()
		if err != nil {
			return nil, err
		}
		keep := make([]int, 0, len(mask))
		for i, m := range mask {
			if m {
				keep = append(keep, i)
			}
		}
		out, err := partition.Take(part, keep)
		if err != nil {
			return nil, err
		}
		next = append(next, out)
	}
	return next, nil
}
