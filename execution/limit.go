package execution

import (
	"github.com/go-drift/drift"
	"github.com/go-drift/drift/partition"
)

// limitInstruction truncates the stream of Partitions to a total row count
type limitInstruction struct {
	limit int
}

// Limit returns an Instruction which truncates its input to at most limit rows
// in total, preserving Partition boundaries where possible
func Limit(limit int) drift.Instruction {
	return &limitInstruction{limit: limit}
}

// Name identifies this kind of Instruction
func (s *limitInstruction) Name() string {
	return "limit"
}

// RunWorker applies this Instruction to a list of Partitions
func (s *limitInstruction) RunWorker(wctx drift.WorkerContext, previous []drift.Partition) ([]drift.Partition, error) {
	remaining := s.limit
	next := make([]drift.Partition, 0, len(previous))
	for _, part := range previous {
		if remaining <= 0 {
			break
		}
		if part.GetNumRows() <= remaining {
			next = append(next, part)
			remaining -= part.GetNumRows()
			continue
		}
		indices := make([]int, remaining)
		for i := range indices {
			indices[i] = i
		}
		truncated, err := partition.Take(part, indices)
		if err != nil {
			return nil, err
		}
		next = append(next, truncated)
		remaining = 0
	}
	return next, nil
}
