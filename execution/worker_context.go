// Package execution provides Drift's built-in Instruction set and the machinery
// for running an instruction stack against a list of Partitions.
package execution

import (
	"context"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
)

// workerContext is a Context enhanced with a worker's private map of
// stateful-transform instances. The map is owned exclusively by one worker;
// workerContext only exposes lookups into it.
type workerContext struct {
	context.Context
	transforms map[string]drift.StatefulTransform
}

// NewWorkerContext wraps ctx with access to a worker's stateful-transform
// instances. A nil transforms map produces an ephemeral context suitable for
// running non-stateful instruction stacks inline.
func NewWorkerContext(ctx context.Context, transforms map[string]drift.StatefulTransform) drift.WorkerContext {
	return &workerContext{Context: ctx, transforms: transforms}
}

// Transform returns the worker-local StatefulTransform instance for a named Expression
func (w *workerContext) Transform(name string) (drift.StatefulTransform, error) {
	t, ok := w.transforms[name]
	if !ok {
		return nil, errors.TransformMissingError{Name: name}
	}
	return t, nil
}

// RunStack applies an instruction stack, in order, to a list of input
// Partitions, threading the accumulated Partition list through each
// Instruction.
func RunStack(wctx drift.WorkerContext, instructions []drift.Instruction, inputs []drift.Partition) ([]drift.Partition, error) {
	prev := inputs
	for _, inst := range instructions {
		next, err := inst.RunWorker(wctx, prev)
		if err != nil {
			return nil, err
		}
		prev = next
	}
	return prev, nil
}
