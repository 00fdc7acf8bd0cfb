package drift

import (
	"context"
	"log"

	uuid "github.com/gofrs/uuid"
)

// A WorkerContext is a Context enhanced with access to the executing worker's
// private state. Stateful Instructions use it to locate the worker-local
// StatefulTransform instance for an Expression; the instances it exposes are
// owned exclusively by one worker and must never escape it.
type WorkerContext interface {
	context.Context
	Transform(name string) (StatefulTransform, error) // Transform returns the worker-local StatefulTransform instance for a named Expression
}

// An Instruction is a single transform step within a Task, applied in order to
// the accumulated list of Partitions. Stateless and stateful variants share this
// single capability; stateful variants additionally reach worker-local state
// through the WorkerContext.
type Instruction interface {
	Name() string                                                           // Name identifies this kind of Instruction
	RunWorker(wctx WorkerContext, previous []Partition) ([]Partition, error) // RunWorker applies this Instruction to a list of Partitions
}

// A Task is an ordered stack of Instructions to apply to a list of input
// Partitions, plus a hint describing the expected output. A Task is immutable
// once submitted; ownership of the result transfers to the TaskResult handle.
type Task struct {
	ID               string
	Instructions     []Instruction
	Inputs           []Partition
	ExpectedMetadata []PartialPartitionMetadata
}

// CreateTask assembles a Task with a fresh identifier
func CreateTask(instructions []Instruction, inputs []Partition, expected []PartialPartitionMetadata) Task {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Task: %v", err)
	}
	return Task{
		ID:               id.String(),
		Instructions:     instructions,
		Inputs:           inputs,
		ExpectedMetadata: expected,
	}
}
