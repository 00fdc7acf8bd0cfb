package errors

import (
	"fmt"
)

// ResourceExhaustionError occurs when admission control rejects a pool-creation
// request because the total requested resources exceed node capacity in at least
// one dimension. The message names the requested and available quantities for
// the violating dimension.
type ResourceExhaustionError struct {
	Resource  string
	Requested float64
	Available float64
}

// Error returns a textual representation of this ResourceExhaustionError
func (e ResourceExhaustionError) Error() string {
	return fmt.Sprintf("Requested %v %s but found only %v available", e.Requested, e.Resource, e.Available)
}

// WorkerExecutionError occurs when a Task's instruction stack fails during
// execution on a worker. It is delivered through the Task's result handle and
// does not affect the pool or other workers' in-flight Tasks.
type WorkerExecutionError struct {
	TaskID      string
	Instruction string
	Cause       error
}

// Error returns a textual representation of this WorkerExecutionError
func (e WorkerExecutionError) Error() string {
	return fmt.Sprintf("Task %s failed in instruction %s: %v", e.TaskID, e.Instruction, e.Cause)
}

// Unwrap returns the underlying cause of this WorkerExecutionError
func (e WorkerExecutionError) Unwrap() error {
	return e.Cause
}

// SetupError occurs when a worker's initializer fails during ActorPool setup.
// The whole pool-creation call fails and no partially-initialized pool is exposed.
type SetupError struct {
	PoolName string
	Cause    error
}

// Error returns a textual representation of this SetupError
func (e SetupError) Error() string {
	return fmt.Sprintf("Setup of actor pool %s failed: %v", e.PoolName, e.Cause)
}

// Unwrap returns the underlying cause of this SetupError
func (e SetupError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError occurs when the datasource layer is asked to read or
// write an unrecognized format. It is raised eagerly, before any data is touched.
type UnsupportedFormatError struct {
	Format string
}

// Error returns a textual representation of this UnsupportedFormatError
func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported datasource format %q", e.Format)
}

// PoolNotSetupError occurs when a Task is submitted to an ActorPool before Setup has succeeded
type PoolNotSetupError struct {
	PoolName string
}

// Error returns a textual representation of this PoolNotSetupError
func (e PoolNotSetupError) Error() string {
	return fmt.Sprintf("Actor pool %s has not been set up", e.PoolName)
}

// PoolTornDownError occurs when a Task is submitted to, or queued within, an ActorPool which has been torn down
type PoolTornDownError struct {
	PoolName string
}

// Error returns a textual representation of this PoolTornDownError
func (e PoolTornDownError) Error() string {
	return fmt.Sprintf("Actor pool %s has been torn down", e.PoolName)
}

// QueueFullError occurs when an ActorPool's bounded pending queue cannot accept another submission
type QueueFullError struct {
	PoolName string
	Capacity int
}

// Error returns a textual representation of this QueueFullError
func (e QueueFullError) Error() string {
	return fmt.Sprintf("Pending queue for actor pool %s is full (capacity %d)", e.PoolName, e.Capacity)
}

// ColumnMissingError occurs when a named column does not exist in a Schema or Partition
type ColumnMissingError struct {
	Name string
}

// Error returns a textual representation of this ColumnMissingError
func (e ColumnMissingError) Error() string {
	return fmt.Sprintf("Column %s does not exist", e.Name)
}

// TypeMismatchError occurs when column data does not match the type expected by an accessor or Schema
type TypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

// Error returns a textual representation of this TypeMismatchError
func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("Column %s holds %s data, not %s", e.Name, e.Actual, e.Expected)
}

// TransformMissingError occurs when a stateful Instruction requests a worker-local
// transform instance which was not part of the projection the worker was initialized with
type TransformMissingError struct {
	Name string
}

// Error returns a textual representation of this TransformMissingError
func (e TransformMissingError) Error() string {
	return fmt.Sprintf("No worker-local transform instance exists for expression %s", e.Name)
}

// ChecksumMismatchError occurs when a columnar-format block fails checksum verification on read
type ChecksumMismatchError struct {
	Column string
}

// Error returns a textual representation of this ChecksumMismatchError
func (e ChecksumMismatchError) Error() string {
	return fmt.Sprintf("Checksum mismatch in columnar data for column %s", e.Column)
}
