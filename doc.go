// Package drift contains the core components of Drift, a single-node execution
// runtime for dataframe workloads. This root package defines the types which are
// employed during regular use of the runtime, as well as in its extension, and is
// an excellent overview of Drift's key concepts: Partitions of columnar data,
// Instructions which transform them, and ActorPools of stateful workers which
// execute Instruction stacks asynchronously.
package drift
