// Package expr provides concrete Expression implementations for use with
// Drift's instruction set: column references, named functions, and stateful
// transforms bound to a per-worker instance.
package expr

import (
	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
)

// colExpr references an existing column by name
type colExpr struct {
	name string
}

// Col returns an Expression which selects an existing column by name
func Col(name string) drift.Expression {
	return &colExpr{name: name}
}

func (e *colExpr) Name() string {
	return e.name
}

func (e *colExpr) IsStateful() bool {
	return false
}

func (e *colExpr) Eval(part drift.Partition) (drift.Column, error) {
	return part.GetColumn(e.name)
}

func (e *colExpr) Factory() drift.StatefulTransformFactory {
	return nil
}

// fnExpr evaluates an arbitrary stateless function against a Partition
type fnExpr struct {
	name string
	fn   func(part drift.Partition) (drift.Column, error)
}

// WithFn returns a stateless Expression which produces the named output column
// by applying fn to a Partition
func WithFn(name string, fn func(part drift.Partition) (drift.Column, error)) drift.Expression {
	return &fnExpr{name: name, fn: fn}
}

func (e *fnExpr) Name() string {
	return e.name
}

func (e *fnExpr) IsStateful() bool {
	return false
}

func (e *fnExpr) Eval(part drift.Partition) (drift.Column, error) {
	return e.fn(part)
}

func (e *fnExpr) Factory() drift.StatefulTransformFactory {
	return nil
}

// statefulExpr binds an output column name to a StatefulTransformFactory.
// The transform instance lives on exactly one worker; the Expression itself
// holds no state and cannot be evaluated directly.
type statefulExpr struct {
	name    string
	factory drift.StatefulTransformFactory
}

// Stateful returns a stateful Expression which produces the named output column
// through a worker-local StatefulTransform instance constructed by factory
func Stateful(name string, factory drift.StatefulTransformFactory) drift.Expression {
	return &statefulExpr{name: name, factory: factory}
}

func (e *statefulExpr) Name() string {
	return e.name
}

func (e *statefulExpr) IsStateful() bool {
	return true
}

func (e *statefulExpr) Eval(part drift.Partition) (drift.Column, error) {
	return nil, errors.TransformMissingError{Name: e.name}
}

func (e *statefulExpr) Factory() drift.StatefulTransformFactory {
	return e.factory
}
