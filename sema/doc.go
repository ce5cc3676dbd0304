// Package sema turns a parsed buildfile into a resolved object graph.
//
// # Values
//
// Every node of the graph implements [Value]. The builtin kinds are
// [String], [Namespace], [Set], [TypeDescriptor] and the [Delayed]
// placeholder. Other packages contribute kinds of their own, most notably
// build targets, by allocating a [TypeID] with [NewTypeID] and registering
// a [Constructor] with [Context.RegisterType].
//
// The binary operators + and - dispatch on the pair of operand types
// through a table populated by [RegisterOperator]. [Apply] tries the
// operand order as written, then swapped, and finally defers the operation
// if either side is not resolved yet.
//
// # Resolution
//
// A buildfile may refer to names before they are bound:
//
//	a = b + c
//	b = "foo"
//	c = "bar"
//
// Anything that cannot be computed when its assignment is evaluated becomes
// a [Delayed] placeholder queued on the [Context]. After all assignments
// are bound, [Context.Resolve] sweeps the queue until it is empty or a
// sweep makes no progress. Circular definitions never make progress and
// fail with [ErrUnresolvedReferences].
//
// # Analysis
//
// [Analyze] drives the whole process and returns an [Environment] holding
// the root namespace and the index of named targets.
package sema
