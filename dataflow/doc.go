// Package dataflow is a generic dataflow analysis engine over mir bodies.
//
// An Analysis supplies a state type (its Domain) and transfer functions for
// statements, terminators and edges. A Direction (Forward or Backward) knows
// how to apply those functions across a whole block, across a range of
// points within a block, and how to replay a block for a ResultsVisitor.
//
// The package does not schedule blocks or detect convergence: a fixpoint
// driver (see package fixpoint) repeatedly calls ApplyEffectsInBlock and
// joins the propagated states. Once it has converged, Results hold one state
// per block at the block boundary where the direction starts (the entry for
// Forward, the exit for Backward), and a Cursor or ResultsVisitor recomputes
// the state at any point inside a block from that snapshot.
//
// Every point in a block has two effects, applied in this order in both
// directions:
//
//	Before  -> state immediately before the statement (or terminator) is applied
//	Primary -> state once the statement (or terminator) has been applied
package dataflow
