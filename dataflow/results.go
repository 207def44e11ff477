package dataflow

import "github.com/nickng/mirflow/mir"

// Results are the converged boundary states of an analysis, one per block:
// the entry state for a Forward analysis and the exit state for a Backward
// one.
type Results[D Domain[D]] struct {
	Analysis  Analysis[D]
	EntrySets []D
}

// NewResults wraps already computed boundary states of a.
func NewResults[D Domain[D]](a Analysis[D], entrySets []D) *Results[D] {
	return &Results[D]{Analysis: a, EntrySets: entrySets}
}

// EntrySetForBlock returns the boundary state of block. The caller must not
// modify it.
func (r *Results[D]) EntrySetForBlock(block mir.BasicBlock) D {
	return r.EntrySets[block]
}

// Cursor returns a Cursor to inspect the state at arbitrary points of body.
func (r *Results[D]) Cursor(body *mir.Body) *Cursor[D] {
	return NewCursor(body, r)
}

// VisitWith replays blocks of body in the given order, reporting every point
// to vis. A single state is reused across blocks.
func (r *Results[D]) VisitWith(body *mir.Body, blocks []mir.BasicBlock, vis ResultsVisitor[D]) {
	if len(blocks) == 0 {
		return
	}
	dir := r.Analysis.Direction()
	state := r.Analysis.BottomValue(body)
	for _, block := range blocks {
		dir.VisitResultsInBlock(state, block, body.Block(block), r, vis)
	}
}

// VisitReachableWith replays every block reachable from the start block, in
// reverse postorder.
func (r *Results[D]) VisitReachableWith(body *mir.Body, vis ResultsVisitor[D]) {
	r.VisitWith(body, body.ReversePostorder(), vis)
}
