// Package fixpoint drives a dataflow.Analysis over a mir.Body until the
// boundary state of every block stops changing.
package fixpoint

import (
	"github.com/fatih/color"
	"github.com/nickng/mirflow/block"
	"github.com/nickng/mirflow/dataflow"
	"github.com/nickng/mirflow/logging"
	"github.com/nickng/mirflow/mir"
	"github.com/pkg/errors"
)

// ErrNoConvergence is returned when the visit budget is exhausted before a
// fixpoint is reached.
var ErrNoConvergence = errors.New("fixpoint: analysis did not converge")

// JoinSemiLattice is a dataflow domain with a least upper bound.
type JoinSemiLattice[D any] interface {
	dataflow.Domain[D]

	// Join merges other into the receiver and reports whether the receiver
	// changed.
	Join(other D) bool
}

// Engine computes the Results of one analysis on one body.
type Engine[D JoinSemiLattice[D]] struct {
	body      *mir.Body
	analysis  dataflow.Analysis[D]
	maxVisits int // Zero for no limit.

	*logging.Logger
}

// New returns an Engine running analysis over body.
func New[D JoinSemiLattice[D]](body *mir.Body, analysis dataflow.Analysis[D]) *Engine[D] {
	e := &Engine[D]{body: body, analysis: analysis}
	e.SetLogger(logging.Nop())
	return e
}

// SetLogger sets logger for Engine.
func (e *Engine[D]) SetLogger(l *logging.Logger) {
	e.Logger = l.WithModule("fixpoint", color.FgCyan)
}

// SetMaxVisits bounds the number of block visits of Iterate. Zero removes
// the bound.
func (e *Engine[D]) SetMaxVisits(n int) {
	e.maxVisits = n
}

// Iterate runs the analysis to a fixpoint and returns the boundary state of
// every block.
func (e *Engine[D]) Iterate() (*dataflow.Results[D], error) {
	dir := e.analysis.Direction()
	entrySets := make([]D, e.body.Len())
	for i := range entrySets {
		entrySets[i] = e.analysis.BottomValue(e.body)
	}
	e.analysis.InitializeStartBlock(e.body, entrySets[mir.StartBlock])

	order := e.body.ReversePostorder()
	if !dir.IsForward() {
		order = e.body.Postorder()
	}
	queue := block.NewWorkQueue(e.body.Len())
	for _, bb := range order {
		queue.Insert(bb)
	}
	e.Logger.Debugf("%s Start %s on %s (%d blocks)",
		e.Logger.Module(), e.analysis.Name(), e.body.Name, len(order))

	state := e.analysis.BottomValue(e.body)
	propagate := func(target mir.BasicBlock, s D) {
		if entrySets[target].Join(s) {
			if queue.Insert(target) {
				e.Logger.Debugf("%s Changed %s, requeue", e.Logger.Module(), target)
			}
		}
	}
	visits := 0
	for {
		bb, ok := queue.Pop()
		if !ok {
			break
		}
		if e.maxVisits > 0 && visits == e.maxVisits {
			return nil, errors.Wrapf(ErrNoConvergence, "%s on %s after %d block visits",
				e.analysis.Name(), e.body.Name, visits)
		}
		visits++
		state.CloneFrom(entrySets[bb])
		dir.ApplyEffectsInBlock(e.analysis, e.body, state, bb, propagate)
	}
	e.Logger.Debugf("%s Converged %s on %s after %d block visits",
		e.Logger.Module(), e.analysis.Name(), e.body.Name, visits)
	return dataflow.NewResults(e.analysis, entrySets), nil
}
