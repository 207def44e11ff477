package dataflow

import (
	"fmt"

	"github.com/nickng/mirflow/mir"
)

// Forward runs from the entry of a block (its first statement) to its exit
// (the terminator).
type Forward[D Domain[D]] struct{}

func (Forward[D]) IsForward() bool { return true }

func (Forward[D]) Precedes(a, b EffectIndex) bool { return a.PrecedesInForwardOrder(b) }

func (Forward[D]) ApplyEffectsInBlock(a Analysis[D], body *mir.Body, state D, block mir.BasicBlock, propagate func(mir.BasicBlock, D)) {
	data := body.Block(block)
	for i := range data.Statements {
		loc := mir.Location{Block: block, StatementIndex: i}
		a.ApplyBeforeStatementEffect(state, &data.Statements[i], loc)
		a.ApplyPrimaryStatementEffect(state, &data.Statements[i], loc)
	}
	loc := body.TerminatorLoc(block)
	a.ApplyBeforeTerminatorEffect(state, data.Terminator, loc)
	edges := a.ApplyPrimaryTerminatorEffect(state, data.Terminator, loc)

	exit := state
	switch edges := edges.(type) {
	case mir.NoEdges:

	case mir.SingleEdge:
		propagate(edges.Target, exit)

	case mir.DoubleEdge:
		propagate(edges.Target, exit)
		propagate(edges.Unwind, exit)

	case mir.AssignOnReturn:
		// The cleanup path goes first: it must not see the returned value.
		if edges.Cleanup != mir.NoBlock {
			propagate(edges.Cleanup, exit)
		}
		if len(edges.Return) > 0 {
			a.ApplyCallReturnEffect(exit, block, edges.Place)
			for _, target := range edges.Return {
				propagate(target, exit)
			}
		}

	case mir.SwitchIntEdges:
		switchData := a.GetSwitchIntData(block, edges.Discr)
		if switchData == nil {
			for _, target := range edges.Targets.Targets {
				propagate(target, exit)
			}
			return
		}
		var tmp scratch[D]
		for _, target := range edges.Targets.Explicit() {
			s := tmp.cloneFrom(exit)
			a.ApplySwitchIntEdgeEffect(switchData, s, target)
			propagate(target.Target, s)
		}
		// exit is not needed after the fallback edge, so it takes the edge
		// effect directly.
		otherwise := mir.SwitchTarget{Otherwise: true, Target: edges.Targets.Otherwise()}
		a.ApplySwitchIntEdgeEffect(switchData, exit, otherwise)
		propagate(otherwise.Target, exit)

	default:
		panic(fmt.Sprintf("dataflow: unknown terminator edges %T", edges))
	}
}

func (dir Forward[D]) ApplyEffectsInRange(a Analysis[D], state D, block mir.BasicBlock, data *mir.BlockData, from, to EffectIndex) {
	terminatorIndex := data.TerminatorIndex()
	checkRange[D](dir, from, to, terminatorIndex)

	// If the before effect at from is applied but not its primary effect,
	// apply it now and continue from the next statement.
	var firstUnapplied int
	switch {
	case from.Effect == Before:
		firstUnapplied = from.StatementIndex

	case from.StatementIndex == terminatorIndex:
		// to cannot be past the terminator, so from == to.
		loc := mir.Location{Block: block, StatementIndex: terminatorIndex}
		a.ApplyPrimaryTerminatorEffect(state, data.Terminator, loc)
		return

	default:
		loc := mir.Location{Block: block, StatementIndex: from.StatementIndex}
		a.ApplyPrimaryStatementEffect(state, &data.Statements[from.StatementIndex], loc)
		if from == to {
			return
		}
		firstUnapplied = from.StatementIndex + 1
	}

	for i := firstUnapplied; i < to.StatementIndex; i++ {
		loc := mir.Location{Block: block, StatementIndex: i}
		a.ApplyBeforeStatementEffect(state, &data.Statements[i], loc)
		a.ApplyPrimaryStatementEffect(state, &data.Statements[i], loc)
	}

	loc := mir.Location{Block: block, StatementIndex: to.StatementIndex}
	if to.StatementIndex == terminatorIndex {
		a.ApplyBeforeTerminatorEffect(state, data.Terminator, loc)
		if to.Effect == Primary {
			a.ApplyPrimaryTerminatorEffect(state, data.Terminator, loc)
		}
		return
	}
	stmt := &data.Statements[to.StatementIndex]
	a.ApplyBeforeStatementEffect(state, stmt, loc)
	if to.Effect == Primary {
		a.ApplyPrimaryStatementEffect(state, stmt, loc)
	}
}

func (Forward[D]) VisitResultsInBlock(state D, block mir.BasicBlock, data *mir.BlockData, results *Results[D], vis ResultsVisitor[D]) {
	state.CloneFrom(results.EntrySetForBlock(block))
	a := results.Analysis

	vis.VisitBlockStart(state)

	for i := range data.Statements {
		loc := mir.Location{Block: block, StatementIndex: i}
		stmt := &data.Statements[i]
		a.ApplyBeforeStatementEffect(state, stmt, loc)
		vis.VisitStatementBeforePrimaryEffect(results, state, stmt, loc)
		a.ApplyPrimaryStatementEffect(state, stmt, loc)
		vis.VisitStatementAfterPrimaryEffect(results, state, stmt, loc)
	}

	loc := mir.Location{Block: block, StatementIndex: data.TerminatorIndex()}
	a.ApplyBeforeTerminatorEffect(state, data.Terminator, loc)
	vis.VisitTerminatorBeforePrimaryEffect(results, state, data.Terminator, loc)
	a.ApplyPrimaryTerminatorEffect(state, data.Terminator, loc)
	vis.VisitTerminatorAfterPrimaryEffect(results, state, data.Terminator, loc)

	vis.VisitBlockEnd(state)
}
