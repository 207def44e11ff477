package dataflow

import "github.com/nickng/mirflow/mir"

// Backward runs from the exit of a block (the terminator) to its entry (the
// first statement).
type Backward[D Domain[D]] struct{}

func (Backward[D]) IsForward() bool { return false }

func (Backward[D]) Precedes(a, b EffectIndex) bool { return a.PrecedesInBackwardOrder(b) }

func (Backward[D]) ApplyEffectsInBlock(a Analysis[D], body *mir.Body, state D, block mir.BasicBlock, propagate func(mir.BasicBlock, D)) {
	data := body.Block(block)
	loc := body.TerminatorLoc(block)
	a.ApplyBeforeTerminatorEffect(state, data.Terminator, loc)
	a.ApplyPrimaryTerminatorEffect(state, data.Terminator, loc)

	for i := len(data.Statements) - 1; i >= 0; i-- {
		loc := mir.Location{Block: block, StatementIndex: i}
		a.ApplyBeforeStatementEffect(state, &data.Statements[i], loc)
		a.ApplyPrimaryStatementEffect(state, &data.Statements[i], loc)
	}

	exit := state
	var tmp scratch[D]
	for _, edge := range body.PredEdges(block) {
		switch edge.Kind {
		case mir.CallReturnEdge, mir.InlineAsmReturnEdge:
			s := tmp.cloneFrom(exit)
			a.ApplyCallReturnEffect(s, edge.Pred, edge.Places)
			propagate(edge.Pred, s)

		case mir.YieldResumeEdge:
			// Yields report the resume block, which is block itself.
			s := tmp.cloneFrom(exit)
			a.ApplyCallReturnEffect(s, block, edge.Places)
			propagate(edge.Pred, s)

		case mir.SwitchEdge:
			switchData := a.GetSwitchIntData(edge.Pred, edge.Discr)
			if switchData == nil {
				propagate(edge.Pred, exit)
				continue
			}
			for _, target := range edge.Targets {
				s := tmp.cloneFrom(exit)
				a.ApplySwitchIntEdgeEffect(switchData, s, target)
				propagate(edge.Pred, s)
			}

		default:
			propagate(edge.Pred, exit)
		}
	}
}

func (dir Backward[D]) ApplyEffectsInRange(a Analysis[D], state D, block mir.BasicBlock, data *mir.BlockData, from, to EffectIndex) {
	terminatorIndex := data.TerminatorIndex()
	checkRange[D](dir, from, to, terminatorIndex)

	var nextEffect int
	switch {
	case from.StatementIndex == terminatorIndex:
		loc := mir.Location{Block: block, StatementIndex: terminatorIndex}
		if from.Effect == Before {
			a.ApplyBeforeTerminatorEffect(state, data.Terminator, loc)
			if to == Before.AtIndex(terminatorIndex) {
				return
			}
		}
		a.ApplyPrimaryTerminatorEffect(state, data.Terminator, loc)
		if to == Primary.AtIndex(terminatorIndex) {
			return
		}
		nextEffect = from.StatementIndex - 1

	case from.Effect == Primary:
		// The before effect at from is already applied.
		loc := mir.Location{Block: block, StatementIndex: from.StatementIndex}
		a.ApplyPrimaryStatementEffect(state, &data.Statements[from.StatementIndex], loc)
		if to == from {
			return
		}
		nextEffect = from.StatementIndex - 1

	default:
		nextEffect = from.StatementIndex
	}

	for i := nextEffect; i > to.StatementIndex; i-- {
		loc := mir.Location{Block: block, StatementIndex: i}
		a.ApplyBeforeStatementEffect(state, &data.Statements[i], loc)
		a.ApplyPrimaryStatementEffect(state, &data.Statements[i], loc)
	}

	loc := mir.Location{Block: block, StatementIndex: to.StatementIndex}
	stmt := &data.Statements[to.StatementIndex]
	a.ApplyBeforeStatementEffect(state, stmt, loc)
	if to.Effect == Before {
		return
	}
	a.ApplyPrimaryStatementEffect(state, stmt, loc)
}

func (Backward[D]) VisitResultsInBlock(state D, block mir.BasicBlock, data *mir.BlockData, results *Results[D], vis ResultsVisitor[D]) {
	state.CloneFrom(results.EntrySetForBlock(block))
	a := results.Analysis

	vis.VisitBlockEnd(state)

	loc := mir.Location{Block: block, StatementIndex: data.TerminatorIndex()}
	a.ApplyBeforeTerminatorEffect(state, data.Terminator, loc)
	vis.VisitTerminatorBeforePrimaryEffect(results, state, data.Terminator, loc)
	a.ApplyPrimaryTerminatorEffect(state, data.Terminator, loc)
	vis.VisitTerminatorAfterPrimaryEffect(results, state, data.Terminator, loc)

	for i := len(data.Statements) - 1; i >= 0; i-- {
		loc := mir.Location{Block: block, StatementIndex: i}
		stmt := &data.Statements[i]
		a.ApplyBeforeStatementEffect(state, stmt, loc)
		vis.VisitStatementBeforePrimaryEffect(results, state, stmt, loc)
		a.ApplyPrimaryStatementEffect(state, stmt, loc)
		vis.VisitStatementAfterPrimaryEffect(results, state, stmt, loc)
	}

	vis.VisitBlockStart(state)
}
