package dataflow

import "github.com/nickng/mirflow/mir"

// ResultsVisitor observes the state at every point of a block while Results
// are replayed. The state passed in is only valid for the duration of the
// call.
//
// VisitBlockStart and VisitBlockEnd refer to the entry and exit of the block
// in control-flow order, so a Backward replay calls VisitBlockEnd first.
type ResultsVisitor[D Domain[D]] interface {
	VisitBlockStart(state D)
	VisitStatementBeforePrimaryEffect(results *Results[D], state D, stmt *mir.Statement, loc mir.Location)
	VisitStatementAfterPrimaryEffect(results *Results[D], state D, stmt *mir.Statement, loc mir.Location)
	VisitTerminatorBeforePrimaryEffect(results *Results[D], state D, term mir.Terminator, loc mir.Location)
	VisitTerminatorAfterPrimaryEffect(results *Results[D], state D, term mir.Terminator, loc mir.Location)
	VisitBlockEnd(state D)
}

// NopVisitor implements every ResultsVisitor callback as a no-op. Embed it
// and override the callbacks of interest.
type NopVisitor[D Domain[D]] struct{}

func (NopVisitor[D]) VisitBlockStart(D) {}

func (NopVisitor[D]) VisitStatementBeforePrimaryEffect(*Results[D], D, *mir.Statement, mir.Location) {
}

func (NopVisitor[D]) VisitStatementAfterPrimaryEffect(*Results[D], D, *mir.Statement, mir.Location) {
}

func (NopVisitor[D]) VisitTerminatorBeforePrimaryEffect(*Results[D], D, mir.Terminator, mir.Location) {
}

func (NopVisitor[D]) VisitTerminatorAfterPrimaryEffect(*Results[D], D, mir.Terminator, mir.Location) {
}

func (NopVisitor[D]) VisitBlockEnd(D) {}
