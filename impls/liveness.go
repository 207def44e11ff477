package impls

import (
	"github.com/nickng/mirflow/bitset"
	"github.com/nickng/mirflow/dataflow"
	"github.com/nickng/mirflow/mir"
)

// MaybeLiveLocals computes the locals whose current value may be read later.
//
// It is a backward analysis: an assignment kills its destination and every
// read generates its operand. The destination of a call is killed on the
// return edge only, so it stays live on the unwind path.
type MaybeLiveLocals struct {
	dataflow.Defaults[*bitset.Set]
}

func (MaybeLiveLocals) Name() string { return "liveness" }

func (MaybeLiveLocals) Direction() dataflow.Direction[*bitset.Set] {
	return dataflow.Backward[*bitset.Set]{}
}

func (MaybeLiveLocals) BottomValue(*mir.Body) *bitset.Set { return bitset.New() }

func (MaybeLiveLocals) ApplyPrimaryStatementEffect(state *bitset.Set, stmt *mir.Statement, _ mir.Location) {
	switch stmt.Kind {
	case mir.Assign:
		state.Remove(stmt.Place.Local)
		readOperands(stmt.Operands, gen(state))
	case mir.SideEffect:
		readOperands(stmt.Operands, gen(state))
	}
}

func (MaybeLiveLocals) ApplyPrimaryTerminatorEffect(state *bitset.Set, term mir.Terminator, _ mir.Location) mir.TerminatorEdges {
	terminatorReads(term, gen(state))
	return mir.EdgesOf(term)
}

func (MaybeLiveLocals) ApplyCallReturnEffect(state *bitset.Set, _ mir.BasicBlock, places mir.CallReturnPlaces) {
	places.ForEach(kill(state))
}

func gen(state *bitset.Set) func(mir.Place) {
	return func(p mir.Place) { state.Insert(p.Local) }
}

func kill(state *bitset.Set) func(mir.Place) {
	return func(p mir.Place) { state.Remove(p.Local) }
}
