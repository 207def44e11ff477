package impls

import (
	"github.com/nickng/mirflow/bitset"
	"github.com/nickng/mirflow/dataflow"
	"github.com/nickng/mirflow/mir"
)

// MaybeAssignedLocals computes the locals which may hold a value on some
// path reaching a point: the arguments, and every local assigned since its
// storage was last (re)started.
type MaybeAssignedLocals struct {
	dataflow.Defaults[*bitset.Set]
}

func (MaybeAssignedLocals) Name() string { return "assigned" }

func (MaybeAssignedLocals) Direction() dataflow.Direction[*bitset.Set] {
	return dataflow.Forward[*bitset.Set]{}
}

func (MaybeAssignedLocals) BottomValue(*mir.Body) *bitset.Set { return bitset.New() }

func (MaybeAssignedLocals) InitializeStartBlock(body *mir.Body, state *bitset.Set) {
	for l := 0; l < body.ArgCount; l++ {
		state.Insert(mir.Local(l))
	}
}

func (MaybeAssignedLocals) ApplyPrimaryStatementEffect(state *bitset.Set, stmt *mir.Statement, _ mir.Location) {
	switch stmt.Kind {
	case mir.Assign:
		state.Insert(stmt.Place.Local)
	case mir.StorageLive, mir.StorageDead:
		state.Remove(stmt.Place.Local)
	}
}

func (MaybeAssignedLocals) ApplyCallReturnEffect(state *bitset.Set, _ mir.BasicBlock, places mir.CallReturnPlaces) {
	places.ForEach(gen(state))
}
