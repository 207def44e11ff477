package dataflow

import (
	"github.com/nickng/mirflow/mir"
	"github.com/pkg/errors"
)

// Direction is the traversal strategy of an analysis.
//
// The propagate callback given to ApplyEffectsInBlock receives a state it
// does not own: it must copy or join the state before returning and must not
// mutate it, since the same value (or a reused buffer) is passed to other
// targets afterwards.
type Direction[D Domain[D]] interface {
	// IsForward reports whether this is the forward direction.
	IsForward() bool

	// Precedes reports whether a is strictly before b in this direction.
	Precedes(a, b EffectIndex) bool

	// ApplyEffectsInBlock applies every effect of block to state, which
	// holds the block's boundary state on entry, and propagates the result
	// to the successors (Forward) or predecessors (Backward) of the block.
	ApplyEffectsInBlock(a Analysis[D], body *mir.Body, state D, block mir.BasicBlock, propagate func(target mir.BasicBlock, state D))

	// ApplyEffectsInRange applies every effect in [from, to] to state, which
	// already reflects every effect before from. from must not come after to
	// in this direction.
	ApplyEffectsInRange(a Analysis[D], state D, block mir.BasicBlock, data *mir.BlockData, from, to EffectIndex)

	// VisitResultsInBlock replays block from its Results snapshot into
	// state, calling vis around every effect.
	VisitResultsInBlock(state D, block mir.BasicBlock, data *mir.BlockData, results *Results[D], vis ResultsVisitor[D])
}

// checkRange panics unless from and to are valid effect indices of a block
// whose terminator is at terminatorIndex, ordered for dir.
func checkRange[D Domain[D]](dir Direction[D], from, to EffectIndex, terminatorIndex int) {
	checkIndex(from, terminatorIndex)
	checkIndex(to, terminatorIndex)
	if dir.Precedes(to, from) {
		panic(errors.Wrapf(ErrInvalidRange, "[%s, %s]", from, to))
	}
}

// scratch is an optional, reusable copy of a state. It bounds the number of
// copies made while fanning a state out to many edges to one.
type scratch[D Domain[D]] struct {
	val D
	ok  bool
}

// cloneFrom fills the scratch with a copy of src, overwriting the existing
// copy in place if there is one, and returns it.
func (s *scratch[D]) cloneFrom(src D) D {
	if s.ok {
		s.val.CloneFrom(src)
		return s.val
	}
	s.val, s.ok = src.Clone(), true
	return s.val
}
