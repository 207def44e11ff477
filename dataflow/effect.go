package dataflow

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidRange is the cause of the panic raised when a replay range
	// ends before it starts in the direction of the analysis.
	ErrInvalidRange = errors.New("dataflow: effect range ends before it starts")

	// ErrIndexOutOfRange is the cause of the panic raised when an effect
	// index lies beyond the terminator of its block.
	ErrIndexOutOfRange = errors.New("dataflow: statement index beyond terminator")
)

// Effect selects which of the two effects at a point has been applied.
type Effect int

const (
	// Before is the state just before the primary effect of a point.
	Before Effect = iota
	// Primary is the state after the point has been applied.
	Primary
)

func (e Effect) String() string {
	if e == Before {
		return "before"
	}
	return "primary"
}

// AtIndex returns the EffectIndex of e at statement index i.
func (e Effect) AtIndex(i int) EffectIndex {
	return EffectIndex{StatementIndex: i, Effect: e}
}

// EffectIndex addresses one effect of one statement (or the terminator) of a
// block.
type EffectIndex struct {
	StatementIndex int
	Effect         Effect
}

func (i EffectIndex) String() string {
	return fmt.Sprintf("%s@%d", i.Effect, i.StatementIndex)
}

// NextInForwardOrder returns the effect index that follows i in a forward
// traversal.
func (i EffectIndex) NextInForwardOrder() EffectIndex {
	if i.Effect == Before {
		return Primary.AtIndex(i.StatementIndex)
	}
	return Before.AtIndex(i.StatementIndex + 1)
}

// NextInBackwardOrder returns the effect index that follows i in a backward
// traversal.
func (i EffectIndex) NextInBackwardOrder() EffectIndex {
	if i.Effect == Before {
		return Primary.AtIndex(i.StatementIndex)
	}
	return Before.AtIndex(i.StatementIndex - 1)
}

// PrecedesInForwardOrder reports whether i is strictly before other in a
// forward traversal.
func (i EffectIndex) PrecedesInForwardOrder(other EffectIndex) bool {
	if i.StatementIndex != other.StatementIndex {
		return i.StatementIndex < other.StatementIndex
	}
	return i.Effect < other.Effect
}

// PrecedesInBackwardOrder reports whether i is strictly before other in a
// backward traversal. Statement indices are walked downwards but Before still
// comes before Primary at each index.
func (i EffectIndex) PrecedesInBackwardOrder(other EffectIndex) bool {
	if i.StatementIndex != other.StatementIndex {
		return i.StatementIndex > other.StatementIndex
	}
	return i.Effect < other.Effect
}

// checkIndex panics if idx is beyond the terminator.
func checkIndex(idx EffectIndex, terminatorIndex int) {
	if idx.StatementIndex < 0 || idx.StatementIndex > terminatorIndex {
		panic(errors.Wrapf(ErrIndexOutOfRange, "%s with terminator at %d", idx, terminatorIndex))
	}
}
