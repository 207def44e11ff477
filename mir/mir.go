// Package mir is a small mid-level IR: a control-flow graph of basic blocks,
// each holding straight-line statements and exactly one terminator.
//
// A Body is immutable once built with NewBody. Everything the dataflow engine
// needs to know about the graph (predecessors, how each predecessor edge
// relates to its target, which switch values route through an edge) is
// computed once at construction.
package mir

import (
	"fmt"
	"strconv"
)

// BasicBlock is the index of a block in a Body.
type BasicBlock int

const (
	// StartBlock is the entry block of every Body.
	StartBlock BasicBlock = 0

	// NoBlock marks an absent optional target, e.g. a call without a cleanup
	// block or a diverging call without a return target.
	NoBlock BasicBlock = -1
)

func (b BasicBlock) String() string {
	if b == NoBlock {
		return "none"
	}
	return "bb" + strconv.Itoa(int(b))
}

// Location is a point in a Body.
// StatementIndex equal to the number of statements in the block refers to the
// terminator.
type Location struct {
	Block          BasicBlock
	StatementIndex int
}

func (l Location) String() string {
	return fmt.Sprintf("%s[%d]", l.Block, l.StatementIndex)
}

// Local is the index of a local variable (or SSA value) of a Body.
type Local int

func (l Local) String() string { return "_" + strconv.Itoa(int(l)) }

// Place is a memory location written or read by statements.
type Place struct {
	Local Local
}

func (p Place) String() string { return p.Local.String() }

// Operand is a value used by a statement or terminator; either a copy of a
// Place or a constant.
type Operand struct {
	Place    Place
	Constant string
	IsConst  bool
}

// Copy returns an Operand reading p.
func Copy(p Place) Operand { return Operand{Place: p} }

// Const returns a constant Operand with the given printed form.
func Const(text string) Operand { return Operand{Constant: text, IsConst: true} }

func (o Operand) String() string {
	if o.IsConst {
		return "const " + o.Constant
	}
	return o.Place.String()
}
