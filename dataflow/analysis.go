package dataflow

import "github.com/nickng/mirflow/mir"

// Domain is the state an analysis tracks at each point.
//
// Values of a Domain must have reference semantics (typically a pointer):
// effects receive the state and update it in place.
type Domain[D any] interface {
	// Clone returns an independent copy.
	Clone() D

	// CloneFrom overwrites the receiver with the contents of src, reusing its
	// storage where possible.
	CloneFrom(src D)
}

// Analysis is the capability an analysis implements to run on the engine.
//
// Embed Defaults to get the optional parts: no-op before effects, the
// default terminator edges, no call-return effect and no switch customisation.
type Analysis[D Domain[D]] interface {
	// Name identifies the analysis in logs and output.
	Name() string

	// Direction selects forward or backward traversal.
	Direction() Direction[D]

	// BottomValue returns the initial value of every block's state.
	BottomValue(body *mir.Body) D

	// InitializeStartBlock mutates the state of the start block, e.g. to
	// mark function arguments. Only meaningful for forward analyses.
	InitializeStartBlock(body *mir.Body, state D)

	ApplyBeforeStatementEffect(state D, stmt *mir.Statement, loc mir.Location)
	ApplyPrimaryStatementEffect(state D, stmt *mir.Statement, loc mir.Location)

	ApplyBeforeTerminatorEffect(state D, term mir.Terminator, loc mir.Location)

	// ApplyPrimaryTerminatorEffect applies the terminator and classifies its
	// outgoing edges. The edges are used by forward traversal only.
	ApplyPrimaryTerminatorEffect(state D, term mir.Terminator, loc mir.Location) mir.TerminatorEdges

	// ApplyCallReturnEffect is applied on edges that resume after a call,
	// a yield or inline assembly. block is the block ending in the call or
	// inline assembly, or the resume block of a yield. places are the
	// locations written by that construct.
	ApplyCallReturnEffect(state D, block mir.BasicBlock, places mir.CallReturnPlaces)

	// GetSwitchIntData returns a cache object shared by every outgoing edge
	// of the SwitchInt ending block, or nil if the analysis does not
	// customise switch edges. Every edge then receives the unmodified state.
	GetSwitchIntData(block mir.BasicBlock, discr mir.Operand) interface{}

	// ApplySwitchIntEdgeEffect adjusts state for the switch edge target.
	// data is the value returned by GetSwitchIntData for this switch.
	ApplySwitchIntEdgeEffect(data interface{}, state D, target mir.SwitchTarget)
}

// Defaults implements the optional methods of Analysis.
type Defaults[D any] struct{}

func (Defaults[D]) InitializeStartBlock(*mir.Body, D) {}

func (Defaults[D]) ApplyBeforeStatementEffect(D, *mir.Statement, mir.Location) {}

func (Defaults[D]) ApplyBeforeTerminatorEffect(D, mir.Terminator, mir.Location) {}

// ApplyPrimaryTerminatorEffect returns the default classification of term
// without changing the state.
func (Defaults[D]) ApplyPrimaryTerminatorEffect(_ D, term mir.Terminator, _ mir.Location) mir.TerminatorEdges {
	return mir.EdgesOf(term)
}

func (Defaults[D]) ApplyCallReturnEffect(D, mir.BasicBlock, mir.CallReturnPlaces) {}

func (Defaults[D]) GetSwitchIntData(mir.BasicBlock, mir.Operand) interface{} { return nil }

func (Defaults[D]) ApplySwitchIntEdgeEffect(interface{}, D, mir.SwitchTarget) {}
