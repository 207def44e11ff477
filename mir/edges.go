package mir

// CallReturnPlaces are the places written when execution resumes after a
// call, a coroutine yield or inline assembly.
type CallReturnPlaces interface {
	// ForEach calls f on every place written on return.
	ForEach(f func(Place))
}

// CallReturn is the destination of a Call.
type CallReturn struct{ Destination Place }

// YieldReturn is the resume argument of a Yield.
type YieldReturn struct{ ResumeArg Place }

// InlineAsmReturn are the output operands of an InlineAsm.
type InlineAsmReturn struct{ Operands []InlineAsmOperand }

func (r CallReturn) ForEach(f func(Place))  { f(r.Destination) }
func (r YieldReturn) ForEach(f func(Place)) { f(r.ResumeArg) }
func (r InlineAsmReturn) ForEach(f func(Place)) {
	for _, op := range r.Operands {
		if op.Kind == AsmOut || op.Kind == AsmInOut {
			f(op.Place)
		}
	}
}

// TerminatorEdges classifies the outgoing edges of a terminator for forward
// propagation.
type TerminatorEdges interface {
	edges()
}

// NoEdges: the terminator has no successors.
type NoEdges struct{}

// SingleEdge: one successor.
type SingleEdge struct{ Target BasicBlock }

// DoubleEdge: two independent successors receiving the same state, e.g. a
// normal successor and an unwind path.
type DoubleEdge struct{ Target, Unwind BasicBlock }

// AssignOnReturn: a call-like terminator. Cleanup (NoBlock if absent) must
// see the state before Place is assigned; every Return target sees it after.
type AssignOnReturn struct {
	Return  []BasicBlock
	Cleanup BasicBlock
	Place   CallReturnPlaces
}

// SwitchIntEdges: a multi-way branch on Discr.
type SwitchIntEdges struct {
	Targets SwitchTargets
	Discr   Operand
}

func (NoEdges) edges()        {}
func (SingleEdge) edges()     {}
func (DoubleEdge) edges()     {}
func (AssignOnReturn) edges() {}
func (SwitchIntEdges) edges() {}

// EdgesOf returns the edge classification of t.
func EdgesOf(t Terminator) TerminatorEdges {
	switch t := t.(type) {
	case *Goto:
		return SingleEdge{Target: t.Target}
	case *SwitchInt:
		return SwitchIntEdges{Targets: t.Targets, Discr: t.Discr}
	case *Panic:
		if t.Unwind == NoBlock {
			return NoEdges{}
		}
		return SingleEdge{Target: t.Unwind}
	case *Drop:
		if t.Unwind == NoBlock {
			return SingleEdge{Target: t.Target}
		}
		return DoubleEdge{Target: t.Target, Unwind: t.Unwind}
	case *Call:
		return AssignOnReturn{
			Return:  optional(t.Target),
			Cleanup: t.Unwind,
			Place:   CallReturn{Destination: t.Destination},
		}
	case *Yield:
		return AssignOnReturn{
			Return:  []BasicBlock{t.Resume},
			Cleanup: t.Drop,
			Place:   YieldReturn{ResumeArg: t.ResumeArg},
		}
	case *InlineAsm:
		return AssignOnReturn{
			Return:  t.Targets,
			Cleanup: t.Unwind,
			Place:   InlineAsmReturn{Operands: t.Operands},
		}
	default: // Return, Unreachable, UnwindResume
		return NoEdges{}
	}
}
