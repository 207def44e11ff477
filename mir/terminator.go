package mir

import (
	"bytes"
	"fmt"
)

// Terminator is the last instruction of a block and determines its
// successors.
type Terminator interface {
	// Successors returns every successor slot in a fixed order. A block may
	// appear more than once.
	Successors() []BasicBlock
	String() string

	terminator()
}

// Goto jumps unconditionally to Target.
type Goto struct {
	Target BasicBlock
}

// SwitchInt branches on the integer value of Discr.
type SwitchInt struct {
	Discr   Operand
	Targets SwitchTargets
}

// Return leaves the function.
type Return struct {
	Operands []Operand
}

// Unreachable marks a block that can never finish executing.
type Unreachable struct{}

// UnwindResume continues unwinding to the caller after cleanup.
type UnwindResume struct{}

// Panic starts unwinding; control reaches Unwind if the function has a
// cleanup block, otherwise the function is left.
type Panic struct {
	Arg    Operand
	Unwind BasicBlock
}

// Drop runs the destructor of Place and continues at Target, or at Unwind if
// the destructor unwinds.
type Drop struct {
	Place  Place
	Target BasicBlock
	Unwind BasicBlock
}

// Call calls Func with Args, writing the result into Destination on normal
// return to Target. Target is NoBlock for diverging calls; Unwind is NoBlock
// when there is no cleanup block.
type Call struct {
	Func        Operand
	Args        []Operand
	Destination Place
	Target      BasicBlock
	Unwind      BasicBlock
}

// Yield suspends a coroutine, producing Value. On resumption control reaches
// Resume with the resume argument written to ResumeArg. Drop is the block
// reached if the coroutine is dropped while suspended (NoBlock if none).
type Yield struct {
	Value     Operand
	Resume    BasicBlock
	ResumeArg Place
	Drop      BasicBlock
}

// AsmOperandKind classifies inline assembly operands.
type AsmOperandKind int

const (
	AsmIn AsmOperandKind = iota
	AsmOut
	AsmInOut
)

// InlineAsmOperand is one operand of an InlineAsm terminator. Out and InOut
// operands write Place.
type InlineAsmOperand struct {
	Kind  AsmOperandKind
	In    Operand
	Place Place
}

// InlineAsm is a block of inline assembly which may branch to any of Targets.
type InlineAsm struct {
	Template string
	Operands []InlineAsmOperand
	Targets  []BasicBlock
	Unwind   BasicBlock
}

func (*Goto) terminator()         {}
func (*SwitchInt) terminator()    {}
func (*Return) terminator()       {}
func (*Unreachable) terminator()  {}
func (*UnwindResume) terminator() {}
func (*Panic) terminator()        {}
func (*Drop) terminator()         {}
func (*Call) terminator()         {}
func (*Yield) terminator()        {}
func (*InlineAsm) terminator()    {}

func (t *Goto) Successors() []BasicBlock      { return []BasicBlock{t.Target} }
func (t *SwitchInt) Successors() []BasicBlock { return t.Targets.All() }
func (*Return) Successors() []BasicBlock      { return nil }
func (*Unreachable) Successors() []BasicBlock { return nil }
func (*UnwindResume) Successors() []BasicBlock {
	return nil
}
func (t *Panic) Successors() []BasicBlock { return optional(t.Unwind) }
func (t *Drop) Successors() []BasicBlock  { return append([]BasicBlock{t.Target}, optional(t.Unwind)...) }
func (t *Call) Successors() []BasicBlock  { return append(optional(t.Target), optional(t.Unwind)...) }
func (t *Yield) Successors() []BasicBlock { return append([]BasicBlock{t.Resume}, optional(t.Drop)...) }
func (t *InlineAsm) Successors() []BasicBlock {
	succs := make([]BasicBlock, 0, len(t.Targets)+1)
	succs = append(succs, t.Targets...)
	return append(succs, optional(t.Unwind)...)
}

func optional(b BasicBlock) []BasicBlock {
	if b == NoBlock {
		return nil
	}
	return []BasicBlock{b}
}

func (t *Goto) String() string { return "goto -> " + t.Target.String() }

func (t *SwitchInt) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "switchInt(%s) -> [", t.Discr)
	for i, v := range t.Targets.Values {
		fmt.Fprintf(&buf, "%d: %s, ", v, t.Targets.Targets[i])
	}
	fmt.Fprintf(&buf, "otherwise: %s]", t.Targets.Otherwise())
	return buf.String()
}

func (t *Return) String() string {
	var buf bytes.Buffer
	writeOperands(&buf, "return", t.Operands)
	return buf.String()
}

func (*Unreachable) String() string  { return "unreachable" }
func (*UnwindResume) String() string { return "resume" }

func (t *Panic) String() string {
	return fmt.Sprintf("panic(%s) -> [unwind: %s]", t.Arg, t.Unwind)
}

func (t *Drop) String() string {
	return fmt.Sprintf("drop(%s) -> [return: %s, unwind: %s]", t.Place, t.Target, t.Unwind)
}

func (t *Call) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s = ", t.Destination)
	writeOperands(&buf, t.Func.String(), t.Args)
	fmt.Fprintf(&buf, " -> [return: %s, unwind: %s]", t.Target, t.Unwind)
	return buf.String()
}

func (t *Yield) String() string {
	return fmt.Sprintf("%s = yield(%s) -> [resume: %s, drop: %s]", t.ResumeArg, t.Value, t.Resume, t.Drop)
}

func (t *InlineAsm) String() string {
	return fmt.Sprintf("asm!(%q) -> %v [unwind: %s]", t.Template, t.Targets, t.Unwind)
}

// SwitchTargets maps the explicit Values of a SwitchInt to their targets.
// Targets has exactly one more element than Values: the last one is the
// fallback ("otherwise") target.
type SwitchTargets struct {
	Values  []uint64
	Targets []BasicBlock
}

// NewSwitchTargets returns SwitchTargets for the given value/target pairs and
// fallback target.
func NewSwitchTargets(values []uint64, targets []BasicBlock, otherwise BasicBlock) SwitchTargets {
	if len(values) != len(targets) {
		panic(fmt.Sprintf("mir: %d switch values for %d targets", len(values), len(targets)))
	}
	all := make([]BasicBlock, 0, len(targets)+1)
	all = append(all, targets...)
	return SwitchTargets{
		Values:  append([]uint64(nil), values...),
		Targets: append(all, otherwise),
	}
}

// If returns the targets of a two-way branch on a boolean: 0 goes to
// ifFalse, anything else to ifTrue.
func If(ifTrue, ifFalse BasicBlock) SwitchTargets {
	return NewSwitchTargets([]uint64{0}, []BasicBlock{ifFalse}, ifTrue)
}

// Otherwise returns the fallback target.
func (t SwitchTargets) Otherwise() BasicBlock { return t.Targets[len(t.Targets)-1] }

// All returns all targets including the fallback.
func (t SwitchTargets) All() []BasicBlock { return append([]BasicBlock(nil), t.Targets...) }

// Explicit returns the explicit (value, target) pairs in order.
func (t SwitchTargets) Explicit() []SwitchTarget {
	explicit := make([]SwitchTarget, len(t.Values))
	for i, v := range t.Values {
		explicit[i] = SwitchTarget{Value: v, Target: t.Targets[i]}
	}
	return explicit
}

// SwitchTarget is one outgoing edge of a SwitchInt.
// Otherwise is set for the fallback edge, in which case Value is meaningless.
type SwitchTarget struct {
	Value     uint64
	Otherwise bool
	Target    BasicBlock
}

func (t SwitchTarget) String() string {
	if t.Otherwise {
		return "otherwise -> " + t.Target.String()
	}
	return fmt.Sprintf("%d -> %s", t.Value, t.Target)
}
