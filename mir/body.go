package mir

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	ErrNoBlocks      = errors.New("mir: body has no blocks")
	ErrNoTerminator  = errors.New("mir: block has no terminator")
	ErrBadTarget     = errors.New("mir: jump target out of range")
	ErrBadLocal      = errors.New("mir: local out of range")
	ErrBadSwitchArms = errors.New("mir: switch targets must have one more target than values")
)

// BlockData is the content of a basic block.
type BlockData struct {
	Statements []Statement
	Terminator Terminator
	IsCleanup  bool   // Block is only reached while unwinding.
	Comment    string // Free-form description, printed only.
}

// TerminatorIndex is the statement index of the terminator.
func (d *BlockData) TerminatorIndex() int { return len(d.Statements) }

// EdgeKind classifies how a predecessor's terminator reaches a block.
type EdgeKind int

const (
	PlainEdge           EdgeKind = iota // No edge-specific effect.
	CallReturnEdge                      // Block is the return target of a Call.
	InlineAsmReturnEdge                 // Block is one of the targets of an InlineAsm.
	YieldResumeEdge                     // Block is the resume target of a Yield.
	SwitchEdge                          // Block is reached through a SwitchInt.
)

var edgeKindNames = [...]string{
	PlainEdge:           "plain",
	CallReturnEdge:      "call-return",
	InlineAsmReturnEdge: "asm-return",
	YieldResumeEdge:     "yield-resume",
	SwitchEdge:          "switch",
}

func (k EdgeKind) String() string { return edgeKindNames[k] }

// PredEdge is an incoming edge of a block, classified once when the Body is
// built.
type PredEdge struct {
	Pred BasicBlock
	Kind EdgeKind

	// Places written on return, for CallReturnEdge, InlineAsmReturnEdge and
	// YieldResumeEdge.
	Places CallReturnPlaces

	// Discr and Targets are set for SwitchEdge: every switch arm of Pred
	// which routes into the block.
	Discr   Operand
	Targets []SwitchTarget
}

// Body is the control-flow graph of one function.
type Body struct {
	Name       string
	Blocks     []*BlockData
	LocalNames []string // Indexed by Local; may be shorter than the number of locals.
	NumLocals  int
	ArgCount   int // Locals below ArgCount are the function arguments.

	preds         [][]BasicBlock
	predEdges     [][]PredEdge
	switchSources map[[2]BasicBlock][]SwitchTarget
}

// NewBody validates blocks and returns an immutable Body.
func NewBody(name string, numLocals int, blocks []*BlockData) (*Body, error) {
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}
	b := &Body{
		Name:          name,
		Blocks:        blocks,
		NumLocals:     numLocals,
		preds:         make([][]BasicBlock, len(blocks)),
		predEdges:     make([][]PredEdge, len(blocks)),
		switchSources: make(map[[2]BasicBlock][]SwitchTarget),
	}
	for i, data := range blocks {
		if err := b.validate(BasicBlock(i), data); err != nil {
			return nil, err
		}
	}
	b.computeSwitchSources()
	b.computePredEdges()
	return b, nil
}

func (b *Body) validate(bb BasicBlock, data *BlockData) error {
	if data == nil || data.Terminator == nil {
		return errors.Wrapf(ErrNoTerminator, "%s", bb)
	}
	for _, succ := range data.Terminator.Successors() {
		if succ < 0 || int(succ) >= len(b.Blocks) {
			return errors.Wrapf(ErrBadTarget, "%s -> %d", bb, succ)
		}
	}
	if sw, ok := data.Terminator.(*SwitchInt); ok && len(sw.Targets.Targets) != len(sw.Targets.Values)+1 {
		return errors.Wrapf(ErrBadSwitchArms, "%s", bb)
	}
	for i := range data.Statements {
		stmt := &data.Statements[i]
		if (stmt.Kind == Assign || stmt.Kind == StorageLive || stmt.Kind == StorageDead) && !b.validLocal(stmt.Place.Local) {
			return errors.Wrapf(ErrBadLocal, "%s: %s", Location{bb, i}, stmt)
		}
		for _, op := range stmt.Operands {
			if !op.IsConst && !b.validLocal(op.Place.Local) {
				return errors.Wrapf(ErrBadLocal, "%s: %s", Location{bb, i}, stmt)
			}
		}
	}
	return nil
}

func (b *Body) validLocal(l Local) bool { return l >= 0 && int(l) < b.NumLocals }

func (b *Body) computeSwitchSources() {
	for i, data := range b.Blocks {
		sw, ok := data.Terminator.(*SwitchInt)
		if !ok {
			continue
		}
		pred := BasicBlock(i)
		for _, t := range sw.Targets.Explicit() {
			key := [2]BasicBlock{t.Target, pred}
			b.switchSources[key] = append(b.switchSources[key], t)
		}
		otherwise := sw.Targets.Otherwise()
		key := [2]BasicBlock{otherwise, pred}
		b.switchSources[key] = append(b.switchSources[key], SwitchTarget{Otherwise: true, Target: otherwise})
	}
}

func (b *Body) computePredEdges() {
	for i, data := range b.Blocks {
		pred := BasicBlock(i)
		var seen []BasicBlock
		for _, succ := range data.Terminator.Successors() {
			if slices.Contains(seen, succ) {
				continue
			}
			seen = append(seen, succ)
			b.preds[succ] = append(b.preds[succ], pred)
			b.predEdges[succ] = append(b.predEdges[succ], b.classify(pred, data.Terminator, succ)...)
		}
	}
}

// classify returns the incoming edges pred → target, one per distinct
// relationship.
func (b *Body) classify(pred BasicBlock, term Terminator, target BasicBlock) []PredEdge {
	var edges []PredEdge
	switch t := term.(type) {
	case *Call:
		if t.Target == target {
			edges = append(edges, PredEdge{Pred: pred, Kind: CallReturnEdge, Places: CallReturn{Destination: t.Destination}})
		}
		if t.Unwind == target {
			edges = append(edges, PredEdge{Pred: pred, Kind: PlainEdge})
		}
	case *InlineAsm:
		if slices.Contains(t.Targets, target) {
			edges = append(edges, PredEdge{Pred: pred, Kind: InlineAsmReturnEdge, Places: InlineAsmReturn{Operands: t.Operands}})
		}
		if t.Unwind == target {
			edges = append(edges, PredEdge{Pred: pred, Kind: PlainEdge})
		}
	case *Yield:
		if t.Resume == target {
			edges = append(edges, PredEdge{Pred: pred, Kind: YieldResumeEdge, Places: YieldReturn{ResumeArg: t.ResumeArg}})
		}
		if t.Drop == target {
			edges = append(edges, PredEdge{Pred: pred, Kind: PlainEdge})
		}
	case *SwitchInt:
		edges = append(edges, PredEdge{
			Pred:    pred,
			Kind:    SwitchEdge,
			Discr:   t.Discr,
			Targets: b.switchSources[[2]BasicBlock{target, pred}],
		})
	default:
		edges = append(edges, PredEdge{Pred: pred, Kind: PlainEdge})
	}
	return edges
}

// Len returns the number of blocks.
func (b *Body) Len() int { return len(b.Blocks) }

// Block returns the data of block bb.
func (b *Body) Block(bb BasicBlock) *BlockData { return b.Blocks[bb] }

// Predecessors returns the distinct predecessors of bb in block order.
func (b *Body) Predecessors(bb BasicBlock) []BasicBlock { return b.preds[bb] }

// PredEdges returns the classified incoming edges of bb.
func (b *Body) PredEdges(bb BasicBlock) []PredEdge { return b.predEdges[bb] }

// SwitchSources returns the switch arms of pred's SwitchInt that route to
// target, or nil if pred does not end in a SwitchInt.
func (b *Body) SwitchSources(target, pred BasicBlock) []SwitchTarget {
	return b.switchSources[[2]BasicBlock{target, pred}]
}

// TerminatorLoc returns the location of the terminator of bb.
func (b *Body) TerminatorLoc(bb BasicBlock) Location {
	return Location{Block: bb, StatementIndex: len(b.Blocks[bb].Statements)}
}

// LocalName returns the recorded name of l, or its default spelling.
func (b *Body) LocalName(l Local) string {
	if int(l) < len(b.LocalNames) && b.LocalNames[l] != "" {
		return b.LocalNames[l]
	}
	return l.String()
}
