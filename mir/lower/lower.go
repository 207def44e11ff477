// Package lower builds mir bodies from Go functions in SSA form.
//
// SSA basic block i becomes mir block i. Every call ends its block with a
// mir.Call terminator returning into a fresh continuation block, so the call
// result is only assigned on the return edge. If the function has a recover
// block, it is the unwind target of every call and panic.
//
// Phi nodes are lowered to assignments at the end of each predecessor.
package lower

import (
	"fmt"
	"go/ast"

	"github.com/nickng/mirflow/mir"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"
)

// ErrNoBody is returned for functions without a body, e.g. external or
// assembly functions.
var ErrNoBody = errors.New("lower: function has no body")

type lowerer struct {
	fn     *ssa.Function
	b      *mir.Builder
	locals map[ssa.Value]mir.Local
	entry  []mir.BasicBlock // Entry mir block of each SSA block.
	exit   []mir.BasicBlock // Mir block holding the terminator of each SSA block.
	unwind mir.BasicBlock
}

// Function lowers fn to a mir.Body named after fn.
func Function(fn *ssa.Function) (*mir.Body, error) {
	if len(fn.Blocks) == 0 {
		return nil, errors.Wrap(ErrNoBody, fn.String())
	}
	l := &lowerer{
		fn:     fn,
		b:      mir.NewBuilder(fn.String()),
		locals: make(map[ssa.Value]mir.Local),
		entry:  make([]mir.BasicBlock, len(fn.Blocks)),
		exit:   make([]mir.BasicBlock, len(fn.Blocks)),
		unwind: mir.NoBlock,
	}
	l.declareLocals()
	for _, blk := range fn.Blocks {
		l.entry[blk.Index] = l.b.NewBlock()
		l.b.Data(l.entry[blk.Index]).Comment = blk.Comment
	}
	if fn.Recover != nil {
		l.unwind = l.entry[fn.Recover.Index]
		l.b.Cleanup(l.unwind)
	}
	for _, blk := range fn.Blocks {
		l.exit[blk.Index] = l.lowerInstrs(blk)
	}
	for _, blk := range fn.Blocks {
		l.lowerPhiMoves(blk)
		l.b.Terminate(l.exit[blk.Index], l.terminator(blk))
	}
	body, err := l.b.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "lower %s", fn)
	}
	return body, nil
}

// declareLocals allocates the arguments (parameters then free variables)
// and one local per SSA value.
func (l *lowerer) declareLocals() {
	names := sourceNames(l.fn)
	for _, p := range l.fn.Params {
		l.locals[p] = l.b.NewArg(p.Name())
	}
	for _, fv := range l.fn.FreeVars {
		l.locals[fv] = l.b.NewArg(fv.Name())
	}
	for _, blk := range l.fn.Blocks {
		for _, instr := range blk.Instrs {
			v, ok := instr.(ssa.Value)
			if !ok {
				continue
			}
			name := v.Name()
			if src, ok := names[v]; ok {
				name = fmt.Sprintf("%s (%s)", name, src)
			}
			l.locals[v] = l.b.NewLocal(name)
		}
	}
}

// sourceNames maps values to the source identifiers they are bound to.
func sourceNames(fn *ssa.Function) map[ssa.Value]string {
	names := make(map[ssa.Value]string)
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			ref, ok := instr.(*ssa.DebugRef)
			if !ok || ref.IsAddr {
				continue
			}
			if id, ok := ref.Expr.(*ast.Ident); ok {
				names[ref.X] = id.Name
			}
		}
	}
	return names
}

func (l *lowerer) operand(v ssa.Value) mir.Operand {
	if local, ok := l.locals[v]; ok {
		return mir.Copy(mir.Place{Local: local})
	}
	// Constants, functions, globals and builtins.
	return mir.Const(v.Name())
}

func (l *lowerer) operands(instr ssa.Instruction) []mir.Operand {
	var ops []mir.Operand
	for _, rand := range instr.Operands(nil) {
		if rand != nil && *rand != nil {
			ops = append(ops, l.operand(*rand))
		}
	}
	return ops
}

// lowerInstrs lowers the non-control instructions of blk and returns the
// block left open for its terminator.
func (l *lowerer) lowerInstrs(blk *ssa.BasicBlock) mir.BasicBlock {
	curr := l.entry[blk.Index]
	for _, instr := range blk.Instrs {
		switch v := instr.(type) {
		case *ssa.DebugRef, *ssa.Phi, *ssa.Jump, *ssa.If, *ssa.Return, *ssa.Panic:
			// Phis are lowered in predecessors, the rest are terminators.

		case *ssa.Call:
			next := l.b.NewBlock()
			l.b.Terminate(curr, l.call(v, next))
			curr = next

		case ssa.Value:
			l.b.Push(curr, mir.Statement{
				Kind:     mir.Assign,
				Place:    mir.Place{Local: l.locals[v]},
				Operands: l.operands(instr),
				Text:     instr.String(),
			})

		default:
			l.b.Push(curr, mir.Statement{
				Kind:     mir.SideEffect,
				Operands: l.operands(instr),
				Text:     instr.String(),
			})
		}
	}
	return curr
}

func (l *lowerer) call(instr *ssa.Call, next mir.BasicBlock) *mir.Call {
	common := instr.Common()
	var fn mir.Operand
	var args []mir.Operand
	if common.IsInvoke() {
		fn = mir.Const(common.Method.Name())
		args = append(args, l.operand(common.Value))
	} else {
		fn = l.operand(common.Value)
	}
	for _, arg := range common.Args {
		args = append(args, l.operand(arg))
	}
	return &mir.Call{
		Func:        fn,
		Args:        args,
		Destination: mir.Place{Local: l.locals[instr]},
		Target:      next,
		Unwind:      l.unwind,
	}
}

// lowerPhiMoves appends to the exit of each predecessor of blk the
// assignment of its incoming value to every phi of blk.
func (l *lowerer) lowerPhiMoves(blk *ssa.BasicBlock) {
	for _, instr := range blk.Instrs {
		phi, ok := instr.(*ssa.Phi)
		if !ok {
			break // Phis come first.
		}
		for i, edge := range phi.Edges {
			pred := blk.Preds[i]
			l.b.Push(l.exit[pred.Index], mir.Statement{
				Kind:     mir.Assign,
				Place:    mir.Place{Local: l.locals[phi]},
				Operands: []mir.Operand{l.operand(edge)},
				Text:     fmt.Sprintf("φ %s from %d", phi.Name(), pred.Index),
			})
		}
	}
}

func (l *lowerer) terminator(blk *ssa.BasicBlock) mir.Terminator {
	switch instr := blk.Instrs[len(blk.Instrs)-1].(type) {
	case *ssa.Jump:
		return &mir.Goto{Target: l.entry[blk.Succs[0].Index]}
	case *ssa.If:
		return &mir.SwitchInt{
			Discr:   l.operand(instr.Cond),
			Targets: mir.If(l.entry[blk.Succs[0].Index], l.entry[blk.Succs[1].Index]),
		}
	case *ssa.Return:
		var ops []mir.Operand
		for _, res := range instr.Results {
			ops = append(ops, l.operand(res))
		}
		return &mir.Return{Operands: ops}
	case *ssa.Panic:
		return &mir.Panic{Arg: l.operand(instr.X), Unwind: l.unwind}
	default:
		return &mir.Unreachable{}
	}
}
