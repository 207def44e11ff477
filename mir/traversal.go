package mir

import (
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// Order implements graph.Iterator: the number of blocks.
func (b *Body) Order() int { return len(b.Blocks) }

// Visit implements graph.Iterator, visiting the distinct successors of block
// v in terminator order. Every edge has cost 1.
func (b *Body) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	var seen []BasicBlock
	for _, succ := range b.Blocks[v].Terminator.Successors() {
		if slices.Contains(seen, succ) {
			continue
		}
		seen = append(seen, succ)
		if do(int(succ), 1) {
			return true
		}
	}
	return false
}

// Reachable reports, per block, whether it is reachable from StartBlock.
func (b *Body) Reachable() []bool {
	reachable := make([]bool, len(b.Blocks))
	reachable[StartBlock] = true
	graph.BFS(b, int(StartBlock), func(_, w int, _ int64) {
		reachable[w] = true
	})
	return reachable
}

// CyclicBlocks reports, per block, whether it lies on a cycle of the graph.
func (b *Body) CyclicBlocks() []bool {
	cyclic := make([]bool, len(b.Blocks))
	for _, component := range graph.StrongComponents(b) {
		if len(component) > 1 {
			for _, v := range component {
				cyclic[v] = true
			}
			continue
		}
		v := component[0]
		b.Visit(v, func(w int, _ int64) bool {
			if w == v {
				cyclic[v] = true
				return true
			}
			return false
		})
	}
	return cyclic
}

// Postorder returns the blocks reachable from StartBlock in depth-first
// postorder.
func (b *Body) Postorder() []BasicBlock {
	type frame struct {
		bb    BasicBlock
		succs []BasicBlock
	}
	visited := make([]bool, len(b.Blocks))
	order := make([]BasicBlock, 0, len(b.Blocks))
	push := func(stack []frame, bb BasicBlock) []frame {
		visited[bb] = true
		return append(stack, frame{bb: bb, succs: b.Blocks[bb].Terminator.Successors()})
	}
	stack := push(nil, StartBlock)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.succs) == 0 {
			order = append(order, top.bb)
			stack = stack[:len(stack)-1]
			continue
		}
		next := top.succs[0]
		top.succs = top.succs[1:]
		if !visited[next] {
			stack = push(stack, next)
		}
	}
	return order
}

// ReversePostorder returns the blocks reachable from StartBlock in reverse
// postorder: every block comes before its successors except along back edges.
func (b *Body) ReversePostorder() []BasicBlock {
	po := b.Postorder()
	rpo := make([]BasicBlock, len(po))
	for i, bb := range po {
		rpo[len(po)-1-i] = bb
	}
	return rpo
}
