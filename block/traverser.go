package block

import (
	"github.com/nickng/mirflow/mir"
	"golang.org/x/tools/container/intsets"
)

// TraverseEdges takes a Body and apply visit to each edge leading to a block
// not visited yet, in breadth-first order from the start block. The start
// block itself is visited with from set to mir.NoBlock.
func TraverseEdges(body *mir.Body, visit func(from, to mir.BasicBlock)) {
	if body.Len() == 0 {
		return
	}
	type Edge struct {
		From, To mir.BasicBlock
	}
	var visited intsets.Sparse
	queue := []Edge{{From: mir.NoBlock, To: mir.StartBlock}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if visited.Insert(int(e.To)) {
			visit(e.From, e.To)
			for _, succ := range body.Block(e.To).Terminator.Successors() {
				queue = append(queue, Edge{From: e.To, To: succ})
			}
		}
	}
}
