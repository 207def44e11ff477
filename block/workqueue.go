// Package block provides the work queue and traversal utilities used to walk
// the blocks of a mir.Body.
package block

import (
	"github.com/nickng/mirflow/mir"
	"golang.org/x/tools/container/intsets"
)

// WorkQueue is a FIFO queue of blocks in which a block appears at most once.
type WorkQueue struct {
	queue []mir.BasicBlock
	set   intsets.Sparse
}

// NewWorkQueue returns an empty WorkQueue for a body of n blocks.
func NewWorkQueue(n int) *WorkQueue {
	return &WorkQueue{queue: make([]mir.BasicBlock, 0, n)}
}

// Insert appends bb to the queue unless it is already queued, and reports
// whether it was added.
func (q *WorkQueue) Insert(bb mir.BasicBlock) bool {
	if !q.set.Insert(int(bb)) {
		return false
	}
	q.queue = append(q.queue, bb)
	return true
}

// Pop removes and returns the block at the front of the queue.
func (q *WorkQueue) Pop() (mir.BasicBlock, bool) {
	if len(q.queue) == 0 {
		return mir.NoBlock, false
	}
	bb := q.queue[0]
	q.queue = q.queue[1:]
	q.set.Remove(int(bb))
	return bb, true
}

// Len returns the number of queued blocks.
func (q *WorkQueue) Len() int { return len(q.queue) }
