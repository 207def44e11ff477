package dataflow

import "github.com/nickng/mirflow/mir"

// Cursor inspects the state of Results at arbitrary points of a Body.
//
// Seeking to a point later in the same block (in the direction of the
// analysis) only replays the effects in between. Seeking anywhere else starts
// again from the block's boundary state.
type Cursor[D Domain[D]] struct {
	body    *mir.Body
	results *Results[D]
	state   D

	block mir.BasicBlock
	curr  EffectIndex
	// atEntry is set when no effect of block is applied to state yet.
	atEntry bool

	// needsReset is set when state may not correspond to the current
	// position, e.g. after ApplyCustomEffect.
	needsReset bool
}

// NewCursor returns a Cursor over results of body.
func NewCursor[D Domain[D]](body *mir.Body, results *Results[D]) *Cursor[D] {
	return &Cursor[D]{
		body:       body,
		results:    results,
		state:      results.Analysis.BottomValue(body),
		block:      mir.StartBlock,
		atEntry:    true,
		needsReset: true,
	}
}

// Body returns the body the cursor walks.
func (c *Cursor[D]) Body() *mir.Body { return c.body }

// Results returns the results the cursor reads.
func (c *Cursor[D]) Results() *Results[D] { return c.results }

// Get returns the state at the current position. The caller must not modify
// it; use ApplyCustomEffect instead.
func (c *Cursor[D]) Get() D { return c.state }

// SeekToBlockStart moves to the entry of block, in control-flow order.
func (c *Cursor[D]) SeekToBlockStart(block mir.BasicBlock) {
	if c.results.Analysis.Direction().IsForward() {
		c.seekToBoundary(block)
		return
	}
	c.seekAfter(mir.Location{Block: block, StatementIndex: 0}, Primary)
}

// SeekToBlockEnd moves to the exit of block, after the primary effect of its
// terminator.
func (c *Cursor[D]) SeekToBlockEnd(block mir.BasicBlock) {
	if c.results.Analysis.Direction().IsForward() {
		c.seekAfter(c.body.TerminatorLoc(block), Primary)
		return
	}
	c.seekToBoundary(block)
}

// SeekBeforePrimaryEffect moves to the point just before the primary effect
// at loc.
func (c *Cursor[D]) SeekBeforePrimaryEffect(loc mir.Location) {
	c.seekAfter(loc, Before)
}

// SeekAfterPrimaryEffect moves to the point just after the primary effect at
// loc.
func (c *Cursor[D]) SeekAfterPrimaryEffect(loc mir.Location) {
	c.seekAfter(loc, Primary)
}

// ApplyCustomEffect applies f to the state at the current position. The next
// seek starts again from a block boundary.
func (c *Cursor[D]) ApplyCustomEffect(f func(a Analysis[D], state D)) {
	f(c.results.Analysis, c.state)
	c.needsReset = true
}

func (c *Cursor[D]) seekToBoundary(block mir.BasicBlock) {
	c.state.CloneFrom(c.results.EntrySetForBlock(block))
	c.block, c.atEntry, c.needsReset = block, true, false
}

func (c *Cursor[D]) seekAfter(target mir.Location, effect Effect) {
	data := c.body.Block(target.Block)
	to := effect.AtIndex(target.StatementIndex)
	checkIndex(to, data.TerminatorIndex())

	dir := c.results.Analysis.Direction()
	switch {
	case c.needsReset || c.block != target.Block:
		c.seekToBoundary(target.Block)
	case !c.atEntry:
		if c.curr == to {
			return
		}
		if dir.Precedes(to, c.curr) {
			c.seekToBoundary(target.Block)
		}
	}

	var from EffectIndex
	switch {
	case !c.atEntry && dir.IsForward():
		from = c.curr.NextInForwardOrder()
	case !c.atEntry:
		from = c.curr.NextInBackwardOrder()
	case dir.IsForward():
		from = Before.AtIndex(0)
	default:
		from = Before.AtIndex(data.TerminatorIndex())
	}

	dir.ApplyEffectsInRange(c.results.Analysis, c.state, target.Block, data, from, to)
	c.curr, c.atEntry = to, false
}
