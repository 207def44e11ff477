package dataflow

import (
	"testing"

	"github.com/nickng/mirflow/mir"
	"golang.org/x/exp/slices"
)

func TestCursorForward(t *testing.T) {
	body := straight(t)
	results := traceResults(Forward[*trace]{}, body)
	a := results.Analysis.(*traceAnalysis)
	c := results.Cursor(body)

	c.SeekAfterPrimaryEffect(mir.Location{Block: 0, StatementIndex: 0})
	if want, got := []string{"before bb0[0]", "primary bb0[0]"}, c.Get().events; !slices.Equal(want, got) {
		t.Errorf("after bb0[0]: want %v, got %v", want, got)
	}

	// Moving forward in the same block only applies the effects in between.
	a.applied = 0
	c.SeekBeforePrimaryEffect(mir.Location{Block: 0, StatementIndex: 2})
	if want, got := 3, a.applied; want != got {
		t.Errorf("incremental seek should apply %d effects, got %d", want, got)
	}
	if want, got := "before bb0[2]", c.Get().last(); want != got {
		t.Errorf("before bb0[2]: want %q, got %q", want, got)
	}
	if want, got := 5, len(c.Get().events); want != got {
		t.Errorf("before bb0[2]: want %d effects, got %v", want, c.Get().events)
	}

	// Seeking to the current position does nothing.
	a.applied = 0
	c.SeekBeforePrimaryEffect(mir.Location{Block: 0, StatementIndex: 2})
	if want, got := 0, a.applied; want != got {
		t.Errorf("seek to current position should apply %d effects, got %d", want, got)
	}

	// Moving backward starts again from the block entry.
	c.SeekAfterPrimaryEffect(mir.Location{Block: 0, StatementIndex: 1})
	if want, got := 4, len(c.Get().events); want != got {
		t.Errorf("after bb0[1]: want %d effects, got %v", want, c.Get().events)
	}

	c.SeekToBlockEnd(0)
	if want, got := "primary bb0[3]", c.Get().last(); want != got {
		t.Errorf("block end: want %q, got %q", want, got)
	}
	c.SeekToBlockStart(0)
	if want, got := 0, len(c.Get().events); want != got {
		t.Errorf("block start should be the entry state, got %v", c.Get().events)
	}
}

func TestCursorBackward(t *testing.T) {
	body := straight(t)
	results := traceResults(Backward[*trace]{}, body)
	c := results.Cursor(body)

	c.SeekToBlockEnd(0)
	if want, got := 0, len(c.Get().events); want != got {
		t.Errorf("block end should be the exit state, got %v", c.Get().events)
	}
	c.SeekBeforePrimaryEffect(mir.Location{Block: 0, StatementIndex: 1})
	want := []string{
		"before bb0[3]", "primary bb0[3]",
		"before bb0[2]", "primary bb0[2]",
		"before bb0[1]",
	}
	if got := c.Get().events; !slices.Equal(want, got) {
		t.Errorf("before bb0[1]:\nwant %v\n got %v", want, got)
	}
	c.SeekToBlockStart(0)
	if want, got := "primary bb0[0]", c.Get().last(); want != got {
		t.Errorf("block start: want %q, got %q", want, got)
	}
	if want, got := 8, len(c.Get().events); want != got {
		t.Errorf("block start: want %d effects, got %v", want, c.Get().events)
	}
}

func TestCursorCustomEffect(t *testing.T) {
	body := straight(t)
	results := traceResults(Forward[*trace]{}, body)
	c := results.Cursor(body)

	loc := mir.Location{Block: 0, StatementIndex: 1}
	c.SeekAfterPrimaryEffect(loc)
	c.ApplyCustomEffect(func(_ Analysis[*trace], state *trace) { state.add("custom") })
	if want, got := "custom", c.Get().last(); want != got {
		t.Errorf("custom effect: want %q, got %q", want, got)
	}
	c.SeekAfterPrimaryEffect(loc)
	if want, got := "primary bb0[1]", c.Get().last(); want != got {
		t.Errorf("seek after a custom effect should reset: want %q, got %q", want, got)
	}
}

func TestCursorSwitchBlocks(t *testing.T) {
	body := straight(t)
	results := traceResults(Forward[*trace]{}, body)
	results.EntrySets[1].add("entry bb1")
	c := results.Cursor(body)

	c.SeekToBlockEnd(0)
	c.SeekBeforePrimaryEffect(body.TerminatorLoc(1))
	if want, got := []string{"entry bb1", "before bb1[0]"}, c.Get().events; !slices.Equal(want, got) {
		t.Errorf("before bb1 terminator: want %v, got %v", want, got)
	}
	expectPanic(t, ErrIndexOutOfRange, func() {
		c.SeekAfterPrimaryEffect(mir.Location{Block: 1, StatementIndex: 5})
	})
}
