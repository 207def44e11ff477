package dataflow

import (
	"strings"
	"testing"

	"github.com/nickng/mirflow/mir"
	"golang.org/x/exp/slices"
)

func fullRange(dir Direction[*trace], terminatorIndex int) (from, to EffectIndex) {
	idx := allIndices(dir, terminatorIndex)
	return idx[0], idx[len(idx)-1]
}

// Tests that replaying the full range of a block is the same as applying the
// whole block.
func TestFullRangeMatchesBlock(t *testing.T) {
	body := straight(t)
	data := body.Block(0)
	for _, dir := range directions() {
		a := &traceAnalysis{dir: dir}
		whole := &trace{}
		dir.ApplyEffectsInBlock(a, body, whole, 0, func(mir.BasicBlock, *trace) {})

		ranged := &trace{}
		from, to := fullRange(dir, data.TerminatorIndex())
		dir.ApplyEffectsInRange(a, ranged, 0, data, from, to)
		if !slices.Equal(whole.events, ranged.events) {
			t.Errorf("%s: full range should match whole block\nwant %v\n got %v",
				dirName(dir), whole.events, ranged.events)
		}
		if want, got := 2*(data.TerminatorIndex()+1), len(ranged.events); want != got {
			t.Errorf("%s: want %d effects, got %d", dirName(dir), want, got)
		}
	}
}

// Tests that splitting a range anywhere and replaying both halves gives the
// same state as the unsplit range.
func TestSplitRange(t *testing.T) {
	body := straight(t)
	data := body.Block(0)
	for _, dir := range directions() {
		a := &traceAnalysis{dir: dir}
		idx := allIndices(dir, data.TerminatorIndex())
		from, to := idx[0], idx[len(idx)-1]

		full := &trace{}
		dir.ApplyEffectsInRange(a, full, 0, data, from, to)

		for i, mid := range idx[:len(idx)-1] {
			split := &trace{}
			dir.ApplyEffectsInRange(a, split, 0, data, from, mid)
			if want, got := full.events[:i+1], split.events; !slices.Equal(want, got) {
				t.Errorf("%s: [%v, %v] should be a prefix of the full range\nwant %v\n got %v",
					dirName(dir), from, mid, want, got)
			}
			next := mid.NextInForwardOrder()
			if !dir.IsForward() {
				next = mid.NextInBackwardOrder()
			}
			dir.ApplyEffectsInRange(a, split, 0, data, next, to)
			if !slices.Equal(full.events, split.events) {
				t.Errorf("%s: split at %v should match full range\nwant %v\n got %v",
					dirName(dir), mid, full.events, split.events)
			}
		}
	}
}

// Tests that single point ranges apply exactly one effect.
func TestSinglePointRange(t *testing.T) {
	body := straight(t)
	data := body.Block(0)
	for _, dir := range directions() {
		a := &traceAnalysis{dir: dir}
		for _, idx := range allIndices(dir, data.TerminatorIndex()) {
			state := &trace{}
			dir.ApplyEffectsInRange(a, state, 0, data, idx, idx)
			if want, got := 1, len(state.events); want != got {
				t.Errorf("%s: range [%v, %v] should apply %d effect, got %v",
					dirName(dir), idx, idx, want, state.events)
				continue
			}
			if !strings.HasPrefix(state.last(), idx.Effect.String()) {
				t.Errorf("%s: range [%v, %v] applied %q", dirName(dir), idx, idx, state.last())
			}
		}
	}
}

func TestInvalidRange(t *testing.T) {
	body := straight(t)
	data := body.Block(0)
	state := &trace{}

	fwd := &traceAnalysis{dir: Forward[*trace]{}}
	expectPanic(t, ErrInvalidRange, func() {
		Forward[*trace]{}.ApplyEffectsInRange(fwd, state, 0, data, Primary.AtIndex(1), Before.AtIndex(1))
	})
	expectPanic(t, ErrInvalidRange, func() {
		Forward[*trace]{}.ApplyEffectsInRange(fwd, state, 0, data, Before.AtIndex(2), Primary.AtIndex(0))
	})
	expectPanic(t, ErrIndexOutOfRange, func() {
		Forward[*trace]{}.ApplyEffectsInRange(fwd, state, 0, data, Before.AtIndex(0), Primary.AtIndex(9))
	})

	bwd := &traceAnalysis{dir: Backward[*trace]{}}
	expectPanic(t, ErrInvalidRange, func() {
		Backward[*trace]{}.ApplyEffectsInRange(bwd, state, 0, data, Before.AtIndex(0), Before.AtIndex(2))
	})
	expectPanic(t, ErrIndexOutOfRange, func() {
		Backward[*trace]{}.ApplyEffectsInRange(bwd, state, 0, data, Before.AtIndex(4), Primary.AtIndex(0))
	})
	if len(state.events) != 0 {
		t.Errorf("rejected ranges should not apply effects, got %v", state.events)
	}
}

// switchBody builds
//
//	bb0: switch x [1: bb1, 2: bb2, 3: bb1, otherwise: bb3]
//	bb1, bb2, bb3: return
func switchBody(t *testing.T) *mir.Body {
	b := mir.NewBuilder("switch")
	x := b.NewLocal("x")
	bb0, bb1, bb2, bb3 := b.NewBlock(), b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.Terminate(bb0, &mir.SwitchInt{
		Discr:   mir.Copy(mir.Place{Local: x}),
		Targets: mir.NewSwitchTargets([]uint64{1, 2, 3}, []mir.BasicBlock{bb1, bb2, bb1}, bb3),
	})
	for _, bb := range []mir.BasicBlock{bb1, bb2, bb3} {
		b.Terminate(bb, &mir.Return{})
	}
	return mustBuild(t, b)
}

// Tests that every switch arm gets its own edge effect on an independent
// copy of the exit state.
func TestForwardSwitchEdgeEffects(t *testing.T) {
	body := switchBody(t)
	a := &traceAnalysis{dir: Forward[*trace]{}, switchData: true}

	var targets []mir.BasicBlock
	var states []*trace
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 0, collect(&targets, &states))

	if want, got := 4, a.edgeCalls; want != got {
		t.Errorf("edge effect should be applied once per arm: want %d, got %d", want, got)
	}
	if want, got := []mir.BasicBlock{1, 2, 1, 3}, targets; !slices.Equal(want, got) {
		t.Errorf("propagation targets: want %v, got %v", want, got)
	}
	wantEdges := []string{"edge 1 -> bb1", "edge 2 -> bb2", "edge 3 -> bb1", "edge otherwise -> bb3"}
	for i, state := range states {
		if want, got := 3, len(state.events); want != got {
			t.Errorf("state %d should hold the terminator effects and one edge effect, got %v", i, state.events)
			continue
		}
		if want, got := wantEdges[i], state.last(); want != got {
			t.Errorf("state %d: want %q, got %q", i, want, got)
		}
	}
}

func TestForwardSwitchWithoutData(t *testing.T) {
	body := switchBody(t)
	a := &traceAnalysis{dir: Forward[*trace]{}}

	var targets []mir.BasicBlock
	var states []*trace
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 0, collect(&targets, &states))

	if want, got := 0, a.edgeCalls; want != got {
		t.Errorf("no edge effects without switch data: want %d, got %d", want, got)
	}
	if want, got := []mir.BasicBlock{1, 2, 1, 3}, targets; !slices.Equal(want, got) {
		t.Errorf("propagation targets: want %v, got %v", want, got)
	}
	for i, state := range states {
		if want, got := "primary bb0[0]", state.last(); want != got {
			t.Errorf("state %d should be the exit state: want %q, got %q", i, want, got)
		}
	}
}

// Tests that a backward switch edge carries every arm routing into the block.
func TestBackwardSwitchEdgeEffects(t *testing.T) {
	body := switchBody(t)
	a := &traceAnalysis{dir: Backward[*trace]{}, switchData: true}

	var targets []mir.BasicBlock
	var states []*trace
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 1, collect(&targets, &states))

	if want, got := 2, a.edgeCalls; want != got {
		t.Errorf("edge effect should be applied once per arm into bb1: want %d, got %d", want, got)
	}
	if want, got := []mir.BasicBlock{0, 0}, targets; !slices.Equal(want, got) {
		t.Errorf("propagation targets: want %v, got %v", want, got)
	}
	wantEdges := []string{"edge 1 -> bb1", "edge 3 -> bb1"}
	for i, state := range states {
		if want, got := 3, len(state.events); want != got {
			t.Errorf("state %d should hold the terminator effects and one edge effect, got %v", i, state.events)
			continue
		}
		if want, got := wantEdges[i], state.last(); want != got {
			t.Errorf("state %d: want %q, got %q", i, want, got)
		}
	}
}

// callBody builds
//
//	bb0: x = f() -> [return: bb1, unwind: bb1]
//	bb1: return
func callBody(t *testing.T) *mir.Body {
	b := mir.NewBuilder("call")
	x := b.NewLocal("x")
	bb0, bb1 := b.NewBlock(), b.NewBlock()
	b.Terminate(bb0, &mir.Call{
		Func:        mir.Const("f"),
		Destination: mir.Place{Local: x},
		Target:      bb1,
		Unwind:      bb1,
	})
	b.Terminate(bb1, &mir.Return{})
	return mustBuild(t, b)
}

// Tests that the cleanup edge of a call does not see the call-return effect
// even if cleanup and return lead to the same block.
func TestForwardCallCleanupOrder(t *testing.T) {
	body := callBody(t)
	a := &traceAnalysis{dir: Forward[*trace]{}}

	var targets []mir.BasicBlock
	var states []*trace
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 0, collect(&targets, &states))

	if want, got := []mir.BasicBlock{1, 1}, targets; !slices.Equal(want, got) {
		t.Fatalf("propagation targets: want %v, got %v", want, got)
	}
	if want, got := "primary bb0[0]", states[0].last(); want != got {
		t.Errorf("cleanup state should not see the return: want %q, got %q", want, got)
	}
	if want, got := "return bb0", states[1].last(); want != got {
		t.Errorf("return state should see the return: want %q, got %q", want, got)
	}
}

// Tests that every target of inline assembly sees the return effect once,
// and its unwind target does not.
func TestForwardInlineAsmTargets(t *testing.T) {
	b := mir.NewBuilder("asm")
	x := b.NewLocal("x")
	bb0, bb1, bb2, bb3 := b.NewBlock(), b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.Terminate(bb0, &mir.InlineAsm{
		Template: "nop",
		Operands: []mir.InlineAsmOperand{{Kind: mir.AsmOut, Place: mir.Place{Local: x}}},
		Targets:  []mir.BasicBlock{bb1, bb2},
		Unwind:   bb3,
	}).
		Terminate(bb1, &mir.Return{}).
		Terminate(bb2, &mir.Return{}).
		Terminate(bb3, &mir.UnwindResume{}).
		Cleanup(bb3)
	body := mustBuild(t, b)
	a := &traceAnalysis{dir: Forward[*trace]{}}

	var targets []mir.BasicBlock
	var states []*trace
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 0, collect(&targets, &states))

	if want, got := []mir.BasicBlock{3, 1, 2}, targets; !slices.Equal(want, got) {
		t.Fatalf("propagation targets: want %v, got %v", want, got)
	}
	if want, got := "primary bb0[0]", states[0].last(); want != got {
		t.Errorf("unwind state should not see the return: want %q, got %q", want, got)
	}
	for i, target := range targets[1:] {
		if want, got := "return bb0", states[i+1].last(); want != got {
			t.Errorf("%s: want %q, got %q", target, want, got)
		}
		if want, got := len(states[0].events)+1, len(states[i+1].events); want != got {
			t.Errorf("%s: return should apply once: want %d events, got %d", target, want, got)
		}
	}
}

func TestBackwardCallCleanupOrder(t *testing.T) {
	body := callBody(t)
	a := &traceAnalysis{dir: Backward[*trace]{}}

	var targets []mir.BasicBlock
	var states []*trace
	exit := &trace{}
	a.dir.ApplyEffectsInBlock(a, body, exit, 1, collect(&targets, &states))

	if want, got := []mir.BasicBlock{0, 0}, targets; !slices.Equal(want, got) {
		t.Fatalf("propagation targets: want %v, got %v", want, got)
	}
	if want, got := "return bb0", states[0].last(); want != got {
		t.Errorf("return edge should apply the return: want %q, got %q", want, got)
	}
	if want, got := "primary bb1[0]", states[1].last(); want != got {
		t.Errorf("cleanup edge should not see the return: want %q, got %q", want, got)
	}
	if want, got := "primary bb1[0]", exit.last(); want != got {
		t.Errorf("exit state should not see the return: want %q, got %q", want, got)
	}
}

func TestForwardDropEdges(t *testing.T) {
	b := mir.NewBuilder("drop")
	x := b.NewLocal("x")
	bb0, bb1, bb2 := b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.Terminate(bb0, &mir.Drop{Place: mir.Place{Local: x}, Target: bb1, Unwind: bb2}).
		Terminate(bb1, &mir.Return{}).
		Terminate(bb2, &mir.UnwindResume{}).
		Cleanup(bb2)
	body := mustBuild(t, b)
	a := &traceAnalysis{dir: Forward[*trace]{}}

	var targets []mir.BasicBlock
	var states []*trace
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 0, collect(&targets, &states))
	if want, got := []mir.BasicBlock{1, 2}, targets; !slices.Equal(want, got) {
		t.Errorf("drop should propagate to target then unwind: want %v, got %v", want, got)
	}

	targets, states = nil, nil
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 1, collect(&targets, &states))
	if len(targets) != 0 {
		t.Errorf("return should not propagate, got %v", targets)
	}
}

func TestBackwardYieldResume(t *testing.T) {
	b := mir.NewBuilder("yield")
	v, arg := b.NewLocal("v"), b.NewLocal("arg")
	bb0, bb1, bb2 := b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.Terminate(bb0, &mir.Yield{
		Value:     mir.Copy(mir.Place{Local: v}),
		Resume:    bb1,
		ResumeArg: mir.Place{Local: arg},
		Drop:      bb2,
	}).
		Terminate(bb1, &mir.Return{}).
		Terminate(bb2, &mir.Return{})
	body := mustBuild(t, b)
	a := &traceAnalysis{dir: Backward[*trace]{}}

	var targets []mir.BasicBlock
	var states []*trace
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 1, collect(&targets, &states))
	if want, got := []mir.BasicBlock{0}, targets; !slices.Equal(want, got) {
		t.Fatalf("propagation targets: want %v, got %v", want, got)
	}
	// The resume block is reported, not the yielding block.
	if want, got := "return bb1", states[0].last(); want != got {
		t.Errorf("resume edge should apply the return effect: want %q, got %q", want, got)
	}

	targets, states = nil, nil
	a.dir.ApplyEffectsInBlock(a, body, &trace{}, 2, collect(&targets, &states))
	if len(states) != 1 || states[0].last() != "primary bb2[0]" {
		t.Errorf("drop edge should not apply the return effect, got %v", states)
	}
}

// Tests the boolean branch scenario: with a counter starting at 0, the true
// edge adds 10 and the false edge adds 20, each to its own copy.
func TestCounterBranch(t *testing.T) {
	b := mir.NewBuilder("branch")
	cond := b.NewLocal("cond")
	entry, bbT, bbF, merge := b.NewBlock(), b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.Terminate(entry, &mir.SwitchInt{Discr: mir.Copy(mir.Place{Local: cond}), Targets: mir.If(bbT, bbF)}).
		Effect(bbT).Terminate(bbT, &mir.Goto{Target: merge}).
		Effect(bbF).Terminate(bbF, &mir.Goto{Target: merge}).
		Terminate(merge, &mir.Return{})
	body := mustBuild(t, b)

	var a counterAnalysis
	out := make(map[mir.BasicBlock]*counter)
	a.Direction().ApplyEffectsInBlock(a, body, &counter{}, entry, func(target mir.BasicBlock, state *counter) {
		out[target] = state.Clone()
	})
	if want, got := 2, len(out); want != got {
		t.Fatalf("entry should propagate to %d blocks, got %d", want, got)
	}
	if want, got := 10, out[bbT].n; want != got {
		t.Errorf("true branch: want %d, got %d", want, got)
	}
	if want, got := 20, out[bbF].n; want != got {
		t.Errorf("false branch: want %d, got %d", want, got)
	}
}
