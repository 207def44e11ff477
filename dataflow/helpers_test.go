package dataflow

import (
	"fmt"
	"testing"

	"github.com/nickng/mirflow/mir"
	"github.com/pkg/errors"
)

// trace is a state recording every effect applied to it.
type trace struct{ events []string }

func (t *trace) Clone() *trace {
	return &trace{events: append([]string(nil), t.events...)}
}

func (t *trace) CloneFrom(src *trace) {
	t.events = append(t.events[:0], src.events...)
}

func (t *trace) add(format string, args ...interface{}) {
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func (t *trace) last() string {
	if len(t.events) == 0 {
		return ""
	}
	return t.events[len(t.events)-1]
}

// traceAnalysis logs effects into a trace.
type traceAnalysis struct {
	Defaults[*trace]
	dir        Direction[*trace]
	switchData bool

	applied   int // Statement and terminator effects applied.
	edgeCalls int // Switch edge effects applied.
}

func (a *traceAnalysis) Name() string                 { return "trace" }
func (a *traceAnalysis) Direction() Direction[*trace] { return a.dir }
func (a *traceAnalysis) BottomValue(*mir.Body) *trace { return &trace{} }

func (a *traceAnalysis) ApplyBeforeStatementEffect(state *trace, _ *mir.Statement, loc mir.Location) {
	a.applied++
	state.add("before %s", loc)
}

func (a *traceAnalysis) ApplyPrimaryStatementEffect(state *trace, _ *mir.Statement, loc mir.Location) {
	a.applied++
	state.add("primary %s", loc)
}

func (a *traceAnalysis) ApplyBeforeTerminatorEffect(state *trace, _ mir.Terminator, loc mir.Location) {
	a.applied++
	state.add("before %s", loc)
}

func (a *traceAnalysis) ApplyPrimaryTerminatorEffect(state *trace, term mir.Terminator, loc mir.Location) mir.TerminatorEdges {
	a.applied++
	state.add("primary %s", loc)
	return mir.EdgesOf(term)
}

func (a *traceAnalysis) ApplyCallReturnEffect(state *trace, block mir.BasicBlock, _ mir.CallReturnPlaces) {
	state.add("return %s", block)
}

func (a *traceAnalysis) GetSwitchIntData(mir.BasicBlock, mir.Operand) interface{} {
	if a.switchData {
		return a
	}
	return nil
}

func (a *traceAnalysis) ApplySwitchIntEdgeEffect(data interface{}, state *trace, target mir.SwitchTarget) {
	if data != a {
		panic("switch data not passed through")
	}
	a.edgeCalls++
	state.add("edge %s", target)
}

// counter is a single integer state.
type counter struct{ n int }

func (c *counter) Clone() *counter        { return &counter{n: c.n} }
func (c *counter) CloneFrom(src *counter) { c.n = src.n }

// counterAnalysis counts statements and adds 10 on the true edge of a
// boolean switch and 20 on the false edge.
type counterAnalysis struct {
	Defaults[*counter]
}

func (counterAnalysis) Name() string                   { return "counter" }
func (counterAnalysis) Direction() Direction[*counter] { return Forward[*counter]{} }
func (counterAnalysis) BottomValue(*mir.Body) *counter { return &counter{} }

func (counterAnalysis) ApplyPrimaryStatementEffect(state *counter, _ *mir.Statement, _ mir.Location) {
	state.n++
}

func (counterAnalysis) GetSwitchIntData(mir.BasicBlock, mir.Operand) interface{} { return struct{}{} }

func (counterAnalysis) ApplySwitchIntEdgeEffect(_ interface{}, state *counter, target mir.SwitchTarget) {
	if target.Otherwise {
		state.n += 10
		return
	}
	state.n += 20
}

// straight builds
//
//	bb0: x = 1; y = x; z = y; goto bb1
//	bb1: return
func straight(t *testing.T) *mir.Body {
	b := mir.NewBuilder("straight")
	x, y, z := b.NewLocal("x"), b.NewLocal("y"), b.NewLocal("z")
	bb0, bb1 := b.NewBlock(), b.NewBlock()
	b.Assign(bb0, x, mir.Const("1")).
		Assign(bb0, y, mir.Copy(mir.Place{Local: x})).
		Assign(bb0, z, mir.Copy(mir.Place{Local: y})).
		Terminate(bb0, &mir.Goto{Target: bb1}).
		Terminate(bb1, &mir.Return{})
	return mustBuild(t, b)
}

func mustBuild(t *testing.T, b *mir.Builder) *mir.Body {
	t.Helper()
	body, err := b.Build()
	if err != nil {
		t.Fatalf("cannot build body: %v", err)
	}
	return body
}

// collect returns a propagate callback storing a copy of every propagated
// state, in order.
func collect[D Domain[D]](targets *[]mir.BasicBlock, states *[]D) func(mir.BasicBlock, D) {
	return func(target mir.BasicBlock, state D) {
		*targets = append(*targets, target)
		*states = append(*states, state.Clone())
	}
}

func expectPanic(t *testing.T, cause error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("want panic caused by %v, got %v", cause, r)
		}
		if want, got := cause, errors.Cause(err); want != got {
			t.Errorf("want panic caused by %v, got %v", want, got)
		}
	}()
	f()
}

func directions() []Direction[*trace] {
	return []Direction[*trace]{Forward[*trace]{}, Backward[*trace]{}}
}

func dirName(dir Direction[*trace]) string {
	if dir.IsForward() {
		return "forward"
	}
	return "backward"
}

// allIndices returns every effect index of a block in the order of dir.
func allIndices(dir Direction[*trace], terminatorIndex int) []EffectIndex {
	var idx []EffectIndex
	if dir.IsForward() {
		for i := 0; i <= terminatorIndex; i++ {
			idx = append(idx, Before.AtIndex(i), Primary.AtIndex(i))
		}
		return idx
	}
	for i := terminatorIndex; i >= 0; i-- {
		idx = append(idx, Before.AtIndex(i), Primary.AtIndex(i))
	}
	return idx
}
