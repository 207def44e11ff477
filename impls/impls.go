// Package impls holds the dataflow analyses shipped with mirflow. Both work
// on sets of locals.
package impls

import (
	"github.com/nickng/mirflow/bitset"
	"github.com/nickng/mirflow/dataflow"
	"github.com/nickng/mirflow/mir"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ErrUnknownAnalysis is returned by Lookup for an unregistered name.
var ErrUnknownAnalysis = errors.New("impls: unknown analysis")

var registry = map[string]func() dataflow.Analysis[*bitset.Set]{
	"liveness": func() dataflow.Analysis[*bitset.Set] { return MaybeLiveLocals{} },
	"assigned": func() dataflow.Analysis[*bitset.Set] { return MaybeAssignedLocals{} },
}

// Lookup returns a new instance of the analysis registered as name.
func Lookup(name string) (dataflow.Analysis[*bitset.Set], error) {
	newAnalysis, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAnalysis, "%q (have %v)", name, Names())
	}
	return newAnalysis(), nil
}

// Names returns the registered analysis names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// readOperands calls f on every place read by ops.
func readOperands(ops []mir.Operand, f func(mir.Place)) {
	for _, op := range ops {
		if !op.IsConst {
			f(op.Place)
		}
	}
}

// terminatorReads calls f on every place read by term. Places written when a
// call-like terminator returns are not included.
func terminatorReads(term mir.Terminator, f func(mir.Place)) {
	switch t := term.(type) {
	case *mir.SwitchInt:
		readOperands([]mir.Operand{t.Discr}, f)
	case *mir.Return:
		readOperands(t.Operands, f)
	case *mir.Panic:
		readOperands([]mir.Operand{t.Arg}, f)
	case *mir.Drop:
		f(t.Place)
	case *mir.Call:
		readOperands(append([]mir.Operand{t.Func}, t.Args...), f)
	case *mir.Yield:
		readOperands([]mir.Operand{t.Value}, f)
	case *mir.InlineAsm:
		for _, op := range t.Operands {
			if op.Kind == mir.AsmIn || op.Kind == mir.AsmInOut {
				readOperands([]mir.Operand{op.In}, f)
			}
		}
	}
}
