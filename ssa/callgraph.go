package ssa

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/ssa"
)

// ErrUnknownAlgo is returned by BuildCallGraph for an unsupported algorithm.
var ErrUnknownAlgo = errors.New("callgraph: unknown algorithm")

// CallGraph is a representation of CallGraph, wrapped with metadata.
type CallGraph struct {
	cg      *callgraph.Graph // Internal cached copy of the callgraph.
	prog    *ssa.Program     // SSA Program for which the callgraph is built from.
	usedFns map[*ssa.Function]bool
}

// BuildCallGraph constructs a callgraph from ssa.Info.
// algo is algorithm available in golang.org/x/tools/go/callgraph, which
// includes:
//  - static  static calls only (unsound)
//  - cha     Class Hierarchy Analysis
//  - rta     Rapid Type Analysis
func (info *Info) BuildCallGraph(algo string) (*CallGraph, error) {
	var cg *callgraph.Graph
	switch algo {
	case "static":
		cg = static.CallGraph(info.Prog)

	case "cha":
		cg = cha.CallGraph(info.Prog)

	case "rta":
		mains, err := MainPkgs(info.Prog)
		if err != nil {
			return nil, err
		}
		var roots []*ssa.Function
		for _, main := range mains {
			roots = append(roots, main.Func("init"), main.Func("main"))
		}
		cg = rta.Analyze(roots, true).CallGraph

	default:
		return nil, errors.Wrap(ErrUnknownAlgo, algo)
	}
	cg.DeleteSyntheticNodes()
	return &CallGraph{cg: cg, prog: info.Prog}, nil
}

// Used reports whether fn is reachable from main.init() or main.main().
func (g *CallGraph) Used(fn *ssa.Function) (bool, error) {
	if g.usedFns == nil {
		if err := g.findUsed(); err != nil {
			return false, err
		}
	}
	return g.usedFns[fn], nil
}

func (g *CallGraph) findUsed() error {
	callTree := make(map[*ssa.Function][]*ssa.Function)
	if err := callgraph.GraphVisitEdges(g.cg, func(edge *callgraph.Edge) error {
		callTree[edge.Caller.Func] = append(callTree[edge.Caller.Func], edge.Callee.Func)
		return nil
	}); err != nil {
		return errors.Wrap(err, "callgraph: failed to visit edges")
	}

	mains, err := MainPkgs(g.prog)
	if err != nil {
		return errors.Wrap(err, "callgraph: failed to find main packages (Check if this this a command?)")
	}
	var fnQueue []*ssa.Function
	for _, main := range mains {
		if main.Func("main") != nil {
			fnQueue = append(fnQueue, main.Func("init"), main.Func("main"))
		}
	}
	g.usedFns = make(map[*ssa.Function]bool)
	for len(fnQueue) > 0 {
		headFn := fnQueue[0]
		fnQueue = fnQueue[1:]
		if g.usedFns[headFn] {
			continue
		}
		g.usedFns[headFn] = true
		fnQueue = append(fnQueue, callTree[headFn]...)
	}
	return nil
}

// WriteGraphviz writes callgraph to w in graphviz dot format.
func (g *CallGraph) WriteGraphviz(w io.Writer) error {
	bufw := bufio.NewWriter(w)
	bufw.WriteString("digraph callgraph {\n")
	if err := callgraph.GraphVisitEdges(g.cg, func(edge *callgraph.Edge) error {
		_, err := fmt.Fprintf(bufw, "  %q -> %q\n", edge.Caller.Func, edge.Callee.Func)
		return err
	}); err != nil {
		return err
	}
	bufw.WriteString("}\n")
	return bufw.Flush()
}
