// Command mirview prints the MIR bodies lowered from Go source code.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nickng/mirflow/block"
	"github.com/nickng/mirflow/mir"
	"github.com/nickng/mirflow/mir/lower"
	"github.com/nickng/mirflow/ssa/build"
	gossa "golang.org/x/tools/go/ssa"
)

const (
	Usage = `mirview is a tool for printing the MIR of Go source code.

Usage:

  mirview [options] file.go [files.go...]

Options:

`
)

var (
	buildlogPath string
	defaultArgs  bool
	outPath      string
	viewFunc     string
	showEdges    bool
	showSSA      bool
	dotAlgo      string

	out io.Writer
)

func init() {
	flag.BoolVar(&defaultArgs, "default", true, "Use default SSA build arguments")
	flag.StringVar(&buildlogPath, "log", "", "Specify build log file (use '-' for stdout)")
	flag.StringVar(&outPath, "out", "", "Specify output file (default: stdout)")
	flag.StringVar(&viewFunc, "func", "", `Specify the function to view (format: (import/path).FuncName, default: all)`)
	flag.BoolVar(&showEdges, "edges", false, "Show the incoming edges of each block")
	flag.BoolVar(&showSSA, "ssa", false, "Show the SSA function before its MIR")
	flag.StringVar(&dotAlgo, "callgraph", "", "Print the call graph built with the given algorithm (static, cha, rta) in DOT format instead")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}

	conf := build.FromFiles(flag.Args()).WithSourceNames()
	if defaultArgs {
		conf = conf.Default()
	}

	switch buildlogPath {
	case "":
	case "-":
		conf = conf.WithBuildLog(os.Stdout, log.LstdFlags)
	default:
		f, err := os.Create(buildlogPath)
		if err != nil {
			log.Fatalf("Cannot create log %s: %v", buildlogPath, err)
		}
		defer f.Close()
		conf = conf.WithBuildLog(f, log.LstdFlags)
	}

	switch outPath {
	case "":
		out = os.Stdout
	default:
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Cannot create output file %s: %v", outPath, err)
		}
		defer f.Close()
		out = f
	}

	info, err := conf.Build()
	if err != nil {
		log.Fatal("Cannot build SSA from files:", err)
	}
	if dotAlgo != "" {
		cg, err := info.BuildCallGraph(dotAlgo)
		if err != nil {
			log.Fatal("Cannot build call graph:", err)
		}
		if err := cg.WriteGraphviz(out); err != nil {
			log.Fatal("Cannot write call graph:", err)
		}
		return
	}

	fns := info.SourceFunctions()
	if viewFunc != "" {
		fn, err := info.FindFunc(viewFunc)
		if err != nil {
			log.Fatal("Cannot find function:", err)
		}
		fns = []*gossa.Function{fn}
	}
	for _, fn := range fns {
		if showSSA {
			if _, err := fn.WriteTo(out); err != nil {
				log.Fatal("Cannot write SSA:", err)
			}
		}
		body, err := lower.Function(fn)
		if err != nil {
			log.Fatal("Cannot lower function:", err)
		}
		if _, err := body.WriteTo(out); err != nil {
			log.Fatal("Cannot write MIR:", err)
		}
		if showEdges {
			writeEdges(out, body)
		}
		fmt.Fprintln(out)
	}
}

// writeEdges lists the classified incoming edges of the reachable blocks in
// breadth-first order.
func writeEdges(w io.Writer, body *mir.Body) {
	fmt.Fprintf(w, "// edges of %s\n", body.Name)
	block.TraverseEdges(body, func(_, to mir.BasicBlock) {
		for _, e := range body.PredEdges(to) {
			fmt.Fprintf(w, "//   %s -> %s (%s)\n", e.Pred, to, e.Kind)
		}
	})
}
