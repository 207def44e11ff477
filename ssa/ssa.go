// Package ssa is a library to build and work with SSA.
// For most part the package contains helper or wrapper functions to use the
// packages in Go project's extra tools.
//
// In particular, the SSA IR is from golang.org/x/tools/go/ssa, and is the
// source the mir/lower package builds dataflow bodies from.
package ssa

import (
	"go/token"
	"io"

	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/loader"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Info holds the results of a SSA build for analysis.
// To populate this structure, the 'build' subpackage should be used.
type Info struct {
	IgnoredPkgs []string // Record of ignored package during the build process.

	FSet  *token.FileSet  // FileSet for parsed source files.
	Prog  *ssa.Program    // SSA IR for whole program.
	LProg *loader.Program // Loaded program from go/loader.

	BldLog io.Writer // Build log.
}

// SourceFunctions returns the non-synthetic functions with a body declared
// in the packages given to the build (not their dependencies), including
// methods and anonymous functions, ordered by position.
func (info *Info) SourceFunctions() []*ssa.Function {
	initial := make(map[*ssa.Package]bool)
	for _, pkgInfo := range info.LProg.InitialPackages() {
		if pkg := info.Prog.Package(pkgInfo.Pkg); pkg != nil {
			initial[pkg] = true
		}
	}
	var fns []*ssa.Function
	for fn := range ssautil.AllFunctions(info.Prog) {
		if fn.Blocks == nil || fn.Synthetic != "" || !initial[fn.Pkg] {
			continue
		}
		fns = append(fns, fn)
	}
	slices.SortFunc(fns, func(a, b *ssa.Function) bool {
		if a.Pos() != b.Pos() {
			return a.Pos() < b.Pos()
		}
		return a.String() < b.String()
	})
	return fns
}
