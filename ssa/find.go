package ssa

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"
)

var (
	recvPathRe = regexp.MustCompile(`^\((?P<pkg>[^)]+)\)\.(?P<fn>.+)$`)
	quotPathRe = regexp.MustCompile(`^"(?P<pkg>[^"]+)"\.(?P<fn>.+)$`)
)

// FindFunc parses path (e.g. "github.com/nickng/mirflow/ssa".MainPkgs, or
// main.foo$1 for an anonymous function) and returns the source function of
// that name.
// A path without a package part matches by function name alone.
func (info *Info) FindFunc(path string) (*ssa.Function, error) {
	pkgPath, fnName := parseFuncPath(path)
	for _, fn := range info.SourceFunctions() {
		if fn.Name() != fnName {
			continue
		}
		if pkgPath == "" || fn.Pkg.Pkg.Path() == pkgPath || fn.Pkg.Pkg.Name() == pkgPath {
			return fn, nil
		}
	}
	return nil, errors.Wrap(ErrNoFunc, path)
}

// parseFuncPath splits path to package and function segments.
// Does not handle complex functions with receivers.
func parseFuncPath(path string) (pkgPath, fnName string) {
	if len(path) < 1 {
		return "", ""
	}
	switch path[0] {
	case '(':
		if submatches := recvPathRe.FindStringSubmatch(path); len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	case '"':
		if submatches := quotPathRe.FindStringSubmatch(path); len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	default:
		if i := strings.LastIndex(path, "."); i >= 0 {
			return path[:i], path[i+1:]
		}
	}
	return "", path
}
