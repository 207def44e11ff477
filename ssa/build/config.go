package build

import (
	"go/build"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/nickng/mirflow/ssa"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/loader"
	gossa "golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// srcReader is a wrapper for source code which can be read through a NewReader.
type srcReader interface {
	NewReader() io.Reader
}

// Configurer sets up a build before lowering.
type Configurer interface {
	Builder
	Default() Configurer
	AddBadPkg(pkg, reason string) Configurer
	WithBuildLog(l io.Writer, flags int) Configurer
	WithSourceNames() Configurer
}

// Config represents a build configuration.
type Config struct {
	badPkgs map[string]string
	mode    gossa.BuilderMode

	bldLog    io.Writer // Build log.
	bldLFlags int       // Build log flags.

	src srcReader // src points to the program source.
}

func newConfig(src srcReader) *Config {
	return &Config{
		badPkgs:   make(map[string]string),
		mode:      gossa.BareInits,
		bldLog:    ioutil.Discard,
		bldLFlags: log.LstdFlags,
		src:       src,
	}
}

// WithBuildLog adds build log to config.
func (c *Config) WithBuildLog(l io.Writer, flags int) Configurer {
	c.bldLog = l
	c.bldLFlags = flags
	return c
}

// AddBadPkg marks a package 'bad' to avoid building its function bodies.
func (c *Config) AddBadPkg(pkg, reason string) Configurer {
	c.badPkgs[pkg] = reason
	return c
}

// WithSourceNames keeps the source identifiers bound to SSA values
// (ssa.DebugRef) so lowered locals are named after them.
func (c *Config) WithSourceNames() Configurer {
	c.mode |= gossa.GlobalDebug
	return c
}

// Build loads, type checks and builds SSA for the configured source.
func (c *Config) Build() (*ssa.Info, error) {
	bldLog := log.New(c.bldLog, "ssabuild: ", c.bldLFlags)
	lprog, err := c.load()
	if err != nil {
		return nil, err
	}
	bldLog.Print("Program loaded and type checked")

	prog := ssautil.CreateProgram(lprog, c.mode)
	ignored := c.buildPackages(prog, lprog, bldLog)
	bldLog.Printf("SSA built for %d packages", len(lprog.AllPackages)-len(ignored))

	return &ssa.Info{
		IgnoredPkgs: ignored,
		FSet:        lprog.Fset,
		Prog:        prog,
		LProg:       lprog,
		BldLog:      c.bldLog,
	}, nil
}

// load parses and type checks the source with its dependencies.
func (c *Config) load() (*loader.Program, error) {
	lconf := loader.Config{Build: &build.Default}
	switch src := c.src.(type) {
	case *FileSrc:
		args, err := lconf.FromArgs(src.Files, false /* No tests */)
		if err != nil {
			return nil, errors.Wrap(err, "bad source files")
		}
		if len(args) > 0 {
			return nil, errors.Errorf("surplus arguments: %q", args)
		}
	default:
		os.Chdir(os.TempDir())
		parsed, err := lconf.ParseFile("tmp", src.NewReader())
		if err != nil {
			return nil, errors.Wrap(err, "parse failed")
		}
		lconf.CreateFromFiles("", parsed)
	}
	lprog, err := lconf.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	return lprog, nil
}

// buildPackages builds the function bodies of every package not marked bad
// and returns the names of the skipped ones.
func (c *Config) buildPackages(prog *gossa.Program, lprog *loader.Program, bldLog *log.Logger) []string {
	var ignored []string
	for _, info := range lprog.AllPackages {
		name := info.Pkg.Name()
		if reason, bad := c.badPkgs[name]; bad {
			bldLog.Printf("Skip package: %s (%s)", name, reason)
			ignored = append(ignored, name)
			continue
		}
		prog.Package(info.Pkg).Build()
	}
	return ignored
}

// Default returns a default configuration for lowering: source names are
// kept and the reflect and runtime bodies are not built.
func (c *Config) Default() Configurer {
	return c.
		WithSourceNames().
		AddBadPkg("reflect", "Reflection is not supported").
		AddBadPkg("runtime", "Runtime is ignored for static analysis")
}
