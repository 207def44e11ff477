// Command dfview is the command line entry point to the dataflow analyses.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/nickng/mirflow/bitset"
	"github.com/nickng/mirflow/config"
	"github.com/nickng/mirflow/fixpoint"
	"github.com/nickng/mirflow/impls"
	"github.com/nickng/mirflow/logging"
	"github.com/nickng/mirflow/mir/lower"
	"github.com/nickng/mirflow/pretty"
	"github.com/nickng/mirflow/ssa"
	"github.com/nickng/mirflow/ssa/build"
	gossa "golang.org/x/tools/go/ssa"
)

const (
	Usage = `dfview is a tool for running dataflow analyses on Go source code.

Usage:

  dfview [options] file.go [files.go...]

Options:

`
)

var (
	confPath  string
	logPath   string
	analyses  string
	funcs     string
	usedOnly  bool
	maxVisits int
	useColor  bool
)

func init() {
	flag.StringVar(&confPath, "config", "", "Specify YAML configuration file")
	flag.StringVar(&logPath, "log", "", "Specify analysis log file (use '-' for stderr)")
	flag.StringVar(&analyses, "analysis", "", fmt.Sprintf("Comma-separated analyses to run %v", impls.Names()))
	flag.StringVar(&funcs, "func", "", "Comma-separated functions to analyse (default: all)")
	flag.BoolVar(&usedOnly, "used", false, "Only analyse functions reachable from main")
	flag.IntVar(&maxVisits, "maxvisits", 0, "Bound the block visits of each analysis (0: no bound)")
	flag.BoolVar(&useColor, "color", false, "Colour the state changes")
}

// loadConfig reads the configuration file, then applies the flags set on
// the command line over it.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if confPath != "" {
		var err error
		if cfg, err = config.Load(confPath); err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log":
			cfg.Log.Files = append(cfg.Log.Files, logPath)
		case "analysis":
			cfg.Analyses = strings.Split(analyses, ",")
		case "func":
			cfg.Funcs = strings.Split(funcs, ",")
		case "used":
			cfg.UsedOnly = usedOnly
		case "maxvisits":
			cfg.MaxVisits = maxVisits
		case "color":
			cfg.Color = useColor
		}
	})
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("Bad configuration:", err)
	}

	var logFiles []string
	for _, path := range cfg.Log.Files {
		if path != "-" { // The logger already writes to stderr.
			logFiles = append(logFiles, path)
		}
	}
	logger, err := logging.New(cfg.Log.Level, logFiles...)
	if err != nil {
		log.Fatal("Cannot create logger:", err)
	}
	defer logger.Sync()
	logger = logger.WithModule("dfview", color.FgGreen)

	conf := build.FromFiles(flag.Args()).Default()
	if len(cfg.Log.Files) > 0 {
		conf = conf.WithBuildLog(logger.Writer(), 0)
	}

	info, err := conf.Build()
	if err != nil {
		log.Fatal("Build failed:", err)
	}
	fns, err := selectFuncs(info, cfg, logger)
	if err != nil {
		log.Fatal("Cannot select functions:", err)
	}
	for _, fn := range fns {
		if err := analyse(fn, cfg, logger); err != nil {
			log.Fatal(err)
		}
	}
}

// selectFuncs returns the functions named in cfg, or every source function,
// dropping those unreachable in the call graph if requested.
func selectFuncs(info *ssa.Info, cfg *config.Config, logger *logging.Logger) ([]*gossa.Function, error) {
	fns := info.SourceFunctions()
	if len(cfg.Funcs) > 0 {
		fns = fns[:0]
		for _, path := range cfg.Funcs {
			fn, err := info.FindFunc(path)
			if err != nil {
				return nil, err
			}
			fns = append(fns, fn)
		}
	}
	if !cfg.UsedOnly {
		return fns, nil
	}
	cg, err := info.BuildCallGraph(cfg.CallGraph)
	if err != nil {
		return nil, err
	}
	var used []*gossa.Function
	for _, fn := range fns {
		ok, err := cg.Used(fn)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Infof("%s Skip unused %s", logger.Module(), fn)
			continue
		}
		used = append(used, fn)
	}
	return used, nil
}

func analyse(fn *gossa.Function, cfg *config.Config, logger *logging.Logger) error {
	body, err := lower.Function(fn)
	if err != nil {
		return err
	}
	for _, name := range cfg.Analyses {
		a, err := impls.Lookup(name)
		if err != nil {
			return err
		}
		e := fixpoint.New[*bitset.Set](body, a)
		e.SetLogger(logger)
		e.SetMaxVisits(cfg.MaxVisits)
		results, err := e.Iterate()
		if err != nil {
			return err
		}
		p := pretty.NewPrinter[*bitset.Set](os.Stdout)
		p.SetColor(cfg.Color)
		if err := p.Print(body, results); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}
