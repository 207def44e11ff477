// Package logging provides the module-tagged zap logger shared by the
// analysis components.
package logging

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger encapsulates a Logger and module which it belongs to.
// Use this through SetLogger() of components.
type Logger struct {
	*zap.SugaredLogger
	module string
}

type LogSetter interface {
	SetLogger(*Logger)
}

// Module returns (stylised) module name.
func (l *Logger) Module() string {
	return l.module
}

// WithModule returns a Logger sharing the output of l, tagged with module.
func (l *Logger) WithModule(module string, attr color.Attribute) *Logger {
	if colorTags {
		module = color.New(attr).Sprint(module)
	}
	return &Logger{SugaredLogger: l.SugaredLogger, module: module}
}

// Writer returns a writer logging every line written to it at info level,
// tagged with the module of l.
func (l *Logger) Writer() io.Writer {
	return lineWriter{l}
}

type lineWriter struct{ l *Logger }

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.l.Infof("%s %s", w.l.module, line)
		}
	}
	return len(p), nil
}

// Nop returns a Logger discarding everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// New returns a new logger at the given level ("debug", "info", ...; empty
// for the default) which also writes the log output to files.
func New(level string, files ...string) (*Logger, error) {
	cfg := newConfig()
	cfg.OutputPaths = append(cfg.OutputPaths, files...)
	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, errors.Wrapf(err, "bad log level %q", level)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create logger")
	}
	return &Logger{SugaredLogger: l.Sugar()}, nil
}
