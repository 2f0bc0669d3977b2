// Package logging builds the go-kit loggers used across rocketsim.
package logging

import (
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/floats"

	"github.com/c-bruce/rocketsim/internal/sim"
)

// New returns a leveled logger writing to w. format is "logfmt" or
// "json"; lvl is one of debug, info, warn, error.
func New(w io.Writer, format, lvl string) (log.Logger, error) {
	var logger log.Logger
	switch format {
	case "", "logfmt":
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case "json":
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	allowed, err := parseLevel(lvl)
	if err != nil {
		return nil, err
	}
	logger = level.NewFilter(logger, allowed)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}

func parseLevel(lvl string) (level.Option, error) {
	switch lvl {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, fmt.Errorf("unknown log level %q", lvl)
}

// Subsystem tags every entry of logger with the subsystem name.
func Subsystem(logger log.Logger, name string) log.Logger {
	return log.With(logger, "subsys", name)
}

// Nop returns a logger that discards everything.
func Nop() log.Logger { return log.NewNopLogger() }

// Progress is a sim.Observer that logs every n-th step at debug level.
type Progress struct {
	logger log.Logger
	every  int
	step   int
}

func NewProgress(logger log.Logger, every int) *Progress {
	return &Progress{logger: logger, every: max(1, every)}
}

func (p *Progress) OnStep(x sim.State, u sim.Control, t float64) {
	if p.step%p.every == 0 {
		level.Debug(p.logger).Log("msg", "step", "step", p.step, "t", t, "state_norm", floats.Norm(x, 2), "control_norm", floats.Norm(u, 2))
	}
	p.step++
}
