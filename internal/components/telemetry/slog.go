package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strconv"
)

// SlogAPI implements API on top of a slog.Logger, the zero value logs to
// slog.Default().
type SlogAPI struct {
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// params groups positional params under "params" so they do not collide
// with the record's own keys.
func params(values []any) slog.Attr {
	attrs := make([]any, len(values))
	for i, v := range values {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		attrs[i] = slog.Any(strconv.Itoa(i), v)
	}
	return slog.Group("params", attrs...)
}

func (s SlogAPI) ReportBroken(id string, values ...any) {
	s.logger().Error("broken", slog.String("id", id), params(values))
}

func (s SlogAPI) ReportWarning(id string, values ...any) {
	s.logger().Warn("warning", slog.String("id", id), params(values))
}

func (s SlogAPI) ReportDebug(message string, values ...any) {
	s.logger().Debug(message, params(values))
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().Info("count", slog.String("id", id), slog.Int64("count", count))
}

type LogOptions struct {
	Verbose bool
	// JSON switches from logfmt style text to one json object per line.
	JSON bool
}

func NewHandler(w io.Writer, opts LogOptions) slog.Handler {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if opts.Verbose {
		handlerOpts.Level = slog.LevelDebug
		handlerOpts.AddSource = true
	}
	if opts.JSON {
		return slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.NewTextHandler(w, handlerOpts)
}

// InitSlog installs the default logger writing to stderr.
func InitSlog(opts LogOptions) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, opts)))
}
