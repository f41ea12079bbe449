// Package logging configures the slog loggers of the service. Loggers can be created before
// the configuration is loaded, they follow the root handler once it is configured.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/samber/do/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config logging configuration
type Config struct {
	Level          string `yaml:"level"`
	Filename       string `yaml:"filename"`
	MaxSize        int    `yaml:"maxsize"` // in MB
	MaxBackups     int    `yaml:"maxbackups"`
	MaxAge         int    `yaml:"maxage"` // in days
	Compress       bool   `yaml:"compress"`
	RotateSchedule string `yaml:"rotate"` // cron spec, e.g. @daily
	Gelf           string `yaml:"gelf"`   // udp://host:port of a graylog server
}

var (
	root   atomic.Pointer[slog.Handler]
	closer []io.Closer
	rotate *cron.Cron
)

func init() {
	var h slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	root.Store(&h)
}

// Init configures the logging with the registered config
func Init(inj do.Injector) {
	cfg := do.MustInvoke[*Config](inj)
	if err := Configure(*cfg); err != nil {
		New("logging").Error(fmt.Sprintf("can't configure logging: %v", err))
	}
}

// New creates a named logger
func New(name string) *slog.Logger {
	return slog.New(proxy{}).With("logger", name)
}

// Configure replaces the root handler, all loggers switch to the new outputs
func Configure(cfg Config) error {
	Close()
	lvl := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: lvl}

	var w io.Writer = os.Stdout
	if cfg.Filename != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		closer = append(closer, lj)
		w = io.MultiWriter(os.Stdout, lj)
		if cfg.RotateSchedule != "" {
			rotate = cron.New()
			if _, err := rotate.AddFunc(cfg.RotateSchedule, func() { _ = lj.Rotate() }); err != nil {
				rotate = nil
				return fmt.Errorf("invalid rotate schedule %q: %w", cfg.RotateSchedule, err)
			}
			rotate.Start()
		}
	}

	handlers := []slog.Handler{slog.NewTextHandler(w, opts)}
	if cfg.Gelf != "" {
		gh, err := newGelfHandler(cfg.Gelf, lvl)
		if err != nil {
			return err
		}
		closer = append(closer, gh)
		handlers = append(handlers, gh)
	}
	SetHandler(fanout(handlers))
	return nil
}

// SetHandler sets the root handler directly
func SetHandler(h slog.Handler) {
	root.Store(&h)
}

// Close stops the rotation and closes the outputs of the last configuration
func Close() {
	if rotate != nil {
		rotate.Stop()
		rotate = nil
	}
	for _, c := range closer {
		_ = c.Close()
	}
	closer = nil
}

// ParseLevel converts a level name, unknown names are info
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// proxy forwards to the current root handler. Attributes and groups are
// recorded and replayed, so they survive a reconfiguration.
type proxy struct {
	ops []func(slog.Handler) slog.Handler
}

func (p proxy) handler() slog.Handler {
	h := *root.Load()
	for _, op := range p.ops {
		h = op(h)
	}
	return h
}

func (p proxy) Enabled(ctx context.Context, l slog.Level) bool {
	return p.handler().Enabled(ctx, l)
}

func (p proxy) Handle(ctx context.Context, r slog.Record) error {
	return p.handler().Handle(ctx, r)
}

func (p proxy) WithAttrs(attrs []slog.Attr) slog.Handler {
	return p.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (p proxy) WithGroup(name string) slog.Handler {
	return p.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (p proxy) with(op func(slog.Handler) slog.Handler) proxy {
	ops := make([]func(slog.Handler) slog.Handler, len(p.ops), len(p.ops)+1)
	copy(ops, p.ops)
	return proxy{ops: append(ops, op)}
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var err error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if e := h.Handle(ctx, r.Clone()); e != nil {
				err = e
			}
		}
	}
	return err
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := make(fanout, len(f))
	for i, h := range f {
		n[i] = h.WithAttrs(attrs)
	}
	return n
}

func (f fanout) WithGroup(name string) slog.Handler {
	n := make(fanout, len(f))
	for i, h := range f {
		n[i] = h.WithGroup(name)
	}
	return n
}
