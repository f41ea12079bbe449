package logging

import (
	"context"
	"log/slog"

	"github.com/aphistic/golf"
	"github.com/pkg/errors"
)

// gelfHandler sends the records to a graylog server
type gelfHandler struct {
	cl     *golf.Client
	l      *golf.Logger
	level  slog.Level
	fields map[string]interface{}
	groups []string
}

func newGelfHandler(uri string, lvl slog.Level) (*gelfHandler, error) {
	cl, err := golf.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "can't create gelf client")
	}
	if err := cl.Dial(uri); err != nil {
		_ = cl.Close()
		return nil, errors.Wrapf(err, "can't dial gelf server %s", uri)
	}
	l, err := cl.NewLogger()
	if err != nil {
		_ = cl.Close()
		return nil, errors.Wrap(err, "can't create gelf logger")
	}
	l.SetAttr("facility", "go_charttiles")
	return &gelfHandler{cl: cl, l: l, level: lvl}, nil
}

func (g *gelfHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= g.level
}

func (g *gelfHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]interface{}, len(g.fields)+r.NumAttrs())
	for k, v := range g.fields {
		attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		g.add(attrs, g.groups, a)
		return true
	})
	switch {
	case r.Level >= slog.LevelError:
		return g.l.Errm(attrs, "%s", r.Message)
	case r.Level >= slog.LevelWarn:
		return g.l.Warnm(attrs, "%s", r.Message)
	case r.Level >= slog.LevelInfo:
		return g.l.Infom(attrs, "%s", r.Message)
	default:
		return g.l.Dbgm(attrs, "%s", r.Message)
	}
}

// add flattens groups into dotted names, gelf fields are flat
func (g *gelfHandler) add(m map[string]interface{}, groups []string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			groups = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range v.Group() {
			g.add(m, groups, ga)
		}
		return
	}
	key := a.Key
	for i := len(groups) - 1; i >= 0; i-- {
		key = groups[i] + "." + key
	}
	m[key] = v.Any()
}

func (g *gelfHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *g
	n.fields = make(map[string]interface{}, len(g.fields)+len(attrs))
	for k, v := range g.fields {
		n.fields[k] = v
	}
	for _, a := range attrs {
		g.add(n.fields, g.groups, a)
	}
	return &n
}

func (g *gelfHandler) WithGroup(name string) slog.Handler {
	n := *g
	n.groups = append(n.groups[:len(n.groups):len(n.groups)], name)
	return &n
}

func (g *gelfHandler) Close() error {
	return g.cl.Close()
}
