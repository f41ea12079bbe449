package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	ast := assert.New(t)
	tt := []struct {
		value string
		exp   slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range tt {
		ast.Equal(tc.exp, ParseLevel(tc.value), tc.value)
	}
}

func TestLoggerFollowsRoot(t *testing.T) {
	ast := assert.New(t)
	log := New("test").With("chart", "sectional")

	var buf bytes.Buffer
	SetHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	defer func() {
		SetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
	}()

	log.Info("hidden")
	log.Warn("shown")
	ast.NotContains(buf.String(), "hidden")
	ast.Contains(buf.String(), "msg=shown")
	ast.Contains(buf.String(), "logger=test")
	ast.Contains(buf.String(), "chart=sectional")
}

func TestFanout(t *testing.T) {
	ast := assert.New(t)
	var b1, b2 bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&b1, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b2, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	log := slog.New(h).WithGroup("tile").With("col", 3)
	log.Debug("debug")
	log.Error("error")

	ast.Contains(b1.String(), "msg=debug")
	ast.Contains(b1.String(), "tile.col=3")
	ast.NotContains(b2.String(), "msg=debug")
	ast.Contains(b2.String(), "msg=error")
}
