package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIHandler_Colors(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		color string
	}{
		{"info", func(l *slog.Logger) { l.Info("msg") }, colorGreen},
		{"warn", func(l *slog.Logger) { l.Warn("msg") }, colorYellow},
		{"error", func(l *slog.Logger) { l.Error("msg") }, colorRed},
		{"debug", func(l *slog.Logger) { l.Debug("msg") }, colorGray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewCLIHandler(&buf, slog.LevelDebug)))
			out := buf.String()
			assert.Contains(t, out, "msg")
			assert.Contains(t, out, tt.color)
			assert.Contains(t, out, colorReset)
		})
	}
}

func TestCLIHandler_WithoutColor(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewCLIHandler(&buf, slog.LevelInfo).WithoutColor()).Error("plain")
	assert.Equal(t, "plain\n", buf.String())
}

func TestCLIHandler_LevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		handlerLevel slog.Level
		logFunc      func(*slog.Logger)
		shouldLog    bool
	}{
		{"info handler logs info", slog.LevelInfo, func(l *slog.Logger) { l.Info("test") }, true},
		{"info handler filters debug", slog.LevelInfo, func(l *slog.Logger) { l.Debug("test") }, false},
		{"debug handler logs debug", slog.LevelDebug, func(l *slog.Logger) { l.Debug("test") }, true},
		{"error handler filters info", slog.LevelError, func(l *slog.Logger) { l.Info("test") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(slog.New(NewCLIHandler(&buf, tt.handlerLevel)))
			assert.Equal(t, tt.shouldLog, buf.Len() > 0)
		})
	}
}

func TestCLIHandler_LevelVar(t *testing.T) {
	var buf bytes.Buffer
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelInfo)
	logger := slog.New(NewCLIHandler(&buf, lv))

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	lv.Set(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestCLIHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo).WithoutColor()).With("category", "cs.DC")

	logger.Info("removed label", "idx", 4, "reason", "medicine (6 keywords)")

	assert.Equal(t, "removed label: category=cs.DC idx=4 reason=medicine (6 keywords)\n", buf.String())
}

func TestCLIHandler_WithAttrs_Empty(t *testing.T) {
	h := NewCLIHandler(&bytes.Buffer{}, slog.LevelInfo)
	assert.Equal(t, h, h.WithAttrs(nil))
}

func TestCLIHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo).WithoutColor()).WithGroup("clean").WithGroup("score")

	logger.Info("hello")

	assert.Equal(t, "[clean.score] hello\n", buf.String())
}

func TestCLIHandler_WithGroup_Empty(t *testing.T) {
	var buf bytes.Buffer
	handler := NewCLIHandler(&buf, slog.LevelInfo)

	slog.New(handler.WithGroup("")).Info("no prefix")

	out := buf.String()
	assert.NotContains(t, out, "]")
	assert.Contains(t, out, "no prefix")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"  debug  ", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}
