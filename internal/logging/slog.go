package logging

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// SlogLogger adapts a slog.Handler to Logger. Records carry the caller of
// Debug/Info/Warn/Error as their source, not this file.
type SlogLogger struct {
	h slog.Handler
}

// NewSlogLogger wraps l. A nil l yields Nop.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		return Nop()
	}
	return &SlogLogger{h: l.Handler()}
}

// Nop returns a logger that discards everything.
func Nop() *SlogLogger {
	return &SlogLogger{h: discardHandler{}}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{h: slog.New(s.h).With(args...).Handler()}
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.h.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// skip runtime.Callers, log and the level method
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = s.h.Handle(ctx, r)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
