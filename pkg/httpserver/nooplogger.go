package httpserver

import (
	"context"
	"log/slog"
)

// noopHandler drops every record. Used when no logger option is supplied.
type noopHandler struct{}

func (n noopHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (n noopHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (n noopHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return n }
func (n noopHandler) WithGroup(_ string) slog.Handler               { return n }

// newNoopLogger returns a logger backed by noopHandler.
func newNoopLogger() *slog.Logger {
	return slog.New(noopHandler{})
}
