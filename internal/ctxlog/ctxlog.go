// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package ctxlog carries a *slog.Logger on a context.Context, adapted from
// cloudeng.io/logging/ctxlog. Every component in this repo logs through the
// context rather than a package-global logger, so a single crawl run can be
// given its own logger (level, destination, attributes) without threading a
// *slog.Logger argument through every call.
package ctxlog

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey struct{}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Logger returns the logger carried by ctx, or a discard logger if none
// was installed.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return discard
}

// With returns a new context whose logger has the given attributes added.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, Logger(ctx).With(args...))
}

func Info(ctx context.Context, msg string, args ...any)  { Logger(ctx).InfoContext(ctx, msg, args...) }
func Warn(ctx context.Context, msg string, args ...any)  { Logger(ctx).WarnContext(ctx, msg, args...) }
func Error(ctx context.Context, msg string, args ...any) { Logger(ctx).ErrorContext(ctx, msg, args...) }
func Debug(ctx context.Context, msg string, args ...any) { Logger(ctx).DebugContext(ctx, msg, args...) }
