// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package logctx carries a *slog.Logger on a context.Context. The
// processor and its collaborators accept a context on every blocking
// call; threading the logger the same way avoids adding a parallel
// logger parameter to every one of those signatures, while still
// using log/slog rather than a bespoke logger type.
package logctx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// With returns a context carrying logger, retrievable with From.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the logger carried by ctx, or slog.Default() if none
// was attached.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
