// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	clientIPKey
)

func withString(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextWithRequestID stores the request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

// ContextWithClientIP stores the resolved caller address in ctx.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return withString(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the caller address, or "" when none is set.
func ClientIPFromContext(ctx context.Context) string {
	return stringFrom(ctx, clientIPKey)
}

// WithContext adds the request ID and client IP found in ctx to logger.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	rid, ip := RequestIDFromContext(ctx), ClientIPFromContext(ctx)
	if rid == "" && ip == "" {
		return logger
	}
	b := logger.With()
	if rid != "" {
		b = b.Str(FieldRequestID, rid)
	}
	if ip != "" {
		b = b.Str(FieldClientIP, ip)
	}
	return b.Logger()
}

// WithComponentFromContext is WithComponent plus the request fields from ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}

// FromContext returns the logger attached to ctx by zerolog, falling back to
// the base logger enriched with request fields.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := Base()
		return &l
	}
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	l := WithContext(ctx, Base())
	return &l
}
