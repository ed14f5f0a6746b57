package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	fieldsKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithFields attaches fields that every logger taken from ctx will carry.
// Fields already on ctx are kept.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	prev, _ := ctx.Value(fieldsKey).([]zap.Field)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

// FromCtx returns the global logger with the request id and any WithFields
// fields of ctx.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if fields, ok := ctx.Value(fieldsKey).([]zap.Field); ok && len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}

func ForGateway(ctx context.Context, gatewayID string) *zap.Logger {
	return FromCtx(ctx).With(zap.String("gateway_id", gatewayID))
}

func ForOrder(ctx context.Context, gatewayID, orderID string) *zap.Logger {
	return FromCtx(ctx).With(zap.String("gateway_id", gatewayID), zap.String("order_id", orderID))
}
