package logging

import (
	"context"
	"maps"
)

type fieldsContextKey struct{}

// ContextWithFields annotates the context with fields that command handlers
// merge into their log entries. Later annotations win over earlier ones on
// key collisions.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := make(map[string]any, len(fields))
	maps.Copy(merged, ContextFields(ctx))
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsContextKey{}, merged)
}

// ContextFields returns a copy of the fields annotated on the context, nil
// when there are none. Callers may mutate the result freely.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsContextKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return copied
}
