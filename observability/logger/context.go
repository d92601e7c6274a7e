package logger

import "context"

type ctxFieldsKey struct{}

// ContextWith returns a copy of ctx carrying extra key-value pairs
// that WithContext attaches to log entries.
func ContextWith(ctx context.Context, keysAndValues ...any) context.Context {
	prev := fieldsFromContext(ctx)
	fields := make([]any, 0, len(prev)+len(keysAndValues))
	fields = append(fields, prev...)
	fields = append(fields, keysAndValues...)
	return context.WithValue(ctx, ctxFieldsKey{}, fields)
}

func fieldsFromContext(ctx context.Context) []any {
	fields, _ := ctx.Value(ctxFieldsKey{}).([]any)
	return fields
}
