package logger

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	documentIDKey
	connectionIDKey
)

// contextFields maps context keys to the attribute names they are logged
// under, in output order.
var contextFields = []struct {
	key  ctxKey
	attr string
}{
	{requestIDKey, "request_id"},
	{documentIDKey, "document_id"},
	{connectionIDKey, "connection_id"},
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID tags ctx with the id of the HTTP request being served.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id of ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithDocumentID tags ctx with the document being operated on.
func WithDocumentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, documentIDKey, id)
}

// DocumentIDFromContext returns the document id of ctx, if any.
func DocumentIDFromContext(ctx context.Context) string {
	return stringValue(ctx, documentIDKey)
}

// WithConnectionID tags ctx with a relay connection.
func WithConnectionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, connectionIDKey, id)
}

// ConnectionIDFromContext returns the connection id of ctx, if any.
func ConnectionIDFromContext(ctx context.Context) string {
	return stringValue(ctx, connectionIDKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// contextArgs returns the tagged ids of ctx as key/value pairs.
func contextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	var args []any
	for _, f := range contextFields {
		if v := stringValue(ctx, f.key); v != "" {
			args = append(args, f.attr, v)
		}
	}
	return args
}

// L returns the logger of ctx annotated with the ids ctx carries.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
