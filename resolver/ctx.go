package resolver

import "context"

type ctxKey uint8

const ctxTrace ctxKey = iota

// withTrace attaches a Trace to ctx for the lifetime of one Resolution, so
// Client.exchange can correlate its log lines back to the query that
// triggered them.
func withTrace(ctx context.Context, trace *Trace) context.Context {
	return context.WithValue(ctx, ctxTrace, trace)
}

func traceFrom(ctx context.Context) (*Trace, bool) {
	trace, ok := ctx.Value(ctxTrace).(*Trace)
	return trace, ok
}
