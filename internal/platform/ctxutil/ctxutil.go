package ctxutil

import "context"

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Detached keeps ctx values (trace spans, loggers) but drops its deadline and
// cancellation. Generation workers run on detached contexts so a caller
// hanging up does not abort units already submitted.
func Detached(ctx context.Context) context.Context {
	return context.WithoutCancel(Default(ctx))
}
