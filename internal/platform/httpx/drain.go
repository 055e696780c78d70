package httpx

import "context"

type drainKey struct{}

// WithDrain attaches a channel that is closed when the server starts shutting
// down. The HTTP server installs it as the base context of every connection.
func WithDrain(ctx context.Context, drain <-chan struct{}) context.Context {
	return context.WithValue(ctx, drainKey{}, drain)
}

// Draining returns the shutdown channel for ctx. Long-lived handlers such as
// event streams select on it so Shutdown does not wait for them. Without one
// it returns nil, which blocks forever in a select.
func Draining(ctx context.Context) <-chan struct{} {
	ch, _ := ctx.Value(drainKey{}).(<-chan struct{})
	return ch
}
