package mongo

import (
	"context"
	"time"
)

// OpTimeout bounds every repository round trip.
const OpTimeout = 5 * time.Second

// WithRepoTimeout wraps ctx in a timeout of d unless ctx is already done or
// already expires within d. The returned cancel is always safe to defer:
//
//	ctx, cancel := WithRepoTimeout(parentCtx, OpTimeout)
//	defer cancel()
func WithRepoTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if err := ctx.Err(); err != nil {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}
