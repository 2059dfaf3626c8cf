package repository

import "context"

type Store interface {
	Ping(ctx context.Context) error
	Close()
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type primaryKey struct{}

// PreferPrimary marks ctx so reads are served by the primary. Callers that
// must observe their own writes, like the self-test, use it to skip replicas.
func PreferPrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryKey{}, true)
}

func PrefersPrimary(ctx context.Context) bool {
	v, _ := ctx.Value(primaryKey{}).(bool)
	return v
}
