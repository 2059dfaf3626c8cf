// Package actor carries the acting user's identity through a request context.
// The identity is an opaque user id supplied by the authentication layer.
package actor

import (
	"context"
	"strconv"
	"strings"
)

type ctxKey struct{}

func WithID(ctx context.Context, id int64) context.Context {
	if id <= 0 {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext reports the acting user id, if any.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok && id > 0
}

// Parse reads a user id as sent by the authentication layer. Anything that is
// not a positive integer is treated as absent.
func Parse(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
