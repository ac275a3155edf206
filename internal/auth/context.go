package auth

import (
	"context"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

type requesterKey struct{}

// WithRequester returns a copy of ctx carrying r.
func WithRequester(ctx context.Context, r model.Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFromContext returns the authenticated requester, if any.
func RequesterFromContext(ctx context.Context) (model.Requester, bool) {
	r, ok := ctx.Value(requesterKey{}).(model.Requester)
	return r, ok
}
