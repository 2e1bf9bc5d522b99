package auth

import "context"

// Identity is the verified caller attached to a request by the auth middleware.
type Identity struct {
	UserId string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// Returns the identity established by the auth middleware, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserId != ""
}
