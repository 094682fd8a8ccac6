package actorctx

import "context"

// Identity is the authenticated subject the guard resolved for this
// request. It rides on the request context, never a global.
type Identity struct {
	Username string
	Roles    []string
}

func (id Identity) HasRole(name string) bool {
	for _, r := range id.Roles {
		if r == name {
			return true
		}
	}

	return false
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)

	return id, ok && id.Username != ""
}
