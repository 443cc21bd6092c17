package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// Actor identifies the caller of a chart operation. Session handling and
// credential verification live outside this module; services only consume
// the resolved identity.
type Actor struct {
	UserID  uuid.UUID
	TeamID  uuid.UUID
	IsAdmin bool
}

type actorContextKey struct{}

// WithActor returns a context carrying the caller identity. Collaborators
// like PublishDataProvider implementations can read it back to scope their
// responses.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the caller identity attached by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// Authorizer answers per-chart permission questions. Implementations are
// expected to encapsulate ownership, team membership, and guest-edit rules.
type Authorizer interface {
	CanEdit(ctx context.Context, actor Actor, chartID string) (bool, error)
	CanPublish(ctx context.Context, actor Actor, chartID string) (bool, error)
}

// AllowAll returns an Authorizer that grants every request. Intended for
// tests and single-tenant embedding.
func AllowAll() Authorizer {
	return allowAll{}
}

type allowAll struct{}

func (allowAll) CanEdit(context.Context, Actor, string) (bool, error) {
	return true, nil
}

func (allowAll) CanPublish(context.Context, Actor, string) (bool, error) {
	return true, nil
}
