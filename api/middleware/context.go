package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
)

// actor is the authenticated operator as seeded by Auth. Both fields stay raw
// strings until ActorFromContext validates them.
type actor struct {
	userID string
	role   string
}

type actorKey struct{}

func actorFrom(ctx context.Context) actor {
	if ctx == nil {
		return actor{}
	}
	a, _ := ctx.Value(actorKey{}).(actor)
	return a
}

func withActor(ctx context.Context, update func(*actor)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	a := actorFrom(ctx)
	update(&a)
	return context.WithValue(ctx, actorKey{}, a)
}

func UserIDFromContext(ctx context.Context) string {
	return actorFrom(ctx).userID
}

func RoleFromContext(ctx context.Context) string {
	return actorFrom(ctx).role
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withActor(ctx, func(a *actor) { a.userID = userID })
}

func WithRole(ctx context.Context, role string) context.Context {
	return withActor(ctx, func(a *actor) { a.role = role })
}

// ActorFromContext returns the operator behind the request. A missing user is
// UNAUTHORIZED, an unknown role FORBIDDEN.
func ActorFromContext(ctx context.Context) (uuid.UUID, enums.Role, error) {
	a := actorFrom(ctx)
	userID, err := uuid.Parse(a.userID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	role := enums.Role(a.role)
	if !role.IsValid() {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "operator role missing")
	}
	return userID, role, nil
}
