package auth

import (
	"context"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
)

// ActorContext holds authenticated user information for the current request
type ActorContext struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	Role      domain.Role
	ManagedBy *uuid.UUID
	Line      *domain.ProductLine
	AreaID    *string
}

type contextKey string

const actorContextKey contextKey = "actorContext"

// WithActorContext adds the actor to the context
func WithActorContext(ctx context.Context, actor *ActorContext) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// FromContext extracts the actor from the context
func FromContext(ctx context.Context) (*ActorContext, bool) {
	actor, ok := ctx.Value(actorContextKey).(*ActorContext)
	return actor, ok
}

// MustFromContext extracts the actor or panics
func MustFromContext(ctx context.Context) *ActorContext {
	actor, ok := FromContext(ctx)
	if !ok {
		panic("actor context not found in context")
	}
	return actor
}

// HasRole checks if the actor has a specific role
func (a *ActorContext) HasRole(role domain.Role) bool {
	return a.Role == role
}

// HasAnyRole checks if the actor has any of the specified roles
func (a *ActorContext) HasAnyRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if the actor is an admin
func (a *ActorContext) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// IsManagerial checks if the actor holds a role with direct reports
func (a *ActorContext) IsManagerial() bool {
	return a.Role.IsManagerial()
}

// CanManage reports whether the actor's role strictly outranks the target role
func (a *ActorContext) CanManage(hierarchy *domain.RoleHierarchy, target domain.Role) bool {
	return hierarchy.CanManage(a.Role, target)
}

// SameLine reports whether the actor shares a product line with the given user.
// Users without a line assignment never match.
func (a *ActorContext) SameLine(other *domain.User) bool {
	if a.Line == nil || other.Line == nil {
		return false
	}
	return *a.Line == *other.Line
}

// SameArea reports whether the actor shares an area with the given user.
// Users without an area assignment never match.
func (a *ActorContext) SameArea(other *domain.User) bool {
	if a.AreaID == nil || other.AreaID == nil {
		return false
	}
	return *a.AreaID == *other.AreaID
}
