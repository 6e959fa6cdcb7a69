package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
	SbuID       *uuid.UUID
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRole) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is a platform admin
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// CanDecideItineraries reports whether the user may approve or reject
// submitted itineraries.
func (u *UserContext) CanDecideItineraries() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleSBUHead)
}

// CanDecideCustomers reports whether the user may approve or reject
// pending customers.
func (u *UserContext) CanDecideCustomers() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleMgmt)
}
