package booking

import (
	"github.com/campuslink/facility-booking-backend/internal/user"
)

// Actor is the authenticated principal performing a booking operation.
type Actor struct {
	ID   string
	Role user.Role
}

// IsAdmin reports whether the actor holds the administrative role.
func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// Authorizer centralizes the admission rules for who may drive which
// transition, so they are testable in one place instead of scattered
// role checks in handlers.
type Authorizer interface {
	CanApprove(actor Actor) bool
	CanReject(actor Actor) bool
	CanCancel(actor Actor, b *Booking) bool
	CanOverride(actor Actor) bool
	CanListPending(actor Actor) bool
}

type roleAuthorizer struct{}

// NewRoleAuthorizer returns the default role-based Authorizer: admins hold
// approval rights, the requester holds cancellation rights.
func NewRoleAuthorizer() Authorizer {
	return roleAuthorizer{}
}

func (roleAuthorizer) CanApprove(actor Actor) bool {
	return actor.IsAdmin()
}

func (roleAuthorizer) CanReject(actor Actor) bool {
	return actor.IsAdmin()
}

func (roleAuthorizer) CanCancel(actor Actor, b *Booking) bool {
	return actor.IsAdmin() || actor.ID == b.UserID
}

func (roleAuthorizer) CanOverride(actor Actor) bool {
	return actor.IsAdmin()
}

func (roleAuthorizer) CanListPending(actor Actor) bool {
	return actor.IsAdmin()
}
