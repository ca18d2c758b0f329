package domain

import (
	"errors"
	"time"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// RoleSet is a lookup set of role names.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from the given role names.
func NewRoleSet(roles ...string) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether role is a member of the set.
func (s RoleSet) Contains(role string) bool {
	_, ok := s[role]
	return ok
}

// ElevatedRoles are the roles that bypass ownership checks on mutations.
var ElevatedRoles = NewRoleSet(RoleAdmin, RoleModerator)

// Principal is the authenticated identity attached to a request,
// extracted from the JWT by the transport layer and passed explicitly
// into every mutating operation.
type Principal struct {
	ID    string
	Name  string
	Roles []string
}

// HasRole reports whether the principal holds any role in the given set.
func (p Principal) HasRole(set RoleSet) bool {
	for _, r := range p.Roles {
		if set.Contains(r) {
			return true
		}
	}
	return false
}

// CanMutate decides whether actor may update or delete a resource owned by
// ownerID: allowed when the actor is the owner, or holds a role in elevated.
// Update and delete share this rule without distinction.
func CanMutate(ownerID string, actor Principal, elevated RoleSet) bool {
	if actor.ID != "" && actor.ID == ownerID {
		return true
	}
	return actor.HasRole(elevated)
}

// User models a registered account. The password is only ever held as a
// bcrypt hash; the clear text never reaches this layer.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
