package service

import (
	"go-social-core/internal/domain"
)

// Authorizer answers the admin-membership question against an allow-list
// fixed at construction. There is no elevation path at runtime.
type Authorizer struct {
	admins map[string]struct{}
}

func NewAuthorizer(adminEmails []string) *Authorizer {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[NormalizeEmail(e)] = struct{}{}
	}
	return &Authorizer{admins: admins}
}

func (a *Authorizer) IsAdmin(u *domain.User) bool {
	if u == nil {
		return false
	}
	_, ok := a.admins[NormalizeEmail(u.Email)]
	return ok
}
