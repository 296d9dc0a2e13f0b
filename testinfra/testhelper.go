package testinfra

import (
	"github.com/fundwit/go-commons/types"

	"reliefops/authority"
	"reliefops/session"
)

// BuildSecCtx builds a security context holding the given roles.
func BuildSecCtx(uid types.ID, roles ...string) *session.Context {
	if roles == nil {
		roles = []string{}
	}
	return &session.Context{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Roles:    authority.Roles(roles),
		Perms:    authority.Permissions{},
	}
}

// BuildAdminSecCtx builds a security context carrying the system-admin
// permission.
func BuildAdminSecCtx(uid types.ID) *session.Context {
	secCtx := BuildSecCtx(uid, "system-admin")
	secCtx.Perms = authority.Permissions{authority.SystemAdminPermission.ID}
	return secCtx
}
