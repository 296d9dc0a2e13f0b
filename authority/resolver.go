package authority

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"

	"reliefops/bizerror"
	"reliefops/persistence"
)

// PermissionCacheTTL bounds how long a revoked role assignment can keep
// granting: a stale entry expires within this window, and local mutations
// invalidate eagerly.
const PermissionCacheTTL = 30 * time.Second

var permissionCache = cache.New(PermissionCacheTTL, 1*time.Minute)

var (
	roleSources = []RoleSource{&storeRoleSource{}, &claimRoleSource{}}

	ResolveEffectiveRolesFunc = ResolveEffectiveRoles
	ResolvePermissionsFunc    = ResolvePermissions
)

// ResolveEffectiveRoles unions the store-assigned roles with the roles
// mapped from external claims. The result is a pure function of the inputs
// and the current role tables: sorted, deduplicated, no session state.
func ResolveEffectiveRoles(identity types.ID, claims []ExternalClaim) (Roles, error) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	merged := map[string]bool{}
	storeRoleCount := 0
	for idx, source := range roleSources {
		roles, err := source.RolesOf(db, identity, claims)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			storeRoleCount = len(roles)
		}
		for _, role := range roles {
			merged[role] = true
		}
	}

	if storeRoleCount == 0 && len(claims) == 0 {
		return nil, bizerror.ErrUnknownIdentity
	}

	result := make(Roles, 0, len(merged))
	for role := range merged {
		result = append(result, role)
	}
	sort.Strings(result)
	return result, nil
}

// ResolvePermissions resolves the effective permission set: every permission
// reachable through at least one assigned or claimed role.
func ResolvePermissions(identity types.ID, claims []ExternalClaim) (Permissions, error) {
	cacheKey := permissionCacheKey(identity, claims)
	if cached, found := permissionCache.Get(cacheKey); found {
		return cached.(Permissions), nil
	}

	roles, err := ResolveEffectiveRoles(identity, claims)
	if err != nil {
		return nil, err
	}

	perms := Permissions{}
	if len(roles) > 0 {
		db := persistence.ActiveDataSourceManager.GormDB(context.Background())
		var permIds []string
		if err := db.Model(&RolePermissionBinding{}).Where("role_id IN (?)", []string(roles)).
			Pluck("permission_id", &permIds).Error; err != nil {
			return nil, err
		}
		merged := map[string]bool{}
		for _, permId := range permIds {
			if !merged[permId] {
				merged[permId] = true
				perms = append(perms, permId)
			}
		}
		sort.Strings(perms)
	}

	permissionCache.Set(cacheKey, perms, cache.DefaultExpiration)
	return perms, nil
}

func permissionCacheKey(identity types.ID, claims []ExternalClaim) string {
	return fmt.Sprintf("%d|%s", identity, ClaimsFingerprint(claims))
}

// InvalidatePermissionCache drops every cached resolution of one identity,
// regardless of claim set. Role-binding mutations call this so local changes
// take effect immediately instead of waiting out the TTL.
func InvalidatePermissionCache(identity types.ID) {
	prefix := fmt.Sprintf("%d|", identity)
	for key := range permissionCache.Items() {
		if strings.HasPrefix(key, prefix) {
			permissionCache.Delete(key)
		}
	}
}
