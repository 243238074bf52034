package rbac

import (
	"slices"
	"strings"
)

// Role is a staff access tier carried in the identity token claims.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOps       Role = "ops"
	RoleSupport   Role = "support"
	RoleMarketing Role = "marketing"
)

// Capability names an action the console gates in routes and templates.
type Capability string

const (
	CapOrdersList    Capability = "orders.list"
	CapOrdersDetail  Capability = "orders.detail"
	CapOrdersManage  Capability = "orders.manage"
	CapCatalogManage Capability = "catalog.manage"
)

// Admin is implicit everywhere and therefore absent from this table.
var grants = map[Capability]Roles{
	CapOrdersList:    {RoleOps, RoleSupport},
	CapOrdersDetail:  {RoleOps, RoleSupport},
	CapOrdersManage:  {RoleOps},
	CapCatalogManage: {RoleOps, RoleMarketing},
}

// Roles is a set of staff roles.
type Roles []Role

func (rs Roles) overlaps(other Roles) bool {
	return slices.ContainsFunc(other, func(r Role) bool { return slices.Contains(rs, r) })
}

func parseRoles(raw []string) Roles {
	roles := make(Roles, 0, len(raw))
	for _, val := range raw {
		role := Role(strings.ToLower(strings.TrimSpace(val)))
		if role != "" && !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// HasAnyRole reports whether userRoles include admin or any of required.
func HasAnyRole(userRoles []string, required Roles) bool {
	roles := parseRoles(userRoles)
	return slices.Contains(roles, RoleAdmin) || required.overlaps(roles)
}

// HasCapability reports whether userRoles grant capability. The empty capability is always granted;
// an unknown one never is, not even to admin.
func HasCapability(userRoles []string, capability Capability) bool {
	if capability == "" {
		return true
	}
	allowed, ok := grants[capability]
	if !ok {
		return false
	}
	return HasAnyRole(userRoles, allowed)
}

// CapabilitiesForRoles lists every capability userRoles grant.
func CapabilitiesForRoles(userRoles []string) map[Capability]bool {
	caps := make(map[Capability]bool, len(grants))
	for capability := range grants {
		if HasCapability(userRoles, capability) {
			caps[capability] = true
		}
	}
	return caps
}
