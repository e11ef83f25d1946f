package domain

// Role is the privilege level of an account. The three roles form a strict
// hierarchy: super_admin > client_admin > organizer.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleClientAdmin Role = "client_admin"
	RoleOrganizer   Role = "organizer"
)

// canProvision is the single authorization table for account creation.
// Every provisioning decision routes through CanCreate; the rule is never
// duplicated at call sites.
var canProvision = map[Role][]Role{
	RoleSuperAdmin:  {RoleClientAdmin, RoleOrganizer},
	RoleClientAdmin: {RoleOrganizer},
}

// IsValid reports whether r is one of the three known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleClientAdmin, RoleOrganizer:
		return true
	}
	return false
}

// Provisionable reports whether r is a role that can be created through the
// provisioning workflow. The super admin is created at bootstrap only.
func (r Role) Provisionable() bool {
	return r == RoleClientAdmin || r == RoleOrganizer
}

// CanCreate reports whether an actor with role actor may provision an account
// with role target.
func CanCreate(actor, target Role) bool {
	for _, allowed := range canProvision[actor] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanView reports whether an actor may see a target account in listings.
// Super admins see everyone; client admins see only organizers they own;
// organizers have no listing capability.
func CanView(actor Role, target Role, actorID, targetOwnerID string) bool {
	switch actor {
	case RoleSuperAdmin:
		return true
	case RoleClientAdmin:
		return target == RoleOrganizer && targetOwnerID == actorID
	}
	return false
}

// CanAdminister reports whether an actor may change another account's state
// (verify, activate, deactivate). Restricted to the super admin.
func CanAdminister(actor Role) bool {
	return actor == RoleSuperAdmin
}

var allRoles = []Role{RoleSuperAdmin, RoleClientAdmin, RoleOrganizer}

// ListScope resolves the listing constraints for an actor requesting accounts
// with roleFilter (empty = every role the actor may see): the role the result
// set is limited to (empty = unscoped) and whether it is further limited to
// accounts the actor owns. Everything is derived from CanView, so list
// scoping and per-account visibility cannot drift apart. ok is false when
// nothing matching the request is visible to the actor.
func ListScope(actor, roleFilter Role) (role Role, ownedOnly bool, ok bool) {
	if roleFilter != "" {
		visible, owned := viewability(actor, roleFilter)
		return roleFilter, owned, visible
	}

	var visible []Role
	owned := false
	for _, target := range allRoles {
		if v, o := viewability(actor, target); v {
			visible = append(visible, target)
			owned = owned || o
		}
	}

	// The hierarchy yields all roles, exactly one, or none.
	switch {
	case len(visible) == 0:
		return "", false, false
	case len(visible) == len(allRoles):
		return "", owned, true
	default:
		return visible[0], owned, true
	}
}

// viewability probes CanView for a target role: whether any account of that
// role is visible to the actor, and if so, whether only owned ones are.
func viewability(actor, target Role) (visible, ownedOnly bool) {
	if CanView(actor, target, "actor", "other") {
		return true, false
	}
	if CanView(actor, target, "actor", "actor") {
		return true, true
	}
	return false, false
}
