// Package authz evaluates organization roles against required privilege.
// All checks are pure functions over the membership loaded by the caller.
package authz

import (
	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/models"
)

// RequireMember fails when the caller holds no membership in the target
// organization.
func RequireMember(membership *models.OrganizationMembership) error {
	if membership == nil {
		return apperrors.Forbidden("Not a member", "You are not a member of this organization")
	}
	return nil
}

// RequireAtLeast fails when the caller is not a member or their role sits
// below the minimum in the member < admin < owner order.
func RequireAtLeast(membership *models.OrganizationMembership, minimum models.OrganizationRole) error {
	if err := RequireMember(membership); err != nil {
		return err
	}
	if membership.Role.Level() < minimum.Level() {
		return apperrors.Forbidden("Insufficient permissions", "You must be an Owner or Admin to perform this action")
	}
	return nil
}

// RequireOwnerOrAdmin is the gate used by every organization-scoped mutation.
func RequireOwnerOrAdmin(membership *models.OrganizationMembership) error {
	return RequireAtLeast(membership, models.RoleAdmin)
}

// CanGrant fails when an actor tries to hand out a role above their reach:
// granting or promoting to owner requires the actor to already be an owner.
func CanGrant(actor, target models.OrganizationRole) error {
	if target == models.RoleOwner && actor != models.RoleOwner {
		return apperrors.Forbidden("Cannot grant owner", "Only owners can grant the owner role")
	}
	return nil
}

// ParseRole validates a role label from a request.
func ParseRole(raw string) (models.OrganizationRole, error) {
	role := models.OrganizationRole(raw)
	if !role.IsValid() {
		return "", apperrors.BadRequest("Invalid role", "Role must be one of: member, admin, owner")
	}
	return role, nil
}
