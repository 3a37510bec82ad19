package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// UserRepository defines the interface for identity record access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Update persists changes to a user
	Update(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uuid.UUID) (*models.User, error)

	// FindByExternalID finds a user by its identity-provider subject
	FindByExternalID(externalID string) (*models.User, error)
}

// OrganizationRepository defines the interface for organization and
// membership data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization and its sole owner membership
	// within a single transaction.
	CreateWithOwner(org *models.Organization, owner *models.OrganizationMembership) error

	// FindByID finds an organization by ID
	FindByID(id uuid.UUID) (*models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// DeleteCascade deletes an organization and all of its memberships,
	// licenses and invitations in one transaction.
	DeleteCascade(id uuid.UUID) error

	// FindMember finds a specific organization membership
	FindMember(organizationID, userID uuid.UUID) (*models.OrganizationMembership, error)

	// FindMemberDetailed finds a membership with its user and assigned
	// license preloaded
	FindMemberDetailed(organizationID, userID uuid.UUID) (*models.OrganizationMembership, error)

	// FindMemberByEmail finds a membership by the member's email,
	// case-insensitively
	FindMemberByEmail(organizationID uuid.UUID, email string) (*models.OrganizationMembership, error)

	// ListMembershipsForUser lists all organizations a user is a member of,
	// most recently joined first
	ListMembershipsForUser(userID uuid.UUID) ([]models.OrganizationMembership, error)

	// ListMembersPaged lists members of an organization with pagination,
	// email search and field sorting
	ListMembersPaged(organizationID uuid.UUID, params utils.PaginationParams) ([]models.OrganizationMembership, int64, error)

	// CountOwners counts the owner memberships of an organization
	CountOwners(organizationID uuid.UUID) (int64, error)

	// CountMembers counts all memberships of an organization
	CountMembers(organizationID uuid.UUID) (int64, error)

	// UpdateMembership persists changes to a membership
	UpdateMembership(member *models.OrganizationMembership) error

	// RemoveMembership deletes a membership, first releasing any license it
	// holds, in one transaction.
	RemoveMembership(member *models.OrganizationMembership) error
}

// LicenseRepository defines the interface for license data access
type LicenseRepository interface {
	// Create creates a new license
	Create(license *models.License) error

	// FindByID finds a license with its assignee preloaded
	FindByID(id uuid.UUID) (*models.License, error)

	// Update persists changes to a license
	Update(license *models.License) error

	// ListAllPaged lists licenses across all organizations (admin view)
	ListAllPaged(params utils.PaginationParams) ([]models.License, int64, error)

	// ListForOrganizationPaged lists an organization's licenses
	ListForOrganizationPaged(organizationID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error)

	// Assign links a license to a member, setting both sides of the 1:1
	// edge inside one transaction. The already-assigned check is re-run
	// within the same transaction that performs the write.
	Assign(organizationID, userID, licenseID uuid.UUID) error

	// Unassign clears both sides of the assignment edge; it is a safe no-op
	// when nothing is assigned.
	Unassign(organizationID, userID uuid.UUID) error

	// RenewExpired extends every active auto-renewing license whose expiry
	// lies at or before now, committing all extensions at once. It returns
	// the licenses that were renewed.
	RenewExpired(now, newExpiry time.Time) ([]models.License, error)
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create creates a new invitation
	Create(invitation *models.Invitation) error

	// FindByToken finds an invitation by its token with the organization
	// preloaded
	FindByToken(token string) (*models.Invitation, error)

	// FindByID finds an invitation scoped to an organization
	FindByID(organizationID, invitationID uuid.UUID) (*models.Invitation, error)

	// FindPendingByEmail finds a pending invitation for an email within an
	// organization
	FindPendingByEmail(organizationID uuid.UUID, email string) (*models.Invitation, error)

	// ListPaged lists an organization's pending invitations
	ListPaged(organizationID uuid.UUID, params utils.PaginationParams) ([]models.Invitation, int64, error)

	// Delete removes an invitation row
	Delete(invitation *models.Invitation) error

	// Accept creates the membership and deletes the invitation within a
	// single transaction.
	Accept(invitation *models.Invitation, member *models.OrganizationMembership) error
}

// SettingRepository defines the interface for the key/value settings store
type SettingRepository interface {
	// Get reads a setting by key
	Get(key string) (*models.AppSetting, error)

	// Upsert writes a setting, creating the row when absent
	Upsert(key, value string) error
}
