package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/authz"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/repository"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// OrganizationService provides business logic for organizations, their
// members and the license assignment edge.
type OrganizationService struct {
	orgRepo     repository.OrganizationRepository
	licenseRepo repository.LicenseRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, licenseRepo repository.LicenseRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:     orgRepo,
		licenseRepo: licenseRepo,
	}
}

// Create creates an organization with the creator as its sole owner.
func (s *OrganizationService) Create(name, description string, creator *models.User) (*models.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.BadRequest("Invalid name", "Organization name is required")
	}

	org := &models.Organization{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	owner := &models.OrganizationMembership{
		UserID:   creator.ID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now().UTC(),
	}

	if err := s.orgRepo.CreateWithOwner(org, owner); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"organization_id": org.ID,
		"owner_id":        creator.ID,
	}).Info("Created organization")

	return org, nil
}

// Update changes the organization's name and description. Owner or admin only.
func (s *OrganizationService) Update(organizationID uuid.UUID, name, description string, currentUser *models.User) (*models.Organization, error) {
	org, err := s.findOrganization(organizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.BadRequest("Invalid name", "Organization name is required")
	}

	org.Name = strings.TrimSpace(name)
	org.Description = strings.TrimSpace(description)
	org.UpdatedAt = time.Now().UTC()
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// Delete removes the organization with all of its memberships, licenses and
// invitations. Owner or admin only.
func (s *OrganizationService) Delete(organizationID uuid.UUID, currentUser *models.User) error {
	if _, err := s.findOrganization(organizationID); err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return err
	}

	if err := s.orgRepo.DeleteCascade(organizationID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	logrus.WithField("organization_id", organizationID).Info("Deleted organization")
	return nil
}

// GetByIDForMember returns the organization together with the caller's own
// membership; non-members are rejected.
func (s *OrganizationService) GetByIDForMember(organizationID uuid.UUID, currentUser *models.User) (*models.Organization, *models.OrganizationMembership, error) {
	org, err := s.findOrganization(organizationID)
	if err != nil {
		return nil, nil, err
	}

	membership := s.findMembership(organizationID, currentUser.ID)
	if err := authz.RequireMember(membership); err != nil {
		return nil, nil, err
	}

	return org, membership, nil
}

// MemberCount counts the organization's memberships.
func (s *OrganizationService) MemberCount(organizationID uuid.UUID) (int64, error) {
	return s.orgRepo.CountMembers(organizationID)
}

// GetMembersPaged lists the organization's members. Owner or admin only.
func (s *OrganizationService) GetMembersPaged(organizationID uuid.UUID, currentUser *models.User, params utils.PaginationParams) (utils.PagedResult[models.OrganizationMembership], error) {
	var empty utils.PagedResult[models.OrganizationMembership]
	if _, err := s.findOrganization(organizationID); err != nil {
		return empty, err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return empty, err
	}

	members, total, err := s.orgRepo.ListMembersPaged(organizationID, params)
	if err != nil {
		return empty, fmt.Errorf("failed to list members: %w", err)
	}
	return utils.NewPagedResult(members, params, total), nil
}

// GetMember returns one member with user and license details. Owner or admin
// only.
func (s *OrganizationService) GetMember(organizationID, targetUserID uuid.UUID, currentUser *models.User) (*models.OrganizationMembership, error) {
	if _, err := s.findOrganization(organizationID); err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return nil, err
	}

	member, err := s.orgRepo.FindMemberDetailed(organizationID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Member not found", "The specified user is not a member of this organization")
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}

// UpdateMemberRole changes a member's role. Granting owner requires the
// caller to be an owner, and demoting the last owner is rejected.
func (s *OrganizationService) UpdateMemberRole(organizationID, targetUserID uuid.UUID, newRole models.OrganizationRole, currentUser *models.User) error {
	if _, err := s.findOrganization(organizationID); err != nil {
		return err
	}

	caller := s.findMembership(organizationID, currentUser.ID)
	if err := authz.RequireOwnerOrAdmin(caller); err != nil {
		return err
	}
	if err := authz.CanGrant(caller.Role, newRole); err != nil {
		return err
	}

	target, err := s.orgRepo.FindMember(organizationID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Member not found", "The specified user is not a member of this organization")
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if target.Role == models.RoleOwner && newRole != models.RoleOwner {
		if err := s.requireAnotherOwner(organizationID, "Cannot demote owner"); err != nil {
			return err
		}
	}

	target.Role = newRole
	if err := s.orgRepo.UpdateMembership(target); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return nil
}

// RemoveMember removes a member, releasing any license they hold. Removing
// the last owner is rejected.
func (s *OrganizationService) RemoveMember(organizationID, targetUserID uuid.UUID, currentUser *models.User) error {
	if _, err := s.findOrganization(organizationID); err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return err
	}

	target, err := s.orgRepo.FindMember(organizationID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Member not found", "The specified user is not a member of this organization")
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if target.Role == models.RoleOwner {
		if err := s.requireAnotherOwner(organizationID, "Cannot remove owner"); err != nil {
			return err
		}
	}

	if err := s.orgRepo.RemoveMembership(target); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"user_id":         targetUserID,
	}).Info("Removed member")
	return nil
}

// AssignLicense links a license to a member. Re-assigning to the same user is
// idempotent; assigning a license held by a different user fails.
func (s *OrganizationService) AssignLicense(organizationID, targetUserID, licenseID uuid.UUID, currentUser *models.User) error {
	if _, err := s.findOrganization(organizationID); err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return err
	}

	err := s.licenseRepo.Assign(organizationID, targetUserID, licenseID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("License not found", "The specified license does not belong to this organization")
	case errors.Is(err, repository.ErrMemberNotFound):
		return apperrors.NotFound("Member not found", "The specified user is not a member of this organization")
	case errors.Is(err, repository.ErrLicenseInactive):
		return apperrors.BadRequest("License inactive", "Cannot assign an inactive license")
	case errors.Is(err, repository.ErrLicenseAssigned):
		return apperrors.BadRequest("License already assigned", "This license is already assigned to another user")
	default:
		return fmt.Errorf("failed to assign license: %w", err)
	}
}

// UnassignLicense clears a member's license assignment; a member holding no
// license is a no-op.
func (s *OrganizationService) UnassignLicense(organizationID, targetUserID uuid.UUID, currentUser *models.User) error {
	if _, err := s.findOrganization(organizationID); err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return err
	}

	err := s.licenseRepo.Unassign(organizationID, targetUserID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrMemberNotFound):
		return apperrors.NotFound("Member not found", "The specified user is not a member of this organization")
	default:
		return fmt.Errorf("failed to unassign license: %w", err)
	}
}

// GetLicensesPaged lists the organization's licenses. Owner or admin only.
func (s *OrganizationService) GetLicensesPaged(organizationID uuid.UUID, currentUser *models.User, params utils.PaginationParams) (utils.PagedResult[models.License], error) {
	var empty utils.PagedResult[models.License]
	if _, err := s.findOrganization(organizationID); err != nil {
		return empty, err
	}
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return empty, err
	}

	licenses, total, err := s.licenseRepo.ListForOrganizationPaged(organizationID, params)
	if err != nil {
		return empty, fmt.Errorf("failed to list licenses: %w", err)
	}
	return utils.NewPagedResult(licenses, params, total), nil
}

func (s *OrganizationService) findOrganization(organizationID uuid.UUID) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Organization not found", "The specified organization does not exist")
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

// findMembership returns nil when the user holds no membership; the authz
// checks treat nil as not-a-member.
func (s *OrganizationService) findMembership(organizationID, userID uuid.UUID) *models.OrganizationMembership {
	member, err := s.orgRepo.FindMember(organizationID, userID)
	if err != nil {
		return nil
	}
	return member
}

func (s *OrganizationService) requireOwnerOrAdmin(organizationID uuid.UUID, currentUser *models.User) error {
	return authz.RequireOwnerOrAdmin(s.findMembership(organizationID, currentUser.ID))
}

func (s *OrganizationService) requireAnotherOwner(organizationID uuid.UUID, title string) error {
	owners, err := s.orgRepo.CountOwners(organizationID)
	if err != nil {
		return fmt.Errorf("failed to count owners: %w", err)
	}
	if owners <= 1 {
		return apperrors.BadRequest(title, "Organization must have at least one owner")
	}
	return nil
}
