package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/repository"
)

// MembershipService covers the member's own view: which organizations they
// belong to, and leaving one.
type MembershipService struct {
	orgRepo repository.OrganizationRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(orgRepo repository.OrganizationRepository) *MembershipService {
	return &MembershipService{orgRepo: orgRepo}
}

// GetMyOrganizations lists the caller's memberships, most recently joined
// first.
func (s *MembershipService) GetMyOrganizations(user *models.User) ([]models.OrganizationMembership, error) {
	memberships, err := s.orgRepo.ListMembershipsForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// GetMyOrganization returns the caller's membership in one organization.
func (s *MembershipService) GetMyOrganization(organizationID uuid.UUID, user *models.User) (*models.OrganizationMembership, error) {
	membership, err := s.orgRepo.FindMemberDetailed(organizationID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Membership not found", "You are not a member of this organization")
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	org, err := s.orgRepo.FindByID(organizationID)
	if err == nil {
		membership.Organization = *org
	}
	return membership, nil
}

// Leave removes the caller's own membership. A sole owner cannot leave, and
// any held license is released as part of the removal.
func (s *MembershipService) Leave(organizationID uuid.UUID, user *models.User) error {
	membership, err := s.orgRepo.FindMember(organizationID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Membership not found", "You are not a member of this organization")
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}

	if membership.Role == models.RoleOwner {
		owners, err := s.orgRepo.CountOwners(organizationID)
		if err != nil {
			return fmt.Errorf("failed to count owners: %w", err)
		}
		if owners <= 1 {
			return apperrors.BadRequest("Cannot leave", "You are the only owner. Transfer ownership before leaving.")
		}
	}

	if err := s.orgRepo.RemoveMembership(membership); err != nil {
		return fmt.Errorf("failed to leave organization: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"user_id":         user.ID,
	}).Info("Member left organization")
	return nil
}
