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
	"github.com/orgstack/org-license-manager/internal/constants"
	"github.com/orgstack/org-license-manager/internal/metrics"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/repository"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// InvitationService issues, lists, cancels and accepts invitations. An
// invitation is pending until accepted, cancelled or expired; every terminal
// outcome deletes the row.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	orgRepo        repository.OrganizationRepository
	emailService   EmailService
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	orgRepo repository.OrganizationRepository,
	emailService EmailService,
) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		orgRepo:        orgRepo,
		emailService:   emailService,
	}
}

// Create issues an invitation and hands the notification to the email
// service without waiting for it. Inviting as owner requires the inviter to
// be an owner.
func (s *InvitationService) Create(organizationID uuid.UUID, email string, role models.OrganizationRole, inviter *models.User) (*models.Invitation, error) {
	org, err := s.orgRepo.FindByID(organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Organization not found", "The specified organization does not exist")
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	membership, err := s.orgRepo.FindMember(organizationID, inviter.ID)
	if err != nil {
		membership = nil
	}
	if err := authz.RequireOwnerOrAdmin(membership); err != nil {
		return nil, err
	}
	if err := authz.CanGrant(membership.Role, role); err != nil {
		return nil, err
	}

	normalizedEmail := strings.ToLower(strings.TrimSpace(email))

	if _, err := s.orgRepo.FindMemberByEmail(organizationID, normalizedEmail); err == nil {
		return nil, apperrors.BadRequest("Already a member", "This user is already a member of the organization")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	if _, err := s.invitationRepo.FindPendingByEmail(organizationID, normalizedEmail); err == nil {
		return nil, apperrors.BadRequest("Invitation exists", "An invitation has already been sent to this email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invitation: %w", err)
	}

	token, err := utils.GenerateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	invitation := &models.Invitation{
		OrganizationID:  organizationID,
		Email:           normalizedEmail,
		Token:           token,
		Role:            role,
		ExpiresAt:       time.Now().UTC().AddDate(0, 0, constants.InvitationExpirationDays),
		InvitedByUserID: &inviter.ID,
	}

	if err := s.invitationRepo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	// Fire and forget: a delivery failure never rolls back the invitation.
	go func(email, orgName, token string) {
		metrics.InvitationEmailsTotal.Inc()
		if err := s.emailService.SendInvitationEmail(email, orgName, token); err != nil {
			logrus.WithError(err).WithField("email", email).Error("Failed to send invitation email")
		}
	}(normalizedEmail, org.Name, token)

	logrus.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"email":           normalizedEmail,
		"role":            role,
	}).Info("Created invitation")

	invitation.Organization = *org
	return invitation, nil
}

// GetAllPaged lists an organization's pending invitations. Owner or admin
// only.
func (s *InvitationService) GetAllPaged(organizationID uuid.UUID, currentUser *models.User, params utils.PaginationParams) (utils.PagedResult[models.Invitation], error) {
	var empty utils.PagedResult[models.Invitation]
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return empty, err
	}

	invitations, total, err := s.invitationRepo.ListPaged(organizationID, params)
	if err != nil {
		return empty, fmt.Errorf("failed to list invitations: %w", err)
	}
	return utils.NewPagedResult(invitations, params, total), nil
}

// GetByID returns one invitation. Owner or admin only.
func (s *InvitationService) GetByID(organizationID, invitationID uuid.UUID, currentUser *models.User) (*models.Invitation, error) {
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return nil, err
	}

	invitation, err := s.invitationRepo.FindByID(organizationID, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Invitation not found", "The specified invitation does not exist")
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return invitation, nil
}

// Cancel deletes a pending invitation. Owner or admin only.
func (s *InvitationService) Cancel(organizationID, invitationID uuid.UUID, currentUser *models.User) error {
	if err := s.requireOwnerOrAdmin(organizationID, currentUser); err != nil {
		return err
	}

	invitation, err := s.invitationRepo.FindByID(organizationID, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Invitation not found", "The specified invitation does not exist")
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}

	if err := s.invitationRepo.Delete(invitation); err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}
	return nil
}

// Accept redeems an invitation token for the calling user. An expired token
// or an existing membership burns the invitation; an email mismatch keeps it,
// so the rightful recipient can still use it.
func (s *InvitationService) Accept(token string, user *models.User) (*models.OrganizationMembership, error) {
	invitation, err := s.invitationRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Invitation not found", "Invalid or expired invitation token")
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if !invitation.ExpiresAt.After(time.Now().UTC()) {
		if err := s.invitationRepo.Delete(invitation); err != nil {
			return nil, fmt.Errorf("failed to delete expired invitation: %w", err)
		}
		return nil, apperrors.BadRequest("Invitation expired", "This invitation has expired")
	}

	if !strings.EqualFold(invitation.Email, user.Email) {
		return nil, apperrors.Forbidden("Email mismatch", "This invitation was sent to a different email address")
	}

	if _, err := s.orgRepo.FindMember(invitation.OrganizationID, user.ID); err == nil {
		if err := s.invitationRepo.Delete(invitation); err != nil {
			return nil, fmt.Errorf("failed to delete redundant invitation: %w", err)
		}
		return nil, apperrors.BadRequest("Already a member", "You are already a member of this organization")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	membership := &models.OrganizationMembership{
		OrganizationID: invitation.OrganizationID,
		UserID:         user.ID,
		Role:           invitation.Role,
		JoinedAt:       time.Now().UTC(),
	}

	if err := s.invitationRepo.Accept(invitation, membership); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"organization_id": invitation.OrganizationID,
		"user_id":         user.ID,
		"role":            invitation.Role,
	}).Info("Invitation accepted")

	membership.Organization = invitation.Organization
	membership.User = *user
	return membership, nil
}

func (s *InvitationService) requireOwnerOrAdmin(organizationID uuid.UUID, currentUser *models.User) error {
	if _, err := s.orgRepo.FindByID(organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Organization not found", "The specified organization does not exist")
		}
		return fmt.Errorf("failed to find organization: %w", err)
	}

	membership, err := s.orgRepo.FindMember(organizationID, currentUser.ID)
	if err != nil {
		membership = nil
	}
	return authz.RequireOwnerOrAdmin(membership)
}
