package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/models"
)

// InvitationDTO is a pending invitation. The token is included so an admin
// can re-send the acceptance link out of band.
type InvitationDTO struct {
	ID               uuid.UUID               `json:"id"`
	OrganizationID   uuid.UUID               `json:"organizationId"`
	OrganizationName string                  `json:"organizationName"`
	Email            string                  `json:"email"`
	Role             models.OrganizationRole `json:"role"`
	ExpiresAt        time.Time               `json:"expiresAt"`
	Token            string                  `json:"token"`
	InvitedByUserID  *uuid.UUID              `json:"invitedByUserId"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// ToInvitationDTO converts an invitation with its preloaded organization.
func ToInvitationDTO(invitation models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:               invitation.ID,
		OrganizationID:   invitation.OrganizationID,
		OrganizationName: invitation.Organization.Name,
		Email:            invitation.Email,
		Role:             invitation.Role,
		ExpiresAt:        invitation.ExpiresAt,
		Token:            invitation.Token,
		InvitedByUserID:  invitation.InvitedByUserID,
		CreatedAt:        invitation.CreatedAt,
	}
}
