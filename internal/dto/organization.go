package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/models"
)

// OrganizationDTO is the organization representation returned to clients.
type OrganizationDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	MemberCount int64     `json:"memberCount"`
}

// UserOrganizationDTO is an organization seen through the caller's own
// membership.
type UserOrganizationDTO struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Role        models.OrganizationRole `json:"role"`
	JoinedAt    time.Time               `json:"joinedAt"`
}

// ToOrganizationDTO converts an organization and its member count.
func ToOrganizationDTO(org *models.Organization, memberCount int64) OrganizationDTO {
	return OrganizationDTO{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
		MemberCount: memberCount,
	}
}

// ToUserOrganizationDTO converts a membership to the caller-facing view.
func ToUserOrganizationDTO(member models.OrganizationMembership) UserOrganizationDTO {
	return UserOrganizationDTO{
		ID:          member.Organization.ID,
		Name:        member.Organization.Name,
		Description: member.Organization.Description,
		Role:        member.Role,
		JoinedAt:    member.JoinedAt,
	}
}
