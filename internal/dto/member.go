package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/models"
)

// MemberDTO is one organization member with their license, if any.
type MemberDTO struct {
	UserID   uuid.UUID               `json:"userId"`
	Email    string                  `json:"email"`
	Role     models.OrganizationRole `json:"role"`
	JoinedAt time.Time               `json:"joinedAt"`
	License  *LicenseInfoDTO         `json:"license"`
}

// LicenseInfoDTO is the compact license view embedded in a member.
type LicenseInfoDTO struct {
	ID          uuid.UUID `json:"id"`
	ExpiresAt   time.Time `json:"expiresAt"`
	IsExpired   bool      `json:"isExpired"`
	AutoRenewal bool      `json:"autoRenewal"`
}

// ToMemberDTO converts a membership with its preloaded user and license.
func ToMemberDTO(member models.OrganizationMembership) MemberDTO {
	out := MemberDTO{
		UserID:   member.UserID,
		Email:    member.User.Email,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
	if member.AssignedLicense != nil {
		out.License = &LicenseInfoDTO{
			ID:          member.AssignedLicense.ID,
			ExpiresAt:   member.AssignedLicense.ExpiresAt,
			IsExpired:   member.AssignedLicense.IsExpired(time.Now().UTC()),
			AutoRenewal: member.AssignedLicense.AutoRenewal,
		}
	}
	return out
}
