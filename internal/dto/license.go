package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/models"
)

// LicenseDTO is the full license representation.
type LicenseDTO struct {
	ID               uuid.UUID  `json:"id"`
	OrganizationID   uuid.UUID  `json:"organizationId"`
	AssignedToUserID *uuid.UUID `json:"assignedToUserId"`
	AssignedToEmail  *string    `json:"assignedToEmail"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	AutoRenewal      bool       `json:"autoRenewal"`
	IsActive         bool       `json:"isActive"`
	IsExpired        bool       `json:"isExpired"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ToLicenseDTO converts a license with its preloaded assignee.
func ToLicenseDTO(license models.License) LicenseDTO {
	out := LicenseDTO{
		ID:               license.ID,
		OrganizationID:   license.OrganizationID,
		AssignedToUserID: license.AssignedToUserID,
		ExpiresAt:        license.ExpiresAt,
		AutoRenewal:      license.AutoRenewal,
		IsActive:         license.IsActive,
		IsExpired:        license.IsExpired(time.Now().UTC()),
		CreatedAt:        license.CreatedAt,
		UpdatedAt:        license.UpdatedAt,
	}
	if license.AssignedToUser != nil {
		email := license.AssignedToUser.Email
		out.AssignedToEmail = &email
	}
	return out
}

// LicenseSettingsDTO carries the process-wide expiration duration.
type LicenseSettingsDTO struct {
	ExpirationMinutes int `json:"expirationMinutes"`
}
