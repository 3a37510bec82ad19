package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// License is a renewable entitlement owned by an organization and optionally
// held by one member. A license may be active-but-expired (picked up by the
// renewal sweep when AutoRenewal is set); cancellation is terminal.
type License struct {
	ID               uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	OrganizationID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	AssignedToUserID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to_user_id"`
	ExpiresAt        time.Time  `gorm:"not null" json:"expires_at"`
	AutoRenewal      bool       `gorm:"not null" json:"auto_renewal"`
	IsActive         bool       `gorm:"not null" json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	AssignedToUser *User        `gorm:"foreignKey:AssignedToUserID" json:"assigned_to_user,omitempty"`
}

func (l *License) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the license expiry lies at or before now.
func (l *License) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
