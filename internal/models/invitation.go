package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation offers a role in an organization to an email address. The row is
// deleted on acceptance, cancellation, or expiry; no history is kept.
type Invitation struct {
	ID              uuid.UUID        `gorm:"type:uuid;primarykey" json:"id"`
	OrganizationID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_org_email" json:"organization_id"`
	Email           string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_invitations_org_email" json:"email"`
	Token           string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Role            OrganizationRole `gorm:"type:varchar(20);not null" json:"role"`
	ExpiresAt       time.Time        `gorm:"not null" json:"expires_at"`
	InvitedByUserID *uuid.UUID       `gorm:"type:uuid" json:"invited_by_user_id"`
	CreatedAt       time.Time        `json:"created_at"`

	// Relations
	Organization  Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	InvitedByUser *User        `gorm:"foreignKey:InvitedByUserID" json:"invited_by_user,omitempty"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
