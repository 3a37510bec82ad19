package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a projection of the identity provider's latest claims. It is
// created lazily on first authenticated request and refreshed whenever the
// email or role claim changes.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	ExternalID string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"external_id"`
	Email      string    `gorm:"type:varchar(255);not null" json:"email"`
	Role       string    `gorm:"type:varchar(50);not null" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Memberships      []OrganizationMembership `gorm:"foreignKey:UserID" json:"-"`
	AssignedLicenses []License                `gorm:"foreignKey:AssignedToUserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
