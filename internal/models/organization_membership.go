package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationRole string

const (
	RoleMember OrganizationRole = "member"
	RoleAdmin  OrganizationRole = "admin"
	RoleOwner  OrganizationRole = "owner"
)

// Level maps a role onto the total order member < admin < owner.
func (r OrganizationRole) Level() int {
	switch r {
	case RoleOwner:
		return 2
	case RoleAdmin:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the role is one of the known role labels.
func (r OrganizationRole) IsValid() bool {
	switch r {
	case RoleMember, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// OrganizationMembership links one user to one organization with a role.
// AssignedLicenseID mirrors License.AssignedToUserID; both sides are kept in
// lock-step by the assign/unassign operations.
type OrganizationMembership struct {
	ID                uuid.UUID        `gorm:"type:uuid;primarykey" json:"id"`
	OrganizationID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user" json:"organization_id"`
	UserID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user" json:"user_id"`
	Role              OrganizationRole `gorm:"type:varchar(20);not null" json:"role"`
	AssignedLicenseID *uuid.UUID       `gorm:"type:uuid" json:"assigned_license_id"`
	JoinedAt          time.Time        `json:"joined_at"`

	// Relations
	Organization    Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User            User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssignedLicense *License     `gorm:"foreignKey:AssignedLicenseID" json:"assigned_license,omitempty"`
}

func (m *OrganizationMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
