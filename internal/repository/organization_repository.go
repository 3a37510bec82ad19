package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/database"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithOwner creates an organization and its sole owner membership atomically.
func (r *GormOrganizationRepository) CreateWithOwner(org *models.Organization, owner *models.OrganizationMembership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		owner.OrganizationID = org.ID
		return tx.Create(owner).Error
	})
}

func (r *GormOrganizationRepository) FindByID(id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// DeleteCascade deletes the organization and all of its children in a
// transaction. Memberships go first so no row still references a license.
func (r *GormOrganizationRepository) DeleteCascade(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).Delete(&models.OrganizationMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.License{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Organization{}, "id = ?", id).Error
	})
}

func (r *GormOrganizationRepository) FindMember(organizationID, userID uuid.UUID) (*models.OrganizationMembership, error) {
	var member models.OrganizationMembership
	if err := r.db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormOrganizationRepository) FindMemberDetailed(organizationID, userID uuid.UUID) (*models.OrganizationMembership, error) {
	var member models.OrganizationMembership
	if err := r.db.Preload("User").Preload("AssignedLicense").
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormOrganizationRepository) FindMemberByEmail(organizationID uuid.UUID, email string) (*models.OrganizationMembership, error) {
	var member models.OrganizationMembership
	if err := r.db.
		Joins("JOIN users ON users.id = organization_memberships.user_id").
		Where("organization_memberships.organization_id = ? AND LOWER(users.email) = ?", organizationID, strings.ToLower(email)).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormOrganizationRepository) ListMembershipsForUser(userID uuid.UUID) ([]models.OrganizationMembership, error) {
	var memberships []models.OrganizationMembership
	if err := r.db.Preload("Organization").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

var memberSortColumns = map[string]string{
	"email":    "users.email",
	"role":     "organization_memberships.role",
	"joinedat": "organization_memberships.joined_at",
}

func (r *GormOrganizationRepository) ListMembersPaged(organizationID uuid.UUID, params utils.PaginationParams) ([]models.OrganizationMembership, int64, error) {
	query := r.db.Model(&models.OrganizationMembership{}).
		Joins("JOIN users ON users.id = organization_memberships.user_id").
		Where("organization_memberships.organization_id = ?", organizationID)

	if params.Search != "" {
		query = query.Where("LOWER(users.email) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.OrganizationMembership
	if err := query.
		Preload("User").Preload("AssignedLicense").
		Scopes(
			database.Sort(params, memberSortColumns, "organization_memberships.joined_at"),
			database.Paginate(params),
		).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *GormOrganizationRepository) CountOwners(organizationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND role = ?", organizationID, models.RoleOwner).
		Count(&count).Error
	return count, err
}

func (r *GormOrganizationRepository) CountMembers(organizationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error
	return count, err
}

func (r *GormOrganizationRepository) UpdateMembership(member *models.OrganizationMembership) error {
	return r.db.Save(member).Error
}

// RemoveMembership releases the member's license, if any, and deletes the
// membership within one transaction.
func (r *GormOrganizationRepository) RemoveMembership(member *models.OrganizationMembership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if member.AssignedLicenseID != nil {
			if err := tx.Model(&models.License{}).
				Where("id = ?", *member.AssignedLicenseID).
				Updates(map[string]interface{}{
					"assigned_to_user_id": nil,
					"updated_at":          time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.OrganizationMembership{}, "id = ?", member.ID).Error
	})
}
