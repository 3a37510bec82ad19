package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/database"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/utils"
)

var (
	// ErrLicenseInactive is returned when assigning a cancelled license.
	ErrLicenseInactive = errors.New("license repository: license is not active")
	// ErrLicenseAssigned is returned when the license is already held by a
	// different user at commit time.
	ErrLicenseAssigned = errors.New("license repository: license assigned to another user")
	// ErrMemberNotFound is returned when the target membership does not
	// exist at commit time.
	ErrMemberNotFound = errors.New("license repository: member not found")
)

// GormLicenseRepository is a GORM implementation of LicenseRepository
type GormLicenseRepository struct {
	db *gorm.DB
}

// NewLicenseRepository creates a new LicenseRepository
func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &GormLicenseRepository{db: db}
}

func (r *GormLicenseRepository) Create(license *models.License) error {
	return r.db.Create(license).Error
}

func (r *GormLicenseRepository) FindByID(id uuid.UUID) (*models.License, error) {
	var license models.License
	if err := r.db.Preload("AssignedToUser").First(&license, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *GormLicenseRepository) Update(license *models.License) error {
	return r.db.Save(license).Error
}

var licenseSortColumns = map[string]string{
	"createdat":      "licenses.created_at",
	"expiresat":      "licenses.expires_at",
	"isactive":       "licenses.is_active",
	"autorenewal":    "licenses.auto_renewal",
	"organizationid": "licenses.organization_id",
}

// ListAllPaged lists licenses across organizations; search matches the
// assignee email or the organization name.
func (r *GormLicenseRepository) ListAllPaged(params utils.PaginationParams) ([]models.License, int64, error) {
	query := r.db.Model(&models.License{}).
		Joins("JOIN organizations ON organizations.id = licenses.organization_id").
		Joins("LEFT JOIN users ON users.id = licenses.assigned_to_user_id")

	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(users.email) LIKE ? OR LOWER(organizations.name) LIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var licenses []models.License
	if err := query.
		Preload("AssignedToUser").Preload("Organization").
		Scopes(
			database.Sort(params, licenseSortColumns, "licenses.created_at"),
			database.Paginate(params),
		).
		Find(&licenses).Error; err != nil {
		return nil, 0, err
	}
	return licenses, total, nil
}

// ListForOrganizationPaged lists one organization's licenses; search matches
// the assignee email.
func (r *GormLicenseRepository) ListForOrganizationPaged(organizationID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error) {
	query := r.db.Model(&models.License{}).
		Joins("LEFT JOIN users ON users.id = licenses.assigned_to_user_id").
		Where("licenses.organization_id = ?", organizationID)

	if params.Search != "" {
		query = query.Where("LOWER(users.email) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var licenses []models.License
	if err := query.
		Preload("AssignedToUser").
		Scopes(
			database.Sort(params, licenseSortColumns, "licenses.created_at"),
			database.Paginate(params),
		).
		Find(&licenses).Error; err != nil {
		return nil, 0, err
	}
	return licenses, total, nil
}

// Assign sets both sides of the license-member link. The license state is
// re-read inside the transaction so a concurrent assignment of the same
// license loses with ErrLicenseAssigned instead of silently overwriting.
func (r *GormLicenseRepository) Assign(organizationID, userID, licenseID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var license models.License
		if err := tx.Where("id = ? AND organization_id = ?", licenseID, organizationID).
			First(&license).Error; err != nil {
			return err
		}
		if !license.IsActive {
			return ErrLicenseInactive
		}
		if license.AssignedToUserID != nil && *license.AssignedToUserID != userID {
			return ErrLicenseAssigned
		}

		var member models.OrganizationMembership
		if err := tx.Where("organization_id = ? AND user_id = ?", organizationID, userID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		now := time.Now().UTC()
		license.AssignedToUserID = &userID
		license.UpdatedAt = now
		if err := tx.Save(&license).Error; err != nil {
			return err
		}

		member.AssignedLicenseID = &license.ID
		return tx.Save(&member).Error
	})
}

// Unassign clears both sides of the link; a member holding no license is a
// no-op.
func (r *GormLicenseRepository) Unassign(organizationID, userID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var member models.OrganizationMembership
		if err := tx.Where("organization_id = ? AND user_id = ?", organizationID, userID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		if member.AssignedLicenseID == nil {
			return nil
		}

		if err := tx.Model(&models.License{}).
			Where("id = ?", *member.AssignedLicenseID).
			Updates(map[string]interface{}{
				"assigned_to_user_id": nil,
				"updated_at":          time.Now().UTC(),
			}).Error; err != nil {
			return err
		}

		member.AssignedLicenseID = nil
		return tx.Save(&member).Error
	})
}

// RenewExpired extends every eligible license and commits the batch at once.
// Running it again immediately finds nothing: each expiry has been pushed
// into the future.
func (r *GormLicenseRepository) RenewExpired(now, newExpiry time.Time) ([]models.License, error) {
	var renewed []models.License
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var eligible []models.License
		if err := tx.Where("is_active = ? AND auto_renewal = ? AND expires_at <= ?", true, true, now).
			Find(&eligible).Error; err != nil {
			return err
		}

		for i := range eligible {
			eligible[i].ExpiresAt = newExpiry
			eligible[i].UpdatedAt = now
			if err := tx.Save(&eligible[i]).Error; err != nil {
				return err
			}
		}

		renewed = eligible
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewed, nil
}
