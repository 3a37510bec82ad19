package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/database"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

func (r *GormInvitationRepository) Create(invitation *models.Invitation) error {
	return r.db.Create(invitation).Error
}

func (r *GormInvitationRepository) FindByToken(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.Preload("Organization").
		Where("token = ?", token).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *GormInvitationRepository) FindByID(organizationID, invitationID uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.Preload("Organization").Preload("InvitedByUser").
		Where("id = ? AND organization_id = ?", invitationID, organizationID).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *GormInvitationRepository) FindPendingByEmail(organizationID uuid.UUID, email string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.
		Where("organization_id = ? AND LOWER(email) = ?", organizationID, strings.ToLower(email)).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

var invitationSortColumns = map[string]string{
	"email":     "email",
	"role":      "role",
	"createdat": "created_at",
	"expiresat": "expires_at",
}

func (r *GormInvitationRepository) ListPaged(organizationID uuid.UUID, params utils.PaginationParams) ([]models.Invitation, int64, error) {
	query := r.db.Model(&models.Invitation{}).
		Where("organization_id = ?", organizationID)

	if params.Search != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invitations []models.Invitation
	if err := query.
		Preload("Organization").Preload("InvitedByUser").
		Scopes(
			database.Sort(params, invitationSortColumns, "created_at"),
			database.Paginate(params),
		).
		Find(&invitations).Error; err != nil {
		return nil, 0, err
	}
	return invitations, total, nil
}

func (r *GormInvitationRepository) Delete(invitation *models.Invitation) error {
	return r.db.Delete(&models.Invitation{}, "id = ?", invitation.ID).Error
}

// Accept creates the membership and burns the invitation atomically: both
// writes succeed or neither does.
func (r *GormInvitationRepository) Accept(invitation *models.Invitation, member *models.OrganizationMembership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invitation{}, "id = ?", invitation.ID).Error
	})
}
