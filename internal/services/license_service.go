package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/metrics"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/repository"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// LicenseService owns the license lifecycle: creation, updates, cancellation
// and the renewal sweep.
type LicenseService struct {
	licenseRepo repository.LicenseRepository
	orgRepo     repository.OrganizationRepository
	settings    *LicenseSettingsService
}

// NewLicenseService creates a new LicenseService.
func NewLicenseService(
	licenseRepo repository.LicenseRepository,
	orgRepo repository.OrganizationRepository,
	settings *LicenseSettingsService,
) *LicenseService {
	return &LicenseService{
		licenseRepo: licenseRepo,
		orgRepo:     orgRepo,
		settings:    settings,
	}
}

// Create issues a new, unassigned, active license for the organization with
// the currently configured expiration.
func (s *LicenseService) Create(organizationID uuid.UUID, autoRenewal bool) (*models.License, error) {
	if _, err := s.orgRepo.FindByID(organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Organization not found", "The specified organization does not exist")
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	now := time.Now().UTC()
	license := &models.License{
		OrganizationID: organizationID,
		ExpiresAt:      now.Add(time.Duration(s.settings.ExpirationMinutes()) * time.Minute),
		AutoRenewal:    autoRenewal,
		IsActive:       true,
	}

	if err := s.licenseRepo.Create(license); err != nil {
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"license_id":      license.ID,
		"organization_id": organizationID,
	}).Info("Created license")

	return license, nil
}

// GetByID returns a license with its assignee.
func (s *LicenseService) GetByID(licenseID uuid.UUID) (*models.License, error) {
	license, err := s.licenseRepo.FindByID(licenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("License not found", "The specified license does not exist")
		}
		return nil, fmt.Errorf("failed to find license: %w", err)
	}
	return license, nil
}

// GetAllPaged lists licenses across all organizations.
func (s *LicenseService) GetAllPaged(params utils.PaginationParams) (utils.PagedResult[models.License], error) {
	licenses, total, err := s.licenseRepo.ListAllPaged(params)
	if err != nil {
		return utils.PagedResult[models.License]{}, fmt.Errorf("failed to list licenses: %w", err)
	}
	return utils.NewPagedResult(licenses, params, total), nil
}

// Update sets the expiry and/or auto-renewal flag. Each field is optional and
// independently settable; a provided expiry must lie strictly in the future.
func (s *LicenseService) Update(licenseID uuid.UUID, expiresAt *time.Time, autoRenewal *bool) (*models.License, error) {
	license, err := s.licenseRepo.FindByID(licenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("License not found", "The specified license does not exist")
		}
		return nil, fmt.Errorf("failed to find license: %w", err)
	}

	if expiresAt != nil {
		if !expiresAt.After(time.Now().UTC()) {
			return nil, apperrors.BadRequest("Invalid expiration date", "Expiration date must be in the future")
		}
		license.ExpiresAt = *expiresAt
	}
	if autoRenewal != nil {
		license.AutoRenewal = *autoRenewal
	}

	license.UpdatedAt = time.Now().UTC()
	if err := s.licenseRepo.Update(license); err != nil {
		return nil, fmt.Errorf("failed to update license: %w", err)
	}

	logrus.WithField("license_id", licenseID).Info("Updated license")
	return license, nil
}

// Cancel deactivates a license. Cancellation always disables auto-renewal and
// is terminal: nothing in this service reactivates a cancelled license.
func (s *LicenseService) Cancel(licenseID uuid.UUID) error {
	license, err := s.licenseRepo.FindByID(licenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("License not found", "The specified license does not exist")
		}
		return fmt.Errorf("failed to find license: %w", err)
	}

	license.IsActive = false
	license.AutoRenewal = false
	license.UpdatedAt = time.Now().UTC()
	if err := s.licenseRepo.Update(license); err != nil {
		return fmt.Errorf("failed to cancel license: %w", err)
	}

	logrus.WithField("license_id", licenseID).Info("Cancelled license")
	return nil
}

// RenewExpiredLicenses extends every active auto-renewing license whose
// expiry has passed, committing all extensions in one batch.
func (s *LicenseService) RenewExpiredLicenses() error {
	now := time.Now().UTC()
	newExpiry := now.Add(time.Duration(s.settings.ExpirationMinutes()) * time.Minute)

	renewed, err := s.licenseRepo.RenewExpired(now, newExpiry)
	if err != nil {
		return fmt.Errorf("failed to renew expired licenses: %w", err)
	}

	for _, license := range renewed {
		logrus.WithFields(logrus.Fields{
			"license_id":      license.ID,
			"organization_id": license.OrganizationID,
		}).Info("Renewed license")
	}

	if len(renewed) > 0 {
		metrics.LicensesRenewedTotal.Add(float64(len(renewed)))
		logrus.WithField("count", len(renewed)).Info("Renewed expired licenses")
	}

	return nil
}
