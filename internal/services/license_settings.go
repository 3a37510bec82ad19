package services

import (
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/constants"
	"github.com/orgstack/org-license-manager/internal/repository"
)

// LicenseSettingsService holds the process-wide license expiration duration.
// The in-memory value is authoritative: reads never touch the store, writes
// update memory synchronously and persist in the background. A persistence
// failure is logged, not surfaced — subsequent creates and renewals keep
// using the new value either way.
type LicenseSettingsService struct {
	settingRepo repository.SettingRepository

	mu                sync.Mutex
	expirationMinutes int
}

// NewLicenseSettingsService creates a LicenseSettingsService with the
// hard default in effect until Initialize runs.
func NewLicenseSettingsService(settingRepo repository.SettingRepository) *LicenseSettingsService {
	return &LicenseSettingsService{
		settingRepo:       settingRepo,
		expirationMinutes: constants.DefaultExpirationMinutes,
	}
}

// Initialize loads the persisted value once at startup. An absent or
// unparseable setting leaves the default in place.
func (s *LicenseSettingsService) Initialize() {
	setting, err := s.settingRepo.Get(constants.LicenseExpirationKey)
	if err != nil {
		logrus.WithField("minutes", constants.DefaultExpirationMinutes).
			Warn("Failed to load license expiration setting, using default")
		return
	}

	minutes, err := strconv.Atoi(setting.Value)
	if err != nil || minutes <= 0 {
		logrus.WithField("minutes", constants.DefaultExpirationMinutes).
			Warnf("Ignoring unparseable license expiration setting %q, using default", setting.Value)
		return
	}

	s.mu.Lock()
	s.expirationMinutes = minutes
	s.mu.Unlock()

	logrus.WithField("minutes", minutes).Info("Loaded license expiration setting from database")
}

// ExpirationMinutes returns the current value without touching the store.
func (s *LicenseSettingsService) ExpirationMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expirationMinutes
}

// SetExpirationMinutes updates the in-memory value synchronously and persists
// it asynchronously.
func (s *LicenseSettingsService) SetExpirationMinutes(minutes int) error {
	if minutes <= 0 {
		return apperrors.BadRequest("Invalid expiration", "Expiration minutes must be greater than 0")
	}

	s.mu.Lock()
	s.expirationMinutes = minutes
	s.mu.Unlock()

	go s.persist(minutes)

	return nil
}

func (s *LicenseSettingsService) persist(minutes int) {
	if err := s.settingRepo.Upsert(constants.LicenseExpirationKey, strconv.Itoa(minutes)); err != nil {
		logrus.WithError(err).Error("Failed to persist license expiration setting")
		return
	}
	logrus.WithField("minutes", minutes).Info("Persisted license expiration setting")
}
