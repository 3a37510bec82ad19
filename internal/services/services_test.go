package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/repository"
)

type serviceTestEnv struct {
	db *gorm.DB

	users       *UserService
	orgs        *OrganizationService
	memberships *MembershipService
	invitations *InvitationService
	licenses    *LicenseService
	settings    *LicenseSettingsService

	settingRepo repository.SettingRepository
	emails      *captureEmailService
}

// captureEmailService records invitation sends so tests can assert on the
// notification without real delivery.
type captureEmailService struct {
	mu   sync.Mutex
	sent []string
}

func (s *captureEmailService) SendInvitationEmail(email, organizationName, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return nil
}

func (s *captureEmailService) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.License{},
		&models.Invitation{},
		&models.AppSetting{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	emails := &captureEmailService{}
	settings := NewLicenseSettingsService(settingRepo)

	return &serviceTestEnv{
		db:          db,
		users:       NewUserService(userRepo),
		orgs:        NewOrganizationService(orgRepo, licenseRepo),
		memberships: NewMembershipService(orgRepo),
		invitations: NewInvitationService(invitationRepo, orgRepo, emails),
		licenses:    NewLicenseService(licenseRepo, orgRepo, settings),
		settings:    settings,
		settingRepo: settingRepo,
		emails:      emails,
	}
}

func (env *serviceTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := env.users.GetOrCreate(email, email, "User")
	require.NoError(t, err)
	return user
}

func (env *serviceTestEnv) createOrg(t *testing.T, owner *models.User) *models.Organization {
	t.Helper()
	org, err := env.orgs.Create("Acme "+owner.Email, "test org", owner)
	require.NoError(t, err)
	return org
}

func (env *serviceTestEnv) addMember(t *testing.T, org *models.Organization, user *models.User, role models.OrganizationRole) {
	t.Helper()
	member := &models.OrganizationMembership{
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           role,
		JoinedAt:       time.Now().UTC(),
	}
	require.NoError(t, env.db.Create(member).Error)
}
