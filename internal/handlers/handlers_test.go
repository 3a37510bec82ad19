package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/auth"
	"github.com/orgstack/org-license-manager/internal/middleware"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/repository"
	"github.com/orgstack/org-license-manager/internal/services"
)

type handlerTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenService

	users       *services.UserService
	orgs        *services.OrganizationService
	invitations *services.InvitationService
	licenses    *services.LicenseService
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.License{},
		&models.Invitation{},
		&models.AppSetting{},
	))

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

	tokens := auth.NewTokenService("test-secret", "test-issuer", 60)
	settings := services.NewLicenseSettingsService(settingRepo)

	userService := services.NewUserService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, licenseRepo)
	membershipService := services.NewMembershipService(orgRepo)
	invitationService := services.NewInvitationService(invitationRepo, orgRepo, services.NewLogEmailService("http://localhost:8080"))
	licenseService := services.NewLicenseService(licenseRepo, orgRepo, settings)

	authHandler := NewAuthHandler(tokens, userService)
	orgHandler := NewOrganizationHandler(orgService, membershipService, invitationService, userService)
	membershipHandler := NewMembershipHandler(membershipService, invitationService, userService, tokens)
	licenseHandler := NewLicenseHandler(licenseService, settings)

	r := gin.New()
	r.Use(middleware.ErrorHandler())

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/claims", middleware.RequireAuth(tokens), authHandler.Claims)

		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth(tokens))
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.GET("/:id", orgHandler.GetOrganization)
			orgs.PUT("/:id", orgHandler.UpdateOrganization)
			orgs.DELETE("/:id", orgHandler.DeleteOrganization)
			orgs.GET("/:id/members", orgHandler.ListMembers)
			orgs.GET("/:id/members/:userId", orgHandler.GetMember)
			orgs.PUT("/:id/members/:userId/role", orgHandler.UpdateMemberRole)
			orgs.DELETE("/:id/members/:userId", orgHandler.RemoveMember)
			orgs.POST("/:id/members/:userId/license", orgHandler.AssignLicense)
			orgs.DELETE("/:id/members/:userId/license", orgHandler.UnassignLicense)
			orgs.GET("/:id/licenses", orgHandler.ListLicenses)
			orgs.POST("/:id/invitations", orgHandler.CreateInvitation)
			orgs.GET("/:id/invitations", orgHandler.ListInvitations)
		}

		memberships := api.Group("/memberships")
		{
			memberships.GET("/invitations/accept", membershipHandler.AcceptInvitationLink)

			authed := memberships.Group("")
			authed.Use(middleware.RequireAuth(tokens))
			{
				authed.GET("", membershipHandler.ListMyOrganizations)
				authed.GET("/:orgId", membershipHandler.GetMyOrganization)
				authed.DELETE("/:orgId", membershipHandler.LeaveOrganization)
				authed.POST("/invitations/accept", membershipHandler.AcceptInvitation)
			}
		}

		admin := api.Group("/admin/licenses")
		admin.Use(middleware.RequireAuth(tokens), middleware.RequireAdmin())
		{
			admin.POST("/organizations/:orgId", licenseHandler.CreateLicense)
			admin.GET("", licenseHandler.ListLicenses)
			admin.GET("/settings", licenseHandler.GetSettings)
			admin.PUT("/settings", licenseHandler.UpdateSettings)
			admin.GET("/:id", licenseHandler.GetLicense)
			admin.PUT("/:id", licenseHandler.UpdateLicense)
			admin.DELETE("/:id", licenseHandler.CancelLicense)
		}
	}

	return &handlerTestEnv{
		db:          db,
		router:      r,
		tokens:      tokens,
		users:       userService,
		orgs:        orgService,
		invitations: invitationService,
		licenses:    licenseService,
	}
}

// loginAs resolves the user record and returns a bearer token for them.
func (env *handlerTestEnv) loginAs(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	user, err := env.users.GetOrCreate(email, email, role)
	require.NoError(t, err)
	token, _, err := env.tokens.Issue(email, email, role)
	require.NoError(t, err)
	return user, token
}

func (env *handlerTestEnv) request(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
