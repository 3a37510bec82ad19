package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/orgstack/org-license-manager/internal/auth"
	"github.com/orgstack/org-license-manager/internal/background"
	"github.com/orgstack/org-license-manager/internal/config"
	"github.com/orgstack/org-license-manager/internal/database"
	"github.com/orgstack/org-license-manager/internal/handlers"
	"github.com/orgstack/org-license-manager/internal/metrics"
	"github.com/orgstack/org-license-manager/internal/middleware"
	"github.com/orgstack/org-license-manager/internal/repository"
	"github.com/orgstack/org-license-manager/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.GinMode == "release" {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}
	db := database.GetDB()
	if err := database.AddIndexes(db); err != nil {
		logrus.WithError(err).Fatal("Failed to create indexes")
	}

	metrics.Init()

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpirationMinutes)
	emailService := services.NewLogEmailService(cfg.PublicBaseURL)

	settingsService := services.NewLicenseSettingsService(settingRepo)
	settingsService.Initialize()

	userService := services.NewUserService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, licenseRepo)
	membershipService := services.NewMembershipService(orgRepo)
	invitationService := services.NewInvitationService(invitationRepo, orgRepo, emailService)
	licenseService := services.NewLicenseService(licenseRepo, orgRepo, settingsService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := background.NewRenewalSweeper(licenseService, cfg.RenewalCheckInterval)
	go sweeper.Run(ctx)

	authHandler := handlers.NewAuthHandler(tokens, userService)
	orgHandler := handlers.NewOrganizationHandler(orgService, membershipService, invitationService, userService)
	membershipHandler := handlers.NewMembershipHandler(membershipService, invitationService, userService, tokens)
	licenseHandler := handlers.NewLicenseHandler(licenseService, settingsService)

	router := newRouter(tokens, authHandler, orgHandler, membershipHandler, licenseHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logrus.WithField("port", cfg.ServerPort).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Forced shutdown")
	}
}

func newRouter(
	tokens *auth.TokenService,
	authHandler *handlers.AuthHandler,
	orgHandler *handlers.OrganizationHandler,
	membershipHandler *handlers.MembershipHandler,
	licenseHandler *handlers.LicenseHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(metrics.Instrument())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/claims", middleware.RequireAuth(tokens), authHandler.Claims)
		}

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
			orgs.GET("/:id/invitations/:invitationId", orgHandler.GetInvitation)
			orgs.DELETE("/:id/invitations/:invitationId", orgHandler.CancelInvitation)
		}

		memberships := api.Group("/memberships")
		{
			// The acceptance link is opened from an email; it renders HTML and
			// handles authentication itself.
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

	return r
}
