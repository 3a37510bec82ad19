package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orgstack/org-license-manager/internal/dto"
	"github.com/orgstack/org-license-manager/internal/middleware"
	"github.com/orgstack/org-license-manager/internal/services"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// LicenseHandler serves the administrative license routes. Every route here
// sits behind the Admin role claim.
type LicenseHandler struct {
	licenses *services.LicenseService
	settings *services.LicenseSettingsService
}

func NewLicenseHandler(licenses *services.LicenseService, settings *services.LicenseSettingsService) *LicenseHandler {
	return &LicenseHandler{licenses: licenses, settings: settings}
}

// CreateLicense issues a license for an organization. The expiration is
// taken from the current expiration setting.
func (h *LicenseHandler) CreateLicense(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}

	type CreateLicenseRequest struct {
		AutoRenewal bool `json:"autoRenewal"`
	}

	var req CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}

	license, err := h.licenses.Create(orgID, req.AutoRenewal)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLicenseDTO(*license))
}

// ListLicenses returns a page of all licenses across organizations.
func (h *LicenseHandler) ListLicenses(c *gin.Context) {
	page, err := h.licenses.GetAllPaged(utils.GetPaginationParams(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.MapPagedResult(page, dto.ToLicenseDTO))
}

// GetLicense returns one license.
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	licenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	license, err := h.licenses.GetByID(licenseID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLicenseDTO(*license))
}

// UpdateLicense changes the expiration date and/or auto-renewal flag.
func (h *LicenseHandler) UpdateLicense(c *gin.Context) {
	licenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateLicenseRequest struct {
		ExpiresAt   *time.Time `json:"expiresAt"`
		AutoRenewal *bool      `json:"autoRenewal"`
	}

	var req UpdateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}

	license, err := h.licenses.Update(licenseID, req.ExpiresAt, req.AutoRenewal)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLicenseDTO(*license))
}

// CancelLicense deactivates a license for good.
func (h *LicenseHandler) CancelLicense(c *gin.Context) {
	licenseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.licenses.Cancel(licenseID); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSettings returns the license expiration setting.
func (h *LicenseHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, dto.LicenseSettingsDTO{
		ExpirationMinutes: h.settings.ExpirationMinutes(),
	})
}

// UpdateSettings changes the license expiration setting for new and renewed
// licenses.
func (h *LicenseHandler) UpdateSettings(c *gin.Context) {
	var req dto.LicenseSettingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}

	if err := h.settings.SetExpirationMinutes(req.ExpirationMinutes); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LicenseSettingsDTO{
		ExpirationMinutes: h.settings.ExpirationMinutes(),
	})
}
