package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/authz"
	"github.com/orgstack/org-license-manager/internal/dto"
	"github.com/orgstack/org-license-manager/internal/middleware"
	"github.com/orgstack/org-license-manager/internal/services"
	"github.com/orgstack/org-license-manager/internal/utils"
)

// OrganizationHandler serves the organization routes: the organization
// itself, its members, member license assignment and its invitations.
type OrganizationHandler struct {
	orgs        *services.OrganizationService
	memberships *services.MembershipService
	invitations *services.InvitationService
	users       *services.UserService
}

func NewOrganizationHandler(
	orgs *services.OrganizationService,
	memberships *services.MembershipService,
	invitations *services.InvitationService,
	users *services.UserService,
) *OrganizationHandler {
	return &OrganizationHandler{
		orgs:        orgs,
		memberships: memberships,
		invitations: invitations,
		users:       users,
	}
}

// CreateOrganization creates an organization with the caller as owner.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	type CreateOrgRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}

	org, err := h.orgs.Create(req.Name, req.Description, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(org, 1))
}

// ListOrganizations returns the organizations the caller belongs to.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	members, err := h.memberships.GetMyOrganizations(user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	orgs := make([]dto.OrganizationDTO, len(members))
	for i, member := range members {
		count, err := h.orgs.MemberCount(member.OrganizationID)
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		orgs[i] = dto.ToOrganizationDTO(&member.Organization, count)
	}

	c.JSON(http.StatusOK, orgs)
}

// GetOrganization returns one organization. Members only.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	org, _, err := h.orgs.GetByIDForMember(orgID, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	count, err := h.orgs.MemberCount(orgID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(org, count))
}

// UpdateOrganization updates name and description. Owner or admin only.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	type UpdateOrgRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}

	org, err := h.orgs.Update(orgID, req.Name, req.Description, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	count, err := h.orgs.MemberCount(orgID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(org, count))
}

// DeleteOrganization deletes the organization and everything under it.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.orgs.Delete(orgID, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers returns a page of organization members. Owner or admin only.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	page, err := h.orgs.GetMembersPaged(orgID, user, utils.GetPaginationParams(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.MapPagedResult(page, dto.ToMemberDTO))
}

// GetMember returns one member with their license, if any.
func (h *OrganizationHandler) GetMember(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	member, err := h.orgs.GetMember(orgID, targetUserID, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// UpdateMemberRole changes a member's role. Owner or admin only; demoting
// the last owner is rejected.
func (h *OrganizationHandler) UpdateMemberRole(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	type UpdateRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.orgs.UpdateMemberRole(orgID, targetUserID, role, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMember removes a member and releases their license.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.orgs.RemoveMember(orgID, targetUserID, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignLicense assigns an organization license to a member.
func (h *OrganizationHandler) AssignLicense(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	type AssignLicenseRequest struct {
		LicenseID string `json:"licenseId" binding:"required"`
	}

	var req AssignLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}
	licenseID, err := uuid.Parse(req.LicenseID)
	if err != nil {
		middleware.Fail(c, apperrors.BadRequest("Invalid identifier", "licenseId must be a valid UUID"))
		return
	}

	if err := h.orgs.AssignLicense(orgID, targetUserID, licenseID, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnassignLicense releases a member's license back to the pool.
func (h *OrganizationHandler) UnassignLicense(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.orgs.UnassignLicense(orgID, targetUserID, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListLicenses returns a page of the organization's licenses. Owner or admin
// only.
func (h *OrganizationHandler) ListLicenses(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	page, err := h.orgs.GetLicensesPaged(orgID, user, utils.GetPaginationParams(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.MapPagedResult(page, dto.ToLicenseDTO))
}

// CreateInvitation invites an email address to the organization.
func (h *OrganizationHandler) CreateInvitation(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	type CreateInvitationRequest struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	invitation, err := h.invitations.Create(orgID, req.Email, role, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(*invitation))
}

// ListInvitations returns a page of pending invitations. Owner or admin only.
func (h *OrganizationHandler) ListInvitations(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	page, err := h.invitations.GetAllPaged(orgID, user, utils.GetPaginationParams(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.MapPagedResult(page, dto.ToInvitationDTO))
}

// GetInvitation returns one pending invitation. Owner or admin only.
func (h *OrganizationHandler) GetInvitation(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	invitationID, ok := parseUUIDParam(c, "invitationId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	invitation, err := h.invitations.GetByID(orgID, invitationID, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

// CancelInvitation withdraws a pending invitation. Owner or admin only.
func (h *OrganizationHandler) CancelInvitation(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	invitationID, ok := parseUUIDParam(c, "invitationId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.invitations.Cancel(orgID, invitationID, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func invalidBody() error {
	return apperrors.BadRequest("Invalid request", "The request body is missing or malformed")
}
