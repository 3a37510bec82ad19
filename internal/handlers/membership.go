package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/auth"
	"github.com/orgstack/org-license-manager/internal/dto"
	"github.com/orgstack/org-license-manager/internal/middleware"
	"github.com/orgstack/org-license-manager/internal/services"
)

// MembershipHandler serves the caller's own memberships and the invitation
// acceptance flow, including the browser-facing acceptance link.
type MembershipHandler struct {
	memberships *services.MembershipService
	invitations *services.InvitationService
	users       *services.UserService
	tokens      *auth.TokenService
}

func NewMembershipHandler(
	memberships *services.MembershipService,
	invitations *services.InvitationService,
	users *services.UserService,
	tokens *auth.TokenService,
) *MembershipHandler {
	return &MembershipHandler{
		memberships: memberships,
		invitations: invitations,
		users:       users,
		tokens:      tokens,
	}
}

// ListMyOrganizations returns the caller's memberships, most recent first.
func (h *MembershipHandler) ListMyOrganizations(c *gin.Context) {
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

	out := make([]dto.UserOrganizationDTO, len(members))
	for i, member := range members {
		out[i] = dto.ToUserOrganizationDTO(member)
	}

	c.JSON(http.StatusOK, out)
}

// GetMyOrganization returns the caller's membership in one organization.
func (h *MembershipHandler) GetMyOrganization(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	member, err := h.memberships.GetMyOrganization(orgID, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserOrganizationDTO(*member))
}

// LeaveOrganization removes the caller from an organization. The last owner
// cannot leave.
func (h *MembershipHandler) LeaveOrganization(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.memberships.Leave(orgID, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AcceptInvitation redeems an invitation token for the caller.
func (h *MembershipHandler) AcceptInvitation(c *gin.Context) {
	user, err := middleware.CurrentUser(c, h.users)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	type AcceptRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, invalidBody())
		return
	}

	member, err := h.invitations.Accept(req.Token, user)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserOrganizationDTO(*member))
}

var acceptPageTemplate = template.Must(template.New("accept").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

type acceptPage struct {
	Title   string
	Message string
}

// AcceptInvitationLink is the browser-facing acceptance flow. It never
// returns the JSON error envelope: every outcome renders a small HTML page.
func (h *MembershipHandler) AcceptInvitationLink(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		h.renderAcceptPage(c, http.StatusNotFound, acceptPage{
			Title:   "Invitation not found",
			Message: "The invitation link is incomplete. Check the link in your email and try again.",
		})
		return
	}

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		h.renderAcceptPage(c, http.StatusUnauthorized, acceptPage{
			Title:   "Sign in required",
			Message: "Sign in with the invited email address, then open this link again.",
		})
		return
	}
	claims, err := h.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		h.renderAcceptPage(c, http.StatusUnauthorized, acceptPage{
			Title:   "Sign in required",
			Message: "Your session has expired. Sign in again, then open this link again.",
		})
		return
	}

	user, err := h.users.GetOrCreate(claims.ExternalID, claims.Email, claims.Role)
	if err != nil {
		h.renderAcceptPage(c, http.StatusInternalServerError, acceptPage{
			Title:   "Something went wrong",
			Message: "The invitation could not be processed. Try again later.",
		})
		return
	}

	member, err := h.invitations.Accept(token, user)
	if err != nil {
		h.renderAcceptPage(c, acceptErrorStatus(err), acceptErrorPage(err))
		return
	}

	h.renderAcceptPage(c, http.StatusOK, acceptPage{
		Title:   "Welcome to " + member.Organization.Name,
		Message: "You joined as " + string(member.Role) + ". You can close this page.",
	})
}

func (h *MembershipHandler) renderAcceptPage(c *gin.Context, status int, page acceptPage) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := acceptPageTemplate.Execute(c.Writer, page); err != nil {
		_ = c.Error(err)
	}
}

func acceptErrorStatus(err error) int {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

func acceptErrorPage(err error) acceptPage {
	appErr, ok := apperrors.As(err)
	if !ok {
		return acceptPage{
			Title:   "Something went wrong",
			Message: "The invitation could not be processed. Try again later.",
		}
	}

	switch appErr.Kind {
	case apperrors.KindNotFound:
		return acceptPage{
			Title:   "Invitation not found",
			Message: "This invitation does not exist or has already been used.",
		}
	case apperrors.KindForbidden:
		return acceptPage{
			Title:   "Wrong account",
			Message: "This invitation was sent to a different email address. Sign in with the invited account and try again.",
		}
	default:
		return acceptPage{
			Title:   "Invitation cannot be accepted",
			Message: appErr.Detail,
		}
	}
}
