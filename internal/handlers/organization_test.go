package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgstack/org-license-manager/internal/dto"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/utils"
)

func TestOrganizationHandler_Create(t *testing.T) {
	env := setupHandlerTestEnv(t)
	_, token := env.loginAs(t, "owner@example.com", "User")

	w := env.request(t, http.MethodPost, "/api/organizations", token, map[string]string{
		"name":        "Acme Corp",
		"description": "builds anvils",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var org dto.OrganizationDTO
	decodeJSON(t, w, &org)
	require.Equal(t, "Acme Corp", org.Name)
	require.Equal(t, int64(1), org.MemberCount)
}

func TestOrganizationHandler_CreateValidation(t *testing.T) {
	env := setupHandlerTestEnv(t)
	_, token := env.loginAs(t, "owner@example.com", "User")

	w := env.request(t, http.MethodPost, "/api/organizations", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/organizations", token, map[string]string{"name": "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganizationHandler_ListAndGet(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner, token := env.loginAs(t, "owner@example.com", "User")
	org, err := env.orgs.Create("Acme Corp", "", owner)
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/api/organizations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orgs []dto.OrganizationDTO
	decodeJSON(t, w, &orgs)
	require.Len(t, orgs, 1)
	require.Equal(t, org.ID, orgs[0].ID)

	w = env.request(t, http.MethodGet, "/api/organizations/"+org.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.OrganizationDTO
	decodeJSON(t, w, &got)
	require.Equal(t, "Acme Corp", got.Name)

	// Outsiders are rejected.
	_, outsiderToken := env.loginAs(t, "outsider@example.com", "User")
	w = env.request(t, http.MethodGet, "/api/organizations/"+org.ID.String(), outsiderToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Unknown IDs and malformed IDs.
	w = env.request(t, http.MethodGet, "/api/organizations/2fd1b7a8-0000-0000-0000-000000000000", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = env.request(t, http.MethodGet, "/api/organizations/not-a-uuid", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganizationHandler_ListMembers(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner, token := env.loginAs(t, "owner@example.com", "User")
	org, err := env.orgs.Create("Acme Corp", "", owner)
	require.NoError(t, err)

	member, _ := env.loginAs(t, "member@example.com", "User")
	require.NoError(t, env.db.Create(&models.OrganizationMembership{
		OrganizationID: org.ID,
		UserID:         member.ID,
		Role:           models.RoleMember,
	}).Error)

	w := env.request(t, http.MethodGet, "/api/organizations/"+org.ID.String()+"/members?pageSize=1&sortBy=email", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page utils.PagedResult[dto.MemberDTO]
	decodeJSON(t, w, &page)
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(2), page.TotalCount)
	require.True(t, page.HasNextPage)
	require.Equal(t, "member@example.com", page.Items[0].Email)
}

func TestOrganizationHandler_AssignLicenseRoute(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner, token := env.loginAs(t, "owner@example.com", "User")
	org, err := env.orgs.Create("Acme Corp", "", owner)
	require.NoError(t, err)
	license, err := env.licenses.Create(org.ID, false)
	require.NoError(t, err)

	path := "/api/organizations/" + org.ID.String() + "/members/" + owner.ID.String() + "/license"

	w := env.request(t, http.MethodPost, path, token, map[string]string{"licenseId": license.ID.String()})
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err := env.licenses.GetByID(license.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedToUserID)
	require.Equal(t, owner.ID, *got.AssignedToUserID)

	w = env.request(t, http.MethodPost, path, token, map[string]string{"licenseId": "not-a-uuid"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err = env.licenses.GetByID(license.ID)
	require.NoError(t, err)
	require.Nil(t, got.AssignedToUserID)
}

func TestOrganizationHandler_InvitationRoutes(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner, token := env.loginAs(t, "owner@example.com", "User")
	org, err := env.orgs.Create("Acme Corp", "", owner)
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/organizations/"+org.ID.String()+"/invitations", token, map[string]string{
		"email": "invitee@example.com",
		"role":  "member",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var invitation dto.InvitationDTO
	decodeJSON(t, w, &invitation)
	require.Equal(t, "invitee@example.com", invitation.Email)
	require.Equal(t, "Acme Corp", invitation.OrganizationName)
	require.NotEmpty(t, invitation.Token)

	w = env.request(t, http.MethodGet, "/api/organizations/"+org.ID.String()+"/invitations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page utils.PagedResult[dto.InvitationDTO]
	decodeJSON(t, w, &page)
	require.Len(t, page.Items, 1)

	// An unknown role label fails validation.
	w = env.request(t, http.MethodPost, "/api/organizations/"+org.ID.String()+"/invitations", token, map[string]string{
		"email": "second@example.com",
		"role":  "boss",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
