package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orgstack/org-license-manager/internal/apperrors"
	"github.com/orgstack/org-license-manager/internal/constants"
	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/utils"
)

func TestInvitationService_Create(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, owner)

	invitation, err := env.invitations.Create(org.ID, " Invitee@Example.COM ", models.RoleMember, owner)
	require.NoError(t, err)
	require.Equal(t, "invitee@example.com", invitation.Email)
	require.NotEmpty(t, invitation.Token)
	require.Equal(t, models.RoleMember, invitation.Role)
	require.NotNil(t, invitation.InvitedByUserID)
	require.Equal(t, owner.ID, *invitation.InvitedByUserID)

	wantExpiry := time.Now().UTC().AddDate(0, 0, constants.InvitationExpirationDays)
	require.WithinDuration(t, wantExpiry, invitation.ExpiresAt, 5*time.Second)

	// The notification is handed off asynchronously.
	require.Eventually(t, func() bool {
		return len(env.emails.sentTo()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInvitationService_CreateRejectsDuplicates(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrg(t, owner)
	env.addMember(t, org, member, models.RoleMember)

	// Existing members cannot be invited again.
	_, err := env.invitations.Create(org.ID, "MEMBER@example.com", models.RoleMember, owner)
	require.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	// A second pending invitation for the same email is rejected.
	_, err = env.invitations.Create(org.ID, "new@example.com", models.RoleMember, owner)
	require.NoError(t, err)
	_, err = env.invitations.Create(org.ID, "new@example.com", models.RoleAdmin, owner)
	require.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}

func TestInvitationService_CreatePermissions(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	admin := env.createUser(t, "admin@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrg(t, owner)
	env.addMember(t, org, admin, models.RoleAdmin)
	env.addMember(t, org, member, models.RoleMember)

	_, err := env.invitations.Create(org.ID, "a@example.com", models.RoleMember, member)
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// Admins can invite, but not as owner.
	_, err = env.invitations.Create(org.ID, "b@example.com", models.RoleOwner, admin)
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	_, err = env.invitations.Create(org.ID, "c@example.com", models.RoleAdmin, admin)
	require.NoError(t, err)

	_, err = env.invitations.Create(org.ID, "d@example.com", models.RoleOwner, owner)
	require.NoError(t, err)
}

func TestInvitationService_Accept(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, owner)

	invitation, err := env.invitations.Create(org.ID, "invitee@example.com", models.RoleAdmin, owner)
	require.NoError(t, err)

	invitee := env.createUser(t, "invitee@example.com")
	membership, err := env.invitations.Accept(invitation.Token, invitee)
	require.NoError(t, err)
	require.Equal(t, org.ID, membership.OrganizationID)
	require.Equal(t, models.RoleAdmin, membership.Role)
	require.Equal(t, org.Name, membership.Organization.Name)

	// The invitation is burned: a second redemption finds nothing.
	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestInvitationService_AcceptUnknownToken(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "user@example.com")

	_, err := env.invitations.Accept("no-such-token", user)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestInvitationService_AcceptExpiredBurnsInvitation(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, owner)

	invitation, err := env.invitations.Create(org.ID, "invitee@example.com", models.RoleMember, owner)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.Invitation{}).
		Where("id = ?", invitation.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error)

	invitee := env.createUser(t, "invitee@example.com")
	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	// The row is gone: retrying reports not-found now.
	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestInvitationService_AcceptEmailMismatchKeepsInvitation(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, owner)

	invitation, err := env.invitations.Create(org.ID, "invitee@example.com", models.RoleMember, owner)
	require.NoError(t, err)

	stranger := env.createUser(t, "stranger@example.com")
	_, err = env.invitations.Accept(invitation.Token, stranger)
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// The rightful recipient can still redeem it.
	invitee := env.createUser(t, "invitee@example.com")
	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.NoError(t, err)
}

func TestInvitationService_AcceptEmailComparisonIsCaseInsensitive(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, owner)

	invitation, err := env.invitations.Create(org.ID, "invitee@example.com", models.RoleMember, owner)
	require.NoError(t, err)

	invitee := env.createUser(t, "Invitee@Example.com")
	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.NoError(t, err)
}

func TestInvitationService_AcceptExistingMemberBurnsInvitation(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, owner)

	invitation, err := env.invitations.Create(org.ID, "invitee@example.com", models.RoleMember, owner)
	require.NoError(t, err)

	invitee := env.createUser(t, "invitee@example.com")
	env.addMember(t, org, invitee, models.RoleMember)

	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestInvitationService_CancelAndList(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrg(t, owner)
	env.addMember(t, org, member, models.RoleMember)

	invitation, err := env.invitations.Create(org.ID, "invitee@example.com", models.RoleMember, owner)
	require.NoError(t, err)

	// Plain members cannot see or cancel invitations.
	_, err = env.invitations.GetAllPaged(org.ID, member, utils.PaginationParams{Page: 1, PageSize: 10})
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	err = env.invitations.Cancel(org.ID, invitation.ID, member)
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	page, err := env.invitations.GetAllPaged(org.ID, owner, utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	require.NoError(t, env.invitations.Cancel(org.ID, invitation.ID, owner))

	page, err = env.invitations.GetAllPaged(org.ID, owner, utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	// A cancelled invitation cannot be redeemed.
	invitee := env.createUser(t, "invitee@example.com")
	_, err = env.invitations.Accept(invitation.Token, invitee)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
