package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
)

func setupOrgService(t *testing.T) (*OrganizationService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	svc := NewOrganizationService(
		repository.NewOrganizationRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db
}

func TestSetSlug_AndResolve(t *testing.T) {
	svc, db := setupOrgService(t)

	org := createOrg(t, db, "Acme")
	user := createUser(t, db, "alice@example.com", org.ID)

	updated, err := svc.SetSlug(user, " Acme-Team ")
	require.NoError(t, err)
	require.NotNil(t, updated.Slug)
	require.Equal(t, "acme-team", *updated.Slug)

	// Resolution is case-insensitive because storage is lowercase.
	resolved, err := svc.ResolveSlug("ACME-TEAM")
	require.NoError(t, err)
	require.Equal(t, org.ID, resolved.ID)

	_, err = svc.ResolveSlug("nope-never")
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestSetSlug_Validation(t *testing.T) {
	svc, db := setupOrgService(t)

	org := createOrg(t, db, "Acme")
	user := createUser(t, db, "alice@example.com", org.ID)

	for _, slug := range []string{"ab", "has space", "under_score", ""} {
		_, err := svc.SetSlug(user, slug)
		require.ErrorIs(t, err, ErrInvalidSlug, slug)
	}
}

func TestSetSlug_UniquenessAtWriteTime(t *testing.T) {
	svc, db := setupOrgService(t)

	orgA := createOrg(t, db, "Org A")
	orgB := createOrg(t, db, "Org B")
	alice := createUser(t, db, "alice@example.com", orgA.ID)
	bob := createUser(t, db, "bob@example.com", orgB.ID)

	_, err := svc.SetSlug(alice, "shared-name")
	require.NoError(t, err)

	_, err = svc.SetSlug(bob, "shared-name")
	require.ErrorIs(t, err, ErrSlugTaken)

	// Different case is still the same slug.
	_, err = svc.SetSlug(bob, "Shared-Name")
	require.ErrorIs(t, err, ErrSlugTaken)

	// Re-setting your own slug is idempotent.
	again, err := svc.SetSlug(alice, "shared-name")
	require.NoError(t, err)
	require.Equal(t, orgA.ID, again.ID)
}

func TestCheckSlug(t *testing.T) {
	svc, db := setupOrgService(t)

	org := createOrg(t, db, "Acme")
	user := createUser(t, db, "alice@example.com", org.ID)

	available, err := svc.CheckSlug("fresh-slug")
	require.NoError(t, err)
	require.True(t, available)

	_, err = svc.SetSlug(user, "fresh-slug")
	require.NoError(t, err)

	available, err = svc.CheckSlug("fresh-slug")
	require.NoError(t, err)
	require.False(t, available)

	_, err = svc.CheckSlug("x")
	require.ErrorIs(t, err, ErrInvalidSlug)
}

func TestGetOrganization_AssignsGeneratedSlug(t *testing.T) {
	svc, db := setupOrgService(t)

	org := createOrg(t, db, "Acme")
	user := createUser(t, db, "alice@example.com", org.ID)

	got, err := svc.GetOrganization(user)
	require.NoError(t, err)
	require.NotNil(t, got.Slug)
	require.Contains(t, *got.Slug, "org-")

	// The generated slug resolves and stays stable.
	resolved, err := svc.ResolveSlug(*got.Slug)
	require.NoError(t, err)
	require.Equal(t, org.ID, resolved.ID)

	second, err := svc.GetOrganization(user)
	require.NoError(t, err)
	require.Equal(t, *got.Slug, *second.Slug)
}

func TestRemoveMember(t *testing.T) {
	svc, db := setupOrgService(t)

	org := createOrg(t, db, "Acme")
	alice := createUser(t, db, "alice@example.com", org.ID)
	bob := createUser(t, db, "bob@example.com", org.ID)

	other := createOrg(t, db, "Other")
	stranger := createUser(t, db, "stranger@example.com", other.ID)

	require.ErrorIs(t, svc.RemoveMember(alice, alice.ID), ErrCannotRemoveSelf)
	require.ErrorIs(t, svc.RemoveMember(alice, stranger.ID), ErrMemberNotFound)
	require.ErrorIs(t, svc.RemoveMember(alice, 99999), ErrMemberNotFound)

	require.NoError(t, svc.RemoveMember(alice, bob.ID))

	var moved models.User
	require.NoError(t, db.First(&moved, bob.ID).Error)
	require.NotEqual(t, org.ID, moved.OrganizationID)

	var defaultOrg models.Organization
	require.NoError(t, db.First(&defaultOrg, moved.OrganizationID).Error)
	require.True(t, defaultOrg.IsDefault)

	// Alice is now alone and cannot be removed by anyone.
	members, err := svc.ListMembers(alice)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestRemoveMember_LastMemberBlocked(t *testing.T) {
	svc, db := setupOrgService(t)

	org := createOrg(t, db, "Shrinking")
	alice := createUser(t, db, "alice@example.com", org.ID)
	bob := createUser(t, db, "bob@example.com", org.ID)

	// Alice leaves for another org but keeps acting on a stale view of her
	// membership. Removing the now-last member is refused.
	elsewhere := createOrg(t, db, "Elsewhere")
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", alice.ID).
		Update("organization_id", elsewhere.ID).Error)

	require.ErrorIs(t, svc.RemoveMember(alice, bob.ID), ErrLastMember)

	var stillThere models.User
	require.NoError(t, db.First(&stillThere, bob.ID).Error)
	require.Equal(t, org.ID, stillThere.OrganizationID)
}
