package rbac_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitly/entitlements/pkg/rbac"
)

func TestEvaluator_IsAtLeast(t *testing.T) {
	t.Parallel()

	ev := rbac.Default()

	ok, err := ev.IsAtLeast(rbac.RoleAdmin, rbac.RoleMember)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.IsAtLeast(rbac.RoleMember, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ev.IsAtLeast(rbac.RoleViewer, rbac.RoleViewer)
	require.NoError(t, err)
	assert.True(t, ok)

	roles := ev.Roles()
	assert.Equal(t, []rbac.Role{rbac.RoleViewer, rbac.RoleMember, rbac.RoleAdmin, rbac.RoleOwner}, roles)
	for i, lower := range roles {
		for _, higher := range roles[i:] {
			ok, err := ev.IsAtLeast(higher, lower)
			require.NoError(t, err)
			assert.True(t, ok, "%s >= %s", higher, lower)
		}
	}
}

func TestEvaluator_UnknownIDs(t *testing.T) {
	t.Parallel()

	ev := rbac.Default()

	_, err := ev.IsAtLeast("superuser", rbac.RoleViewer)
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
	_, err = ev.IsAtLeast(rbac.RoleOwner, "adnim")
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
	_, err = ev.HasRole(rbac.RoleOwner, "adnim")
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
	_, err = ev.HasAnyRole(rbac.RoleOwner, rbac.RoleAdmin, "adnim")
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)

	_, err = ev.HasPermission(rbac.RoleOwner, "jobs.raed")
	assert.ErrorIs(t, err, rbac.ErrUnknownPermission, "owner wildcard does not hide a typo")
	_, err = ev.HasAnyPermission(rbac.RoleViewer, rbac.PermJobsRead, "jobs.*")
	assert.ErrorIs(t, err, rbac.ErrUnknownPermission, "checks take concrete permissions")
	_, err = ev.HasAllPermissions("guest", rbac.PermJobsRead)
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)

	_, err = ev.ParseRole("root")
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
	r, err := ev.ParseRole("member")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleMember, r)
}

func TestEvaluator_Roles(t *testing.T) {
	t.Parallel()

	ev := rbac.Default()

	ok, err := ev.HasRole(rbac.RoleAdmin, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.HasRole(rbac.RoleOwner, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok, "exact match only")

	ok, err = ev.HasAnyRole(rbac.RoleMember, rbac.RoleAdmin, rbac.RoleMember)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.HasAnyRole(rbac.RoleMember)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluator_Permissions(t *testing.T) {
	t.Parallel()

	ev := rbac.Default()
	tests := []struct {
		role rbac.Role
		perm rbac.Permission
		want bool
	}{
		{rbac.RoleViewer, rbac.PermJobsRead, true},
		{rbac.RoleViewer, rbac.PermJobsWrite, false},
		{rbac.RoleMember, rbac.PermJobsRead, true}, // inherited
		{rbac.RoleMember, rbac.PermCandidatesImport, true},
		{rbac.RoleMember, rbac.PermJobsPublish, false},
		{rbac.RoleAdmin, rbac.PermJobsPublish, true}, // wildcard
		{rbac.RoleAdmin, rbac.PermCandidatesDelete, true},
		{rbac.RoleAdmin, rbac.PermBillingManage, false},
		{rbac.RoleOwner, rbac.PermBillingManage, true},
		{rbac.RoleOwner, rbac.PermSettingsWrite, true},
	}
	for _, tt := range tests {
		got, err := ev.HasPermission(tt.role, tt.perm)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.role, tt.perm)
	}

	ok, err := ev.HasAnyPermission(rbac.RoleViewer, rbac.PermBillingManage, rbac.PermJobsRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.HasAnyPermission(rbac.RoleViewer)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ev.HasAllPermissions(rbac.RoleMember, rbac.PermJobsRead, rbac.PermJobsWrite)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.HasAllPermissions(rbac.RoleMember, rbac.PermJobsRead, rbac.PermJobsDelete)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ev.HasAllPermissions(rbac.RoleViewer)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, ev.Permissions(), len(rbac.DefaultPermissions()))
}

func TestNewEvaluator_Validation(t *testing.T) {
	t.Parallel()

	perms := []rbac.Permission{"jobs.read", "jobs.write"}
	tests := []struct {
		name    string
		defs    []rbac.Definition
		perms   []rbac.Permission
		wantErr error
	}{
		{
			name:    "duplicate rank",
			defs:    []rbac.Definition{{Role: "a", Rank: 1}, {Role: "b", Rank: 1}},
			perms:   perms,
			wantErr: rbac.ErrInvalidDefinition,
		},
		{
			name:    "duplicate role",
			defs:    []rbac.Definition{{Role: "a", Rank: 1}, {Role: "a", Rank: 2}},
			perms:   perms,
			wantErr: rbac.ErrInvalidDefinition,
		},
		{
			name:    "undeclared permission",
			defs:    []rbac.Definition{{Role: "a", Rank: 1, Permissions: []rbac.Permission{"jobs.delete"}}},
			perms:   perms,
			wantErr: rbac.ErrUnknownPermission,
		},
		{
			name:    "wildcard matching nothing",
			defs:    []rbac.Definition{{Role: "a", Rank: 1, Permissions: []rbac.Permission{"billing.*"}}},
			perms:   perms,
			wantErr: rbac.ErrUnknownPermission,
		},
		{
			name:    "unknown parent",
			defs:    []rbac.Definition{{Role: "a", Rank: 1, Inherits: []rbac.Role{"ghost"}}},
			perms:   perms,
			wantErr: rbac.ErrUnknownRole,
		},
		{
			name: "cycle",
			defs: []rbac.Definition{
				{Role: "a", Rank: 1, Inherits: []rbac.Role{"c"}},
				{Role: "b", Rank: 2, Inherits: []rbac.Role{"a"}},
				{Role: "c", Rank: 3, Inherits: []rbac.Role{"b"}},
			},
			perms:   perms,
			wantErr: rbac.ErrCircularInheritance,
		},
		{
			name:    "wildcard declared as permission",
			defs:    []rbac.Definition{{Role: "a", Rank: 1}},
			perms:   []rbac.Permission{"jobs.*"},
			wantErr: rbac.ErrInvalidDefinition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := rbac.NewEvaluator(tt.defs, tt.perms)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("diamond inheritance is not a cycle", func(t *testing.T) {
		t.Parallel()

		ev, err := rbac.NewEvaluator([]rbac.Definition{
			{Role: "base", Rank: 1, Permissions: []rbac.Permission{"jobs.read"}},
			{Role: "left", Rank: 2, Inherits: []rbac.Role{"base"}},
			{Role: "right", Rank: 3, Inherits: []rbac.Role{"base"}},
			{Role: "top", Rank: 4, Inherits: []rbac.Role{"left", "right"}, Permissions: []rbac.Permission{"jobs.write"}},
		}, perms)
		require.NoError(t, err)

		ok, err := ev.HasAllPermissions("top", "jobs.read", "jobs.write")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestEvaluator_ConcurrentReads(t *testing.T) {
	t.Parallel()

	ev := rbac.Default()
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, r := range ev.Roles() {
				_, err := ev.HasPermission(r, rbac.PermJobsRead)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestContext(t *testing.T) {
	t.Parallel()

	_, ok := rbac.RoleFromContext(context.Background())
	assert.False(t, ok)

	_, err := rbac.RequireRoleFromContext(context.Background())
	assert.ErrorIs(t, err, rbac.ErrRoleNotInContext)

	ctx := rbac.WithRole(context.Background(), rbac.RoleAdmin)
	role, err := rbac.RequireRoleFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, role)
}
