package identity

import (
	"strings"
	"testing"

	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRole(t *testing.T, perms ...string) *Role {
	role, err := NewRole("Test Role", "For tests", perms)
	require.NoError(t, err)
	require.NotNil(t, role)
	return role
}

func TestNewRole(t *testing.T) {
	tests := []struct {
		name        string
		roleName    string
		perms       []string
		wantErr     bool
		errContains string
		wantPerms   []string
	}{
		{
			name:      "valid role",
			roleName:  "Editor",
			perms:     []string{"product:update", "product:read"},
			wantPerms: []string{"product:read", "product:update"},
		},
		{
			name:      "empty permission set is allowed",
			roleName:  "Nobody",
			perms:     nil,
			wantPerms: []string{},
		},
		{
			name:      "duplicates collapse",
			roleName:  "Dup",
			perms:     []string{"role:read", "role:read", " role:read "},
			wantPerms: []string{"role:read"},
		},
		{
			name:      "unknown names are kept",
			roleName:  "Future",
			perms:     []string{"report:export"},
			wantPerms: []string{"report:export"},
		},
		{
			name:        "empty name",
			roleName:    "  ",
			wantErr:     true,
			errContains: "cannot be empty",
		},
		{
			name:        "name too long",
			roleName:    strings.Repeat("r", 101),
			wantErr:     true,
			errContains: "cannot exceed 100",
		},
		{
			name:        "invalid permission reference",
			roleName:    "Broken",
			perms:       []string{"product read"},
			wantErr:     true,
			errContains: "whitespace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := NewRole(tt.roleName, "", tt.perms)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, role)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.roleName), role.Name)
			assert.Equal(t, tt.wantPerms, role.Permissions)
			assert.Equal(t, 1, role.GetVersion())

			events := role.GetDomainEvents()
			require.Len(t, events, 1)
			_, ok := events[0].(*RoleCreatedEvent)
			assert.True(t, ok)
		})
	}
}

func TestRole_Rename(t *testing.T) {
	role := createTestRole(t)

	require.NoError(t, role.Rename("  Renamed "))
	assert.Equal(t, "Renamed", role.Name)
	assert.Equal(t, 2, role.GetVersion())

	err := role.Rename("")
	require.Error(t, err)
	assert.Equal(t, "INVALID_ROLE_NAME", shared.CodeOf(err))
	assert.Equal(t, "Renamed", role.Name)
}

func TestRole_ReplacePermissions(t *testing.T) {
	role := createTestRole(t, "product:read", "product:create")

	require.NoError(t, role.ReplacePermissions([]string{"category:read"}))
	assert.Equal(t, []string{"category:read"}, role.Permissions)
	assert.False(t, role.HasPermission("product:read"))

	require.NoError(t, role.ReplacePermissions(nil))
	assert.Empty(t, role.Permissions)

	err := role.ReplacePermissions([]string{""})
	require.Error(t, err)
	assert.Empty(t, role.Permissions, "failed replace leaves the set untouched")
}

func TestRole_HasPermission(t *testing.T) {
	role := createTestRole(t, "product:read")

	assert.True(t, role.HasPermission("product:read"))
	assert.False(t, role.HasPermission("PRODUCT:READ"))
	assert.False(t, role.HasPermission("product"))
}

func TestRole_PermissionSet(t *testing.T) {
	role := createTestRole(t, "a:read", "b:read")
	set := role.PermissionSet()

	assert.Len(t, set, 2)
	assert.Contains(t, set, "a:read")
	assert.Contains(t, set, "b:read")
}

func TestRole_Events(t *testing.T) {
	role := createTestRole(t)
	role.ClearDomainEvents()

	role.MarkUpdated()
	role.MarkDeleted()

	events := role.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeRoleUpdated, events[0].EventType())
	assert.Equal(t, EventTypeRoleDeleted, events[1].EventType())
	assert.Equal(t, role.ID, events[1].AggregateID())
}
