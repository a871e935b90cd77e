package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "trainer", "player", "parent"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}

	_, err := ParseRole("coach")
	assert.Error(t, err)
	_, err = ParseRole("Admin")
	assert.Error(t, err, "roles are case-sensitive")
}

func TestCanReadUsers(t *testing.T) {
	assert.True(t, CanReadUsers(RoleAdmin, 1).Allowed())
	assert.True(t, CanReadUsers(RoleTrainer, 1).Allowed())

	d := CanReadUsers(RolePlayer, 7)
	require.True(t, d.IsScoped())
	assert.Equal(t, Filter{"id": uint(7)}, d.Filter)

	d = CanReadUsers(RoleParent, 9)
	require.True(t, d.IsScoped())
	assert.Equal(t, Filter{"id": uint(9)}, d.Filter)
}

func TestCanUpdateUser(t *testing.T) {
	assert.True(t, CanUpdateUser(RoleAdmin, 1).Allowed())

	for _, role := range []Role{RoleTrainer, RolePlayer, RoleParent} {
		d := CanUpdateUser(role, 4)
		require.True(t, d.IsScoped(), "role %s updates self only", role)
		assert.Equal(t, Filter{"id": uint(4)}, d.Filter)
	}
}

func TestDeletePredicatesAreAdminOnly(t *testing.T) {
	for _, role := range allRoles {
		wantAllow := role == RoleAdmin
		assert.Equal(t, wantAllow, CanDeleteUser(role).Allowed(), "user delete, role %s", role)
		assert.Equal(t, wantAllow, CanDeleteEvent(role).Allowed(), "event delete, role %s", role)
		assert.Equal(t, wantAllow, CanDeleteAttendance(role).Allowed(), "attendance delete, role %s", role)
	}
}

func TestEventWriteAndLockAreStaffOnly(t *testing.T) {
	for _, role := range allRoles {
		assert.Equal(t, role.IsStaff(), CanWriteEvents(role).Allowed(), "event write, role %s", role)
		assert.Equal(t, role.IsStaff(), CanLockEvents(role).Allowed(), "event lock, role %s", role)
	}
}

func TestCanReadAttendance(t *testing.T) {
	assert.True(t, CanReadAttendance(RoleAdmin, 1).Allowed())
	assert.True(t, CanReadAttendance(RoleTrainer, 1).Allowed())

	d := CanReadAttendance(RolePlayer, 12)
	require.True(t, d.IsScoped())
	assert.Equal(t, Filter{"player_id": uint(12)}, d.Filter)

	// Parents read broadly; the child filter is applied after the fetch.
	assert.True(t, CanReadAttendance(RoleParent, 3).Allowed())
}

func TestCanUpdateAttendance(t *testing.T) {
	assert.True(t, CanUpdateAttendance(RoleAdmin, 1).Allowed())
	assert.True(t, CanUpdateAttendance(RoleTrainer, 1).Allowed())

	d := CanUpdateAttendance(RolePlayer, 12)
	require.True(t, d.IsScoped())
	assert.Equal(t, Filter{"player_id": uint(12)}, d.Filter)

	assert.True(t, CanUpdateAttendance(RoleParent, 3).Allowed())
}

func TestCheckParentChild(t *testing.T) {
	children := []uint{4, 8}
	assert.NoError(t, CheckParentChild(children, 4))
	assert.NoError(t, CheckParentChild(children, 8))
	assert.ErrorIs(t, CheckParentChild(children, 5), ErrRelationshipViolation)
	assert.ErrorIs(t, CheckParentChild(nil, 4), ErrRelationshipViolation)
}
