package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allRoles = []Role{RoleAdmin, RoleTrainer, RolePlayer, RoleParent}
var allStatuses = []string{StatusPending, StatusAttending, StatusDeclined, StatusAttended, StatusExcused}

func TestCheckStatusChange_PlayerAndParentLimitedToRSVP(t *testing.T) {
	for _, role := range []Role{RolePlayer, RoleParent} {
		for _, target := range allStatuses {
			err := CheckStatusChange(role, target, false)
			if target == StatusAttending || target == StatusDeclined {
				assert.NoError(t, err, "%s should be able to set %s", role, target)
			} else {
				assert.ErrorIs(t, err, ErrForbiddenTransition, "%s must not set %s", role, target)
			}
		}
	}
}

func TestCheckStatusChange_StaffMaySetAnyStatus(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleTrainer} {
		for _, target := range allStatuses {
			assert.NoError(t, CheckStatusChange(role, target, false), "%s should set %s", role, target)
		}
	}
}

func TestCheckStatusChange_LockedEventBlocksAllButAdmin(t *testing.T) {
	for _, role := range allRoles {
		err := CheckStatusChange(role, StatusAttended, true)
		if role == RoleAdmin {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, ErrLockedEvent, "role %s", role)
		}
	}
}

func TestCheckStatusChange_LockTakesPrecedenceOverTransitionRules(t *testing.T) {
	// A player asking for an otherwise-valid status still hits the lock first.
	err := CheckStatusChange(RolePlayer, StatusAttending, true)
	assert.ErrorIs(t, err, ErrLockedEvent)
}

func TestCheckEventUpdate(t *testing.T) {
	for _, role := range allRoles {
		assert.NoError(t, CheckEventUpdate(role, false), "unlocked event, role %s", role)

		err := CheckEventUpdate(role, true)
		if role == RoleAdmin {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, ErrLockedEvent, "locked event, role %s", role)
		}
	}
}

func TestCheckEventDelete_LockedRejectsEveryRole(t *testing.T) {
	assert.NoError(t, CheckEventDelete(false))
	assert.ErrorIs(t, CheckEventDelete(true), ErrLockedEventDelete)
}

func TestValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("maybe"))
	assert.False(t, ValidStatus("Pending")) // wire values are case-sensitive
	assert.False(t, ValidStatus(""))
}
