package rbac

// Attendance status wire values. The attendance package re-exports these as a
// typed enum; the guard works on the raw strings so it stays free of
// dependencies.
const (
	StatusPending   = "pending"
	StatusAttending = "attending"
	StatusDeclined  = "declined"
	StatusAttended  = "attended"
	StatusExcused   = "excused"
)

// ValidStatus reports whether s is one of the attendance status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAttending, StatusDeclined, StatusAttended, StatusExcused:
		return true
	}
	return false
}

// CheckStatusChange validates a requested attendance status against the
// actor's role and the parent event's lock state. This is a flat permission
// table, not a transition graph: any status may move to any other, it is the
// target value and the role that are gated. Rules in precedence order:
//
//  1. a locked event blocks everyone but admin, regardless of target
//  2. players and parents may only set "attending" or "declined"
//  3. "attended" and "excused" are reserved for admin and trainer
func CheckStatusChange(role Role, target string, eventLocked bool) error {
	if eventLocked && role != RoleAdmin {
		return ErrLockedEvent
	}
	if role == RolePlayer || role == RoleParent {
		if target != StatusAttending && target != StatusDeclined {
			return ErrForbiddenTransition
		}
	}
	if !role.IsStaff() && (target == StatusAttended || target == StatusExcused) {
		return ErrForbiddenTransition
	}
	return nil
}

// CheckEventUpdate guards a mutation of an event given its stored
// (pre-mutation) lock state. Non-admins may not touch a locked event in any
// field; admins may edit freely, including flipping locked back to false.
func CheckEventUpdate(role Role, wasLocked bool) error {
	if wasLocked && role != RoleAdmin {
		return ErrLockedEvent
	}
	return nil
}

// CheckEventDelete rejects deletion of a locked event for every role, admin
// included. The event must be unlocked first.
func CheckEventDelete(locked bool) error {
	if locked {
		return ErrLockedEventDelete
	}
	return nil
}
