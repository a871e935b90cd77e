package rbac

import "errors"

var (
	// ErrUnauthorized means no authenticated actor was resolved at all.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the actor's role does not permit the operation.
	ErrForbidden = errors.New("you don't have permission to perform this action")

	// ErrLockedEvent blocks any mutation touching a locked event by a
	// non-admin actor.
	ErrLockedEvent = errors.New("cannot modify attendance for a locked event, contact an administrator")

	// ErrLockedEventDelete blocks deletion of a locked event for every role.
	ErrLockedEventDelete = errors.New("event is locked and cannot be deleted, unlock it first")

	// ErrForbiddenTransition means the requested attendance status is not
	// permitted for the actor's role.
	ErrForbiddenTransition = errors.New("status value not permitted for your role")

	// ErrRelationshipViolation means a parent targeted a record of a player
	// that is not among their linked children.
	ErrRelationshipViolation = errors.New("parents can only modify their own children's attendance")
)
