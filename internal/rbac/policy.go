package rbac

// Effect is the outcome class of an access decision.
type Effect int

const (
	EffectDeny Effect = iota
	EffectAllow
	EffectScoped
)

// Filter is a query predicate applied by the storage layer to restrict which
// rows a scoped decision covers. Keys are column names.
type Filter map[string]interface{}

// Decision is the result of a policy check. It is never a bare boolean: a
// scoped decision carries the filter that must be applied to the query.
type Decision struct {
	Effect Effect
	Filter Filter
}

func allow() Decision               { return Decision{Effect: EffectAllow} }
func deny() Decision                { return Decision{Effect: EffectDeny} }
func scoped(f Filter) Decision      { return Decision{Effect: EffectScoped, Filter: f} }
func (d Decision) Allowed() bool    { return d.Effect == EffectAllow }
func (d Decision) Denied() bool     { return d.Effect == EffectDeny }
func (d Decision) IsScoped() bool   { return d.Effect == EffectScoped }

// CanReadUsers gates user listing/reads. Staff read everything; players and
// parents read themselves (a parent's children are exposed through a
// dedicated, post-filtered endpoint).
func CanReadUsers(role Role, actorID uint) Decision {
	if role.IsStaff() {
		return allow()
	}
	return scoped(Filter{"id": actorID})
}

// CanUpdateUser gates user updates. Admin updates anyone; everyone else is
// limited to their own row.
func CanUpdateUser(role Role, actorID uint) Decision {
	if role == RoleAdmin {
		return allow()
	}
	return scoped(Filter{"id": actorID})
}

// CanDeleteUser: admin only.
func CanDeleteUser(role Role) Decision {
	if role == RoleAdmin {
		return allow()
	}
	return deny()
}

// CanWriteEvents gates event create/update.
func CanWriteEvents(role Role) Decision {
	if role.IsStaff() {
		return allow()
	}
	return deny()
}

// CanDeleteEvent: admin only. Lock state is checked separately by
// CheckEventDelete because it rejects regardless of role.
func CanDeleteEvent(role Role) Decision {
	if role == RoleAdmin {
		return allow()
	}
	return deny()
}

// CanLockEvents gates the explicit lock/unlock operations.
func CanLockEvents(role Role) Decision {
	if role.IsStaff() {
		return allow()
	}
	return deny()
}

// CanReadAttendance gates attendance reads. Players are scoped to their own
// records; parents get a full read that is then filtered down to their
// children after the rows are fetched (the child set lives on the parent row,
// not on the attendance row, so it cannot be expressed as a column filter
// here).
func CanReadAttendance(role Role, actorID uint) Decision {
	switch {
	case role.IsStaff():
		return allow()
	case role == RolePlayer:
		return scoped(Filter{"player_id": actorID})
	case role == RoleParent:
		return allow()
	}
	return deny()
}

// CanUpdateAttendance gates attendance updates. The status value itself is
// checked separately by CheckStatusChange; parents additionally go through
// CheckParentChild.
func CanUpdateAttendance(role Role, actorID uint) Decision {
	switch {
	case role.IsStaff():
		return allow()
	case role == RolePlayer:
		return scoped(Filter{"player_id": actorID})
	case role == RoleParent:
		return allow()
	}
	return deny()
}

// CanDeleteAttendance: admin only. Records are never deleted in normal
// operation.
func CanDeleteAttendance(role Role) Decision {
	if role == RoleAdmin {
		return allow()
	}
	return deny()
}

// CheckParentChild verifies that playerID belongs to the parent's linked
// children.
func CheckParentChild(childIDs []uint, playerID uint) error {
	for _, id := range childIDs {
		if id == playerID {
			return nil
		}
	}
	return ErrRelationshipViolation
}
