package rbac

// Role names. Keep these stable; they are part of authorization contracts
// and of persisted role records.

// AccountRole is the account-wide privilege tier, independent of any event.
type AccountRole string

const (
	AccountRoleUser       AccountRole = "user"
	AccountRoleSupport    AccountRole = "support"
	AccountRoleAdmin      AccountRole = "admin"
	AccountRoleSuperadmin AccountRole = "superadmin"
)

// rank orders the account hierarchy: user < support < admin < superadmin.
// Unknown roles rank below user so a corrupted record never elevates.
func (r AccountRole) rank() int {
	switch r {
	case AccountRoleUser:
		return 1
	case AccountRoleSupport:
		return 2
	case AccountRoleAdmin:
		return 3
	case AccountRoleSuperadmin:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether r sits at or above other in the hierarchy.
func (r AccountRole) AtLeast(other AccountRole) bool {
	return r.rank() >= other.rank() && r.rank() > 0
}

// IsAdmin reports whether r is admin or above (the override layer).
func (r AccountRole) IsAdmin() bool {
	return r.AtLeast(AccountRoleAdmin)
}

func ParseAccountRole(s string) (AccountRole, bool) {
	switch AccountRole(s) {
	case AccountRoleUser, AccountRoleSupport, AccountRoleAdmin, AccountRoleSuperadmin:
		return AccountRole(s), true
	default:
		return "", false
	}
}

// EventRole is a privilege scoped to one event, assigned per subject per event.
type EventRole string

const (
	EventRoleController EventRole = "controller"
	EventRoleSafetyLead EventRole = "safety_lead"
	EventRoleVideo      EventRole = "video"
	EventRoleCrew       EventRole = "crew"
)

func ParseEventRole(s string) (EventRole, bool) {
	switch EventRole(s) {
	case EventRoleController, EventRoleSafetyLead, EventRoleVideo, EventRoleCrew:
		return EventRole(s), true
	default:
		return "", false
	}
}

// EventSubRole further narrows a crew assignment. Only crew carries a sub-role.
type EventSubRole string

const (
	SubRoleRadio  EventSubRole = "radio"
	SubRoleRunner EventSubRole = "runner"
	SubRoleGate   EventSubRole = "gate"
)

func ParseEventSubRole(s string) (EventSubRole, bool) {
	switch EventSubRole(s) {
	case SubRoleRadio, SubRoleRunner, SubRoleGate:
		return EventSubRole(s), true
	default:
		return "", false
	}
}
