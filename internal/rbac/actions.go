package rbac

// Action is a named capability from a closed namespace. The engine denies
// any action that is not registered; there is no default-allow path.
type Action string

const (
	ActionEventsView        Action = "events.view"
	ActionEventsManage      Action = "events.manage"
	ActionIncidentsView     Action = "incidents.view"
	ActionIncidentsCreate   Action = "incidents.create"
	ActionIncidentsManage   Action = "incidents.manage"
	ActionRequestsDashboard Action = "requests.dashboard.view"
	ActionUploadsCreate     Action = "uploads.create"
	ActionRolesManage       Action = "roles.manage"
	ActionApprovalsDecide   Action = "approvals.decide"
)

// actionSpec declares which AccessContext shapes satisfy an action.
//
// EventRoles is the per-action allow-list of event roles. Listing a role here
// lets it act without approval for that one event, without granting anything
// account-wide. CrewSubRoles narrows crew: when non-empty, a crew assignment
// additionally needs a matching sub-role. ApprovalGated opens the action to
// any approved subject of the event.
type actionSpec struct {
	EventRoles    []EventRole
	CrewSubRoles  []EventSubRole
	ApprovalGated bool
}

// defaultActions is the closed action registry. Video and safety lead are the
// two roles the product exempts from approval on the viewing surfaces; keep
// that list here as registry data, not inlined checks.
func defaultActions() map[Action]actionSpec {
	return map[Action]actionSpec{
		ActionEventsView: {
			EventRoles:    []EventRole{EventRoleVideo, EventRoleSafetyLead},
			ApprovalGated: true,
		},
		ActionEventsManage: {
			// Account admins only.
		},
		ActionIncidentsView: {
			EventRoles: []EventRole{EventRoleController, EventRoleSafetyLead},
		},
		ActionIncidentsCreate: {
			EventRoles:   []EventRole{EventRoleController, EventRoleSafetyLead, EventRoleCrew},
			CrewSubRoles: []EventSubRole{SubRoleRadio, SubRoleRunner},
		},
		ActionIncidentsManage: {
			EventRoles: []EventRole{EventRoleSafetyLead},
		},
		ActionRequestsDashboard: {
			EventRoles: []EventRole{EventRoleController, EventRoleSafetyLead},
		},
		ActionUploadsCreate: {
			EventRoles:   []EventRole{EventRoleController, EventRoleSafetyLead, EventRoleCrew},
			CrewSubRoles: []EventSubRole{SubRoleRadio, SubRoleRunner},
		},
		ActionRolesManage: {
			// Account admins only.
		},
		ActionApprovalsDecide: {
			EventRoles: []EventRole{EventRoleController, EventRoleSafetyLead},
		},
	}
}
