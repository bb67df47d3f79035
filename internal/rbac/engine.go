package rbac

// Engine maps (Action, AccessContext) to an allow/deny decision.
// It is pure and performs no I/O; it is safe for unlimited parallel use.
type Engine struct {
	actions map[Action]actionSpec
}

func NewEngine() *Engine {
	return &Engine{actions: defaultActions()}
}

// NewEngineWithActions builds an engine over a custom registry.
// Intended for tests and for deployments that tune per-action role lists.
func NewEngineWithActions(actions map[Action]actionSpec) *Engine {
	cp := make(map[Action]actionSpec, len(actions))
	for k, v := range actions {
		cp[k] = v
	}
	return &Engine{actions: cp}
}

// Actions lists the registered action namespace.
func (e *Engine) Actions() []Action {
	out := make([]Action, 0, len(e.actions))
	for a := range e.actions {
		out = append(out, a)
	}
	return out
}

// Allows evaluates the precedence rules in order, first match wins:
//  1. account role admin-or-above allows everything
//  2. a matching event role (and sub-role, where required) allows
//  3. an approval-gated action allows an approved subject
//  4. deny
//
// Unregistered actions always deny.
func (e *Engine) Allows(action Action, ac AccessContext) bool {
	spec, ok := e.actions[action]
	if !ok {
		return false
	}

	if ac.AccountRole.IsAdmin() {
		return true
	}

	if ac.Event != nil && eventRoleSatisfies(spec, *ac.Event) {
		return true
	}

	if spec.ApprovalGated && ac.Event != nil && ac.Event.Approved {
		return true
	}

	return false
}

func eventRoleSatisfies(spec actionSpec, ev EventScope) bool {
	if ev.Role == "" {
		return false
	}
	for _, allowed := range spec.EventRoles {
		if ev.Role != allowed {
			continue
		}
		// Crew is the only narrowed role; others match directly.
		if ev.Role == EventRoleCrew && len(spec.CrewSubRoles) > 0 {
			return subRoleAllowed(spec.CrewSubRoles, ev.SubRole)
		}
		return true
	}
	return false
}

func subRoleAllowed(allowed []EventSubRole, sub EventSubRole) bool {
	if sub == "" {
		return false
	}
	for _, s := range allowed {
		if s == sub {
			return true
		}
	}
	return false
}
