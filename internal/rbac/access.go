package rbac

// AccessContext is the resolved view of everything a subject holds for one
// authorization check. It is a projection, never persisted, and built fresh
// per check so role or approval revocations take effect on the next request.
type AccessContext struct {
	AccountRole AccountRole

	// Event is nil when the check carries no event scope. Absence means
	// "no event-scoped grant", never "full access".
	Event *EventScope
}

// EventScope holds the (subject, event) pair facts used by the engine.
type EventScope struct {
	// Role is empty when the subject has no role assignment for the event.
	Role EventRole
	// SubRole is set only for crew assignments that were narrowed.
	SubRole EventSubRole
	// Approved is the per-event approval gate, default false.
	Approved bool
}
