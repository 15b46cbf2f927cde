package session

// EventType names a session transition.
type EventType string

const (
	// EventModeChanged fires when the session switches between guest and account.
	EventModeChanged EventType = "mode_changed"
	// EventTokensRotated fires after a successful token refresh.
	EventTokensRotated EventType = "tokens_rotated"
	// EventSessionExpired fires when a refresh fails and the account is dropped.
	EventSessionExpired EventType = "session_expired"
	// EventUsernameAssigned fires when a guest name is generated or set.
	EventUsernameAssigned EventType = "username_assigned"
)

// Event describes a transition. Mode and Username reflect the state after it.
type Event struct {
	Type     EventType
	Mode     Mode
	Username string
}

// Listener receives events synchronously, outside the controller lock.
type Listener func(Event)
