package domain

// Role is the access level carried by an authenticated operator session.
type Role string

// RoleSuperadmin is the only role this console operates under. Anything
// else is treated as unauthenticated.
const RoleSuperadmin Role = "superadmin"

// Session is the immutable authenticated-operator context threaded through
// every core call. It is a value, never process-wide state.
type Session struct {
	Token  string
	UserID string
	Email  string
	Role   Role
}

// Superadmin reports whether the session may operate the console at all.
func (s Session) Superadmin() bool {
	return s.Role == RoleSuperadmin
}
