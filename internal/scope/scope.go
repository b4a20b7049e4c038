package scope

import (
	"strings"

	"luct-reporting/internal/apperr"
)

// Roles understood by the system.
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RolePRL      = "prl"
	RolePL       = "pl"
)

// AllStreams is the literal sentinel a PRL scope may carry to mean
// "unrestricted". It is matched explicitly, never inferred from an empty
// stream.
const AllStreams = "All Streams"

// Scope is the caller identity every cross-user read takes explicitly.
// It travels as a parameter rather than ambient state so the mandatory
// scoping predicate cannot be bypassed.
type Scope struct {
	UserID int64
	Role   string
	Stream string
}

// New normalizes a scope from raw header values.
func New(userID int64, role, stream string) Scope {
	return Scope{
		UserID: userID,
		Role:   strings.ToLower(strings.TrimSpace(role)),
		Stream: strings.TrimSpace(stream),
	}
}

// ValidRole reports whether the role is one the system knows.
func (s Scope) ValidRole() bool {
	switch s.Role {
	case RoleStudent, RoleLecturer, RolePRL, RolePL:
		return true
	}
	return false
}

// Unrestricted reports whether the scope may see every stream.
func (s Scope) Unrestricted() bool {
	return s.Role == RolePL || (s.Role == RolePRL && s.Stream == AllStreams)
}

// AllowsStream reports whether rows tagged with stream are visible.
func (s Scope) AllowsStream(stream string) bool {
	if s.Unrestricted() {
		return true
	}
	if s.Role == RolePRL {
		return s.Stream == stream
	}
	// Students and lecturers are scoped by identity, not stream.
	return true
}

// CheckStreamFilter rejects a user-supplied stream filter that falls
// outside the caller's scope. An empty or "all" filter is fine; "all" for a
// restricted PRL simply collapses to their own stream at query time.
func (s Scope) CheckStreamFilter(filter string) error {
	if filter == "" || strings.EqualFold(filter, "all") {
		return nil
	}
	if s.Role == RolePRL && !s.Unrestricted() && filter != s.Stream {
		return apperr.ErrScopeViolation
	}
	return nil
}

// CheckSelf rejects a request for another user's rows when the caller role
// only permits reading its own.
func (s Scope) CheckSelf(userID int64) error {
	switch s.Role {
	case RoleStudent, RoleLecturer:
		if userID != s.UserID {
			return apperr.ErrScopeViolation
		}
	}
	return nil
}

// RequireRole rejects callers whose role is not in the allowed set.
func (s Scope) RequireRole(allowed ...string) error {
	for _, r := range allowed {
		if s.Role == r {
			return nil
		}
	}
	return apperr.ErrScopeViolation
}
