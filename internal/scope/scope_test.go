package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luct-reporting/internal/apperr"
)

func TestNewNormalizes(t *testing.T) {
	s := New(7, "  PRL ", " Information Systems ")
	assert.Equal(t, int64(7), s.UserID)
	assert.Equal(t, "prl", s.Role)
	assert.Equal(t, "Information Systems", s.Stream)
}

func TestUnrestricted(t *testing.T) {
	tests := []struct {
		name string
		s    Scope
		want bool
	}{
		{"pl always", Scope{Role: RolePL}, true},
		{"prl with sentinel", Scope{Role: RolePRL, Stream: AllStreams}, true},
		{"prl with stream", Scope{Role: RolePRL, Stream: "Networking"}, false},
		{"prl empty stream is not unrestricted", Scope{Role: RolePRL}, false},
		{"lecturer", Scope{Role: RoleLecturer}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Unrestricted())
		})
	}
}

func TestCheckStreamFilter(t *testing.T) {
	prl := Scope{Role: RolePRL, Stream: "Computer Science"}

	require.NoError(t, prl.CheckStreamFilter(""))
	require.NoError(t, prl.CheckStreamFilter("all"))
	require.NoError(t, prl.CheckStreamFilter("Computer Science"))
	assert.ErrorIs(t, prl.CheckStreamFilter("Networking"), apperr.ErrScopeViolation)

	wide := Scope{Role: RolePRL, Stream: AllStreams}
	require.NoError(t, wide.CheckStreamFilter("Networking"))

	pl := Scope{Role: RolePL}
	require.NoError(t, pl.CheckStreamFilter("Networking"))
}

func TestCheckSelf(t *testing.T) {
	student := Scope{UserID: 3, Role: RoleStudent}
	require.NoError(t, student.CheckSelf(3))
	assert.ErrorIs(t, student.CheckSelf(4), apperr.ErrScopeViolation)

	prl := Scope{UserID: 3, Role: RolePRL}
	require.NoError(t, prl.CheckSelf(4))
}

func TestRequireRole(t *testing.T) {
	s := Scope{Role: RoleLecturer}
	require.NoError(t, s.RequireRole(RoleLecturer, RolePL))
	assert.ErrorIs(t, s.RequireRole(RolePL), apperr.ErrScopeViolation)
}
