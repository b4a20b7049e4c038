package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

type pairKey struct{ student, class int64 }

type fakeLedger struct {
	rows       map[pairKey]int
	monitoring []MonitoringRow
	lastFilter MonitoringFilter
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[pairKey]int)}
}

func (f *fakeLedger) Upsert(ctx context.Context, studentID, classID int64, present int) error {
	f.rows[pairKey{studentID, classID}] = present
	return nil
}

func (f *fakeLedger) Get(ctx context.Context, studentID, classID int64) (*Record, error) {
	present, ok := f.rows[pairKey{studentID, classID}]
	if !ok {
		return nil, nil
	}
	return &Record{StudentID: studentID, ClassID: classID, Present: present}, nil
}

func (f *fakeLedger) Monitoring(ctx context.Context, filter MonitoringFilter) ([]MonitoringRow, error) {
	f.lastFilter = filter
	return f.monitoring, nil
}

type fakeEnrollment struct {
	enrolled map[pairKey]bool
}

func (f *fakeEnrollment) IsStudentInClass(ctx context.Context, studentID, classID int64) (bool, error) {
	return f.enrolled[pairKey{studentID, classID}], nil
}

func TestMarkIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger, &fakeEnrollment{enrolled: map[pairKey]bool{{3, 10}: true}})
	ctx := context.Background()

	require.NoError(t, svc.Mark(ctx, 3, 10, 1))
	require.NoError(t, svc.Mark(ctx, 3, 10, 1))

	assert.Len(t, ledger.rows, 1)
	rec, err := svc.Current(ctx, 3, 10)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.Present)
}

func TestMarkOverwritesPriorValue(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger, &fakeEnrollment{enrolled: map[pairKey]bool{{3, 10}: true}})
	ctx := context.Background()

	require.NoError(t, svc.Mark(ctx, 3, 10, 1))
	require.NoError(t, svc.Mark(ctx, 3, 10, 0))

	assert.Len(t, ledger.rows, 1)
	rec, err := svc.Current(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Present)
}

func TestMarkRejectsUnenrolledStudent(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger, &fakeEnrollment{enrolled: map[pairKey]bool{}})

	err := svc.Mark(context.Background(), 3, 10, 1)
	assert.ErrorIs(t, err, apperr.ErrNotEnrolled)
	assert.Empty(t, ledger.rows)
}

func TestMarkValidation(t *testing.T) {
	svc := NewService(newFakeLedger(), &fakeEnrollment{enrolled: map[pairKey]bool{{3, 10}: true}})
	ctx := context.Background()

	assert.True(t, apperr.IsValidation(svc.Mark(ctx, 0, 10, 1)))
	assert.True(t, apperr.IsValidation(svc.Mark(ctx, 3, 0, 1)))
	assert.True(t, apperr.IsValidation(svc.Mark(ctx, 3, 10, 2)))
}

func TestCurrentAbsentPairIsNil(t *testing.T) {
	svc := NewService(newFakeLedger(), &fakeEnrollment{})

	rec, err := svc.Current(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMonitoringForScopes(t *testing.T) {
	tests := []struct {
		name    string
		sc      scope.Scope
		want    MonitoringFilter
		wantErr bool
	}{
		{"lecturer sees own", scope.Scope{UserID: 5, Role: scope.RoleLecturer}, MonitoringFilter{LecturerID: 5}, false},
		{"prl sees stream", scope.Scope{Role: scope.RolePRL, Stream: "IT"}, MonitoringFilter{Stream: "IT"}, false},
		{"prl all streams sees everything", scope.Scope{Role: scope.RolePRL, Stream: scope.AllStreams}, MonitoringFilter{}, false},
		{"pl sees everything", scope.Scope{Role: scope.RolePL}, MonitoringFilter{}, false},
		{"student rejected", scope.Scope{Role: scope.RoleStudent}, MonitoringFilter{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger()
			svc := NewService(ledger, &fakeEnrollment{})

			_, err := svc.MonitoringFor(context.Background(), tt.sc)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrScopeViolation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ledger.lastFilter)
		})
	}
}
