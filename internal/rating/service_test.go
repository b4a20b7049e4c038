package rating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

type fakeRatingLedger struct {
	studentRows map[[2]int64]StudentRating
	classRows   map[[3]int64]ClassRating
	nextID      int64
	lastFilter  DetailFilter
	lastStream  string
}

func newFakeRatingLedger() *fakeRatingLedger {
	return &fakeRatingLedger{
		studentRows: make(map[[2]int64]StudentRating),
		classRows:   make(map[[3]int64]ClassRating),
	}
}

func (f *fakeRatingLedger) UpsertStudentRating(ctx context.Context, sr StudentRating) (UpsertResult, error) {
	key := [2]int64{sr.StudentID, sr.LecturerID}
	if existing, ok := f.studentRows[key]; ok {
		sr.ID = existing.ID
		f.studentRows[key] = sr
		return UpsertResult{ID: sr.ID, Action: "updated"}, nil
	}
	f.nextID++
	sr.ID = f.nextID
	f.studentRows[key] = sr
	return UpsertResult{ID: sr.ID, Action: "created"}, nil
}

func (f *fakeRatingLedger) UpsertClassRating(ctx context.Context, cr ClassRating) (UpsertResult, error) {
	key := [3]int64{cr.LecturerID, cr.ClassID, cr.CourseID}
	if existing, ok := f.classRows[key]; ok {
		cr.ID = existing.ID
		f.classRows[key] = cr
		return UpsertResult{ID: cr.ID, Action: "updated"}, nil
	}
	f.nextID++
	cr.ID = f.nextID
	f.classRows[key] = cr
	return UpsertResult{ID: cr.ID, Action: "created"}, nil
}

func (f *fakeRatingLedger) RatingsByStudent(ctx context.Context, studentID int64) ([]StudentRatingDetail, error) {
	return nil, nil
}
func (f *fakeRatingLedger) ClassRatingsByLecturer(ctx context.Context, lecturerID int64) ([]ClassRatingDetail, error) {
	return nil, nil
}
func (f *fakeRatingLedger) StudentRatings(ctx context.Context, filter DetailFilter) ([]StudentRatingDetail, error) {
	f.lastFilter = filter
	return nil, nil
}
func (f *fakeRatingLedger) ClassRatings(ctx context.Context, filter DetailFilter) ([]ClassRatingDetail, error) {
	f.lastFilter = filter
	return nil, nil
}
func (f *fakeRatingLedger) AverageByLecturer(ctx context.Context, stream string) ([]LecturerAverage, error) {
	f.lastStream = stream
	return nil, nil
}

type fakeDirectory struct {
	users map[int64]string // id -> role
}

func (f *fakeDirectory) HasUserWithRole(ctx context.Context, id int64, role string) (bool, error) {
	return f.users[id] == role, nil
}

type fakeAssignments struct {
	assigned map[[3]int64]bool
}

func (f *fakeAssignments) IsLecturerAssigned(ctx context.Context, lecturerID, classID, courseID int64) (bool, error) {
	return f.assigned[[3]int64{lecturerID, classID, courseID}], nil
}

func newRatingService(ledger *fakeRatingLedger) *Service {
	return NewService(ledger,
		&fakeDirectory{users: map[int64]string{3: scope.RoleStudent, 5: scope.RoleLecturer}},
		&fakeAssignments{assigned: map[[3]int64]bool{{5, 10, 1}: true}})
}

func TestRateLecturerRange(t *testing.T) {
	svc := newRatingService(newFakeRatingLedger())
	ctx := context.Background()

	for _, bad := range []int{-1, 6, 7} {
		_, err := svc.RateLecturer(ctx, StudentRating{StudentID: 3, LecturerID: 5, Rating: bad})
		assert.True(t, apperr.IsValidation(err), "rating %d must be rejected", bad)
	}
	_, err := svc.RateLecturer(ctx, StudentRating{StudentID: 3, LecturerID: 5, Rating: 0})
	assert.True(t, apperr.IsValidation(err))

	for _, good := range []int{1, 5} {
		_, err := svc.RateLecturer(ctx, StudentRating{StudentID: 3, LecturerID: 5, Rating: good})
		assert.NoError(t, err, "rating %d must be accepted", good)
	}
}

func TestRateLecturerUpsertKeepsOneRow(t *testing.T) {
	ledger := newFakeRatingLedger()
	svc := newRatingService(ledger)
	ctx := context.Background()

	first, err := svc.RateLecturer(ctx, StudentRating{StudentID: 3, LecturerID: 5, Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, "created", first.Action)

	second, err := svc.RateLecturer(ctx, StudentRating{StudentID: 3, LecturerID: 5, Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "updated", second.Action)
	assert.Equal(t, first.ID, second.ID)

	require.Len(t, ledger.studentRows, 1)
	assert.Equal(t, 4, ledger.studentRows[[2]int64{3, 5}].Rating)
}

func TestRateLecturerUnknownParties(t *testing.T) {
	svc := newRatingService(newFakeRatingLedger())
	ctx := context.Background()

	_, err := svc.RateLecturer(ctx, StudentRating{StudentID: 99, LecturerID: 5, Rating: 3})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.RateLecturer(ctx, StudentRating{StudentID: 3, LecturerID: 99, Rating: 3})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// a lecturer id pointing at a student is just as absent
	_, err = svc.RateLecturer(ctx, StudentRating{StudentID: 3, LecturerID: 3, Rating: 3})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRateClassRequiresAssignment(t *testing.T) {
	ledger := newFakeRatingLedger()
	svc := newRatingService(ledger)
	ctx := context.Background()

	_, err := svc.RateClass(ctx, ClassRating{LecturerID: 5, ClassID: 10, CourseID: 2, Rating: 3})
	assert.ErrorIs(t, err, apperr.ErrScopeViolation)

	res, err := svc.RateClass(ctx, ClassRating{LecturerID: 5, ClassID: 10, CourseID: 1, Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, "created", res.Action)
}

func TestRateClassUpsertKeepsOneRow(t *testing.T) {
	ledger := newFakeRatingLedger()
	svc := newRatingService(ledger)
	ctx := context.Background()

	_, err := svc.RateClass(ctx, ClassRating{LecturerID: 5, ClassID: 10, CourseID: 1, Rating: 2})
	require.NoError(t, err)
	res, err := svc.RateClass(ctx, ClassRating{LecturerID: 5, ClassID: 10, CourseID: 1, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "updated", res.Action)

	require.Len(t, ledger.classRows, 1)
	assert.Equal(t, 5, ledger.classRows[[3]int64{5, 10, 1}].Rating)
}

func TestStudentRatingsForScoping(t *testing.T) {
	ledger := newFakeRatingLedger()
	svc := newRatingService(ledger)
	ctx := context.Background()

	_, err := svc.StudentRatingsFor(ctx, scope.Scope{Role: scope.RolePRL, Stream: "IT"}, DetailFilter{})
	require.NoError(t, err)
	assert.Equal(t, "IT", ledger.lastFilter.Stream)

	_, err = svc.StudentRatingsFor(ctx, scope.Scope{Role: scope.RolePRL, Stream: "IT"}, DetailFilter{Stream: "Networking"})
	assert.ErrorIs(t, err, apperr.ErrScopeViolation)

	_, err = svc.StudentRatingsFor(ctx, scope.Scope{Role: scope.RolePL}, DetailFilter{Stream: "Networking"})
	require.NoError(t, err)
	assert.Equal(t, "Networking", ledger.lastFilter.Stream)

	_, err = svc.StudentRatingsFor(ctx, scope.Scope{Role: scope.RoleStudent}, DetailFilter{})
	assert.ErrorIs(t, err, apperr.ErrScopeViolation)
}

func TestAveragesForScoping(t *testing.T) {
	ledger := newFakeRatingLedger()
	svc := newRatingService(ledger)
	ctx := context.Background()

	_, err := svc.AveragesFor(ctx, scope.Scope{Role: scope.RolePRL, Stream: "IT"})
	require.NoError(t, err)
	assert.Equal(t, "IT", ledger.lastStream)

	_, err = svc.AveragesFor(ctx, scope.Scope{Role: scope.RolePRL, Stream: scope.AllStreams})
	require.NoError(t, err)
	assert.Equal(t, "", ledger.lastStream)

	_, err = svc.AveragesFor(ctx, scope.Scope{Role: scope.RoleLecturer})
	assert.ErrorIs(t, err, apperr.ErrScopeViolation)
}
