package rating

import (
	"context"
	"strings"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

// Ledger is the storage surface the service needs.
type Ledger interface {
	UpsertStudentRating(ctx context.Context, sr StudentRating) (UpsertResult, error)
	UpsertClassRating(ctx context.Context, cr ClassRating) (UpsertResult, error)
	RatingsByStudent(ctx context.Context, studentID int64) ([]StudentRatingDetail, error)
	ClassRatingsByLecturer(ctx context.Context, lecturerID int64) ([]ClassRatingDetail, error)
	StudentRatings(ctx context.Context, f DetailFilter) ([]StudentRatingDetail, error)
	ClassRatings(ctx context.Context, f DetailFilter) ([]ClassRatingDetail, error)
	AverageByLecturer(ctx context.Context, stream string) ([]LecturerAverage, error)
}

// Directory checks that a referenced user exists with the expected role.
type Directory interface {
	HasUserWithRole(ctx context.Context, id int64, role string) (bool, error)
}

// AssignmentChecker verifies a lecturer teaches a (class, course) pair.
type AssignmentChecker interface {
	IsLecturerAssigned(ctx context.Context, lecturerID, classID, courseID int64) (bool, error)
}

// Service coordinates both rating ledgers.
type Service struct {
	ledger      Ledger
	directory   Directory
	assignments AssignmentChecker
}

// NewService creates a service.
func NewService(ledger Ledger, directory Directory, assignments AssignmentChecker) *Service {
	return &Service{ledger: ledger, directory: directory, assignments: assignments}
}

func checkRange(rating int) error {
	if rating < 1 || rating > 5 {
		return apperr.Validationf("Rating must be between 1 and 5")
	}
	return nil
}

// RateLecturer upserts a student's rating of a lecturer. Out-of-range
// values are rejected, never clamped. Both parties must exist with their
// expected roles.
func (s *Service) RateLecturer(ctx context.Context, sr StudentRating) (UpsertResult, error) {
	if sr.StudentID == 0 || sr.LecturerID == 0 || sr.Rating == 0 {
		return UpsertResult{}, apperr.Validationf("Student, lecturer and rating are required")
	}
	if err := checkRange(sr.Rating); err != nil {
		return UpsertResult{}, err
	}
	ok, err := s.directory.HasUserWithRole(ctx, sr.StudentID, scope.RoleStudent)
	if err != nil {
		return UpsertResult{}, err
	}
	if !ok {
		return UpsertResult{}, apperr.ErrNotFound
	}
	ok, err = s.directory.HasUserWithRole(ctx, sr.LecturerID, scope.RoleLecturer)
	if err != nil {
		return UpsertResult{}, err
	}
	if !ok {
		return UpsertResult{}, apperr.ErrNotFound
	}
	return s.ledger.UpsertStudentRating(ctx, sr)
}

// RateClass upserts a lecturer's self-rating on a class/course pair they
// actually teach.
func (s *Service) RateClass(ctx context.Context, cr ClassRating) (UpsertResult, error) {
	if cr.LecturerID == 0 || cr.ClassID == 0 || cr.CourseID == 0 || cr.Rating == 0 {
		return UpsertResult{}, apperr.Validationf("Lecturer, class, course and rating are required")
	}
	if err := checkRange(cr.Rating); err != nil {
		return UpsertResult{}, err
	}
	assigned, err := s.assignments.IsLecturerAssigned(ctx, cr.LecturerID, cr.ClassID, cr.CourseID)
	if err != nil {
		return UpsertResult{}, err
	}
	if !assigned {
		return UpsertResult{}, apperr.ErrScopeViolation
	}
	return s.ledger.UpsertClassRating(ctx, cr)
}

// MyRatings lists a student's current ratings.
func (s *Service) MyRatings(ctx context.Context, studentID int64) ([]StudentRatingDetail, error) {
	return s.ledger.RatingsByStudent(ctx, studentID)
}

// MyClassRatings lists a lecturer's current self-ratings.
func (s *Service) MyClassRatings(ctx context.Context, lecturerID int64) ([]ClassRatingDetail, error) {
	return s.ledger.ClassRatingsByLecturer(ctx, lecturerID)
}

// StudentRatingsFor lists raw student ratings for review roles. PRLs see
// their stream unless scoped to the "All Streams" sentinel; PLs see all.
func (s *Service) StudentRatingsFor(ctx context.Context, sc scope.Scope, dr DetailFilter) ([]StudentRatingDetail, error) {
	f, err := scopedFilter(sc, dr)
	if err != nil {
		return nil, err
	}
	return s.ledger.StudentRatings(ctx, f)
}

// ClassRatingsFor lists raw lecturer self-ratings for review roles.
func (s *Service) ClassRatingsFor(ctx context.Context, sc scope.Scope, dr DetailFilter) ([]ClassRatingDetail, error) {
	f, err := scopedFilter(sc, dr)
	if err != nil {
		return nil, err
	}
	return s.ledger.ClassRatings(ctx, f)
}

// AveragesFor aggregates student ratings per lecturer inside the caller's
// stream boundary.
func (s *Service) AveragesFor(ctx context.Context, sc scope.Scope) ([]LecturerAverage, error) {
	switch sc.Role {
	case scope.RolePRL:
		if sc.Unrestricted() {
			return s.ledger.AverageByLecturer(ctx, "")
		}
		return s.ledger.AverageByLecturer(ctx, sc.Stream)
	case scope.RolePL:
		return s.ledger.AverageByLecturer(ctx, "")
	default:
		return nil, apperr.ErrScopeViolation
	}
}

// scopedFilter applies the caller's stream boundary before any supplied
// filter. A restricted PRL is pinned to their stream; a foreign stream
// filter is rejected, not silently emptied.
func scopedFilter(sc scope.Scope, dr DetailFilter) (DetailFilter, error) {
	f := DetailFilter{StartDate: dr.StartDate, EndDate: dr.EndDate}
	switch sc.Role {
	case scope.RolePRL, scope.RolePL:
		if err := sc.CheckStreamFilter(dr.Stream); err != nil {
			return DetailFilter{}, err
		}
		if sc.Role == scope.RolePRL && !sc.Unrestricted() {
			f.Stream = sc.Stream
		} else if !strings.EqualFold(dr.Stream, "all") {
			f.Stream = dr.Stream
		}
	default:
		return DetailFilter{}, apperr.ErrScopeViolation
	}
	return f, nil
}
