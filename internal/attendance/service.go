package attendance

import (
	"context"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

// Ledger is the storage surface the service needs.
type Ledger interface {
	Upsert(ctx context.Context, studentID, classID int64, present int) error
	Get(ctx context.Context, studentID, classID int64) (*Record, error)
	Monitoring(ctx context.Context, f MonitoringFilter) ([]MonitoringRow, error)
}

// EnrollmentChecker verifies a student belongs to a class.
type EnrollmentChecker interface {
	IsStudentInClass(ctx context.Context, studentID, classID int64) (bool, error)
}

// Service coordinates attendance marking and monitoring reads.
type Service struct {
	ledger     Ledger
	enrollment EnrollmentChecker
}

// NewService creates a service.
func NewService(ledger Ledger, enrollment EnrollmentChecker) *Service {
	return &Service{ledger: ledger, enrollment: enrollment}
}

// Mark upserts a present/absent flag. The student must belong to the class;
// the write is idempotent and keeps no history of prior values.
func (s *Service) Mark(ctx context.Context, studentID, classID int64, present int) error {
	if studentID == 0 || classID == 0 {
		return apperr.Validationf("Missing fields")
	}
	if present != 0 && present != 1 {
		return apperr.Validationf("present must be 0 or 1")
	}
	enrolled, err := s.enrollment.IsStudentInClass(ctx, studentID, classID)
	if err != nil {
		return err
	}
	if !enrolled {
		return apperr.ErrNotEnrolled
	}
	return s.ledger.Upsert(ctx, studentID, classID, present)
}

// Current returns the current record for a pair, or nil when none exists.
func (s *Service) Current(ctx context.Context, studentID, classID int64) (*Record, error) {
	return s.ledger.Get(ctx, studentID, classID)
}

// MonitoringFor returns the monitoring rows visible to the caller:
// lecturers see their own courses, PRLs their stream (or everything under
// the "All Streams" sentinel), PLs everything.
func (s *Service) MonitoringFor(ctx context.Context, sc scope.Scope) ([]MonitoringRow, error) {
	var f MonitoringFilter
	switch sc.Role {
	case scope.RoleLecturer:
		f.LecturerID = sc.UserID
	case scope.RolePRL:
		if !sc.Unrestricted() {
			f.Stream = sc.Stream
		}
	case scope.RolePL:
		// unrestricted
	default:
		return nil, apperr.ErrScopeViolation
	}
	return s.ledger.Monitoring(ctx, f)
}
