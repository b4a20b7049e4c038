package report

import (
	"context"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

// Repository is the storage surface the service needs.
type Repository interface {
	Create(ctx context.Context, rep Report) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f Filter) ([]Row, error)
	UpsertFeedback(ctx context.Context, reportID, prlID int64, text string) error
}

// Service handles the report and feedback lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a report. The caller supplies all snapshot fields; only
// their presence is checked. The stored report is never re-validated
// against live catalog state.
func (s *Service) Create(ctx context.Context, rep Report) (int64, error) {
	if rep.FacultyName == "" || rep.ClassName == "" || rep.CourseName == "" ||
		rep.CourseCode == "" || rep.LecturerName == "" || rep.Stream == "" ||
		rep.WeekOfReporting == "" || rep.DateOfLecture.IsZero() {
		return 0, apperr.Validationf("all report fields are required")
	}
	return s.repo.Create(ctx, rep)
}

// DateRange is the optional date window on report listings.
type DateRange struct {
	StartDate string
	EndDate   string
}

// ListFor returns the reports visible to the caller: lecturers their own,
// PRLs their stream (unless scoped to the "All Streams" sentinel), PLs and
// unrestricted PRLs everything. Students have no report surface.
func (s *Service) ListFor(ctx context.Context, sc scope.Scope, dr DateRange) ([]Row, error) {
	f := Filter{StartDate: dr.StartDate, EndDate: dr.EndDate}
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
	return s.repo.List(ctx, f)
}

// AttachFeedback upserts PRL commentary on a report, moving it from
// pending to reviewed. Empty text is rejected; an unknown report id fails
// with not-found.
func (s *Service) AttachFeedback(ctx context.Context, reportID, prlID int64, text string) error {
	if reportID == 0 || text == "" {
		return apperr.Validationf("Report ID and feedback are required")
	}
	exists, err := s.repo.Exists(ctx, reportID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrNotFound
	}
	return s.repo.UpsertFeedback(ctx, reportID, prlID, text)
}

// Summary aggregates a report set the way the export collaborator needs
// it: overall totals plus per-lecturer coverage and the pending list.
type Summary struct {
	Stream            string          `json:"stream"`
	TotalReports      int             `json:"total_reports"`
	TotalStudents     int             `json:"total_students"`
	TotalPresent      int             `json:"total_present"`
	AverageAttendance float64         `json:"average_attendance"`
	ActiveLecturers   int             `json:"active_lecturers"`
	CoursesCovered    int             `json:"courses_covered"`
	ClassesCovered    int             `json:"classes_covered"`
	FeedbackGiven     int             `json:"feedback_given"`
	FeedbackRate      float64         `json:"feedback_rate"`
	Lecturers         []LecturerStats `json:"lecturers"`
	Pending           []Row           `json:"pending"`
}

// LecturerStats is one lecturer's slice of the summary.
type LecturerStats struct {
	LecturerName      string  `json:"lecturer_name"`
	TotalReports      int     `json:"total_reports"`
	FeedbackReceived  int     `json:"feedback_received"`
	FeedbackPending   int     `json:"feedback_pending"`
	AverageAttendance float64 `json:"average_attendance"`
}

// SummaryFor computes the scoped summary.
func (s *Service) SummaryFor(ctx context.Context, sc scope.Scope, dr DateRange) (*Summary, error) {
	rows, err := s.ListFor(ctx, sc, dr)
	if err != nil {
		return nil, err
	}
	return summarize(sc.Stream, rows), nil
}

func summarize(stream string, rows []Row) *Summary {
	if stream == "" {
		stream = scope.AllStreams
	}
	sum := &Summary{Stream: stream, TotalReports: len(rows)}

	courses := map[string]bool{}
	classes := map[string]bool{}
	type acc struct{ reports, feedback, students, present int }
	byLecturer := map[string]*acc{}
	var order []string

	for _, row := range rows {
		sum.TotalStudents += row.TotalStudents
		sum.TotalPresent += row.ActualStudentsPresent
		courses[row.CourseName] = true
		classes[row.ClassName] = true

		a, ok := byLecturer[row.LecturerName]
		if !ok {
			a = &acc{}
			byLecturer[row.LecturerName] = a
			order = append(order, row.LecturerName)
		}
		a.reports++
		a.students += row.TotalStudents
		a.present += row.ActualStudentsPresent
		if row.Status == "reviewed" {
			a.feedback++
			sum.FeedbackGiven++
		} else {
			sum.Pending = append(sum.Pending, row)
		}
	}

	sum.ActiveLecturers = len(byLecturer)
	sum.CoursesCovered = len(courses)
	sum.ClassesCovered = len(classes)
	if sum.TotalStudents > 0 {
		sum.AverageAttendance = round1(float64(sum.TotalPresent) / float64(sum.TotalStudents) * 100)
	}
	if sum.TotalReports > 0 {
		sum.FeedbackRate = round1(float64(sum.FeedbackGiven) / float64(sum.TotalReports) * 100)
	}

	for _, name := range order {
		a := byLecturer[name]
		stats := LecturerStats{
			LecturerName:     name,
			TotalReports:     a.reports,
			FeedbackReceived: a.feedback,
			FeedbackPending:  a.reports - a.feedback,
		}
		if a.students > 0 {
			stats.AverageAttendance = round1(float64(a.present) / float64(a.students) * 100)
		}
		sum.Lecturers = append(sum.Lecturers, stats)
	}
	return sum
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
