package search

import (
	"context"
	"errors"
	"strings"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/attendance"
	"luct-reporting/internal/catalog"
	"luct-reporting/internal/report"
	"luct-reporting/internal/scope"
	"luct-reporting/internal/user"
)

// Request is the caller-facing search input before scope resolution.
type Request struct {
	Q         string
	Stream    string
	StartDate string
	EndDate   string
	Status    string
	MinRating int
	MaxRating int
}

const globalLimit = 10

// Engine resolves scope into the mandatory predicate and runs searches.
type Engine struct {
	repo *Repo
}

// NewEngine creates an engine.
func NewEngine(repo *Repo) *Engine {
	return &Engine{repo: repo}
}

// streamFor resolves the effective stream predicate: a restricted PRL is
// pinned to their own stream; everyone else gets the (validated) filter.
// A foreign stream filter is a scope violation, not an empty result.
func streamFor(sc scope.Scope, filter string) (string, error) {
	if err := sc.CheckStreamFilter(filter); err != nil {
		return "", err
	}
	if sc.Role == scope.RolePRL && !sc.Unrestricted() {
		return sc.Stream, nil
	}
	if strings.EqualFold(filter, "all") {
		return "", nil
	}
	return filter, nil
}

// Reports searches reports visible to the caller.
func (e *Engine) Reports(ctx context.Context, sc scope.Scope, req Request) ([]report.Row, error) {
	p := Params{Q: req.Q, StartDate: req.StartDate, EndDate: req.EndDate, Status: req.Status}
	switch sc.Role {
	case scope.RoleLecturer:
		p.LecturerID = sc.UserID
	case scope.RolePRL, scope.RolePL:
		stream, err := streamFor(sc, req.Stream)
		if err != nil {
			return nil, err
		}
		p.Stream = stream
	default:
		return nil, apperr.ErrScopeViolation
	}
	return e.repo.Reports(ctx, p)
}

// Courses searches the catalog. Lecturers see their own courses.
func (e *Engine) Courses(ctx context.Context, sc scope.Scope, req Request) ([]catalog.Course, error) {
	p := Params{Q: req.Q}
	switch sc.Role {
	case scope.RoleLecturer:
		p.LecturerID = sc.UserID
	default:
		stream, err := streamFor(sc, req.Stream)
		if err != nil {
			return nil, err
		}
		p.Stream = stream
	}
	return e.repo.Courses(ctx, p)
}

// Students searches the student directory. A student only finds themself.
func (e *Engine) Students(ctx context.Context, sc scope.Scope, req Request) ([]StudentHit, error) {
	p := Params{Q: req.Q}
	switch sc.Role {
	case scope.RoleStudent:
		p.StudentID = sc.UserID
	default:
		stream, err := streamFor(sc, req.Stream)
		if err != nil {
			return nil, err
		}
		p.Stream = stream
	}
	return e.repo.Students(ctx, p)
}

// Lecturers searches the lecturer directory. Unrestricted for every role.
func (e *Engine) Lecturers(ctx context.Context, sc scope.Scope, req Request) ([]user.User, error) {
	return e.repo.Lecturers(ctx, Params{Q: req.Q})
}

// Classes searches classes. Unrestricted for every role.
func (e *Engine) Classes(ctx context.Context, sc scope.Scope, req Request) ([]catalog.Class, error) {
	return e.repo.Classes(ctx, Params{Q: req.Q})
}

// Monitoring searches the attendance monitoring join.
func (e *Engine) Monitoring(ctx context.Context, sc scope.Scope, req Request) ([]attendance.MonitoringRow, error) {
	p := Params{Q: req.Q, StartDate: req.StartDate, EndDate: req.EndDate}
	switch sc.Role {
	case scope.RoleStudent:
		p.StudentID = sc.UserID
	case scope.RoleLecturer:
		p.LecturerID = sc.UserID
	case scope.RolePRL, scope.RolePL:
		stream, err := streamFor(sc, req.Stream)
		if err != nil {
			return nil, err
		}
		p.Stream = stream
	default:
		return nil, apperr.ErrScopeViolation
	}
	return e.repo.Monitoring(ctx, p)
}

// Ratings searches student ratings with optional rating bounds.
func (e *Engine) Ratings(ctx context.Context, sc scope.Scope, req Request) ([]RatingHit, error) {
	p := Params{Q: req.Q, MinRating: req.MinRating, MaxRating: req.MaxRating}
	switch sc.Role {
	case scope.RoleStudent:
		p.StudentID = sc.UserID
	case scope.RoleLecturer:
		p.LecturerID = sc.UserID
	case scope.RolePRL, scope.RolePL:
		stream, err := streamFor(sc, req.Stream)
		if err != nil {
			return nil, err
		}
		p.Stream = stream
	default:
		return nil, apperr.ErrScopeViolation
	}
	return e.repo.Ratings(ctx, p)
}

// Global runs the cross-entity search for the top bar, a few hits per
// entity. Entities the caller cannot see come back empty, not as errors.
func (e *Engine) Global(ctx context.Context, sc scope.Scope, q string) (*GlobalResult, error) {
	res := &GlobalResult{}
	req := Request{Q: q}

	if reports, err := e.Reports(ctx, sc, req); err == nil {
		res.Reports = capReports(reports)
	} else if !isScopeErr(err) {
		return nil, err
	}

	courses, err := e.Courses(ctx, sc, req)
	if err != nil {
		return nil, err
	}
	if len(courses) > globalLimit {
		courses = courses[:globalLimit]
	}
	res.Courses = courses

	classes, err := e.Classes(ctx, sc, req)
	if err != nil {
		return nil, err
	}
	if len(classes) > globalLimit {
		classes = classes[:globalLimit]
	}
	res.Classes = classes

	lecturers, err := e.Lecturers(ctx, sc, req)
	if err != nil {
		return nil, err
	}
	if len(lecturers) > globalLimit {
		lecturers = lecturers[:globalLimit]
	}
	res.Lecturers = lecturers

	return res, nil
}

func capReports(rows []report.Row) []report.Row {
	if len(rows) > globalLimit {
		return rows[:globalLimit]
	}
	return rows
}

func isScopeErr(err error) bool {
	return errors.Is(err, apperr.ErrScopeViolation)
}
