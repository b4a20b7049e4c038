package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/store"
)

// Repository is the storage surface the service needs.
type Repository interface {
	ListCourses(ctx context.Context) ([]Course, error)
	CreateCourse(ctx context.Context, c Course) (int64, error)
	ListClasses(ctx context.Context) ([]ClassSummary, error)
	CreateClass(ctx context.Context, c Class) (int64, error)
	ListMappings(ctx context.Context) ([]Mapping, error)
	CreateMapping(ctx context.Context, classID, courseID int64) (int64, error)
	ClassIDOfStudent(ctx context.Context, studentID int64) (int64, error)
	OfferingsForClass(ctx context.Context, classID int64) ([]Offering, error)
	AssignmentsForLecturer(ctx context.Context, lecturerID int64) ([]Assignment, error)
	CoursesForLecturer(ctx context.Context, lecturerID int64) ([]Course, error)
	IsLecturerAssigned(ctx context.Context, lecturerID, classID, courseID int64) (bool, error)
}

// Service is the catalog resolver. Resolution reads go through a best-effort
// redis cache; cache may be nil.
type Service struct {
	repo     Repository
	cache    *store.Redis
	cacheTTL time.Duration
}

// NewService creates a service. cache may be nil to disable caching.
func NewService(repo Repository, cache *store.Redis, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func classCoursesKey(classID int64) string {
	return fmt.Sprintf("catalog:class:%d:courses", classID)
}

// Courses lists all courses.
func (s *Service) Courses(ctx context.Context) ([]Course, error) {
	return s.repo.ListCourses(ctx)
}

// CreateCourse validates and inserts a course.
func (s *Service) CreateCourse(ctx context.Context, c Course) (int64, error) {
	if c.CourseCode == "" || c.CourseName == "" || c.Stream == "" {
		return 0, apperr.Validationf("Course code, name, and stream are required")
	}
	id, err := s.repo.CreateCourse(ctx, c)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperr.Validationf("Course code already exists")
		}
		return 0, err
	}
	return id, nil
}

// Classes lists all classes with aggregated courses.
func (s *Service) Classes(ctx context.Context) ([]ClassSummary, error) {
	return s.repo.ListClasses(ctx)
}

// CreateClass validates and inserts a class.
func (s *Service) CreateClass(ctx context.Context, c Class) (int64, error) {
	if c.ClassName == "" || c.TotalRegistered == 0 || c.Faculty == "" {
		return 0, apperr.Validationf("Class name, total registered, and faculty are required")
	}
	return s.repo.CreateClass(ctx, c)
}

// Mappings lists all class↔course mapping rows.
func (s *Service) Mappings(ctx context.Context) ([]Mapping, error) {
	return s.repo.ListMappings(ctx)
}

// CreateMapping links a class to a course and invalidates the class's
// cached resolution.
func (s *Service) CreateMapping(ctx context.Context, classID, courseID int64) (int64, error) {
	if classID == 0 || courseID == 0 {
		return 0, apperr.Validationf("Class ID and Course ID are required")
	}
	id, err := s.repo.CreateMapping(ctx, classID, courseID)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, classCoursesKey(classID))
	return id, nil
}

// CoursesForClass resolves the set of courses taught to a class, exactly
// once per course id regardless of duplicate mapping rows. An unknown class
// yields an empty slice. Results are cached.
func (s *Service) CoursesForClass(ctx context.Context, classID int64) ([]Offering, error) {
	key := classCoursesKey(classID)
	if cached := s.cache.Get(ctx, key); cached != "" {
		var res []Offering
		if json.Unmarshal([]byte(cached), &res) == nil {
			return res, nil
		}
	}

	rows, err := s.repo.OfferingsForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	res := dedupeOfferings(rows)

	if data, err := json.Marshal(res); err == nil {
		s.cache.Set(ctx, key, string(data), s.cacheTTL)
	}
	return res, nil
}

// ClassesForLecturer resolves the (class, course) pairs a lecturer teaches,
// deduplicated by the pair. An unknown lecturer yields an empty slice.
func (s *Service) ClassesForLecturer(ctx context.Context, lecturerID int64) ([]Assignment, error) {
	rows, err := s.repo.AssignmentsForLecturer(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	return dedupeAssignments(rows), nil
}

// CoursesForLecturer lists courses owned by a lecturer.
func (s *Service) CoursesForLecturer(ctx context.Context, lecturerID int64) ([]Course, error) {
	return s.repo.CoursesForLecturer(ctx, lecturerID)
}

// CoursesForClassAndLecturer narrows a class's offerings to one lecturer.
func (s *Service) CoursesForClassAndLecturer(ctx context.Context, classID, lecturerID int64) ([]Offering, error) {
	all, err := s.CoursesForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	var res []Offering
	for _, o := range all {
		if o.LecturerID != nil && *o.LecturerID == lecturerID {
			res = append(res, o)
		}
	}
	return res, nil
}

// ClassIDOfStudent returns the class a student belongs to; 0 when the
// student is unknown or unassigned.
func (s *Service) ClassIDOfStudent(ctx context.Context, studentID int64) (int64, error) {
	return s.repo.ClassIDOfStudent(ctx, studentID)
}

// IsLecturerAssigned reports whether a lecturer teaches a course to a class.
func (s *Service) IsLecturerAssigned(ctx context.Context, lecturerID, classID, courseID int64) (bool, error) {
	return s.repo.IsLecturerAssigned(ctx, lecturerID, classID, courseID)
}

// dedupeOfferings keeps the first row per course id. The mapping table is
// the only source of duplication, so first-wins is deterministic under the
// repo's course_name ordering.
func dedupeOfferings(rows []Offering) []Offering {
	seen := make(map[int64]bool, len(rows))
	res := make([]Offering, 0, len(rows))
	for _, o := range rows {
		if seen[o.Course.ID] {
			continue
		}
		seen[o.Course.ID] = true
		res = append(res, o)
	}
	return res
}

// dedupeAssignments keeps the first row per (class, course) pair.
func dedupeAssignments(rows []Assignment) []Assignment {
	type pair struct{ class, course int64 }
	seen := make(map[pair]bool, len(rows))
	res := make([]Assignment, 0, len(rows))
	for _, a := range rows {
		k := pair{a.ClassID, a.CourseID}
		if seen[k] {
			continue
		}
		seen[k] = true
		res = append(res, a)
	}
	return res
}
