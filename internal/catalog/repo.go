package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// Course is catalog reference data. LecturerID is a soft reference and may
// be null (unassigned).
type Course struct {
	ID            int64   `json:"id"`
	CourseCode    string  `json:"course_code"`
	CourseName    string  `json:"course_name"`
	Stream        string  `json:"stream"`
	Venue         *string `json:"venue"`
	ScheduledTime *string `json:"scheduled_time"`
	LecturerID    *int64  `json:"lecturer_id"`
}

// Class groups students; it relates to courses only through mappings.
type Class struct {
	ID              int64  `json:"id"`
	ClassName       string `json:"class_name"`
	TotalRegistered int    `json:"total_registered"`
	Faculty         string `json:"faculty"`
}

// ClassSummary is a class with its aggregated course names, as the class
// listing shows.
type ClassSummary struct {
	Class
	CourseNames *string `json:"course_names"`
	CourseCodes *string `json:"course_codes"`
}

// Mapping is one class↔course association row. Duplicates are tolerated in
// storage and removed at read time.
type Mapping struct {
	ID         int64   `json:"id"`
	ClassID    int64   `json:"class_id"`
	CourseID   int64   `json:"course_id"`
	ClassName  string  `json:"class_name"`
	Faculty    string  `json:"faculty"`
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name"`
	LecturerID *int64  `json:"lecturer_id"`
}

// Offering is a course resolved for a class, with the lecturer's name when
// one is assigned.
type Offering struct {
	Course
	ClassID         int64   `json:"class_id"`
	ClassName       string  `json:"class_name"`
	TotalRegistered int     `json:"total_registered"`
	Faculty         string  `json:"faculty"`
	LecturerName    *string `json:"lecturer_name"`
}

// Assignment is a (class, course) pair a lecturer teaches.
type Assignment struct {
	ClassID         int64   `json:"class_id"`
	ClassName       string  `json:"class_name"`
	TotalRegistered int     `json:"total_registered"`
	Faculty         string  `json:"faculty"`
	CourseID        int64   `json:"course_id"`
	CourseCode      string  `json:"course_code"`
	CourseName      string  `json:"course_name"`
	Stream          string  `json:"stream"`
	Venue           *string `json:"venue"`
	ScheduledTime   *string `json:"scheduled_time"`
}

// Repo persists catalog data in Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// ListCourses returns every course.
func (r *Repo) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_code, course_name, stream, venue, scheduled_time, lecturer_id
		FROM courses
		ORDER BY course_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Stream, &c.Venue, &c.ScheduledTime, &c.LecturerID); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// CreateCourse inserts a course and returns its id.
func (r *Repo) CreateCourse(ctx context.Context, c Course) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (course_code, course_name, stream, venue, scheduled_time, lecturer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, c.CourseCode, c.CourseName, c.Stream, c.Venue, c.ScheduledTime, c.LecturerID).Scan(&id)
	return id, err
}

// ListClasses returns classes with their aggregated course names.
func (r *Repo) ListClasses(ctx context.Context) ([]ClassSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			c.id, c.class_name, c.total_registered, c.faculty,
			STRING_AGG(DISTINCT co.course_name, ',') AS course_names,
			STRING_AGG(DISTINCT co.course_code, ',') AS course_codes
		FROM classes c
		LEFT JOIN class_courses cc ON c.id = cc.class_id
		LEFT JOIN courses co ON cc.course_id = co.id
		GROUP BY c.id, c.class_name, c.total_registered, c.faculty
		ORDER BY c.faculty, c.class_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ClassSummary
	for rows.Next() {
		var c ClassSummary
		if err := rows.Scan(&c.ID, &c.ClassName, &c.TotalRegistered, &c.Faculty, &c.CourseNames, &c.CourseCodes); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// CreateClass inserts a class and returns its id.
func (r *Repo) CreateClass(ctx context.Context, c Class) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO classes (class_name, total_registered, faculty)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.ClassName, c.TotalRegistered, c.Faculty).Scan(&id)
	return id, err
}

// ListMappings returns joined mapping detail rows.
func (r *Repo) ListMappings(ctx context.Context) ([]Mapping, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cc.id, cc.class_id, cc.course_id,
			c.class_name, c.faculty,
			co.course_code, co.course_name, co.lecturer_id
		FROM class_courses cc
		JOIN classes c ON cc.class_id = c.id
		JOIN courses co ON cc.course_id = co.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ID, &m.ClassID, &m.CourseID, &m.ClassName, &m.Faculty, &m.CourseCode, &m.CourseName, &m.LecturerID); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// CreateMapping links a class to a course.
func (r *Repo) CreateMapping(ctx context.Context, classID, courseID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO class_courses (class_id, course_id)
		VALUES ($1, $2)
		RETURNING id
	`, classID, courseID).Scan(&id)
	return id, err
}

// ClassIDOfStudent returns the class a student belongs to, or 0.
func (r *Repo) ClassIDOfStudent(ctx context.Context, studentID int64) (int64, error) {
	var classID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT class_id FROM users WHERE id = $1
	`, studentID).Scan(&classID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return classID.Int64, nil
}

// OfferingsForClass resolves the courses taught to a class. The mapping
// table may hold duplicate pairs; callers deduplicate by course id.
func (r *Repo) OfferingsForClass(ctx context.Context, classID int64) ([]Offering, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT co.id, co.course_code, co.course_name, co.stream, co.venue, co.scheduled_time, co.lecturer_id,
			c.id, c.class_name, c.total_registered, c.faculty,
			u.name AS lecturer_name
		FROM class_courses cc
		JOIN courses co ON cc.course_id = co.id
		JOIN classes c ON cc.class_id = c.id
		LEFT JOIN users u ON co.lecturer_id = u.id
		WHERE cc.class_id = $1
		ORDER BY co.course_name
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Offering
	for rows.Next() {
		var o Offering
		if err := rows.Scan(&o.ID, &o.CourseCode, &o.CourseName, &o.Stream, &o.Venue, &o.ScheduledTime, &o.LecturerID,
			&o.ClassID, &o.ClassName, &o.TotalRegistered, &o.Faculty, &o.LecturerName); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

// AssignmentsForLecturer resolves the (class, course) pairs a lecturer
// teaches. Duplicate mapping rows surface here too; callers deduplicate by
// the (class, course) pair.
func (r *Repo) AssignmentsForLecturer(ctx context.Context, lecturerID int64) ([]Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.class_name, c.total_registered, c.faculty,
			co.id, co.course_code, co.course_name, co.stream, co.venue, co.scheduled_time
		FROM courses co
		JOIN class_courses cc ON co.id = cc.course_id
		JOIN classes c ON cc.class_id = c.id
		WHERE co.lecturer_id = $1
		ORDER BY c.class_name, co.course_name
	`, lecturerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ClassID, &a.ClassName, &a.TotalRegistered, &a.Faculty,
			&a.CourseID, &a.CourseCode, &a.CourseName, &a.Stream, &a.Venue, &a.ScheduledTime); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// CoursesForLecturer lists courses owned by a lecturer.
func (r *Repo) CoursesForLecturer(ctx context.Context, lecturerID int64) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_code, course_name, stream, venue, scheduled_time, lecturer_id
		FROM courses
		WHERE lecturer_id = $1
		ORDER BY course_name
	`, lecturerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Stream, &c.Venue, &c.ScheduledTime, &c.LecturerID); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// IsLecturerAssigned reports whether the lecturer teaches the given course
// to the given class.
func (r *Repo) IsLecturerAssigned(ctx context.Context, lecturerID, classID, courseID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM courses co
		JOIN class_courses cc ON co.id = cc.course_id
		WHERE co.lecturer_id = $1 AND cc.class_id = $2 AND co.id = $3
		LIMIT 1
	`, lecturerID, classID, courseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
