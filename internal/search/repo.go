package search

import (
	"context"
	"database/sql"

	"luct-reporting/internal/attendance"
	"luct-reporting/internal/catalog"
	"luct-reporting/internal/report"
	"luct-reporting/internal/user"
)

// Params is one search request after scope resolution. Stream, LecturerID
// and StudentID are the mandatory scope restriction (zero = unrestricted);
// the rest are caller-supplied filters.
type Params struct {
	Q          string
	Stream     string
	LecturerID int64
	StudentID  int64
	StartDate  string
	EndDate    string
	Status     string // pending | reviewed
	MinRating  int
	MaxRating  int
	Limit      int
}

// StudentHit is a student directory row with the resolved class name.
type StudentHit struct {
	user.User
	ClassName *string `json:"class_name"`
}

// RatingHit is a student rating row with both names resolved.
type RatingHit struct {
	ID           int64   `json:"id"`
	StudentID    int64   `json:"student_id"`
	StudentName  string  `json:"student_name"`
	LecturerID   int64   `json:"lecturer_id"`
	LecturerName string  `json:"lecturer_name"`
	Rating       int     `json:"rating"`
	Comment      *string `json:"comment"`
	Stream       *string `json:"stream"`
}

// GlobalResult groups the cross-entity search used by the top bar.
type GlobalResult struct {
	Reports   []report.Row     `json:"reports"`
	Courses   []catalog.Course `json:"courses"`
	Classes   []catalog.Class  `json:"classes"`
	Lecturers []user.User      `json:"lecturers"`
}

// Repo runs the search queries.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Reports searches reports with feedback attached. The scope restriction
// goes in before any user filter.
func (r *Repo) Reports(ctx context.Context, p Params) ([]report.Row, error) {
	b := NewBuilder(`
		SELECT r.id, r.faculty_name, r.class_name, r.week_of_reporting, r.date_of_lecture,
			r.course_name, r.course_code, r.lecturer_name, r.actual_students_present, r.total_students,
			r.venue, r.scheduled_time, r.topic, r.learning_outcomes, r.recommendations, r.stream, r.created_at,
			pf.feedback, pf.created_at
		FROM reports r
		LEFT JOIN prl_feedback pf ON r.id = pf.report_id`)
	b.AndIf(p.Stream, "r.stream = ?")
	if p.LecturerID != 0 {
		b.And("r.lecturer_name = (SELECT name FROM users WHERE id = ?)", p.LecturerID)
	}
	b.Match(p.Q, "r.course_name", "r.class_name", "r.lecturer_name", "r.topic",
		"r.course_code", "r.learning_outcomes", "r.recommendations")
	b.AndIf(p.StartDate, "r.date_of_lecture >= ?")
	b.AndIf(p.EndDate, "r.date_of_lecture <= ?")
	switch p.Status {
	case "pending":
		b.And("pf.id IS NULL")
	case "reviewed":
		b.And("pf.id IS NOT NULL")
	}
	b.OrderBy("r.date_of_lecture DESC").Limit(p.Limit)

	query, args := b.SQL()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []report.Row
	for rows.Next() {
		var row report.Row
		if err := rows.Scan(&row.ID, &row.FacultyName, &row.ClassName, &row.WeekOfReporting, &row.DateOfLecture,
			&row.CourseName, &row.CourseCode, &row.LecturerName, &row.ActualStudentsPresent, &row.TotalStudents,
			&row.Venue, &row.ScheduledTime, &row.Topic, &row.LearningOutcomes, &row.Recommendations, &row.Stream,
			&row.CreatedAt, &row.PRLFeedback, &row.FeedbackDate); err != nil {
			return nil, err
		}
		if row.PRLFeedback == nil {
			row.Status = "pending"
		} else {
			row.Status = "reviewed"
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// Courses searches the course catalog.
func (r *Repo) Courses(ctx context.Context, p Params) ([]catalog.Course, error) {
	b := NewBuilder(`
		SELECT id, course_code, course_name, stream, venue, scheduled_time, lecturer_id
		FROM courses`)
	b.AndIf(p.Stream, "stream = ?")
	if p.LecturerID != 0 {
		b.And("lecturer_id = ?", p.LecturerID)
	}
	b.Match(p.Q, "course_name", "course_code", "stream")
	b.OrderBy("course_name").Limit(p.Limit)

	query, args := b.SQL()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []catalog.Course
	for rows.Next() {
		var c catalog.Course
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Stream, &c.Venue, &c.ScheduledTime, &c.LecturerID); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Students searches the student directory.
func (r *Repo) Students(ctx context.Context, p Params) ([]StudentHit, error) {
	b := NewBuilder(`
		SELECT u.id, u.name, u.email, u.role, u.faculty, u.stream, u.student_code, u.class_id, c.class_name
		FROM users u
		LEFT JOIN classes c ON u.class_id = c.id`)
	b.And("u.role = 'student'")
	b.AndIf(p.Stream, "u.stream = ?")
	if p.StudentID != 0 {
		b.And("u.id = ?", p.StudentID)
	}
	b.Match(p.Q, "u.name", "u.email", "u.student_code", "c.class_name")
	b.OrderBy("u.name").Limit(p.Limit)

	query, args := b.SQL()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []StudentHit
	for rows.Next() {
		var s StudentHit
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.Faculty, &s.Stream, &s.StudentCode, &s.ClassID, &s.ClassName); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// Lecturers searches the lecturer directory.
func (r *Repo) Lecturers(ctx context.Context, p Params) ([]user.User, error) {
	b := NewBuilder(`
		SELECT id, name, email, role, faculty, stream, student_code, class_id
		FROM users`)
	b.And("role = 'lecturer'")
	b.Match(p.Q, "name", "email", "faculty")
	b.OrderBy("name").Limit(p.Limit)
	return r.queryUsers(ctx, b)
}

// Classes searches classes.
func (r *Repo) Classes(ctx context.Context, p Params) ([]catalog.Class, error) {
	b := NewBuilder(`
		SELECT id, class_name, total_registered, faculty
		FROM classes`)
	b.Match(p.Q, "class_name", "faculty")
	b.OrderBy("faculty, class_name").Limit(p.Limit)

	query, args := b.SQL()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []catalog.Class
	for rows.Next() {
		var c catalog.Class
		if err := rows.Scan(&c.ID, &c.ClassName, &c.TotalRegistered, &c.Faculty); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Monitoring searches the attendance monitoring join.
func (r *Repo) Monitoring(ctx context.Context, p Params) ([]attendance.MonitoringRow, error) {
	b := NewBuilder(`
		SELECT a.student_id, u.name, c.id, c.course_code, c.course_name,
			a.class_id, cls.class_name, cls.faculty, c.stream, c.venue, c.scheduled_time,
			a.present, a.date, lect.name
		FROM attendance a
		JOIN classes cls ON a.class_id = cls.id
		JOIN class_courses cc ON cls.id = cc.class_id
		JOIN courses c ON cc.course_id = c.id
		JOIN users u ON a.student_id = u.id
		JOIN users lect ON c.lecturer_id = lect.id`)
	b.AndIf(p.Stream, "c.stream = ?")
	if p.LecturerID != 0 {
		b.And("c.lecturer_id = ?", p.LecturerID)
	}
	if p.StudentID != 0 {
		b.And("a.student_id = ?", p.StudentID)
	}
	b.Match(p.Q, "u.name", "c.course_name", "c.course_code", "cls.class_name", "lect.name")
	b.AndIf(p.StartDate, "DATE(a.date) >= ?")
	b.AndIf(p.EndDate, "DATE(a.date) <= ?")
	b.OrderBy("a.date DESC, c.course_name, u.name").Limit(p.Limit)

	query, args := b.SQL()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []attendance.MonitoringRow
	for rows.Next() {
		var m attendance.MonitoringRow
		if err := rows.Scan(&m.StudentID, &m.StudentName, &m.CourseID, &m.CourseCode, &m.CourseName,
			&m.ClassID, &m.ClassName, &m.Faculty, &m.Stream, &m.Venue, &m.ScheduledTime,
			&m.Present, &m.Date, &m.LecturerName); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// Ratings searches student ratings with rating bounds.
func (r *Repo) Ratings(ctx context.Context, p Params) ([]RatingHit, error) {
	b := NewBuilder(`
		SELECT r.id, r.student_id, s.name, r.lecturer_id, l.name, r.rating, r.comment, s.stream
		FROM rating r
		JOIN users s ON r.student_id = s.id
		JOIN users l ON r.lecturer_id = l.id`)
	b.AndIf(p.Stream, "s.stream = ?")
	if p.LecturerID != 0 {
		b.And("r.lecturer_id = ?", p.LecturerID)
	}
	if p.StudentID != 0 {
		b.And("r.student_id = ?", p.StudentID)
	}
	b.Match(p.Q, "s.name", "l.name", "r.comment")
	if p.MinRating != 0 {
		b.And("r.rating >= ?", p.MinRating)
	}
	if p.MaxRating != 0 {
		b.And("r.rating <= ?", p.MaxRating)
	}
	b.OrderBy("r.id DESC").Limit(p.Limit)

	query, args := b.SQL()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []RatingHit
	for rows.Next() {
		var h RatingHit
		if err := rows.Scan(&h.ID, &h.StudentID, &h.StudentName, &h.LecturerID, &h.LecturerName,
			&h.Rating, &h.Comment, &h.Stream); err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	return res, rows.Err()
}

func (r *Repo) queryUsers(ctx context.Context, b *Builder) ([]user.User, error) {
	query, args := b.SQL()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Faculty, &u.Stream, &u.StudentCode, &u.ClassID); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
