package rating

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// StudentRating is one student's current rating of a lecturer. The
// (student, lecturer) pair is unique; re-submission replaces.
type StudentRating struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	LecturerID int64     `json:"lecturer_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClassRating is a lecturer's current self-rating on a (class, course). The
// (lecturer, class, course) triple is unique; re-submission replaces.
type ClassRating struct {
	ID         int64     `json:"id"`
	LecturerID int64     `json:"lecturer_id"`
	ClassID    int64     `json:"class_id"`
	CourseID   int64     `json:"course_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// StudentRatingDetail joins a student rating with both user names.
type StudentRatingDetail struct {
	StudentRating
	LecturerName  string  `json:"lecturer_name"`
	LecturerEmail string  `json:"lecturer_email"`
	StudentName   string  `json:"student_name"`
	StudentCode   *string `json:"student_code"`
	Stream        *string `json:"stream"`
}

// ClassRatingDetail joins a class rating with its catalog names.
type ClassRatingDetail struct {
	ClassRating
	LecturerName string `json:"lecturer_name"`
	CourseName   string `json:"course_name"`
	CourseCode   string `json:"course_code"`
	Stream       string `json:"stream"`
	ClassName    string `json:"class_name"`
}

// LecturerAverage is the per-lecturer aggregate over current student
// ratings. RecentComment is the comment on the highest-id row in scope.
type LecturerAverage struct {
	LecturerID    int64   `json:"lecturer_id"`
	LecturerName  string  `json:"lecturer_name"`
	Average       float64 `json:"average_rating"`
	Count         int     `json:"total_ratings"`
	RecentComment *string `json:"recent_feedback"`
}

// UpsertResult reports whether an upsert created or updated its row.
type UpsertResult struct {
	ID     int64  `json:"id"`
	Action string `json:"action"`
}

// DetailFilter narrows the detail listings. Zero values mean unfiltered.
type DetailFilter struct {
	Stream    string
	StartDate string
	EndDate   string
}

// Repo persists both rating ledgers in Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// UpsertStudentRating writes the current rating for (student, lecturer).
// xmax = 0 distinguishes a fresh insert from a conflict update.
func (r *Repo) UpsertStudentRating(ctx context.Context, sr StudentRating) (UpsertResult, error) {
	var res UpsertResult
	var inserted bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rating (student_id, lecturer_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, lecturer_id) DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING id, (xmax = 0) AS inserted
	`, sr.StudentID, sr.LecturerID, sr.Rating, sr.Comment).Scan(&res.ID, &inserted)
	if err != nil {
		return UpsertResult{}, err
	}
	if inserted {
		res.Action = "created"
	} else {
		res.Action = "updated"
	}
	return res, nil
}

// UpsertClassRating writes the current self-rating for the triple.
func (r *Repo) UpsertClassRating(ctx context.Context, cr ClassRating) (UpsertResult, error) {
	var res UpsertResult
	var inserted bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO lecturer_class_ratings (lecturer_id, class_id, course_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lecturer_id, class_id, course_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`, cr.LecturerID, cr.ClassID, cr.CourseID, cr.Rating, cr.Comment).Scan(&res.ID, &inserted)
	if err != nil {
		return UpsertResult{}, err
	}
	if inserted {
		res.Action = "created"
	} else {
		res.Action = "updated"
	}
	return res, nil
}

// RatingsByStudent lists a student's current ratings, newest id first.
func (r *Repo) RatingsByStudent(ctx context.Context, studentID int64) ([]StudentRatingDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.student_id, r.lecturer_id, r.rating, r.comment, r.created_at,
			u.name, u.email
		FROM rating r
		JOIN users u ON r.lecturer_id = u.id
		WHERE r.student_id = $1
		ORDER BY r.id DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []StudentRatingDetail
	for rows.Next() {
		var d StudentRatingDetail
		if err := rows.Scan(&d.ID, &d.StudentID, &d.LecturerID, &d.Rating, &d.Comment, &d.CreatedAt,
			&d.LecturerName, &d.LecturerEmail); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// ClassRatingsByLecturer lists a lecturer's current self-ratings.
func (r *Repo) ClassRatingsByLecturer(ctx context.Context, lecturerID int64) ([]ClassRatingDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT lcr.id, lcr.lecturer_id, lcr.class_id, lcr.course_id, lcr.rating, lcr.comment, lcr.created_at,
			u.name, co.course_name, co.course_code, co.stream, c.class_name
		FROM lecturer_class_ratings lcr
		JOIN users u ON lcr.lecturer_id = u.id
		JOIN courses co ON lcr.course_id = co.id
		JOIN classes c ON lcr.class_id = c.id
		WHERE lcr.lecturer_id = $1
		ORDER BY lcr.created_at DESC
	`, lecturerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClassRatingDetails(rows)
}

// StudentRatings lists rating rows with names, scoped by the students'
// stream and an optional date window.
func (r *Repo) StudentRatings(ctx context.Context, f DetailFilter) ([]StudentRatingDetail, error) {
	query := `
		SELECT r.id, r.student_id, r.lecturer_id, r.rating, r.comment, r.created_at,
			l.name, l.email, s.name, s.student_code, s.stream
		FROM rating r
		JOIN users l ON r.lecturer_id = l.id
		JOIN users s ON r.student_id = s.id`
	args := []any{}
	clauses := []string{}
	if f.Stream != "" {
		clauses = append(clauses, fmt.Sprintf("s.stream = $%d", len(args)+1))
		args = append(args, f.Stream)
	}
	if f.StartDate != "" {
		clauses = append(clauses, fmt.Sprintf("DATE(r.created_at) >= $%d", len(args)+1))
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		clauses = append(clauses, fmt.Sprintf("DATE(r.created_at) <= $%d", len(args)+1))
		args = append(args, f.EndDate)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []StudentRatingDetail
	for rows.Next() {
		var d StudentRatingDetail
		if err := rows.Scan(&d.ID, &d.StudentID, &d.LecturerID, &d.Rating, &d.Comment, &d.CreatedAt,
			&d.LecturerName, &d.LecturerEmail, &d.StudentName, &d.StudentCode, &d.Stream); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// ClassRatings lists self-rating rows with names, scoped by the course
// stream and an optional date window.
func (r *Repo) ClassRatings(ctx context.Context, f DetailFilter) ([]ClassRatingDetail, error) {
	query := `
		SELECT lcr.id, lcr.lecturer_id, lcr.class_id, lcr.course_id, lcr.rating, lcr.comment, lcr.created_at,
			l.name, co.course_name, co.course_code, co.stream, cls.class_name
		FROM lecturer_class_ratings lcr
		JOIN users l ON lcr.lecturer_id = l.id
		JOIN courses co ON lcr.course_id = co.id
		JOIN classes cls ON lcr.class_id = cls.id`
	args := []any{}
	clauses := []string{}
	if f.Stream != "" {
		clauses = append(clauses, fmt.Sprintf("co.stream = $%d", len(args)+1))
		args = append(args, f.Stream)
	}
	if f.StartDate != "" {
		clauses = append(clauses, fmt.Sprintf("DATE(lcr.created_at) >= $%d", len(args)+1))
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		clauses = append(clauses, fmt.Sprintf("DATE(lcr.created_at) <= $%d", len(args)+1))
		args = append(args, f.EndDate)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY lcr.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClassRatingDetails(rows)
}

// AverageByLecturer aggregates current student ratings per lecturer. The
// recent comment is taken from the highest-id row in scope, an
// insertion-order proxy rather than a timestamp.
func (r *Repo) AverageByLecturer(ctx context.Context, stream string) ([]LecturerAverage, error) {
	query := `
		SELECT r.lecturer_id, u.name,
			AVG(r.rating)::float AS average_rating,
			COUNT(r.id) AS total_ratings,
			(
				SELECT r2.comment
				FROM rating r2
				JOIN users s2 ON r2.student_id = s2.id
				WHERE r2.lecturer_id = r.lecturer_id`
	args := []any{}
	if stream != "" {
		query += ` AND s2.stream = $1`
		args = append(args, stream)
	}
	query += `
				ORDER BY r2.id DESC
				LIMIT 1
			) AS recent_feedback
		FROM rating r
		JOIN users u ON r.lecturer_id = u.id
		JOIN users s ON r.student_id = s.id`
	if stream != "" {
		query += ` WHERE s.stream = $1`
	}
	query += `
		GROUP BY r.lecturer_id, u.name
		ORDER BY average_rating DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []LecturerAverage
	for rows.Next() {
		var a LecturerAverage
		if err := rows.Scan(&a.LecturerID, &a.LecturerName, &a.Average, &a.Count, &a.RecentComment); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func scanClassRatingDetails(rows *sql.Rows) ([]ClassRatingDetail, error) {
	var res []ClassRatingDetail
	for rows.Next() {
		var d ClassRatingDetail
		if err := rows.Scan(&d.ID, &d.LecturerID, &d.ClassID, &d.CourseID, &d.Rating, &d.Comment, &d.CreatedAt,
			&d.LecturerName, &d.CourseName, &d.CourseCode, &d.Stream, &d.ClassName); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
