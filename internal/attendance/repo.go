package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Record is the current attendance state for a (student, class) pair. The
// upsert key means at most one row exists per pair; re-marking overwrites.
type Record struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	ClassID   int64     `json:"class_id"`
	Present   int       `json:"present"`
	Date      time.Time `json:"date"`
}

// MonitoringRow is one attendance row joined through the catalog, as the
// monitoring dashboards consume it.
type MonitoringRow struct {
	StudentID     int64     `json:"student_id"`
	StudentName   string    `json:"student_name"`
	CourseID      int64     `json:"course_id"`
	CourseCode    string    `json:"course_code"`
	CourseName    string    `json:"course_name"`
	ClassID       int64     `json:"class_id"`
	ClassName     string    `json:"class_name"`
	Faculty       string    `json:"faculty"`
	Stream        string    `json:"stream"`
	Venue         *string   `json:"venue"`
	ScheduledTime *string   `json:"scheduled_time"`
	Present       int       `json:"present"`
	Date          time.Time `json:"date"`
	LecturerName  string    `json:"lecturer_name"`
}

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the current present flag for (student, class). Repeating
// the same call leaves the same observable state; no history is kept.
func (r *Repository) Upsert(ctx context.Context, studentID, classID int64, present int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (student_id, class_id, present, date)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (student_id, class_id) DO UPDATE SET present = EXCLUDED.present
	`, studentID, classID, present)
	return err
}

// Get returns the current record for a pair, or nil.
func (r *Repository) Get(ctx context.Context, studentID, classID int64) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, class_id, present, date
		FROM attendance
		WHERE student_id = $1 AND class_id = $2
	`, studentID, classID)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.StudentID, &rec.ClassID, &rec.Present, &rec.Date); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// MonitoringFilter narrows the monitoring join. Zero values mean
// unfiltered; callers pass an empty Stream when the scope is unrestricted.
type MonitoringFilter struct {
	LecturerID int64
	Stream     string
}

// Monitoring joins attendance through class→mapping→course→users into the
// dashboard rows, most recent first.
func (r *Repository) Monitoring(ctx context.Context, f MonitoringFilter) ([]MonitoringRow, error) {
	query := `
		SELECT
			a.student_id, u.name, c.id, c.course_code, c.course_name,
			a.class_id, cls.class_name, cls.faculty, c.stream, c.venue, c.scheduled_time,
			a.present, a.date, lect.name
		FROM attendance a
		JOIN classes cls ON a.class_id = cls.id
		JOIN class_courses cc ON cls.id = cc.class_id
		JOIN courses c ON cc.course_id = c.id
		JOIN users u ON a.student_id = u.id
		JOIN users lect ON c.lecturer_id = lect.id`
	args := []any{}
	clauses := []string{}
	if f.LecturerID != 0 {
		clauses = append(clauses, fmt.Sprintf("c.lecturer_id = $%d", len(args)+1))
		args = append(args, f.LecturerID)
	}
	if f.Stream != "" {
		clauses = append(clauses, fmt.Sprintf("c.stream = $%d", len(args)+1))
		args = append(args, f.Stream)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY a.date DESC, c.course_name, u.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []MonitoringRow
	for rows.Next() {
		var m MonitoringRow
		if err := rows.Scan(&m.StudentID, &m.StudentName, &m.CourseID, &m.CourseCode, &m.CourseName,
			&m.ClassID, &m.ClassName, &m.Faculty, &m.Stream, &m.Venue, &m.ScheduledTime,
			&m.Present, &m.Date, &m.LecturerName); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
