package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Report is a lecturer-submitted lecture summary. Names are snapshots taken
// at submission time, not live references; renaming catalog entities later
// never alters a stored report.
type Report struct {
	ID                    int64     `json:"id"`
	FacultyName           string    `json:"faculty_name"`
	ClassName             string    `json:"class_name"`
	WeekOfReporting       string    `json:"week_of_reporting"`
	DateOfLecture         time.Time `json:"date_of_lecture"`
	CourseName            string    `json:"course_name"`
	CourseCode            string    `json:"course_code"`
	LecturerName          string    `json:"lecturer_name"`
	ActualStudentsPresent int       `json:"actual_students_present"`
	TotalStudents         int       `json:"total_students"`
	Venue                 *string   `json:"venue"`
	ScheduledTime         *string   `json:"scheduled_time"`
	Topic                 *string   `json:"topic"`
	LearningOutcomes      *string   `json:"learning_outcomes"`
	Recommendations       *string   `json:"recommendations"`
	Stream                string    `json:"stream"`
	CreatedAt             time.Time `json:"created_at"`
}

// Row is a report with its optional feedback attachment. Status is derived
// from feedback presence, never stored.
type Row struct {
	Report
	PRLFeedback  *string    `json:"prl_feedback"`
	FeedbackDate *time.Time `json:"feedback_date"`
	Status       string     `json:"status"`
}

// Feedback is the 1:1 PRL commentary on a report.
type Feedback struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	PRLID     int64     `json:"prl_id"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows report listings. Zero values mean unfiltered.
type Filter struct {
	Stream     string // exact stream; empty = all
	LecturerID int64  // match by the lecturer's name snapshot
	StartDate  string // inclusive, YYYY-MM-DD
	EndDate    string // inclusive, YYYY-MM-DD
}

// Repo persists reports and feedback in Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const reportCols = `r.id, r.faculty_name, r.class_name, r.week_of_reporting, r.date_of_lecture,
	r.course_name, r.course_code, r.lecturer_name, r.actual_students_present, r.total_students,
	r.venue, r.scheduled_time, r.topic, r.learning_outcomes, r.recommendations, r.stream, r.created_at`

func scanRow(rows *sql.Rows) (Row, error) {
	var row Row
	err := rows.Scan(&row.ID, &row.FacultyName, &row.ClassName, &row.WeekOfReporting, &row.DateOfLecture,
		&row.CourseName, &row.CourseCode, &row.LecturerName, &row.ActualStudentsPresent, &row.TotalStudents,
		&row.Venue, &row.ScheduledTime, &row.Topic, &row.LearningOutcomes, &row.Recommendations, &row.Stream,
		&row.CreatedAt, &row.PRLFeedback, &row.FeedbackDate)
	if err != nil {
		return Row{}, err
	}
	if row.PRLFeedback == nil {
		row.Status = "pending"
	} else {
		row.Status = "reviewed"
	}
	return row, nil
}

// Create inserts a report and returns its id. Reports are append-only.
func (r *Repo) Create(ctx context.Context, rep Report) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reports (
			faculty_name, class_name, week_of_reporting, date_of_lecture,
			course_name, course_code, lecturer_name, actual_students_present,
			total_students, venue, scheduled_time, topic, learning_outcomes,
			recommendations, stream
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id
	`, rep.FacultyName, rep.ClassName, rep.WeekOfReporting, rep.DateOfLecture,
		rep.CourseName, rep.CourseCode, rep.LecturerName, rep.ActualStudentsPresent,
		rep.TotalStudents, rep.Venue, rep.ScheduledTime, rep.Topic, rep.LearningOutcomes,
		rep.Recommendations, rep.Stream).Scan(&id)
	return id, err
}

// Exists reports whether a report id resolves to a row.
func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM reports WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns reports with their feedback attachment, newest lecture
// first. Feedback presence is read via the outer join, not a stored flag.
func (r *Repo) List(ctx context.Context, f Filter) ([]Row, error) {
	query := `
		SELECT ` + reportCols + `, pf.feedback, pf.created_at
		FROM reports r
		LEFT JOIN prl_feedback pf ON r.id = pf.report_id`
	args := []any{}
	clauses := []string{}
	if f.Stream != "" {
		clauses = append(clauses, fmt.Sprintf("r.stream = $%d", len(args)+1))
		args = append(args, f.Stream)
	}
	if f.LecturerID != 0 {
		clauses = append(clauses, fmt.Sprintf("r.lecturer_name = (SELECT name FROM users WHERE id = $%d)", len(args)+1))
		args = append(args, f.LecturerID)
	}
	if f.StartDate != "" {
		clauses = append(clauses, fmt.Sprintf("r.date_of_lecture >= $%d", len(args)+1))
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		clauses = append(clauses, fmt.Sprintf("r.date_of_lecture <= $%d", len(args)+1))
		args = append(args, f.EndDate)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY r.date_of_lecture DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// UpsertFeedback attaches or replaces the feedback on a report. Re-review
// overwrites text and timestamp; there is no way back to pending.
func (r *Repo) UpsertFeedback(ctx context.Context, reportID, prlID int64, text string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prl_feedback (report_id, prl_id, feedback, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (report_id) DO UPDATE SET feedback = EXCLUDED.feedback, prl_id = EXCLUDED.prl_id, created_at = NOW()
	`, reportID, prlID, text)
	return err
}
