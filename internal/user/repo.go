package user

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// User is an identity row. PasswordHash never leaves the service boundary.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Faculty      *string   `json:"faculty,omitempty"`
	Stream       *string   `json:"stream,omitempty"`
	StudentCode  *string   `json:"student_code,omitempty"`
	ClassID      *int64    `json:"class_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repo persists users in Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const userCols = `id, name, email, password, role, faculty, stream, student_code, class_id, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Faculty, &u.Stream, &u.StudentCode, &u.ClassID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns the new id.
func (r *Repo) Create(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, role, stream, class_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash, u.Role, u.Stream, u.ClassID).Scan(&id)
	return id, err
}

// GetByEmail returns the user with the given email (case-insensitive), or nil.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row)
}

// GetByID returns a user by id, or nil when absent.
func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+` FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// GetWithRole returns the user only when it holds the given role.
func (r *Repo) GetWithRole(ctx context.Context, id int64, role string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+` FROM users WHERE id = $1 AND role = $2
	`, id, role)
	return scanUser(row)
}

// ListByRole returns all users of a role ordered by name.
func (r *Repo) ListByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userCols+` FROM users WHERE role = $1 ORDER BY name
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// IsStudentInClass reports whether the user belongs to the given class.
func (r *Repo) IsStudentInClass(ctx context.Context, studentID, classID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM users WHERE id = $1 AND class_id = $2
	`, studentID, classID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
