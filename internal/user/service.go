package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

// Repository is the storage surface the service needs.
type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetWithRole(ctx context.Context, id int64, role string) (*User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	IsStudentInClass(ctx context.Context, studentID, classID int64) (bool, error)
}

// Service handles registration, login, and directory reads.
type Service struct {
	repo Repository
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Stream   string `json:"stream"`
	ClassID  int64  `json:"class_id"`
}

// Register validates and creates a user. Stream is required for prl, class
// for student; roles are immutable after creation.
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return 0, apperr.Validationf("All fields are required")
	}
	role := strings.ToLower(in.Role)
	sc := scope.Scope{Role: role}
	if !sc.ValidRole() {
		return 0, apperr.Validationf("Invalid role")
	}
	if role == scope.RolePRL && in.Stream == "" {
		return 0, apperr.Validationf("Stream is required for PRL")
	}
	if role == scope.RoleStudent && in.ClassID == 0 {
		return 0, apperr.Validationf("Class selection is required for student")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	u := User{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hash),
		Role:         role,
	}
	switch role {
	case scope.RoleStudent:
		u.ClassID = &in.ClassID
	case scope.RolePRL:
		u.Stream = &in.Stream
	}

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperr.Validationf("Email already exists")
		}
		return 0, err
	}
	return id, nil
}

// Login verifies credentials and returns the user.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, apperr.Validationf("Email and password are required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Validationf("User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Validationf("Incorrect password")
	}
	u.Role = strings.ToLower(u.Role)
	if !(scope.Scope{Role: u.Role}).ValidRole() {
		return nil, apperr.Validationf("Unknown role")
	}
	return u, nil
}

// Lecturer returns a lecturer by id; absent yields ErrNotFound.
func (s *Service) Lecturer(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetWithRole(ctx, id, scope.RoleLecturer)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

// Lecturers lists all lecturers for dropdowns.
func (s *Service) Lecturers(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, scope.RoleLecturer)
}

// Students lists all students.
func (s *Service) Students(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, scope.RoleStudent)
}

// HasUserWithRole reports whether a user exists with the given role.
func (s *Service) HasUserWithRole(ctx context.Context, id int64, role string) (bool, error) {
	u, err := s.repo.GetWithRole(ctx, id, role)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// IsStudentInClass exposes the enrollment check used by attendance.
func (s *Service) IsStudentInClass(ctx context.Context, studentID, classID int64) (bool, error) {
	return s.repo.IsStudentInClass(ctx, studentID, classID)
}
