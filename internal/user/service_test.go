package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

type fakeUserRepo struct {
	users  map[int64]User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u User) (int64, error) {
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetWithRole(ctx context.Context, id int64, role string) (*User, error) {
	if u, ok := f.users[id]; ok && u.Role == role {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]User, error) {
	var res []User
	for _, u := range f.users {
		if u.Role == role {
			res = append(res, u)
		}
	}
	return res, nil
}

func (f *fakeUserRepo) IsStudentInClass(ctx context.Context, studentID, classID int64) (bool, error) {
	u, ok := f.users[studentID]
	return ok && u.ClassID != nil && *u.ClassID == classID, nil
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "pw", Role: "dean"})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "pw", Role: "prl"})
	assert.True(t, apperr.IsValidation(err), "prl needs a stream")

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "pw", Role: "student"})
	assert.True(t, apperr.IsValidation(err), "student needs a class")
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	id, err := svc.Register(context.Background(), RegisterInput{
		Name: "Thabo", Email: "Thabo@Example.COM", Password: "secret", Role: "PRL", Stream: "IT",
	})
	require.NoError(t, err)

	u := repo.users[id]
	assert.Equal(t, "thabo@example.com", u.Email)
	assert.Equal(t, scope.RolePRL, u.Role)
	require.NotNil(t, u.Stream)
	assert.Equal(t, "IT", *u.Stream)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Thabo", Email: "thabo@example.com", Password: "secret", Role: "lecturer",
	})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "THABO@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "lecturer", u.Role)

	_, err = svc.Login(ctx, "thabo@example.com", "wrong")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Login(ctx, "nobody@example.com", "secret")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Login(ctx, "", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestLecturerLookup(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterInput{
		Name: "Ms. Tau", Email: "tau@example.com", Password: "pw", Role: "lecturer",
	})
	require.NoError(t, err)

	u, err := svc.Lecturer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ms. Tau", u.Name)

	_, err = svc.Lecturer(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	ok, err := svc.HasUserWithRole(ctx, id, scope.RoleLecturer)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasUserWithRole(ctx, id, scope.RoleStudent)
	require.NoError(t, err)
	assert.False(t, ok)
}
