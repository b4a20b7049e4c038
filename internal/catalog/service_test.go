package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luct-reporting/internal/apperr"
)

type fakeCatalogRepo struct {
	offerings   map[int64][]Offering
	assignments map[int64][]Assignment
	classOf     map[int64]int64
	created     []Course
}

func (f *fakeCatalogRepo) ListCourses(ctx context.Context) ([]Course, error) { return nil, nil }
func (f *fakeCatalogRepo) CreateCourse(ctx context.Context, c Course) (int64, error) {
	f.created = append(f.created, c)
	return int64(len(f.created)), nil
}
func (f *fakeCatalogRepo) ListClasses(ctx context.Context) ([]ClassSummary, error) { return nil, nil }
func (f *fakeCatalogRepo) CreateClass(ctx context.Context, c Class) (int64, error) { return 1, nil }
func (f *fakeCatalogRepo) ListMappings(ctx context.Context) ([]Mapping, error)     { return nil, nil }
func (f *fakeCatalogRepo) CreateMapping(ctx context.Context, classID, courseID int64) (int64, error) {
	return 1, nil
}
func (f *fakeCatalogRepo) ClassIDOfStudent(ctx context.Context, studentID int64) (int64, error) {
	return f.classOf[studentID], nil
}
func (f *fakeCatalogRepo) OfferingsForClass(ctx context.Context, classID int64) ([]Offering, error) {
	return f.offerings[classID], nil
}
func (f *fakeCatalogRepo) AssignmentsForLecturer(ctx context.Context, lecturerID int64) ([]Assignment, error) {
	return f.assignments[lecturerID], nil
}
func (f *fakeCatalogRepo) CoursesForLecturer(ctx context.Context, lecturerID int64) ([]Course, error) {
	return nil, nil
}
func (f *fakeCatalogRepo) IsLecturerAssigned(ctx context.Context, lecturerID, classID, courseID int64) (bool, error) {
	return false, nil
}

func offering(courseID int64, code string, lecturer *string) Offering {
	return Offering{
		Course:       Course{ID: courseID, CourseCode: code, CourseName: code, Stream: "IT"},
		ClassID:      10,
		ClassName:    "BSCIT-1A",
		LecturerName: lecturer,
	}
}

func TestCoursesForClassDeduplicatesByCourse(t *testing.T) {
	name := "Dr. Mokoena"
	repo := &fakeCatalogRepo{offerings: map[int64][]Offering{
		10: {
			offering(1, "CS101", &name),
			offering(1, "CS101", &name), // duplicate mapping row
			offering(2, "CS102", nil),
		},
	}}
	svc := NewService(repo, nil, 0)

	got, err := svc.CoursesForClass(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Course.ID)
	assert.Equal(t, int64(2), got[1].Course.ID)
}

func TestCoursesForClassMissingLecturerIsNil(t *testing.T) {
	repo := &fakeCatalogRepo{offerings: map[int64][]Offering{
		10: {offering(2, "CS102", nil)},
	}}
	svc := NewService(repo, nil, 0)

	got, err := svc.CoursesForClass(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].LecturerName)
}

func TestCoursesForClassUnknownClassIsEmpty(t *testing.T) {
	svc := NewService(&fakeCatalogRepo{offerings: map[int64][]Offering{}}, nil, 0)

	got, err := svc.CoursesForClass(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassesForLecturerDeduplicatesByPair(t *testing.T) {
	repo := &fakeCatalogRepo{assignments: map[int64][]Assignment{
		5: {
			{ClassID: 10, CourseID: 1, CourseCode: "CS101"},
			{ClassID: 10, CourseID: 1, CourseCode: "CS101"},
			{ClassID: 11, CourseID: 1, CourseCode: "CS101"},
		},
	}}
	svc := NewService(repo, nil, 0)

	got, err := svc.ClassesForLecturer(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCreateCourseValidation(t *testing.T) {
	svc := NewService(&fakeCatalogRepo{}, nil, 0)

	_, err := svc.CreateCourse(context.Background(), Course{CourseName: "Databases"})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.CreateCourse(context.Background(), Course{CourseCode: "CS201", CourseName: "Databases", Stream: "IT"})
	assert.NoError(t, err)
}

func TestCreateMappingValidation(t *testing.T) {
	svc := NewService(&fakeCatalogRepo{}, nil, 0)

	_, err := svc.CreateMapping(context.Background(), 0, 1)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.CreateMapping(context.Background(), 10, 1)
	assert.NoError(t, err)
}
