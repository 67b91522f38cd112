package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-management-api/internal/models"
	appErrors "github.com/noah-isme/student-management-api/pkg/errors"
)

type registrationCounter struct {
	results map[string]int
}

func (r *registrationCounter) RecordRegistration(result string) {
	if r.results == nil {
		r.results = map[string]int{}
	}
	r.results[result]++
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

func newTestStudentService(store *fakeStudentStore, now time.Time) (*StudentService, *registrationCounter) {
	counter := &registrationCounter{}
	svc := NewStudentService(StudentServiceParams{Store: store, Metrics: counter, Clock: fixedClock(now)})
	return svc, counter
}

func registration(mail string, courses ...string) models.StudentDetail {
	detail := models.StudentDetail{
		Student: models.Student{
			FullName: "Taro Yamada",
			Furigana: "やまだたろう",
			Mail:     mail,
			Age:      20,
			Gender:   models.GenderMale,
		},
	}
	for _, name := range courses {
		detail.StudentCourses = append(detail.StudentCourses, models.StudentCourse{CourseName: name})
	}
	return detail
}

func seededStore() *fakeStudentStore {
	store := newFakeStudentStore()
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	store.seed(
		models.Student{ID: 1, FullName: "Taro Yamada", Furigana: "やまだたろう", Nickname: strPtr("taro"), Mail: "taro@example.com", Age: 20, Gender: models.GenderMale},
		[]models.StudentCourse{
			{ID: 10, StudentID: 1, CourseName: "Java", StartDate: start, EndDate: start.AddDate(1, 0, 0)},
			{ID: 11, StudentID: 1, CourseName: "Ruby", StartDate: start, EndDate: start.AddDate(1, 0, 0)},
		},
		[]models.CourseStatus{{ID: 20, CourseID: 10, Status: models.StatusConfirmed}},
	)
	store.seed(
		models.Student{ID: 2, FullName: "Hanako Sato", Furigana: "さとうはなこ", Mail: "hanako@example.com", Age: 34, Gender: models.GenderFemale, Deleted: true},
		[]models.StudentCourse{{ID: 12, StudentID: 2, CourseName: "Go", StartDate: start, EndDate: start.AddDate(1, 0, 0)}},
		nil,
	)
	return store
}

func TestStudentServiceSearchStudentsWithoutCriteriaReturnsEverything(t *testing.T) {
	svc, _ := newTestStudentService(seededStore(), time.Now())

	details, err := svc.SearchStudents(context.Background(), models.StudentSearchCriteria{})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, int64(1), details[0].Student.ID)
	assert.Len(t, details[0].StudentCourses, 2)
	assert.Equal(t, int64(2), details[1].Student.ID)
	assert.True(t, details[1].Student.Deleted)
}

func TestStudentServiceSearchStudentsAppliesCriteria(t *testing.T) {
	svc, _ := newTestStudentService(seededStore(), time.Now())
	minAge, maxAge := 10, 30

	details, err := svc.SearchStudents(context.Background(), models.StudentSearchCriteria{
		FullName:   strPtr("Taro"),
		MinAge:     &minAge,
		MaxAge:     &maxAge,
		CourseName: strPtr("Java"),
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Taro Yamada", details[0].Student.FullName)
}

func TestStudentServiceSearchStudentNotFoundSkipsCourseLookup(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())

	_, err := svc.SearchStudent(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "student 999 not found", err.Error())
	assert.Zero(t, store.calls["ListCoursesByStudent"])
}

func TestStudentServiceSearchStudent(t *testing.T) {
	svc, _ := newTestStudentService(seededStore(), time.Now())

	detail, err := svc.SearchStudent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Hanako Sato", detail.Student.FullName)
	require.Len(t, detail.StudentCourses, 1)
	assert.Equal(t, "Go", detail.StudentCourses[0].CourseName)
}

func TestStudentServiceSearchCourse(t *testing.T) {
	svc, _ := newTestStudentService(seededStore(), time.Now())

	detail, err := svc.SearchCourse(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, detail.CourseStatus)
	assert.Equal(t, models.StatusConfirmed, detail.CourseStatus.Status)

	detail, err = svc.SearchCourse(context.Background(), 12)
	require.NoError(t, err)
	assert.Nil(t, detail.CourseStatus)

	_, err = svc.SearchCourse(context.Background(), 77)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceSearchCoursesByStatus(t *testing.T) {
	svc, _ := newTestStudentService(seededStore(), time.Now())
	confirmed := models.StatusConfirmed

	details, err := svc.SearchCourses(context.Background(), models.CourseSearchCriteria{Status: &confirmed})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, int64(10), details[0].StudentCourse.ID)

	all, err := svc.SearchCourses(context.Background(), models.CourseSearchCriteria{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStudentServiceRegisterStudent(t *testing.T) {
	store := newFakeStudentStore()
	now := time.Date(2024, 5, 10, 8, 30, 15, 123456789, time.FixedZone("JST", 9*60*60))
	svc, counter := newTestStudentService(store, now)

	input := registration("x@example.com", "Java", "Ruby")
	input.Student.ID = 42
	input.Student.Deleted = true
	input.StudentCourses[0].StudentID = 99

	result, err := svc.RegisterStudent(context.Background(), input)
	require.NoError(t, err)

	student := result.StudentDetail.Student
	assert.NotZero(t, student.ID)
	assert.NotEqual(t, int64(42), student.ID)
	assert.False(t, student.Deleted)

	start := now.UTC().Truncate(time.Microsecond)
	require.Len(t, result.StudentDetail.StudentCourses, 2)
	require.Len(t, result.CourseDetails, 2)
	for i, course := range result.StudentDetail.StudentCourses {
		assert.Equal(t, student.ID, course.StudentID)
		assert.True(t, course.StartDate.Equal(start))
		assert.True(t, course.EndDate.Equal(start.AddDate(1, 0, 0)))
		assert.False(t, course.StartDate.After(course.EndDate))

		detail := result.CourseDetails[i]
		assert.Equal(t, course, detail.StudentCourse)
		require.NotNil(t, detail.CourseStatus)
		assert.Equal(t, course.ID, detail.CourseStatus.CourseID)
		assert.Equal(t, models.StatusProvisional, detail.CourseStatus.Status)
	}

	// caller input is left untouched
	assert.Equal(t, int64(42), input.Student.ID)
	assert.Equal(t, int64(99), input.StudentCourses[0].StudentID)

	assert.Len(t, store.state.students, 1)
	assert.Len(t, store.state.courses, 2)
	assert.Len(t, store.state.statuses, 2)
	assert.Equal(t, 1, counter.results["created"])
}

func TestStudentServiceRegisterStudentDuplicateMail(t *testing.T) {
	store := newFakeStudentStore()
	svc, counter := newTestStudentService(store, time.Now())

	_, err := svc.RegisterStudent(context.Background(), registration("x@example.com", "Java"))
	require.NoError(t, err)

	_, err = svc.RegisterStudent(context.Background(), registration("x@example.com", "Java"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateEmail))

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "x@example.com", appErr.Details["mail"])

	assert.Len(t, store.state.students, 1)
	assert.Len(t, store.state.courses, 1)
	assert.Equal(t, 1, store.calls["CreateStudent"])
	assert.Equal(t, 1, counter.results["duplicate"])
}

func TestStudentServiceRegisterStudentDuplicateMailOfDeletedStudent(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())

	_, err := svc.RegisterStudent(context.Background(), registration("hanako@example.com"))
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateEmail))
	assert.Zero(t, store.writes())
}

func TestStudentServiceRegisterStudentRollsBackOnStatusFailure(t *testing.T) {
	store := newFakeStudentStore()
	store.failOn["CreateStatus"] = errors.New("connection reset")
	svc, counter := newTestStudentService(store, time.Now())

	_, err := svc.RegisterStudent(context.Background(), registration("x@example.com", "Java"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, 1, store.calls["CreateCourse"])

	details, err := svc.SearchStudents(context.Background(), models.StudentSearchCriteria{})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Empty(t, store.state.courses)
	assert.Equal(t, 1, counter.results["failed"])
}

func TestStudentServiceRegisterStudentLeapDay(t *testing.T) {
	store := newFakeStudentStore()
	svc, _ := newTestStudentService(store, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC))

	result, err := svc.RegisterStudent(context.Background(), registration("leap@example.com", "Java"))
	require.NoError(t, err)
	course := result.StudentDetail.StudentCourses[0]
	assert.Equal(t, time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC), course.EndDate)
}

func TestStudentServiceRegisterStudentValidation(t *testing.T) {
	store := newFakeStudentStore()
	svc, counter := newTestStudentService(store, time.Now())

	invalid := registration("not-a-mail", "Java")
	_, err := svc.RegisterStudent(context.Background(), invalid)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	badGender := registration("x@example.com")
	badGender.Student.Gender = models.Gender("robot")
	_, err = svc.RegisterStudent(context.Background(), badGender)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidEnum))

	blankCourse := registration("x@example.com", "")
	_, err = svc.RegisterStudent(context.Background(), blankCourse)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	noGender := registration("x@example.com")
	noGender.Student.Gender = ""
	_, err = svc.RegisterStudent(context.Background(), noGender)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.False(t, appErrors.Is(err, appErrors.ErrInvalidEnum))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "gender", appErr.Details["field"])

	assert.Zero(t, store.writes())
	assert.Equal(t, 4, counter.results["invalid"])
}

func TestStudentServiceUpdateStudentRequiresGender(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())

	detail := registration("taro@example.com")
	detail.Student.ID = 1
	detail.Student.Gender = ""

	err := svc.UpdateStudent(context.Background(), detail)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, store.writes())
}

func TestStudentServiceUpdateStudent(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())

	detail, err := svc.SearchStudent(context.Background(), 1)
	require.NoError(t, err)
	originalStart := detail.StudentCourses[0].StartDate

	detail.Student.Remark = strPtr("moved to evening class")
	detail.Student.Deleted = true
	detail.StudentCourses[0].CourseName = "Java Advanced"
	detail.StudentCourses[0].StartDate = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.UpdateStudent(context.Background(), *detail))

	updated, err := svc.SearchStudent(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, updated.Student.Deleted)
	require.NotNil(t, updated.Student.Remark)
	assert.Equal(t, "moved to evening class", *updated.Student.Remark)
	assert.Equal(t, "Java Advanced", updated.StudentCourses[0].CourseName)
	assert.Equal(t, originalStart, updated.StudentCourses[0].StartDate)
}

func TestStudentServiceUpdateStudentMissingStudent(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())

	detail := registration("ghost@example.com")
	detail.Student.ID = 404
	err := svc.UpdateStudent(context.Background(), detail)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, store.writes())
}

func TestStudentServiceUpdateStudentMissingCourse(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())

	detail := registration("taro@example.com")
	detail.Student.ID = 1
	detail.Student.FullName = "Renamed"
	detail.StudentCourses = []models.StudentCourse{
		{ID: 10, CourseName: "Java 2"},
		{ID: 500, CourseName: "Missing"},
		{ID: 11, CourseName: "Ruby 2"},
	}

	err := svc.UpdateStudent(context.Background(), detail)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, appErrors.EntityCourse, appErr.Details["entity"])
	assert.Equal(t, int64(500), appErr.Details["id"])

	assert.Zero(t, store.writes())
	assert.Equal(t, "Taro Yamada", store.state.students[0].FullName)
	assert.Equal(t, "Java", store.state.courses[0].CourseName)
}

func TestStudentServiceUpdateStudentRejectsForeignCourse(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())

	detail := registration("taro@example.com")
	detail.Student.ID = 1
	detail.StudentCourses = []models.StudentCourse{{ID: 12, CourseName: "Stolen"}}

	err := svc.UpdateStudent(context.Background(), detail)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, store.writes())
}

func TestStudentServiceUpdateCourseStatus(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())
	ctx := context.Background()

	// backwards moves are allowed
	require.NoError(t, svc.UpdateCourseStatus(ctx, models.CourseStatus{CourseID: 10, Status: models.StatusProvisional}))
	detail, err := svc.SearchCourse(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProvisional, detail.CourseStatus.Status)

	require.NoError(t, svc.UpdateCourseStatus(ctx, models.CourseStatus{CourseID: 12, Status: models.StatusCompleted}))
	detail, err = svc.SearchCourse(ctx, 12)
	require.NoError(t, err)
	require.NotNil(t, detail.CourseStatus)
	assert.Equal(t, models.StatusCompleted, detail.CourseStatus.Status)
}

func TestStudentServiceUpdateCourseStatusErrors(t *testing.T) {
	store := seededStore()
	svc, _ := newTestStudentService(store, time.Now())
	ctx := context.Background()

	err := svc.UpdateCourseStatus(ctx, models.CourseStatus{CourseID: 999, Status: models.StatusConfirmed})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	err = svc.UpdateCourseStatus(ctx, models.CourseStatus{CourseID: 10, Status: models.Status("graduated")})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidEnum))
	assert.Zero(t, store.writes())
}

func TestStudentServiceWrapsStoreFailures(t *testing.T) {
	store := seededStore()
	store.failOn["ListCourses"] = errors.New("timeout")
	svc, _ := newTestStudentService(store, time.Now())

	_, err := svc.SearchStudents(context.Background(), models.StudentSearchCriteria{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.ErrorContains(t, err, "timeout")
}

func TestAddOneYear(t *testing.T) {
	base := time.Date(2023, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), addOneYear(base))
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), addOneYear(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}
