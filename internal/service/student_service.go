package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-management-api/internal/models"
	"github.com/noah-isme/student-management-api/internal/repository"
	appErrors "github.com/noah-isme/student-management-api/pkg/errors"
)

type studentStore interface {
	repository.StudentTx
	WithinTx(ctx context.Context, fn func(tx repository.StudentTx) error) error
}

type registrationRecorder interface {
	RecordRegistration(result string)
}

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Store     studentStore
	Validator *validator.Validate
	Logger    *zap.Logger
	Metrics   registrationRecorder
	Clock     func() time.Time
}

// StudentService handles student, course and enrollment status use-cases.
type StudentService struct {
	store     studentStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   registrationRecorder
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(params StudentServiceParams) *StudentService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &StudentService{store: params.Store, validator: validate, logger: logger, metrics: params.Metrics, now: clock}
}

// SearchStudents returns every student detail matching criteria, in store order.
func (s *StudentService) SearchStudents(ctx context.Context, criteria models.StudentSearchCriteria) ([]models.StudentDetail, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list students")
	}
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list courses")
	}
	return NewStudentMatcher(criteria).Filter(AssembleStudentDetails(students, courses)), nil
}

// SearchCourses returns every course detail matching criteria, in store order.
func (s *StudentService) SearchCourses(ctx context.Context, criteria models.CourseSearchCriteria) ([]models.CourseDetail, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list courses")
	}
	statuses, err := s.store.ListStatuses(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list course statuses")
	}
	return NewCourseMatcher(criteria).Filter(AssembleCourseDetails(courses, statuses)), nil
}

// SearchStudent returns one student with its courses.
func (s *StudentService) SearchStudent(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.store.FindStudentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound(appErrors.EntityStudent, id)
		}
		return nil, s.internal(err, "failed to load student")
	}
	courses, err := s.store.ListCoursesByStudent(ctx, student.ID)
	if err != nil {
		return nil, s.internal(err, "failed to load student courses")
	}
	return &models.StudentDetail{Student: *student, StudentCourses: courses}, nil
}

// SearchCourse returns one course with its status, which may be nil.
func (s *StudentService) SearchCourse(ctx context.Context, id int64) (*models.CourseDetail, error) {
	course, err := s.store.FindCourseByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound(appErrors.EntityCourse, id)
		}
		return nil, s.internal(err, "failed to load course")
	}
	status, err := s.store.FindStatusByCourseID(ctx, course.ID)
	if err != nil {
		return nil, s.internal(err, "failed to load course status")
	}
	return &models.CourseDetail{StudentCourse: *course, CourseStatus: status}, nil
}

// RegisterStudent creates a student, its courses and a provisional status per
// course in one transaction. Only the course name is read from each input course.
func (s *StudentService) RegisterStudent(ctx context.Context, req models.StudentDetail) (*models.IntegratedDetail, error) {
	if err := s.validateDetail(req); err != nil {
		s.recordRegistration("invalid")
		return nil, err
	}

	start := s.now().UTC().Truncate(time.Microsecond)
	end := addOneYear(start)

	var result *models.IntegratedDetail
	err := s.store.WithinTx(ctx, func(tx repository.StudentTx) error {
		taken, err := tx.ExistsByMail(ctx, req.Student.Mail)
		if err != nil {
			return s.internal(err, "failed to validate mail")
		}
		if taken {
			return appErrors.DuplicateEmail(req.Student.Mail)
		}

		student := req.Student
		student.ID = 0
		student.Deleted = false
		studentID, err := tx.CreateStudent(ctx, student)
		if err != nil {
			return s.internal(err, "failed to create student")
		}
		student.ID = studentID

		courses := make([]models.StudentCourse, 0, len(req.StudentCourses))
		for _, in := range req.StudentCourses {
			course := models.StudentCourse{
				StudentID:  studentID,
				CourseName: in.CourseName,
				StartDate:  start,
				EndDate:    end,
			}
			course.ID, err = tx.CreateCourse(ctx, course)
			if err != nil {
				return s.internal(err, "failed to create course")
			}
			courses = append(courses, course)
		}

		details := make([]models.CourseDetail, 0, len(courses))
		for _, course := range courses {
			status := models.CourseStatus{CourseID: course.ID, Status: models.StatusProvisional}
			status.ID, err = tx.CreateStatus(ctx, status)
			if err != nil {
				return s.internal(err, "failed to create course status")
			}
			details = append(details, models.CourseDetail{StudentCourse: course, CourseStatus: &status})
		}

		result = &models.IntegratedDetail{
			StudentDetail: models.StudentDetail{Student: student, StudentCourses: courses},
			CourseDetails: details,
		}
		return nil
	})
	if err != nil {
		if appErrors.Is(err, appErrors.ErrDuplicateEmail) {
			s.recordRegistration("duplicate")
		} else {
			s.recordRegistration("failed")
		}
		return nil, s.normalize(err, "failed to register student")
	}

	s.recordRegistration("created")
	s.logger.Info("student registered",
		zap.Int64("student_id", result.StudentDetail.Student.ID),
		zap.Int("courses", len(result.CourseDetails)))
	return result, nil
}

// UpdateStudent rewrites a student and renames its courses. Every referenced
// id is checked before the first write.
func (s *StudentService) UpdateStudent(ctx context.Context, req models.StudentDetail) error {
	if err := s.validateDetail(req); err != nil {
		return err
	}

	studentID := req.Student.ID
	err := s.store.WithinTx(ctx, func(tx repository.StudentTx) error {
		if _, err := tx.FindStudentByID(ctx, studentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFound(appErrors.EntityStudent, studentID)
			}
			return s.internal(err, "failed to load student")
		}

		for _, course := range req.StudentCourses {
			current, err := tx.FindCourseByID(ctx, course.ID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.NotFound(appErrors.EntityCourse, course.ID)
				}
				return s.internal(err, "failed to load course")
			}
			if current.StudentID != studentID {
				return appErrors.NotFound(appErrors.EntityCourse, course.ID)
			}
		}

		if err := tx.UpdateStudent(ctx, req.Student); err != nil {
			return s.internal(err, "failed to update student")
		}
		for _, course := range req.StudentCourses {
			if err := tx.UpdateCourse(ctx, models.StudentCourse{ID: course.ID, CourseName: course.CourseName}); err != nil {
				return s.internal(err, "failed to update course")
			}
		}
		return nil
	})
	if err != nil {
		return s.normalize(err, "failed to update student")
	}

	s.logger.Info("student updated",
		zap.Int64("student_id", studentID),
		zap.Bool("deleted", req.Student.Deleted),
		zap.Int("courses", len(req.StudentCourses)))
	return nil
}

// UpdateCourseStatus sets the status of an existing course. Any status may
// replace any other; no transition order is enforced.
func (s *StudentService) UpdateCourseStatus(ctx context.Context, req models.CourseStatus) error {
	if !req.Status.Valid() {
		return appErrors.InvalidEnum("status", string(req.Status))
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course status payload")
	}

	err := s.store.WithinTx(ctx, func(tx repository.StudentTx) error {
		if _, err := tx.FindCourseByID(ctx, req.CourseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFound(appErrors.EntityCourse, req.CourseID)
			}
			return s.internal(err, "failed to load course")
		}
		if err := tx.UpdateStatus(ctx, req); err != nil {
			return s.internal(err, "failed to update course status")
		}
		return nil
	})
	if err != nil {
		return s.normalize(err, "failed to update course status")
	}

	s.logger.Info("course status updated", zap.Int64("course_id", req.CourseID), zap.String("status", string(req.Status)))
	return nil
}

func (s *StudentService) validateDetail(detail models.StudentDetail) error {
	if detail.Student.Gender == "" {
		err := appErrors.Clone(appErrors.ErrValidation, "gender is required")
		err.Details = map[string]interface{}{"field": "gender"}
		return err
	}
	if !detail.Student.Gender.Valid() {
		return appErrors.InvalidEnum("gender", string(detail.Student.Gender))
	}
	if err := s.validator.Struct(detail); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	return nil
}

// internal wraps store failures, passing typed errors through untouched.
func (s *StudentService) internal(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// normalize converts errors escaping a transaction, such as begin or commit failures.
func (s *StudentService) normalize(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return s.internal(err, message)
}

func (s *StudentService) recordRegistration(result string) {
	if s.metrics != nil {
		s.metrics.RecordRegistration(result)
	}
}

// addOneYear moves t forward one calendar year; Feb 29 lands on Feb 28.
func addOneYear(t time.Time) time.Time {
	if t.Month() == time.February && t.Day() == 29 {
		return time.Date(t.Year()+1, time.February, 28, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t.AddDate(1, 0, 0)
}
