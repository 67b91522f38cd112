package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/student-management-api/internal/models"
	appErrors "github.com/noah-isme/student-management-api/pkg/errors"
)

const (
	studentColumns = "id, fullname, furigana, nickname, mail, address, age, gender, remark, deleted"
	courseColumns  = "id, student_id, course_name, start_date, end_date"
	statusColumns  = "id, course_id, status"

	uniqueViolation   = "23505"
	studentMailUnique = "students_mail_key"
)

// StudentTx is the record store surface available inside one transaction.
// Lookups by id return sql.ErrNoRows when the row is absent.
type StudentTx interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	FindStudentByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByMail(ctx context.Context, mail string) (bool, error)
	ListCourses(ctx context.Context) ([]models.StudentCourse, error)
	FindCourseByID(ctx context.Context, id int64) (*models.StudentCourse, error)
	ListCoursesByStudent(ctx context.Context, studentID int64) ([]models.StudentCourse, error)
	ListStatuses(ctx context.Context) ([]models.CourseStatus, error)
	FindStatusByCourseID(ctx context.Context, courseID int64) (*models.CourseStatus, error)

	CreateStudent(ctx context.Context, student models.Student) (int64, error)
	CreateCourse(ctx context.Context, course models.StudentCourse) (int64, error)
	CreateStatus(ctx context.Context, status models.CourseStatus) (int64, error)
	UpdateStudent(ctx context.Context, student models.Student) error
	UpdateCourse(ctx context.Context, course models.StudentCourse) error
	UpdateStatus(ctx context.Context, status models.CourseStatus) error
}

// QueryObserver receives the duration of every statement.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// StudentRepository manages persistence for students, their courses and course statuses.
type StudentRepository struct {
	studentQueries
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository. observer may be nil.
func NewStudentRepository(db *sqlx.DB, observer QueryObserver) *StudentRepository {
	return &StudentRepository{studentQueries: studentQueries{q: db, observer: observer}, db: db}
}

// WithinTx runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back on error or panic.
func (r *StudentRepository) WithinTx(ctx context.Context, fn func(tx StudentTx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&studentQueries{q: tx, observer: r.observer}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type studentQueries struct {
	q        queryer
	observer QueryObserver
}

func (s *studentQueries) observe(label string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// ListStudents returns every student, active or deleted, ordered by id.
func (s *studentQueries) ListStudents(ctx context.Context) ([]models.Student, error) {
	defer s.observe("list_students", time.Now())
	students := []models.Student{}
	if err := s.q.SelectContext(ctx, &students, "SELECT "+studentColumns+" FROM students ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindStudentByID fetches a student by ID.
func (s *studentQueries) FindStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	defer s.observe("find_student", time.Now())
	var student models.Student
	if err := s.q.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByMail checks whether any student, deleted or not, uses mail.
func (s *studentQueries) ExistsByMail(ctx context.Context, mail string) (bool, error) {
	defer s.observe("exists_student_mail", time.Now())
	var exists int
	if err := s.q.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE mail = $1 LIMIT 1", mail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check mail: %w", err)
	}
	return true, nil
}

// ListCourses returns every course ordered by id.
func (s *studentQueries) ListCourses(ctx context.Context) ([]models.StudentCourse, error) {
	defer s.observe("list_courses", time.Now())
	courses := []models.StudentCourse{}
	if err := s.q.SelectContext(ctx, &courses, "SELECT "+courseColumns+" FROM student_courses ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindCourseByID fetches a course by ID.
func (s *studentQueries) FindCourseByID(ctx context.Context, id int64) (*models.StudentCourse, error) {
	defer s.observe("find_course", time.Now())
	var course models.StudentCourse
	if err := s.q.GetContext(ctx, &course, "SELECT "+courseColumns+" FROM student_courses WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCoursesByStudent returns the courses owned by one student.
func (s *studentQueries) ListCoursesByStudent(ctx context.Context, studentID int64) ([]models.StudentCourse, error) {
	defer s.observe("list_student_courses", time.Now())
	courses := []models.StudentCourse{}
	query := "SELECT " + courseColumns + " FROM student_courses WHERE student_id = $1 ORDER BY id"
	if err := s.q.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// ListStatuses returns every course status ordered by id.
func (s *studentQueries) ListStatuses(ctx context.Context) ([]models.CourseStatus, error) {
	defer s.observe("list_statuses", time.Now())
	statuses := []models.CourseStatus{}
	if err := s.q.SelectContext(ctx, &statuses, "SELECT "+statusColumns+" FROM course_status ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list course statuses: %w", err)
	}
	return statuses, nil
}

// FindStatusByCourseID returns the status of a course, or nil when it has none.
func (s *studentQueries) FindStatusByCourseID(ctx context.Context, courseID int64) (*models.CourseStatus, error) {
	defer s.observe("find_status", time.Now())
	var status models.CourseStatus
	query := "SELECT " + statusColumns + " FROM course_status WHERE course_id = $1 ORDER BY id DESC LIMIT 1"
	if err := s.q.GetContext(ctx, &status, query, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find course status: %w", err)
	}
	return &status, nil
}

// CreateStudent inserts a student and returns the generated id. A new student is never deleted.
func (s *studentQueries) CreateStudent(ctx context.Context, student models.Student) (int64, error) {
	defer s.observe("create_student", time.Now())
	const query = `INSERT INTO students (fullname, furigana, nickname, mail, address, age, gender, remark, deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false) RETURNING id`
	var id int64
	err := s.q.GetContext(ctx, &id, query,
		student.FullName, student.Furigana, student.Nickname, student.Mail, student.Address,
		student.Age, student.Gender, student.Remark)
	if err != nil {
		if isMailConflict(err) {
			return 0, appErrors.DuplicateEmail(student.Mail)
		}
		return 0, fmt.Errorf("create student: %w", err)
	}
	return id, nil
}

// CreateCourse inserts a course and returns the generated id.
func (s *studentQueries) CreateCourse(ctx context.Context, course models.StudentCourse) (int64, error) {
	defer s.observe("create_course", time.Now())
	const query = `INSERT INTO student_courses (student_id, course_name, start_date, end_date)
        VALUES ($1, $2, $3, $4) RETURNING id`
	var id int64
	if err := s.q.GetContext(ctx, &id, query, course.StudentID, course.CourseName, course.StartDate, course.EndDate); err != nil {
		return 0, fmt.Errorf("create course: %w", err)
	}
	return id, nil
}

// CreateStatus inserts a course status and returns the generated id.
func (s *studentQueries) CreateStatus(ctx context.Context, status models.CourseStatus) (int64, error) {
	defer s.observe("create_status", time.Now())
	const query = `INSERT INTO course_status (course_id, status) VALUES ($1, $2) RETURNING id`
	var id int64
	if err := s.q.GetContext(ctx, &id, query, status.CourseID, status.Status); err != nil {
		return 0, fmt.Errorf("create course status: %w", err)
	}
	return id, nil
}

// UpdateStudent writes every mutable student column, including the deleted flag.
func (s *studentQueries) UpdateStudent(ctx context.Context, student models.Student) error {
	defer s.observe("update_student", time.Now())
	const query = `UPDATE students SET fullname = $2, furigana = $3, nickname = $4, mail = $5, address = $6,
        age = $7, gender = $8, remark = $9, deleted = $10 WHERE id = $1`
	_, err := s.q.ExecContext(ctx, query, student.ID,
		student.FullName, student.Furigana, student.Nickname, student.Mail, student.Address,
		student.Age, student.Gender, student.Remark, student.Deleted)
	if err != nil {
		if isMailConflict(err) {
			return appErrors.DuplicateEmail(student.Mail)
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateCourse renames a course. Owner and dates are immutable.
func (s *studentQueries) UpdateCourse(ctx context.Context, course models.StudentCourse) error {
	defer s.observe("update_course", time.Now())
	if _, err := s.q.ExecContext(ctx, "UPDATE student_courses SET course_name = $2 WHERE id = $1", course.ID, course.CourseName); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of a course, creating the row if the course has none.
func (s *studentQueries) UpdateStatus(ctx context.Context, status models.CourseStatus) error {
	defer s.observe("update_status", time.Now())
	const query = `INSERT INTO course_status (course_id, status) VALUES ($1, $2)
        ON CONFLICT (course_id) DO UPDATE SET status = EXCLUDED.status`
	if _, err := s.q.ExecContext(ctx, query, status.CourseID, status.Status); err != nil {
		return fmt.Errorf("update course status: %w", err)
	}
	return nil
}

func isMailConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == studentMailUnique
}
