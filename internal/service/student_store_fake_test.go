package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/student-management-api/internal/models"
	"github.com/noah-isme/student-management-api/internal/repository"
)

type studentState struct {
	students []models.Student
	courses  []models.StudentCourse
	statuses []models.CourseStatus
	nextID   int64
}

func (s studentState) clone() studentState {
	return studentState{
		students: append([]models.Student(nil), s.students...),
		courses:  append([]models.StudentCourse(nil), s.courses...),
		statuses: append([]models.CourseStatus(nil), s.statuses...),
		nextID:   s.nextID,
	}
}

// fakeStudentStore stages writes per transaction and publishes them only on commit.
type fakeStudentStore struct {
	state  studentState
	calls  map[string]int
	failOn map[string]error
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{state: studentState{nextID: 1}, calls: map[string]int{}, failOn: map[string]error{}}
}

func (f *fakeStudentStore) WithinTx(ctx context.Context, fn func(tx repository.StudentTx) error) error {
	staged := &fakeStudentTx{store: f, state: f.state.clone()}
	if err := fn(staged); err != nil {
		return err
	}
	f.state = staged.state
	return nil
}

func (f *fakeStudentStore) tx() *fakeStudentTx {
	return &fakeStudentTx{store: f, state: f.state}
}

func (f *fakeStudentStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	return f.tx().ListStudents(ctx)
}

func (f *fakeStudentStore) FindStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	return f.tx().FindStudentByID(ctx, id)
}

func (f *fakeStudentStore) ExistsByMail(ctx context.Context, mail string) (bool, error) {
	return f.tx().ExistsByMail(ctx, mail)
}

func (f *fakeStudentStore) ListCourses(ctx context.Context) ([]models.StudentCourse, error) {
	return f.tx().ListCourses(ctx)
}

func (f *fakeStudentStore) FindCourseByID(ctx context.Context, id int64) (*models.StudentCourse, error) {
	return f.tx().FindCourseByID(ctx, id)
}

func (f *fakeStudentStore) ListCoursesByStudent(ctx context.Context, studentID int64) ([]models.StudentCourse, error) {
	return f.tx().ListCoursesByStudent(ctx, studentID)
}

func (f *fakeStudentStore) ListStatuses(ctx context.Context) ([]models.CourseStatus, error) {
	return f.tx().ListStatuses(ctx)
}

func (f *fakeStudentStore) FindStatusByCourseID(ctx context.Context, courseID int64) (*models.CourseStatus, error) {
	return f.tx().FindStatusByCourseID(ctx, courseID)
}

func (f *fakeStudentStore) CreateStudent(ctx context.Context, student models.Student) (int64, error) {
	panic("writes must run inside WithinTx")
}

func (f *fakeStudentStore) CreateCourse(ctx context.Context, course models.StudentCourse) (int64, error) {
	panic("writes must run inside WithinTx")
}

func (f *fakeStudentStore) CreateStatus(ctx context.Context, status models.CourseStatus) (int64, error) {
	panic("writes must run inside WithinTx")
}

func (f *fakeStudentStore) UpdateStudent(ctx context.Context, student models.Student) error {
	panic("writes must run inside WithinTx")
}

func (f *fakeStudentStore) UpdateCourse(ctx context.Context, course models.StudentCourse) error {
	panic("writes must run inside WithinTx")
}

func (f *fakeStudentStore) UpdateStatus(ctx context.Context, status models.CourseStatus) error {
	panic("writes must run inside WithinTx")
}

type fakeStudentTx struct {
	store *fakeStudentStore
	state studentState
}

func (t *fakeStudentTx) hit(op string) error {
	t.store.calls[op]++
	return t.store.failOn[op]
}

func (t *fakeStudentTx) id() int64 {
	id := t.state.nextID
	t.state.nextID++
	return id
}

func (t *fakeStudentTx) ListStudents(ctx context.Context) ([]models.Student, error) {
	if err := t.hit("ListStudents"); err != nil {
		return nil, err
	}
	return append([]models.Student{}, t.state.students...), nil
}

func (t *fakeStudentTx) FindStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	if err := t.hit("FindStudentByID"); err != nil {
		return nil, err
	}
	for _, s := range t.state.students {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *fakeStudentTx) ExistsByMail(ctx context.Context, mail string) (bool, error) {
	if err := t.hit("ExistsByMail"); err != nil {
		return false, err
	}
	for _, s := range t.state.students {
		if s.Mail == mail {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeStudentTx) ListCourses(ctx context.Context) ([]models.StudentCourse, error) {
	if err := t.hit("ListCourses"); err != nil {
		return nil, err
	}
	return append([]models.StudentCourse{}, t.state.courses...), nil
}

func (t *fakeStudentTx) FindCourseByID(ctx context.Context, id int64) (*models.StudentCourse, error) {
	if err := t.hit("FindCourseByID"); err != nil {
		return nil, err
	}
	for _, c := range t.state.courses {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *fakeStudentTx) ListCoursesByStudent(ctx context.Context, studentID int64) ([]models.StudentCourse, error) {
	if err := t.hit("ListCoursesByStudent"); err != nil {
		return nil, err
	}
	owned := []models.StudentCourse{}
	for _, c := range t.state.courses {
		if c.StudentID == studentID {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

func (t *fakeStudentTx) ListStatuses(ctx context.Context) ([]models.CourseStatus, error) {
	if err := t.hit("ListStatuses"); err != nil {
		return nil, err
	}
	return append([]models.CourseStatus{}, t.state.statuses...), nil
}

func (t *fakeStudentTx) FindStatusByCourseID(ctx context.Context, courseID int64) (*models.CourseStatus, error) {
	if err := t.hit("FindStatusByCourseID"); err != nil {
		return nil, err
	}
	for _, s := range t.state.statuses {
		if s.CourseID == courseID {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (t *fakeStudentTx) CreateStudent(ctx context.Context, student models.Student) (int64, error) {
	if err := t.hit("CreateStudent"); err != nil {
		return 0, err
	}
	student.ID = t.id()
	t.state.students = append(t.state.students, student)
	return student.ID, nil
}

func (t *fakeStudentTx) CreateCourse(ctx context.Context, course models.StudentCourse) (int64, error) {
	if err := t.hit("CreateCourse"); err != nil {
		return 0, err
	}
	course.ID = t.id()
	t.state.courses = append(t.state.courses, course)
	return course.ID, nil
}

func (t *fakeStudentTx) CreateStatus(ctx context.Context, status models.CourseStatus) (int64, error) {
	if err := t.hit("CreateStatus"); err != nil {
		return 0, err
	}
	status.ID = t.id()
	t.state.statuses = append(t.state.statuses, status)
	return status.ID, nil
}

func (t *fakeStudentTx) UpdateStudent(ctx context.Context, student models.Student) error {
	if err := t.hit("UpdateStudent"); err != nil {
		return err
	}
	for i := range t.state.students {
		if t.state.students[i].ID == student.ID {
			t.state.students[i] = student
			return nil
		}
	}
	return errors.New("student vanished")
}

func (t *fakeStudentTx) UpdateCourse(ctx context.Context, course models.StudentCourse) error {
	if err := t.hit("UpdateCourse"); err != nil {
		return err
	}
	for i := range t.state.courses {
		if t.state.courses[i].ID == course.ID {
			t.state.courses[i].CourseName = course.CourseName
			return nil
		}
	}
	return errors.New("course vanished")
}

func (t *fakeStudentTx) UpdateStatus(ctx context.Context, status models.CourseStatus) error {
	if err := t.hit("UpdateStatus"); err != nil {
		return err
	}
	for i := range t.state.statuses {
		if t.state.statuses[i].CourseID == status.CourseID {
			t.state.statuses[i].Status = status.Status
			return nil
		}
	}
	status.ID = t.id()
	t.state.statuses = append(t.state.statuses, status)
	return nil
}

func (f *fakeStudentStore) writes() int {
	total := 0
	for _, op := range []string{"CreateStudent", "CreateCourse", "CreateStatus", "UpdateStudent", "UpdateCourse", "UpdateStatus"} {
		total += f.calls[op]
	}
	return total
}

func (f *fakeStudentStore) seed(student models.Student, courses []models.StudentCourse, statuses []models.CourseStatus) {
	f.state.students = append(f.state.students, student)
	f.state.courses = append(f.state.courses, courses...)
	f.state.statuses = append(f.state.statuses, statuses...)
	f.bump(student.ID)
	for _, c := range courses {
		f.bump(c.ID)
	}
	for _, s := range statuses {
		f.bump(s.ID)
	}
}

func (f *fakeStudentStore) bump(id int64) {
	if id >= f.state.nextID {
		f.state.nextID = id + 1
	}
}
