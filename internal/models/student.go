package models

import "time"

// Student represents a person enrolled in the program. Deleted is a soft-delete flag.
type Student struct {
	ID       int64   `db:"id" json:"id"`
	FullName string  `db:"fullname" json:"fullname" validate:"required"`
	Furigana string  `db:"furigana" json:"furigana" validate:"required"`
	Nickname *string `db:"nickname" json:"nickname,omitempty"`
	Mail     string  `db:"mail" json:"mail" validate:"required,email"`
	Address  *string `db:"address" json:"address,omitempty"`
	Age      int     `db:"age" json:"age" validate:"gte=0,lte=150"`
	Gender   Gender  `db:"gender" json:"gender" validate:"required,oneof=male female other"`
	Remark   *string `db:"remark" json:"remark,omitempty"`
	Deleted  bool    `db:"deleted" json:"deleted"`
}

// StudentCourse is one course enrollment belonging to exactly one student.
// StudentID, StartDate and EndDate are fixed at creation.
type StudentCourse struct {
	ID         int64     `db:"id" json:"id"`
	StudentID  int64     `db:"student_id" json:"student_id"`
	CourseName string    `db:"course_name" json:"course_name" validate:"required"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
}

// CourseStatus is the enrollment stage of one StudentCourse.
type CourseStatus struct {
	ID       int64  `db:"id" json:"id"`
	CourseID int64  `db:"course_id" json:"course_id"`
	Status   Status `db:"status" json:"status" validate:"required,oneof=provisional confirmed in_progress completed"`
}

// StudentDetail is a student with its courses. It is assembled, never persisted.
type StudentDetail struct {
	Student        Student         `json:"student"`
	StudentCourses []StudentCourse `json:"student_courses" validate:"dive"`
}

// CourseDetail is a course with its status; CourseStatus is nil when none exists.
type CourseDetail struct {
	StudentCourse StudentCourse `json:"student_course"`
	CourseStatus  *CourseStatus `json:"course_status"`
}

// IntegratedDetail is the registration result, carrying generated ids and dates.
type IntegratedDetail struct {
	StudentDetail StudentDetail  `json:"student_detail"`
	CourseDetails []CourseDetail `json:"course_details"`
}

// UpdateCourseStatusRequest is the payload for changing a course status.
type UpdateCourseStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}
