package models

import "time"

// StudentSearchCriteria filters student details. A nil field is unconstrained.
// Course-scoped fields match when any course of the student satisfies them.
type StudentSearchCriteria struct {
	FullName *string
	Furigana *string
	Nickname *string
	Mail     *string
	Address  *string
	MinAge   *int
	MaxAge   *int
	Gender   *Gender
	Deleted  *bool

	CourseName    *string
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	EndDateFrom   *time.Time
	EndDateTo     *time.Time
}

// CourseSearchCriteria filters course details. A nil field is unconstrained.
type CourseSearchCriteria struct {
	CourseName    *string
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	EndDateFrom   *time.Time
	EndDateTo     *time.Time
	Status        *Status
}
