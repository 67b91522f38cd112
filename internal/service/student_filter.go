package service

import (
	"strings"
	"time"

	"github.com/noah-isme/student-management-api/internal/models"
)

type studentPredicate func(models.StudentDetail) bool

type coursePredicate func(models.CourseDetail) bool

// StudentMatcher evaluates a StudentSearchCriteria. Each present criterion
// becomes one predicate; a detail matches when all predicates hold.
type StudentMatcher struct {
	predicates []studentPredicate
}

// NewStudentMatcher compiles criteria into predicates once.
func NewStudentMatcher(criteria models.StudentSearchCriteria) StudentMatcher {
	var preds []studentPredicate

	if criteria.FullName != nil {
		want := *criteria.FullName
		preds = append(preds, func(d models.StudentDetail) bool { return strings.Contains(d.Student.FullName, want) })
	}
	if criteria.Furigana != nil {
		want := *criteria.Furigana
		preds = append(preds, func(d models.StudentDetail) bool { return strings.Contains(d.Student.Furigana, want) })
	}
	if criteria.Nickname != nil {
		want := *criteria.Nickname
		preds = append(preds, func(d models.StudentDetail) bool { return containsOptional(d.Student.Nickname, want) })
	}
	if criteria.Mail != nil {
		want := *criteria.Mail
		preds = append(preds, func(d models.StudentDetail) bool { return strings.Contains(d.Student.Mail, want) })
	}
	if criteria.Address != nil {
		want := *criteria.Address
		preds = append(preds, func(d models.StudentDetail) bool { return containsOptional(d.Student.Address, want) })
	}
	if criteria.MinAge != nil {
		minAge := *criteria.MinAge
		preds = append(preds, func(d models.StudentDetail) bool { return d.Student.Age >= minAge })
	}
	if criteria.MaxAge != nil {
		maxAge := *criteria.MaxAge
		preds = append(preds, func(d models.StudentDetail) bool { return d.Student.Age <= maxAge })
	}
	if criteria.Gender != nil {
		want := *criteria.Gender
		preds = append(preds, func(d models.StudentDetail) bool { return d.Student.Gender == want })
	}
	if criteria.Deleted != nil {
		want := *criteria.Deleted
		preds = append(preds, func(d models.StudentDetail) bool { return d.Student.Deleted == want })
	}

	// Each course-scoped criterion is satisfied independently by any course.
	if criteria.CourseName != nil {
		want := *criteria.CourseName
		preds = append(preds, anyCourse(func(c models.StudentCourse) bool { return strings.Contains(c.CourseName, want) }))
	}
	if criteria.StartDateFrom != nil {
		from := *criteria.StartDateFrom
		preds = append(preds, anyCourse(func(c models.StudentCourse) bool { return onOrAfter(c.StartDate, from) }))
	}
	if criteria.StartDateTo != nil {
		to := *criteria.StartDateTo
		preds = append(preds, anyCourse(func(c models.StudentCourse) bool { return onOrBefore(c.StartDate, to) }))
	}
	if criteria.EndDateFrom != nil {
		from := *criteria.EndDateFrom
		preds = append(preds, anyCourse(func(c models.StudentCourse) bool { return onOrAfter(c.EndDate, from) }))
	}
	if criteria.EndDateTo != nil {
		to := *criteria.EndDateTo
		preds = append(preds, anyCourse(func(c models.StudentCourse) bool { return onOrBefore(c.EndDate, to) }))
	}

	return StudentMatcher{predicates: preds}
}

// Match reports whether detail satisfies every compiled criterion.
func (m StudentMatcher) Match(detail models.StudentDetail) bool {
	for _, pred := range m.predicates {
		if !pred(detail) {
			return false
		}
	}
	return true
}

// Filter returns the matching details in input order.
func (m StudentMatcher) Filter(details []models.StudentDetail) []models.StudentDetail {
	matched := make([]models.StudentDetail, 0, len(details))
	for _, detail := range details {
		if m.Match(detail) {
			matched = append(matched, detail)
		}
	}
	return matched
}

// CourseMatcher evaluates a CourseSearchCriteria against a single course/status pair.
type CourseMatcher struct {
	predicates []coursePredicate
}

// NewCourseMatcher compiles criteria into predicates once.
func NewCourseMatcher(criteria models.CourseSearchCriteria) CourseMatcher {
	var preds []coursePredicate

	if criteria.CourseName != nil {
		want := *criteria.CourseName
		preds = append(preds, func(d models.CourseDetail) bool { return strings.Contains(d.StudentCourse.CourseName, want) })
	}
	if criteria.StartDateFrom != nil {
		from := *criteria.StartDateFrom
		preds = append(preds, func(d models.CourseDetail) bool { return onOrAfter(d.StudentCourse.StartDate, from) })
	}
	if criteria.StartDateTo != nil {
		to := *criteria.StartDateTo
		preds = append(preds, func(d models.CourseDetail) bool { return onOrBefore(d.StudentCourse.StartDate, to) })
	}
	if criteria.EndDateFrom != nil {
		from := *criteria.EndDateFrom
		preds = append(preds, func(d models.CourseDetail) bool { return onOrAfter(d.StudentCourse.EndDate, from) })
	}
	if criteria.EndDateTo != nil {
		to := *criteria.EndDateTo
		preds = append(preds, func(d models.CourseDetail) bool { return onOrBefore(d.StudentCourse.EndDate, to) })
	}
	if criteria.Status != nil {
		want := *criteria.Status
		preds = append(preds, func(d models.CourseDetail) bool {
			return d.CourseStatus != nil && d.CourseStatus.Status == want
		})
	}

	return CourseMatcher{predicates: preds}
}

// Match reports whether detail satisfies every compiled criterion.
func (m CourseMatcher) Match(detail models.CourseDetail) bool {
	for _, pred := range m.predicates {
		if !pred(detail) {
			return false
		}
	}
	return true
}

// Filter returns the matching details in input order.
func (m CourseMatcher) Filter(details []models.CourseDetail) []models.CourseDetail {
	matched := make([]models.CourseDetail, 0, len(details))
	for _, detail := range details {
		if m.Match(detail) {
			matched = append(matched, detail)
		}
	}
	return matched
}

func anyCourse(pred func(models.StudentCourse) bool) studentPredicate {
	return func(d models.StudentDetail) bool {
		for _, course := range d.StudentCourses {
			if pred(course) {
				return true
			}
		}
		return false
	}
}

// containsOptional treats an absent target as non-matching.
func containsOptional(target *string, want string) bool {
	return target != nil && strings.Contains(*target, want)
}

// onOrAfter compares UTC calendar dates, so the target's zone never shifts the day.
func onOrAfter(target, bound time.Time) bool {
	return !utcDate(target).Before(utcDate(bound))
}

func onOrBefore(target, bound time.Time) bool {
	return !utcDate(target).After(utcDate(bound))
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
