package service

import "github.com/noah-isme/student-management-api/internal/models"

// AssembleStudentDetails attaches to each student the courses whose StudentID
// matches its ID. Student order and per-student course order follow the inputs.
func AssembleStudentDetails(students []models.Student, courses []models.StudentCourse) []models.StudentDetail {
	byStudent := make(map[int64][]models.StudentCourse, len(students))
	for _, course := range courses {
		byStudent[course.StudentID] = append(byStudent[course.StudentID], course)
	}

	details := make([]models.StudentDetail, 0, len(students))
	for _, student := range students {
		owned := byStudent[student.ID]
		if owned == nil {
			owned = []models.StudentCourse{}
		}
		details = append(details, models.StudentDetail{Student: student, StudentCourses: owned})
	}
	return details
}

// AssembleCourseDetails pairs each course with the status referencing it.
// The store keeps at most one status per course; if the input still carries
// several, the last one in statuses wins.
func AssembleCourseDetails(courses []models.StudentCourse, statuses []models.CourseStatus) []models.CourseDetail {
	byCourse := make(map[int64]models.CourseStatus, len(statuses))
	for _, status := range statuses {
		byCourse[status.CourseID] = status
	}

	details := make([]models.CourseDetail, 0, len(courses))
	for _, course := range courses {
		detail := models.CourseDetail{StudentCourse: course}
		if status, ok := byCourse[course.ID]; ok {
			status := status
			detail.CourseStatus = &status
		}
		details = append(details, detail)
	}
	return details
}
