package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-management-api/internal/models"
	"github.com/noah-isme/student-management-api/internal/service"
	"github.com/noah-isme/student-management-api/pkg/response"
)

type studentService interface {
	SearchStudents(ctx context.Context, criteria models.StudentSearchCriteria) ([]models.StudentDetail, error)
	SearchStudent(ctx context.Context, id int64) (*models.StudentDetail, error)
	RegisterStudent(ctx context.Context, detail models.StudentDetail) (*models.IntegratedDetail, error)
	UpdateStudent(ctx context.Context, detail models.StudentDetail) error
}

type rosterExporter interface {
	ExportRoster(ctx context.Context, criteria models.StudentSearchCriteria, format service.ExportFormat) (*service.ExportResult, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	exports  rosterExporter
}

// NewStudentHandler constructs StudentHandler. exports may be nil when exports are disabled.
func NewStudentHandler(students studentService, exports rosterExporter) *StudentHandler {
	return &StudentHandler{students: students, exports: exports}
}

// List godoc
// @Summary Search students
// @Description Every parameter is optional; course parameters match when any course of the student satisfies them.
// @Tags Students
// @Produce json
// @Param fullname query string false "Full name substring"
// @Param furigana query string false "Furigana substring"
// @Param nickname query string false "Nickname substring"
// @Param mail query string false "Mail substring"
// @Param address query string false "Address substring"
// @Param minAge query int false "Minimum age (inclusive)"
// @Param maxAge query int false "Maximum age (inclusive)"
// @Param gender query string false "male, female or other"
// @Param deleted query bool false "Soft-delete flag"
// @Param courseName query string false "Course name substring"
// @Param startDateFrom query string false "YYYY-MM-DD"
// @Param startDateTo query string false "YYYY-MM-DD"
// @Param endDateFrom query string false "YYYY-MM-DD"
// @Param endDateTo query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	criteria, err := studentCriteriaFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	details, err := h.students.SearchStudents(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, details, map[string]interface{}{"count": len(details)})
}

// Export godoc
// @Summary Export student roster
// @Description Accepts the same filters as GET /students and returns one row per student course.
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	criteria, err := studentCriteriaFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.ExportRoster(c.Request.Context(), criteria, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "student")
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.students.SearchStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail)
}

// Register godoc
// @Summary Register student
// @Description Creates the student, its courses (one-year window from now) and a provisional status per course.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.StudentDetail true "Student with course names"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req models.StudentDetail
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid student payload"))
		return
	}

	result, err := h.students.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// Update godoc
// @Summary Update student
// @Description Rewrites the student (including the deleted flag) and renames its courses.
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body models.StudentDetail true "Student detail"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "student")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.StudentDetail
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid student payload"))
		return
	}
	req.Student.ID = id

	if err := h.students.UpdateStudent(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.students.SearchStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
