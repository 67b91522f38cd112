package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-management-api/internal/models"
	"github.com/noah-isme/student-management-api/pkg/response"
)

type courseService interface {
	SearchCourses(ctx context.Context, criteria models.CourseSearchCriteria) ([]models.CourseDetail, error)
	SearchCourse(ctx context.Context, id int64) (*models.CourseDetail, error)
	UpdateCourseStatus(ctx context.Context, status models.CourseStatus) error
}

// CourseHandler exposes course and enrollment status endpoints.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary Search courses
// @Tags Courses
// @Produce json
// @Param courseName query string false "Course name substring"
// @Param startDateFrom query string false "YYYY-MM-DD"
// @Param startDateTo query string false "YYYY-MM-DD"
// @Param endDateFrom query string false "YYYY-MM-DD"
// @Param endDateTo query string false "YYYY-MM-DD"
// @Param status query string false "provisional, confirmed, in_progress or completed"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	criteria, err := courseCriteriaFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	details, err := h.courses.SearchCourses(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, details, map[string]interface{}{"count": len(details)})
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := pathID(c, "course")
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.courses.SearchCourse(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail)
}

// UpdateStatus godoc
// @Summary Update course status
// @Description Any status may replace any other.
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body models.UpdateCourseStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/status [put]
func (h *CourseHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "course")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.UpdateCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}

	if err := h.courses.UpdateCourseStatus(c.Request.Context(), models.CourseStatus{CourseID: id, Status: req.Status}); err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.courses.SearchCourse(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
