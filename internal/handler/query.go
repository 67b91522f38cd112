package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-management-api/internal/models"
	appErrors "github.com/noah-isme/student-management-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// queryReader collects optional query parameters, keeping the first parse error.
// A parameter that is present but empty still counts as present for strings.
type queryReader struct {
	c   *gin.Context
	err error
}

func (q *queryReader) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

func (q *queryReader) invalid(name, raw, expected string) {
	err := appErrors.Clone(appErrors.ErrValidation, "invalid query parameter "+name)
	err.Details = map[string]interface{}{"param": name, "value": raw, "expected": expected}
	q.fail(err)
}

func (q *queryReader) str(name string) *string {
	raw, ok := q.c.GetQuery(name)
	if !ok {
		return nil
	}
	return &raw
}

func (q *queryReader) integer(name string) *int {
	raw, ok := q.c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		q.invalid(name, raw, "integer")
		return nil
	}
	return &v
}

func (q *queryReader) boolean(name string) *bool {
	raw, ok := q.c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		q.invalid(name, raw, "boolean")
		return nil
	}
	return &v
}

func (q *queryReader) date(name string) *time.Time {
	raw, ok := q.c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		q.invalid(name, raw, dateLayout)
		return nil
	}
	return &v
}

func (q *queryReader) gender(name string) *models.Gender {
	raw, ok := q.c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := models.ParseGender(raw)
	if err != nil {
		q.fail(err)
		return nil
	}
	return &v
}

func (q *queryReader) status(name string) *models.Status {
	raw, ok := q.c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := models.ParseStatus(raw)
	if err != nil {
		q.fail(err)
		return nil
	}
	return &v
}

func studentCriteriaFromQuery(c *gin.Context) (models.StudentSearchCriteria, error) {
	q := &queryReader{c: c}
	criteria := models.StudentSearchCriteria{
		FullName:      q.str("fullname"),
		Furigana:      q.str("furigana"),
		Nickname:      q.str("nickname"),
		Mail:          q.str("mail"),
		Address:       q.str("address"),
		MinAge:        q.integer("minAge"),
		MaxAge:        q.integer("maxAge"),
		Gender:        q.gender("gender"),
		Deleted:       q.boolean("deleted"),
		CourseName:    q.str("courseName"),
		StartDateFrom: q.date("startDateFrom"),
		StartDateTo:   q.date("startDateTo"),
		EndDateFrom:   q.date("endDateFrom"),
		EndDateTo:     q.date("endDateTo"),
	}
	return criteria, q.err
}

func courseCriteriaFromQuery(c *gin.Context) (models.CourseSearchCriteria, error) {
	q := &queryReader{c: c}
	criteria := models.CourseSearchCriteria{
		CourseName:    q.str("courseName"),
		StartDateFrom: q.date("startDateFrom"),
		StartDateTo:   q.date("startDateTo"),
		EndDateFrom:   q.date("endDateFrom"),
		EndDateTo:     q.date("endDateTo"),
		Status:        q.status("status"),
	}
	return criteria, q.err
}

func pathID(c *gin.Context, entity string) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		appErr := appErrors.Clone(appErrors.ErrValidation, "invalid "+entity+" id")
		appErr.Details = map[string]interface{}{"param": "id", "value": raw}
		return 0, appErr
	}
	return id, nil
}

// bindError keeps typed decode errors such as InvalidEnum and reports the rest as validation failures.
func bindError(err error, message string) error {
	if appErr := asAppError(err); appErr != nil {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func asAppError(err error) *appErrors.Error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
