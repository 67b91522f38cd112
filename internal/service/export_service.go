package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-management-api/internal/models"
	appErrors "github.com/noah-isme/student-management-api/pkg/errors"
	"github.com/noah-isme/student-management-api/pkg/export"
)

// ExportFormat is an output format for roster exports.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat resolves a format name; empty means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ExportFormatCSV):
		return ExportFormatCSV, nil
	case string(ExportFormatPDF):
		return ExportFormatPDF, nil
	}
	return "", appErrors.InvalidEnum("format", raw)
}

type rosterSearcher interface {
	SearchStudents(ctx context.Context, criteria models.StudentSearchCriteria) ([]models.StudentDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title string
}

// ExportResult is a rendered roster ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders search results as downloadable rosters.
type ExportService struct {
	students rosterSearcher
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(students rosterSearcher, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Student roster"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{students: students, csv: csv, pdf: pdf, logger: logger, cfg: cfg, now: time.Now}
}

// ExportRoster searches students with criteria and renders one row per student course.
func (s *ExportService) ExportRoster(ctx context.Context, criteria models.StudentSearchCriteria, format ExportFormat) (*ExportResult, error) {
	details, err := s.students.SearchStudents(ctx, criteria)
	if err != nil {
		return nil, err
	}
	dataset := BuildRosterDataset(details)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, s.cfg.Title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.InvalidEnum("format", string(format))
	}
	if errors.Is(err, export.ErrUnicodeFontRequired) {
		s.logger.Error("roster needs a unicode pdf font", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export needs EXPORT_PDF_FONT for non-Latin text")
	}
	if err != nil {
		s.logger.Error("failed to render roster", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	filename := fmt.Sprintf("students_%s.%s", s.now().UTC().Format("20060102_150405"), format)
	s.logger.Info("roster exported", zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload, Rows: len(dataset.Rows)}, nil
}

var rosterColumns = []export.Column{
	{Key: "student_id", Label: "Student ID", Width: 1},
	{Key: "fullname", Label: "Full name", Width: 2.5},
	{Key: "furigana", Label: "Furigana", Width: 2.5},
	{Key: "mail", Label: "Mail", Width: 3},
	{Key: "age", Label: "Age", Width: 0.8},
	{Key: "gender", Label: "Gender", Width: 1.2},
	{Key: "deleted", Label: "Deleted", Width: 1},
	{Key: "course_id", Label: "Course ID", Width: 1},
	{Key: "course_name", Label: "Course", Width: 2.5},
	{Key: "start_date", Label: "Start", Width: 1.5},
	{Key: "end_date", Label: "End", Width: 1.5},
}

// BuildRosterDataset flattens details into one row per (student, course).
// A student without courses contributes a single row with empty course columns.
func BuildRosterDataset(details []models.StudentDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(details))
	for _, detail := range details {
		student := detail.Student
		base := map[string]string{
			"student_id": strconv.FormatInt(student.ID, 10),
			"fullname":   student.FullName,
			"furigana":   student.Furigana,
			"mail":       student.Mail,
			"age":        strconv.Itoa(student.Age),
			"gender":     string(student.Gender),
			"deleted":    strconv.FormatBool(student.Deleted),
		}
		if len(detail.StudentCourses) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, course := range detail.StudentCourses {
			row := make(map[string]string, len(rosterColumns))
			for k, v := range base {
				row[k] = v
			}
			row["course_id"] = strconv.FormatInt(course.ID, 10)
			row["course_name"] = course.CourseName
			row["start_date"] = course.StartDate.Format("2006-01-02")
			row["end_date"] = course.EndDate.Format("2006-01-02")
			rows = append(rows, row)
		}
	}
	return export.Dataset{Columns: rosterColumns, Rows: rows}
}
