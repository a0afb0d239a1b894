package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/export"
)

type reportRepository interface {
	PlacedStudents(ctx context.Context, filter models.ReportFilter) ([]models.PlacedStudentRow, error)
	EligibleStudents(ctx context.Context, job *models.Job) ([]models.EligibleStudentRow, error)
	Summary(ctx context.Context, filter models.ReportFilter) (*models.PlacementSummary, error)
	Breakdown(ctx context.Context, filter models.ReportFilter) ([]models.PlacementBreakdownRow, error)
}

type reportRenderer interface {
	Render(f export.Format, data export.Dataset) ([]byte, error)
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService builds placement reports and renders them as documents.
type ReportService struct {
	reports  reportRepository
	jobs     jobReader
	renderer reportRenderer
	logger   *zap.Logger
}

// NewReportService constructs the report service. A nil renderer uses export.NewRegistry.
func NewReportService(reports reportRepository, jobRepo jobReader, renderer reportRenderer, logger *zap.Logger) *ReportService {
	if renderer == nil {
		renderer = export.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, jobs: jobRepo, renderer: renderer, logger: logger}
}

// PlacedStudents lists placed students, optionally for one joining year.
func (s *ReportService) PlacedStudents(ctx context.Context, filter models.ReportFilter) ([]models.PlacedStudentRow, error) {
	rows, err := s.reports.PlacedStudents(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build placed students report")
	}
	return rows, nil
}

// EligibleStudents evaluates a job's rules against every student.
func (s *ReportService) EligibleStudents(ctx context.Context, jobID int64) (*models.Job, []models.EligibleStudentRow, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	rows, err := s.reports.EligibleStudents(ctx, job)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build eligible students report")
	}
	return job, rows, nil
}

// Summary returns placement totals.
func (s *ReportService) Summary(ctx context.Context, filter models.ReportFilter) (*models.PlacementSummary, error) {
	summary, err := s.reports.Summary(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build placement summary")
	}
	return summary, nil
}

// Breakdown groups placements by gender and company.
func (s *ReportService) Breakdown(ctx context.Context, filter models.ReportFilter) ([]models.PlacementBreakdownRow, error) {
	rows, err := s.reports.Breakdown(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build placement breakdown")
	}
	return rows, nil
}

// Export renders data in format and names the file after base.
func (s *ReportService) Export(format export.Format, base string, data export.Dataset) (*ReportFile, error) {
	body, err := s.renderer.Render(format, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Debug("report rendered", zap.String("report", base), zap.String("format", string(format)), zap.Int("bytes", len(body)))
	return &ReportFile{
		Filename:    fmt.Sprintf("%s.%s", base, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

var placedStudentHeaders = []string{"Reg No", "Student Name", "Branch", "Gender", "Company", "Job Role", "Salary Offered", "Joining Date"}

// PlacedStudentsDataset tabulates rows of the placed students report.
func PlacedStudentsDataset(rows []models.PlacedStudentRow, year *int) export.Dataset {
	title := "Placed Students"
	if year != nil {
		title = fmt.Sprintf("Placed Students %d", *year)
	}
	data := export.Dataset{Title: title, Headers: placedStudentHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Reg No":         r.RegNo,
			"Student Name":   r.StudentName,
			"Branch":         r.Branch,
			"Gender":         r.Gender,
			"Company":        r.CompanyName,
			"Job Role":       r.JobRole,
			"Salary Offered": r.SalaryOffered.StringFixed(2),
			"Joining Date":   formatOptionalDate(r.JoiningDate),
		})
	}
	return data
}

var eligibleStudentHeaders = []string{"Reg No", "Name", "Email", "Branch", "Gender", "CGPA", "Backlogs", "Applied"}

// EligibleStudentsDataset tabulates rows of the eligible students report.
func EligibleStudentsDataset(job *models.Job, rows []models.EligibleStudentRow) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("Eligible Students: %s (job %d)", job.Role, job.ID),
		Headers: eligibleStudentHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, r := range rows {
		gpa := ""
		if r.CurrentGPA != nil {
			gpa = strconv.FormatFloat(*r.CurrentGPA, 'f', 2, 64)
		}
		applied := "No"
		if r.Applied {
			applied = "Yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Reg No":   r.RegNo,
			"Name":     r.Name,
			"Email":    r.Email,
			"Branch":   r.Branch,
			"Gender":   r.Gender,
			"CGPA":     gpa,
			"Backlogs": strconv.Itoa(r.Backlogs),
			"Applied":  applied,
		})
	}
	return data
}

var breakdownHeaders = []string{"Company", "Gender", "Students Placed", "Average Salary"}

// BreakdownDataset tabulates the placement breakdown.
func BreakdownDataset(rows []models.PlacementBreakdownRow) export.Dataset {
	data := export.Dataset{Title: "Placement Breakdown", Headers: breakdownHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		avg := ""
		if r.AverageSalary != nil {
			avg = r.AverageSalary.StringFixed(2)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Company":         r.CompanyName,
			"Gender":          r.Gender,
			"Students Placed": strconv.Itoa(r.StudentsPlaced),
			"Average Salary":  avg,
		})
	}
	return data
}

func formatOptionalDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
