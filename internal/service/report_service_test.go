package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/export"
)

type reportRepoMock struct {
	placed      []models.PlacedStudentRow
	eligible    []models.EligibleStudentRow
	summary     *models.PlacementSummary
	breakdown   []models.PlacementBreakdownRow
	lastFilter  models.ReportFilter
	eligibleJob *models.Job
	err         error
}

func (m *reportRepoMock) PlacedStudents(_ context.Context, filter models.ReportFilter) ([]models.PlacedStudentRow, error) {
	m.lastFilter = filter
	return m.placed, m.err
}

func (m *reportRepoMock) EligibleStudents(_ context.Context, job *models.Job) ([]models.EligibleStudentRow, error) {
	m.eligibleJob = job
	return m.eligible, m.err
}

func (m *reportRepoMock) Summary(_ context.Context, filter models.ReportFilter) (*models.PlacementSummary, error) {
	m.lastFilter = filter
	return m.summary, m.err
}

func (m *reportRepoMock) Breakdown(_ context.Context, filter models.ReportFilter) ([]models.PlacementBreakdownRow, error) {
	m.lastFilter = filter
	return m.breakdown, m.err
}

func TestReportPlacedStudentsPassesFilter(t *testing.T) {
	repo := &reportRepoMock{placed: []models.PlacedStudentRow{{RegNo: "21CS001"}}}
	svc := NewReportService(repo, memJobs{newMemStore()}, nil, nil)
	year := 2026

	rows, err := svc.PlacedStudents(context.Background(), models.ReportFilter{Year: &year})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	require.NotNil(t, repo.lastFilter.Year)
	assert.Equal(t, 2026, *repo.lastFilter.Year)
}

func TestReportEligibleStudentsRequiresJob(t *testing.T) {
	store := newMemStore()
	store.addJob(scenarioJob())
	repo := &reportRepoMock{eligible: []models.EligibleStudentRow{{StudentID: 1, Applied: true}}}
	svc := NewReportService(repo, memJobs{store}, nil, nil)

	job, rows, err := svc.EligibleStudents(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), job.ID)
	assert.Len(t, rows, 1)
	assert.Equal(t, 7.5, repo.eligibleJob.MinGPA)

	_, _, err = svc.EligibleStudents(context.Background(), 2)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportWrapsStoreErrors(t *testing.T) {
	svc := NewReportService(&reportRepoMock{err: errors.New("timeout")}, memJobs{newMemStore()}, nil, nil)

	_, err := svc.Summary(context.Background(), models.ReportFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	_, err = svc.Breakdown(context.Background(), models.ReportFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestPlacedStudentsDataset(t *testing.T) {
	joining := day(2026, time.July, 1)
	year := 2026
	data := PlacedStudentsDataset([]models.PlacedStudentRow{{
		RegNo:         "21CS001",
		StudentName:   "Asha Rao",
		Branch:        "CSE",
		Gender:        "female",
		CompanyName:   "Acme",
		JobRole:       "Backend Engineer",
		SalaryOffered: decimal.RequireFromString("650000.5"),
		JoiningDate:   &joining,
	}}, &year)

	assert.Equal(t, "Placed Students 2026", data.Title)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "650000.50", data.Rows[0]["Salary Offered"])
	assert.Equal(t, "2026-07-01", data.Rows[0]["Joining Date"])
	for _, h := range data.Headers {
		assert.Contains(t, data.Rows[0], h)
	}
}

func TestEligibleStudentsDataset(t *testing.T) {
	data := EligibleStudentsDataset(&models.Job{ID: 4, Role: "Analyst"}, []models.EligibleStudentRow{
		{RegNo: "1", CurrentGPA: gpa(8.456), Applied: true},
		{RegNo: "2"},
	})

	assert.Equal(t, "Eligible Students: Analyst (job 4)", data.Title)
	assert.Equal(t, "8.46", data.Rows[0]["CGPA"])
	assert.Equal(t, "Yes", data.Rows[0]["Applied"])
	assert.Equal(t, "", data.Rows[1]["CGPA"])
	assert.Equal(t, "No", data.Rows[1]["Applied"])
}

func TestReportExportFormats(t *testing.T) {
	svc := NewReportService(&reportRepoMock{}, memJobs{newMemStore()}, nil, nil)
	avg := decimal.NewFromInt(500000)
	data := BreakdownDataset([]models.PlacementBreakdownRow{{CompanyName: "Acme", Gender: "female", StudentsPlaced: 2, AverageSalary: &avg}})

	csvFile, err := svc.Export(export.FormatCSV, "placement_breakdown", data)
	require.NoError(t, err)
	assert.Equal(t, "placement_breakdown.csv", csvFile.Filename)
	assert.Equal(t, export.FormatCSV.ContentType(), csvFile.ContentType)
	assert.Contains(t, string(csvFile.Body), "Acme,female,2,500000.00")

	xlsx, err := svc.Export(export.FormatExcel, "placement_breakdown", data)
	require.NoError(t, err)
	assert.Equal(t, "placement_breakdown.xlsx", xlsx.Filename)
	assert.NotEmpty(t, xlsx.Body)

	pdf, err := svc.Export(export.FormatPDF, "placement_breakdown", data)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf.Body[:4]))
}
