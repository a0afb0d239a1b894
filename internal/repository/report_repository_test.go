package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

func TestReportRepositoryPlacedStudentsByYear(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewReportRepository(db)

	year := 2024
	mock.ExpectQuery(regexp.QuoteMeta("WHERE EXTRACT(YEAR FROM p.joining_date) = $1")).
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"placement_id", "reg_no", "student_name", "branch", "gender", "company_name", "job_role", "salary_offered", "joining_date"}).
			AddRow(int64(1), "REG001", "Asha Rao", "CSE", "female", "Acme", "SDE", "12.50", nil))

	rows, err := repo.PlacedStudents(context.Background(), models.ReportFilter{Year: &year})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12.5", rows[0].SalaryOffered.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryEligibleStudentsPushesAllRules(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewReportRepository(db)

	maxBacklogs := 0
	branches := "CSE, ECE"
	job := &models.Job{ID: 3, GenderEligibility: "female", MinGPA: 7, MaxBacklogs: &maxBacklogs, EligibleBranches: &branches}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND LOWER(s.gender) = $2 AND s.current_gpa >= $3 AND s.backlogs <= $4 AND LOWER(TRIM(s.specialization)) IN")).
		WithArgs(int64(3), "female", 7.0, 0, branches).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "reg_no", "name", "email", "branch", "gender", "current_gpa", "backlogs", "applied"}).
			AddRow(int64(1), "REG001", "Asha Rao", "a@example.edu", "CSE", "female", 8.1, 0, true))

	rows, err := repo.EligibleStudents(context.Background(), job)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositorySummary(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("WITH scoped AS").
		WillReturnRows(sqlmock.NewRows([]string{"total_companies", "total_jobs", "total_placements", "placed_students", "highest_package", "average_package", "top_company", "top_company_placed"}).
			AddRow(4, 6, 3, 3, "20.00", "12.33", "Acme", 2))

	summary, err := repo.Summary(context.Background(), models.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalCompanies)
	require.NotNil(t, summary.TopCompany)
	assert.Equal(t, "Acme", *summary.TopCompany)
	assert.Equal(t, "20", summary.HighestPackage.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
