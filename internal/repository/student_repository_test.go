package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "reg_no", "email", "first_name", "last_name", "gender", "current_gpa", "backlogs",
	"specialization", "degree", "batch", "contact_no", "resume_url", "created_at", "updated_at"}

func studentRow(rows *sqlmock.Rows, id int64, gender string, gpa float64, backlogs int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, fmt.Sprintf("REG%03d", id), "s@example.edu", "Asha", "Rao", gender, gpa, backlogs, "CSE", "B.Tech", "2025", "9999999999", "", now, now)
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students s WHERE s.id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(studentRow(sqlmock.NewRows(studentRowColumns), 7, "female", 8.2, 0))

	student, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
	require.NotNil(t, student.CurrentGPA)
	assert.InDelta(t, 8.2, *student.CurrentGPA, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students s WHERE s.id").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryListCandidatePagePushdown(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	maxBacklogs := 1
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s WHERE s.id > $1 AND NOT EXISTS (SELECT 1 FROM applications a WHERE a.student_id = s.id AND a.job_id = $2) AND LOWER(s.gender) = $3 AND s.backlogs <= $4 AND s.current_gpa >= $5 ORDER BY s.id ASC LIMIT 50")).
		WithArgs(int64(10), int64(3), "female", 1, 7.5).
		WillReturnRows(studentRow(sqlmock.NewRows(studentRowColumns), 11, "female", 8.0, 0))

	students, err := repo.ListCandidatePage(context.Background(), models.CandidateFilter{
		JobID: 3, Gender: "Female", MaxBacklogs: &maxBacklogs, MinGPA: 7.5, AfterID: 10, Limit: 50,
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, int64(11), students[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListCandidatePageOpenJob(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("a.job_id = $2) ORDER BY s.id ASC LIMIT 100")).
		WithArgs(int64(0), int64(3)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	students, err := repo.ListCandidatePage(context.Background(), models.CandidateFilter{JobID: 3, Gender: "all"})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}
