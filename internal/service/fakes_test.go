package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

// memStore is an in-memory stand-in for the student, job, company and application tables.
// ListCandidatePage returns raw id-ordered pages so the selector has to do the filtering itself.
type memStore struct {
	mu           sync.Mutex
	students     map[int64]models.Student
	jobs         map[int64]models.Job
	companies    map[int64]models.Company
	applications []models.Application
	nextID       int64
	pageCalls    int
	failPage     error
}

func newMemStore() *memStore {
	return &memStore{
		students:  make(map[int64]models.Student),
		jobs:      make(map[int64]models.Job),
		companies: make(map[int64]models.Company),
	}
}

func (m *memStore) addStudent(s models.Student) models.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		m.nextID++
		s.ID = m.nextID
	} else if s.ID > m.nextID {
		m.nextID = s.ID
	}
	m.students[s.ID] = s
	return s
}

func (m *memStore) addJob(j models.Job) models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j
	return j
}

func (m *memStore) addCompany(c models.Company) models.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = c
	return c
}

func (m *memStore) applicationCount(studentID, jobID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.applications {
		if a.StudentID == studentID && a.JobID == jobID {
			n++
		}
	}
	return n
}

func (m *memStore) sortedStudents() []models.Student {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// studentReader / candidateStore

func (m *memStore) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *memStore) ListCandidatePage(ctx context.Context, filter models.CandidateFilter) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCalls++
	if m.failPage != nil {
		return nil, m.failPage
	}
	var page []models.Student
	for _, s := range m.sortedStudents() {
		if s.ID <= filter.AfterID {
			continue
		}
		page = append(page, s)
		if len(page) == filter.Limit {
			break
		}
	}
	return page, nil
}

// applicantStore / applicationRepository

func (m *memStore) AppliedStudentIDs(ctx context.Context, jobID int64, studentIDs []int64) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[int64]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[int64]struct{})
	for _, a := range m.applications {
		if _, ok := wanted[a.StudentID]; ok && a.JobID == jobID {
			out[a.StudentID] = struct{}{}
		}
	}
	return out, nil
}

func (m *memStore) ListApplicantPage(ctx context.Context, jobID, afterStudentID int64, limit int) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	applied := make(map[int64]struct{})
	for _, a := range m.applications {
		if a.JobID == jobID {
			applied[a.StudentID] = struct{}{}
		}
	}
	var page []models.Student
	for _, s := range m.sortedStudents() {
		if _, ok := applied[s.ID]; !ok || s.ID <= afterStudentID {
			continue
		}
		page = append(page, s)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

// memApplications adapts memStore to applicationRepository, whose FindByID returns applications.
type memApplications struct{ *memStore }

func (m memApplications) Create(ctx context.Context, app *models.Application) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applications {
		if a.StudentID == app.StudentID && a.JobID == app.JobID {
			return false, nil
		}
	}
	app.ID = int64(len(m.applications) + 1)
	m.applications = append(m.applications, *app)
	return true, nil
}

func (m memApplications) Exists(ctx context.Context, studentID, jobID int64) (bool, error) {
	return m.applicationCount(studentID, jobID) > 0, nil
}

func (m memApplications) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applications {
		if a.ID == id {
			app := a
			return &app, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memApplications) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.applications {
		if m.applications[i].ID == id {
			m.applications[i].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m memApplications) ListForStudent(ctx context.Context, studentID int64) ([]models.StudentApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StudentApplication
	for _, a := range m.applications {
		if a.StudentID != studentID {
			continue
		}
		job := m.jobs[a.JobID]
		out = append(out, models.StudentApplication{
			Application:     a,
			JobRole:         job.Role,
			CompanyID:       job.CompanyID,
			CompanyName:     m.companies[job.CompanyID].Name,
			InterviewDate:   job.InterviewDate,
			LastDateToApply: job.LastDateToApply,
		})
	}
	return out, nil
}

func (m memApplications) ListForJob(ctx context.Context, jobID int64) ([]models.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Applicant
	for _, a := range m.applications {
		if a.JobID != jobID {
			continue
		}
		s := m.students[a.StudentID]
		out = append(out, models.Applicant{ApplicationID: a.ID, StudentID: s.ID, RegNo: s.RegNo, Email: s.Email, Status: a.Status})
	}
	return out, nil
}

// memJobs adapts memStore to the job readers.
type memJobs struct{ *memStore }

func (m memJobs) FindByID(ctx context.Context, id int64) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &j, nil
}

// memCompanies adapts memStore to the company readers.
type memCompanies struct{ *memStore }

func (m memCompanies) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func gpa(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (*txProviderMock, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock"), mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
