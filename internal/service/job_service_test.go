package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/jobs"
)

type jobRepoMock struct {
	jobs      map[int64]*models.Job
	createdTx []sqlx.ExtContext
	deleteErr error
	eligible  models.EligibleJobFilter
	branch    string
	findCalls int
}

func newJobRepoMock() *jobRepoMock {
	return &jobRepoMock{jobs: make(map[int64]*models.Job)}
}

func (m *jobRepoMock) Create(_ context.Context, exec sqlx.ExtContext, job *models.Job) error {
	m.createdTx = append(m.createdTx, exec)
	job.ID = int64(len(m.jobs) + 1)
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *jobRepoMock) Update(_ context.Context, job *models.Job) error {
	if _, ok := m.jobs[job.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *jobRepoMock) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.jobs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.jobs, id)
	return nil
}

func (m *jobRepoMock) FindByID(_ context.Context, id int64) (*models.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *jobRepoMock) FindDetail(ctx context.Context, id int64) (*models.JobDetail, error) {
	m.findCalls++
	job, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.JobDetail{Job: *job, CompanyName: "Acme"}, nil
}

func (m *jobRepoMock) List(context.Context, models.JobFilter) ([]models.JobDetail, int, error) {
	return nil, len(m.jobs), nil
}

func (m *jobRepoMock) ListEligibleForStudent(_ context.Context, filter models.EligibleJobFilter, branch string) ([]models.JobDetail, int, error) {
	m.eligible = filter
	m.branch = branch
	return []models.JobDetail{}, 0, nil
}

type companyRepoMock struct {
	companies map[int64]*models.Company
}

func (m *companyRepoMock) Create(_ context.Context, _ sqlx.ExtContext, c *models.Company) error {
	c.ID = int64(len(m.companies) + 10)
	m.companies[c.ID] = c
	return nil
}

func (m *companyRepoMock) FindByID(_ context.Context, id int64) (*models.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

type enqueuerMock struct {
	mu    sync.Mutex
	tasks []jobs.Task
	err   error
}

func (m *enqueuerMock) Enqueue(_ context.Context, task jobs.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *enqueuerMock) dispatchTasks(t *testing.T) []models.DispatchTask {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DispatchTask, 0, len(m.tasks))
	for _, task := range m.tasks {
		assert.Equal(t, TaskTypeDispatch, task.Type)
		var payload models.DispatchTask
		require.NoError(t, json.Unmarshal(task.Payload, &payload))
		out = append(out, payload)
	}
	return out
}

type memCache struct {
	data    map[string][]byte
	deleted []string
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type jobFilesMock struct {
	saved   []string
	content []string
	removed []string
	saveErr error
}

func (f *jobFilesMock) Save(_ context.Context, r io.Reader, name, scope string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	rel := scope + "/files/" + name
	f.saved = append(f.saved, rel)
	f.content = append(f.content, string(body))
	return rel, nil
}

func (f *jobFilesMock) Delete(rel string) error {
	f.removed = append(f.removed, rel)
	return nil
}

type jobFixture struct {
	service   *JobService
	jobs      *jobRepoMock
	companies *companyRepoMock
	students  *memStore
	queue     *enqueuerMock
	cache     *memCache
	files     *jobFilesMock
	tx        *txProviderMock
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	tx, _ := newTxProviderMock(t)
	f := &jobFixture{
		jobs:      newJobRepoMock(),
		companies: &companyRepoMock{companies: map[int64]*models.Company{1: {ID: 1, Name: "Acme"}}},
		students:  newMemStore(),
		queue:     &enqueuerMock{},
		cache:     &memCache{data: make(map[string][]byte)},
		files:     &jobFilesMock{},
		tx:        tx,
	}
	f.service = NewJobService(f.jobs, f.companies, f.students, memApplications{f.students}, tx, nil, nil, JobServiceConfig{
		Queue: f.queue,
		Cache: NewCacheService(f.cache, nil, time.Minute, nil, true),
		Files: f.files,
		Now:   func() time.Time { return time.Date(2026, time.February, 2, 14, 0, 0, 0, time.UTC) },
	})
	return f
}

func validJobRequest() dto.CreateJobRequest {
	return dto.CreateJobRequest{
		CompanyName:       " Initech ",
		Role:              "Analyst",
		Location:          "Pune",
		Package:           decimal.RequireFromString("800000.555"),
		InterviewDate:     "2026-03-10",
		LastDateToApply:   "2026-03-01",
		MinGPA:            7,
		GenderEligibility: "",
	}
}

func TestCreateJobWithNewCompany(t *testing.T) {
	f := newJobFixture(t)
	f.tx.mock.ExpectBegin()
	f.tx.mock.ExpectCommit()

	resp, err := f.service.Create(context.Background(), 3, "officer@example.edu", validJobRequest())
	require.NoError(t, err)
	require.NoError(t, f.tx.mock.ExpectationsWereMet())

	assert.Equal(t, int64(1), resp.JobID)
	assert.Equal(t, int64(11), resp.CompanyID)
	assert.Equal(t, "Initech", f.companies.companies[11].Name)

	job := f.jobs.jobs[1]
	assert.Equal(t, models.GenderAll, job.GenderEligibility)
	assert.Equal(t, "800000.56", job.Package.StringFixed(2))
	assert.Equal(t, day(2026, time.February, 2), job.PostedDate)
	require.NotNil(t, job.AdminID)
	assert.Equal(t, int64(3), *job.AdminID)
	_, inTx := f.jobs.createdTx[0].(*sqlx.Tx)
	assert.True(t, inTx, "the job insert runs on the transaction")

	tasks := f.queue.dispatchTasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.DispatchTask{JobID: 1, Trigger: models.NewPostingTrigger()}, tasks[0])
}

func TestCreateJobWithExistingCompany(t *testing.T) {
	f := newJobFixture(t)
	f.tx.mock.ExpectBegin()
	f.tx.mock.ExpectCommit()
	req := validJobRequest()
	companyID := int64(1)
	req.CompanyID = &companyID
	req.CompanyName = ""

	resp, err := f.service.Create(context.Background(), 0, "officer", req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.CompanyID)
	assert.Len(t, f.companies.companies, 1)
	assert.Nil(t, f.jobs.jobs[1].AdminID)
}

func TestCreateJobUnknownCompanyRollsBack(t *testing.T) {
	f := newJobFixture(t)
	f.tx.mock.ExpectBegin()
	f.tx.mock.ExpectRollback()
	req := validJobRequest()
	missing := int64(99)
	req.CompanyID = &missing

	_, err := f.service.Create(context.Background(), 1, "officer", req)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, f.jobs.jobs)
	assert.Empty(t, f.queue.dispatchTasks(t))
	require.NoError(t, f.tx.mock.ExpectationsWereMet())
}

func TestCreateJobValidation(t *testing.T) {
	f := newJobFixture(t)

	bad := validJobRequest()
	bad.InterviewDate = "10/03/2026"
	_, err := f.service.Create(context.Background(), 1, "officer", bad)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	bad = validJobRequest()
	bad.CompanyName = ""
	_, err = f.service.Create(context.Background(), 1, "officer", bad)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	bad = validJobRequest()
	bad.Package = decimal.NewFromInt(-5)
	_, err = f.service.Create(context.Background(), 1, "officer", bad)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	bad = validJobRequest()
	bad.GenderEligibility = "Other"
	_, err = f.service.Create(context.Background(), 1, "officer", bad)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCreateJobSurvivesQueueFailure(t *testing.T) {
	f := newJobFixture(t)
	f.tx.mock.ExpectBegin()
	f.tx.mock.ExpectCommit()
	f.queue.err = errors.New("redis down")

	resp, err := f.service.Create(context.Background(), 1, "officer", validJobRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.JobID)
}

func seedJob(f *jobFixture) *models.Job {
	job := &models.Job{
		ID:                1,
		CompanyID:         1,
		Role:              "Analyst",
		InterviewDate:     day(2026, time.March, 10),
		LastDateToApply:   day(2026, time.March, 1),
		GenderEligibility: models.GenderAll,
		Files:             "jobs/files/jd_1.pdf, jobs/images/logo_1.png",
	}
	f.jobs.jobs[1] = job
	return job
}

func TestUpdateJobReschedule(t *testing.T) {
	f := newJobFixture(t)
	seedJob(f)

	newDate := "2026-03-17"
	lastDate := "2026-03-05"
	job, err := f.service.Update(context.Background(), 1, dto.UpdateJobRequest{InterviewDate: &newDate, LastDateToApply: &lastDate})
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.March, 17), job.InterviewDate)
	assert.Equal(t, day(2026, time.March, 5), job.LastDateToApply)

	tasks := f.queue.dispatchTasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TriggerReschedule, tasks[0].Trigger.Kind)
	require.NotNil(t, tasks[0].Trigger.OldDate)
	require.NotNil(t, tasks[0].Trigger.NewDate)
	assert.True(t, tasks[0].Trigger.OldDate.Equal(day(2026, time.March, 10)))
	assert.True(t, tasks[0].Trigger.NewDate.Equal(day(2026, time.March, 17)))
	assert.Contains(t, f.cache.deleted, "job:1")
}

func TestUpdateJobSameDateDoesNotReschedule(t *testing.T) {
	f := newJobFixture(t)
	seedJob(f)

	same := "2026-03-10"
	role := "Senior Analyst"
	job, err := f.service.Update(context.Background(), 1, dto.UpdateJobRequest{InterviewDate: &same, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Senior Analyst", job.Role)
	assert.Empty(t, f.queue.dispatchTasks(t))
}

func TestUpdateJobMergesOnlyProvidedFields(t *testing.T) {
	job := &models.Job{Role: "Analyst", MinGPA: 6, MaxBacklogs: intPtr(2), EligibleBranches: strPtr("CSE")}
	backlogs := 0

	require.NoError(t, applyJobUpdate(job, dto.UpdateJobRequest{MaxBacklogs: &backlogs, EligibleBranches: strPtr(" ")}))
	assert.Equal(t, "Analyst", job.Role)
	assert.Equal(t, 6.0, job.MinGPA)
	assert.Equal(t, 0, *job.MaxBacklogs)
	assert.Nil(t, job.EligibleBranches)

	negative := decimal.NewFromInt(-1)
	assert.Error(t, applyJobUpdate(job, dto.UpdateJobRequest{Package: &negative}))
}

func TestUpdateJobClearsMaxBacklogs(t *testing.T) {
	job := &models.Job{MaxBacklogs: intPtr(2)}

	require.NoError(t, applyJobUpdate(job, dto.UpdateJobRequest{}))
	require.NotNil(t, job.MaxBacklogs, "an absent max_backlogs keeps the ceiling")

	err := applyJobUpdate(job, dto.UpdateJobRequest{ClearMaxBacklogs: true, MaxBacklogs: intPtr(1)})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 2, *job.MaxBacklogs)

	require.NoError(t, applyJobUpdate(job, dto.UpdateJobRequest{ClearMaxBacklogs: true}))
	assert.Nil(t, job.MaxBacklogs)
	assert.True(t, IsEligible(models.Student{Backlogs: 9}, *job))
}

func TestUpdateMissingJob(t *testing.T) {
	f := newJobFixture(t)
	role := "x"
	_, err := f.service.Update(context.Background(), 7, dto.UpdateJobRequest{Role: &role})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDeleteJobRemovesFiles(t *testing.T) {
	f := newJobFixture(t)
	seedJob(f)

	require.NoError(t, f.service.Delete(context.Background(), 1))
	assert.Equal(t, []string{"jobs/files/jd_1.pdf", "jobs/images/logo_1.png"}, f.files.removed)
	assert.Contains(t, f.cache.deleted, "job:1")

	err := f.service.Delete(context.Background(), 1)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCreateJobStoresAttachment(t *testing.T) {
	f := newJobFixture(t)
	f.tx.mock.ExpectBegin()
	f.tx.mock.ExpectCommit()
	req := validJobRequest()
	req.Attachment = &dto.Attachment{Name: "jd.pdf", Content: strings.NewReader("%PDF")}

	_, err := f.service.Create(context.Background(), 1, "officer", req)
	require.NoError(t, err)
	assert.Equal(t, []string{"jobs/files/jd.pdf"}, f.files.saved)
	assert.Equal(t, []string{"%PDF"}, f.files.content)
	assert.Equal(t, "jobs/files/jd.pdf", f.jobs.jobs[1].Files)
}

func TestCreateJobFailureRemovesAttachment(t *testing.T) {
	f := newJobFixture(t)
	f.tx.mock.ExpectBegin()
	f.tx.mock.ExpectRollback()
	req := validJobRequest()
	missing := int64(99)
	req.CompanyID = &missing
	req.Attachment = &dto.Attachment{Name: "jd.pdf", Content: strings.NewReader("%PDF")}

	_, err := f.service.Create(context.Background(), 1, "officer", req)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, []string{"jobs/files/jd.pdf"}, f.files.removed)
}

func TestCreateJobRejectedAttachmentWritesNothing(t *testing.T) {
	f := newJobFixture(t)
	f.files.saveErr = appErrors.Clone(appErrors.ErrValidation, "file type not allowed; use png, jpg, jpeg or pdf")
	req := validJobRequest()
	req.Attachment = &dto.Attachment{Name: "jd.exe", Content: strings.NewReader("MZ")}

	_, err := f.service.Create(context.Background(), 1, "officer", req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, f.jobs.jobs)
	require.NoError(t, f.tx.mock.ExpectationsWereMet())
}

func TestUpdateJobReplacesAttachment(t *testing.T) {
	f := newJobFixture(t)
	seedJob(f)

	job, err := f.service.Update(context.Background(), 1, dto.UpdateJobRequest{
		Attachment: &dto.Attachment{Name: "jd_v2.pdf", Content: strings.NewReader("v2")},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs/files/jd_v2.pdf", job.Files)
	assert.Equal(t, "jobs/files/jd_v2.pdf", f.jobs.jobs[1].Files)
	assert.Equal(t, []string{"jobs/files/jd_1.pdf", "jobs/images/logo_1.png"}, f.files.removed)

	role := "Lead"
	f.files.removed = nil
	_, err = f.service.Update(context.Background(), 1, dto.UpdateJobRequest{Role: &role})
	require.NoError(t, err)
	assert.Empty(t, f.files.removed, "updates without a file keep the attachment")
	assert.Equal(t, "jobs/files/jd_v2.pdf", f.jobs.jobs[1].Files)
}

func TestDeleteJobOnlyRemovesJobScopedFiles(t *testing.T) {
	f := newJobFixture(t)
	job := seedJob(f)
	job.Files = "offer_letters/files/offer_ab12.pdf, jobs/../offer_letters/files/other.pdf, jobs/files/jd_1.pdf"

	require.NoError(t, f.service.Delete(context.Background(), 1))
	assert.Equal(t, []string{"jobs/files/jd_1.pdf"}, f.files.removed)
}

func TestDeleteJobWithPlacements(t *testing.T) {
	f := newJobFixture(t)
	seedJob(f)
	f.jobs.deleteErr = &pq.Error{Code: "23503"}

	err := f.service.Delete(context.Background(), 1)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, f.files.removed)
}

func TestGetJobUsesCache(t *testing.T) {
	f := newJobFixture(t)
	seedJob(f)

	first, err := f.service.Get(context.Background(), 1)
	require.NoError(t, err)
	second, err := f.service.Get(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, f.jobs.findCalls)
	assert.Equal(t, first.Role, second.Role)
	assert.Equal(t, "Acme", second.CompanyName)

	_, err = f.service.Get(context.Background(), 5)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestListEligibleForStudent(t *testing.T) {
	f := newJobFixture(t)
	f.students.addStudent(models.Student{ID: 4, Gender: "female", CurrentGPA: gpa(8), Backlogs: 1, Specialization: "cse"})

	_, page, err := f.service.ListEligibleForStudent(context.Background(), 4, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, "cse", f.jobs.branch)
	assert.Equal(t, day(2026, time.February, 2), f.jobs.eligible.OpenOn)
	assert.Equal(t, 1, f.jobs.eligible.Backlogs)

	_, _, err = f.service.ListEligibleForStudent(context.Background(), 40, 1, 10)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCheckEligibility(t *testing.T) {
	f := newJobFixture(t)
	job := seedJob(f)
	job.MinGPA = 8.5
	f.students.addStudent(models.Student{ID: 4, Gender: "female", CurrentGPA: gpa(8)})
	f.students.applications = []models.Application{{ID: 1, JobID: 1, StudentID: 4}}

	resp, err := f.service.CheckEligibility(context.Background(), 4, 1)
	require.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.True(t, resp.AlreadyApplied)
	assert.Equal(t, []string{RuleMinGPA}, resp.FailedRules)
}
