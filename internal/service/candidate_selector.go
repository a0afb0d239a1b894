package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

const defaultCandidatePageSize = 100

type candidateStore interface {
	ListCandidatePage(ctx context.Context, filter models.CandidateFilter) ([]models.Student, error)
}

type applicantStore interface {
	AppliedStudentIDs(ctx context.Context, jobID int64, studentIDs []int64) (map[int64]struct{}, error)
	ListApplicantPage(ctx context.Context, jobID, afterStudentID int64, limit int) ([]models.Student, error)
}

// StudentPager yields students one page at a time. more is false once the sequence is exhausted;
// a page may be empty while more is still true.
type StudentPager interface {
	Next(ctx context.Context) (page []models.Student, more bool, err error)
}

// CandidateSelector builds pagers over the students a job event should reach.
type CandidateSelector struct {
	students     candidateStore
	applications applicantStore
	pageSize     int
	logger       *zap.Logger
}

// NewCandidateSelector constructs a selector. pageSize <= 0 falls back to 100.
func NewCandidateSelector(students candidateStore, applications applicantStore, pageSize int, logger *zap.Logger) *CandidateSelector {
	if pageSize <= 0 {
		pageSize = defaultCandidatePageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateSelector{students: students, applications: applications, pageSize: pageSize, logger: logger}
}

// SelectCandidates returns a pager over eligible students without an application for job.
// Each call starts again from the first page.
func (s *CandidateSelector) SelectCandidates(job models.Job) *CandidatePager {
	return &CandidatePager{selector: s, job: job}
}

// SelectApplicants returns a pager over students who applied to jobID.
func (s *CandidateSelector) SelectApplicants(jobID int64) *ApplicantPager {
	return &ApplicantPager{selector: s, jobID: jobID}
}

// CandidatePager walks the student table in id order using keyset pagination.
type CandidatePager struct {
	selector *CandidateSelector
	job      models.Job
	afterID  int64
	page     int
	done     bool
}

// Next fetches the next page, re-applies every eligibility rule and drops applied students.
func (p *CandidatePager) Next(ctx context.Context) ([]models.Student, bool, error) {
	if p.done {
		return nil, false, nil
	}
	s := p.selector

	rows, err := s.students.ListCandidatePage(ctx, candidateFilter(p.job, p.afterID, s.pageSize))
	if err != nil {
		return nil, false, err
	}
	p.page++
	if len(rows) == 0 {
		p.done = true
		return nil, false, nil
	}
	p.afterID = rows[len(rows)-1].ID
	if len(rows) < s.pageSize {
		p.done = true
	}

	eligible := make([]models.Student, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, student := range rows {
		if !IsEligible(student, p.job) {
			continue
		}
		eligible = append(eligible, student)
		ids = append(ids, student.ID)
	}

	applied, err := s.applications.AppliedStudentIDs(ctx, p.job.ID, ids)
	if err != nil {
		return nil, false, err
	}
	selected := eligible[:0]
	for _, student := range eligible {
		if _, ok := applied[student.ID]; ok {
			continue
		}
		selected = append(selected, student)
	}

	s.logger.Debug("candidate page selected",
		zap.Int64("job_id", p.job.ID),
		zap.Int("page", p.page),
		zap.Int("fetched", len(rows)),
		zap.Int("selected", len(selected)),
	)
	return selected, !p.done, nil
}

// ApplicantPager walks the applicants of one job in student id order.
type ApplicantPager struct {
	selector *CandidateSelector
	jobID    int64
	afterID  int64
	done     bool
}

// Next fetches the next page of applicants.
func (p *ApplicantPager) Next(ctx context.Context) ([]models.Student, bool, error) {
	if p.done {
		return nil, false, nil
	}
	size := p.selector.pageSize
	rows, err := p.selector.applications.ListApplicantPage(ctx, p.jobID, p.afterID, size)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		p.done = true
		return nil, false, nil
	}
	p.afterID = rows[len(rows)-1].ID
	if len(rows) < size {
		p.done = true
	}
	return rows, !p.done, nil
}

func candidateFilter(job models.Job, afterID int64, limit int) models.CandidateFilter {
	gender := strings.ToLower(strings.TrimSpace(job.GenderEligibility))
	if gender == models.GenderAll {
		gender = ""
	}
	return models.CandidateFilter{
		JobID:       job.ID,
		Gender:      gender,
		MaxBacklogs: job.MaxBacklogs,
		MinGPA:      job.MinGPA,
		AfterID:     afterID,
		Limit:       limit,
	}
}
