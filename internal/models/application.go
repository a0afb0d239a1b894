package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus tracks an application through selection.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationOffered     ApplicationStatus = "offered"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApplied, ApplicationShortlisted, ApplicationRejected, ApplicationOffered:
		return true
	}
	return false
}

// Application records that a student applied to a job. (student_id, job_id) is unique.
type Application struct {
	ID          int64             `db:"id" json:"id"`
	JobID       int64             `db:"job_id" json:"job_id"`
	StudentID   int64             `db:"student_id" json:"student_id"`
	Status      ApplicationStatus `db:"status" json:"status"`
	AppliedDate time.Time         `db:"applied_date" json:"applied_date"`
}

// JobStage is the lifecycle phase of the job behind an application.
type JobStage string

const (
	StageUpcoming  JobStage = "Upcoming"
	StageOngoing   JobStage = "Ongoing"
	StageCompleted JobStage = "Completed"
)

// StudentApplication is an application listed for its student.
type StudentApplication struct {
	Application
	JobRole         string          `db:"job_role" json:"job_role"`
	JobLocation     string          `db:"job_location" json:"job_location"`
	Package         decimal.Decimal `db:"package" json:"package"`
	CompanyID       int64           `db:"company_id" json:"company_id"`
	CompanyName     string          `db:"company_name" json:"company_name"`
	InterviewDate   time.Time       `db:"interview_date" json:"interview_date"`
	LastDateToApply time.Time       `db:"last_date_to_apply" json:"last_date_to_apply"`
	Stage           JobStage        `db:"-" json:"stage"`
}

// Applicant is an application listed for its job, joined with the student.
type Applicant struct {
	ApplicationID  int64             `db:"application_id" json:"application_id"`
	StudentID      int64             `db:"student_id" json:"student_id"`
	RegNo          string            `db:"reg_no" json:"reg_no"`
	FirstName      string            `db:"first_name" json:"first_name"`
	LastName       string            `db:"last_name" json:"last_name"`
	Email          string            `db:"email" json:"email"`
	Specialization string            `db:"specialization" json:"specialization"`
	CurrentGPA     *float64          `db:"current_gpa" json:"current_gpa"`
	Status         ApplicationStatus `db:"status" json:"status"`
	AppliedDate    time.Time         `db:"applied_date" json:"applied_date"`
}
