package models

import "time"

// Student is a candidate registered with the placement cell.
type Student struct {
	ID             int64     `db:"id" json:"id"`
	RegNo          string    `db:"reg_no" json:"reg_no"`
	Email          string    `db:"email" json:"email"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Gender         string    `db:"gender" json:"gender"`
	CurrentGPA     *float64  `db:"current_gpa" json:"current_gpa"`
	Backlogs       int       `db:"backlogs" json:"backlogs"`
	Specialization string    `db:"specialization" json:"specialization"`
	Degree         string    `db:"degree" json:"degree"`
	Batch          string    `db:"batch" json:"batch"`
	ContactNo      string    `db:"contact_no" json:"contact_no"`
	ResumeURL      string    `db:"resume_url" json:"resume_url,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// CandidateFilter is the store-level projection of a job's eligibility rules.
// Zero values disable the corresponding predicate.
type CandidateFilter struct {
	JobID       int64
	Gender      string
	MaxBacklogs *int
	MinGPA      float64
	AfterID     int64
	Limit       int
}
