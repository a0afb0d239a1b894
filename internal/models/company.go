package models

// Company is an organisation that posts jobs.
type Company struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Type          string `db:"type" json:"type"`
	Website       string `db:"website" json:"website"`
	Description   string `db:"description" json:"description"`
	ContactPerson string `db:"contact_person" json:"contact_person"`
	Address       string `db:"address" json:"address"`
}

// CompanyApplicant is a student who applied to one of a company's jobs.
type CompanyApplicant struct {
	StudentID int64  `db:"student_id" json:"student_id"`
	RegNo     string `db:"reg_no" json:"reg_no"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	JobID     int64  `db:"job_id" json:"job_id"`
	JobRole   string `db:"job_role" json:"job_role"`
	Status    string `db:"status" json:"status"`
}
