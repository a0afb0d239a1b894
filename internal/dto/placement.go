package dto

import "github.com/shopspring/decimal"

// CreatePlacementRequest is the POST /placements payload. Salary accepts a JSON number or numeric string.
type CreatePlacementRequest struct {
	StudentID      int64            `json:"student_id" validate:"required,gt=0"`
	CompanyID      int64            `json:"company_id" validate:"required,gt=0"`
	JobID          int64            `json:"job_id" validate:"required,gt=0"`
	SalaryOffered  *decimal.Decimal `json:"salary_offered" validate:"required"`
	InterviewDate  *string          `json:"interview_date" validate:"omitempty,datetime=2006-01-02"`
	JoiningDate    *string          `json:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	OfferLetterURL string           `json:"offer_letter_url"`
	Status         string           `json:"status" validate:"omitempty,oneof=pending Yes No"`
}

// UpdatePlacementRequest is the PUT /placements/:id payload. Nil fields are left unchanged.
type UpdatePlacementRequest struct {
	StudentID      *int64           `json:"student_id" validate:"omitempty,gt=0"`
	CompanyID      *int64           `json:"company_id" validate:"omitempty,gt=0"`
	JobID          *int64           `json:"job_id" validate:"omitempty,gt=0"`
	SalaryOffered  *decimal.Decimal `json:"salary_offered"`
	InterviewDate  *string          `json:"interview_date" validate:"omitempty,datetime=2006-01-02"`
	JoiningDate    *string          `json:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	OfferLetterURL *string          `json:"offer_letter_url"`
	Status         *string          `json:"status" validate:"omitempty,oneof=pending Yes No"`
}

// OfferLetterResponse is returned after an offer letter upload.
type OfferLetterResponse struct {
	PlacementID    int64  `json:"placement_id"`
	OfferLetterURL string `json:"offer_letter_url"`
	Status         string `json:"status"`
	DownloadURL    string `json:"download_url"`
}
