package dto

// UpdateApplicationStatusRequest is the PATCH /applications/:id/status payload.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending applied shortlisted rejected offered"`
}
