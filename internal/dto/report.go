package dto

// ReportQuery holds the query string of the report endpoints.
type ReportQuery struct {
	Year      *int   `form:"year" validate:"omitempty,gte=1900,lte=3000"`
	Gender    string `form:"gender" validate:"omitempty,oneof=male female"`
	CompanyID *int64 `form:"company_id" validate:"omitempty,gt=0"`
	Format    string `form:"format" validate:"omitempty,oneof=json csv pdf xlsx"`
}
