package model

import "time"

// ListImportHistoryReq pages through the caller's import history.
type ListImportHistoryReq struct {
	// Time Filter
	StartTime *time.Time `query:"start_time"`
	EndTime   *time.Time `query:"end_time"`

	// Pagination
	Page int `query:"page" validate:"omitempty,min=1"`
	Size int `query:"size" validate:"omitempty,min=1,max=100"`
}

func (r *ListImportHistoryReq) Validate() error {
	// Set default pagination
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = 20
	}
	if r.Size > 100 {
		r.Size = 100
	}

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}

	if r.StartTime != nil && r.EndTime != nil && r.EndTime.Before(*r.StartTime) {
		return &ErrorDetail{Code: "bad_request", Message: "end_time must not be before start_time"}
	}
	return nil
}

// ListImportHistoryResp is one page of import history.
type ListImportHistoryResp struct {
	Data       []*ImportHistory `json:"data"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalCount int64            `json:"total_count"`
}
