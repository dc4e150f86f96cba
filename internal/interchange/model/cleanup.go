package model

import "strings"

// CleanupReq is the body of POST /contacts/cleanup-duplicates.
type CleanupReq struct {
	Mode string `json:"mode" validate:"omitempty,oneof=remove flag"`
}

func (r *CleanupReq) Validate() error {
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	if r.Mode == "" {
		r.Mode = CleanupModeRemove
	}
	return nil
}

// CleanupResult summarises one sweep.
type CleanupResult struct {
	Mode           string   `json:"mode"`
	GroupsFound    int      `json:"groups_found"`
	RecordsRemoved int      `json:"records_removed"`
	RecordsFlagged int      `json:"records_flagged"`
	KeptIDs        []string `json:"kept_ids"`
}
