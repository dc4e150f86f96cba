package model

import "time"

// ImportHistory is written once per committed import (append-only).
type ImportHistory struct {
	ID       string `bson:"_id,omitempty" json:"id"`
	ImportID string `bson:"import_id" json:"import_id"`
	UserID   string `bson:"user_id" json:"user_id"`
	FileName string `bson:"file_name,omitempty" json:"file_name,omitempty"`

	// Counters copied from the report
	TotalRows int `bson:"total_rows" json:"total_rows"`
	Created   int `bson:"created" json:"created"`
	Updated   int `bson:"updated" json:"updated"`
	Skipped   int `bson:"skipped" json:"skipped"`
	Invalid   int `bson:"invalid" json:"invalid"`

	SkipDuplicates bool `bson:"skip_duplicates" json:"skip_duplicates"`
	UpdateExisting bool `bson:"update_existing" json:"update_existing"`

	StartedAt  time.Time `bson:"started_at" json:"started_at"`
	FinishedAt time.Time `bson:"finished_at" json:"finished_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// NewImportHistory copies the counters of a finished report.
func NewImportHistory(userID, fileName string, policy ImportPolicy, r *ImportReport) *ImportHistory {
	return &ImportHistory{
		ImportID:       r.ImportID,
		UserID:         userID,
		FileName:       fileName,
		TotalRows:      r.TotalRows,
		Created:        r.Created,
		Updated:        r.Updated,
		Skipped:        r.Skipped,
		Invalid:        r.Invalid,
		SkipDuplicates: policy.SkipDuplicates,
		UpdateExisting: policy.UpdateExisting,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		CreatedAt:      time.Now(),
	}
}

// ImportStats is the per-user aggregate over ImportHistory.
type ImportStats struct {
	LastImportAt  *time.Time `bson:"last_import_at" json:"last_import_at"`
	TotalImported int        `bson:"total_imported" json:"total_imported"`
	TotalUpdated  int        `bson:"total_updated" json:"total_updated"`
	TotalSkipped  int        `bson:"total_skipped" json:"total_skipped"`
	TotalFailed   int        `bson:"total_failed" json:"total_failed"`
	ImportCount   int        `bson:"import_count" json:"import_count"`
}
