package model

import (
	"strconv"
	"strings"
	"time"
)

// RowOutcome is the terminal state of one imported row.
type RowOutcome string

const (
	OutcomeCreated          RowOutcome = "created"
	OutcomeUpdated          RowOutcome = "updated"
	OutcomeSkippedDuplicate RowOutcome = "skipped_duplicate"
	OutcomeInvalid          RowOutcome = "invalid"
)

// ImportRow is the per-line result. Line is the 1-based physical line of the
// source file.
type ImportRow struct {
	Line             int         `json:"line"`
	Outcome          RowOutcome  `json:"outcome"`
	ContactID        string      `json:"contact_id,omitempty"`
	MatchedContactID string      `json:"matched_contact_id,omitempty"`
	Errors           FieldErrors `json:"errors,omitempty"`
}

// Invalidate moves the row to the invalid outcome, keeping any matched id.
func (r *ImportRow) Invalidate(errs ...FieldError) {
	r.Outcome = OutcomeInvalid
	r.ContactID = ""
	r.Errors = append(r.Errors, errs...)
}

// ImportReport aggregates one import or preview run.
type ImportReport struct {
	ImportID   string      `json:"import_id"`
	Preview    bool        `json:"preview"`
	TotalRows  int         `json:"total_rows"`
	Created    int         `json:"created"`
	Updated    int         `json:"updated"`
	Skipped    int         `json:"skipped"`
	Invalid    int         `json:"invalid"`
	Rows       []ImportRow `json:"rows"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// Tally recomputes the counters from Rows.
func (r *ImportReport) Tally() {
	r.TotalRows = len(r.Rows)
	r.Created, r.Updated, r.Skipped, r.Invalid = 0, 0, 0, 0
	for _, row := range r.Rows {
		switch row.Outcome {
		case OutcomeCreated:
			r.Created++
		case OutcomeUpdated:
			r.Updated++
		case OutcomeSkippedDuplicate:
			r.Skipped++
		case OutcomeInvalid:
			r.Invalid++
		}
	}
}

// Import batch size bounds
const (
	DefaultBatchSize = 50
	MaxBatchSize     = 500
)

// ImportPolicy controls how duplicates are resolved and whether anything is
// written. UpdateExisting takes precedence over SkipDuplicates.
type ImportPolicy struct {
	SkipDuplicates bool `json:"skip_duplicates"`
	UpdateExisting bool `json:"update_existing"`
	ValidateOnly   bool `json:"validate_only"`
	BatchSize      int  `json:"batch_size"`
}

// WithDefaults clamps BatchSize into [1, MaxBatchSize].
func (p ImportPolicy) WithDefaults(defaultBatch int) ImportPolicy {
	if defaultBatch <= 0 {
		defaultBatch = DefaultBatchSize
	}
	if p.BatchSize <= 0 {
		p.BatchSize = defaultBatch
	}
	if p.BatchSize > MaxBatchSize {
		p.BatchSize = MaxBatchSize
	}
	return p
}

// ImportReq is the multipart form accompanying an upload. Flags arrive as
// strings so that an absent flag can fall back to its default.
type ImportReq struct {
	SkipDuplicates string `form:"skipDuplicates"`
	UpdateExisting string `form:"updateExisting"`
	BatchSize      string `form:"batchSize"`
	Delimiter      string `form:"delimiter"`
}

// ToPolicy parses the form. skipDuplicates defaults to true.
func (r *ImportReq) ToPolicy() (ImportPolicy, error) {
	p := ImportPolicy{SkipDuplicates: true}

	var err error
	if v := strings.TrimSpace(r.SkipDuplicates); v != "" {
		if p.SkipDuplicates, err = strconv.ParseBool(v); err != nil {
			return p, &ErrorDetail{Code: "bad_request", Message: "skipDuplicates must be a boolean"}
		}
	}
	if v := strings.TrimSpace(r.UpdateExisting); v != "" {
		if p.UpdateExisting, err = strconv.ParseBool(v); err != nil {
			return p, &ErrorDetail{Code: "bad_request", Message: "updateExisting must be a boolean"}
		}
	}
	if v := strings.TrimSpace(r.BatchSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxBatchSize {
			return p, &ErrorDetail{Code: "bad_request", Message: "batchSize must be between 1 and " + strconv.Itoa(MaxBatchSize)}
		}
		p.BatchSize = n
	}
	return p, nil
}

// ParsedDelimiter resolves the optional delimiter form value.
func (r *ImportReq) ParsedDelimiter() (rune, error) {
	return ParseDelimiter(r.Delimiter)
}
