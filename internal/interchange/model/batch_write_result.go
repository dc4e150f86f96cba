package model

// WriteKind tells the repository whether a contact is new or replaces an
// existing document.
type WriteKind string

const (
	WriteInsert WriteKind = "insert"
	WriteUpdate WriteKind = "update"
)

// ContactWrite is one pending write of a flush.
type ContactWrite struct {
	Kind    WriteKind
	Contact *Contact
}

// BatchWriteResult represents the result of a bulk contact write
type BatchWriteResult struct {
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	Failed       []FailedContactInfo `json:"failed,omitempty"`
}

// FailedContactInfo contains information about a failed contact write
type FailedContactInfo struct {
	Index     int    `json:"index"`
	ContactID string `json:"contact_id"`
	Reason    string `json:"reason"`
}
