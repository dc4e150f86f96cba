package model

import "time"

type Address struct {
	Street     string `json:"street,omitempty" bson:"street,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
}

// Contact is the unit of interchange. Email is the natural key used for
// duplicate matching inside one user's address book.
type Contact struct {
	ID           string            `json:"id" bson:"_id,omitempty"`
	UserID       string            `json:"user_id" bson:"user_id"`
	FirstName    string            `json:"first_name" bson:"first_name"`
	LastName     string            `json:"last_name" bson:"last_name"`
	Email        string            `json:"email" bson:"email"`
	Phone        string            `json:"phone,omitempty" bson:"phone,omitempty"`
	Company      string            `json:"company,omitempty" bson:"company,omitempty"`
	JobTitle     string            `json:"job_title,omitempty" bson:"job_title,omitempty"`
	Department   string            `json:"department,omitempty" bson:"department,omitempty"`
	Website      string            `json:"website,omitempty" bson:"website,omitempty"`
	Address      Address           `json:"address" bson:"address"`
	Status       string            `json:"status" bson:"status"`
	LeadSource   string            `json:"lead_source" bson:"lead_source"`
	Priority     string            `json:"priority" bson:"priority"`
	Tags         []string          `json:"tags" bson:"tags"`
	Notes        string            `json:"notes,omitempty" bson:"notes,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty" bson:"custom_fields,omitempty"`

	// Cleanup bookkeeping
	DuplicateOf string `json:"duplicate_of,omitempty" bson:"duplicate_of,omitempty"`
	MergedInto  string `json:"merged_into,omitempty" bson:"merged_into,omitempty"`

	// Audit Fields
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

// ContactFilter selects contacts of a single user. Deleted contacts are never
// returned.
type ContactFilter struct {
	UserID  string
	Status  string
	Company string
	Tags    []string
	Search  string
	// ExcludeFlagged skips contacts already flagged as duplicates.
	ExcludeFlagged bool
}

// ErrorResponse for consistent error handling
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *ErrorDetail) Error() string {
	return e.Message
}
