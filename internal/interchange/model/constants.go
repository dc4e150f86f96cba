package model

// Contact statuses
const (
	StatusLead     = "lead"
	StatusProspect = "prospect"
	StatusCustomer = "customer"
	StatusInactive = "inactive"
)

// Lead sources
const (
	LeadSourceWebsite       = "website"
	LeadSourceReferral      = "referral"
	LeadSourceSocialMedia   = "social_media"
	LeadSourceEmailCampaign = "email_campaign"
	LeadSourceColdCall      = "cold_call"
	LeadSourceEvent         = "event"
	LeadSourceImport        = "import"
	LeadSourceOther         = "other"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Defaults applied when a row or request leaves an enum empty
const (
	DefaultStatus     = StatusLead
	DefaultLeadSource = LeadSourceImport
	DefaultPriority   = PriorityMedium
)

// AllowedStatuses etc. are used for enum normalisation; validation itself
// runs through the oneof tags on ContactInput.
var AllowedStatuses = map[string]bool{
	StatusLead:     true,
	StatusProspect: true,
	StatusCustomer: true,
	StatusInactive: true,
}

var AllowedLeadSources = map[string]bool{
	LeadSourceWebsite:       true,
	LeadSourceReferral:      true,
	LeadSourceSocialMedia:   true,
	LeadSourceEmailCampaign: true,
	LeadSourceColdCall:      true,
	LeadSourceEvent:         true,
	LeadSourceImport:        true,
	LeadSourceOther:         true,
}

var AllowedPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// Field limits shared by interactive creation and import
const (
	MaxTags            = 20
	MaxTagLength       = 30
	MaxCustomFields    = 50
	MaxCustomKeyLength = 50
	MaxCustomValueLen  = 500
)

// Canonical field names. The order of CanonicalFields is the default export
// projection and the template header.
const (
	FieldFirstName  = "first_name"
	FieldLastName   = "last_name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldCompany    = "company"
	FieldJobTitle   = "job_title"
	FieldDepartment = "department"
	FieldWebsite    = "website"
	FieldStreet     = "street"
	FieldCity       = "city"
	FieldState      = "state"
	FieldPostalCode = "postal_code"
	FieldCountry    = "country"
	FieldStatus     = "status"
	FieldLeadSource = "lead_source"
	FieldPriority   = "priority"
	FieldTags       = "tags"
	FieldNotes      = "notes"

	// Export only
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"

	// CustomFieldPrefix selects a custom field in a projection, e.g. "custom.industry".
	CustomFieldPrefix = "custom."
)

var CanonicalFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldCompany,
	FieldJobTitle,
	FieldDepartment,
	FieldWebsite,
	FieldStreet,
	FieldCity,
	FieldState,
	FieldPostalCode,
	FieldCountry,
	FieldStatus,
	FieldLeadSource,
	FieldPriority,
	FieldTags,
	FieldNotes,
}

// ReadOnlyFields can be exported but are ignored when a file is imported.
var ReadOnlyFields = []string{FieldID, FieldCreatedAt, FieldUpdatedAt}

// Fields that participate in duplicate matching. Cleanup never copies them
// between records so that running it twice is a no-op.
var MatchKeyFields = map[string]bool{
	FieldFirstName: true,
	FieldLastName:  true,
	FieldEmail:     true,
	FieldCompany:   true,
}

// Row-level error codes
const (
	ErrCodeInvalidField       = "invalid_field"
	ErrCodeDuplicateConflict  = "duplicate_conflict"
	ErrCodePersistenceFailure = "persistence_failure"
	ErrCodeQuotaExceeded      = "quota_exceeded"
)

// Cleanup modes
const (
	CleanupModeRemove = "remove"
	CleanupModeFlag   = "flag"
)
