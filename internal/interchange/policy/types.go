package policy

// Action is what the orchestrator does with one classified row
type Action string

const (
	ActionCreate   Action = "create"   // Insert as a new contact
	ActionUpdate   Action = "update"   // Merge onto the matched contact
	ActionSkip     Action = "skip"     // Report as skipped_duplicate
	ActionConflict Action = "conflict" // Report as invalid with duplicate_conflict
)

// Rule is one line of the resolution matrix. A nil flag matches either value.
type Rule struct {
	Match          string `json:"match"` // "new" or "duplicate"
	UpdateExisting *bool  `json:"update_existing,omitempty"`
	SkipDuplicates *bool  `json:"skip_duplicates,omitempty"`
	Action         Action `json:"action"`
}

// Matrix is evaluated top to bottom; the first matching rule wins.
type Matrix struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}
