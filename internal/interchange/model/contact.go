package model

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// TagSeparator joins tags when a contact is flattened into a single cell.
const TagSeparator = "; "

// Get returns the string form of a canonical or custom ("custom.<key>") field.
// Date fields are returned in RFC 3339; use the codec for other layouts.
func (c *Contact) Get(field string) string {
	switch field {
	case FieldID:
		return c.ID
	case FieldFirstName:
		return c.FirstName
	case FieldLastName:
		return c.LastName
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	case FieldCompany:
		return c.Company
	case FieldJobTitle:
		return c.JobTitle
	case FieldDepartment:
		return c.Department
	case FieldWebsite:
		return c.Website
	case FieldStreet:
		return c.Address.Street
	case FieldCity:
		return c.Address.City
	case FieldState:
		return c.Address.State
	case FieldPostalCode:
		return c.Address.PostalCode
	case FieldCountry:
		return c.Address.Country
	case FieldStatus:
		return c.Status
	case FieldLeadSource:
		return c.LeadSource
	case FieldPriority:
		return c.Priority
	case FieldTags:
		return strings.Join(c.Tags, TagSeparator)
	case FieldNotes:
		return c.Notes
	case FieldCreatedAt:
		return formatTime(c.CreatedAt)
	case FieldUpdatedAt:
		return formatTime(c.UpdatedAt)
	}
	if key, ok := strings.CutPrefix(field, CustomFieldPrefix); ok {
		return c.CustomFields[key]
	}
	return ""
}

// set assigns a plain string field. Tags, custom fields and read-only fields
// are handled by the callers.
func (c *Contact) set(field, value string) {
	switch field {
	case FieldFirstName:
		c.FirstName = value
	case FieldLastName:
		c.LastName = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	case FieldCompany:
		c.Company = value
	case FieldJobTitle:
		c.JobTitle = value
	case FieldDepartment:
		c.Department = value
	case FieldWebsite:
		c.Website = value
	case FieldStreet:
		c.Address.Street = value
	case FieldCity:
		c.Address.City = value
	case FieldState:
		c.Address.State = value
	case FieldPostalCode:
		c.Address.PostalCode = value
	case FieldCountry:
		c.Address.Country = value
	case FieldStatus:
		c.Status = value
	case FieldLeadSource:
		c.LeadSource = value
	case FieldPriority:
		c.Priority = value
	case FieldNotes:
		c.Notes = value
	}
}

// Clone returns a deep copy.
func (c *Contact) Clone() *Contact {
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	if c.CustomFields != nil {
		out.CustomFields = make(map[string]string, len(c.CustomFields))
		for k, v := range c.CustomFields {
			out.CustomFields[k] = v
		}
	}
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

// MergeFrom copies the listed fields from src when src has a non-empty value.
// Tags are unioned and custom fields are merged key by key.
func (c *Contact) MergeFrom(src *Contact, fields []string) {
	for _, f := range fields {
		switch {
		case f == FieldTags:
			c.Tags = UnionTags(c.Tags, src.Tags)
		case strings.HasPrefix(f, CustomFieldPrefix):
			key := strings.TrimPrefix(f, CustomFieldPrefix)
			if v := src.CustomFields[key]; v != "" {
				if c.CustomFields == nil {
					c.CustomFields = map[string]string{}
				}
				c.CustomFields[key] = v
			}
		default:
			if v := src.Get(f); v != "" {
				c.set(f, v)
			}
		}
	}
}

// FillEmptyFrom copies src values into fields that are empty on c. Match key
// fields are left untouched. Tags and custom fields from src are added only
// while c stays within MaxTags and MaxCustomFields.
func (c *Contact) FillEmptyFrom(src *Contact) {
	for _, f := range CanonicalFields {
		if MatchKeyFields[f] || f == FieldTags {
			continue
		}
		if c.Get(f) == "" && src.Get(f) != "" {
			c.set(f, src.Get(f))
		}
	}

	if merged := UnionTags(c.Tags, src.Tags); len(merged) <= MaxTags {
		c.Tags = merged
	} else if len(c.Tags) < MaxTags {
		c.Tags = merged[:MaxTags]
	}

	for _, k := range slices.Sorted(maps.Keys(src.CustomFields)) {
		if _, ok := c.CustomFields[k]; ok {
			continue
		}
		if len(c.CustomFields) >= MaxCustomFields {
			break
		}
		if c.CustomFields == nil {
			c.CustomFields = map[string]string{}
		}
		c.CustomFields[k] = src.CustomFields[k]
	}
}

// HasTag reports whether the contact carries tag (case-insensitive).
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// UnionTags appends tags from b that are not already in a (case-insensitive).
func UnionTags(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, t := range b {
		found := false
		for _, existing := range out {
			if strings.EqualFold(existing, t) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, t)
		}
	}
	return out
}

// Matches applies the filter in memory with the same semantics as the Mongo
// query built by the repository.
func (f ContactFilter) Matches(c *Contact) bool {
	if c.UserID != f.UserID || c.DeletedAt != nil {
		return false
	}
	if f.ExcludeFlagged && c.DuplicateOf != "" {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Company != "" && !strings.EqualFold(c.Company, f.Company) {
		return false
	}
	for _, t := range f.Tags {
		if !c.HasTag(t) {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hit := false
		for _, v := range []string{c.FirstName, c.LastName, c.Email, c.Company, c.JobTitle} {
			if strings.Contains(strings.ToLower(v), needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
