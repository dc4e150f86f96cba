package model

import (
	"reflect"
	"strings"

	"golang.org/x/text/cases"
)

// AddressInput is the validated form of an address block.
type AddressInput struct {
	Street     string `json:"street" validate:"max=200"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
}

// ContactInput carries the field rules shared by interactive creation and
// bulk import.
type ContactInput struct {
	FirstName    string            `json:"first_name" validate:"required,max=50,personname"`
	LastName     string            `json:"last_name" validate:"required,max=50,personname"`
	Email        string            `json:"email" validate:"required,max=255,email"`
	Phone        string            `json:"phone" validate:"omitempty,max=20,intlphone"`
	Company      string            `json:"company" validate:"max=100"`
	JobTitle     string            `json:"job_title" validate:"max=100"`
	Department   string            `json:"department" validate:"max=100"`
	Website      string            `json:"website" validate:"omitempty,max=255,url"`
	Address      AddressInput      `json:"address"`
	Status       string            `json:"status" validate:"oneof=lead prospect customer inactive"`
	LeadSource   string            `json:"lead_source" validate:"oneof=website referral social_media email_campaign cold_call event import other"`
	Priority     string            `json:"priority" validate:"oneof=low medium high"`
	Tags         []string          `json:"tags" validate:"max=20,dive,required,max=30"`
	Notes        string            `json:"notes" validate:"max=2000"`
	CustomFields map[string]string `json:"custom_fields" validate:"max=50,dive,keys,required,max=50,endkeys,max=500"`
}

// FieldError is one violated rule for one field of a row.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		if e.Field == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Normalize trims values and fills enum defaults. It runs before validation
// so that "Social Media" and "social_media" are treated alike.
func (in *ContactInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.Department = strings.TrimSpace(in.Department)
	in.Website = normalizeWebsite(in.Website)
	in.Address.Street = strings.TrimSpace(in.Address.Street)
	in.Address.City = strings.TrimSpace(in.Address.City)
	in.Address.State = strings.TrimSpace(in.Address.State)
	in.Address.PostalCode = strings.TrimSpace(in.Address.PostalCode)
	in.Address.Country = strings.TrimSpace(in.Address.Country)
	in.Status = normalizeEnum(in.Status, DefaultStatus)
	in.LeadSource = normalizeEnum(in.LeadSource, DefaultLeadSource)
	in.Priority = normalizeEnum(in.Priority, DefaultPriority)
	in.Tags = NormalizeTags(in.Tags)
	in.Notes = normalizeText(in.Notes)

	if len(in.CustomFields) > 0 {
		custom := make(map[string]string, len(in.CustomFields))
		for k, v := range in.CustomFields {
			k = strings.TrimSpace(k)
			v = normalizeText(v)
			if k == "" || v == "" {
				continue
			}
			custom[k] = v
		}
		in.CustomFields = custom
	}
}

// Validate normalizes the input and returns every violated rule.
func (in *ContactInput) Validate() FieldErrors {
	in.Normalize()
	if err := GetValidator().Struct(in); err != nil {
		return ToFieldErrors(err)
	}
	return nil
}

// ToContact assumes Validate succeeded.
func (in *ContactInput) ToContact() *Contact {
	c := &Contact{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Company:    in.Company,
		JobTitle:   in.JobTitle,
		Department: in.Department,
		Website:    in.Website,
		Address: Address{
			Street:     in.Address.Street,
			City:       in.Address.City,
			State:      in.Address.State,
			PostalCode: in.Address.PostalCode,
			Country:    in.Address.Country,
		},
		Status:     in.Status,
		LeadSource: in.LeadSource,
		Priority:   in.Priority,
		Tags:       append([]string{}, in.Tags...),
		Notes:      in.Notes,
	}
	if len(in.CustomFields) > 0 {
		c.CustomFields = in.CustomFields
	}
	return c
}

// NewContactFromInput is the interactive creation path.
func NewContactFromInput(in ContactInput) (*Contact, FieldErrors) {
	if errs := in.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return in.ToContact(), nil
}

// ValidateFields validates one decoded row keyed by canonical field name.
// Keys with the "custom." prefix become custom fields; other keys are ignored.
func ValidateFields(fields map[string]string) (*Contact, FieldErrors) {
	in := ContactInput{
		FirstName:  fields[FieldFirstName],
		LastName:   fields[FieldLastName],
		Email:      fields[FieldEmail],
		Phone:      fields[FieldPhone],
		Company:    fields[FieldCompany],
		JobTitle:   fields[FieldJobTitle],
		Department: fields[FieldDepartment],
		Website:    fields[FieldWebsite],
		Address: AddressInput{
			Street:     fields[FieldStreet],
			City:       fields[FieldCity],
			State:      fields[FieldState],
			PostalCode: fields[FieldPostalCode],
			Country:    fields[FieldCountry],
		},
		Status:     fields[FieldStatus],
		LeadSource: fields[FieldLeadSource],
		Priority:   fields[FieldPriority],
		Tags:       ParseTags(fields[FieldTags]),
		Notes:      fields[FieldNotes],
	}
	for k, v := range fields {
		if key, ok := strings.CutPrefix(k, CustomFieldPrefix); ok {
			if in.CustomFields == nil {
				in.CustomFields = map[string]string{}
			}
			in.CustomFields[key] = v
		}
	}
	return NewContactFromInput(in)
}

// ValidateMerged re-checks the collections a merge can grow against the
// ContactInput rules for tags and custom fields.
func ValidateMerged(c *Contact) FieldErrors {
	checks := []struct {
		field string
		name  string
		value interface{}
	}{
		{"Tags", FieldTags, c.Tags},
		{"CustomFields", "custom_fields", c.CustomFields},
	}

	var out FieldErrors
	typ := reflect.TypeOf(ContactInput{})
	for _, chk := range checks {
		sf, _ := typ.FieldByName(chk.field)
		err := GetValidator().Var(chk.value, sf.Tag.Get("validate"))
		for _, fe := range ToFieldErrors(err) {
			fe.Field = chk.name
			out = append(out, fe)
		}
	}
	return out
}

// ParseTags splits a cell on commas and semicolons.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	return NormalizeTags(parts)
}

// NormalizeTags trims, drops empties and removes case-insensitive repeats,
// keeping the first spelling.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := cases.Fold().String(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func normalizeEnum(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	v = cases.Fold().String(v)
	return strings.NewReplacer(" ", "_", "-", "_").Replace(v)
}

// normalizeText trims v and folds CRLF line breaks to LF, the form a CSV
// reader hands back for quoted multi-line cells.
func normalizeText(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, "\r\n", "\n"))
}

func normalizeWebsite(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.Contains(v, "://") {
		return v
	}
	return "https://" + v
}
