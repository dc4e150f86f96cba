package model

import (
	"strconv"
	"strings"
)

// Date format tokens accepted by export
const (
	DateFormatISO  = "iso"
	DateFormatUS   = "us"
	DateFormatEU   = "eu"
	DateFormatUnix = "unix"
)

// ExportReq is the query string of GET /contacts/export.
type ExportReq struct {
	Status         string `query:"status" validate:"omitempty,oneof=lead prospect customer inactive"`
	Company        string `query:"company" validate:"omitempty,max=100"`
	Tags           string `query:"tags" validate:"omitempty,max=500"`
	Search         string `query:"search" validate:"omitempty,max=100"`
	Fields         string `query:"fields" validate:"omitempty,max=1000"`
	Delimiter      string `query:"delimiter" validate:"omitempty,max=10"`
	IncludeHeaders string `query:"includeHeaders" validate:"omitempty,boolean"`
	DateFormat     string `query:"dateFormat" validate:"omitempty,oneof=iso us eu unix"`
}

// ExportQuery is the parsed form of ExportReq.
type ExportQuery struct {
	Status         string
	Company        string
	Tags           []string
	Search         string
	Fields         []string
	Delimiter      rune
	IncludeHeaders bool
	DateFormat     string
}

func (r *ExportReq) Validate() (*ExportQuery, error) {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.Company = strings.TrimSpace(r.Company)
	r.Search = strings.TrimSpace(r.Search)
	r.IncludeHeaders = strings.TrimSpace(r.IncludeHeaders)
	r.DateFormat = strings.ToLower(strings.TrimSpace(r.DateFormat))

	if err := GetValidator().Struct(r); err != nil {
		return nil, FormatValidationError(err)
	}

	q := &ExportQuery{
		Status:         r.Status,
		Company:        r.Company,
		Tags:           ParseTags(r.Tags),
		Search:         r.Search,
		IncludeHeaders: true,
		DateFormat:     r.DateFormat,
	}
	if q.DateFormat == "" {
		q.DateFormat = DateFormatISO
	}
	if r.IncludeHeaders != "" {
		q.IncludeHeaders, _ = strconv.ParseBool(r.IncludeHeaders)
	}

	delim, err := ParseDelimiter(r.Delimiter)
	if err != nil {
		return nil, err
	}
	q.Delimiter = delim

	for _, f := range strings.Split(r.Fields, ",") {
		f = normalizeProjection(f)
		if f == "" {
			continue
		}
		if !IsExportableField(f) {
			return nil, &ErrorDetail{Code: "bad_request", Message: "unknown export field: " + f}
		}
		q.Fields = append(q.Fields, f)
	}
	return q, nil
}

// Filter builds the repository filter for the caller.
func (q *ExportQuery) Filter(userID string) ContactFilter {
	return ContactFilter{
		UserID:  userID,
		Status:  q.Status,
		Company: q.Company,
		Tags:    q.Tags,
		Search:  q.Search,
	}
}

// normalizeProjection lowercases canonical names and the custom prefix.
// Custom keys keep the case of the header they were imported under.
func normalizeProjection(f string) string {
	f = strings.TrimSpace(f)
	n := len(CustomFieldPrefix)
	if len(f) >= n && strings.EqualFold(f[:n], CustomFieldPrefix) {
		return CustomFieldPrefix + strings.TrimSpace(f[n:])
	}
	return strings.ToLower(f)
}

// IsExportableField reports whether f may appear in an export projection.
func IsExportableField(f string) bool {
	if strings.HasPrefix(f, CustomFieldPrefix) {
		return len(f) > len(CustomFieldPrefix)
	}
	for _, c := range CanonicalFields {
		if c == f {
			return true
		}
	}
	for _, c := range ReadOnlyFields {
		if c == f {
			return true
		}
	}
	return false
}

// ParseDelimiter accepts a literal delimiter or its name. Empty means comma.
func ParseDelimiter(v string) (rune, error) {
	switch strings.ToLower(v) {
	case "", ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "\\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, &ErrorDetail{Code: "bad_request", Message: "delimiter must be one of comma, semicolon, tab, pipe"}
}
