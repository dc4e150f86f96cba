package csvcodec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"contactsync/internal/interchange/model"
)

// EncodeOptions control the shape of an export. The zero value writes the
// canonical fields, comma separated, with a header and ISO dates.
type EncodeOptions struct {
	Fields     []string
	Delimiter  rune
	OmitHeader bool
	DateFormat string
}

var dateLayouts = map[string]string{
	model.DateFormatISO: time.RFC3339,
	model.DateFormatUS:  "01/02/2006",
	model.DateFormatEU:  "02/01/2006",
}

// Encode writes contacts in the given projection.
func Encode(w io.Writer, contacts []*model.Contact, opts EncodeOptions) error {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = model.CanonicalFields
	}
	for _, f := range fields {
		if !model.IsExportableField(f) {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	if opts.DateFormat == "" {
		opts.DateFormat = model.DateFormatISO
	}
	if _, ok := dateLayouts[opts.DateFormat]; !ok && opts.DateFormat != model.DateFormatUnix {
		return fmt.Errorf("unsupported date format %q", opts.DateFormat)
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if !opts.OmitHeader {
		header := make([]string, len(fields))
		for i, f := range fields {
			header[i] = Label(f)
		}
		if err := cw.Write(header); err != nil {
			return err
		}
	}

	record := make([]string, len(fields))
	for _, c := range contacts {
		for i, f := range fields {
			record[i] = cell(c, f, opts.DateFormat)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Template writes the header-only import template.
func Template(w io.Writer) error {
	return Encode(w, nil, EncodeOptions{})
}

func cell(c *model.Contact, field, dateFormat string) string {
	switch field {
	case model.FieldCreatedAt:
		return formatDate(c.CreatedAt, dateFormat)
	case model.FieldUpdatedAt:
		return formatDate(c.UpdatedAt, dateFormat)
	case model.FieldTags:
		return strings.Join(c.Tags, model.TagSeparator)
	}
	return c.Get(field)
}

func formatDate(t time.Time, format string) string {
	if t.IsZero() {
		return ""
	}
	if format == model.DateFormatUnix {
		return strconv.FormatInt(t.Unix(), 10)
	}
	return t.UTC().Format(dateLayouts[format])
}
