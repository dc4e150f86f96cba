package csvcodec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrTooManyRows  = errors.New("too many rows")
	ErrEmptyFile    = errors.New("file is empty or has no header")
	ErrMalformedCSV = errors.New("malformed csv")
	ErrUnknownField = errors.New("unknown field")
)

// Default ceilings
const (
	DefaultMaxBytes int64 = 5 << 20
	DefaultMaxRows        = 1000
)

// DecodeOptions bound the work a single upload may cause.
type DecodeOptions struct {
	MaxBytes  int64
	MaxRows   int
	Delimiter rune
}

// RawRow is one non-blank data record. Line is the physical 1-based line on
// which the record starts; the header is line 1. Fields is keyed by canonical
// field name, or "custom.<header>" for unrecognised columns.
type RawRow struct {
	Line   int
	Fields map[string]string
}

// Decoded is the whole file, read before any row is processed.
type Decoded struct {
	// Columns holds the resolved key of every header cell, "" for ignored ones.
	Columns []string
	Rows    []RawRow
}

// Decode reads r completely, enforcing the byte and row ceilings before the
// caller sees a single row.
func Decode(r io.Reader, opts DecodeOptions) (*Decoded, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	lr := &limitReader{r: r, remaining: opts.MaxBytes}
	br := stripUTF8BOM(bufio.NewReader(lr))

	cr := csv.NewReader(br)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if lr.exceeded {
			return nil, ErrFileTooLarge
		}
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, malformed(err)
	}
	if isEmptyRow(header) {
		return nil, ErrEmptyFile
	}

	out := &Decoded{Columns: resolveColumns(header)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if lr.exceeded {
				return nil, ErrFileTooLarge
			}
			return nil, malformed(err)
		}
		if isEmptyRow(record) {
			continue
		}
		if len(out.Rows) == opts.MaxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, opts.MaxRows)
		}

		line, _ := cr.FieldPos(0)
		out.Rows = append(out.Rows, RawRow{Line: line, Fields: rowFields(out.Columns, record)})
	}

	if lr.exceeded {
		return nil, ErrFileTooLarge
	}
	return out, nil
}

// resolveColumns maps header cells to field keys. When two cells resolve to
// the same key the first one wins.
func resolveColumns(header []string) []string {
	cols := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		key, ok := ResolveHeader(sanitize(h))
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		cols[i] = key
	}
	return cols
}

// rowFields pairs cells with columns. Short rows leave fields absent and
// cells beyond the header are dropped.
func rowFields(cols []string, record []string) map[string]string {
	fields := make(map[string]string, len(cols))
	for i, cell := range record {
		if i >= len(cols) || cols[i] == "" {
			continue
		}
		fields[cols[i]] = sanitize(cell)
	}
	return fields
}

func malformed(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, pe.StartLine, pe.Err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedCSV, err)
}

// sanitize replaces invalid UTF-8 sequences.
func sanitize(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var errLimitExceeded = errors.New("read limit exceeded")

// limitReader fails once more than remaining bytes have been read.
type limitReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, errLimitExceeded
	}
	// Read one byte past the limit to tell "exactly at the limit" apart
	// from "over it".
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	if int64(n) > l.remaining {
		l.exceeded = true
		l.remaining = 0
		return 0, errLimitExceeded
	}
	l.remaining -= int64(n)
	return n, err
}
