package service

import (
	"bytes"
	"context"
	"fmt"

	"contactsync/internal/interchange/csvcodec"
	"contactsync/internal/interchange/model"
)

// Export renders the caller's matching contacts as CSV, oldest first.
func (s *Service) Export(ctx context.Context, userID string, q model.ExportQuery) ([]byte, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	filter := q.Filter(userID)
	contacts, err := s.Repo.FindContacts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	// Same predicate as the store query, applied again in memory
	selected := contacts[:0]
	for _, c := range contacts {
		if filter.Matches(c) {
			selected = append(selected, c)
		}
	}

	var buf bytes.Buffer
	err = csvcodec.Encode(&buf, selected, csvcodec.EncodeOptions{
		Fields:     q.Fields,
		Delimiter:  q.Delimiter,
		OmitHeader: !q.IncludeHeaders,
		DateFormat: q.DateFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return buf.Bytes(), nil
}

func (s *Service) Template(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := csvcodec.Template(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
