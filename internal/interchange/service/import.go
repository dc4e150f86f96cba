package service

import (
	"context"
	"fmt"
	"strings"

	"contactsync/internal/interchange/csvcodec"
	"contactsync/internal/interchange/matcher"
	"contactsync/internal/interchange/model"
	"contactsync/internal/interchange/policy"
	"contactsync/internal/interchange/util"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// pendingWrite is the coalesced write of one contact. rows lists every
// report row whose outcome depends on it.
type pendingWrite struct {
	kind    model.WriteKind
	contact *model.Contact
	rows    []int
}

// importRun holds the working set of one import.
type importRun struct {
	userID    string
	policy    model.ImportPolicy
	index     *matcher.Index
	working   map[string]*model.Contact
	remaining int

	pending map[string]*pendingWrite
	order   []string
	rows    []model.ImportRow
}

func (s *Service) Preview(ctx context.Context, userID string, in ImportInput) (*model.ImportReport, error) {
	in.Policy.ValidateOnly = true
	return s.Import(ctx, userID, in)
}

// Import decodes the whole file, resolves every row in file order against
// the user's contacts and the rows before it, then flushes the resulting
// writes in batches. Rows fail individually; nothing is rolled back.
func (s *Service) Import(ctx context.Context, userID string, in ImportInput) (*model.ImportReport, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if in.Body == nil {
		return nil, fmt.Errorf("%w: file is required", ErrBadRequest)
	}
	logger := util.FromContext(ctx)
	started := s.now()

	decoded, err := csvcodec.Decode(in.Body, csvcodec.DecodeOptions{
		MaxBytes:  s.opts.MaxBytes,
		MaxRows:   s.opts.MaxRows,
		Delimiter: in.Delimiter,
	})
	if err != nil {
		return nil, err
	}

	p := in.Policy.WithDefaults(s.opts.DefaultBatchSize)

	existing, err := s.Repo.FindContacts(ctx, model.ContactFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	remaining, err := s.Quota.Remaining(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load quota: %w", err)
	}

	run := &importRun{
		userID:    userID,
		policy:    p,
		index:     matcher.NewIndex(existing),
		working:   make(map[string]*model.Contact, len(existing)),
		remaining: remaining,
		pending:   make(map[string]*pendingWrite),
		rows:      make([]model.ImportRow, 0, len(decoded.Rows)),
	}
	for _, c := range existing {
		run.working[c.ID] = c
	}

	for _, raw := range decoded.Rows {
		s.resolveRow(run, raw)
	}

	if !p.ValidateOnly {
		s.flush(ctx, run)
	}

	report := &model.ImportReport{
		ImportID:   uuid.NewString(),
		Preview:    p.ValidateOnly,
		Rows:       run.rows,
		StartedAt:  started,
		FinishedAt: s.now(),
	}
	report.Tally()

	logger.Info("contact import finished",
		"user_id", userID,
		"import_id", report.ImportID,
		"preview", report.Preview,
		"total", report.TotalRows,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"invalid", report.Invalid,
	)

	if !report.Preview {
		history := model.NewImportHistory(userID, in.FileName, p, report)
		if err := s.HistoryRepo.CreateHistory(ctx, history); err != nil {
			logger.Warn("failed to record import history", "import_id", report.ImportID, "error", err)
		}
	}
	return report, nil
}

// resolveRow takes one row through validate, classify and resolve, and
// queues its write.
func (s *Service) resolveRow(run *importRun, raw csvcodec.RawRow) {
	row := model.ImportRow{Line: raw.Line}
	defer func() { run.rows = append(run.rows, row) }()

	candidate, errs := model.ValidateFields(raw.Fields)
	if len(errs) > 0 {
		row.Invalidate(errs...)
		return
	}

	cls := run.index.Classify(candidate)
	switch s.Policy.Resolve(cls, run.policy) {
	case policy.ActionCreate:
		if run.remaining <= 0 {
			row.Invalidate(model.FieldError{
				Code:    model.ErrCodeQuotaExceeded,
				Message: "contact limit reached for this account",
			})
			return
		}
		run.remaining--

		now := s.now()
		candidate.ID = s.newID()
		candidate.UserID = run.userID
		candidate.CreatedAt = now
		candidate.UpdatedAt = now
		if candidate.Tags == nil {
			candidate.Tags = []string{}
		}

		run.index.Add(candidate)
		run.working[candidate.ID] = candidate
		run.queue(model.WriteInsert, candidate, len(run.rows))

		row.Outcome = model.OutcomeCreated
		row.ContactID = candidate.ID

	case policy.ActionUpdate:
		target := run.working[cls.ContactID]
		merged := target.Clone()
		merged.MergeFrom(candidate, presentFields(raw.Fields))
		if errs := model.ValidateMerged(merged); len(errs) > 0 {
			row.MatchedContactID = target.ID
			row.Invalidate(errs...)
			return
		}
		merged.UpdatedAt = s.now()
		*target = *merged
		run.index.Add(target)
		run.queue(model.WriteUpdate, target, len(run.rows))

		row.Outcome = model.OutcomeUpdated
		row.ContactID = target.ID
		row.MatchedContactID = target.ID

	case policy.ActionSkip:
		row.Outcome = model.OutcomeSkippedDuplicate
		row.MatchedContactID = cls.ContactID

	default:
		row.MatchedContactID = cls.ContactID
		row.Invalidate(model.FieldError{
			Field:   string(cls.MatchedBy),
			Code:    model.ErrCodeDuplicateConflict,
			Message: "duplicates existing contact " + cls.ContactID,
		})
	}
}

// queue coalesces writes per contact. A contact created earlier in the file
// stays an insert when later rows update it.
func (run *importRun) queue(kind model.WriteKind, c *model.Contact, rowIdx int) {
	if pw, ok := run.pending[c.ID]; ok {
		pw.rows = append(pw.rows, rowIdx)
		return
	}
	run.pending[c.ID] = &pendingWrite{kind: kind, contact: c, rows: []int{rowIdx}}
	run.order = append(run.order, c.ID)
}

type chunkResult struct {
	failed map[string]string
}

// flush writes pending contacts in chunks of BatchSize. A failed write turns
// every row depending on that contact into persistence_failure.
func (s *Service) flush(ctx context.Context, run *importRun) {
	size := run.policy.BatchSize
	var chunks [][]string
	for start := 0; start < len(run.order); start += size {
		end := start + size
		if end > len(run.order) {
			end = len(run.order)
		}
		chunks = append(chunks, run.order[start:end])
	}
	if len(chunks) == 0 {
		return
	}

	results := make([]chunkResult, len(chunks))
	g := new(errgroup.Group)
	g.SetLimit(s.opts.FlushConcurrency)
	for i, ids := range chunks {
		g.Go(func() error {
			results[i] = s.writeChunk(ctx, run, ids)
			return nil
		})
	}
	_ = g.Wait()

	logger := util.FromContext(ctx)
	for _, res := range results {
		for id, reason := range res.failed {
			pw, ok := run.pending[id]
			if !ok {
				continue
			}
			logger.Warn("contact write failed", "user_id", run.userID, "contact_id", id, "reason", reason)
			for _, rowIdx := range pw.rows {
				run.rows[rowIdx].Invalidate(model.FieldError{
					Code:    model.ErrCodePersistenceFailure,
					Message: "could not be saved: " + reason,
				})
			}
		}
	}
}

func (s *Service) writeChunk(ctx context.Context, run *importRun, ids []string) chunkResult {
	writes := make([]model.ContactWrite, len(ids))
	for i, id := range ids {
		pw := run.pending[id]
		writes[i] = model.ContactWrite{Kind: pw.kind, Contact: pw.contact}
	}

	res := chunkResult{failed: map[string]string{}}
	out, err := s.Repo.BulkWriteContacts(ctx, writes)
	if err != nil {
		for _, id := range ids {
			res.failed[id] = err.Error()
		}
		return res
	}
	for _, f := range out.Failed {
		res.failed[f.ContactID] = f.Reason
	}
	return res
}

// presentFields lists the fields that carry a value in the row, so that an
// update never overwrites stored data with blanks or enum defaults.
func presentFields(fields map[string]string) []string {
	out := make([]string, 0, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(v) != "" {
			out = append(out, k)
		}
	}
	return out
}
