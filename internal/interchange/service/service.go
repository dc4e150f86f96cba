package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"contactsync/internal/interchange/adapter"
	"contactsync/internal/interchange/model"
	"contactsync/internal/interchange/policy"
	"contactsync/internal/interchange/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrBadRequest          = errors.New("bad request")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

type InterchangeService interface {
	Import(ctx context.Context, userID string, in ImportInput) (*model.ImportReport, error)
	Preview(ctx context.Context, userID string, in ImportInput) (*model.ImportReport, error)
	Export(ctx context.Context, userID string, q model.ExportQuery) ([]byte, error)
	Template(ctx context.Context) ([]byte, error)
	Stats(ctx context.Context, userID string) (*model.ImportStats, error)
	History(ctx context.Context, userID string, req model.ListImportHistoryReq) (*model.ListImportHistoryResp, error)
	CleanupDuplicates(ctx context.Context, userID string, req model.CleanupReq) (*model.CleanupResult, error)
}

// ImportInput is one uploaded file plus its form options.
type ImportInput struct {
	FileName  string
	Body      io.Reader
	Policy    model.ImportPolicy
	Delimiter rune
}

type Options struct {
	MaxBytes         int64
	MaxRows          int
	DefaultBatchSize int
	FlushConcurrency int
}

type Service struct {
	Repo        repository.ContactRepository
	HistoryRepo repository.HistoryRepository
	Quota       adapter.QuotaAdapter
	Policy      *policy.Engine

	opts  Options
	now   func() time.Time
	newID func() string
}

func NewService(contacts repository.ContactRepository, history repository.HistoryRepository, quota adapter.QuotaAdapter, opts Options) (*Service, error) {
	engine, err := policy.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to init policy engine: %w", err)
	}
	if quota == nil {
		quota = adapter.Unlimited{}
	}
	if opts.DefaultBatchSize <= 0 {
		opts.DefaultBatchSize = model.DefaultBatchSize
	}
	if opts.FlushConcurrency <= 0 {
		opts.FlushConcurrency = 1
	}
	return &Service{
		Repo:        contacts,
		HistoryRepo: history,
		Quota:       quota,
		Policy:      engine,
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return primitive.NewObjectID().Hex() },
	}, nil
}

func (s *Service) Stats(ctx context.Context, userID string) (*model.ImportStats, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.HistoryRepo.AggregateStats(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID string, req model.ListImportHistoryReq) (*model.ListImportHistoryResp, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	records, total, err := s.HistoryRepo.FindHistory(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &model.ListImportHistoryResp{
		Data:       records,
		Page:       req.Page,
		Size:       req.Size,
		TotalCount: total,
	}, nil
}
