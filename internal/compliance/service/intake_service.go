package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"

	"compliflow/internal/common/cache"
	"compliflow/internal/common/storage"
	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/repository"
	"compliflow/pkg/errors"
	"compliflow/pkg/utils/logger"
)

const defaultServiceTimeout = 10 * time.Second

// MaxContentSize caps uploaded material at 50 MiB.
const MaxContentSize = 50 << 20

// IntakeServiceConfig holds dependencies for IntakeService.
type IntakeServiceConfig struct {
	Repo      repository.SubmissionRepository
	Storage   storage.ObjectStorage
	Cache     cache.Cache
	Publisher *EventPublisher
	Timeout   time.Duration
	Now       func() time.Time
}

// IntakeService accepts new marketing material into the review pipeline.
type IntakeService struct {
	repo      repository.SubmissionRepository
	storage   storage.ObjectStorage
	cache     cache.Cache
	publisher *EventPublisher
	timeout   time.Duration
	now       func() time.Time
}

// NewIntakeService creates an intake service. Storage, cache and publisher
// are optional.
func NewIntakeService(cfg IntakeServiceConfig) (*IntakeService, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultServiceTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &IntakeService{
		repo:      cfg.Repo,
		storage:   cfg.Storage,
		cache:     cfg.Cache,
		publisher: cfg.Publisher,
		timeout:   cfg.Timeout,
		now:       cfg.Now,
	}, nil
}

// SubmitRequest carries the intake form fields plus the uploaded content.
type SubmitRequest struct {
	Title        string
	MaterialType string
	Source       string
	PageCount    int

	Content     io.Reader
	ContentName string
	ContentSize int64
	ContentType string
}

// Submit validates the intake form, stores the uploaded content, and creates
// the submission in Pending state.
func (s *IntakeService) Submit(ctx context.Context, req SubmitRequest) (*model.Submission, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if req.Title == "" {
		return nil, errors.New(errors.TitleRequired)
	}
	if req.Content == nil {
		return nil, errors.New(errors.ContentRequired)
	}
	if req.ContentSize > MaxContentSize {
		return nil, errors.New(errors.ContentTooLarge)
	}
	materialType := model.MaterialType(req.MaterialType)
	if !materialType.Valid() {
		return nil, errors.Newf(errors.InvalidMaterialType, "unknown material type %q", req.MaterialType)
	}
	source := model.Source(req.Source)
	if !source.Valid() {
		return nil, errors.Newf(errors.InvalidSource, "unknown submission source %q", req.Source)
	}
	if req.PageCount < model.MinPageCount || req.PageCount > model.MaxPageCount {
		return nil, errors.New(errors.InvalidPageCount)
	}

	now := s.now()
	seq, err := s.repo.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, errors.Wrap(err, errors.SubmissionCreateFailed)
	}
	id := model.SubmissionID(now.Year(), seq)

	contentKey := ""
	if s.storage != nil {
		name := req.ContentName
		if name == "" {
			name = "material"
		}
		contentKey = fmt.Sprintf("materials/%s/%s", id, path.Base(name))
		if _, err := s.storage.PutObject(ctx, contentKey, req.Content, req.ContentSize, req.ContentType); err != nil {
			return nil, errors.Wrap(err, errors.ContentUploadFailed)
		}
	}

	sub := &model.Submission{
		ID:             id,
		Title:          req.Title,
		SubmissionDate: now,
		MaterialType:   materialType,
		Source:         source,
		Status:         model.StatusPending,
		PageCount:      req.PageCount,
		ContentKey:     contentKey,
		CreatedAt:      now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, errors.Wrap(err, errors.SubmissionCreateFailed)
	}

	logger.Info(ctx, "submission created",
		zap.String("submission_id", sub.ID),
		zap.String("material_type", string(sub.MaterialType)),
		zap.String("source", string(sub.Source)),
	)

	s.publisher.Publish(ctx, EventSubmissionCreated, sub)
	bumpMetricsGeneration(ctx, s.cache)

	return sub, nil
}

// Get fetches a single submission by ID.
func (s *IntakeService) Get(ctx context.Context, id string) (*model.Submission, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrSubmissionNotFound {
			return nil, errors.Newf(errors.SubmissionNotFound, "submission %s not found", id)
		}
		return nil, errors.Wrap(err, errors.DatabaseError)
	}
	return sub, nil
}

// ContentURL returns a presigned download URL for a submission's content.
func (s *IntakeService) ContentURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sub, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.storage == nil || sub.ContentKey == "" {
		return "", errors.Newf(errors.NotFound, "no stored content for submission %s", id)
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	url, err := s.storage.PresignGetObject(ctx, sub.ContentKey, expiry)
	if err != nil {
		return "", errors.Wrap(err, errors.StorageError)
	}
	return url, nil
}

func (s *IntakeService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
