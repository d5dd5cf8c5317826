package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"compliflow/internal/common/cache"
	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/repository"
	"compliflow/pkg/errors"
	"compliflow/pkg/utils/logger"
)

// QueueServiceConfig holds dependencies for QueueService.
type QueueServiceConfig struct {
	Repo      repository.SubmissionRepository
	Cache     cache.Cache
	Publisher *EventPublisher
	Timeout   time.Duration
}

// QueueService serves the review queue: listing submissions and assigning
// reviewers to pending ones.
type QueueService struct {
	repo      repository.SubmissionRepository
	cache     cache.Cache
	publisher *EventPublisher
	timeout   time.Duration
}

// NewQueueService creates a queue service. Cache and publisher are optional.
func NewQueueService(cfg QueueServiceConfig) (*QueueService, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultServiceTimeout
	}
	return &QueueService{
		repo:      cfg.Repo,
		cache:     cfg.Cache,
		publisher: cfg.Publisher,
		timeout:   cfg.Timeout,
	}, nil
}

// QueueView is a filtered listing of the review queue with summary counters.
type QueueView struct {
	Submissions []*model.Submission `json:"submissions"`
	Total       int                 `json:"total"`
	Pending     int                 `json:"pending"`
	InReview    int                 `json:"in_review"`
}

// List returns submissions matching the given status filter, newest first.
// An empty filter returns the whole queue.
func (s *QueueService) List(ctx context.Context, statusFilter []string) (*QueueView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	statuses := make([]model.Status, 0, len(statusFilter))
	for _, raw := range statusFilter {
		status := model.Status(raw)
		if !status.Valid() {
			return nil, errors.Newf(errors.InvalidStatusFilter, "unknown status %q", raw)
		}
		statuses = append(statuses, status)
	}

	subs, err := s.repo.List(ctx, statuses)
	if err != nil {
		return nil, errors.Wrap(err, errors.DatabaseError)
	}

	view := &QueueView{
		Submissions: subs,
		Total:       len(subs),
	}
	for _, sub := range subs {
		switch sub.Status {
		case model.StatusPending:
			view.Pending++
		case model.StatusInReview:
			view.InReview++
		}
	}
	return view, nil
}

// Assign moves a pending submission to In Review under the given reviewer.
func (s *QueueService) Assign(ctx context.Context, id, reviewer string) (*model.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if reviewer == "" {
		return nil, errors.New(errors.ReviewerRequired)
	}

	sub, err := s.repo.Assign(ctx, id, reviewer)
	if err != nil {
		switch err {
		case repository.ErrSubmissionNotFound:
			return nil, errors.Newf(errors.SubmissionNotFound, "submission %s not found", id)
		case repository.ErrSubmissionNotPending:
			return nil, errors.New(errors.SubmissionNotPending)
		default:
			return nil, errors.Wrap(err, errors.AssignFailed)
		}
	}

	logger.Info(ctx, "reviewer assigned",
		zap.String("submission_id", sub.ID),
		zap.String("reviewer", reviewer),
	)

	s.publisher.Publish(ctx, EventSubmissionAssigned, sub)
	bumpMetricsGeneration(ctx, s.cache)

	return sub, nil
}
