package repository

import (
	"context"
	"errors"

	"compliflow/internal/compliance/model"
)

// Sentinel errors returned by repository implementations. Services map
// these onto API error codes.
var (
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionNotPending = errors.New("submission is not pending")
	ErrDuplicateSubmission  = errors.New("submission already exists")
)

// SubmissionRepository stores submissions. Submissions are never deleted;
// the audit trail is the whole point of keeping them.
type SubmissionRepository interface {
	// Create persists a new submission
	Create(ctx context.Context, sub *model.Submission) error

	// GetByID fetches a single submission, ErrSubmissionNotFound if absent
	GetByID(ctx context.Context, id string) (*model.Submission, error)

	// List returns submissions in insertion order; filtering by status
	// keeps that order. An empty statuses slice returns everything.
	List(ctx context.Context, statuses []model.Status) ([]*model.Submission, error)

	// Assign moves a Pending submission to In Review under the given
	// reviewer. Returns ErrSubmissionNotPending when the submission exists
	// but is past intake.
	Assign(ctx context.Context, id, reviewer string) (*model.Submission, error)

	// NextSequence atomically reserves the next per-year sequence number
	NextSequence(ctx context.Context, year int) (int, error)

	// Count returns the total number of submissions
	Count(ctx context.Context) (int64, error)
}
