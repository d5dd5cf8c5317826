package service

import (
	"context"
	"testing"
	"time"

	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/repository"
	pkgerrors "compliflow/pkg/errors"
)

func seedQueue(t *testing.T, repo repository.SubmissionRepository) {
	t.Helper()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Date offsets do not follow insertion order; listings must.
	rows := []struct {
		id     string
		status model.Status
		offset int
	}{
		{"SUB-2026-0001", model.StatusPending, 3},
		{"SUB-2026-0002", model.StatusInReview, 0},
		{"SUB-2026-0003", model.StatusApproved, 2},
		{"SUB-2026-0004", model.StatusPending, 1},
	}
	for _, row := range rows {
		sub := &model.Submission{
			ID:             row.id,
			Title:          "Material " + row.id,
			SubmissionDate: base.AddDate(0, 0, row.offset),
			MaterialType:   model.MaterialEmail,
			Source:         model.SourceThirdParty,
			Status:         row.status,
			PageCount:      5,
			CreatedAt:      base,
		}
		if row.status != model.StatusPending {
			sub.AssignedTo = "Sarah L."
		}
		if err := repo.Create(context.Background(), sub); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func newQueueWithFakes(t *testing.T, repo repository.SubmissionRepository, queue *fakeQueue) *QueueService {
	t.Helper()
	var publisher *EventPublisher
	if queue != nil {
		publisher = NewEventPublisher(queue, "test.submissions")
	}
	svc, err := NewQueueService(QueueServiceConfig{Repo: repo, Publisher: publisher})
	if err != nil {
		t.Fatalf("new queue service failed: %v", err)
	}
	return svc
}

func TestQueueList(t *testing.T) {
	repo := repository.NewMemoryRepository()
	seedQueue(t, repo)
	svc := newQueueWithFakes(t, repo, nil)

	view, err := svc.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if view.Total != 4 || view.Pending != 2 || view.InReview != 1 {
		t.Fatalf("unexpected counters: %+v", view)
	}
	// Intake order, not date order.
	for i, want := range []string{"SUB-2026-0001", "SUB-2026-0002", "SUB-2026-0003", "SUB-2026-0004"} {
		if view.Submissions[i].ID != want {
			t.Fatalf("row %d: expected %s, got %s", i, want, view.Submissions[i].ID)
		}
	}

	filtered, err := svc.List(context.Background(), []string{"Pending", "In Review"})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if filtered.Total != 3 {
		t.Fatalf("expected 3 filtered rows, got %d", filtered.Total)
	}
	if filtered.Submissions[0].ID != "SUB-2026-0001" || filtered.Submissions[2].ID != "SUB-2026-0004" {
		t.Fatalf("filter reordered rows: %s %s", filtered.Submissions[0].ID, filtered.Submissions[2].ID)
	}
}

func TestQueueListInvalidStatus(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newQueueWithFakes(t, repo, nil)

	_, err := svc.List(context.Background(), []string{"Archived"})
	if err == nil || !pkgerrors.Is(err, pkgerrors.InvalidStatusFilter) {
		t.Fatalf("expected InvalidStatusFilter, got %v", err)
	}
}

func TestQueueAssign(t *testing.T) {
	repo := repository.NewMemoryRepository()
	seedQueue(t, repo)
	queue := &fakeQueue{}
	svc := newQueueWithFakes(t, repo, queue)

	sub, err := svc.Assign(context.Background(), "SUB-2026-0001", "David R.")
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if sub.Status != model.StatusInReview || sub.AssignedTo != "David R." {
		t.Fatalf("unexpected assignment result: %+v", sub)
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(queue.published))
	}

	_, err = svc.Assign(context.Background(), "SUB-2026-0001", "Jessica W.")
	if err == nil || !pkgerrors.Is(err, pkgerrors.SubmissionNotPending) {
		t.Fatalf("expected SubmissionNotPending, got %v", err)
	}

	_, err = svc.Assign(context.Background(), "SUB-2026-9999", "Jessica W.")
	if err == nil || !pkgerrors.Is(err, pkgerrors.SubmissionNotFound) {
		t.Fatalf("expected SubmissionNotFound, got %v", err)
	}

	_, err = svc.Assign(context.Background(), "SUB-2026-0004", "")
	if err == nil || !pkgerrors.Is(err, pkgerrors.ReviewerRequired) {
		t.Fatalf("expected ReviewerRequired, got %v", err)
	}
}
