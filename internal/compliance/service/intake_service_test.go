package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/repository"
	pkgerrors "compliflow/pkg/errors"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func newIntakeWithFakes(t *testing.T, repo repository.SubmissionRepository, st *fakeStorage, queue *fakeQueue) *IntakeService {
	t.Helper()
	var publisher *EventPublisher
	if queue != nil {
		publisher = NewEventPublisher(queue, "test.submissions")
	}
	svc, err := NewIntakeService(IntakeServiceConfig{
		Repo:      repo,
		Storage:   st,
		Publisher: publisher,
		Now:       fixedNow,
	})
	if err != nil {
		t.Fatalf("new intake service failed: %v", err)
	}
	return svc
}

func validSubmitRequest() SubmitRequest {
	return SubmitRequest{
		Title:        "Q3 Whitepaper",
		MaterialType: "Whitepaper",
		Source:       "Corporate Marketing",
		PageCount:    12,
		Content:      strings.NewReader("pdf bytes"),
		ContentName:  "draft.pdf",
		ContentSize:  9,
		ContentType:  "application/pdf",
	}
}

func TestIntakeSubmit(t *testing.T) {
	repo := repository.NewMemoryRepository()
	st := newFakeStorage()
	queue := &fakeQueue{}
	svc := newIntakeWithFakes(t, repo, st, queue)

	sub, err := svc.Submit(context.Background(), validSubmitRequest())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.ID != "SUB-2026-0001" {
		t.Fatalf("unexpected id: %s", sub.ID)
	}
	if sub.Status != model.StatusPending {
		t.Fatalf("new submission must be Pending, got %s", sub.Status)
	}
	if sub.AssignedTo != "" {
		t.Fatalf("pending submission must be unassigned, got %q", sub.AssignedTo)
	}
	if sub.ContentKey != "materials/SUB-2026-0001/draft.pdf" {
		t.Fatalf("unexpected content key: %s", sub.ContentKey)
	}
	if _, ok := st.objects[sub.ContentKey]; !ok {
		t.Fatalf("content was not stored")
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(queue.published))
	}

	// Sequential intakes get strictly increasing sequence numbers.
	second, err := svc.Submit(context.Background(), validSubmitRequest())
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	if second.ID != "SUB-2026-0002" {
		t.Fatalf("unexpected second id: %s", second.ID)
	}

	count, _ := repo.Count(context.Background())
	if count != 2 {
		t.Fatalf("expected 2 stored submissions, got %d", count)
	}
}

func TestIntakeSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SubmitRequest)
		errCode pkgerrors.ErrorCode
	}{
		{
			name:    "missing title",
			mutate:  func(r *SubmitRequest) { r.Title = "" },
			errCode: pkgerrors.TitleRequired,
		},
		{
			name:    "missing content",
			mutate:  func(r *SubmitRequest) { r.Content = nil },
			errCode: pkgerrors.ContentRequired,
		},
		{
			name:    "unknown material type",
			mutate:  func(r *SubmitRequest) { r.MaterialType = "Pamphlet" },
			errCode: pkgerrors.InvalidMaterialType,
		},
		{
			name:    "unknown source",
			mutate:  func(r *SubmitRequest) { r.Source = "Internal" },
			errCode: pkgerrors.InvalidSource,
		},
		{
			name:    "zero page count",
			mutate:  func(r *SubmitRequest) { r.PageCount = 0 },
			errCode: pkgerrors.InvalidPageCount,
		},
		{
			name:    "page count above limit",
			mutate:  func(r *SubmitRequest) { r.PageCount = 101 },
			errCode: pkgerrors.InvalidPageCount,
		},
		{
			name:    "content too large",
			mutate:  func(r *SubmitRequest) { r.ContentSize = MaxContentSize + 1 },
			errCode: pkgerrors.ContentTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemoryRepository()
			svc := newIntakeWithFakes(t, repo, newFakeStorage(), nil)

			req := validSubmitRequest()
			tt.mutate(&req)

			_, err := svc.Submit(context.Background(), req)
			if err == nil || !pkgerrors.Is(err, tt.errCode) {
				t.Fatalf("expected error code %d, got %v", tt.errCode, err)
			}

			// A failed intake must leave the store unchanged.
			count, _ := repo.Count(context.Background())
			if count != 0 {
				t.Fatalf("store changed after failed intake, count=%d", count)
			}
		})
	}
}

func TestIntakeSubmitStorageFailure(t *testing.T) {
	repo := repository.NewMemoryRepository()
	st := newFakeStorage()
	st.failPut = true
	svc := newIntakeWithFakes(t, repo, st, nil)

	_, err := svc.Submit(context.Background(), validSubmitRequest())
	if err == nil || !pkgerrors.Is(err, pkgerrors.ContentUploadFailed) {
		t.Fatalf("expected ContentUploadFailed, got %v", err)
	}
	count, _ := repo.Count(context.Background())
	if count != 0 {
		t.Fatalf("submission must not be created when upload fails")
	}
}

func TestIntakeGet(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newIntakeWithFakes(t, repo, newFakeStorage(), nil)

	sub, err := svc.Submit(context.Background(), validSubmitRequest())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	got, err := svc.Get(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != sub.ID {
		t.Fatalf("unexpected id: %s", got.ID)
	}

	_, err = svc.Get(context.Background(), "SUB-2026-9999")
	if err == nil || !pkgerrors.Is(err, pkgerrors.SubmissionNotFound) {
		t.Fatalf("expected SubmissionNotFound, got %v", err)
	}
}

func TestIntakeContentURL(t *testing.T) {
	repo := repository.NewMemoryRepository()
	st := newFakeStorage()
	svc := newIntakeWithFakes(t, repo, st, nil)

	sub, err := svc.Submit(context.Background(), validSubmitRequest())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	url, err := svc.ContentURL(context.Background(), sub.ID, time.Minute)
	if err != nil {
		t.Fatalf("content url failed: %v", err)
	}
	if url != "https://storage.test/"+sub.ContentKey {
		t.Fatalf("unexpected url: %s", url)
	}
}
