package repository

import (
	"context"
	"sync"

	"compliflow/internal/compliance/model"
)

// MemoryRepository is an in-memory SubmissionRepository. It backs local
// development and tests where MySQL is not available.
type MemoryRepository struct {
	mu        sync.RWMutex
	byID      map[string]*model.Submission
	order     []string
	sequences map[int]int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:      make(map[string]*model.Submission),
		sequences: make(map[int]int),
	}
}

func (r *MemoryRepository) Create(_ context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[sub.ID]; exists {
		return ErrDuplicateSubmission
	}
	cp := *sub
	r.byID[sub.ID] = &cp
	r.order = append(r.order, sub.ID)

	// Keep the sequence counter ahead of any externally built ID so
	// NextSequence never hands out a duplicate.
	if year, seq, err := model.ParseSubmissionID(sub.ID); err == nil {
		if seq > r.sequences[year] {
			r.sequences[year] = seq
		}
	}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *MemoryRepository) List(_ context.Context, statuses []model.Status) ([]*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[model.Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	result := make([]*model.Submission, 0, len(r.order))
	for _, id := range r.order {
		sub := r.byID[id]
		if len(want) > 0 && !want[sub.Status] {
			continue
		}
		cp := *sub
		result = append(result, &cp)
	}
	return result, nil
}

func (r *MemoryRepository) Assign(_ context.Context, id, reviewer string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	if sub.Status != model.StatusPending {
		return nil, ErrSubmissionNotPending
	}
	sub.Status = model.StatusInReview
	sub.AssignedTo = reviewer
	cp := *sub
	return &cp, nil
}

func (r *MemoryRepository) NextSequence(_ context.Context, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequences[year]++
	return r.sequences[year], nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}
