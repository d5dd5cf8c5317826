package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"compliflow/internal/common/mq"
	"compliflow/internal/compliance/model"
	"compliflow/pkg/utils/logger"
)

// Lifecycle event types published to the submission events topic.
const (
	EventSubmissionCreated  = "submission.created"
	EventSubmissionAssigned = "submission.assigned"

	headerEventType = "x-event-type"
)

// SubmissionEvent is the payload published for submission lifecycle changes.
type SubmissionEvent struct {
	Type         string    `json:"type"`
	SubmissionID string    `json:"submission_id"`
	Status       string    `json:"status"`
	AssignedTo   string    `json:"assigned_to,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher publishes submission lifecycle events. Publishing is best
// effort: failures are logged, never surfaced to the caller.
type EventPublisher struct {
	queue mq.MessageQueue
	topic string
}

// NewEventPublisher creates a publisher. queue may be nil, which disables
// publishing entirely.
func NewEventPublisher(queue mq.MessageQueue, topic string) *EventPublisher {
	if topic == "" {
		topic = "compliance.submissions"
	}
	return &EventPublisher{queue: queue, topic: topic}
}

// Publish emits a lifecycle event for the given submission.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, sub *model.Submission) {
	if p == nil || p.queue == nil {
		return
	}

	event := SubmissionEvent{
		Type:         eventType,
		SubmissionID: sub.ID,
		Status:       string(sub.Status),
		AssignedTo:   sub.AssignedTo,
		OccurredAt:   time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error(ctx, "failed to marshal submission event", zap.Error(err))
		return
	}

	msg := mq.NewMessage(body)
	msg.ID = uuid.New().String()
	msg.SetHeader(headerEventType, eventType)

	if err := p.queue.Publish(ctx, p.topic, msg); err != nil {
		logger.Error(ctx, "failed to publish submission event",
			zap.String("event_type", eventType),
			zap.String("submission_id", sub.ID),
			zap.Error(err),
		)
	}
}
