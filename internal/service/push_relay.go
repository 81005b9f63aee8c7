package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-ops-api/internal/models"
	"github.com/noah-isme/staff-ops-api/pkg/config"
	"github.com/noah-isme/staff-ops-api/pkg/jobs"
	"github.com/noah-isme/staff-ops-api/pkg/push"
)

type pushTokenReader interface {
	FindPushToken(ctx context.Context, userID string) (*models.PushToken, error)
}

type pushGateway interface {
	Send(ctx context.Context, msg push.Message) (*push.Receipt, error)
}

// PushRelay turns stored notifications into device pushes through a
// background queue. Delivery is best effort: a full buffer drops the job
// and the persisted notification row stays the source of truth.
type PushRelay struct {
	tokens  pushTokenReader
	gateway pushGateway
	queue   *jobs.Queue
	logger  *zap.Logger
}

type pushJobPayload struct {
	UserID  string
	Title   string
	Message string
	Data    map[string]interface{}
}

// NewPushRelay builds the relay and its backing queue. Start must be
// called before jobs flow.
func NewPushRelay(tokens pushTokenReader, gateway pushGateway, cfg config.PushConfig, logger *zap.Logger) *PushRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &PushRelay{tokens: tokens, gateway: gateway, logger: logger}
	r.queue = jobs.NewQueue("push-delivery", r.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.QueueBuffer,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return r
}

// Start launches the delivery workers.
func (r *PushRelay) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop drains the workers.
func (r *PushRelay) Stop() {
	r.queue.Stop()
}

// Enqueue schedules a push for the notification's recipient. Failures are
// logged and swallowed so callers on the write path never block or fail on
// push delivery.
func (r *PushRelay) Enqueue(notification models.Notification) {
	data := map[string]interface{}{
		"notification_id": notification.ID,
		"type":            string(notification.Type),
	}
	job := jobs.Job{
		ID:   notification.ID,
		Type: "push_notification",
		Payload: pushJobPayload{
			UserID:  notification.UserID,
			Title:   notification.Title,
			Message: notification.Message,
			Data:    data,
		},
	}
	if err := r.queue.Enqueue(job); err != nil {
		r.logger.Warn("push job dropped",
			zap.String("notification_id", notification.ID), zap.Error(err))
	}
}

func (r *PushRelay) deliver(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(pushJobPayload)
	if !ok {
		r.logger.Error("discarding push job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	token, err := r.tokens.FindPushToken(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("load push token: %w", err)
	}
	if token == nil {
		// No registered device; nothing to deliver.
		return nil
	}

	receipt, err := r.gateway.Send(ctx, push.Message{
		To:    token.PushToken,
		Title: payload.Title,
		Body:  payload.Message,
		Data:  payload.Data,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	if !receipt.Ok() {
		// Rejected tokens (expired, unregistered) are not retryable.
		r.logger.Warn("push rejected by gateway",
			zap.String("user_id", payload.UserID),
			zap.String("reason", receipt.Message))
		return nil
	}
	return nil
}
